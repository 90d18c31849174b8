package syntax_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vogtryan/dbs3/crumb"
	"github.com/vogtryan/dbs3/geodesic"
	"github.com/vogtryan/dbs3/geom"
	"github.com/vogtryan/dbs3/mapmodel"
	"github.com/vogtryan/dbs3/syntax"
)

func street(name string, ax, ay, bx, by, width float64) mapmodel.StreetInput {
	return mapmodel.StreetInput{
		Name:    name,
		Midline: geom.LineSegment{A: geom.Point{X: ax, Y: ay}, B: geom.Point{X: bx, Y: by}},
		Width:   width,
	}
}

func minTurnsFinder(m *mapmodel.Map, start, end mapmodel.Waypoint, opts ...geodesic.Option) ([]mapmodel.Path, float64, error) {
	return geodesic.FindAll(m, start, end, append([]geodesic.Option{geodesic.WithMetric(crumb.MinTurns)}, opts...)...)
}

func TestComputeProducesNonNegativeVectors(t *testing.T) {
	m, err := mapmodel.NewMap([]mapmodel.StreetInput{
		street("A", 0, 100, 100, 100, 4),
		street("B", 50, 50, 50, 150, 4),
	})
	require.NoError(t, err)

	closeness, betweenness, err := syntax.Compute(m, minTurnsFinder, 100, nil)
	require.NoError(t, err)
	require.Len(t, closeness, len(m.Segments()))
	require.Len(t, betweenness, len(m.Segments()))
	for _, v := range closeness {
		require.GreaterOrEqual(t, v, 0.0)
	}
	for _, v := range betweenness {
		require.GreaterOrEqual(t, v, 0.0)
	}
}

// Compute is a pure function of (m, finder, radius): repeating the call
// must reproduce identical vectors.
func TestComputeIsDeterministic(t *testing.T) {
	m, err := mapmodel.NewMap([]mapmodel.StreetInput{
		street("A", 0, 100, 100, 100, 4),
		street("B", 50, 50, 50, 150, 4),
	})
	require.NoError(t, err)

	closeness1, betweenness1, err := syntax.Compute(m, minTurnsFinder, 0, nil)
	require.NoError(t, err)
	closeness2, betweenness2, err := syntax.Compute(m, minTurnsFinder, 0, nil)
	require.NoError(t, err)

	require.Equal(t, closeness1, closeness2)
	require.Equal(t, betweenness1, betweenness2)
}
