package mapmodel_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vogtryan/dbs3/geom"
	"github.com/vogtryan/dbs3/mapmodel"
)

func street(name string, ax, ay, bx, by, width float64) mapmodel.StreetInput {
	return mapmodel.StreetInput{
		Name:    name,
		Midline: geom.LineSegment{A: geom.Point{X: ax, Y: ay}, B: geom.Point{X: bx, Y: by}},
		Width:   width,
	}
}

// S1: two parallel streets cannot intersect; the map is rejected as disconnected.
func TestParallelStreetsDisconnected(t *testing.T) {
	_, err := mapmodel.NewMap([]mapmodel.StreetInput{
		street("First", 0, 100, 10, 100, 1),
		street("Second", 0, 105, 10, 105, 1),
	})
	require.ErrorIs(t, err, mapmodel.ErrMapDisconnected)
}

// S2: perpendicular cross.
func TestPerpendicularCross(t *testing.T) {
	m, err := mapmodel.NewMap([]mapmodel.StreetInput{
		street("A", 0, 100, 10, 100, 1),
		street("B", 5, 95, 5, 105, 1),
	})
	require.NoError(t, err)
	require.Equal(t, 1, m.MinTurns(0, 1))
	require.Equal(t, 0, m.MinTurns(0, 0))
	require.Equal(t, 0, m.MinTurns(1, 1))
	require.Equal(t, m.MinTurns(0, 1), m.MinTurns(1, 0))
}

// S5: two disjoint components (no shared intersection) are rejected.
// The streets are all parallel: any two non-parallel streets meet where
// their extended midlines cross, so they always share an intersection.
func TestDisconnectedComponents(t *testing.T) {
	_, err := mapmodel.NewMap([]mapmodel.StreetInput{
		street("A", 0, 100, 10, 100, 1),
		street("B", 0, 110, 10, 110, 1),
		street("C", 100, 200, 110, 200, 1),
		street("D", 100, 210, 110, 210, 1),
	})
	require.ErrorIs(t, err, mapmodel.ErrMapDisconnected)
}

func TestStreetContainmentRejected(t *testing.T) {
	_, err := mapmodel.NewMap([]mapmodel.StreetInput{
		street("Big", 0, 0, 100, 0, 20),
		street("Small", 10, 0, 20, 0, 2),
	})
	require.ErrorIs(t, err, mapmodel.ErrStreetContainment)
}

func TestEmptyStreetList(t *testing.T) {
	_, err := mapmodel.NewMap(nil)
	require.ErrorIs(t, err, mapmodel.ErrEmptyStreetList)
}

// Invariant: minTurns is symmetric with zeros on the diagonal.
func TestMinTurnsSymmetricDiagonalZero(t *testing.T) {
	m, err := mapmodel.NewMap([]mapmodel.StreetInput{
		street("A", 0, 100, 10, 100, 1),
		street("B", 5, 95, 5, 115, 1),
		street("C", 0, 110, 10, 110, 1),
	})
	require.NoError(t, err)
	n := m.NumStreets()
	for i := 0; i < n; i++ {
		require.Equal(t, 0, m.MinTurns(i, i))
		for j := 0; j < n; j++ {
			require.Equal(t, m.MinTurns(i, j), m.MinTurns(j, i))
		}
	}
}

// Invariant: every segment's parallelogram lies inside coordinate bounds.
func TestSegmentsInBounds(t *testing.T) {
	m, err := mapmodel.NewMap([]mapmodel.StreetInput{
		street("A", 0, 100, 10, 100, 1),
		street("B", 5, 95, 5, 105, 1),
	})
	require.NoError(t, err)
	for _, seg := range m.Segments() {
		pg := geom.Parallelogram{Midline: seg.Midline(), Width: m.Street(seg.Street).Width}
		for _, c := range pg.Corners() {
			require.True(t, geom.InBounds(c))
		}
	}
}

// An intersection's EntryPoints() corners, not just its centre, must
// lie within bounds: a shallow crossing angle stretches the
// intersection parallelogram's far corners well past where the
// streets' own footprints reach.
func TestIntersectionEntryPointsOutOfBoundsRejected(t *testing.T) {
	_, err := mapmodel.NewMap([]mapmodel.StreetInput{
		street("A", 0, 1000, 2000, 1000, 4),
		street("B", 500, 999.5, 1500, 1000.5, 10),
	})
	require.ErrorIs(t, err, mapmodel.ErrOutOfBounds)
}

// Invariant: mirrored intersections share a centre and mirror back to themselves.
func TestIntersectionMirrorInvariant(t *testing.T) {
	m, err := mapmodel.NewMap([]mapmodel.StreetInput{
		street("A", 0, 100, 10, 100, 1),
		street("B", 5, 95, 5, 105, 1),
	})
	require.NoError(t, err)
	for _, in := range m.Intersections(0) {
		mirror := in.GetMirror()
		require.Equal(t, in.Centre(), mirror.Centre())
		require.Equal(t, in, mirror.GetMirror())
		require.Equal(t, in.Street(), mirror.Crossing())
		require.Equal(t, in.Crossing(), mirror.Street())
	}
}
