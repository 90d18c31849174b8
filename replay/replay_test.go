package replay_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vogtryan/dbs3/agent"
	"github.com/vogtryan/dbs3/crumb"
	"github.com/vogtryan/dbs3/destination"
	"github.com/vogtryan/dbs3/geom"
	"github.com/vogtryan/dbs3/mapmodel"
	"github.com/vogtryan/dbs3/replay"
	"github.com/vogtryan/dbs3/rng"
)

func street(name string, ax, ay, bx, by, width float64) mapmodel.StreetInput {
	return mapmodel.StreetInput{
		Name:    name,
		Midline: geom.LineSegment{A: geom.Point{X: ax, Y: ay}, B: geom.Point{X: bx, Y: by}},
		Width:   width,
	}
}

func newTestSimulation(t *testing.T, count int) *agent.Simulation {
	t.Helper()
	m, err := mapmodel.NewMap([]mapmodel.StreetInput{
		street("A", 0, 100, 200, 100, 4),
		street("B", 50, 50, 50, 150, 4),
		street("C", 150, 50, 150, 150, 4),
	})
	require.NoError(t, err)

	sim, err := agent.NewSimulation(m, agent.SimulationOptions{
		AgentCount: count,
		Duration:   3600,
		Speed:      agent.Distribution{Kind: agent.Uniform, Min: 1, Max: 1},
		Pause:      agent.Distribution{Kind: agent.Uniform, Min: 5, Max: 5},
		Metric:     crumb.MinDistance,
		NewChooser: func(m *mapmodel.Map) (destination.Chooser, error) {
			return destination.NewUniform(m), nil
		},
		Workers: 2,
	}, rng.NewSeedGenerator(11), nil)
	require.NoError(t, err)

	return sim
}

func TestDiscreteAdvanceStrictlyIncreasesTime(t *testing.T) {
	sim := newTestSimulation(t, 1)
	d := replay.NewDiscrete(sim)
	before := d.TimeMillis(0)
	more, err := d.Advance(0)
	require.NoError(t, err)
	require.True(t, more)
	require.Greater(t, d.TimeMillis(0), before)
}

func TestRecordingSetTimeForwardAndRewind(t *testing.T) {
	sim := newTestSimulation(t, 1)
	r := replay.NewRecording(sim)

	r.SetTime(0, 500)
	posAt500 := r.GetLocation(0)

	r.SetTime(0, 1500)
	posAt1500 := r.GetLocation(0)
	require.NotEqual(t, posAt500, posAt1500)

	r.SetTime(0, 0)
	posAt0 := r.GetLocation(0)

	r.SetTime(0, 500)
	posAt500Again := r.GetLocation(0)
	require.Equal(t, posAt500, posAt500Again)
	_ = posAt0
}

func TestRecordingMultipleAgentsIndependent(t *testing.T) {
	sim := newTestSimulation(t, 3)
	r := replay.NewRecording(sim)
	require.Equal(t, 3, r.AgentCount())

	r.SetTime(0, 1000)
	r.SetTime(1, 2000)
	r.SetTime(2, 0)

	_ = r.GetLocation(0)
	_ = r.GetLocation(1)
	_ = r.GetLocation(2)
}
