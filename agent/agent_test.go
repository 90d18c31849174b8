package agent_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vogtryan/dbs3/agent"
	"github.com/vogtryan/dbs3/crumb"
	"github.com/vogtryan/dbs3/destination"
	"github.com/vogtryan/dbs3/geom"
	"github.com/vogtryan/dbs3/mapmodel"
	"github.com/vogtryan/dbs3/progress"
	"github.com/vogtryan/dbs3/rng"
)

func street(name string, ax, ay, bx, by, width float64) mapmodel.StreetInput {
	return mapmodel.StreetInput{
		Name:    name,
		Midline: geom.LineSegment{A: geom.Point{X: ax, Y: ay}, B: geom.Point{X: bx, Y: by}},
		Width:   width,
	}
}

func gridMap(t *testing.T) *mapmodel.Map {
	t.Helper()
	m, err := mapmodel.NewMap([]mapmodel.StreetInput{
		street("A", 0, 100, 200, 100, 4),
		street("B", 50, 50, 50, 150, 4),
		street("C", 150, 50, 150, 150, 4),
	})
	require.NoError(t, err)

	return m
}

func testOptions(count int, duration float64) agent.SimulationOptions {
	return agent.SimulationOptions{
		AgentCount: count,
		Duration:   duration,
		Speed:      agent.Distribution{Kind: agent.Uniform, Min: 1, Max: 1},
		Pause:      agent.Distribution{Kind: agent.Uniform, Min: 5, Max: 5},
		Metric:     crumb.MinDistance,
		NewChooser: func(m *mapmodel.Map) (destination.Chooser, error) {
			return destination.NewUniform(m), nil
		},
		Workers: 2,
	}
}

func TestNewSimulationBuildsAllAgents(t *testing.T) {
	m := gridMap(t)
	sim, err := agent.NewSimulation(m, testOptions(6, 1000), rng.NewSeedGenerator(1), nil)
	require.NoError(t, err)
	require.Equal(t, 6, sim.AgentCount())
	for i := 0; i < sim.AgentCount(); i++ {
		a := sim.Agent(i)
		require.NotNil(t, a)
		require.Equal(t, 0.0, a.SimulatedTime())
	}
}

func TestNewSimulationIsDeterministicForFixedSeed(t *testing.T) {
	m := gridMap(t)
	sim1, err := agent.NewSimulation(m, testOptions(8, 1000), rng.NewSeedGenerator(42), nil)
	require.NoError(t, err)
	sim2, err := agent.NewSimulation(m, testOptions(8, 1000), rng.NewSeedGenerator(42), nil)
	require.NoError(t, err)

	for i := 0; i < sim1.AgentCount(); i++ {
		require.Equal(t, sim1.Agent(i).Position(), sim2.Agent(i).Position())
		require.Equal(t, sim1.Agent(i).Speed(), sim2.Agent(i).Speed())
	}
}

func TestSimulationAdvanceStopsAtDuration(t *testing.T) {
	m := gridMap(t)
	sim, err := agent.NewSimulation(m, testOptions(1, 10), rng.NewSeedGenerator(7), nil)
	require.NoError(t, err)

	for {
		more, err := sim.Advance(0)
		require.NoError(t, err)
		if !more {
			break
		}
	}
	require.Equal(t, 10.0, sim.Agent(0).SimulatedTime())

	more, err := sim.Advance(0)
	require.NoError(t, err)
	require.False(t, more)
}

func TestSimulationAdvanceOutOfRangeIndex(t *testing.T) {
	m := gridMap(t)
	sim, err := agent.NewSimulation(m, testOptions(1, 10), rng.NewSeedGenerator(1), nil)
	require.NoError(t, err)

	_, err = sim.Advance(5)
	require.ErrorIs(t, err, agent.ErrAgentIndexOutOfRange)
}

func TestNewSimulationZeroAgentCountErrors(t *testing.T) {
	m := gridMap(t)
	_, err := agent.NewSimulation(m, testOptions(0, 10), rng.NewSeedGenerator(1), nil)
	require.Error(t, err)
}

func TestNewSimulationObservesCancellation(t *testing.T) {
	m := gridMap(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	mon := progress.New(ctx)
	_, err := agent.NewSimulation(m, testOptions(4, 10), rng.NewSeedGenerator(1), mon)
	require.ErrorIs(t, err, context.Canceled)
}
