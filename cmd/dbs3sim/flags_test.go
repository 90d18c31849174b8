package main

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vogtryan/dbs3/agent"
	"github.com/vogtryan/dbs3/crumb"
)

func TestParseArgsDefaults(t *testing.T) {
	cfg, err := parseArgs(nil)
	require.NoError(t, err)
	require.Equal(t, "../maps/fira.smf", cfg.mapPath)
	require.Equal(t, 100, cfg.agents)
	require.Equal(t, crumb.MinTurns, cfg.metric)
	require.True(t, cfg.chooser.integrated)
}

func TestParseArgsOverridesMapSeedAgents(t *testing.T) {
	cfg, err := parseArgs([]string{"-map", "city.smf", "-seed", "42", "-agents", "250"})
	require.NoError(t, err)
	require.Equal(t, "city.smf", cfg.mapPath)
	require.Equal(t, int64(42), cfg.seed)
	require.Equal(t, 250, cfg.agents)
}

func TestParseArgsDurationUnits(t *testing.T) {
	cfg, err := parseArgs([]string{"-hours", "2"})
	require.NoError(t, err)
	require.Equal(t, 7200.0, cfg.durationSeconds)
}

func TestParseArgsMetricFlags(t *testing.T) {
	cfg, err := parseArgs([]string{"-minDist"})
	require.NoError(t, err)
	require.Equal(t, crumb.MinDistance, cfg.metric)
}

func TestParseArgsSpeedDistribution(t *testing.T) {
	cfg, err := parseArgs([]string{"-speedUniform", "0.5", "3.0"})
	require.NoError(t, err)
	require.Equal(t, agent.Uniform, cfg.speed.Kind)
	require.Equal(t, 0.5, cfg.speed.Min)
	require.Equal(t, 3.0, cfg.speed.Max)
}

func TestParseArgsIntegratedChooser(t *testing.T) {
	cfg, err := parseArgs([]string{"-integrated", "2", "1.5", "500"})
	require.NoError(t, err)
	require.True(t, cfg.chooser.integrated)
	require.Equal(t, 2.0, cfg.chooser.alpha)
	require.Equal(t, 1.5, cfg.chooser.delta)
	require.Equal(t, 500, cfg.chooser.radius)
}

func TestParseArgsUniformChooser(t *testing.T) {
	cfg, err := parseArgs([]string{"-uniform"})
	require.NoError(t, err)
	require.False(t, cfg.chooser.integrated)
}

func TestParseArgsIntegratedNegativeArgumentsError(t *testing.T) {
	_, err := parseArgs([]string{"-integrated", "-1", "1.5", "500"})
	require.Error(t, err)

	_, err = parseArgs([]string{"-integrated", "1", "-1.5", "500"})
	require.Error(t, err)

	_, err = parseArgs([]string{"-integrated", "1", "1.5", "-500"})
	require.Error(t, err)
}

func TestParseArgsUnrecognisedFlagErrors(t *testing.T) {
	_, err := parseArgs([]string{"-bogus"})
	require.Error(t, err)
}

func TestParseArgsMissingArgumentErrors(t *testing.T) {
	_, err := parseArgs([]string{"-seed"})
	require.Error(t, err)
}
