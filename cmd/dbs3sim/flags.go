package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vogtryan/dbs3/agent"
	"github.com/vogtryan/dbs3/crumb"
)

// config holds a parsed command line, per spec §6's CLI surface.
type config struct {
	mapPath          string
	seed             int64
	agents           int
	durationSeconds  float64
	speed            agent.Distribution
	pause            agent.Distribution
	metric           crumb.Metric
	chooser          chooserConfig
	disableStreetCut bool
}

func defaultConfig() config {
	return config{
		mapPath:         "../maps/fira.smf",
		seed:            0,
		agents:          100,
		durationSeconds: 15 * 60,
		speed:           agent.DefaultSpeed,
		pause:           agent.Distribution{Kind: agent.Uniform, Min: 0, Max: 120},
		metric:          crumb.MinTurns,
		chooser:         chooserConfig{integrated: true, alpha: 1, delta: 1, radius: 1000},
	}
}

// parseArgs parses args per spec §6's flag table, starting from
// defaultConfig's values. Single-value and boolean flags are registered
// on a flag.FlagSet (grounded on go-highway's cmd/hwygen/main.go, the
// pack's one complete CLI main). The six distribution flags
// ("-speedUniform min max" through "-pauseLogNormal min max") and
// "-integrated alpha delta radius" each take two or three positional
// arguments, a shape flag.Var does not model, so those seven flags are
// pulled out and scanned by hand before the rest of args reaches the
// FlagSet.
func parseArgs(args []string) (config, error) {
	cfg := defaultConfig()

	var (
		remaining              []string
		speedSet, pauseSet     bool
		speedDist, pauseDist   agent.Distribution
		integratedSet          bool
		integratedAlpha, delta float64
		integratedRadius       int
	)

	for i := 0; i < len(args); i++ {
		tok := args[i]
		switch tok {
		case "-speedUniform", "-speedNormal", "-speedLogNormal", "-pauseUniform", "-pauseNormal", "-pauseLogNormal":
			if i+2 >= len(args) {
				return cfg, fmt.Errorf("%s requires 2 arguments", tok)
			}
			d, err := parseDistribution(tok, args[i+1], args[i+2])
			if err != nil {
				return cfg, err
			}
			if strings.HasPrefix(tok, "-speed") {
				speedDist, speedSet = d, true
			} else {
				pauseDist, pauseSet = d, true
			}
			i += 2
		case "-integrated":
			if i+3 >= len(args) {
				return cfg, fmt.Errorf("-integrated requires 3 arguments")
			}
			alpha, err := strconv.ParseFloat(args[i+1], 64)
			if err != nil {
				return cfg, fmt.Errorf("-integrated: %q is not a number", args[i+1])
			}
			d, err := strconv.ParseFloat(args[i+2], 64)
			if err != nil {
				return cfg, fmt.Errorf("-integrated: %q is not a number", args[i+2])
			}
			radius, err := strconv.Atoi(args[i+3])
			if err != nil || radius < 0 {
				return cfg, fmt.Errorf("-integrated: %q is not a non-negative integer radius", args[i+3])
			}
			if alpha < 0 {
				return cfg, fmt.Errorf("-integrated: alpha %v must be non-negative", alpha)
			}
			if d < 0 {
				return cfg, fmt.Errorf("-integrated: delta %v must be non-negative", d)
			}
			integratedAlpha, delta, integratedRadius, integratedSet = alpha, d, radius, true
			i += 3
		default:
			remaining = append(remaining, tok)
		}
	}

	fs := flag.NewFlagSet("dbs3sim", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	mapPath := fs.String("map", cfg.mapPath, "path to a street map file")
	seed := fs.Int64("seed", cfg.seed, "PRNG seed")
	agents := fs.Int("agents", cfg.agents, "number of agents to simulate")
	milliseconds := fs.Float64("milliseconds", 0, "simulation duration, in milliseconds")
	seconds := fs.Float64("seconds", 0, "simulation duration, in seconds")
	minutes := fs.Float64("minutes", 0, "simulation duration, in minutes")
	hours := fs.Float64("hours", 0, "simulation duration, in hours")
	days := fs.Float64("days", 0, "simulation duration, in days")
	minAngle := fs.Bool("minAngle", false, "use the minimum-turn-angle crumb metric")
	minDist := fs.Bool("minDist", false, "use the minimum-distance crumb metric")
	minTurns := fs.Bool("minTurns", false, "use the minimum-turn-count crumb metric")
	uniform := fs.Bool("uniform", false, "choose destinations uniformly at random")
	disableStreetCut := fs.Bool("disableStreetCut", false, "disable street-cut corner elimination")

	if err := fs.Parse(remaining); err != nil {
		return cfg, err
	}
	if fs.NArg() > 0 {
		return cfg, fmt.Errorf("unrecognised argument %q", fs.Arg(0))
	}

	visited := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { visited[f.Name] = true })

	cfg.mapPath = *mapPath
	cfg.seed = *seed
	if *agents < 1 {
		return cfg, fmt.Errorf("-agents: %d is not a positive integer", *agents)
	}
	cfg.agents = *agents

	durations := []struct {
		flagName string
		value    float64
		unit     float64
	}{
		{"milliseconds", *milliseconds, 0.001},
		{"seconds", *seconds, 1},
		{"minutes", *minutes, 60},
		{"hours", *hours, 3600},
		{"days", *days, 86400},
	}
	for _, d := range durations {
		if visited[d.flagName] {
			cfg.durationSeconds = d.value * d.unit
		}
	}

	switch {
	case *minAngle:
		cfg.metric = crumb.MinAngle
	case *minDist:
		cfg.metric = crumb.MinDistance
	case *minTurns:
		cfg.metric = crumb.MinTurns
	}

	if speedSet {
		cfg.speed = speedDist
	}
	if pauseSet {
		cfg.pause = pauseDist
	}

	switch {
	case integratedSet:
		cfg.chooser = chooserConfig{integrated: true, alpha: integratedAlpha, delta: delta, radius: integratedRadius}
	case *uniform:
		cfg.chooser = chooserConfig{integrated: false}
	}

	cfg.disableStreetCut = *disableStreetCut

	const maxDurationMs = float64(^uint32(0))
	if cfg.durationSeconds*1000 > maxDurationMs {
		return cfg, fmt.Errorf("duration %.0fms exceeds the uint32 millisecond bound", cfg.durationSeconds*1000)
	}

	return cfg, nil
}

func parseDistribution(flagName, minTok, maxTok string) (agent.Distribution, error) {
	min, err := strconv.ParseFloat(minTok, 64)
	if err != nil {
		return agent.Distribution{}, fmt.Errorf("%s: %q is not a number", flagName, minTok)
	}
	max, err := strconv.ParseFloat(maxTok, 64)
	if err != nil {
		return agent.Distribution{}, fmt.Errorf("%s: %q is not a number", flagName, maxTok)
	}

	var kind agent.DistributionKind
	switch {
	case strings.HasSuffix(flagName, "Uniform"):
		kind = agent.Uniform
	case strings.HasSuffix(flagName, "LogNormal"):
		kind = agent.LogNormal
	default:
		kind = agent.Normal
	}

	return agent.Distribution{Kind: kind, Min: min, Max: max}, nil
}
