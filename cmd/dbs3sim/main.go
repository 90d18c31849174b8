// Command dbs3sim runs a full mobility simulation over a street map and
// streams per-agent position snapshots as MVISP frames on stdout, per
// spec §6's CLI surface.
//
// Usage:
//
//	dbs3sim -map ../maps/fira.smf -agents 100 -minutes 15 -seed 1
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/vogtryan/dbs3/agent"
	"github.com/vogtryan/dbs3/destination"
	"github.com/vogtryan/dbs3/mapfile"
	"github.com/vogtryan/dbs3/mapmodel"
	"github.com/vogtryan/dbs3/mvisp"
	"github.com/vogtryan/dbs3/replay"
	"github.com/vogtryan/dbs3/rng"
)

func main() {
	cfg, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "dbs3sim:", err)
		os.Exit(-1)
	}

	if err := run(cfg, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "dbs3sim:", err)
		os.Exit(-1)
	}
}

func run(cfg config, out *os.File) error {
	f, err := os.Open(cfg.mapPath)
	if err != nil {
		return fmt.Errorf("opening map: %w", err)
	}
	defer f.Close()

	streets, err := mapfile.Parse(f, cfg.mapPath)
	if err != nil {
		return fmt.Errorf("parsing map: %w", err)
	}
	m, err := mapmodel.NewMap(streets)
	if err != nil {
		return fmt.Errorf("building map: %w", err)
	}

	chooserFactory := cfg.chooser.build()

	durationMs := uint32(cfg.durationSeconds * 1000)
	opts := agent.SimulationOptions{
		AgentCount:       cfg.agents,
		Duration:         cfg.durationSeconds,
		Speed:            cfg.speed,
		Pause:            cfg.pause,
		Metric:           cfg.metric,
		DisableStreetCut: cfg.disableStreetCut,
		NewChooser:       chooserFactory,
	}

	sim, err := agent.NewSimulation(m, opts, rng.NewSeedGenerator(cfg.seed), nil)
	if err != nil {
		return fmt.Errorf("building simulation: %w", err)
	}

	d := replay.NewDiscrete(sim)
	w := bufio.NewWriter(out)
	defer w.Flush()

	if err := mvisp.WriteHeader(w, mvisp.Header{AgentCount: uint32(d.AgentCount()), DurationMs: durationMs}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for id := 0; id < d.AgentCount(); id++ {
		for {
			more, err := d.Advance(id)
			if err != nil {
				return fmt.Errorf("advancing agent %d: %w", id, err)
			}
			x, y := d.PositionMillimetres(id)
			snap := mvisp.Snapshot{
				AgentID:      uint32(id),
				TimestampMs:  uint32(d.TimeMillis(id)),
				XMillimetres: int32(x),
				YMillimetres: int32(y),
			}
			if err := mvisp.WriteSnapshot(w, snap); err != nil {
				return fmt.Errorf("writing snapshot: %w", err)
			}
			if !more {
				break
			}
		}
	}

	return nil
}

// chooserConfig selects which destination.Chooser the simulation uses.
type chooserConfig struct {
	integrated bool
	alpha      float64
	delta      float64
	radius     int
}

func (c chooserConfig) build() func(m *mapmodel.Map) (destination.Chooser, error) {
	if !c.integrated {
		return func(m *mapmodel.Map) (destination.Chooser, error) {
			return destination.NewUniform(m), nil
		}
	}

	return func(m *mapmodel.Map) (destination.Chooser, error) {
		return destination.NewIntegrated(m, c.alpha, c.delta, c.radius, nil)
	}
}
