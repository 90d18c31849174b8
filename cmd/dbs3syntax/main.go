// Command dbs3syntax computes space-syntax closeness and betweenness
// statistics for a street map and prints them, one segment per line,
// to stdout.
//
// Usage:
//
//	dbs3syntax -map ../maps/fira.smf -minTurns -radius 1000
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/vogtryan/dbs3/crumb"
	"github.com/vogtryan/dbs3/geodesic"
	"github.com/vogtryan/dbs3/mapfile"
	"github.com/vogtryan/dbs3/mapmodel"
	"github.com/vogtryan/dbs3/syntax"
)

type config struct {
	mapPath string
	metric  crumb.Metric
	radius  int
}

func defaultConfig() config {
	return config{mapPath: "../maps/fira.smf", metric: crumb.MinTurns, radius: 1000}
}

// parseArgs registers every flag on a flag.FlagSet, grounded on
// go-highway's cmd/hwygen/main.go (the pack's one complete CLI main) —
// none of this tool's flags take more than one argument, so there is
// no reason to scan args by hand here.
func parseArgs(args []string) (config, error) {
	cfg := defaultConfig()

	fs := flag.NewFlagSet("dbs3syntax", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	mapPath := fs.String("map", cfg.mapPath, "path to a street map file")
	radius := fs.Int("radius", cfg.radius, "sampling radius, in street-to-street turns")
	minAngle := fs.Bool("minAngle", false, "use the minimum-turn-angle crumb metric")
	minDist := fs.Bool("minDist", false, "use the minimum-distance crumb metric")
	minTurns := fs.Bool("minTurns", false, "use the minimum-turn-count crumb metric")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if fs.NArg() > 0 {
		return cfg, fmt.Errorf("unrecognised argument %q", fs.Arg(0))
	}

	if *radius < 0 {
		return cfg, fmt.Errorf("-radius: %d is not a non-negative integer", *radius)
	}

	cfg.mapPath = *mapPath
	cfg.radius = *radius

	switch {
	case *minAngle:
		cfg.metric = crumb.MinAngle
	case *minDist:
		cfg.metric = crumb.MinDistance
	case *minTurns:
		cfg.metric = crumb.MinTurns
	}

	return cfg, nil
}

func main() {
	cfg, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "dbs3syntax:", err)
		os.Exit(-1)
	}

	if err := run(cfg, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "dbs3syntax:", err)
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

	finder := func(m *mapmodel.Map, start, end mapmodel.Waypoint, opts ...geodesic.Option) ([]mapmodel.Path, float64, error) {
		return geodesic.FindAll(m, start, end, append([]geodesic.Option{geodesic.WithMetric(cfg.metric)}, opts...)...)
	}

	closeness, betweenness, err := syntax.Compute(m, finder, cfg.radius, nil)
	if err != nil {
		return fmt.Errorf("computing syntax statistics: %w", err)
	}

	for i := range closeness {
		fmt.Fprintf(out, "%d\t%f\t%f\n", i, closeness[i], betweenness[i])
	}

	return nil
}
