// Package syntax drives the all-pairs space-syntax computation of spec
// §4.5: closeness and betweenness vectors over every segment of a map,
// built on top of whichever geodesic.Finder the caller supplies (one of
// the three metric-specific geodesic finders). The nested-loop,
// deterministic-order style is grounded on
// matrix/impl_floydwarshall.go's fixed i/j iteration; the accumulation
// shape mirrors the pack's own betweenness-approximation example.
package syntax

import (
	"fmt"

	"github.com/vogtryan/dbs3/geodesic"
	"github.com/vogtryan/dbs3/mapmodel"
	"github.com/vogtryan/dbs3/progress"
)

// Compute runs the all-pairs geodesic loop of spec §4.5 over every
// unordered pair of m's segments, using finder to obtain the set of
// minimum-cost geodesics between each pair. radius bounds which pairs
// contribute to closeness (minTurns(street(i), street(j)) <= radius);
// pass a large radius for the effectively-infinite default. mon is
// polled once per pair; a nil mon never cancels.
func Compute(m *mapmodel.Map, finder geodesic.Finder, radius int, mon *progress.Monitor) (closeness, betweenness []float64, err error) {
	segments := m.Segments()
	n := len(segments)
	closeness = make([]float64, n)
	betweenness = make([]float64, n)

	total := n * (n - 1) / 2
	done := 0

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if mon != nil && mon.Cancelled() {
				return nil, nil, mon.Err()
			}

			if err := accumulatePair(m, finder, segments, i, j, radius, closeness, betweenness); err != nil {
				return nil, nil, fmt.Errorf("syntax: segments %d and %d: %w", i, j, err)
			}

			done++
			mon.Report(done, total)
		}
	}

	for i := range closeness {
		if closeness[i] > 0 {
			closeness[i] = 1 / closeness[i]
		}
	}

	return closeness, betweenness, nil
}

func accumulatePair(m *mapmodel.Map, finder geodesic.Finder, segments []mapmodel.Segment, i, j, radius int, closeness, betweenness []float64) error {
	si, sj := segments[i], segments[j]
	start := mapmodel.Waypoint{Point: si.Centre(), Street: si.Street}
	end := mapmodel.Waypoint{Point: sj.Centre(), Street: sj.Street}

	routes, cost, err := finder(m, start, end)
	if err != nil {
		return err
	}
	if len(routes) == 0 {
		return nil
	}

	if m.MinTurns(si.Street, sj.Street) <= radius {
		closeness[i] += cost
		closeness[j] += cost
	}

	counts := make(map[mapmodel.Segment]int)
	for _, route := range routes {
		for _, seg := range geodesic.Segments(m, annotate(route)) {
			counts[seg]++
		}
	}
	for k, seg := range segments {
		if count, ok := counts[seg]; ok {
			betweenness[k] += float64(count) / float64(len(routes))
		}
	}

	return nil
}

// annotate wraps a plain path in geodesic.Annotated values with
// AtIntersection left false throughout: geodesic.Finder's abstract
// signature does not expose the intersection/segment-centre tag, and
// geodesic.Segments' strictly-between enumeration does not depend on
// it, so the conversion loses nothing.
func annotate(path mapmodel.Path) []geodesic.Annotated {
	out := make([]geodesic.Annotated, len(path))
	for i, wp := range path {
		out[i] = geodesic.Annotated{Waypoint: wp}
	}

	return out
}
