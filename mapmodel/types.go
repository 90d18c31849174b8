// Package mapmodel builds and exposes the street-network map: streets,
// mirrored intersections, segmentation points, segments, and the
// all-pairs minimum-turns matrix the pathfinders and destination
// chooser rely on.
//
// A Map is constructed once, from a flat list of StreetInput values, and
// is immutable thereafter — safe to share by reference across
// goroutines (spec §5's "after construction the map is immutable and
// safe to share").
//
// Complexity: NewMap is O(S^2) for pairwise intersection plus
// O(S*(S+I)) for the per-street BFS that fills MinTurns, where S is the
// street count and I the intersection count — acceptable for maps with
// tens to hundreds of streets (spec §4.1).
package mapmodel

import (
	"errors"

	"github.com/vogtryan/dbs3/geom"
)

// Sentinel errors for Map construction. Every one of them is an
// invariant violation per spec §7: fatal at construction, the offending
// Map is never returned.
var (
	// ErrEmptyStreetList indicates NewMap was given no streets at all.
	ErrEmptyStreetList = errors.New("mapmodel: at least one street is required")

	// ErrBadWidth indicates a street width was not strictly positive.
	ErrBadWidth = errors.New("mapmodel: street width must be positive")

	// ErrStreetContainment indicates one street's footprint strictly
	// encloses another's — a fatal input error per spec §3.
	ErrStreetContainment = errors.New("mapmodel: one street contains another")

	// ErrStreetsIntersectParallel indicates two parallel streets whose
	// footprints overlap without a well-defined crossing point.
	ErrStreetsIntersectParallel = errors.New("mapmodel: parallel streets overlap")

	// ErrOutOfBounds indicates some map geometry fell outside
	// [geom.MinCoord, geom.MaxCoord]^2.
	ErrOutOfBounds = errors.New("mapmodel: geometry out of coordinate bounds")

	// ErrMapDisconnected indicates the street graph induced by
	// intersections is not fully connected.
	ErrMapDisconnected = errors.New("mapmodel: street graph is not connected")
)

// StreetInput describes one street as parsed from a map file, before a
// stable integer ID is assigned by its position in the input list.
type StreetInput struct {
	Name    string
	Midline geom.LineSegment
	Width   float64
}

// Street is a named Road with a stable, non-negative integer ID. Two
// streets are equal iff their IDs match; streets order by ID.
type Street struct {
	ID      int
	Name    string
	Midline geom.LineSegment
	Width   float64
}

// Parallelogram returns the footprint of the street: its midline
// extruded by ±Width/2.
func (s Street) Parallelogram() geom.Parallelogram {
	return geom.Parallelogram{Midline: s.Midline, Width: s.Width}
}

// Equal reports whether s and o are the same street (by ID).
func (s Street) Equal(o Street) bool { return s.ID == o.ID }

// Less orders streets by ID.
func (s Street) Less(o Street) bool { return s.ID < o.ID }

// Length returns the length of the street's midline.
func (s Street) Length() float64 { return s.Midline.Length() }

// Waypoint identifies a location together with the street an agent
// considers itself to be on — significant at intersections, which
// belong to two streets at once.
type Waypoint struct {
	Point  geom.Point
	Street int
}

// Equal reports whether two waypoints share both point and street.
func (w Waypoint) Equal(o Waypoint) bool {
	return w.Point == o.Point && w.Street == o.Street
}

// Path is an ordered sequence of waypoints describing a route.
type Path []Waypoint

// Length returns the summed Euclidean length of consecutive waypoints.
func (p Path) Length() float64 {
	var total float64
	for i := 1; i < len(p); i++ {
		total += p[i].Point.DistanceTo(p[i-1].Point)
	}

	return total
}
