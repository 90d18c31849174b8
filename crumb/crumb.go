// Package crumb implements the three cost functors the MEAS pathfinders
// (pathfinder, geodesic) share: MinTurns, MinDistance, and MinAngle.
// Rather than an inheritance hierarchy with downcasts, a Crumb is a
// single tagged-variant struct (spec §9's DESIGN NOTES: "represent a
// crumb as a sum type over the three metrics"); CheckObsolete is a
// switch on the shared Metric tag, and mixing crumbs of different
// metrics in one comparison is a programmer bug, not a runtime error a
// caller can recover from — it panics.
//
// Complexity: every exported function here is O(1) (CheckObsolete does
// one Euclidean-distance computation at most).
package crumb

import (
	"github.com/vogtryan/dbs3/geom"
	"github.com/vogtryan/dbs3/mapmodel"
)

// Metric tags which cost functor produced a Crumb.
type Metric int

const (
	// MinTurns minimises the count of street-to-street transitions.
	MinTurns Metric = iota
	// MinDistance minimises accumulated Euclidean distance.
	MinDistance
	// MinAngle minimises accumulated turning angle.
	MinAngle
)

// Crumb is a node in the MEAS frontier: the waypoint it sits at, a
// predecessor link, an obsolescence flag, and the metric-specific
// accumulated cost / lower-bound-estimate fields.
//
// Invariant: Accumulated() <= LowerBound (spec §3's Crumb invariant);
// once a path completes, LowerBound at the end equals the true total
// cost (spec §8, property 4).
type Crumb struct {
	Metric   Metric
	Waypoint mapmodel.Waypoint
	Pred     *Crumb
	Obsolete bool

	// Turns is the accumulated street-to-street transition count
	// (MinTurns only).
	Turns int

	// Dist is the accumulated Euclidean distance along the path so far.
	// It is the primary cost for MinDistance, and the secondary
	// tie-break cost for MinTurns and MinAngle.
	Dist float64

	// Angle is the accumulated turning angle (MinAngle only).
	Angle float64

	// Inbound is the direction of travel that arrived at Waypoint; nil
	// at the search root, where no physical motion has happened yet
	// (MinAngle only).
	Inbound *geom.Vector

	// LowerBound is the primary admissible cost-to-go estimate used to
	// order the priority queue.
	LowerBound float64

	// LowerBoundSecondary is the secondary cost-to-go estimate used to
	// break LowerBound ties in the priority queue ordering.
	LowerBoundSecondary float64
}

// Accumulated returns the crumb's accumulated primary cost so far,
// independent of metric.
func (c *Crumb) Accumulated() float64 {
	switch c.Metric {
	case MinTurns:
		return float64(c.Turns)
	case MinDistance:
		return c.Dist
	case MinAngle:
		return c.Angle
	default:
		panic("crumb: unknown metric")
	}
}

// NewRoot constructs the zero-cost crumb seeding a search at wp.
func NewRoot(metric Metric, wp mapmodel.Waypoint, endPoint geom.Point) *Crumb {
	c := &Crumb{Metric: metric, Waypoint: wp}
	switch metric {
	case MinTurns:
		// LowerBound is finished by the caller via SetTurnsLowerBound,
		// since it depends on the map's minTurns matrix and the chosen
		// end-street set, neither of which this package knows about.
	case MinDistance:
		c.LowerBound = wp.Point.DistanceTo(endPoint)
	case MinAngle:
		c.LowerBound = 0
		c.LowerBoundSecondary = wp.Point.DistanceTo(endPoint)
	default:
		panic("crumb: unknown metric")
	}

	return c
}

// SetTurnsLowerBound finishes a MinTurns root or successor crumb once
// the caller has looked up the minimum turns from its street to the
// nearest acceptable end street (lowerBoundTurns) — the map-dependent
// half of spec §4.2's "lower-bound turns = accumulated +
// minTurns(current_street, any_end_street)".
func (c *Crumb) SetTurnsLowerBound(lowerBoundTurns int, endPoint geom.Point) {
	c.LowerBound = float64(c.Turns + lowerBoundTurns)
	c.LowerBoundSecondary = c.Dist + c.Waypoint.Point.DistanceTo(endPoint)
}

// NewTurnsSuccessor builds a MinTurns successor crumb at wp, reached
// from pred. streetChanged indicates whether wp's street differs from
// pred's. The caller must still call SetTurnsLowerBound.
func NewTurnsSuccessor(pred *Crumb, wp mapmodel.Waypoint, streetChanged bool) *Crumb {
	turns := pred.Turns
	if streetChanged {
		turns++
	}

	return &Crumb{
		Metric:   MinTurns,
		Waypoint: wp,
		Pred:     pred,
		Turns:    turns,
		Dist:     pred.Dist + pred.Waypoint.Point.DistanceTo(wp.Point),
	}
}

// NewDistanceSuccessor builds a MinDistance successor crumb at wp.
func NewDistanceSuccessor(pred *Crumb, wp mapmodel.Waypoint, endPoint geom.Point) *Crumb {
	dist := pred.Dist + pred.Waypoint.Point.DistanceTo(wp.Point)

	return &Crumb{
		Metric:     MinDistance,
		Waypoint:   wp,
		Pred:       pred,
		Dist:       dist,
		LowerBound: dist + wp.Point.DistanceTo(endPoint),
	}
}

// NewAngleSuccessor builds a MinAngle successor crumb at wp. The
// reorientation cost is the angle between pred's inbound vector (if
// any) and the new leg's inbound vector; an undefined predecessor
// inbound vector contributes no reorientation cost.
func NewAngleSuccessor(pred *Crumb, wp mapmodel.Waypoint, endPoint geom.Point) *Crumb {
	inbound := wp.Point.Sub(pred.Waypoint.Point)
	angle := pred.Angle
	if pred.Inbound != nil {
		angle += pred.Inbound.AngleBetween(inbound)
	}
	dist := pred.Dist + pred.Waypoint.Point.DistanceTo(wp.Point)

	return &Crumb{
		Metric:              MinAngle,
		Waypoint:            wp,
		Pred:                pred,
		Angle:               angle,
		Dist:                dist,
		Inbound:             &inbound,
		LowerBound:          angle,
		LowerBoundSecondary: dist + wp.Point.DistanceTo(endPoint),
	}
}

// CheckObsolete compares an existing frontier crumb (self) against a
// candidate (other) of the same metric and street, per spec §4.2.
// Returns -1 if self obsoletes other, +1 if other obsoletes self, and 0
// if neither dominates. On an exact primary-cost tie, self — the
// already-resident crumb — obsoletes other, so repeated equivalent work
// is not duplicated (spec §9's load-bearing StreetCut tie policy).
//
// Panics if self and other carry different Metric tags: mixing metrics
// in one comparison is a caller bug, not a recoverable condition.
func CheckObsolete(self, other *Crumb, allowPrimaryTies bool) int {
	if self.Metric != other.Metric {
		panic("crumb: CheckObsolete called across different metrics")
	}
	switch self.Metric {
	case MinTurns:
		return checkObsoleteTurns(self, other, allowPrimaryTies)
	case MinDistance:
		return checkObsoleteDistance(self, other, allowPrimaryTies)
	case MinAngle:
		return checkObsoleteAngle(self, other, allowPrimaryTies)
	default:
		panic("crumb: unknown metric")
	}
}

func checkObsoleteTurns(self, other *Crumb, allowPrimaryTies bool) int {
	if self.Turns < other.Turns {
		return -1
	}
	if other.Turns < self.Turns {
		return 1
	}
	if allowPrimaryTies {
		return 0
	}

	return secondaryDistanceObsolete(self, other)
}

func checkObsoleteDistance(self, other *Crumb, allowPrimaryTies bool) int {
	d := self.Waypoint.Point.DistanceTo(other.Waypoint.Point)
	selfReachesOther := self.Dist+d <= other.Dist
	otherReachesSelf := other.Dist+d <= self.Dist
	if allowPrimaryTies {
		// Strict inequality: exact ties are allowed to coexist.
		selfReachesOther = self.Dist+d < other.Dist
		otherReachesSelf = other.Dist+d < self.Dist
	}
	if selfReachesOther {
		return -1
	}
	if otherReachesSelf {
		return 1
	}

	return 0
}

func checkObsoleteAngle(self, other *Crumb, allowPrimaryTies bool) int {
	if self.Inbound == nil && other.Inbound != nil {
		return -1
	}
	if other.Inbound == nil && self.Inbound != nil {
		return 1
	}

	var delta float64
	if self.Inbound != nil && other.Inbound != nil {
		delta = self.Inbound.AngleBetween(*other.Inbound)
	}

	if self.Angle+delta < other.Angle {
		return -1
	}
	if other.Angle+delta < self.Angle {
		return 1
	}
	if allowPrimaryTies {
		return 0
	}
	if self.Angle+delta == other.Angle || other.Angle+delta == self.Angle {
		return secondaryDistanceObsolete(self, other)
	}

	return 0
}

// secondaryDistanceObsolete implements the shared secondary tie-break:
// self obsoletes other if self can reach other's location at no extra
// accumulated distance, and vice versa.
func secondaryDistanceObsolete(self, other *Crumb) int {
	d := self.Waypoint.Point.DistanceTo(other.Waypoint.Point)
	if self.Dist+d <= other.Dist {
		return -1
	}
	if other.Dist+d <= self.Dist {
		return 1
	}

	return 0
}

// Less orders two crumbs of the same metric by primary lower bound,
// breaking ties on the secondary lower bound — the priority-queue
// ordering of spec §4.2/§4.3.
func Less(a, b *Crumb) bool {
	if a.LowerBound != b.LowerBound {
		return a.LowerBound < b.LowerBound
	}

	return a.LowerBoundSecondary < b.LowerBoundSecondary
}

// Path walks predecessor links from c back to the search root and
// returns the waypoints in forward (root-to-c) order.
func Path(c *Crumb) mapmodel.Path {
	var rev mapmodel.Path
	for cur := c; cur != nil; cur = cur.Pred {
		rev = append(rev, cur.Waypoint)
	}
	path := make(mapmodel.Path, len(rev))
	for i, wp := range rev {
		path[len(rev)-1-i] = wp
	}

	return path
}

// ValidateInvariant panics if accumulated cost exceeds the lower bound,
// the structural invariant spec §3/§8 requires of every crumb. Exposed
// for tests; not called on the hot path.
func ValidateInvariant(c *Crumb) {
	if c.Accumulated() > c.LowerBound+1e-9 {
		panic("crumb: accumulated cost exceeds lower bound")
	}
}
