package mapmodel

import (
	"math"

	"github.com/vogtryan/dbs3/geom"
)

// intersectionPair is the shared record behind a mirrored pair of
// Intersection views, per DESIGN NOTES §9: representing the mirror
// relationship as a single record with two light views avoids the
// reference cycle a pair of mutually-pointing objects would need.
type intersectionPair struct {
	id       int
	streetA  int
	streetB  int
	centre   geom.Point
	widthA   float64
	widthB   float64
	dirA     geom.Vector // unit direction of street A's midline
	dirB     geom.Vector // unit direction of street B's midline
}

// Intersection is the centre of overlap of two streets, viewed from one
// of its two owning streets. Its mirror shares the same centre and pair
// ID but has the owner/crossing streets swapped.
type Intersection struct {
	pair  *intersectionPair
	owner int // which side: pair.streetA (0) or pair.streetB (1)
}

// Street returns the street that owns this view of the intersection.
func (in Intersection) Street() int {
	if in.owner == 0 {
		return in.pair.streetA
	}

	return in.pair.streetB
}

// Crossing returns the other street participating in the intersection.
func (in Intersection) Crossing() int {
	if in.owner == 0 {
		return in.pair.streetB
	}

	return in.pair.streetA
}

// Centre returns the shared intersection centre point.
func (in Intersection) Centre() geom.Point { return in.pair.centre }

// ID returns the identifier of the underlying mirror pair — stable and
// shared between an intersection and its mirror, used as a cache key
// for the pathfinder's per-run random-corner sampling (spec §4.3).
func (in Intersection) ID() int { return in.pair.id }

// GetMirror returns the same intersection viewed from the other street.
// Invariant: in.GetMirror().GetMirror() == in.
func (in Intersection) GetMirror() Intersection {
	return Intersection{pair: in.pair, owner: 1 - in.owner}
}

// EntryPoints returns the four candidate entry/exit corners of the
// intersection: two along the owner street's midline and two along the
// crossing street's midline, each offset from the centre by
// d = (otherWidth/2) / sin(theta), per spec §3.
func (in Intersection) EntryPoints() [4]geom.Point {
	ownerDir, crossDir := in.pair.dirA, in.pair.dirB
	ownerWidth, crossWidth := in.pair.widthA, in.pair.widthB
	if in.owner == 1 {
		ownerDir, crossDir = crossDir, ownerDir
		ownerWidth, crossWidth = crossWidth, ownerWidth
	}
	theta := ownerDir.AngleBetween(crossDir)
	sinTheta := math.Sin(theta)
	if sinTheta < minSinTheta {
		sinTheta = minSinTheta
	}
	dAlongOwner := (crossWidth / 2) / sinTheta
	dAlongCross := (ownerWidth / 2) / sinTheta

	c := in.pair.centre

	return [4]geom.Point{
		c.Add(ownerDir.ScaledTo(dAlongOwner)),
		c.Add(ownerDir.ScaledTo(-dAlongOwner)),
		c.Add(crossDir.ScaledTo(dAlongCross)),
		c.Add(crossDir.ScaledTo(-dAlongCross)),
	}
}

// minSinTheta guards against division blow-up when two streets cross at
// (nearly) a zero angle — a degenerate but not strictly-parallel cross.
const minSinTheta = 1e-6
