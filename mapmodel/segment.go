package mapmodel

import "github.com/vogtryan/dbs3/geom"

// SegmentationPoint is a point on a named street: a human description,
// and a signed distance-to-start along the street's midline.
//
// The distance is negative when the point lies past the far end of the
// midline (an intersection extrapolated beyond the street's physical
// extent, per spec §3) and also when it lies before the start (the
// ordinary case of a negative projection); it is within [0, street
// length] otherwise. This separates out-of-physical-range points from
// ordinary interior ones without an extra field.
type SegmentationPoint struct {
	Street      int
	Point       geom.Point
	Description string
	Distance    float64
}

// Less orders segmentation points first by street, then by signed
// distance, with a point-coordinate fallback for numerical-stability
// ties (spec §3/§9: never introduce an epsilon here, compare the
// bit-identical float64 first).
func (a SegmentationPoint) Less(b SegmentationPoint) bool {
	if a.Street != b.Street {
		return a.Street < b.Street
	}
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}

	return a.Point.Less(b.Point)
}

// Segment is a contiguous portion of a single street delimited by two
// segmentation points; the nearer one (by Less) is the sort key.
type Segment struct {
	Street int
	A, B   SegmentationPoint
}

// newSegment builds a segment of street from a and b, with the nearer
// (per SegmentationPoint.Less) first.
func newSegment(street int, a, b SegmentationPoint) Segment {
	if b.Less(a) {
		a, b = b, a
	}

	return Segment{Street: street, A: a, B: b}
}

// Equal reports whether two segments share both endpoints.
func (s Segment) Equal(o Segment) bool {
	return s.Street == o.Street && s.A == o.A && s.B == o.B
}

// Less orders segments street-by-street, then by progression along
// each street (i.e. by their near endpoint).
func (s Segment) Less(o Segment) bool {
	if s.Street != o.Street {
		return s.Street < o.Street
	}

	return s.A.Less(o.A)
}

// Midline returns the physical line segment this map segment spans.
func (s Segment) Midline() geom.LineSegment {
	return geom.LineSegment{A: s.A.Point, B: s.B.Point}
}

// Centre returns the segment's midpoint.
func (s Segment) Centre() geom.Point {
	return s.Midline().Centre()
}
