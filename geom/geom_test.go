package geom_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vogtryan/dbs3/geom"
)

func TestVectorLengthAndScale(t *testing.T) {
	v := geom.Vector{DX: 3, DY: 4}
	require.Equal(t, 5.0, v.Length())

	scaled := v.ScaledTo(10)
	require.InDelta(t, 10.0, scaled.Length(), 1e-9)
}

func TestAngleBetweenOrthogonal(t *testing.T) {
	u := geom.Vector{DX: 1, DY: 0}
	v := geom.Vector{DX: 0, DY: 1}
	require.InDelta(t, math.Pi/2, u.AngleBetween(v), 1e-9)
}

func TestAngleBetweenZeroVector(t *testing.T) {
	u := geom.Vector{DX: 1, DY: 0}
	z := geom.Vector{}
	require.Equal(t, 0.0, u.AngleBetween(z))
}

func TestLineSegmentBasics(t *testing.T) {
	s := geom.LineSegment{A: geom.Point{X: 0, Y: 0}, B: geom.Point{X: 10, Y: 0}}
	require.Equal(t, 10.0, s.Length())
	require.Equal(t, geom.Point{X: 5, Y: 0}, s.Centre())
}

func TestIntersectInfinitePerpendicular(t *testing.T) {
	a := geom.LineSegment{A: geom.Point{X: 0, Y: 0}, B: geom.Point{X: 10, Y: 0}}
	b := geom.LineSegment{A: geom.Point{X: 5, Y: -5}, B: geom.Point{X: 5, Y: 5}}
	pt, ok := a.IntersectInfinite(b)
	require.True(t, ok)
	require.InDelta(t, 5.0, pt.X, 1e-9)
	require.InDelta(t, 0.0, pt.Y, 1e-9)
}

func TestIntersectInfiniteParallel(t *testing.T) {
	a := geom.LineSegment{A: geom.Point{X: 0, Y: 0}, B: geom.Point{X: 10, Y: 0}}
	b := geom.LineSegment{A: geom.Point{X: 0, Y: 5}, B: geom.Point{X: 10, Y: 5}}
	_, ok := a.IntersectInfinite(b)
	require.False(t, ok)
}

func TestParallelogramContains(t *testing.T) {
	mid := geom.LineSegment{A: geom.Point{X: 0, Y: 0}, B: geom.Point{X: 10, Y: 0}}
	pg := geom.Parallelogram{Midline: mid, Width: 2}
	require.True(t, pg.Contains(geom.Point{X: 5, Y: 0.5}))
	require.False(t, pg.Contains(geom.Point{X: 5, Y: 2}))
	require.False(t, pg.Contains(geom.Point{X: -1, Y: 0}))
}

func TestParallelogramEncloses(t *testing.T) {
	big := geom.Parallelogram{
		Midline: geom.LineSegment{A: geom.Point{X: 0, Y: 0}, B: geom.Point{X: 100, Y: 0}},
		Width:   10,
	}
	small := geom.Parallelogram{
		Midline: geom.LineSegment{A: geom.Point{X: 10, Y: 0}, B: geom.Point{X: 20, Y: 0}},
		Width:   2,
	}
	require.True(t, big.Encloses(small))
	require.False(t, small.Encloses(big))
}

func TestInBounds(t *testing.T) {
	require.True(t, geom.InBounds(geom.Point{X: 0, Y: 0}))
	require.True(t, geom.InBounds(geom.Point{X: geom.MaxCoord, Y: geom.MaxCoord}))
	require.False(t, geom.InBounds(geom.Point{X: -1, Y: 0}))
	require.False(t, geom.InBounds(geom.Point{X: geom.MaxCoord + 1, Y: 0}))
}
