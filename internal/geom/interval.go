// Package geom holds the small numeric primitives shared by the slicing
// engine: interval helpers on top of r1.Interval and the Partition used to
// bucket a range into near-uniform parts.
package geom

import (
	"github.com/golang/geo/r1"
)

// Span returns the closed interval between a and b, in either order.
func Span(a, b float64) r1.Interval {
	return r1.IntervalFromPoint(a).AddPoint(b)
}

// Along returns the point at fraction t of the way from rg.Lo to rg.Hi.
func Along(rg r1.Interval, t float64) float64 {
	return rg.Lo + t*(rg.Hi-rg.Lo)
}

// InvAlong is the inverse of Along. A degenerate interval maps every x to 0.
func InvAlong(rg r1.Interval, x float64) float64 {
	l := rg.Hi - rg.Lo
	if l == 0 {
		return 0
	}
	return (x - rg.Lo) / l
}

// Intersect returns the overlap of a and b and whether it is non-empty.
// Touching intervals overlap in a single point.
func Intersect(a, b r1.Interval) (r1.Interval, bool) {
	rg := a.Intersection(b)
	if rg.IsEmpty() {
		return rg, false
	}
	return rg, true
}

// Absorb grows rg so it contains x. An empty interval becomes [x, x].
func Absorb(rg r1.Interval, x float64) r1.Interval {
	if rg.IsEmpty() {
		return r1.IntervalFromPoint(x)
	}
	return rg.AddPoint(x)
}
