package probe

import (
	"math"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"

	"github.com/piwi3910/SlabRough/internal/fibre"
	"github.com/piwi3910/SlabRough/internal/geom"
)

// Capsule returns where the fibre line at wp crosses the region within rad
// of the 2D segment a-b. The region is convex, so the result is a single
// interval along the fibre.
func Capsule(kind fibre.Kind, wp float64, a, b r2.Point, rad float64) (r1.Interval, bool) {
	// c is the coordinate fixed by the fibre, t the one running along it.
	split := func(p r2.Point) (c, t float64) {
		if kind == fibre.KindU {
			return p.X, p.Y
		}
		return p.Y, p.X
	}
	ac, at := split(a)
	bc, bt := split(b)

	out := r1.EmptyInterval()
	for _, end := range [][2]float64{{ac, at}, {bc, bt}} {
		d := end[0] - wp
		if d*d <= rad*rad {
			h := math.Sqrt(rad*rad - d*d)
			out = out.Union(r1.Interval{Lo: end[1] - h, Hi: end[1] + h})
		}
	}

	vc, vt := bc-ac, bt-at
	vv := vc*vc + vt*vt
	if vv == 0 {
		return out, !out.IsEmpty()
	}

	var band r1.Interval
	if vc == 0 {
		if math.Abs(wp-ac) > rad {
			return out, !out.IsEmpty()
		}
		band = geom.Span(at, bt)
	} else {
		// Within rad of the infinite line...
		tc := at + vt*(wp-ac)/vc
		half := rad * math.Sqrt(vv) / math.Abs(vc)
		band = r1.Interval{Lo: tc - half, Hi: tc + half}

		// ...and projecting between a and b.
		off := (wp - ac) * vc
		if vt == 0 {
			if lambda := off / vv; lambda < 0 || lambda > 1 {
				return out, !out.IsEmpty()
			}
		} else {
			band = band.Intersection(geom.Span(at-off/vt, at+(vv-off)/vt))
		}
	}
	if !band.IsEmpty() {
		out = out.Union(band)
	}
	return out, !out.IsEmpty()
}
