package spatial

import (
	"math"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r3"
)

type axis int

const (
	axisX axis = iota
	axisY
)

func (a axis) of(p r3.Vector) float64 {
	if a == axisX {
		return p.X
	}
	return p.Y
}

// clipSlab clips a closed polygon to lo <= coord <= hi. One and two point
// polygons (a vertex, an edge) clip to a point or a segment.
func clipSlab(poly []r3.Vector, a axis, lo, hi float64) []r3.Vector {
	poly = clipHalf(poly, a, lo, true)
	return clipHalf(poly, a, hi, false)
}

// clipHalf is one Sutherland-Hodgman pass.
func clipHalf(in []r3.Vector, a axis, bound float64, keepAbove bool) []r3.Vector {
	if len(in) == 0 {
		return nil
	}
	inside := func(p r3.Vector) bool {
		if keepAbove {
			return a.of(p) >= bound
		}
		return a.of(p) <= bound
	}
	out := make([]r3.Vector, 0, len(in)+2)
	prev := in[len(in)-1]
	prevIn := inside(prev)
	for _, cur := range in {
		curIn := inside(cur)
		if curIn != prevIn {
			out = append(out, cut(prev, cur, a, bound))
		}
		if curIn {
			out = append(out, cur)
		}
		prev, prevIn = cur, curIn
	}
	return out
}

// cut returns the point of p-q on the line coord == bound.
func cut(p, q r3.Vector, a axis, bound float64) r3.Vector {
	t := (bound - a.of(p)) / (a.of(q) - a.of(p))
	r := p.Add(q.Sub(p).Mul(t))
	if a == axisX {
		r.X = bound
	} else {
		r.Y = bound
	}
	return r
}

func extent(poly []r3.Vector, a axis) r1.Interval {
	rg := r1.EmptyInterval()
	for _, p := range poly {
		rg = rg.AddPoint(a.of(p))
	}
	return rg
}

func maxZ(poly []r3.Vector) float64 {
	z := math.Inf(-1)
	for _, p := range poly {
		z = math.Max(z, p.Z)
	}
	return z
}
