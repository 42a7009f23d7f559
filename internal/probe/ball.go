// Package probe intersects a ball-nosed tool with mesh primitives along one
// weave fibre, and slices the mesh with a horizontal line for interiors.
//
// Ball results are computed in a frame where the fibre line is the z-axis
// through the origin, so the same code serves both fibre directions.
package probe

import (
	"math"

	"github.com/golang/geo/r3"
)

// Hit is a covered stretch of a probe line. A flagged end came from a
// primitive's end cap rather than from the middle of a face.
type Hit struct {
	Lo, Hi                   float64
	LoCellBound, HiCellBound bool
}

// BallPoint returns where a ball of radius r centred on the z-axis touches
// point a.
func BallPoint(a r3.Vector, r float64) (Hit, bool) {
	d2 := a.X*a.X + a.Y*a.Y
	if d2 > r*r {
		return Hit{}, false
	}
	h := math.Sqrt(r*r - d2)
	return Hit{Lo: a.Z - h, Hi: a.Z + h, LoCellBound: true, HiCellBound: true}, true
}

// BallEdge returns where a ball of radius r centred on the z-axis touches
// the segment a-b away from its end points. The ends are flagged when they
// come from the segment's end points.
func BallEdge(a, b r3.Vector, r float64) (Hit, bool) {
	v := b.Sub(a)
	vv := v.Norm2()
	if vv == 0 {
		return BallPoint(a, r)
	}

	sideways := v.X*v.X + v.Y*v.Y
	if sideways == 0 {
		// Parallel to the probe.
		if a.X*a.X+a.Y*a.Y > r*r {
			return Hit{}, false
		}
		return Hit{Lo: math.Min(a.Z, b.Z), Hi: math.Max(a.Z, b.Z), LoCellBound: true, HiCellBound: true}, true
	}

	// Distance from (0,0,t) to the infinite line through a and b is at most r
	// for A t^2 + B t + C <= 0.
	w0 := a.Mul(-1)
	wv := w0.Dot(v)
	qa := sideways / vv
	qb := 2*w0.Z - 2*wv*v.Z/vv
	qc := w0.Norm2() - wv*wv/vv - r*r
	disc := qb*qb - 4*qa*qc
	if disc < 0 {
		return Hit{}, false
	}
	sq := math.Sqrt(disc)
	t1 := (-qb - sq) / (2 * qa)
	t2 := (-qb + sq) / (2 * qa)

	// The nearest point on the line must fall between a and b.
	if v.Z == 0 {
		lambda := wv / vv
		if lambda < 0 || lambda > 1 {
			return Hit{}, false
		}
		return Hit{Lo: t1, Hi: t2}, true
	}
	ta := -wv / v.Z
	tb := (vv - wv) / v.Z
	segLo, segHi := math.Min(ta, tb), math.Max(ta, tb)

	h := Hit{Lo: t1, Hi: t2}
	if segLo > h.Lo {
		h.Lo, h.LoCellBound = segLo, true
	}
	if segHi < h.Hi {
		h.Hi, h.HiCellBound = segHi, true
	}
	if h.Lo > h.Hi {
		return Hit{}, false
	}
	return h, true
}

// BallTriangle returns where a ball of radius r centred on the z-axis
// touches the face of triangle p with unit normal n, by clipping the axis
// against the slab of half-thickness r over the triangle. A zero normal
// gives no hit; its edges and corners are sliced separately.
func BallTriangle(p [3]r3.Vector, n r3.Vector, r float64) (Hit, bool) {
	if n == (r3.Vector{}) {
		return Hit{}, false
	}
	lo, hi := math.Inf(-1), math.Inf(1)

	// Each constraint reads alpha*t + beta >= 0 along (0,0,t).
	clip := func(alpha, beta float64) bool {
		if alpha == 0 {
			return beta >= 0
		}
		t := -beta / alpha
		if alpha > 0 {
			lo = math.Max(lo, t)
		} else {
			hi = math.Min(hi, t)
		}
		return true
	}

	np := n.Dot(p[0])
	if !clip(-n.Z, r+np) || !clip(n.Z, r-np) {
		return Hit{}, false
	}
	for i := 0; i < 3; i++ {
		a, b, c := p[i], p[(i+1)%3], p[(i+2)%3]
		m := n.Cross(b.Sub(a))
		if m.Dot(c.Sub(a)) < 0 {
			m = m.Mul(-1)
		}
		if !clip(m.Z, -m.Dot(a)) {
			return Hit{}, false
		}
	}

	if math.IsInf(lo, 0) || math.IsInf(hi, 0) || lo > hi {
		return Hit{}, false
	}
	return Hit{Lo: lo, Hi: hi}, true
}
