package probe

import (
	"github.com/golang/geo/r1"
	"github.com/golang/geo/r3"

	"github.com/piwi3910/SlabRough/internal/fibre"
)

// SearchEpsilon widens every probe footprint so primitives lying exactly on
// a cell boundary are not missed.
const SearchEpsilon = 1e-4

// Line is a fibre seen by a ball of radius Radius whose tip is at height Z.
// The ball centre runs along the fibre at Z + Radius.
type Line struct {
	Kind   fibre.Kind
	WP     float64
	Range  r1.Interval
	Z      float64
	Radius float64
}

// ForFibre returns the probe line for f at tool tip height z.
func ForFibre(f *fibre.Fibre, z, radius float64) Line {
	return Line{Kind: f.Kind, WP: f.WP, Range: f.Range, Z: z, Radius: radius}
}

// Transform maps a world point into the frame where the ball centre line is
// the z-axis and frame z is the position along the fibre.
func (l Line) Transform(p r3.Vector) r3.Vector {
	if l.Kind == fibre.KindU {
		return r3.Vector{X: p.X - l.WP, Y: p.Z - l.Radius - l.Z, Z: p.Y}
	}
	return r3.Vector{X: p.Z - l.Radius - l.Z, Y: p.Y - l.WP, Z: p.X}
}

// TransformDir maps a world direction into the same frame.
func (l Line) TransformDir(d r3.Vector) r3.Vector {
	if l.Kind == fibre.KindU {
		return r3.Vector{X: d.X, Y: d.Z, Z: d.Y}
	}
	return r3.Vector{X: d.Z, Y: d.Y, Z: d.X}
}

// Footprint returns the world xy box a primitive must reach to touch the
// ball anywhere along the line.
func (l Line) Footprint() (xrg, yrg r1.Interval) {
	m := l.Radius + SearchEpsilon
	across := r1.Interval{Lo: l.WP - m, Hi: l.WP + m}
	along := l.Range.Expanded(m)
	if l.Kind == fibre.KindU {
		return across, along
	}
	return along, across
}

// Point slices a world point.
func (l Line) Point(p r3.Vector) (Hit, bool) {
	return l.clip(BallPoint(l.Transform(p), l.Radius))
}

// Edge slices a world segment.
func (l Line) Edge(a, b r3.Vector) (Hit, bool) {
	return l.clip(BallEdge(l.Transform(a), l.Transform(b), l.Radius))
}

// Triangle slices the face of a world triangle with unit normal n.
func (l Line) Triangle(p [3]r3.Vector, n r3.Vector) (Hit, bool) {
	q := [3]r3.Vector{l.Transform(p[0]), l.Transform(p[1]), l.Transform(p[2])}
	return l.clip(BallTriangle(q, l.TransformDir(n), l.Radius))
}

// clip trims a hit to the fibre's extent. Trimmed ends are cell boundaries.
func (l Line) clip(h Hit, ok bool) (Hit, bool) {
	if !ok {
		return h, false
	}
	if h.Lo < l.Range.Lo {
		h.Lo, h.LoCellBound = l.Range.Lo, true
	}
	if h.Hi > l.Range.Hi {
		h.Hi, h.HiCellBound = l.Range.Hi, true
	}
	return h, h.Lo < h.Hi
}

// MergeInto adds the hit to f.
func (h Hit) MergeInto(f *fibre.Fibre) {
	f.Merge(h.Lo, h.Hi, h.LoCellBound, h.HiCellBound)
}

// SubtractFrom removes the hit from f.
func (h Hit) SubtractFrom(f *fibre.Fibre) {
	f.Subtract(h.Lo, h.Hi, h.LoCellBound, h.HiCellBound)
}
