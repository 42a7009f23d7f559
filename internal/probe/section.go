package probe

import (
	"sort"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r3"

	"github.com/piwi3910/SlabRough/internal/fibre"
	"github.com/piwi3910/SlabRough/internal/surface"
)

// Section collects where a horizontal line at Height crosses a closed mesh
// and pairs the crossings into inside intervals.
type Section struct {
	Kind   fibre.Kind
	WP     float64
	Range  r1.Interval
	Height float64

	crossings []float64
	chords    []r1.Interval
}

// NewSection starts a section of f's line at height h.
func NewSection(f *fibre.Fibre, h float64) *Section {
	return &Section{Kind: f.Kind, WP: f.WP, Range: f.Range, Height: h}
}

// Footprint returns the world xy box of the line.
func (s *Section) Footprint() (xrg, yrg r1.Interval) {
	across := r1.Interval{Lo: s.WP - SearchEpsilon, Hi: s.WP + SearchEpsilon}
	along := s.Range.Expanded(SearchEpsilon)
	if s.Kind == fibre.KindU {
		return across, along
	}
	return along, across
}

// across and along split a point into the coordinate fixed by the line and
// the coordinate running along it.
func (s *Section) across(p r3.Vector) float64 {
	if s.Kind == fibre.KindU {
		return p.X
	}
	return p.Y
}

func (s *Section) along(p r3.Vector) float64 {
	if s.Kind == fibre.KindU {
		return p.Y
	}
	return p.X
}

type sectionPoint struct{ t, z float64 }

// Triangle records the crossings of triangle ti of m. Vertices exactly on
// the vertical plane count as below it, and crossing points are computed
// from the shared edge so neighbouring triangles agree.
func (s *Section) Triangle(m *surface.Mesh, ti int) {
	tri := m.Triangles[ti]
	var pts [3]sectionPoint
	n := 0
	for _, ei := range tri.Edges {
		p, q := m.EdgePoints(ei)
		pa, qa := s.across(p) > s.WP, s.across(q) > s.WP
		if pa == qa {
			continue
		}
		if n == len(pts) {
			return
		}
		k := (s.WP - s.across(p)) / (s.across(q) - s.across(p))
		pts[n] = sectionPoint{
			t: s.along(p) + k*(s.along(q)-s.along(p)),
			z: p.Z + k*(q.Z-p.Z),
		}
		n++
	}
	if n != 2 {
		return
	}
	a, b := pts[0], pts[1]

	if a.z == s.Height && b.z == s.Height {
		c := m.TrianglePoints(ti)
		if c[0].Z == s.Height && c[1].Z == s.Height && c[2].Z == s.Height {
			// Flat face lying on the section line.
			s.chords = append(s.chords, r1.IntervalFromPoint(a.t).AddPoint(b.t))
		}
		return
	}
	if (a.z > s.Height) == (b.z > s.Height) {
		return
	}
	s.crossings = append(s.crossings, a.t+(s.Height-a.z)*(b.t-a.t)/(b.z-a.z))
}

// Intervals pairs the crossings in order and adds flat chords. An odd
// crossing count, from an open mesh, drops the last crossing.
func (s *Section) Intervals() []r1.Interval {
	sort.Float64s(s.crossings)
	out := make([]r1.Interval, 0, len(s.crossings)/2+len(s.chords))
	for i := 1; i < len(s.crossings); i += 2 {
		out = append(out, r1.Interval{Lo: s.crossings[i-1], Hi: s.crossings[i]})
	}
	return append(out, s.chords...)
}

// MergeInto unions the inside intervals, trimmed to the fibre, into f.
func (s *Section) MergeInto(f *fibre.Fibre) {
	for _, rg := range s.Intervals() {
		rg = rg.Intersection(s.Range)
		if rg.Lo < rg.Hi {
			f.Merge(rg.Lo, rg.Hi, false, false)
		}
	}
}
