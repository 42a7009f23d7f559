package weave

import (
	"errors"
	"fmt"
	"sync"

	"github.com/golang/geo/r2"

	"github.com/piwi3910/SlabRough/internal/fibre"
	"github.com/piwi3910/SlabRough/internal/probe"
	"github.com/piwi3910/SlabRough/internal/spatial"
	"github.com/piwi3910/SlabRough/internal/surface"
	"github.com/piwi3910/SlabRough/internal/toolpath"
)

// ErrRisingSlice is returned when a slice is asked to move up.
var ErrRisingSlice = errors.New("weave: slice height above current height")

// Area is a weave holding the region a ball-nosed tool of the given radius
// cannot enter at height Z: the fibres cover every tool tip position where
// the ball would touch or sit inside the mesh.
type Area struct {
	*Weave

	Mesh   *surface.Mesh
	Index  *spatial.Index
	Radius float64
	Z      float64

	visitors sync.Pool
}

// NewArea ties w to a mesh and its spatial index.
func NewArea(w *Weave, m *surface.Mesh, idx *spatial.Index, radius float64) *Area {
	a := &Area{Weave: w, Mesh: m, Index: idx, Radius: radius}
	a.visitors.New = func() any { return idx.NewVisitor() }
	return a
}

// SetSurfaceTop puts the slice height at the top of the mesh.
func (a *Area) SetSurfaceTop() {
	a.Z = a.Mesh.ZRange.Hi
}

// slice runs fn over every fibre concurrently with a visitor per call.
func (a *Area) slice(fn func(f *fibre.Fibre, v *spatial.Visitor)) {
	a.eachFibre(func(f *fibre.Fibre) {
		v := a.visitors.Get().(*spatial.Visitor)
		fn(f, v)
		a.visitors.Put(v)
	})
}

// FindInterior adds to every fibre where its line, raised to the ball
// centre height, lies inside the mesh.
func (a *Area) FindInterior() {
	h := a.Z + a.Radius
	a.slice(func(f *fibre.Fibre, v *spatial.Visitor) {
		s := probe.NewSection(f, h)
		a.Index.SectionFibre(s, v)
		s.MergeInto(f)
	})
}

// HackDownToZ lowers the slice to z and recomputes every fibre from scratch.
func (a *Area) HackDownToZ(z float64) error {
	if z > a.Z {
		return fmt.Errorf("%w: %g above %g", ErrRisingSlice, z, a.Z)
	}
	a.Z = z
	a.slice(func(f *fibre.Fibre, v *spatial.Visitor) {
		f.Clear()
		s := probe.NewSection(f, z+a.Radius)
		a.Index.SectionFibre(s, v)
		s.MergeInto(f)
		a.Index.SliceFibre(probe.ForFibre(f, z, a.Radius), f, v)
	})
	return nil
}

// SliceToHeight is HackDownToZ.
func (a *Area) SliceToHeight(z float64) error {
	return a.HackDownToZ(z)
}

// ExtractContours returns the boundary of the current region as closed
// loops at height Z.
func (a *Area) ExtractContours() (*toolpath.Series, error) {
	s := toolpath.NewSeries(a.Z)
	if err := a.MakeContours(s); err != nil {
		return nil, err
	}
	return s, nil
}

// segments calls fn for each consecutive point pair of every path. A single
// point path gives one zero-length segment.
func segments(paths *toolpath.Series, fn func(a, b r2.Point)) {
	for _, path := range paths.Paths() {
		if len(path) == 1 {
			fn(path[0], path[0])
		}
		for i := 1; i < len(path); i++ {
			fn(path[i-1], path[i])
		}
	}
}

// OffsetArea adds every point within rad of the paths.
func (w *Weave) OffsetArea(paths *toolpath.Series, rad float64) {
	w.eachFibre(func(f *fibre.Fibre) {
		segments(paths, func(a, b r2.Point) {
			if rg, ok := probe.Capsule(f.Kind, f.WP, a, b, rad); ok {
				rg = rg.Intersection(f.Range)
				f.Merge(rg.Lo, rg.Hi, false, false)
			}
		})
	})
}

// CutToolpath removes every point within rad of the paths.
func (w *Weave) CutToolpath(paths *toolpath.Series, rad float64) {
	w.eachFibre(func(f *fibre.Fibre) {
		segments(paths, func(a, b r2.Point) {
			if rg, ok := probe.Capsule(f.Kind, f.WP, a, b, rad); ok {
				f.Subtract(rg.Lo, rg.Hi, false, false)
			}
		})
	})
}

// CutSegment removes the disc of radius rad swept from a to b.
func (w *Weave) CutSegment(a, b r2.Point, rad float64) {
	w.eachFibre(func(f *fibre.Fibre) {
		if rg, ok := probe.Capsule(f.Kind, f.WP, a, b, rad); ok {
			f.Subtract(rg.Lo, rg.Hi, false, false)
		}
	})
}
