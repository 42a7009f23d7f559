// Package weave models a 2D region as two families of fibres, one per grid
// column (u) and one per grid row (v), and traces the region's boundary as
// closed contours by walking between them.
//
// Cell exposes one grid cell of the weave with its boundary crossings in
// order (FindCell, CreateBoundList, AdvanceCrossSide, BoundListPosition).
// Contour extraction does not use it; it is the entry point for toolpath
// steering that moves a cutter cell by cell inside the region.
package weave

import (
	"errors"
	"fmt"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
	"github.com/unixpickle/essentials"

	"github.com/piwi3910/SlabRough/internal/fibre"
	"github.com/piwi3910/SlabRough/internal/geom"
	"github.com/piwi3910/SlabRough/internal/toolpath"
)

var (
	// ErrCorruptFibre means an endpoint the traversal expects is missing,
	// so the interval data is inconsistent.
	ErrCorruptFibre = errors.New("weave: fibre data inconsistent")
	// ErrContourRunaway means an advance kept turning between fibres
	// without reaching the end of a covered interval.
	ErrContourRunaway = errors.New("weave: contour did not close")
)

// Weave is a fixed grid of fibres. UFibres sit at fixed x and run along y
// over VRange; VFibres sit at fixed y and run along x over URange.
type Weave struct {
	URange, VRange r1.Interval

	UFibres []*fibre.Fibre
	VFibres []*fibre.Fibre

	// Endpoints stamped below firstContour count as unvisited.
	firstContour int
	lastContour  int
}

// New builds a weave over urg × vrg with fibres about res apart. Both
// families include fibres on the range bounds.
func New(urg, vrg r1.Interval, res float64) *Weave {
	if !(res > 0) {
		panic(fmt.Sprintf("weave: resolution %g must be positive", res))
	}
	w := &Weave{URange: urg, VRange: vrg, firstContour: 0, lastContour: -1}

	nu := int(urg.Length()/res) + 2
	w.UFibres = make([]*fibre.Fibre, 0, nu+1)
	for i := 0; i <= nu; i++ {
		w.UFibres = append(w.UFibres, fibre.New(geom.Along(urg, float64(i)/float64(nu)), vrg, fibre.KindU))
	}

	nv := int(vrg.Length()/res) + 2
	w.VFibres = make([]*fibre.Fibre, 0, nv+1)
	for j := 0; j <= nv; j++ {
		w.VFibres = append(w.VFibres, fibre.New(geom.Along(vrg, float64(j)/float64(nv)), urg, fibre.KindV))
	}
	return w
}

// Fibres returns the family of the given kind.
func (w *Weave) Fibres(kind fibre.Kind) []*fibre.Fibre {
	if kind == fibre.KindU {
		return w.UFibres
	}
	return w.VFibres
}

// All returns both families, u first.
func (w *Weave) All() []*fibre.Fibre {
	out := make([]*fibre.Fibre, 0, len(w.UFibres)+len(w.VFibres))
	out = append(out, w.UFibres...)
	return append(out, w.VFibres...)
}

// eachFibre runs fn over every fibre concurrently. Each fibre is handed to
// exactly one call.
func (w *Weave) eachFibre(fn func(f *fibre.Fibre)) {
	all := w.All()
	essentials.ConcurrentMap(0, len(all), func(i int) {
		fn(all[i])
	})
}

// NumEndpoints counts the endpoints of every fibre.
func (w *Weave) NumEndpoints() int {
	n := 0
	for _, f := range w.UFibres {
		n += f.Len()
	}
	for _, f := range w.VFibres {
		n += f.Len()
	}
	return n
}

// CoveredLength sums the covered length of every fibre.
func (w *Weave) CoveredLength() float64 {
	var total float64
	for _, f := range w.All() {
		total += f.CoveredLength()
	}
	return total
}

// SetAllCutCodes tags every endpoint of every fibre.
func (w *Weave) SetAllCutCodes(code int) {
	for _, f := range w.All() {
		f.SetAllCutCodes(code)
	}
}

// Invert complements every fibre within its range.
func (w *Weave) Invert() {
	for _, f := range w.All() {
		f.Invert()
	}
}

// Clear empties every fibre.
func (w *Weave) Clear() {
	for _, f := range w.All() {
		f.Clear()
	}
}

// Cursor points at one endpoint of one fibre during traversal.
type Cursor struct {
	Kind  fibre.Kind
	Index int     // into the family of Kind
	W     float64 // along the fibre
	WP    float64 // the fibre's own position
	Lower bool
}

// Point returns the cursor position in xy.
func (c Cursor) Point() r2.Point {
	if c.Kind == fibre.KindU {
		return r2.Point{X: c.WP, Y: c.W}
	}
	return r2.Point{X: c.W, Y: c.WP}
}

func (w *Weave) fibreAt(c Cursor) *fibre.Fibre {
	return w.Fibres(c.Kind)[c.Index]
}

// findInwards returns the first fibre of fibs, scanning from lw towards
// lwEnd, whose coverage contains lwp. On the first step of an advance a
// fibre exactly at lw counts.
func findInwards(fibs []*fibre.Fibre, lwp float64, lower bool, lw, lwEnd float64, edge bool) (int, bool) {
	if lower {
		for i, f := range fibs {
			if f.WP > lwEnd {
				break
			}
			if (edge && f.WP >= lw) || (!edge && f.WP > lw) {
				if f.Contains(lwp) {
					return i, true
				}
			}
		}
		return 0, false
	}
	for i := len(fibs) - 1; i >= 0; i-- {
		f := fibs[i]
		if f.WP < lwEnd {
			break
		}
		if (edge && f.WP <= lw) || (!edge && f.WP < lw) {
			if f.Contains(lwp) {
				return i, true
			}
		}
	}
	return 0, false
}

// Advance moves c to the next corner of the region boundary. From a lower
// endpoint it runs up the covered interval, from an upper one down, turning
// onto the first perpendicular fibre that is covered where it crosses. With
// no such fibre it lands on the far endpoint and reverses.
func (w *Weave) Advance(c *Cursor) error {
	edge := true
	limit := len(w.UFibres) + len(w.VFibres) + 1
	for turns := 0; ; turns++ {
		if turns > limit {
			return fmt.Errorf("%w: advance from (%g, %g) keeps turning", ErrContourRunaway, c.W, c.WP)
		}
		rg, ok := w.fibreAt(*c).ContainingInterval(c.W)
		if !ok {
			return fmt.Errorf("%w: %v fibre %d does not cover %g", ErrCorruptFibre, c.Kind, c.Index, c.W)
		}
		wEnd := rg.Lo
		if c.Lower {
			wEnd = rg.Hi
		}

		next, found := findInwards(w.Fibres(c.Kind.Other()), c.WP, c.Lower, c.W, wEnd, edge)
		if !found {
			c.W = wEnd
			c.Lower = !c.Lower
			return nil
		}

		c.W = c.WP
		c.Kind = c.Kind.Other()
		c.Index = next
		c.WP = w.fibreAt(*c).WP
		if c.Kind == fibre.KindU {
			c.Lower = !c.Lower
		}
		edge = false
	}
}

// contourIndex finds the endpoint under c.
func (w *Weave) contourIndex(c Cursor) (int, error) {
	f := w.fibreAt(c)
	start := 1
	if c.Lower {
		start = 0
	}
	for i := start; i < f.Len(); i += 2 {
		if f.Endpoint(i).W == c.W {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: no endpoint at %g on %v fibre %d", ErrCorruptFibre, c.W, c.Kind, c.Index)
}

// TrackContour walks the boundary from c, stamping each endpoint it leaves
// with a new contour number, until it reaches an endpoint stamped in the
// current epoch. The returned loop ends on its starting point. Every step
// stamps a fresh endpoint, so the walk ends within NumEndpoints steps; a
// cursor that never reaches a boundary is caught by Advance.
func (w *Weave) TrackContour(c Cursor) ([]r2.Point, error) {
	w.lastContour++

	var path []r2.Point
	for {
		i, err := w.contourIndex(c)
		if err != nil {
			return nil, err
		}
		f := w.fibreAt(c)
		if f.Endpoint(i).Contour >= w.firstContour {
			if got := f.Endpoint(i).Contour; got != w.lastContour {
				return nil, fmt.Errorf("%w: contour %d ran into contour %d", ErrCorruptFibre, w.lastContour, got)
			}
			break
		}
		f.SetContour(i, w.lastContour)
		path = append(path, c.Point())
		if err := w.Advance(&c); err != nil {
			return nil, err
		}
	}
	return append(path, c.Point()), nil
}

// MakeContours starts a new epoch and appends every contour of the region
// to s. Every contour passes through some u-fibre endpoint, so scanning
// the u family finds them all.
func (w *Weave) MakeContours(s *toolpath.Series) error {
	w.firstContour = w.lastContour + 1

	for iu, f := range w.UFibres {
		for i := 0; i < f.Len(); i++ {
			ep := f.Endpoint(i)
			if ep.Contour >= w.firstContour {
				continue
			}
			path, err := w.TrackContour(Cursor{Kind: fibre.KindU, Index: iu, W: ep.W, WP: f.WP, Lower: ep.Lower})
			if err != nil {
				return fmt.Errorf("failed to track contour from u fibre %d: %w", iu, err)
			}
			s.Append(path)
		}
	}
	return nil
}

// Contours returns the number range stamped by the last MakeContours.
func (w *Weave) Contours() (first, last int) {
	return w.firstContour, w.lastContour
}
