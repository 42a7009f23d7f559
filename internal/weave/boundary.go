package weave

import (
	"sort"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"

	"github.com/piwi3910/SlabRough/internal/fibre"
	"github.com/piwi3910/SlabRough/internal/toolpath"
)

// insideIntervals returns where the line of f lies inside the closed
// polygons of paths, by the even-odd rule. Polygon vertices exactly on the
// line count as above it.
func insideIntervals(f *fibre.Fibre, paths *toolpath.Series) []r1.Interval {
	split := func(p r2.Point) (across, along float64) {
		if f.Kind == fibre.KindU {
			return p.X, p.Y
		}
		return p.Y, p.X
	}

	var crossings []float64
	for _, path := range paths.Paths() {
		for i := range path {
			pc, pt := split(path[i])
			qc, qt := split(path[(i+1)%len(path)])
			if (pc > f.WP) == (qc > f.WP) {
				continue
			}
			crossings = append(crossings, pt+(f.WP-pc)*(qt-pt)/(qc-pc))
		}
	}
	sort.Float64s(crossings)

	out := make([]r1.Interval, 0, len(crossings)/2)
	for i := 1; i < len(crossings); i += 2 {
		out = append(out, r1.Interval{Lo: crossings[i-1], Hi: crossings[i]})
	}
	return out
}

// ClipToBoundary keeps only the coverage inside the closed paths.
func (w *Weave) ClipToBoundary(paths *toolpath.Series) {
	w.eachFibre(func(f *fibre.Fibre) {
		lo := f.Range.Lo
		for _, rg := range insideIntervals(f, paths) {
			f.Subtract(lo, rg.Lo, false, false)
			lo = rg.Hi
		}
		f.Subtract(lo, f.Range.Hi, false, false)
	})
}
