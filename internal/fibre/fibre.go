// Package fibre implements the interval set attached to one line of the
// weave. A Fibre records which stretches of its line are covered by
// material (or by the tool) as a sorted list of alternating lower and upper
// endpoints.
package fibre

import (
	"fmt"
	"sort"

	"github.com/golang/geo/r1"
)

// Kind tells which way a fibre runs.
type Kind int

const (
	KindNone     Kind = iota
	KindU             // fixed x, runs along y
	KindV             // fixed y, runs along x
	KindCircular      // reserved for radial weaves
)

func (k Kind) String() string {
	switch k {
	case KindU:
		return "u"
	case KindV:
		return "v"
	case KindCircular:
		return "circ"
	default:
		return "none"
	}
}

// Other returns the perpendicular kind for the two grid kinds.
func (k Kind) Other() Kind {
	switch k {
	case KindU:
		return KindV
	case KindV:
		return KindU
	default:
		return k
	}
}

// Unvisited is the contour number of an endpoint no traversal has stamped.
const Unvisited = -1

// Endpoint is one boundary of a covered interval.
type Endpoint struct {
	W         float64 // position along the fibre
	Lower     bool    // true when the covered interval starts here
	CellBound bool    // created by stitching probe results, not a material edge
	Contour   int     // contour number stamped by traversal
	CutCode   int
}

func newEndpoint(w float64, lower, cellBound bool) Endpoint {
	return Endpoint{W: w, Lower: lower, CellBound: cellBound, Contour: Unvisited}
}

// Fibre is a set of disjoint closed intervals on the line at WP.
type Fibre struct {
	WP    float64
	Range r1.Interval
	Kind  Kind

	eps []Endpoint
}

// New returns an empty fibre on the line at wp spanning rg.
func New(wp float64, rg r1.Interval, kind Kind) *Fibre {
	return &Fibre{WP: wp, Range: rg, Kind: kind}
}

// Len returns the number of endpoints, twice the number of intervals.
func (f *Fibre) Len() int { return len(f.eps) }

// Empty reports whether nothing is covered.
func (f *Fibre) Empty() bool { return len(f.eps) == 0 }

// Endpoint returns endpoint i.
func (f *Fibre) Endpoint(i int) Endpoint { return f.eps[i] }

// Endpoints returns the endpoint slice. Callers must not reorder it.
func (f *Fibre) Endpoints() []Endpoint { return f.eps }

// SetContour stamps endpoint i with a contour number.
func (f *Fibre) SetContour(i, contour int) { f.eps[i].Contour = contour }

// Clear removes all coverage.
func (f *Fibre) Clear() { f.eps = f.eps[:0] }

// Intervals returns the covered intervals in order.
func (f *Fibre) Intervals() []r1.Interval {
	out := make([]r1.Interval, 0, len(f.eps)/2)
	for i := 1; i < len(f.eps); i += 2 {
		out = append(out, r1.Interval{Lo: f.eps[i-1].W, Hi: f.eps[i].W})
	}
	return out
}

// CoveredLength returns the total length of the covered intervals.
func (f *Fibre) CoveredLength() float64 {
	var total float64
	for i := 1; i < len(f.eps); i += 2 {
		total += f.eps[i].W - f.eps[i-1].W
	}
	return total
}

// Locate returns the index of the first endpoint at or above rg.Lo and the
// index of the last endpoint at or below rg.Hi. When no endpoint lies in rg
// the second index is one less than the first.
func (f *Fibre) Locate(rg r1.Interval) (int, int) {
	first := sort.Search(len(f.eps), func(i int) bool { return f.eps[i].W >= rg.Lo })
	last := sort.Search(len(f.eps), func(i int) bool { return f.eps[i].W > rg.Hi }) - 1
	return first, last
}

// Merge adds [lo, hi] to the covered set. Zero-length ranges are ignored.
func (f *Fibre) Merge(lo, hi float64, loCellBound, hiCellBound bool) {
	if !(lo < hi) {
		return
	}
	il, ir := f.Locate(r1.Interval{Lo: lo, Hi: hi})
	if il > ir {
		// No endpoint inside the range: either it sits in a gap or it is
		// already covered.
		if il == len(f.eps) || f.eps[il].Lower {
			f.replace(il, il, newEndpoint(lo, true, loCellBound), newEndpoint(hi, false, hiCellBound))
		}
		f.debugCheck("Merge")
		return
	}

	var repl []Endpoint
	if f.eps[il].Lower {
		repl = append(repl, newEndpoint(lo, true, loCellBound))
	}
	if !f.eps[ir].Lower {
		repl = append(repl, newEndpoint(hi, false, hiCellBound))
	}
	f.replace(il, ir+1, repl...)
	f.debugCheck("Merge")
}

// Subtract removes [lo, hi] from the covered set. Zero-length ranges are
// ignored.
func (f *Fibre) Subtract(lo, hi float64, loCellBound, hiCellBound bool) {
	if !(lo < hi) {
		return
	}
	il, ir := f.Locate(r1.Interval{Lo: lo, Hi: hi})
	if il > ir {
		// Strictly inside one covered interval: split it.
		if il < len(f.eps) && !f.eps[il].Lower {
			f.replace(il, il, newEndpoint(lo, false, loCellBound), newEndpoint(hi, true, hiCellBound))
		}
		f.debugCheck("Subtract")
		return
	}

	var repl []Endpoint
	if !f.eps[il].Lower {
		repl = append(repl, newEndpoint(lo, false, loCellBound))
	}
	if f.eps[ir].Lower {
		repl = append(repl, newEndpoint(hi, true, hiCellBound))
	}
	f.replace(il, ir+1, repl...)
	f.debugCheck("Subtract")
}

// replace swaps endpoints [i, j) for repl.
func (f *Fibre) replace(i, j int, repl ...Endpoint) {
	tail := append([]Endpoint(nil), f.eps[j:]...)
	f.eps = append(append(f.eps[:i], repl...), tail...)
}

// Invert complements the covered set within Range.
func (f *Fibre) Invert() {
	for i := range f.eps {
		f.eps[i].Lower = !f.eps[i].Lower
	}

	if len(f.eps) > 0 && f.eps[0].W == f.Range.Lo {
		f.eps = f.eps[1:]
	} else {
		f.eps = append([]Endpoint{newEndpoint(f.Range.Lo, true, false)}, f.eps...)
	}

	if n := len(f.eps); n > 0 && f.eps[n-1].W == f.Range.Hi {
		f.eps = f.eps[:n-1]
	} else {
		f.eps = append(f.eps, newEndpoint(f.Range.Hi, false, false))
	}
	f.debugCheck("Invert")
}

// Contains reports whether x lies in a covered interval.
func (f *Fibre) Contains(x float64) bool {
	_, ok := f.ContainingInterval(x)
	return ok
}

// ContainingInterval returns the covered interval holding x.
func (f *Fibre) ContainingInterval(x float64) (r1.Interval, bool) {
	i := sort.Search(len(f.eps), func(i int) bool { return f.eps[i].W >= x })
	if i == len(f.eps) {
		return r1.EmptyInterval(), false
	}
	if f.eps[i].Lower {
		// x sits exactly on a lower endpoint or in a gap below it.
		if f.eps[i].W == x {
			return r1.Interval{Lo: x, Hi: f.eps[i+1].W}, true
		}
		return r1.EmptyInterval(), false
	}
	return r1.Interval{Lo: f.eps[i-1].W, Hi: f.eps[i].W}, true
}

// SetAllCutCodes tags every endpoint.
func (f *Fibre) SetAllCutCodes(code int) {
	for i := range f.eps {
		f.eps[i].CutCode = code
	}
}

// Check verifies the endpoints are strictly sorted and alternate lower and
// upper, starting with a lower one.
func (f *Fibre) Check() error {
	if len(f.eps)%2 != 0 {
		return fmt.Errorf("fibre at %g has odd endpoint count %d", f.WP, len(f.eps))
	}
	for i, ep := range f.eps {
		if ep.Lower != (i%2 == 0) {
			return fmt.Errorf("fibre at %g: endpoint %d at %g has wrong side", f.WP, i, ep.W)
		}
		if i > 0 && !(f.eps[i-1].W < ep.W) {
			return fmt.Errorf("fibre at %g: endpoint %d at %g not above %g", f.WP, i, ep.W, f.eps[i-1].W)
		}
	}
	return nil
}

func (f *Fibre) debugCheck(op string) {
	if !debugChecks {
		return
	}
	if err := f.Check(); err != nil {
		panic(op + ": " + err.Error())
	}
}
