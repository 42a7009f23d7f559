// Package toolpath holds the 2D point sequences produced by contour
// extraction and consumed by the G-code and report writers.
package toolpath

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// Series is a list of 2D paths at one height. Points holds every path back
// to back; Breaks holds the index where each path ends. Links runs parallel
// to Breaks and carries an optional 3D move joining a path to the next.
type Series struct {
	Z      float64
	Points []r2.Point
	Breaks []int
	Links  [][]r3.Vector
}

// NewSeries returns an empty series at height z.
func NewSeries(z float64) *Series {
	return &Series{Z: z}
}

// Add appends a point to the open path.
func (s *Series) Add(p r2.Point) {
	s.Points = append(s.Points, p)
}

// Append adds a whole path and closes it.
func (s *Series) Append(pts []r2.Point) {
	s.Points = append(s.Points, pts...)
	s.Break()
}

// Break ends the open path.
func (s *Series) Break() {
	s.Breaks = append(s.Breaks, len(s.Points))
	s.Links = append(s.Links, nil)
}

// PopBack drops the last point unless it ends a closed path.
func (s *Series) PopBack() {
	if len(s.Points) == 0 {
		return
	}
	if len(s.Breaks) == 0 || s.Breaks[len(s.Breaks)-1] != len(s.Points) {
		s.Points = s.Points[:len(s.Points)-1]
	}
}

// NumPaths returns the number of closed paths.
func (s *Series) NumPaths() int { return len(s.Breaks) }

// Path returns the points of path i.
func (s *Series) Path(i int) []r2.Point {
	start := 0
	if i > 0 {
		start = s.Breaks[i-1]
	}
	return s.Points[start:s.Breaks[i]]
}

// Paths returns every closed path.
func (s *Series) Paths() [][]r2.Point {
	out := make([][]r2.Point, len(s.Breaks))
	for i := range s.Breaks {
		out[i] = s.Path(i)
	}
	return out
}

// SetLink sets the 3D move following path i.
func (s *Series) SetLink(i int, pts []r3.Vector) {
	s.Links[i] = pts
}

// Bounds returns the xy box of all points.
func (s *Series) Bounds() (lo, hi r2.Point) {
	lo = r2.Point{X: math.Inf(1), Y: math.Inf(1)}
	hi = r2.Point{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, p := range s.Points {
		lo.X, lo.Y = math.Min(lo.X, p.X), math.Min(lo.Y, p.Y)
		hi.X, hi.Y = math.Max(hi.X, p.X), math.Max(hi.Y, p.Y)
	}
	return lo, hi
}

// Length returns the total length of the paths, each taken as a closed loop.
func (s *Series) Length() float64 {
	var total float64
	for _, path := range s.Paths() {
		total += LoopLength(path)
	}
	return total
}

// LoopLength returns the perimeter of a closed polygon.
func LoopLength(path []r2.Point) float64 {
	var total float64
	for i, p := range path {
		total += p.Sub(path[(i+1)%len(path)]).Norm()
	}
	return total
}

// SignedArea returns the shoelace area of a closed polygon, positive when
// it runs anticlockwise.
func SignedArea(path []r2.Point) float64 {
	var a float64
	for i, p := range path {
		q := path[(i+1)%len(path)]
		a += p.Cross(q)
	}
	return a / 2
}

// distToSegment is the distance from p to the segment ab.
func distToSegment(p, a, b r2.Point) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return p.Sub(a).Norm()
	}
	t := math.Max(0, math.Min(1, p.Sub(a).Dot(ab)/l2))
	return p.Sub(a.Add(ab.Mul(t))).Norm()
}

// Thin drops interior points so that every dropped point lies within tol
// of the segment that replaces it. The end points always stay.
func Thin(path []r2.Point, tol float64) []r2.Point {
	if len(path) < 3 || tol <= 0 {
		return append([]r2.Point(nil), path...)
	}
	out := []r2.Point{path[0]}
	anchor := 0
	for i := 1; i < len(path)-1; i++ {
		for j := anchor + 1; j <= i; j++ {
			if distToSegment(path[j], path[anchor], path[i+1]) > tol {
				out = append(out, path[i])
				anchor = i
				break
			}
		}
	}
	return append(out, path[len(path)-1])
}

// Thinned returns a copy of s with every path passed through Thin. Links
// are carried over.
func (s *Series) Thinned(tol float64) *Series {
	out := NewSeries(s.Z)
	for i := range s.Breaks {
		out.Append(Thin(s.Path(i), tol))
		out.Links[i] = s.Links[i]
	}
	return out
}
