package toolpath

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(x0, y0, side float64) []r2.Point {
	return []r2.Point{
		{X: x0, Y: y0}, {X: x0 + side, Y: y0}, {X: x0 + side, Y: y0 + side}, {X: x0, Y: y0 + side}, {X: x0, Y: y0},
	}
}

func TestSeriesPaths(t *testing.T) {
	s := NewSeries(4)
	s.Append(square(0, 0, 2))
	s.Add(r2.Point{X: 5, Y: 5})
	s.Add(r2.Point{X: 6, Y: 5})
	s.Add(r2.Point{X: 6, Y: 6})
	s.Break()

	require.Equal(t, 2, s.NumPaths())
	assert.Equal(t, 4.0, s.Z)
	assert.Len(t, s.Path(0), 5)
	assert.Equal(t, []r2.Point{{X: 5, Y: 5}, {X: 6, Y: 5}, {X: 6, Y: 6}}, s.Path(1))
	assert.Len(t, s.Paths(), 2)
	assert.Len(t, s.Links, 2)

	lo, hi := s.Bounds()
	assert.Equal(t, r2.Point{X: 0, Y: 0}, lo)
	assert.Equal(t, r2.Point{X: 6, Y: 6}, hi)
}

func TestPopBack(t *testing.T) {
	s := NewSeries(0)
	s.PopBack()
	s.Append(square(0, 0, 1))
	s.PopBack()
	assert.Len(t, s.Points, 5, "closed path must not lose points")

	s.Add(r2.Point{X: 9, Y: 9})
	s.PopBack()
	assert.Len(t, s.Points, 5)
}

func TestLengthAndArea(t *testing.T) {
	sq := square(1, 1, 3)
	assert.InDelta(t, 12.0, LoopLength(sq), 1e-12)
	assert.InDelta(t, 12.0, LoopLength(sq[:4]), 1e-12, "open and closed forms agree")
	assert.InDelta(t, 9.0, SignedArea(sq), 1e-12)

	rev := make([]r2.Point, len(sq))
	for i := range sq {
		rev[len(sq)-1-i] = sq[i]
	}
	assert.InDelta(t, -9.0, SignedArea(rev), 1e-12)

	s := NewSeries(0)
	s.Append(sq)
	s.Append(square(10, 0, 1))
	assert.InDelta(t, 16.0, s.Length(), 1e-12)
}

func TestSetLink(t *testing.T) {
	s := NewSeries(0)
	s.Append(square(0, 0, 1))
	link := []r3.Vector{{X: 0, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 5}}
	s.SetLink(0, link)
	assert.Equal(t, link, s.Links[0])
}

// ─── Thin Tests ───

func TestThinDropsCollinear(t *testing.T) {
	path := []r2.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0.00001}, {X: 3, Y: 0}, {X: 3, Y: 3}}
	got := Thin(path, 0.001)
	assert.Equal(t, []r2.Point{{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 3, Y: 3}}, got)

	assert.Equal(t, path, Thin(path, 0), "zero tolerance keeps everything")
	short := path[:2]
	assert.Equal(t, short, Thin(short, 1))
}

func TestThinKeepsShapeWithinTolerance(t *testing.T) {
	var circle []r2.Point
	for i := 0; i <= 360; i++ {
		a := float64(i) * math.Pi / 180
		circle = append(circle, r2.Point{X: 10 * math.Cos(a), Y: 10 * math.Sin(a)})
	}
	const tol = 0.05
	thin := Thin(circle, tol)
	assert.Less(t, len(thin), len(circle))
	assert.Equal(t, circle[0], thin[0])
	assert.Equal(t, circle[len(circle)-1], thin[len(thin)-1])

	// every dropped point stays within tol of the thinned polyline
	for _, p := range circle {
		best := math.Inf(1)
		for i := 1; i < len(thin); i++ {
			best = math.Min(best, distToSegment(p, thin[i-1], thin[i]))
		}
		assert.LessOrEqual(t, best, tol+1e-9)
	}
}

func TestThinnedSeries(t *testing.T) {
	s := NewSeries(2)
	s.Append([]r2.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 0}})
	s.SetLink(0, []r3.Vector{{Z: 2}, {Z: 7}})

	out := s.Thinned(1e-6)
	require.Equal(t, 1, out.NumPaths())
	assert.Len(t, out.Path(0), 4)
	assert.Equal(t, s.Links[0], out.Links[0])
	assert.Equal(t, 2.0, out.Z)
	assert.Len(t, s.Path(0), 5, "source is untouched")
}
