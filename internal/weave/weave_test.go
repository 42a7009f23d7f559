package weave

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/SlabRough/internal/fibre"
	"github.com/piwi3910/SlabRough/internal/spatial"
	"github.com/piwi3910/SlabRough/internal/surface"
	"github.com/piwi3910/SlabRough/internal/toolpath"
)

// squareWeave returns a coarse weave with fibres at -2.5, 2.5, 7.5, 12.5
// covering the square [0,10]².
func squareWeave() *Weave {
	w := New(r1.Interval{Lo: -2.5, Hi: 12.5}, r1.Interval{Lo: -2.5, Hi: 12.5}, 10)
	for _, f := range w.All() {
		if f.WP > 0 && f.WP < 10 {
			f.Merge(0, 10, false, false)
		}
	}
	return w
}

func newCubeArea(t *testing.T, radius float64) *Area {
	t.Helper()
	m, err := surface.Build(surface.BoxTriangles(r3.Vector{}, r3.Vector{X: 10, Y: 10, Z: 10}))
	require.NoError(t, err)
	w := New(r1.Interval{Lo: -5, Hi: 15}, r1.Interval{Lo: -5, Hi: 15}, 0.5)
	a := NewArea(w, m, spatial.Build(m, 2.5), radius)
	a.SetSurfaceTop()
	return a
}

// distToSquare is the xy distance from p to [0,10]².
func distToSquare(p r2.Point) float64 {
	dx := math.Max(0, math.Max(-p.X, p.X-10))
	dy := math.Max(0, math.Max(-p.Y, p.Y-10))
	return math.Hypot(dx, dy)
}

// ─── Construction Tests ───

func TestNewFibrePositions(t *testing.T) {
	w := New(r1.Interval{Lo: 0, Hi: 10}, r1.Interval{Lo: 0, Hi: 4}, 1)
	require.Len(t, w.UFibres, 13)
	require.Len(t, w.VFibres, 7)

	assert.Equal(t, 0.0, w.UFibres[0].WP)
	assert.Equal(t, 10.0, w.UFibres[12].WP)
	assert.Equal(t, 4.0, w.VFibres[6].WP)
	for _, f := range w.UFibres {
		assert.Equal(t, fibre.KindU, f.Kind)
		assert.Equal(t, r1.Interval{Lo: 0, Hi: 4}, f.Range)
	}
	for _, f := range w.VFibres {
		assert.Equal(t, fibre.KindV, f.Kind)
		assert.Equal(t, r1.Interval{Lo: 0, Hi: 10}, f.Range)
	}

	first, last := w.Contours()
	assert.Equal(t, 0, first)
	assert.Equal(t, -1, last)
}

func TestNewRejectsZeroResolution(t *testing.T) {
	assert.Panics(t, func() { New(r1.Interval{Lo: 0, Hi: 1}, r1.Interval{Lo: 0, Hi: 1}, 0) })
}

func TestCursorPoint(t *testing.T) {
	assert.Equal(t, r2.Point{X: 2, Y: 5}, Cursor{Kind: fibre.KindU, WP: 2, W: 5}.Point())
	assert.Equal(t, r2.Point{X: 5, Y: 2}, Cursor{Kind: fibre.KindV, WP: 2, W: 5}.Point())
}

// ─── Contour Tests ───

func TestSquareContour(t *testing.T) {
	w := squareWeave()
	s := toolpath.NewSeries(0)
	require.NoError(t, w.MakeContours(s))

	require.Equal(t, 1, s.NumPaths())
	want := []r2.Point{
		{X: 2.5, Y: 0}, {X: 7.5, Y: 0}, {X: 10, Y: 2.5}, {X: 10, Y: 7.5},
		{X: 7.5, Y: 10}, {X: 2.5, Y: 10}, {X: 0, Y: 7.5}, {X: 0, Y: 2.5},
		{X: 2.5, Y: 0},
	}
	assert.Equal(t, want, s.Path(0))
	assert.Greater(t, toolpath.SignedArea(s.Path(0)), 0.0)

	first, last := w.Contours()
	for _, f := range w.All() {
		for _, ep := range f.Endpoints() {
			assert.GreaterOrEqual(t, ep.Contour, first)
			assert.LessOrEqual(t, ep.Contour, last)
		}
	}
}

func TestMakeContoursNewEpoch(t *testing.T) {
	w := squareWeave()
	s := toolpath.NewSeries(0)
	require.NoError(t, w.MakeContours(s))
	require.NoError(t, w.MakeContours(s))

	// Earlier stamps count as unvisited, so the contour comes out again.
	require.Equal(t, 2, s.NumPaths())
	assert.Equal(t, s.Path(0), s.Path(1))
	first, last := w.Contours()
	assert.Equal(t, 1, first)
	assert.Equal(t, 1, last)
}

func TestTwoSquares(t *testing.T) {
	w := New(r1.Interval{Lo: -5.3, Hi: 25}, r1.Interval{Lo: -5, Hi: 15}, 0.7)
	for _, f := range w.All() {
		if f.Kind == fibre.KindU {
			if f.WP > 0 && f.WP < 10 || f.WP > 12 && f.WP < 20 {
				f.Merge(0, 10, false, false)
			}
			continue
		}
		if f.WP > 0 && f.WP < 10 {
			f.Merge(0, 10, false, false)
			f.Merge(12, 20, false, false)
		}
	}

	s := toolpath.NewSeries(0)
	require.NoError(t, w.MakeContours(s))
	require.Equal(t, 2, s.NumPaths())
	for _, path := range s.Paths() {
		assert.Equal(t, path[0], path[len(path)-1])
	}
}

func TestTrackContourCorruptCursor(t *testing.T) {
	w := squareWeave()
	w.firstContour = w.lastContour + 1
	_, err := w.TrackContour(Cursor{Kind: fibre.KindU, Index: 1, W: 3, WP: 2.5, Lower: true})
	assert.ErrorIs(t, err, ErrCorruptFibre)

	c := Cursor{Kind: fibre.KindU, Index: 0, W: 3, WP: -2.5, Lower: true}
	assert.ErrorIs(t, w.Advance(&c), ErrCorruptFibre)
}

func TestAdvanceTurnLimit(t *testing.T) {
	// Four fully covered fibres form a square of crossings. Started off an
	// endpoint, the cursor circles the square without reaching an end.
	rg := r1.Interval{Lo: -0.5, Hi: 1.5}
	w := &Weave{URange: rg, VRange: rg, lastContour: -1}
	for _, wp := range []float64{0, 1} {
		w.UFibres = append(w.UFibres, fibre.New(wp, rg, fibre.KindU))
		w.VFibres = append(w.VFibres, fibre.New(wp, rg, fibre.KindV))
	}
	for _, f := range w.All() {
		f.Merge(rg.Lo, rg.Hi, false, false)
	}

	c := Cursor{Kind: fibre.KindU, Index: 0, W: 0.5, WP: 0, Lower: true}
	assert.ErrorIs(t, w.Advance(&c), ErrContourRunaway)
}

func TestRandomRegionsClose(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	for trial := 0; trial < 20; trial++ {
		w := New(r1.Interval{Lo: 0, Hi: 20}, r1.Interval{Lo: 0, Hi: 20}, 0.45)
		discs := toolpath.NewSeries(0)
		for i := 0; i < 6; i++ {
			discs.Append([]r2.Point{{X: 3 + rng.Float64()*14, Y: 3 + rng.Float64()*14}})
		}
		w.OffsetArea(discs, 1+rng.Float64()*2)

		s := toolpath.NewSeries(0)
		require.NoError(t, w.MakeContours(s), "trial %d", trial)
		require.Positive(t, s.NumPaths())
		for _, path := range s.Paths() {
			assert.Equal(t, path[0], path[len(path)-1])
		}

		first, last := w.Contours()
		for _, f := range w.UFibres {
			for _, ep := range f.Endpoints() {
				assert.GreaterOrEqual(t, ep.Contour, first)
				assert.LessOrEqual(t, ep.Contour, last)
			}
		}
	}
}

// ─── Area Tests ───

func TestCubeSliceGivesOneInflatedContour(t *testing.T) {
	const r = 2.0
	a := newCubeArea(t, r)

	for _, z := range []float64{8, 5, 0.5} {
		require.NoError(t, a.SliceToHeight(z))
		s, err := a.ExtractContours()
		require.NoError(t, err)

		assert.Equal(t, z, s.Z)
		require.Equal(t, 1, s.NumPaths(), "z %g", z)
		lo, hi := s.Bounds()
		assert.InDelta(t, -r, lo.X, 1e-9)
		assert.InDelta(t, -r, lo.Y, 1e-9)
		assert.InDelta(t, 10+r, hi.X, 1e-9)
		assert.InDelta(t, 10+r, hi.Y, 1e-9)
		for _, p := range s.Path(0) {
			assert.InDelta(t, r, distToSquare(p), 1e-6)
		}
	}
}

func TestSliceRejectsRisingHeight(t *testing.T) {
	a := newCubeArea(t, 1)
	require.NoError(t, a.SliceToHeight(5))
	assert.ErrorIs(t, a.SliceToHeight(6), ErrRisingSlice)
	assert.Equal(t, 5.0, a.Z)
}

func TestSliceAboveMeshIsEmpty(t *testing.T) {
	a := newCubeArea(t, 1)
	a.Z = 20
	require.NoError(t, a.SliceToHeight(12))
	assert.Zero(t, a.NumEndpoints())
}

func TestFindInteriorFlatSquare(t *testing.T) {
	m, err := surface.Build(surface.RectTriangles(0, 0, 10, 10, 0))
	require.NoError(t, err)
	w := New(r1.Interval{Lo: -1, Hi: 11}, r1.Interval{Lo: -1, Hi: 11}, 0.5)
	a := NewArea(w, m, spatial.Build(m, 2.5), 0)
	a.SetSurfaceTop()
	a.FindInterior()

	for _, f := range w.All() {
		if f.WP > 0 && f.WP < 10 {
			assert.Equal(t, []r1.Interval{{Lo: 0, Hi: 10}}, f.Intervals(), "%v fibre at %g", f.Kind, f.WP)
		} else {
			assert.True(t, f.Empty(), "%v fibre at %g", f.Kind, f.WP)
		}
	}
}

// ─── Offset and Cut Tests ───

func TestOffsetAndCut(t *testing.T) {
	w := New(r1.Interval{Lo: 0, Hi: 10}, r1.Interval{Lo: 0, Hi: 10}, 0.3)
	path := toolpath.NewSeries(0)
	path.Append([]r2.Point{{X: 2, Y: 5}, {X: 8, Y: 5}})
	w.OffsetArea(path, 1)

	for _, f := range w.UFibres {
		if f.WP > 1 && f.WP < 9 {
			assert.True(t, f.Contains(5), "u fibre at %g", f.WP)
			assert.False(t, f.Contains(6.5))
		}
		if f.WP < 0.9 || f.WP > 9.1 {
			assert.True(t, f.Empty())
		}
	}
	for _, f := range w.VFibres {
		if f.WP > 4 && f.WP < 6 {
			rg, ok := f.ContainingInterval(5)
			require.True(t, ok)
			half := math.Sqrt(1 - (f.WP-5)*(f.WP-5))
			assert.InDelta(t, 2-half, rg.Lo, 1e-12)
			assert.InDelta(t, 8+half, rg.Hi, 1e-12)
		}
	}

	w.CutToolpath(path, 1)
	assert.Zero(t, w.NumEndpoints())
}

func TestCutSegment(t *testing.T) {
	w := New(r1.Interval{Lo: 0, Hi: 10}, r1.Interval{Lo: 0, Hi: 10}, 1)
	w.Clear()
	w.Invert()
	w.CutSegment(r2.Point{X: 5, Y: -1}, r2.Point{X: 5, Y: 11}, 1)

	for _, f := range w.UFibres {
		if math.Abs(f.WP-5) < 1 {
			assert.True(t, f.Empty())
		}
	}
	for _, f := range w.VFibres {
		assert.Equal(t, []r1.Interval{{Lo: 0, Hi: 4}, {Lo: 6, Hi: 10}}, f.Intervals())
	}
}

func TestClipToBoundary(t *testing.T) {
	w := New(r1.Interval{Lo: 0, Hi: 10}, r1.Interval{Lo: 0, Hi: 10}, 0.7)
	w.Invert()

	bound := toolpath.NewSeries(0)
	bound.Append([]r2.Point{{X: 2, Y: 2}, {X: 8, Y: 2}, {X: 8, Y: 8}, {X: 2, Y: 8}, {X: 2, Y: 2}})
	w.ClipToBoundary(bound)

	for _, f := range w.All() {
		if f.WP > 2 && f.WP < 8 {
			assert.Equal(t, []r1.Interval{{Lo: 2, Hi: 8}}, f.Intervals())
		} else if f.WP < 2 || f.WP > 8 {
			assert.True(t, f.Empty())
		}
	}
}

func TestInvertAndCutCodes(t *testing.T) {
	w := squareWeave()
	w.SetAllCutCodes(7)
	for _, f := range w.All() {
		for _, ep := range f.Endpoints() {
			assert.Equal(t, 7, ep.CutCode)
		}
	}

	before := w.CoveredLength()
	w.Invert()
	total := 0.0
	for _, f := range w.All() {
		total += f.Range.Length()
	}
	assert.InDelta(t, total-before, w.CoveredLength(), 1e-9)
	w.Invert()
	assert.InDelta(t, before, w.CoveredLength(), 1e-9)
}
