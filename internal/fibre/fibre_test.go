package fibre

import (
	"math/rand"
	"testing"

	"github.com/golang/geo/r1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFibre() *Fibre {
	return New(0, r1.Interval{Lo: 0, Hi: 20}, KindU)
}

// ─── Merge / Subtract Tests ───

func TestMergeIntoEmpty(t *testing.T) {
	f := newTestFibre()
	f.Merge(2, 5, false, true)

	require.Equal(t, 2, f.Len())
	assert.Equal(t, []r1.Interval{{Lo: 2, Hi: 5}}, f.Intervals())
	assert.True(t, f.Endpoint(0).Lower)
	assert.False(t, f.Endpoint(1).Lower)
	assert.True(t, f.Endpoint(1).CellBound)
	assert.Equal(t, Unvisited, f.Endpoint(0).Contour)
}

func TestMergeCases(t *testing.T) {
	tests := []struct {
		name   string
		merges [][2]float64
		want   []r1.Interval
	}{
		{"disjoint below", [][2]float64{{5, 6}, {1, 2}}, []r1.Interval{{Lo: 1, Hi: 2}, {Lo: 5, Hi: 6}}},
		{"disjoint above", [][2]float64{{1, 2}, {5, 6}}, []r1.Interval{{Lo: 1, Hi: 2}, {Lo: 5, Hi: 6}}},
		{"touching above", [][2]float64{{1, 2}, {2, 3}}, []r1.Interval{{Lo: 1, Hi: 3}}},
		{"touching below", [][2]float64{{2, 3}, {1, 2}}, []r1.Interval{{Lo: 1, Hi: 3}}},
		{"inside existing", [][2]float64{{1, 9}, {3, 4}}, []r1.Interval{{Lo: 1, Hi: 9}}},
		{"covers existing", [][2]float64{{3, 4}, {1, 9}}, []r1.Interval{{Lo: 1, Hi: 9}}},
		{"bridges two", [][2]float64{{1, 2}, {5, 6}, {1.5, 5.5}}, []r1.Interval{{Lo: 1, Hi: 6}}},
		{"extends up", [][2]float64{{1, 2}, {5, 6}, {5.5, 8}}, []r1.Interval{{Lo: 1, Hi: 2}, {Lo: 5, Hi: 8}}},
		{"zero length ignored", [][2]float64{{1, 1}}, []r1.Interval{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFibre()
			for _, m := range tt.merges {
				f.Merge(m[0], m[1], false, false)
			}
			assert.Equal(t, tt.want, f.Intervals())
			assert.NoError(t, f.Check())
		})
	}
}

func TestSubtractCases(t *testing.T) {
	tests := []struct {
		name string
		cut  [2]float64
		want []r1.Interval
	}{
		{"split middle", [2]float64{4, 5}, []r1.Interval{{Lo: 2, Hi: 4}, {Lo: 5, Hi: 8}}},
		{"trim lower", [2]float64{1, 3}, []r1.Interval{{Lo: 3, Hi: 8}}},
		{"trim upper", [2]float64{7, 9}, []r1.Interval{{Lo: 2, Hi: 7}}},
		{"exact", [2]float64{2, 8}, []r1.Interval{}},
		{"covering", [2]float64{0, 10}, []r1.Interval{}},
		{"outside", [2]float64{10, 12}, []r1.Interval{{Lo: 2, Hi: 8}}},
		{"touching lower end", [2]float64{2, 3}, []r1.Interval{{Lo: 3, Hi: 8}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFibre()
			f.Merge(2, 8, false, false)
			f.Subtract(tt.cut[0], tt.cut[1], true, true)
			assert.Equal(t, tt.want, f.Intervals())
			assert.NoError(t, f.Check())
		})
	}
}

func TestMergeThenSubtractIsEmpty(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 200; i++ {
		f := newTestFibre()
		lo := rng.Float64() * 19
		hi := lo + rng.Float64()*(20-lo)
		f.Merge(lo, hi, rng.Intn(2) == 0, rng.Intn(2) == 0)
		f.Subtract(lo, hi, false, false)
		assert.True(t, f.Empty(), "merge/subtract of [%g, %g] left %v", lo, hi, f.Intervals())
	}
}

// TestRandomOperationsKeepInvariant replays random merges and subtractions on
// half-unit positions and compares against a sampled reference set.
func TestRandomOperationsKeepInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	const cells = 40 // samples at (k+0.25)/2 for k in [0, cells)

	for trial := 0; trial < 100; trial++ {
		f := newTestFibre()
		ref := make([]bool, cells)

		for op := 0; op < 30; op++ {
			a := rng.Intn(cells + 1)
			b := rng.Intn(cells + 1)
			if a > b {
				a, b = b, a
			}
			lo, hi := float64(a)/2, float64(b)/2
			merge := rng.Intn(3) != 0
			if merge {
				f.Merge(lo, hi, false, false)
			} else {
				f.Subtract(lo, hi, false, false)
			}
			for k := a; k < b; k++ {
				ref[k] = merge
			}

			require.NoError(t, f.Check(), "trial %d op %d", trial, op)
			for k := 0; k < cells; k++ {
				x := (float64(k) + 0.25) / 2
				require.Equal(t, ref[k], f.Contains(x), "trial %d op %d x=%g", trial, op, x)
			}
		}
	}
}

// ─── Invert Tests ───

func TestInvertTwiceRestores(t *testing.T) {
	tests := []struct {
		name   string
		merges [][2]float64
	}{
		{"empty", nil},
		{"interior", [][2]float64{{2, 5}, {7, 9}}},
		{"touches low end", [][2]float64{{0, 5}}},
		{"touches high end", [][2]float64{{3, 20}}},
		{"full range", [][2]float64{{0, 20}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFibre()
			for _, m := range tt.merges {
				f.Merge(m[0], m[1], false, false)
			}
			before := f.Intervals()

			f.Invert()
			require.NoError(t, f.Check())
			f.Invert()
			require.NoError(t, f.Check())

			assert.Equal(t, before, f.Intervals())
		})
	}
}

func TestInvertComplements(t *testing.T) {
	f := newTestFibre()
	f.Merge(2, 5, false, false)
	f.Merge(7, 20, false, false)
	f.Invert()
	assert.Equal(t, []r1.Interval{{Lo: 0, Hi: 2}, {Lo: 5, Hi: 7}}, f.Intervals())
}

// ─── Containment Tests ───

func TestContains(t *testing.T) {
	f := newTestFibre()
	f.Merge(2, 5, false, false)
	f.Merge(7, 9, false, false)

	for _, x := range []float64{2, 3.5, 5, 7, 8, 9} {
		assert.True(t, f.Contains(x), "x=%g", x)
	}
	for _, x := range []float64{0, 1.99, 5.01, 6, 9.5, 20} {
		assert.False(t, f.Contains(x), "x=%g", x)
	}

	rg, ok := f.ContainingInterval(8)
	require.True(t, ok)
	assert.Equal(t, r1.Interval{Lo: 7, Hi: 9}, rg)

	rg, ok = f.ContainingInterval(2)
	require.True(t, ok)
	assert.Equal(t, r1.Interval{Lo: 2, Hi: 5}, rg)

	_, ok = f.ContainingInterval(6)
	assert.False(t, ok)
}

func TestLocate(t *testing.T) {
	f := newTestFibre()
	f.Merge(2, 5, false, false)
	f.Merge(7, 9, false, false)

	il, ir := f.Locate(r1.Interval{Lo: 4, Hi: 7})
	assert.Equal(t, 1, il)
	assert.Equal(t, 2, ir)

	il, ir = f.Locate(r1.Interval{Lo: 5.5, Hi: 6.5})
	assert.Equal(t, 2, il)
	assert.Equal(t, 1, ir)
}

func TestCutCodesAndLength(t *testing.T) {
	f := newTestFibre()
	f.Merge(2, 5, false, false)
	f.Merge(7, 9, false, false)
	f.SetAllCutCodes(3)
	for _, ep := range f.Endpoints() {
		assert.Equal(t, 3, ep.CutCode)
	}
	assert.InDelta(t, 5.0, f.CoveredLength(), 1e-12)

	f.Clear()
	assert.True(t, f.Empty())
}

func TestKindOther(t *testing.T) {
	assert.Equal(t, KindV, KindU.Other())
	assert.Equal(t, KindU, KindV.Other())
	assert.Equal(t, KindNone, KindNone.Other())
	assert.Equal(t, "u", KindU.String())
}
