package geom

import (
	"fmt"

	"github.com/golang/geo/r1"
)

// Partition splits a range into near-uniform parts so a coordinate can be
// mapped to its part in constant time.
type Partition struct {
	rg     r1.Interval
	bounds []float64 // len(bounds) == NumParts()+1
}

// NewPartition splits rg into int(len/width)+1 equal parts.
func NewPartition(rg r1.Interval, width float64) *Partition {
	n := 1
	if width > 0 && rg.Length() > 0 {
		n = int(rg.Length()/width) + 1
	}
	bounds := make([]float64, n+1)
	for i := 0; i <= n; i++ {
		bounds[i] = Along(rg, float64(i)/float64(n))
	}
	// Along can round the last bound away from rg.Hi.
	bounds[n] = rg.Hi
	return &Partition{rg: rg, bounds: bounds}
}

// Range returns the range the partition was built over.
func (p *Partition) Range() r1.Interval { return p.rg }

// NumParts returns the number of parts.
func (p *Partition) NumParts() int { return len(p.bounds) - 1 }

// Part returns the closed extent of part i.
func (p *Partition) Part(i int) r1.Interval {
	return r1.Interval{Lo: p.bounds[i], Hi: p.bounds[i+1]}
}

// Bound returns boundary i, with Bound(0) == Range().Lo.
func (p *Partition) Bound(i int) float64 { return p.bounds[i] }

// FindPart returns the part i with Bound(i) <= x < Bound(i+1). The last part
// also holds Range().Hi. It panics when x is outside Range().
func (p *Partition) FindPart(x float64) int {
	if !p.rg.Contains(x) {
		panic(fmt.Sprintf("geom: FindPart(%g) outside partition range [%g, %g]", x, p.rg.Lo, p.rg.Hi))
	}
	n := p.NumParts()
	i := int(InvAlong(p.rg, x) * float64(n))
	if i < 0 {
		i = 0
	} else if i >= n {
		i = n - 1
	}
	for i > 0 && x < p.bounds[i] {
		i--
	}
	for i < n-1 && x >= p.bounds[i+1] {
		i++
	}
	return i
}

// FindPartRange returns the first and last part touched by rg.
func (p *Partition) FindPartRange(rg r1.Interval) (int, int) {
	return p.FindPart(rg.Lo), p.FindPart(rg.Hi)
}
