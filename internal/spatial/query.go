package spatial

import (
	"math"

	"github.com/golang/geo/r1"

	"github.com/piwi3910/SlabRough/internal/fibre"
	"github.com/piwi3910/SlabRough/internal/geom"
	"github.com/piwi3910/SlabRough/internal/probe"
)

// Want selects the primitive kinds a query reports.
type Want uint8

const (
	WantPoints Want = 1 << iota
	WantEdges
	WantTriangles

	WantAll = WantPoints | WantEdges | WantTriangles
)

// Visitor carries the duplicate stamps of one goroutine's queries.
type Visitor struct {
	stamps []uint32
	query  uint32
}

// NewVisitor returns a visitor sized for ix.
func (ix *Index) NewVisitor() *Visitor {
	return &Visitor{stamps: make([]uint32, len(ix.Dups))}
}

func (v *Visitor) begin() {
	v.query++
	if v.query == 0 {
		clear(v.stamps)
		v.query = 1
	}
}

// first stamps a duplicate group and reports whether this query had not
// seen it yet.
func (v *Visitor) first(dup int) bool {
	if dup == NoDup {
		return true
	}
	if v.stamps[dup] == v.query {
		return false
	}
	v.stamps[dup] = v.query
	return true
}

// needsScan reports whether a query box must fall back to the whole mesh.
func (ix *Index) needsScan(xrg, yrg r1.Interval) bool {
	if ix.entries == 0 {
		return true
	}
	return (ix.OutLeft && xrg.Lo < ix.xrg.Lo) ||
		(ix.OutRight && xrg.Hi > ix.xrg.Hi) ||
		(ix.OutDown && yrg.Lo < ix.yrg.Lo) ||
		(ix.OutUp && yrg.Hi > ix.yrg.Hi)
}

// Query calls fn once for each wanted primitive entered in a cell that meets
// xrg × yrg with ZHigh >= zmin. It returns true when it scanned the whole
// mesh instead of the buckets.
func (ix *Index) Query(xrg, yrg r1.Interval, zmin float64, want Want, v *Visitor, fn func(kind PrimKind, i int)) bool {
	if ix.needsScan(xrg, yrg) {
		ix.scan(zmin, want, fn)
		return true
	}
	v.begin()

	xq, ok := geom.Intersect(xrg, ix.xrg)
	if !ok {
		return false
	}
	s0, s1 := ix.X.FindPartRange(xq)
	for s := s0; s <= s1; s++ {
		strip := &ix.Strips[s]
		if strip.Y == nil {
			continue
		}
		yq, ok := geom.Intersect(yrg, strip.Y.Range())
		if !ok {
			continue
		}
		c0, c1 := strip.Y.FindPartRange(yq)
		for c := c0; c <= c1; c++ {
			b := &strip.Buckets[c]
			for _, kind := range []PrimKind{PrimPoint, PrimEdge, PrimTriangle} {
				if want&(1<<kind) == 0 {
					continue
				}
				for _, r := range *b.refs(kind) {
					if r.ZHigh < zmin {
						break
					}
					if v.first(r.Dup) {
						fn(kind, r.Index)
					}
				}
			}
		}
	}
	return false
}

// scan visits every wanted primitive reaching zmin.
func (ix *Index) scan(zmin float64, want Want, fn func(kind PrimKind, i int)) {
	m := ix.Mesh
	if want&WantPoints != 0 {
		for i, p := range m.Vertices {
			if p.Z >= zmin {
				fn(PrimPoint, i)
			}
		}
	}
	if want&WantEdges != 0 {
		for i := range m.Edges {
			a, b := m.EdgePoints(i)
			if math.Max(a.Z, b.Z) >= zmin {
				fn(PrimEdge, i)
			}
		}
	}
	if want&WantTriangles != 0 {
		for i := range m.Triangles {
			p := m.TrianglePoints(i)
			if maxZ(p[:]) >= zmin {
				fn(PrimTriangle, i)
			}
		}
	}
}

// QueryU reports the primitives a ball of radius r can touch along the
// u-fibre at x = wp spanning wrg.
func (ix *Index) QueryU(wp float64, wrg r1.Interval, r, zmin float64, v *Visitor, fn func(kind PrimKind, i int)) bool {
	xrg, yrg := probe.Line{Kind: fibre.KindU, WP: wp, Range: wrg, Radius: r}.Footprint()
	return ix.Query(xrg, yrg, zmin, WantAll, v, fn)
}

// QueryV is QueryU for the v-fibre at y = wp.
func (ix *Index) QueryV(wp float64, wrg r1.Interval, r, zmin float64, v *Visitor, fn func(kind PrimKind, i int)) bool {
	xrg, yrg := probe.Line{Kind: fibre.KindV, WP: wp, Range: wrg, Radius: r}.Footprint()
	return ix.Query(xrg, yrg, zmin, WantAll, v, fn)
}

// SliceFibre merges into f everything the ball of line touches. It returns
// true when the index fell back to a full scan.
func (ix *Index) SliceFibre(line probe.Line, f *fibre.Fibre, v *Visitor) bool {
	m := ix.Mesh
	xrg, yrg := line.Footprint()
	return ix.Query(xrg, yrg, line.Z, WantAll, v, func(kind PrimKind, i int) {
		var (
			h  probe.Hit
			ok bool
		)
		switch kind {
		case PrimPoint:
			h, ok = line.Point(m.Vertices[i])
		case PrimEdge:
			h, ok = line.Edge(m.EdgePoints(i))
		case PrimTriangle:
			h, ok = line.Triangle(m.TrianglePoints(i), m.Triangles[i].Normal)
		}
		if ok {
			h.MergeInto(f)
		}
	})
}

// SectionFibre feeds s every triangle that may cross its line. The line is
// searched across the whole mesh so crossings outside the fibre's range
// still pair up.
func (ix *Index) SectionFibre(s *probe.Section, v *Visitor) bool {
	m := ix.Mesh
	xrg, yrg := s.Footprint()
	if s.Kind == fibre.KindU {
		yrg = yrg.Union(m.YRange.Expanded(probe.SearchEpsilon))
	} else {
		xrg = xrg.Union(m.XRange.Expanded(probe.SearchEpsilon))
	}
	return ix.Query(xrg, yrg, s.Height, WantTriangles, v, func(_ PrimKind, i int) {
		s.Triangle(m, i)
	})
}
