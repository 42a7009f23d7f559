// Package spatial buckets the primitives of a surface mesh into a grid of
// xy cells so a probe line only meets the points, edges and triangles near
// it.
//
// The grid is an x partition into strips, each with its own y partition
// fitted to what lies in that strip. A primitive spanning several cells is
// entered in each of them under a shared duplicate group, and a Visitor
// makes sure a query reports it once.
package spatial

import (
	"sort"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r3"

	"github.com/piwi3910/SlabRough/internal/geom"
	"github.com/piwi3910/SlabRough/internal/surface"
)

// PrimKind tells which mesh slice a reference points into.
type PrimKind int

const (
	PrimPoint PrimKind = iota
	PrimEdge
	PrimTriangle
)

func (k PrimKind) String() string {
	switch k {
	case PrimPoint:
		return "point"
	case PrimEdge:
		return "edge"
	default:
		return "triangle"
	}
}

// NoDup marks a primitive entered in a single cell.
const NoDup = -1

// Ref is one bucket entry.
type Ref struct {
	Index int     // into Mesh.Vertices, Edges or Triangles
	ZHigh float64 // highest z of the primitive inside the cell
	Dup   int     // duplicate group, or NoDup
}

// Bucket holds the entries of one cell, highest ZHigh first.
type Bucket struct {
	Points    []Ref
	Edges     []Ref
	Triangles []Ref
}

func (b *Bucket) refs(kind PrimKind) *[]Ref {
	switch kind {
	case PrimPoint:
		return &b.Points
	case PrimEdge:
		return &b.Edges
	default:
		return &b.Triangles
	}
}

// Strip is one column of the grid. Y is nil when nothing lies in it.
type Strip struct {
	Y       *geom.Partition
	Buckets []Bucket
}

// Index is read-only after Build and may be queried from many goroutines,
// each with its own Visitor.
type Index struct {
	Mesh   *surface.Mesh
	X      *geom.Partition
	Strips []Strip

	// Dups holds the number of cells of each duplicate group.
	Dups []int
	// MaxDup is the largest entry of Dups. Diagnostic only.
	MaxDup int

	// Set when some primitive reaches past that side of the indexed range.
	OutLeft, OutRight, OutDown, OutUp bool

	xrg, yrg r1.Interval
	entries  int
}

// Build indexes the whole mesh with cells about boxWidth wide.
func Build(m *surface.Mesh, boxWidth float64) *Index {
	return BuildInRange(m, m.XRange, m.YRange, boxWidth)
}

// piece is the part of a primitive inside one strip.
type piece struct {
	kind  PrimKind
	index int
	strip int
	poly  []r3.Vector
}

// BuildInRange indexes the part of the mesh inside xrg × yrg. Anything
// reaching outside sets the matching overflow flag, and queries crossing
// that side scan the whole mesh instead.
func BuildInRange(m *surface.Mesh, xrg, yrg r1.Interval, boxWidth float64) *Index {
	ix := &Index{
		Mesh: m,
		X:    geom.NewPartition(xrg, boxWidth),
		xrg:  xrg,
		yrg:  yrg,
	}
	ix.Strips = make([]Strip, ix.X.NumParts())

	var pieces []piece
	stripY := make([]r1.Interval, len(ix.Strips))
	for i := range stripY {
		stripY[i] = r1.EmptyInterval()
	}

	add := func(kind PrimKind, index int, poly []r3.Vector) {
		pxrg, pyrg := extent(poly, axisX), extent(poly, axisY)
		ix.noteOverflow(pxrg, pyrg)
		clipped, ok := geom.Intersect(pxrg, xrg)
		if !ok || !pyrg.Intersects(yrg) {
			return
		}
		s0, s1 := ix.X.FindPartRange(clipped)
		for s := s0; s <= s1; s++ {
			part := ix.X.Part(s)
			p := clipSlab(poly, axisX, part.Lo, part.Hi)
			p = clipSlab(p, axisY, yrg.Lo, yrg.Hi)
			if len(p) == 0 {
				continue
			}
			stripY[s] = stripY[s].Union(extent(p, axisY))
			pieces = append(pieces, piece{kind: kind, index: index, strip: s, poly: p})
		}
	}

	for i, v := range m.Vertices {
		if xrg.Contains(v.X) && yrg.Contains(v.Y) {
			s := ix.X.FindPart(v.X)
			stripY[s] = stripY[s].AddPoint(v.Y)
			pieces = append(pieces, piece{kind: PrimPoint, index: i, strip: s, poly: []r3.Vector{v}})
		} else {
			ix.noteOverflow(r1.IntervalFromPoint(v.X), r1.IntervalFromPoint(v.Y))
		}
	}
	for i := range m.Edges {
		a, b := m.EdgePoints(i)
		add(PrimEdge, i, []r3.Vector{a, b})
	}
	for i := range m.Triangles {
		p := m.TrianglePoints(i)
		add(PrimTriangle, i, p[:])
	}

	for s := range ix.Strips {
		if stripY[s].IsEmpty() {
			continue
		}
		ix.Strips[s].Y = geom.NewPartition(stripY[s], boxWidth)
		ix.Strips[s].Buckets = make([]Bucket, ix.Strips[s].Y.NumParts())
	}

	// Pieces of one primitive are adjacent, so cells can be counted per
	// primitive before anything is entered.
	type entry struct {
		strip, cell int
		zhigh       float64
	}
	var cells []entry
	for i := 0; i < len(pieces); {
		j := i
		cells = cells[:0]
		for ; j < len(pieces) && pieces[j].kind == pieces[i].kind && pieces[j].index == pieces[i].index; j++ {
			pc := pieces[j]
			strip := &ix.Strips[pc.strip]
			if pc.kind == PrimPoint {
				cells = append(cells, entry{pc.strip, strip.Y.FindPart(pc.poly[0].Y), pc.poly[0].Z})
				continue
			}
			c0, c1 := strip.Y.FindPartRange(extent(pc.poly, axisY))
			for c := c0; c <= c1; c++ {
				part := strip.Y.Part(c)
				p := clipSlab(pc.poly, axisY, part.Lo, part.Hi)
				if len(p) == 0 {
					continue
				}
				cells = append(cells, entry{pc.strip, c, maxZ(p)})
			}
		}

		dup := NoDup
		if len(cells) > 1 {
			dup = len(ix.Dups)
			ix.Dups = append(ix.Dups, len(cells))
			if len(cells) > ix.MaxDup {
				ix.MaxDup = len(cells)
			}
		}
		for _, e := range cells {
			refs := ix.Strips[e.strip].Buckets[e.cell].refs(pieces[i].kind)
			*refs = append(*refs, Ref{Index: pieces[i].index, ZHigh: e.zhigh, Dup: dup})
			ix.entries++
		}
		i = j
	}

	for s := range ix.Strips {
		for c := range ix.Strips[s].Buckets {
			b := &ix.Strips[s].Buckets[c]
			for _, refs := range [][]Ref{b.Points, b.Edges, b.Triangles} {
				sort.SliceStable(refs, func(i, j int) bool { return refs[i].ZHigh > refs[j].ZHigh })
			}
		}
	}
	return ix
}

func (ix *Index) noteOverflow(xrg, yrg r1.Interval) {
	if xrg.Lo < ix.xrg.Lo {
		ix.OutLeft = true
	}
	if xrg.Hi > ix.xrg.Hi {
		ix.OutRight = true
	}
	if yrg.Lo < ix.yrg.Lo {
		ix.OutDown = true
	}
	if yrg.Hi > ix.yrg.Hi {
		ix.OutUp = true
	}
}

// Range returns the indexed xy box.
func (ix *Index) Range() (xrg, yrg r1.Interval) { return ix.xrg, ix.yrg }

// Entries returns the total number of bucket entries.
func (ix *Index) Entries() int { return ix.entries }

// NumBuckets returns the number of cells over all strips.
func (ix *Index) NumBuckets() int {
	n := 0
	for _, s := range ix.Strips {
		n += len(s.Buckets)
	}
	return n
}
