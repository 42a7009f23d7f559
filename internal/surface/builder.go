package surface

import (
	"math"
	"sort"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r3"

	"github.com/piwi3910/SlabRough/internal/geom"
)

// Builder collects a triangle soup and turns it into a Mesh.
type Builder struct {
	pts   []r3.Vector // three corners per triangle
	built bool

	// With a hard range, triangles entirely outside it are dropped.
	hardRange     bool
	xrg, yrg, zrg r1.Interval
}

// NewBuilder returns a builder that accepts every triangle.
func NewBuilder() *Builder {
	return &Builder{}
}

// NewBuilderInRange returns a builder that skips triangles whose bounding
// box misses the given box.
func NewBuilderInRange(xrg, yrg, zrg r1.Interval) *Builder {
	return &Builder{hardRange: true, xrg: xrg, yrg: yrg, zrg: zrg}
}

// Len returns the number of triangles collected so far.
func (b *Builder) Len() int { return len(b.pts) / 3 }

// Add queues one triangle.
func (b *Builder) Add(p0, p1, p2 r3.Vector) {
	if b.built {
		panic("surface: Add after Build")
	}
	if b.hardRange {
		if !overlaps(b.xrg, p0.X, p1.X, p2.X) || !overlaps(b.yrg, p0.Y, p1.Y, p2.Y) || !overlaps(b.zrg, p0.Z, p1.Z, p2.Z) {
			return
		}
	}
	b.pts = append(b.pts, p0, p1, p2)
}

func overlaps(rg r1.Interval, a, b, c float64) bool {
	_, ok := geom.Intersect(rg, geom.Span(a, b).AddPoint(c))
	return ok
}

type halfEdge struct {
	lo, hi    int
	tri       int
	slot      int
	forward   bool // the triangle walks lo -> hi
	collapsed bool // the triangle repeats a corner
}

// Build finalizes the mesh. The builder cannot be used afterwards.
func (b *Builder) Build() (*Mesh, error) {
	if b.built {
		return nil, ErrBuilderConsumed
	}
	b.built = true
	pts := b.pts
	b.pts = nil

	if len(pts) == 0 {
		return nil, ErrEmptyMesh
	}
	for i, p := range pts {
		if !finite(p) {
			return nil, &BuildError{Reason: "non-finite coordinate", Triangles: []int{i / 3}}
		}
	}

	m := &Mesh{}
	corner := m.dedupVertices(pts)

	ntri := len(pts) / 3
	m.Triangles = make([]Triangle, ntri)
	halves := make([]halfEdge, 0, 3*ntri)
	for t := 0; t < ntri; t++ {
		tri := m.orientTriangle(corner[3*t], corner[3*t+1], corner[3*t+2])
		m.Triangles[t] = tri
		a, b1, b2 := tri.Corners[0], tri.Corners[1], tri.Corners[2]
		collapsed := a == b1 || b1 == b2 || b2 == a
		for _, h := range []halfEdge{
			newHalfEdge(a, b1, t, SlotAB1),
			newHalfEdge(b1, b2, t, SlotB12),
			newHalfEdge(b2, a, t, SlotAB2),
		} {
			h.collapsed = collapsed
			halves = append(halves, h)
		}
	}

	if err := m.fuseEdges(halves); err != nil {
		return nil, err
	}
	return m, nil
}

func finite(p r3.Vector) bool {
	for _, c := range []float64{p.X, p.Y, p.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func lessPoint(a, b r3.Vector) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.Z < b.Z
}

// dedupVertices fills m.Vertices with the sorted unique points and returns
// the vertex index of every input corner.
func (m *Mesh) dedupVertices(pts []r3.Vector) []int {
	order := make([]int, len(pts))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return lessPoint(pts[order[i]], pts[order[j]]) })

	corner := make([]int, len(pts))
	m.XRange, m.YRange, m.ZRange = r1.EmptyInterval(), r1.EmptyInterval(), r1.EmptyInterval()
	for k, i := range order {
		p := pts[i]
		if k == 0 || p != m.Vertices[len(m.Vertices)-1] {
			m.Vertices = append(m.Vertices, p)
			m.XRange = geom.Absorb(m.XRange, p.X)
			m.YRange = geom.Absorb(m.YRange, p.Y)
			m.ZRange = geom.Absorb(m.ZRange, p.Z)
		}
		corner[i] = len(m.Vertices) - 1
	}
	return corner
}

// orientTriangle rotates the corners so the lowest vertex comes first and
// swaps the other two if needed to make the normal face up.
func (m *Mesh) orientTriangle(c0, c1, c2 int) Triangle {
	c := [3]int{c0, c1, c2}
	k := 0
	for i := 1; i < 3; i++ {
		if c[i] < c[k] {
			k = i
		}
	}
	a, b1, b2 := c[k], c[(k+1)%3], c[(k+2)%3]

	pa := m.Vertices[a]
	ncross := m.Vertices[b1].Sub(pa).Cross(m.Vertices[b2].Sub(pa)).Mul(-1)
	if ncross.Z < 0 {
		b1, b2 = b2, b1
		ncross = ncross.Mul(-1)
	}
	n := ncross.Normalize()
	return Triangle{
		Corners: [3]int{a, b1, b2},
		Edges:   [3]int{None, None, None},
		Normal:  n,
		Offset:  n.Dot(pa),
	}
}

func newHalfEdge(p, q, tri, slot int) halfEdge {
	if p <= q {
		return halfEdge{lo: p, hi: q, tri: tri, slot: slot, forward: true}
	}
	return halfEdge{lo: q, hi: p, tri: tri, slot: slot, forward: false}
}

// fuseEdges pairs half-edges on the same vertex pair into edges and writes
// the edge indices back into the triangles.
func (m *Mesh) fuseEdges(halves []halfEdge) error {
	sort.Slice(halves, func(i, j int) bool {
		hi, hj := halves[i], halves[j]
		if hi.lo != hj.lo {
			return hi.lo < hj.lo
		}
		if hi.hi != hj.hi {
			return hi.hi < hj.hi
		}
		if hi.tri != hj.tri {
			return hi.tri < hj.tri
		}
		return hi.slot < hj.slot
	})

	for i := 0; i < len(halves); {
		j := i + 1
		for j < len(halves) && halves[j].lo == halves[i].lo && halves[j].hi == halves[i].hi {
			j++
		}
		var group []halfEdge
		for _, h := range halves[i:j] {
			if h.collapsed {
				// Triangles with repeated corners never share edges.
				m.addEdge(Edge{V0: h.lo, V1: h.hi, Right: h.tri, Left: None}, h)
				continue
			}
			group = append(group, h)
		}
		i = j

		switch len(group) {
		case 0:
		case 1:
			h := group[0]
			e := Edge{V0: h.lo, V1: h.hi, Right: None, Left: None}
			if h.forward {
				e.Right = h.tri
			} else {
				e.Left = h.tri
			}
			m.addEdge(e, h)
		case 2:
			r, l := group[0], group[1]
			if !r.forward && l.forward {
				r, l = l, r
			}
			m.addEdge(Edge{V0: r.lo, V1: r.hi, Right: r.tri, Left: l.tri}, r, l)
		default:
			tris := make([]int, len(group))
			for k, h := range group {
				tris[k] = h.tri
			}
			return &BuildError{
				Reason:    "edge shared by more than two triangles",
				Edge:      [2]int{group[0].lo, group[0].hi},
				Triangles: tris,
			}
		}
	}
	return nil
}

func (m *Mesh) addEdge(e Edge, hs ...halfEdge) {
	idx := len(m.Edges)
	m.Edges = append(m.Edges, e)
	for _, h := range hs {
		m.Triangles[h.tri].Edges[h.slot] = idx
	}
}
