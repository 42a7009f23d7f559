// Package surface holds the indexed triangle mesh the slicer works on.
//
// A Mesh is an arena: vertices, edges and triangles live in three slices and
// refer to each other by index. Meshes are produced by a Builder and are
// read-only afterwards, so they can be shared between slicing workers.
package surface

import (
	"errors"
	"fmt"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r3"
)

// None marks a missing triangle on a boundary edge.
const None = -1

// Edge slots of a triangle with corners A, B1, B2.
const (
	SlotAB1 = 0
	SlotAB2 = 1
	SlotB12 = 2
)

var (
	// ErrEmptyMesh is returned when a build has no triangles to work with.
	ErrEmptyMesh = errors.New("surface: no triangles")
	// ErrBuilderConsumed is returned when Build is called twice.
	ErrBuilderConsumed = errors.New("surface: builder already built")
)

// BuildError reports malformed input found while building a mesh.
type BuildError struct {
	Reason    string
	Edge      [2]int // vertex indices, when the error is about an edge
	Triangles []int  // input triangle numbers involved
}

func (e *BuildError) Error() string {
	if len(e.Triangles) == 0 {
		return "surface: " + e.Reason
	}
	return fmt.Sprintf("surface: %s (edge %d-%d, triangles %v)", e.Reason, e.Edge[0], e.Edge[1], e.Triangles)
}

// Triangle3 is one unindexed input triangle.
type Triangle3 [3]r3.Vector

// Edge joins vertices V0 < V1. Right is the triangle that walks the edge
// from V0 to V1, Left the one walking back; either may be None.
type Edge struct {
	V0, V1      int
	Right, Left int
}

// Triangle has corners A, B1, B2 with A the lowest vertex index. The
// corners are ordered so Normal points up (Normal.Z >= 0). A degenerate
// triangle keeps a zero Normal.
type Triangle struct {
	Corners [3]int
	Edges   [3]int // indexed by SlotAB1, SlotAB2, SlotB12
	Normal  r3.Vector
	Offset  float64 // Normal.Dot(A)
}

// Mesh is an indexed, deduplicated triangle surface.
type Mesh struct {
	Vertices  []r3.Vector
	Edges     []Edge
	Triangles []Triangle

	XRange, YRange, ZRange r1.Interval
}

// EdgePoints returns the end points of edge i.
func (m *Mesh) EdgePoints(i int) (r3.Vector, r3.Vector) {
	e := m.Edges[i]
	return m.Vertices[e.V0], m.Vertices[e.V1]
}

// TrianglePoints returns the corners of triangle i.
func (m *Mesh) TrianglePoints(i int) [3]r3.Vector {
	c := m.Triangles[i].Corners
	return [3]r3.Vector{m.Vertices[c[0]], m.Vertices[c[1]], m.Vertices[c[2]]}
}

// IsBoundary reports whether edge i has only one triangle.
func (m *Mesh) IsBoundary(i int) bool {
	e := m.Edges[i]
	return e.Right == None || e.Left == None
}

// Degenerate reports whether triangle i has no direction.
func (m *Mesh) Degenerate(i int) bool {
	return m.Triangles[i].Normal == (r3.Vector{})
}

// BoundaryEdges counts the edges with a single triangle.
func (m *Mesh) BoundaryEdges() int {
	n := 0
	for i := range m.Edges {
		if m.IsBoundary(i) {
			n++
		}
	}
	return n
}

// Build indexes a triangle soup in one call.
func Build(tris []Triangle3) (*Mesh, error) {
	b := NewBuilder()
	for _, t := range tris {
		b.Add(t[0], t[1], t[2])
	}
	return b.Build()
}
