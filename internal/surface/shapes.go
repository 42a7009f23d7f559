package surface

import "github.com/golang/geo/r3"

// BoxTriangles returns the 12 outward-wound triangles of the axis-aligned
// box spanning lo to hi.
func BoxTriangles(lo, hi r3.Vector) []Triangle3 {
	c := func(x, y, z int) r3.Vector {
		p := lo
		if x == 1 {
			p.X = hi.X
		}
		if y == 1 {
			p.Y = hi.Y
		}
		if z == 1 {
			p.Z = hi.Z
		}
		return p
	}
	quads := [6][4]r3.Vector{
		{c(0, 0, 0), c(0, 1, 0), c(1, 1, 0), c(1, 0, 0)}, // bottom
		{c(0, 0, 1), c(1, 0, 1), c(1, 1, 1), c(0, 1, 1)}, // top
		{c(0, 0, 0), c(1, 0, 0), c(1, 0, 1), c(0, 0, 1)}, // front
		{c(0, 1, 0), c(0, 1, 1), c(1, 1, 1), c(1, 1, 0)}, // back
		{c(0, 0, 0), c(0, 0, 1), c(0, 1, 1), c(0, 1, 0)}, // left
		{c(1, 0, 0), c(1, 1, 0), c(1, 1, 1), c(1, 0, 1)}, // right
	}
	tris := make([]Triangle3, 0, 12)
	for _, q := range quads {
		tris = append(tris, Triangle3{q[0], q[1], q[2]}, Triangle3{q[0], q[2], q[3]})
	}
	return tris
}

// RectTriangles returns two triangles covering the horizontal rectangle
// from (x0, y0) to (x1, y1) at height z.
func RectTriangles(x0, y0, x1, y1, z float64) []Triangle3 {
	a := r3.Vector{X: x0, Y: y0, Z: z}
	b := r3.Vector{X: x1, Y: y0, Z: z}
	c := r3.Vector{X: x1, Y: y1, Z: z}
	d := r3.Vector{X: x0, Y: y1, Z: z}
	return []Triangle3{{a, b, c}, {a, c, d}}
}
