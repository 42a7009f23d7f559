package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/golang/geo/r2"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/SlabRough/internal/toolpath"
)

// chainTolerance is the largest gap between segment ends that still joins them.
const chainTolerance = 0.01

// segment is one loose LINE or ARC piece waiting to be chained.
type segment struct {
	start, end r2.Point
}

// ImportBoundaryDXF reads machining boundaries from a DXF file. Each closed
// shape (LWPOLYLINE, CIRCLE, or chain of connected LINEs and ARCs) becomes
// one closed path of the result, at height z.
func ImportBoundaryDXF(path string, z float64) BoundaryResult {
	result := BoundaryResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var loops [][]r2.Point
	var segs []segment
	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			loop := lwPolylineLoop(e)
			if len(loop) >= 3 {
				loops = append(loops, loop)
			} else {
				result.Warnings = append(result.Warnings, "Skipped LWPOLYLINE with fewer than 3 vertices")
			}
		case *entity.Circle:
			loops = append(loops, circleLoop(e.Center[0], e.Center[1], e.Radius, 64))
		case *entity.Arc:
			segs = append(segs, pointsToSegments(arcPoints(e, 32))...)
		case *entity.Line:
			segs = append(segs, segment{
				start: r2.Point{X: e.Start[0], Y: e.Start[1]},
				end:   r2.Point{X: e.End[0], Y: e.End[1]},
			})
		}
	}

	chained, open := chainSegments(segs, chainTolerance)
	loops = append(loops, chained...)
	if open > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Skipped %d open chain(s) of lines and arcs", open))
	}

	result.Boundary = toolpath.NewSeries(z)
	for _, loop := range loops {
		if toolpath.SignedArea(loop) == 0 {
			result.Warnings = append(result.Warnings, "Skipped degenerate shape with no area")
			continue
		}
		result.Boundary.Append(closeLoop(loop))
	}
	if result.Boundary.NumPaths() == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
	}
	return result
}

// closeLoop repeats the first point at the end.
func closeLoop(loop []r2.Point) []r2.Point {
	if loop[0] == loop[len(loop)-1] {
		return loop
	}
	return append(loop, loop[0])
}

// lwPolylineLoop flattens an LWPOLYLINE, turning bulged spans into arcs.
func lwPolylineLoop(lw *entity.LwPolyline) []r2.Point {
	var loop []r2.Point
	for i, v := range lw.Vertices {
		cur := r2.Point{X: v[0], Y: v[1]}
		bulge := 0.0
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}
		if math.Abs(bulge) < 1e-9 {
			loop = append(loop, cur)
			continue
		}
		nv := lw.Vertices[(i+1)%len(lw.Vertices)]
		pts := bulgeArcPoints(cur, r2.Point{X: nv[0], Y: nv[1]}, bulge, 32)
		loop = append(loop, pts[:len(pts)-1]...)
	}
	return loop
}

// bulgeArcPoints samples the arc from p1 to p2 whose bulge is the tangent
// of a quarter of its included angle. Positive bulges turn counterclockwise.
func bulgeArcPoints(p1, p2 r2.Point, bulge float64, n int) []r2.Point {
	chord := p2.Sub(p1)
	l := chord.Norm()
	if l < 1e-9 {
		return []r2.Point{p1, p2}
	}
	sweep := 4 * math.Atan(bulge)
	radius := l / (2 * math.Sin(math.Abs(sweep)/2))

	// centre sits on the chord bisector, left of the chord for a ccw arc
	mid := p1.Add(p2).Mul(0.5)
	h := math.Sqrt(math.Max(0, radius*radius-l*l/4))
	if math.Abs(sweep) > math.Pi {
		h = -h
	}
	if bulge < 0 {
		h = -h
	}
	c := mid.Add(chord.Ortho().Mul(h / l))

	a0 := math.Atan2(p1.Y-c.Y, p1.X-c.X)
	pts := make([]r2.Point, n+1)
	for i := 0; i <= n; i++ {
		a := a0 + sweep*float64(i)/float64(n)
		pts[i] = r2.Point{X: c.X + radius*math.Cos(a), Y: c.Y + radius*math.Sin(a)}
	}
	pts[n] = p2
	return pts
}

// circleLoop approximates a circle as a closed regular polygon.
func circleLoop(cx, cy, r float64, n int) []r2.Point {
	loop := make([]r2.Point, n)
	for i := range loop {
		a := 2 * math.Pi * float64(i) / float64(n)
		loop[i] = r2.Point{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)}
	}
	return loop
}

// arcPoints samples a DXF ARC, which always runs counterclockwise in degrees.
func arcPoints(a *entity.Arc, n int) []r2.Point {
	start := a.Angle[0] * math.Pi / 180
	end := a.Angle[1] * math.Pi / 180
	if end <= start {
		end += 2 * math.Pi
	}
	cx, cy, r := a.Circle.Center[0], a.Circle.Center[1], a.Circle.Radius
	pts := make([]r2.Point, n+1)
	for i := range pts {
		t := start + (end-start)*float64(i)/float64(n)
		pts[i] = r2.Point{X: cx + r*math.Cos(t), Y: cy + r*math.Sin(t)}
	}
	return pts
}

func pointsToSegments(pts []r2.Point) []segment {
	segs := make([]segment, 0, len(pts)-1)
	for i := 1; i < len(pts); i++ {
		segs = append(segs, segment{start: pts[i-1], end: pts[i]})
	}
	return segs
}

func pointsClose(a, b r2.Point, tol float64) bool {
	return a.Sub(b).Norm() <= tol
}

// chainSegments joins segments end to end into closed loops, largest area
// first. It also returns the number of chains that did not close.
func chainSegments(segs []segment, tol float64) ([][]r2.Point, int) {
	used := make([]bool, len(segs))
	var loops [][]r2.Point
	open := 0

	for start := range segs {
		if used[start] {
			continue
		}
		used[start] = true
		chain := []r2.Point{segs[start].start, segs[start].end}

		for extended := true; extended; {
			extended = false
			tail := chain[len(chain)-1]
			for i, s := range segs {
				if used[i] {
					continue
				}
				var next r2.Point
				switch {
				case pointsClose(tail, s.start, tol):
					next = s.end
				case pointsClose(tail, s.end, tol):
					next = s.start
				default:
					continue
				}
				chain = append(chain, next)
				used[i] = true
				extended = true
				break
			}
		}

		if len(chain) >= 4 && pointsClose(chain[0], chain[len(chain)-1], tol) {
			loops = append(loops, chain[:len(chain)-1])
		} else {
			open++
		}
	}

	sort.SliceStable(loops, func(i, j int) bool {
		return math.Abs(toolpath.SignedArea(loops[i])) > math.Abs(toolpath.SignedArea(loops[j]))
	})
	return loops, open
}
