package export

import (
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/table"

	"github.com/piwi3910/SlabRough/internal/engine"
)

// LinksLayer holds the 3D link moves between contours.
const LinksLayer = "LINKS"

var layerColors = []color.ColorNumber{color.Blue, color.Green, color.Yellow, color.Magenta, color.Cyan, color.Red}

// LevelLayer names the DXF layer holding the contours of a level.
func LevelLayer(index int, z float64) string {
	return fmt.Sprintf("LEVEL_%02d_Z%.3f", index, z)
}

// ExportDXF writes every level's contours as closed LWPOLYLINEs, one layer
// per level, and the link moves as 3D LINEs on their own layer.
func ExportDXF(path string, res *engine.Result) error {
	if len(res.Levels) == 0 {
		return ErrNoLevels
	}

	d := dxf.NewDrawing()
	for i, level := range res.Levels {
		name := LevelLayer(i+1, level.Z)
		if _, err := d.AddLayer(name, layerColors[i%len(layerColors)], table.LT_CONTINUOUS, true); err != nil {
			return fmt.Errorf("failed to add layer %s: %w", name, err)
		}
		for j, path := range level.Paths() {
			verts := polylineVertices(path)
			if len(verts) < 2 {
				continue
			}
			if _, err := d.LwPolyline(true, verts...); err != nil {
				return fmt.Errorf("failed to write contour %d of level %d: %w", j+1, i+1, err)
			}
		}
	}

	if _, err := d.AddLayer(LinksLayer, color.White, table.LT_CONTINUOUS, true); err != nil {
		return fmt.Errorf("failed to add layer %s: %w", LinksLayer, err)
	}
	for _, level := range res.Levels {
		for _, link := range level.Links {
			for k := 1; k < len(link); k++ {
				a, b := link[k-1], link[k]
				if a == b {
					continue
				}
				if _, err := d.Line(a.X, a.Y, a.Z, b.X, b.Y, b.Z); err != nil {
					return fmt.Errorf("failed to write link: %w", err)
				}
			}
		}
	}

	return d.SaveAs(path)
}

// polylineVertices converts a closed path to LWPOLYLINE vertices, dropping
// the repeated end point since the polyline is flagged closed.
func polylineVertices(path []r2.Point) [][]float64 {
	n := len(path)
	if n > 1 && path[0] == path[n-1] {
		n--
	}
	verts := make([][]float64, n)
	for i := 0; i < n; i++ {
		verts[i] = []float64{path[i].X, path[i].Y}
	}
	return verts
}
