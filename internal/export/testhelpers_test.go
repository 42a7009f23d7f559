package export

import (
	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/google/uuid"

	"github.com/piwi3910/SlabRough/internal/engine"
	"github.com/piwi3910/SlabRough/internal/model"
	"github.com/piwi3910/SlabRough/internal/toolpath"
)

func squarePath(x0, y0, side float64) []r2.Point {
	return []r2.Point{
		{X: x0, Y: y0}, {X: x0 + side, Y: y0}, {X: x0 + side, Y: y0 + side}, {X: x0, Y: y0 + side}, {X: x0, Y: y0},
	}
}

func retractLink(p []r2.Point, z, retractZ float64) []r3.Vector {
	end := p[len(p)-1]
	return []r3.Vector{{X: end.X, Y: end.Y, Z: z}, {X: end.X, Y: end.Y, Z: retractZ}}
}

// buildTestResult has two contours at Z6 and one at Z2.
func buildTestResult() *engine.Result {
	top := toolpath.NewSeries(6)
	top.Append(squarePath(0, 0, 10))
	top.Append(squarePath(20, 0, 5))
	top.SetLink(0, append(retractLink(top.Path(0), 6, 15), r3.Vector{X: 20, Z: 15}, r3.Vector{X: 20, Z: 6}))
	top.SetLink(1, retractLink(top.Path(1), 6, 15))

	bottom := toolpath.NewSeries(2)
	bottom.Append(squarePath(-1, -1, 12))
	bottom.SetLink(0, retractLink(bottom.Path(0), 2, 15))

	settings := model.DefaultSettings()
	settings.CornerRadius = 2
	settings.StepDown = 4

	return &engine.Result{
		RunID:    uuid.New(),
		Settings: settings,
		XRange:   r1.Interval{Lo: -3, Hi: 28},
		YRange:   r1.Interval{Lo: -3, Hi: 13},
		TopZ:     10,
		RetractZ: 15,
		Levels:   []*toolpath.Series{top, bottom},
		Stats: []engine.LevelStats{
			{Z: 6, Contours: 2, Points: 10, Length: 60, Covered: 300},
			{Z: 2, Contours: 1, Points: 5, Length: 48, Covered: 250},
		},
	}
}
