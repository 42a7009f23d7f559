package widgets

import (
	"fmt"
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/golang/geo/r2"

	"github.com/piwi3910/SlabRough/internal/engine"
	"github.com/piwi3910/SlabRough/internal/gcode"
	"github.com/piwi3910/SlabRough/internal/toolpath"
)

// Preview colors.
var (
	colorRapid   = color.NRGBA{R: 255, G: 60, B: 60, A: 200}   // Red for rapid moves
	colorPlunge  = color.NRGBA{R: 50, G: 200, B: 50, A: 220}   // Green for plunge
	colorStock   = color.NRGBA{R: 235, G: 235, B: 228, A: 255} // Weave extent
	colorGhost   = color.NRGBA{R: 150, G: 150, B: 150, A: 90}  // Other levels
	colorOuter   = color.NRGBA{R: 30, G: 120, B: 255, A: 230}  // Counterclockwise contours
	colorHole    = color.NRGBA{R: 255, G: 140, B: 0, A: 230}   // Clockwise contours
	colorCaption = color.NRGBA{R: 60, G: 60, B: 60, A: 255}
)

const previewMargin = float32(12)

// ContourPreview renders one level of a roughing result: its contours over
// the weave extent, the other levels faintly behind it, and optionally the
// rapid moves and plunges of the level's G-code.
type ContourPreview struct {
	widget.BaseWidget

	result    *engine.Result
	level     int
	moves     []gcode.GCodeMove
	showGhost bool
	maxWidth  float32
	maxHeight float32
}

// NewContourPreview creates a preview of the given result's first level.
func NewContourPreview(res *engine.Result, maxW, maxH float32) *ContourPreview {
	cp := &ContourPreview{result: res, showGhost: true, maxWidth: maxW, maxHeight: maxH}
	cp.ExtendBaseWidget(cp)
	return cp
}

// SetResult replaces the previewed result and shows its first level.
func (cp *ContourPreview) SetResult(res *engine.Result) {
	cp.result = res
	cp.level = 0
	cp.moves = nil
	cp.Refresh()
}

// SetLevel selects the level to draw. Out of range values are clamped.
func (cp *ContourPreview) SetLevel(i int) {
	if cp.result == nil || len(cp.result.Levels) == 0 {
		return
	}
	cp.level = max(0, min(i, len(cp.result.Levels)-1))
	cp.Refresh()
}

// Level returns the selected level index.
func (cp *ContourPreview) Level() int { return cp.level }

// SetMoves overlays parsed G-code moves for the selected level.
func (cp *ContourPreview) SetMoves(moves []gcode.GCodeMove) {
	cp.moves = moves
	cp.Refresh()
}

// SetShowGhost toggles drawing the other levels.
func (cp *ContourPreview) SetShowGhost(show bool) {
	cp.showGhost = show
	cp.Refresh()
}

// CreateRenderer implements fyne.Widget.
func (cp *ContourPreview) CreateRenderer() fyne.WidgetRenderer {
	r := &contourPreviewRenderer{cp: cp}
	r.rebuild()
	return r
}

type contourPreviewRenderer struct {
	cp      *ContourPreview
	objects []fyne.CanvasObject
}

// scale returns the model-to-screen factor for the weave extent.
func (r *contourPreviewRenderer) scale() float32 {
	res := r.cp.result
	w, h := float32(res.XRange.Length()), float32(res.YRange.Length())
	if w <= 0 || h <= 0 {
		return 0
	}
	s := min((r.cp.maxWidth-previewMargin*2)/w, (r.cp.maxHeight-previewMargin*2)/h)
	if s <= 0 {
		s = 1
	}
	return s
}

func (r *contourPreviewRenderer) rebuild() {
	r.objects = nil
	cp := r.cp
	if cp.result == nil || len(cp.result.Levels) == 0 {
		return
	}
	res := cp.result
	scale := r.scale()
	if scale == 0 {
		return
	}

	toScreen := func(p r2.Point) fyne.Position {
		return fyne.NewPos(
			previewMargin+float32(p.X-res.XRange.Lo)*scale,
			previewMargin+float32(res.YRange.Hi-p.Y)*scale,
		)
	}

	canvasW := float32(res.XRange.Length()) * scale
	canvasH := float32(res.YRange.Length()) * scale
	bg := canvas.NewRectangle(colorStock)
	bg.StrokeColor = color.NRGBA{R: 80, G: 80, B: 80, A: 255}
	bg.StrokeWidth = 1.5
	bg.Resize(fyne.NewSize(canvasW, canvasH))
	bg.Move(fyne.NewPos(previewMargin, previewMargin))
	r.objects = append(r.objects, bg)

	if cp.showGhost {
		for i, level := range res.Levels {
			if i != cp.level {
				r.drawSeries(level, toScreen, func([]r2.Point) color.Color { return colorGhost }, 1)
			}
		}
	}

	r.drawSeries(res.Levels[cp.level], toScreen, func(p []r2.Point) color.Color {
		if toolpath.SignedArea(p) < 0 {
			return colorHole
		}
		return colorOuter
	}, 2)

	for _, m := range cp.moves {
		from := toScreen(r2.Point{X: m.FromX, Y: m.FromY})
		to := toScreen(r2.Point{X: m.ToX, Y: m.ToY})
		switch m.Type {
		case gcode.MoveRapid:
			if math.Hypot(m.ToX-m.FromX, m.ToY-m.FromY) < 0.01 {
				continue
			}
			line := canvas.NewLine(colorRapid)
			line.StrokeWidth = 1
			line.Position1, line.Position2 = from, to
			r.objects = append(r.objects, line)
			r.drawDashedOverlay(from, to)
		case gcode.MovePlunge:
			marker := canvas.NewCircle(colorPlunge)
			marker.Resize(fyne.NewSize(5, 5))
			marker.Move(from.SubtractXY(2.5, 2.5))
			r.objects = append(r.objects, marker)
		}
	}

	caption := canvas.NewText(fmt.Sprintf("Level %d/%d  Z%.3f", cp.level+1, len(res.Levels), res.Levels[cp.level].Z), colorCaption)
	caption.TextSize = 11
	caption.Move(fyne.NewPos(previewMargin+4, previewMargin+2))
	r.objects = append(r.objects, caption)
}

// drawSeries draws each closed path of s as connected line segments.
func (r *contourPreviewRenderer) drawSeries(s *toolpath.Series, toScreen func(r2.Point) fyne.Position, pick func([]r2.Point) color.Color, width float32) {
	for _, path := range s.Paths() {
		col := pick(path)
		for i := 1; i < len(path); i++ {
			line := canvas.NewLine(col)
			line.StrokeWidth = width
			line.Position1 = toScreen(path[i-1])
			line.Position2 = toScreen(path[i])
			r.objects = append(r.objects, line)
		}
	}
}

// drawDashedOverlay breaks a rapid move line into dashes by painting gaps
// in the background color.
func (r *contourPreviewRenderer) drawDashedOverlay(from, to fyne.Position) {
	dx, dy := to.X-from.X, to.Y-from.Y
	length := float32(math.Hypot(float64(dx), float64(dy)))
	if length < 8 {
		return
	}

	const dashLen, gapLen = float32(6), float32(4)
	nx, ny := dx/length, dy/length
	for cursor := dashLen; cursor+gapLen < length; cursor += dashLen + gapLen {
		gap := canvas.NewLine(colorStock)
		gap.StrokeWidth = 2.5
		gap.Position1 = fyne.NewPos(from.X+nx*cursor, from.Y+ny*cursor)
		gap.Position2 = fyne.NewPos(from.X+nx*(cursor+gapLen), from.Y+ny*(cursor+gapLen))
		r.objects = append(r.objects, gap)
	}
}

func (r *contourPreviewRenderer) Layout(size fyne.Size)        {}
func (r *contourPreviewRenderer) Refresh()                     { r.rebuild() }
func (r *contourPreviewRenderer) Destroy()                     {}
func (r *contourPreviewRenderer) Objects() []fyne.CanvasObject { return r.objects }

func (r *contourPreviewRenderer) MinSize() fyne.Size {
	if r.cp.result == nil {
		return fyne.NewSize(100, 100)
	}
	scale := r.scale()
	if scale == 0 {
		return fyne.NewSize(100, 100)
	}
	return fyne.NewSize(
		float32(r.cp.result.XRange.Length())*scale+previewMargin*2,
		float32(r.cp.result.YRange.Length())*scale+previewMargin*2,
	)
}
