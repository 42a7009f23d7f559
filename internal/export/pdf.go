// Package export writes roughing results to report and exchange formats:
// a PDF report, QR-coded level labels, DXF contours and an XLSX workbook.
package export

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	"github.com/golang/geo/r2"

	"github.com/piwi3910/SlabRough/internal/engine"
	"github.com/piwi3910/SlabRough/internal/toolpath"
)

// ErrNoLevels is returned when a result has nothing to export.
var ErrNoLevels = errors.New("no levels to export")

// contourColor represents an RGB color for a contour.
type contourColor struct {
	R, G, B int
}

// contourColors mirrors the color scheme used by the contour preview widget.
var contourColors = []contourColor{
	{R: 33, G: 150, B: 243}, // blue
	{R: 76, G: 175, B: 80},  // green
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	statsHeight  = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// ExportPDF writes one page per level showing its contours over the weave
// extent, followed by a summary page.
func ExportPDF(path string, res *engine.Result) error {
	if len(res.Levels) == 0 {
		return ErrNoLevels
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	sums := SummarizeLevels(res)
	for i, level := range res.Levels {
		pdf.AddPage()
		renderLevelPage(pdf, res, level, sums[i], len(res.Levels))
	}

	pdf.AddPage()
	if err := renderSummaryPage(pdf, res, sums); err != nil {
		return err
	}
	return pdf.OutputFileAndClose(path)
}

// pageTransform maps model xy into page coordinates, y up.
type pageTransform struct {
	scale            float64
	originX, originY float64 // page position of the extent's top-left corner
	xLo, yHi         float64
}

func (t pageTransform) apply(p r2.Point) (float64, float64) {
	return t.originX + (p.X-t.xLo)*t.scale, t.originY + (t.yHi-p.Y)*t.scale
}

func renderLevelPage(pdf *fpdf.Fpdf, res *engine.Result, level *toolpath.Series, sum LevelSummary, total int) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Level %d/%d: Z = %.3f mm", sum.Index, total, level.Z)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Contours: %d | Points: %d | Length: %.0f mm | Enclosed area: %.0f mm²",
		sum.Contours, sum.Points, sum.Length, sum.Area)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - statsHeight

	xLen, yLen := res.XRange.Length(), res.YRange.Length()
	if xLen <= 0 || yLen <= 0 {
		return
	}
	scale := math.Min(drawWidth/xLen, drawHeight/yLen)
	canvasW, canvasH := xLen*scale, yLen*scale

	t := pageTransform{
		scale:   scale,
		originX: marginLeft + (drawWidth-canvasW)/2,
		originY: drawAreaTop,
		xLo:     res.XRange.Lo,
		yHi:     res.YRange.Hi,
	}

	// Weave extent
	pdf.SetFillColor(245, 245, 240)
	pdf.SetDrawColor(150, 150, 150)
	pdf.SetLineWidth(0.3)
	pdf.Rect(t.originX, t.originY, canvasW, canvasH, "FD")

	for i, path := range level.Paths() {
		if len(path) < 2 {
			continue
		}
		col := contourColors[i%len(contourColors)]
		pdf.SetDrawColor(col.R, col.G, col.B)
		pdf.SetLineWidth(0.35)
		pts := make([]fpdf.PointType, len(path))
		for j, p := range path {
			pts[j].X, pts[j].Y = t.apply(p)
		}
		pdf.Polygon(pts, "D")

		// start marker
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Circle(pts[0].X, pts[0].Y, 0.8, "F")
	}

	drawExtentAnnotations(pdf, res, t.originX, t.originY, canvasW, canvasH)
	drawContourLegend(pdf, level, t.originY+canvasH+6)
}

// drawExtentAnnotations labels the weave extent along its edges.
func drawExtentAnnotations(pdf *fpdf.Fpdf, res *engine.Result, x, y, w, h float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("X %.1f .. %.1f mm", res.XRange.Lo, res.XRange.Hi)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(x+(w-wLabelW)/2, y+h+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	heightLabel := fmt.Sprintf("Y %.1f .. %.1f mm", res.YRange.Lo, res.YRange.Hi)
	pdf.TransformBegin()
	pdf.TransformRotate(90, x-3, y+h/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(x-3-hLabelW/2, y+h/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// drawContourLegend lists each contour with its color, length and winding.
func drawContourLegend(pdf *fpdf.Fpdf, level *toolpath.Series, startY float64) {
	if level.NumPaths() == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Contours:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight

	for i, path := range level.Paths() {
		col := contourColors[i%len(contourColors)]
		winding := "ccw"
		if toolpath.SignedArea(path) < 0 {
			winding = "cw"
		}
		label := fmt.Sprintf("#%d %.0f mm %s", i+1, toolpath.LoopLength(path), winding)
		labelW := pdf.GetStringWidth(label) + 6

		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")
		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")

		xPos += labelW + 2
	}
}

// renderSummaryPage draws the final page: run totals, the per-level table,
// the settings used and a QR label for the run.
func renderSummaryPage(pdf *fpdf.Fpdf, res *engine.Result, sums []LevelSummary) error {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Roughing Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	if err := placeQR(pdf, runLabel(res), pageWidth-marginRight-qrSize, marginTop+15); err != nil {
		return err
	}

	y := marginTop + 18

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Overall Statistics", "", 0, "L", false, 0, "")
	y += 9

	summaryItems := []struct {
		label string
		value string
	}{
		{"Run", res.RunID.String()},
		{"Levels", fmt.Sprintf("%d", len(res.Levels))},
		{"Contours", fmt.Sprintf("%d", res.TotalContours())},
		{"Total Contour Length", fmt.Sprintf("%.0f mm", res.TotalLength())},
		{"Part Top / Retract", fmt.Sprintf("Z%.2f / Z%.2f", res.TopZ, res.RetractZ)},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(80, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Level Breakdown", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{18, 30, 25, 25, 35, 40, 35, 35}
	headers := []string{"Level", "Z", "Contours", "Points", "Length", "Area", "Mean Contour", "Longest"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, s := range sums {
		if y > pageHeight-marginBottom-50 {
			pdf.AddPage()
			y = marginTop
		}
		xPos = marginLeft
		row := []string{
			fmt.Sprintf("%d", s.Index),
			fmt.Sprintf("%.3f", s.Z),
			fmt.Sprintf("%d", s.Contours),
			fmt.Sprintf("%d", s.Points),
			fmt.Sprintf("%.1f mm", s.Length),
			fmt.Sprintf("%.0f mm²", s.Area),
			fmt.Sprintf("%.1f mm", s.MeanContour),
			fmt.Sprintf("%.1f mm", s.LongestContour),
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		for j, cell := range row {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	y += 8
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Settings", "", 0, "L", false, 0, "")
	y += 9

	s := res.Settings
	settingsItems := []struct {
		label string
		value string
	}{
		{"Corner Radius", fmt.Sprintf("%.2f mm", s.CornerRadius)},
		{"Flat Radius", fmt.Sprintf("%.2f mm", s.FlatRadius)},
		{"Step-down", fmt.Sprintf("%.2f mm", s.StepDown)},
		{"Weave Resolution", fmt.Sprintf("%.3f mm", s.WeaveResolution)},
		{"Stock to Leave", fmt.Sprintf("%.2f mm", s.StockToLeave)},
		{"Boundary Clearance", fmt.Sprintf("%.2f mm", s.BoundaryClearance)},
	}

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range settingsItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(50, 5, item.label+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 5, item.value, "", 0, "L", false, 0, "")
		y += 5
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by SlabRough - waterline roughing", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	return nil
}
