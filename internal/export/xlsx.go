package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/floats"

	"github.com/piwi3910/SlabRough/internal/engine"
	"github.com/piwi3910/SlabRough/internal/toolpath"
)

// Workbook sheet names.
const (
	SheetLevels   = "Levels"
	SheetContours = "Contours"
	SheetSettings = "Settings"
)

var levelHeaders = []interface{}{
	"Level", "Z (mm)", "Contours", "Points", "Length (mm)", "Area (mm²)",
	"Mean Contour (mm)", "Std Dev (mm)", "Longest (mm)", "Covered (mm)", "Time (ms)",
}

var contourHeaders = []interface{}{"Level", "Contour", "Z (mm)", "Points", "Length (mm)", "Signed Area (mm²)", "Winding"}

// ExportXLSX writes per-level and per-contour statistics and the settings
// used to an Excel workbook.
func ExportXLSX(path string, res *engine.Result) error {
	if len(res.Levels) == 0 {
		return ErrNoLevels
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetLevels); err != nil {
		return err
	}
	for _, name := range []string{SheetContours, SheetSettings} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := writeLevelSheet(f, res, bold); err != nil {
		return err
	}
	if err := writeContourSheet(f, res, bold); err != nil {
		return err
	}
	if err := writeSettingsSheet(f, res, bold); err != nil {
		return err
	}

	return f.SaveAs(path)
}

// setRow writes values starting at column A of the given 1-based row.
func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// boldRow applies style to the first n cells of row.
func boldRow(f *excelize.File, sheet string, row, n, style int) error {
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(n, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, first, last, style)
}

func writeLevelSheet(f *excelize.File, res *engine.Result, bold int) error {
	if err := setRow(f, SheetLevels, 1, levelHeaders); err != nil {
		return err
	}
	if err := boldRow(f, SheetLevels, 1, len(levelHeaders), bold); err != nil {
		return err
	}

	sums := SummarizeLevels(res)
	for i, s := range sums {
		var covered, ms float64
		if i < len(res.Stats) {
			covered = res.Stats[i].Covered
			ms = float64(res.Stats[i].Duration.Microseconds()) / 1000
		}
		row := []interface{}{
			s.Index, s.Z, s.Contours, s.Points, s.Length, s.Area,
			s.MeanContour, s.StdDevContour, s.LongestContour, covered, ms,
		}
		if err := setRow(f, SheetLevels, i+2, row); err != nil {
			return err
		}
	}

	totalRow := len(sums) + 2
	var contours, points int
	for _, s := range sums {
		contours += s.Contours
		points += s.Points
	}
	total := []interface{}{"Total", nil, contours, points, floats.Sum(LevelLengths(sums))}
	if err := setRow(f, SheetLevels, totalRow, total); err != nil {
		return err
	}
	if err := boldRow(f, SheetLevels, totalRow, len(total), bold); err != nil {
		return err
	}
	return f.SetColWidth(SheetLevels, "A", "K", 15)
}

func writeContourSheet(f *excelize.File, res *engine.Result, bold int) error {
	if err := setRow(f, SheetContours, 1, contourHeaders); err != nil {
		return err
	}
	if err := boldRow(f, SheetContours, 1, len(contourHeaders), bold); err != nil {
		return err
	}

	row := 2
	for i, level := range res.Levels {
		for j, path := range level.Paths() {
			area := toolpath.SignedArea(path)
			winding := "ccw"
			if area < 0 {
				winding = "cw"
			}
			values := []interface{}{i + 1, j + 1, level.Z, len(path), toolpath.LoopLength(path), area, winding}
			if err := setRow(f, SheetContours, row, values); err != nil {
				return err
			}
			row++
		}
	}
	return f.SetColWidth(SheetContours, "A", "G", 15)
}

func writeSettingsSheet(f *excelize.File, res *engine.Result, bold int) error {
	s := res.Settings
	rows := [][]interface{}{
		{"Setting", "Value"},
		{"Run", res.RunID.String()},
		{"Corner radius (mm)", s.CornerRadius},
		{"Flat radius (mm)", s.FlatRadius},
		{"Step-down (mm)", s.StepDown},
		{"Weave resolution (mm)", s.WeaveResolution},
		{"Index box width (mm)", s.BoxWidth},
		{"Stock to leave (mm)", s.StockToLeave},
		{"Boundary clearance (mm)", s.BoundaryClearance},
		{"Thin tolerance (mm)", s.ThinTolerance},
		{"Part top Z (mm)", res.TopZ},
		{"Retract Z (mm)", res.RetractZ},
		{"X range (mm)", fmt.Sprintf("%.3f .. %.3f", res.XRange.Lo, res.XRange.Hi)},
		{"Y range (mm)", fmt.Sprintf("%.3f .. %.3f", res.YRange.Lo, res.YRange.Hi)},
	}
	for i, r := range rows {
		if err := setRow(f, SheetSettings, i+1, r); err != nil {
			return err
		}
	}
	if err := boldRow(f, SheetSettings, 1, 2, bold); err != nil {
		return err
	}
	return f.SetColWidth(SheetSettings, "A", "B", 28)
}
