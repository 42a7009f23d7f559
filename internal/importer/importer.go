// Package importer loads part meshes and machining boundaries. Meshes come
// from OFF or STL files. Boundaries come from DXF drawings or from point
// lists in CSV and Excel sheets, with automatic delimiter detection and
// case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/SlabRough/internal/surface"
	"github.com/piwi3910/SlabRough/internal/toolpath"
)

// BoundaryResult holds the closed boundary paths of an import along with
// the problems found on the way. Boundary is nil when nothing was read.
type BoundaryResult struct {
	Boundary *toolpath.Series
	Errors   []string
	Warnings []string
}

// RectBoundary returns the rectangle around the mesh footprint grown by
// margin, as a single closed path at the top of the mesh plus one.
func RectBoundary(m *surface.Mesh, margin float64) *toolpath.Series {
	xrg := m.XRange.Expanded(margin)
	yrg := m.YRange.Expanded(margin)
	return RectSeries(xrg, yrg, m.ZRange.Hi+1)
}

// RectSeries returns the rectangle xrg × yrg as one closed path at z.
func RectSeries(xrg, yrg r1.Interval, z float64) *toolpath.Series {
	s := toolpath.NewSeries(z)
	s.Add(r2.Point{X: xrg.Lo, Y: yrg.Lo})
	s.Add(r2.Point{X: xrg.Hi, Y: yrg.Lo})
	s.Add(r2.Point{X: xrg.Hi, Y: yrg.Hi})
	s.Add(r2.Point{X: xrg.Lo, Y: yrg.Hi})
	s.Add(r2.Point{X: xrg.Lo, Y: yrg.Lo})
	s.Break()
	return s
}

// ColumnMapping maps point columns to their indices in the data. Loop is
// -1 when every row belongs to one loop.
type ColumnMapping struct {
	X    int
	Y    int
	Loop int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"x":    {"x", "x (mm)", "xpos", "east"},
	"y":    {"y", "y (mm)", "ypos", "north"},
	"loop": {"loop", "path", "contour", "ring", "id", "shape"},
}

// DetectCSVDelimiter picks the delimiter among comma, semicolon, tab and
// pipe that splits the most lines into the same number of columns.
func DetectCSVDelimiter(data []byte) rune {
	best, bestScore := ',', 0
	for _, delim := range []rune{',', ';', '\t', '|'} {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) == 0 || len(records[0]) < 2 {
			continue
		}
		cols := len(records[0])
		score := 0
		for _, row := range records {
			if len(row) == cols {
				score++
			}
		}
		if weighted := score*10 + cols; weighted > bestScore {
			best, bestScore = delim, weighted
		}
	}
	return best
}

// DetectColumns matches a header row against the known aliases. Without a
// recognisable header it returns the positional mapping X, Y, Loop and false.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{X: -1, Y: -1, Loop: -1}
	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				switch {
				case role == "x" && mapping.X == -1:
					mapping.X = i
				case role == "y" && mapping.Y == -1:
					mapping.Y = i
				case role == "loop" && mapping.Loop == -1:
					mapping.Loop = i
				}
			}
		}
	}
	if !isHeader {
		m := ColumnMapping{X: 0, Y: 1, Loop: -1}
		if len(row) >= 3 {
			m.Loop = 2
		}
		return m, false
	}
	return mapping, true
}

func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportBoundary reads a boundary file, choosing the reader from the
// extension: DXF drawings, CSV point lists or Excel point lists.
func ImportBoundary(path string, z float64) BoundaryResult {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".dxf":
		return ImportBoundaryDXF(path, z)
	case ".csv", ".txt":
		return ImportPointsCSV(path, z)
	case ".xlsx", ".xlsm":
		return ImportPointsExcel(path, z)
	default:
		return BoundaryResult{Errors: []string{fmt.Sprintf("Unsupported boundary file type %q", ext)}}
	}
}

// ImportPointsCSV reads boundary loops from a CSV point list.
func ImportPointsCSV(path string, z float64) BoundaryResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return BoundaryResult{Errors: []string{fmt.Sprintf("Cannot open file: %v", err)}}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return BoundaryResult{Errors: []string{"File is empty"}}
	}

	delimiter := DetectCSVDelimiter(data)
	var warnings []string
	if delimiter != ',' {
		name := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", name))
	}
	result := ImportPointsCSVFromReader(bytes.NewReader(data), delimiter, z)
	result.Warnings = append(warnings, result.Warnings...)
	return result
}

// ImportPointsCSVFromReader reads boundary loops from CSV with a known delimiter.
func ImportPointsCSVFromReader(r io.Reader, delimiter rune, z float64) BoundaryResult {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return BoundaryResult{Errors: []string{fmt.Sprintf("Cannot read CSV: %v", err)}}
	}
	return pointsFromRows(records, "Line", z)
}

// ImportPointsExcel reads boundary loops from the first sheet of an Excel file.
func ImportPointsExcel(path string, z float64) BoundaryResult {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return BoundaryResult{Errors: []string{fmt.Sprintf("Cannot open Excel file: %v", err)}}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return BoundaryResult{Errors: []string{"Excel file has no sheets"}}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return BoundaryResult{Errors: []string{fmt.Sprintf("Cannot read Excel data: %v", err)}}
	}
	return pointsFromRows(rows, "Row", z)
}

// pointsFromRows groups consecutive rows with the same loop id into closed
// paths. Loops with fewer than three points are dropped with a warning.
func pointsFromRows(rows [][]string, rowPrefix string, z float64) BoundaryResult {
	result := BoundaryResult{}
	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	start := 0
	if hasHeader {
		start = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")
		if mapping.X == -1 || mapping.Y == -1 {
			result.Errors = append(result.Errors, "Required columns not found in header: X, Y")
			return result
		}
	} else if _, err := strconv.ParseFloat(getCell(rows[0], 0), 64); err != nil {
		start = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")
	}

	series := toolpath.NewSeries(z)
	var loop []r2.Point
	loopID := ""
	flush := func() {
		if len(loop) >= 3 {
			series.Append(closeLoop(loop))
		} else if len(loop) > 0 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Skipped loop %q with %d point(s)", loopID, len(loop)))
		}
		loop = nil
	}

	for i := start; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		label := fmt.Sprintf("%s %d", rowPrefix, i+1)

		xs, ys := getCell(row, mapping.X), getCell(row, mapping.Y)
		x, errX := strconv.ParseFloat(xs, 64)
		y, errY := strconv.ParseFloat(ys, 64)
		if errX != nil || errY != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: Invalid point '%s', '%s'", label, xs, ys))
			continue
		}

		if id := getCell(row, mapping.Loop); id != loopID {
			flush()
			loopID = id
		}
		loop = append(loop, r2.Point{X: x, Y: y})
	}
	flush()

	if series.NumPaths() == 0 {
		result.Errors = append(result.Errors, "No closed loops found")
		return result
	}
	result.Boundary = series
	return result
}
