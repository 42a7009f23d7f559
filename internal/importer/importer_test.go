package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/SlabRough/internal/surface"
	"github.com/piwi3910/SlabRough/internal/toolpath"
)

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter(t *testing.T) {
	cases := map[string]rune{
		"x,y\n1,2\n3,4\n":       ',',
		"x;y\n1;2\n3;4\n":       ';',
		"x\ty\tloop\n1\t2\ta\n": '\t',
		"x|y\n1|2\n3|4\n":       '|',
	}
	for data, want := range cases {
		assert.Equal(t, want, DetectCSVDelimiter([]byte(data)), "%q", data)
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns(t *testing.T) {
	m, ok := DetectColumns([]string{"Loop", " Y ", "X"})
	require.True(t, ok)
	assert.Equal(t, ColumnMapping{X: 2, Y: 1, Loop: 0}, m)

	m, ok = DetectColumns([]string{"1.5", "2.5"})
	assert.False(t, ok)
	assert.Equal(t, ColumnMapping{X: 0, Y: 1, Loop: -1}, m)

	m, ok = DetectColumns([]string{"1.5", "2.5", "a"})
	assert.False(t, ok)
	assert.Equal(t, 2, m.Loop)
}

// ─── Point List Import Tests ───────────────────────────────

func TestImportPointsCSVFromReader_Loops(t *testing.T) {
	data := "x,y,loop\n0,0,a\n10,0,a\n10,10,a\n0,10,a\n20,0,b\n30,0,b\n25,5,b\n"
	result := ImportPointsCSVFromReader(strings.NewReader(data), ',', 7)

	assert.Empty(t, result.Errors)
	require.NotNil(t, result.Boundary)
	assert.Equal(t, 7.0, result.Boundary.Z)
	require.Equal(t, 2, result.Boundary.NumPaths())

	square := result.Boundary.Path(0)
	require.Len(t, square, 5)
	assert.Equal(t, square[0], square[4])
	assert.InDelta(t, 100.0, toolpath.SignedArea(square), 1e-9)
	assert.Len(t, result.Boundary.Path(1), 4)
}

func TestImportPointsCSVFromReader_Problems(t *testing.T) {
	data := "x,y,loop\n0,0,a\n1,0,a\nbad,0,b\n0,0,c\n5,0,c\n5,5,c\n"
	result := ImportPointsCSVFromReader(strings.NewReader(data), ',', 0)

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Line 4")
	require.NotNil(t, result.Boundary)
	assert.Equal(t, 1, result.Boundary.NumPaths())

	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, `loop "a"`) {
			found = true
		}
	}
	assert.True(t, found, "expected a warning for the short loop, got %v", result.Warnings)
}

func TestImportPointsCSVFromReader_MissingColumns(t *testing.T) {
	result := ImportPointsCSVFromReader(strings.NewReader("x,loop\n1,a\n"), ',', 0)
	assert.Nil(t, result.Boundary)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Required columns")
}

func TestImportPointsCSV_SemicolonFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outline.csv")
	require.NoError(t, os.WriteFile(path, []byte("0;0\n4;0\n4;3\n"), 0644))

	result := ImportPointsCSV(path, 0)
	assert.Empty(t, result.Errors)
	require.NotNil(t, result.Boundary)
	assert.Equal(t, 1, result.Boundary.NumPaths())
	assert.Contains(t, result.Warnings[0], "semicolon")
}

func TestImportPointsCSV_FileErrors(t *testing.T) {
	dir := t.TempDir()
	result := ImportPointsCSV(filepath.Join(dir, "missing.csv"), 0)
	assert.NotEmpty(t, result.Errors)

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, []byte("  \n"), 0644))
	result = ImportPointsCSV(empty, 0)
	assert.Equal(t, []string{"File is empty"}, result.Errors)
}

func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "points.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, cell := range row {
			ref, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, ref, cell))
		}
	}
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestImportPointsExcel(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"X", "Y"},
		{0, 0},
		{8, 0},
		{8, 8},
		{0, 8},
	})

	result := ImportPointsExcel(path, 3)
	assert.Empty(t, result.Errors)
	require.NotNil(t, result.Boundary)
	require.Equal(t, 1, result.Boundary.NumPaths())
	assert.InDelta(t, 64.0, toolpath.SignedArea(result.Boundary.Path(0)), 1e-9)

	result = ImportPointsExcel(filepath.Join(t.TempDir(), "none.xlsx"), 0)
	assert.NotEmpty(t, result.Errors)
}

// ─── Rect Boundary Tests ───────────────────────────────────

func TestRectBoundary(t *testing.T) {
	m, err := surface.Build(surface.BoxTriangles(r3.Vector{X: 1, Y: 2, Z: 0}, r3.Vector{X: 4, Y: 6, Z: 3}))
	require.NoError(t, err)

	b := RectBoundary(m, 1)
	assert.Equal(t, 4.0, b.Z)
	require.Equal(t, 1, b.NumPaths())
	assert.Equal(t, []r2.Point{{X: 0, Y: 1}, {X: 5, Y: 1}, {X: 5, Y: 7}, {X: 0, Y: 7}, {X: 0, Y: 1}}, b.Path(0))

	s := RectSeries(r1.Interval{Lo: 0, Hi: 2}, r1.Interval{Lo: 0, Hi: 1}, 0)
	assert.InDelta(t, 2.0, toolpath.SignedArea(s.Path(0)), 1e-12)
}

// ─── ImportBoundary Tests ──────────────────────────────────

func TestImportBoundaryDispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "outline.CSV")
	require.NoError(t, os.WriteFile(csvPath, []byte("x,y\n0,0\n10,0\n10,10\n0,10\n"), 0644))

	res := ImportBoundary(csvPath, 3)
	require.Empty(t, res.Errors)
	require.NotNil(t, res.Boundary)
	assert.Equal(t, 1, res.Boundary.NumPaths())
	assert.Equal(t, 3.0, res.Boundary.Z)

	res = ImportBoundary(filepath.Join(dir, "outline.svg"), 0)
	assert.Nil(t, res.Boundary)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], ".svg")

	res = ImportBoundary(filepath.Join(dir, "missing.dxf"), 0)
	assert.Nil(t, res.Boundary)
	assert.NotEmpty(t, res.Errors)
}
