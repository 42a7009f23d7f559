package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/SlabRough/internal/engine"
)

// LevelLabel holds the data encoded into each level label's QR code.
type LevelLabel struct {
	RunID    string  `json:"run"`
	Level    int     `json:"level"` // 0 for a whole-run label
	Levels   int     `json:"levels"`
	Z        float64 `json:"z_mm"`
	Contours int     `json:"contours"`
	Length   float64 `json:"length_mm"`
	Radius   float64 `json:"radius_mm"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
// Each label cell is approximately 66.7mm x 25.4mm on US Letter paper.
const (
	labelMarginTop  = 12.7 // mm
	labelMarginLeft = 4.8  // mm
	labelWidth      = 66.7 // mm per label
	labelHeight     = 25.4 // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // QR code size in mm
	labelPadding    = 2.0  // mm internal padding
)

// CollectLevelLabels builds one label per level of the result.
func CollectLevelLabels(res *engine.Result) []LevelLabel {
	labels := make([]LevelLabel, 0, len(res.Levels))
	for i, st := range res.Stats {
		labels = append(labels, LevelLabel{
			RunID:    res.RunID.String(),
			Level:    i + 1,
			Levels:   len(res.Levels),
			Z:        st.Z,
			Contours: st.Contours,
			Length:   st.Length,
			Radius:   res.Settings.ToolRadius(),
		})
	}
	return labels
}

// runLabel describes the whole run.
func runLabel(res *engine.Result) LevelLabel {
	return LevelLabel{
		RunID:    res.RunID.String(),
		Levels:   len(res.Levels),
		Z:        res.TopZ,
		Contours: res.TotalContours(),
		Length:   res.TotalLength(),
		Radius:   res.Settings.ToolRadius(),
	}
}

// ExportLabels writes a sheet of QR-coded labels, one per level, for
// marking the per-level programs or fixtures on the shop floor.
func ExportLabels(path string, res *engine.Result) error {
	labels := CollectLevelLabels(res)
	if len(labels) == 0 {
		return ErrNoLevels
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		x := labelMarginLeft + float64(posOnPage%labelCols)*labelWidth
		y := labelMarginTop + float64(posOnPage/labelCols)*labelHeight

		if err := renderLabel(pdf, x, y, label); err != nil {
			return fmt.Errorf("failed to render label for level %d: %w", label.Level, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// placeQR draws label, JSON encoded, as a QR code at (x, y).
func placeQR(pdf *fpdf.Fpdf, label LevelLabel, x, y float64) error {
	data, err := json.Marshal(label)
	if err != nil {
		return fmt.Errorf("failed to marshal label: %w", err)
	}
	png, err := qrcode.Encode(string(data), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	name := fmt.Sprintf("qr_%s_%d", label.RunID, label.Level)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	pdf.ImageOptions(name, x, y, qrSize, qrSize, false, opts, 0, "")
	return nil
}

func renderLabel(pdf *fpdf.Fpdf, x, y float64, info LevelLabel) error {
	// cutting guide
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	if err := placeQR(pdf, info, x+labelWidth-qrSize-labelPadding, y+(labelHeight-qrSize)/2); err != nil {
		return err
	}

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	pdf.CellFormat(textW, 4.5, fmt.Sprintf("Level %d/%d  Z%.3f", info.Level, info.Levels, info.Z), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	pdf.CellFormat(textW, 3.5, fmt.Sprintf("%d contours, %.0f mm", info.Contours, info.Length), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	pdf.CellFormat(textW, 3, fmt.Sprintf("Tool R%.2f", info.Radius), "", 1, "L", false, 0, "")

	// run ids are long; the first block is enough to tell runs apart
	runID := info.RunID
	if len(runID) > 8 {
		runID = runID[:8]
	}
	pdf.SetXY(textX, y+labelPadding+12.5)
	pdf.CellFormat(textW, 3, "Run "+runID, "", 0, "L", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	return nil
}
