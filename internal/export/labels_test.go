package export

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/SlabRough/internal/engine"
)

func TestExportLabels_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.pdf")
	if err := ExportLabels(path, buildTestResult()); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	if info.Size() < 500 {
		t.Errorf("PDF file seems too small: %d bytes", info.Size())
	}
}

func TestExportLabels_EmptyResult(t *testing.T) {
	err := ExportLabels(filepath.Join(t.TempDir(), "empty.pdf"), &engine.Result{})
	if !errors.Is(err, ErrNoLevels) {
		t.Fatalf("expected ErrNoLevels, got %v", err)
	}
}

func TestCollectLevelLabels(t *testing.T) {
	res := buildTestResult()
	labels := CollectLevelLabels(res)

	if len(labels) != 2 {
		t.Fatalf("expected 2 labels, got %d", len(labels))
	}
	if labels[0].Level != 1 || labels[0].Levels != 2 || labels[0].Z != 6 {
		t.Errorf("unexpected first label %+v", labels[0])
	}
	if labels[0].Contours != 2 || labels[0].Length != 60 {
		t.Errorf("expected 2 contours and 60mm on the first label, got %+v", labels[0])
	}
	if labels[1].Z != 2 || labels[1].RunID != res.RunID.String() {
		t.Errorf("unexpected second label %+v", labels[1])
	}
	if labels[1].Radius != 2 {
		t.Errorf("expected tool radius 2, got %.2f", labels[1].Radius)
	}

	run := runLabel(res)
	if run.Level != 0 || run.Contours != 3 || run.Length != 108 {
		t.Errorf("unexpected run label %+v", run)
	}
}

func TestLevelLabel_JSONKeys(t *testing.T) {
	data, err := json.Marshal(LevelLabel{RunID: "abc", Level: 2, Z: 1.5})
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	for _, key := range []string{"run", "level", "levels", "z_mm", "contours", "length_mm", "radius_mm"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
}

func TestExportLabels_ManyLevels(t *testing.T) {
	res := buildTestResult()
	for i := 0; i < 40; i++ {
		res.Levels = append(res.Levels, res.Levels[0])
		res.Stats = append(res.Stats, res.Stats[0])
	}

	path := filepath.Join(t.TempDir(), "many_labels.pdf")
	if err := ExportLabels(path, res); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Fatalf("PDF file was not created: %v", err)
	}
}
