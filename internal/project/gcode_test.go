package project

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExportGCode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "part.nc")
	if err := ExportGCode(path, "G0 Z5\n"); err != nil {
		t.Fatalf("ExportGCode: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "G0 Z5\n" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestExportGCodeMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "part.nc")
	if err := ExportGCode(path, "G0 Z5\n"); err == nil {
		t.Error("expected an error for a missing directory")
	}
}

func TestExportGCodeLevels(t *testing.T) {
	dir := t.TempDir()
	written, err := ExportGCodeLevels(filepath.Join(dir, "part.nc"), []string{"L1\n", "L2\n"})
	if err != nil {
		t.Fatalf("ExportGCodeLevels: %v", err)
	}
	want := []string{filepath.Join(dir, "part_L01.nc"), filepath.Join(dir, "part_L02.nc")}
	if len(written) != len(want) {
		t.Fatalf("expected %d files, got %d", len(want), len(written))
	}
	for i, p := range want {
		if written[i] != p {
			t.Errorf("file %d: expected %s, got %s", i, p, written[i])
		}
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != []string{"L1\n", "L2\n"}[i] {
			t.Errorf("file %d: unexpected content %q", i, data)
		}
	}
}

func TestExportGCodeLevelsDefaultExtension(t *testing.T) {
	dir := t.TempDir()
	written, err := ExportGCodeLevels(filepath.Join(dir, "part"), []string{"L1\n"})
	if err != nil {
		t.Fatalf("ExportGCodeLevels: %v", err)
	}
	if written[0] != filepath.Join(dir, "part_L01.gcode") {
		t.Errorf("unexpected path %s", written[0])
	}
}
