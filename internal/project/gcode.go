package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExportGCode writes one GCode program to path.
func ExportGCode(path, code string) error {
	if err := os.WriteFile(path, []byte(code), 0644); err != nil {
		return fmt.Errorf("failed to write gcode: %w", err)
	}
	return nil
}

// ExportGCodeLevels writes one program per level next to path, naming
// them <base>_L01<ext>, <base>_L02<ext> and so on. It returns the paths
// written.
func ExportGCodeLevels(path string, codes []string) ([]string, error) {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	if ext == "" {
		ext = ".gcode"
	}
	written := make([]string, 0, len(codes))
	for i, code := range codes {
		p := fmt.Sprintf("%s_L%02d%s", base, i+1, ext)
		if err := ExportGCode(p, code); err != nil {
			return written, err
		}
		written = append(written, p)
	}
	return written, nil
}
