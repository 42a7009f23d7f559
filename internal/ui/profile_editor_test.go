package ui

import (
	"strings"
	"testing"

	"github.com/piwi3910/SlabRough/internal/model"
)

func TestSplitLines(t *testing.T) {
	got := splitLines("G90\n\n  G21  \n\t\nM5")
	want := []string{"G90", "G21", "M5"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], got[i])
		}
	}
	if lines := splitLines("  \n"); lines != nil {
		t.Errorf("expected nil for blank text, got %v", lines)
	}
}

func TestSampleProgramFollowsProfile(t *testing.T) {
	s := model.DefaultSettings()

	mach3 := sampleProgram(s, model.GetProfile("Mach3"))
	if !strings.HasPrefix(mach3, "(") {
		t.Errorf("expected Mach3 program to start with a parenthesised comment, got %q", firstLine(mach3))
	}
	if !strings.Contains(mach3, "M3 S18000") {
		t.Error("expected spindle start with the default speed")
	}

	custom := model.NewCustomProfile("Test", "Generic")
	custom.CommentPrefix = "#"
	custom.StartCode = []string{"G99"}
	prog := sampleProgram(s, custom)
	if !strings.HasPrefix(prog, "#") {
		t.Errorf("expected custom comment prefix, got %q", firstLine(prog))
	}
	if !strings.Contains(prog, "\nG99\n") {
		t.Error("expected custom start code in the sample program")
	}
	if !strings.Contains(prog, "Profile: Test") {
		t.Error("expected the profile name in the header")
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
