package gcode

import (
	"math"
	"strings"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/google/uuid"

	"github.com/piwi3910/SlabRough/internal/engine"
	"github.com/piwi3910/SlabRough/internal/model"
	"github.com/piwi3910/SlabRough/internal/surface"
	"github.com/piwi3910/SlabRough/internal/toolpath"
)

// newTestSettings returns Settings suitable for testing with predictable output.
func newTestSettings() model.Settings {
	s := model.DefaultSettings()
	s.CornerRadius = 2
	s.StepDown = 4
	s.WeaveResolution = 0.5
	s.CutFeed = 1000
	s.PlungeFeed = 500
	s.SpindleSpeed = 18000
	s.GCodeProfile = "Generic"
	return s
}

func squarePath(x0, y0, side float64) []r2.Point {
	return []r2.Point{
		{X: x0, Y: y0}, {X: x0 + side, Y: y0}, {X: x0 + side, Y: y0 + side}, {X: x0, Y: y0 + side}, {X: x0, Y: y0},
	}
}

// linkThroughRetract joins the paths of s the way the engine does.
func linkThroughRetract(s *toolpath.Series, retractZ float64) {
	for i := 0; i < s.NumPaths(); i++ {
		p := s.Path(i)
		end := p[len(p)-1]
		link := []r3.Vector{{X: end.X, Y: end.Y, Z: s.Z}, {X: end.X, Y: end.Y, Z: retractZ}}
		if i+1 < s.NumPaths() {
			next := s.Path(i + 1)[0]
			link = append(link, r3.Vector{X: next.X, Y: next.Y, Z: retractZ}, r3.Vector{X: next.X, Y: next.Y, Z: s.Z})
		}
		s.SetLink(i, link)
	}
}

// newTestResult has two contours at Z6 and one at Z2.
func newTestResult() *engine.Result {
	top := toolpath.NewSeries(6)
	top.Append(squarePath(0, 0, 10))
	top.Append(squarePath(20, 0, 5))
	linkThroughRetract(top, 15)

	bottom := toolpath.NewSeries(2)
	bottom.Append(squarePath(-1, -1, 12))
	linkThroughRetract(bottom, 15)

	return &engine.Result{
		RunID:    uuid.New(),
		Settings: newTestSettings(),
		TopZ:     10,
		RetractZ: 15,
		Levels:   []*toolpath.Series{top, bottom},
		Stats: []engine.LevelStats{
			{Z: 6, Contours: 2, Length: 60},
			{Z: 2, Contours: 1, Length: 48},
		},
	}
}

func TestGenerate_Header(t *testing.T) {
	res := newTestResult()
	code := New(newTestSettings()).Generate(res)

	for _, want := range []string{
		"; SlabRough GCode, run " + res.RunID.String(),
		"; Profile: Generic",
		"G90\nG21\n",
		"M3 S18000\n",
		"G0 Z15.000\n",
		"; --- Level 1/2, Z=6.000, 2 contours ---",
		"; --- Level 2/2, Z=2.000, 1 contours ---",
		"; === Roughing complete ===",
	} {
		if !strings.Contains(code, want) {
			t.Errorf("expected %q in output:\n%s", want, code)
		}
	}
	if !strings.HasSuffix(code, "M2\nM5\n") {
		t.Errorf("expected program to end with the profile end codes, got:\n%s", code)
	}
}

func TestGenerate_RoundTrip(t *testing.T) {
	res := newTestResult()
	moves := ParseGCode(New(newTestSettings()).Generate(res))
	sum := Summarize(moves, 5000)

	if sum.Plunges != 3 {
		t.Errorf("expected one plunge per contour (3), got %d", sum.Plunges)
	}
	// the initial clearance move plus one retract per contour
	if sum.Retracts != 4 {
		t.Errorf("expected 4 retracts, got %d", sum.Retracts)
	}
	if sum.LowestZ != 2 {
		t.Errorf("expected lowest Z 2, got %.3f", sum.LowestZ)
	}

	var cut float64
	for i, m := range moves {
		switch m.Type {
		case MoveFeed:
			if m.ToZ != 6 && m.ToZ != 2 {
				t.Errorf("move %d: feed move off the level, Z=%.3f", i, m.ToZ)
			}
			if m.FeedRate != 1000 {
				t.Errorf("move %d: expected cut feed 1000, got %.1f", i, m.FeedRate)
			}
			cut += m.Length()
		case MovePlunge:
			if m.FeedRate != 500 {
				t.Errorf("move %d: expected plunge feed 500, got %.1f", i, m.FeedRate)
			}
		case MoveRapid:
			if m.FromZ != 15 || m.ToZ != 15 {
				t.Errorf("move %d: rapid below the retract height: %+v", i, m)
			}
		}
	}
	if math.Abs(cut-108) > 1e-9 {
		t.Errorf("expected 108mm of cut, got %.3f", cut)
	}
}

func TestGenerate_LinkedContourNeedsNoApproach(t *testing.T) {
	res := newTestResult()
	code := New(newTestSettings()).Generate(res)

	// the second contour at Z6 is entered from the first one's link
	if n := strings.Count(code, "G0 X20.000 Y0.000\n"); n != 1 {
		t.Errorf("expected exactly one move over the second contour, got %d", n)
	}
}

func TestGenerate_UnlinkedContourRetracts(t *testing.T) {
	s := toolpath.NewSeries(3)
	s.Append(squarePath(0, 0, 4))
	res := &engine.Result{RetractZ: 12, Levels: []*toolpath.Series{s}, Stats: []engine.LevelStats{{Z: 3, Contours: 1}}}

	moves := ParseGCode(New(newTestSettings()).Generate(res))
	var last GCodeMove
	for _, m := range moves {
		if m.Type == MoveRetract && m.FromZ == 3 {
			last = m
		}
	}
	if last.ToZ != 12 {
		t.Errorf("expected a retract from the contour to Z12, got %+v", last)
	}
}

func TestGenerate_Mach3Profile(t *testing.T) {
	settings := newTestSettings()
	settings.GCodeProfile = "Mach3"
	code := New(settings).Generate(newTestResult())

	if !strings.Contains(code, "( Profile: Mach3)") {
		t.Errorf("expected parenthesised comments in output:\n%s", code)
	}
	if !strings.Contains(code, "G1 X10.0000 Y0.0000 F1000.0000") {
		t.Errorf("expected 4 decimal places in output:\n%s", code)
	}
	if !strings.Contains(code, "G28 X0 Y0\n") || !strings.Contains(code, "M30\n") {
		t.Errorf("expected Mach3 end codes in output:\n%s", code)
	}
	if n := len(ParseGCode(code)); n == 0 {
		t.Error("expected Mach3 output to parse")
	}
}

func TestGenerateLevels(t *testing.T) {
	codes := New(newTestSettings()).GenerateLevels(newTestResult())
	if len(codes) != 2 {
		t.Fatalf("expected 2 programs, got %d", len(codes))
	}
	for i, code := range codes {
		if n := strings.Count(code, "--- Level"); n != 1 {
			t.Errorf("program %d: expected 1 level, got %d", i, n)
		}
		if sum := Summarize(ParseGCode(code), 5000); sum.Plunges != 2-i {
			t.Errorf("program %d: expected %d plunges, got %d", i, 2-i, sum.Plunges)
		}
	}
}

func TestGenerate_RoughedCube(t *testing.T) {
	m, err := surface.Build(surface.BoxTriangles(r3.Vector{}, r3.Vector{X: 10, Y: 10, Z: 10}))
	if err != nil {
		t.Fatal(err)
	}
	settings := newTestSettings()
	res, err := engine.New(settings).Roughen(m, nil)
	if err != nil {
		t.Fatal(err)
	}

	sum := Summarize(ParseGCode(New(settings).Generate(res)), 5000)
	if sum.Plunges != res.TotalContours() {
		t.Errorf("expected %d plunges, got %d", res.TotalContours(), sum.Plunges)
	}
	if sum.LowestZ != 0 {
		t.Errorf("expected the last level at Z0, got %.3f", sum.LowestZ)
	}
	if sum.Time <= 0 {
		t.Errorf("expected a positive machining time, got %s", sum.Time)
	}
}
