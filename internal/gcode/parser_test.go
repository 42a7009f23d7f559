package gcode

import (
	"math"
	"testing"
	"time"
)

func TestParseGCode_Empty(t *testing.T) {
	if moves := ParseGCode(""); len(moves) != 0 {
		t.Errorf("expected 0 moves for empty input, got %d", len(moves))
	}
}

func TestParseGCode_CommentsOnly(t *testing.T) {
	code := `; SlabRough GCode
( Profile: Mach3 )
;G1 X10 Y10
`
	if moves := ParseGCode(code); len(moves) != 0 {
		t.Errorf("expected 0 moves for comments-only input, got %d", len(moves))
	}
}

func TestParseGCode_RapidMove(t *testing.T) {
	moves := ParseGCode("G0 X-2.500 Y12.000\n")
	if len(moves) != 1 {
		t.Fatalf("expected 1 move, got %d", len(moves))
	}
	m := moves[0]
	if m.Type != MoveRapid || !m.Rapid {
		t.Errorf("expected a G0 rapid, got %s (rapid=%v)", m.Type, m.Rapid)
	}
	if m.ToX != -2.5 || m.ToY != 12 {
		t.Errorf("expected to (-2.5,12), got (%.3f, %.3f)", m.ToX, m.ToY)
	}
}

func TestParseGCode_LevelSequence(t *testing.T) {
	code := `G0 Z15.000
G0 X-2.000 Y0.000
G1 Z6.000 F500.000
G1 X-2.000 Y10.000 F1000.000 ; along the wall
G1 X0.000 Y12.000
G0 Z15.000
`
	moves := ParseGCode(code)
	if len(moves) != 6 {
		t.Fatalf("expected 6 moves, got %d", len(moves))
	}

	want := []MoveType{MoveRetract, MoveRapid, MovePlunge, MoveFeed, MoveFeed, MoveRetract}
	for i, w := range want {
		if moves[i].Type != w {
			t.Errorf("move %d: expected %s, got %s", i, w, moves[i].Type)
		}
	}
	if moves[2].FromZ != 15 || moves[2].ToZ != 6 {
		t.Errorf("plunge: expected Z 15 to 6, got %.3f to %.3f", moves[2].FromZ, moves[2].ToZ)
	}
	if moves[4].FeedRate != 1000 {
		t.Errorf("expected sticky feed 1000, got %.1f", moves[4].FeedRate)
	}
	if moves[4].FromX != -2 || moves[4].FromY != 10 {
		t.Errorf("expected position tracked to (-2,10), got (%.3f, %.3f)", moves[4].FromX, moves[4].FromY)
	}
}

func TestParseGCode_ParenthesisedComment(t *testing.T) {
	moves := ParseGCode("G1 X5.0000 (cut) Y7.0000 F800.0000\n")
	if len(moves) != 1 {
		t.Fatalf("expected 1 move, got %d", len(moves))
	}
	if moves[0].ToX != 5 || moves[0].ToY != 7 || moves[0].FeedRate != 800 {
		t.Errorf("unexpected move %+v", moves[0])
	}
}

func TestParseGCode_NonMovementLines(t *testing.T) {
	code := `G90
G21
M3 S18000
G28
G0 Z15.000
G01 X1 Y1
M2
`
	if moves := ParseGCode(code); len(moves) != 2 {
		t.Errorf("expected 2 moves, got %d", len(moves))
	}
}

func TestClassifyMove(t *testing.T) {
	tests := []struct {
		name          string
		rapid         bool
		fromX, fromY  float64
		fromZ         float64
		toX, toY, toZ float64
		want          MoveType
	}{
		{"rapid XY", true, 0, 0, 15, 10, 20, 15, MoveRapid},
		{"rapid up", true, 10, 20, 6, 10, 20, 15, MoveRetract},
		{"rapid down", true, 10, 20, 15, 10, 20, 6, MoveRapid},
		{"feed XY", false, 0, 0, 6, 100, 0, 6, MoveFeed},
		{"plunge", false, 10, 20, 15, 10, 20, 6, MovePlunge},
		{"feed up", false, 10, 20, 6, 10, 20, 15, MoveRetract},
		{"ramp", false, 0, 0, 15, 5, 5, 6, MoveFeed},
		{"tiny Z", false, 0, 0, 6, 0, 0, 6.0001, MoveFeed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyMove(tt.rapid, tt.fromX, tt.fromY, tt.fromZ, tt.toX, tt.toY, tt.toZ)
			if got != tt.want {
				t.Errorf("classifyMove() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	code := `G0 Z10
G0 X30 Y40
G1 Z0 F600
G1 X30 Y100 F1200
G0 Z10
`
	s := Summarize(ParseGCode(code), 6000)
	if s.Moves != 5 || s.Plunges != 1 || s.Retracts != 2 {
		t.Errorf("unexpected counts %+v", s)
	}
	if math.Abs(s.CutLength-70) > 1e-9 {
		t.Errorf("expected cut length 70, got %.3f", s.CutLength)
	}
	if math.Abs(s.RapidLength-70) > 1e-9 {
		t.Errorf("expected rapid length 70, got %.3f", s.RapidLength)
	}
	if s.LowestZ != 0 {
		t.Errorf("expected lowest Z 0, got %.3f", s.LowestZ)
	}

	// 10/600 + 60/1200 + 70/6000 minutes
	want := (10.0/600 + 60.0/1200 + 70.0/6000) * float64(time.Minute)
	if math.Abs(float64(s.Time)-want) > float64(time.Millisecond) {
		t.Errorf("expected time %s, got %s", time.Duration(want), s.Time)
	}

	if empty := Summarize(nil, 6000); empty.LowestZ != 0 || empty.Time != 0 {
		t.Errorf("expected zero summary, got %+v", empty)
	}
}
