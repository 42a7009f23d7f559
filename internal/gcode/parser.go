package gcode

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MoveType represents the type of CNC toolpath movement.
type MoveType int

const (
	MoveRapid   MoveType = iota // G0: rapid positioning (no cutting)
	MoveFeed                    // G1: cutting move
	MovePlunge                  // G1 straight down into material
	MoveRetract                 // G0/G1 straight up out of material
)

func (t MoveType) String() string {
	switch t {
	case MoveRapid:
		return "rapid"
	case MoveFeed:
		return "feed"
	case MovePlunge:
		return "plunge"
	case MoveRetract:
		return "retract"
	}
	return "unknown"
}

// GCodeMove represents a single parsed movement from GCode.
type GCodeMove struct {
	Type     MoveType
	FromX    float64
	FromY    float64
	FromZ    float64
	ToX      float64
	ToY      float64
	ToZ      float64
	FeedRate float64
	Rapid    bool // issued as G0
}

// Length is the straight-line distance covered by the move.
func (m GCodeMove) Length() float64 {
	dx, dy, dz := m.ToX-m.FromX, m.ToY-m.FromY, m.ToZ-m.FromZ
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

var wordRe = regexp.MustCompile(`([XYZF])(-?\d+\.?\d*)`)

// stripComment removes ";" line comments and one "(...)" comment.
func stripComment(line string) string {
	if idx := strings.Index(line, ";"); idx >= 0 {
		line = line[:idx]
	}
	if idx := strings.Index(line, "("); idx >= 0 {
		if end := strings.Index(line, ")"); end > idx {
			line = line[:idx] + line[end+1:]
		}
	}
	return strings.TrimSpace(line)
}

// motionCode reports whether the line is a G0 or G1 command.
func motionCode(upper string) (rapid, feed bool) {
	word, _, _ := strings.Cut(upper, " ")
	switch word {
	case "G0", "G00":
		return true, false
	case "G1", "G01":
		return false, true
	}
	return false, false
}

// ParseGCode parses a GCode string into a slice of structured moves.
// It tracks absolute position and feed, and classifies every G0/G1 by its
// motion. Other commands are skipped.
func ParseGCode(code string) []GCodeMove {
	var moves []GCodeMove
	var x, y, z, feed float64

	for _, line := range strings.Split(code, "\n") {
		line = stripComment(strings.TrimSpace(line))
		if line == "" {
			continue
		}
		upper := strings.ToUpper(line)
		rapid, cut := motionCode(upper)
		if !rapid && !cut {
			continue
		}

		nx, ny, nz, nf := x, y, z, feed
		for _, m := range wordRe.FindAllStringSubmatch(upper, -1) {
			val, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			switch m[1] {
			case "X":
				nx = val
			case "Y":
				ny = val
			case "Z":
				nz = val
			case "F":
				nf = val
			}
		}

		moves = append(moves, GCodeMove{
			Type:     classifyMove(rapid, x, y, z, nx, ny, nz),
			FromX:    x,
			FromY:    y,
			FromZ:    z,
			ToX:      nx,
			ToY:      ny,
			ToZ:      nz,
			FeedRate: nf,
			Rapid:    rapid,
		})
		x, y, z, feed = nx, ny, nz, nf
	}
	return moves
}

func classifyMove(rapid bool, fromX, fromY, fromZ, toX, toY, toZ float64) MoveType {
	dz := toZ - fromZ
	hasXY := fromX != toX || fromY != toY

	switch {
	case rapid && dz > 0:
		return MoveRetract
	case rapid:
		return MoveRapid
	case dz < -0.001 && !hasXY:
		return MovePlunge
	case dz > 0.001 && !hasXY:
		return MoveRetract
	default:
		return MoveFeed
	}
}

// Summary totals a parsed program.
type Summary struct {
	Moves       int
	Plunges     int
	Retracts    int
	CutLength   float64 // G1 moves
	RapidLength float64 // G0 moves
	LowestZ     float64
	Time        time.Duration
}

// Summarize totals the moves and estimates the machining time, taking
// rapids at rapidRate mm/min and feed moves at their own feed rate.
func Summarize(moves []GCodeMove, rapidRate float64) Summary {
	s := Summary{Moves: len(moves), LowestZ: math.Inf(1)}
	var minutes float64
	for _, m := range moves {
		l := m.Length()
		s.LowestZ = math.Min(s.LowestZ, m.ToZ)

		switch m.Type {
		case MovePlunge:
			s.Plunges++
		case MoveRetract:
			s.Retracts++
		}
		if m.Rapid {
			s.RapidLength += l
			if rapidRate > 0 {
				minutes += l / rapidRate
			}
			continue
		}
		s.CutLength += l
		if m.FeedRate > 0 {
			minutes += l / m.FeedRate
		}
	}
	if len(moves) == 0 {
		s.LowestZ = 0
	}
	s.Time = time.Duration(minutes * float64(time.Minute))
	return s
}
