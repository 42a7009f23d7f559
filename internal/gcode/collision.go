package gcode

import (
	"fmt"
	"math"
)

// RapidCollision is a G0 move that travels sideways or down below the
// clearance height, where it could run the tool into the part.
type RapidCollision struct {
	Move  int // index into the parsed moves
	FromX float64
	FromY float64
	ToX   float64
	ToY   float64
	Z     float64 // lowest Z reached by the move
	Depth float64 // how far below the clearance height
}

// CheckRapidCollisions scans parsed moves for rapids below clearZ. Rapids
// straight up are always safe. Consecutive offending moves at the same
// height are reported once.
func CheckRapidCollisions(moves []GCodeMove, clearZ float64) []RapidCollision {
	var collisions []RapidCollision
	for i, m := range moves {
		if !m.Rapid || m.Type == MoveRetract {
			continue
		}
		z := math.Min(m.FromZ, m.ToZ)
		if z >= clearZ-1e-9 {
			continue
		}
		collisions = append(collisions, RapidCollision{
			Move:  i,
			FromX: m.FromX,
			FromY: m.FromY,
			ToX:   m.ToX,
			ToY:   m.ToY,
			Z:     z,
			Depth: clearZ - z,
		})
	}
	return deduplicateCollisions(collisions)
}

// deduplicateCollisions drops a collision that directly follows another at
// the same height.
func deduplicateCollisions(collisions []RapidCollision) []RapidCollision {
	var result []RapidCollision
	for _, c := range collisions {
		if n := len(result); n > 0 {
			prev := result[n-1]
			if prev.Move == c.Move-1 && prev.Z == c.Z {
				continue
			}
		}
		result = append(result, c)
	}
	return result
}

// FormatCollisionWarnings produces human-readable warning messages from collision data.
func FormatCollisionWarnings(collisions []RapidCollision) []string {
	var warnings []string
	for _, c := range collisions {
		warnings = append(warnings, fmt.Sprintf(
			"Move %d: rapid from (%.1f, %.1f) to (%.1f, %.1f) at Z%.3f, %.3f mm below clearance",
			c.Move+1, c.FromX, c.FromY, c.ToX, c.ToY, c.Z, c.Depth,
		))
	}
	return warnings
}
