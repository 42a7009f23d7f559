package export

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/piwi3910/SlabRough/internal/engine"
	"github.com/piwi3910/SlabRough/internal/toolpath"
)

// LevelSummary describes the contours of one level for reports.
type LevelSummary struct {
	Index    int
	Z        float64
	Contours int
	Points   int
	Length   float64
	Area     float64 // net enclosed area, holes subtracted

	MeanContour    float64 // mean contour length
	StdDevContour  float64
	LongestContour float64
}

// contourLengths returns the length of every contour of s.
func contourLengths(s *toolpath.Series) []float64 {
	lengths := make([]float64, 0, s.NumPaths())
	for _, p := range s.Paths() {
		lengths = append(lengths, toolpath.LoopLength(p))
	}
	return lengths
}

// SummarizeLevels computes a LevelSummary for every level of the result.
func SummarizeLevels(res *engine.Result) []LevelSummary {
	out := make([]LevelSummary, 0, len(res.Levels))
	for i, s := range res.Levels {
		lengths := contourLengths(s)
		ls := LevelSummary{
			Index:    i + 1,
			Z:        s.Z,
			Contours: len(lengths),
			Points:   len(s.Points),
		}

		areas := make([]float64, 0, len(lengths))
		for _, p := range s.Paths() {
			areas = append(areas, toolpath.SignedArea(p))
		}
		ls.Area = math.Abs(floats.Sum(areas))

		if len(lengths) > 0 {
			ls.Length = floats.Sum(lengths)
			ls.LongestContour = floats.Max(lengths)
			ls.MeanContour = stat.Mean(lengths, nil)
		}
		if len(lengths) > 1 {
			ls.StdDevContour = stat.StdDev(lengths, nil)
		}
		out = append(out, ls)
	}
	return out
}

// LevelLengths returns the total contour length of each level, top first.
func LevelLengths(sums []LevelSummary) []float64 {
	lengths := make([]float64, len(sums))
	for i, s := range sums {
		lengths[i] = s.Length
	}
	return lengths
}
