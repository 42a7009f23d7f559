// Package engine drives a roughing run: it slices a mesh at successive
// step-down levels and collects the reachable-area contours of each level.
package engine

import (
	"fmt"
	"io"
	"log"
	"math"
	"time"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/google/uuid"

	"github.com/piwi3910/SlabRough/internal/model"
	"github.com/piwi3910/SlabRough/internal/spatial"
	"github.com/piwi3910/SlabRough/internal/surface"
	"github.com/piwi3910/SlabRough/internal/toolpath"
	"github.com/piwi3910/SlabRough/internal/weave"
)

// Rougher turns a mesh into layered contours using one set of settings.
type Rougher struct {
	Settings model.Settings
	Logger   *log.Logger
}

// New returns a Rougher that logs nowhere until Logger is set.
func New(settings model.Settings) *Rougher {
	return &Rougher{
		Settings: settings,
		Logger:   log.New(io.Discard, "", 0),
	}
}

// LevelStats summarises the contours of one level.
type LevelStats struct {
	Z        float64
	Contours int
	Points   int
	Length   float64       // total contour length
	Area     float64       // area enclosed by the contours
	Covered  float64       // covered fibre length before extraction
	Duration time.Duration // time spent on the level
}

// Result holds the contours of every level, top first.
type Result struct {
	RunID    uuid.UUID
	Settings model.Settings

	XRange, YRange r1.Interval // weave extent
	TopZ           float64     // mesh top
	RetractZ       float64

	Levels []*toolpath.Series
	Stats  []LevelStats
}

// TotalContours counts the contours over all levels.
func (r *Result) TotalContours() int {
	n := 0
	for _, s := range r.Stats {
		n += s.Contours
	}
	return n
}

// TotalLength sums the contour length over all levels.
func (r *Result) TotalLength() float64 {
	var l float64
	for _, s := range r.Stats {
		l += s.Length
	}
	return l
}

// Levels returns the slice heights for a mesh spanning zrg, stepping down
// from the top and ending exactly on the bottom.
func Levels(zrg r1.Interval, stepDown float64) []float64 {
	n := int(math.Ceil(zrg.Length()/stepDown - 1e-9))
	if n < 1 {
		n = 1
	}
	levels := make([]float64, n)
	for k := range levels {
		levels[k] = math.Max(zrg.Hi-float64(k+1)*stepDown, zrg.Lo)
	}
	return levels
}

// weaveRange returns the area to slice: the boundary's box, or the mesh
// footprint grown by everything that can reach past it.
func (r *Rougher) weaveRange(m *surface.Mesh, boundary *toolpath.Series) (xrg, yrg r1.Interval) {
	s := r.Settings
	if boundary != nil && len(boundary.Points) > 0 {
		lo, hi := boundary.Bounds()
		xrg = r1.Interval{Lo: lo.X, Hi: hi.X}.Expanded(s.WeaveResolution)
		yrg = r1.Interval{Lo: lo.Y, Hi: hi.Y}.Expanded(s.WeaveResolution)
		return xrg, yrg
	}
	grow := s.ToolRadius() + s.StockToLeave + s.WeaveResolution
	return m.XRange.Expanded(grow), m.YRange.Expanded(grow)
}

// Roughen slices m at every level. With a boundary the contours enclose
// the area the tool can reach inside it; without one they enclose the area
// the tool must stay out of.
func (r *Rougher) Roughen(m *surface.Mesh, boundary *toolpath.Series) (*Result, error) {
	s := r.Settings
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if boundary != nil && boundary.NumPaths() == 0 {
		boundary = nil
	}

	xrg, yrg := r.weaveRange(m, boundary)
	var idx *spatial.Index
	if boundary == nil {
		idx = spatial.Build(m, s.BoxWidth)
	} else {
		idx = spatial.BuildInRange(m, xrg.Expanded(s.CornerRadius), yrg.Expanded(s.CornerRadius), s.BoxWidth)
	}

	w := weave.New(xrg, yrg, s.WeaveResolution)
	area := weave.NewArea(w, m, idx, s.CornerRadius)
	area.SetSurfaceTop()
	area.FindInterior()
	r.Logger.Printf("weave %d x %d fibres over [%.2f, %.2f] x [%.2f, %.2f], footprint %.2f",
		len(w.UFibres), len(w.VFibres), xrg.Lo, xrg.Hi, yrg.Lo, yrg.Hi, w.CoveredLength())

	res := &Result{
		RunID:    uuid.New(),
		Settings: s,
		XRange:   xrg,
		YRange:   yrg,
		TopZ:     m.ZRange.Hi,
		RetractZ: m.ZRange.Hi + s.RetractMargin,
	}

	for i, z := range Levels(m.ZRange, s.StepDown) {
		start := time.Now()
		contours, covered, err := r.level(area, boundary, z)
		if err != nil {
			return nil, fmt.Errorf("failed to rough level %d at z=%.3f: %w", i, z, err)
		}
		linkPaths(contours, res.RetractZ)

		st := LevelStats{
			Z:        z,
			Contours: contours.NumPaths(),
			Points:   len(contours.Points),
			Length:   contours.Length(),
			Covered:  covered,
			Duration: time.Since(start),
		}
		var signed float64
		for _, p := range contours.Paths() {
			signed += toolpath.SignedArea(p)
		}
		st.Area = math.Abs(signed)

		r.Logger.Printf("level %d z=%.3f: %d contours, %d points, length %.1f in %s",
			i, z, st.Contours, st.Points, st.Length, st.Duration)
		res.Levels = append(res.Levels, contours)
		res.Stats = append(res.Stats, st)
	}
	return res, nil
}

// level slices one height and returns its contours and the covered fibre
// length they were traced from.
func (r *Rougher) level(area *weave.Area, boundary *toolpath.Series, z float64) (*toolpath.Series, float64, error) {
	s := r.Settings
	if err := area.SliceToHeight(z); err != nil {
		return nil, 0, err
	}

	if grow := s.FlatRadius + s.StockToLeave; grow > 0 {
		ball, err := area.ExtractContours()
		if err != nil {
			return nil, 0, err
		}
		area.OffsetArea(ball, grow)
	}

	if boundary != nil {
		area.Invert()
		area.ClipToBoundary(boundary)
		if s.BoundaryClearance > 0 {
			area.CutToolpath(boundary, s.BoundaryClearance)
		}
	}

	covered := area.CoveredLength()
	contours, err := area.ExtractContours()
	if err != nil {
		return nil, 0, err
	}
	if s.ThinTolerance > 0 {
		contours = contours.Thinned(s.ThinTolerance)
	}
	return contours, covered, nil
}

// linkPaths joins each contour to the next through the retract height. The
// last contour only retracts.
func linkPaths(s *toolpath.Series, retractZ float64) {
	up := func(p r2.Point, z float64) r3.Vector { return r3.Vector{X: p.X, Y: p.Y, Z: z} }
	for i := 0; i < s.NumPaths(); i++ {
		path := s.Path(i)
		end := path[len(path)-1]
		link := []r3.Vector{up(end, s.Z), up(end, retractZ)}
		if i+1 < s.NumPaths() {
			next := s.Path(i + 1)[0]
			link = append(link, up(next, retractZ), up(next, s.Z))
		}
		s.SetLink(i, link)
	}
}
