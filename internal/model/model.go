package model

import (
	"errors"
	"fmt"
)

// ErrInvalidSettings is wrapped by every Settings.Validate failure.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings holds the tool, slicing and machine parameters of one roughing run.
type Settings struct {
	// Tool
	CornerRadius float64 `json:"corner_radius"` // Ball radius at the tool tip
	FlatRadius   float64 `json:"flat_radius"`   // Flat bottom radius around the ball centre, 0 for a ball nose

	// Slicing
	StepDown          float64 `json:"step_down"`          // Depth between levels
	WeaveResolution   float64 `json:"weave_resolution"`   // Fibre spacing
	BoxWidth          float64 `json:"box_width"`          // Spatial index cell width
	StockToLeave      float64 `json:"stock_to_leave"`     // Extra clearance kept around the surface
	StockMargin       float64 `json:"stock_margin"`       // Rectangular boundary margin around the part
	BoundaryClearance float64 `json:"boundary_clearance"` // Clearance kept inside an imported boundary
	ThinTolerance     float64 `json:"thin_tolerance"`     // Collinear point removal tolerance

	// Machine
	RetractMargin float64 `json:"retract_margin"` // Retract height above the part top
	CutFeed       float64 `json:"cut_feed"`       // mm/min
	PlungeFeed    float64 `json:"plunge_feed"`    // mm/min
	RetractFeed   float64 `json:"retract_feed"`   // mm/min
	RapidRate     float64 `json:"rapid_rate"`     // mm/min, for time estimates only
	SpindleSpeed  int     `json:"spindle_speed"`  // RPM
	GCodeProfile  string  `json:"gcode_profile"`  // Name of the GCode profile to use
}

// DefaultSettings returns the classic roughing parameters for a 6mm ball nose.
func DefaultSettings() Settings {
	return Settings{
		CornerRadius:    3,
		FlatRadius:      0,
		StepDown:        15,
		WeaveResolution: 0.51,
		BoxWidth:        2.5,
		StockToLeave:    0,
		StockMargin:     0,
		ThinTolerance:   0.0001,
		RetractMargin:   5,
		CutFeed:         1000,
		PlungeFeed:      500,
		RetractFeed:     5000,
		RapidRate:       5000,
		SpindleSpeed:    18000,
		GCodeProfile:    "Generic",
	}
}

// ToolRadius is the horizontal reach of the cutter from its axis.
func (s Settings) ToolRadius() float64 {
	return s.CornerRadius + s.FlatRadius
}

// Validate reports the first parameter that cannot drive a run.
func (s Settings) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"corner radius", s.CornerRadius},
		{"step down", s.StepDown},
		{"weave resolution", s.WeaveResolution},
		{"box width", s.BoxWidth},
	}
	for _, p := range positive {
		if !(p.v > 0) {
			return fmt.Errorf("%w: %s must be positive, got %g", ErrInvalidSettings, p.name, p.v)
		}
	}

	nonNegative := []struct {
		name string
		v    float64
	}{
		{"flat radius", s.FlatRadius},
		{"stock to leave", s.StockToLeave},
		{"stock margin", s.StockMargin},
		{"boundary clearance", s.BoundaryClearance},
		{"thin tolerance", s.ThinTolerance},
		{"retract margin", s.RetractMargin},
		{"rapid rate", s.RapidRate},
	}
	for _, p := range nonNegative {
		if p.v < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %g", ErrInvalidSettings, p.name, p.v)
		}
	}
	return nil
}
