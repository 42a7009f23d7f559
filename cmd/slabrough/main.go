// SlabRough: Z-level roughing toolpaths from triangulated parts
//
// Slices an OFF or STL mesh at successive step-down levels, traces the area
// a ball or bull nose cutter can reach at each level and writes the linked
// contours as GCode, with optional PDF, DXF, Excel and label reports.
//
// Usage:
//   slabrough -mesh part.stl -out build -gcode -pdf
//   slabrough -mesh part.off -boundary outline.dxf -radius 3 -stepdown 10 -gcode -split
//
// Build:
//   go build -o slabrough ./cmd/slabrough

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/piwi3910/SlabRough/internal/engine"
	"github.com/piwi3910/SlabRough/internal/export"
	"github.com/piwi3910/SlabRough/internal/gcode"
	"github.com/piwi3910/SlabRough/internal/importer"
	"github.com/piwi3910/SlabRough/internal/model"
	"github.com/piwi3910/SlabRough/internal/project"
	"github.com/piwi3910/SlabRough/internal/toolpath"
)

type options struct {
	mesh     string
	out      string
	settings string
	boundary string
	save     string

	radius, flat, stepDown, res, stock, margin float64
	profile                                    string

	gcode, split, pdf, dxf, xlsx, labels, verbose bool
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.mesh, "mesh", "", "part mesh (.stl or .off)")
	flag.StringVar(&o.out, "out", ".", "output directory")
	flag.StringVar(&o.settings, "settings", "", "settings JSON written by the viewer or -save-settings")
	flag.StringVar(&o.boundary, "boundary", "", "machining boundary (.dxf, .csv or .xlsx)")
	flag.StringVar(&o.save, "save-settings", "", "write the effective settings to this JSON file")

	flag.Float64Var(&o.radius, "radius", 0, "corner radius of the tool (mm)")
	flag.Float64Var(&o.flat, "flat", 0, "flat radius of a bull nose tool (mm)")
	flag.Float64Var(&o.stepDown, "stepdown", 0, "depth between levels (mm)")
	flag.Float64Var(&o.res, "res", 0, "weave resolution (mm)")
	flag.Float64Var(&o.stock, "stock", 0, "stock to leave (mm)")
	flag.Float64Var(&o.margin, "margin", 0, "rough inside the part rectangle grown by this margin when no boundary is given (mm)")
	flag.StringVar(&o.profile, "profile", "", "GCode profile name")

	flag.BoolVar(&o.gcode, "gcode", false, "write a GCode program")
	flag.BoolVar(&o.split, "split", false, "write one GCode program per level")
	flag.BoolVar(&o.pdf, "pdf", false, "write a PDF report")
	flag.BoolVar(&o.dxf, "dxf", false, "write the contours as DXF")
	flag.BoolVar(&o.xlsx, "xlsx", false, "write Excel statistics")
	flag.BoolVar(&o.labels, "labels", false, "write a sheet of QR level labels")
	flag.BoolVar(&o.verbose, "v", false, "log per-level progress")
	flag.Parse()
	return o
}

// loadSettings starts from the saved preferences, then the -settings file,
// then any tool or slicing flag given on the command line.
func loadSettings(o options) (model.Settings, error) {
	s := model.DefaultSettings()
	if cfg, err := project.LoadAppConfig(project.DefaultConfigPath()); err != nil {
		log.Printf("ignoring preferences: %v", err)
	} else {
		cfg.ApplyToSettings(&s)
	}

	if o.settings != "" {
		loaded, err := project.LoadSettings(o.settings)
		if err != nil {
			return model.Settings{}, err
		}
		s = loaded
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "radius":
			s.CornerRadius = o.radius
		case "flat":
			s.FlatRadius = o.flat
		case "stepdown":
			s.StepDown = o.stepDown
		case "res":
			s.WeaveResolution = o.res
		case "stock":
			s.StockToLeave = o.stock
		case "margin":
			s.StockMargin = o.margin
		case "profile":
			s.GCodeProfile = o.profile
		}
	})
	return s, s.Validate()
}

func loadBoundary(path string, z float64) (*toolpath.Series, error) {
	res := importer.ImportBoundary(path, z)
	for _, w := range res.Warnings {
		log.Printf("boundary: %s", w)
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("failed to import boundary %s:\n  %s", path, strings.Join(res.Errors, "\n  "))
	}
	if res.Boundary == nil || res.Boundary.NumPaths() == 0 {
		return nil, fmt.Errorf("boundary %s has no closed paths", path)
	}
	return res.Boundary, nil
}

func run(o options) error {
	if o.mesh == "" {
		return fmt.Errorf("-mesh is required")
	}
	if err := project.InstallCustomProfiles(project.DefaultProfilesPath()); err != nil {
		log.Printf("custom profiles: %v", err)
	}

	settings, err := loadSettings(o)
	if err != nil {
		return err
	}
	if o.save != "" {
		if err := project.SaveSettings(o.save, settings); err != nil {
			return err
		}
	}

	m, err := importer.LoadMesh(o.mesh)
	if err != nil {
		return err
	}
	log.Printf("%s: %d triangles, z %.3f .. %.3f", filepath.Base(o.mesh), len(m.Triangles), m.ZRange.Lo, m.ZRange.Hi)
	if n := m.BoundaryEdges(); n > 0 {
		log.Printf("mesh is open: %d boundary edges", n)
	}
	degenerate := 0
	for i := range m.Triangles {
		if m.Degenerate(i) {
			degenerate++
		}
	}
	if degenerate > 0 {
		log.Printf("%d degenerate triangles", degenerate)
	}

	var boundary *toolpath.Series
	switch {
	case o.boundary != "":
		if boundary, err = loadBoundary(o.boundary, m.ZRange.Hi+1); err != nil {
			return err
		}
	case settings.StockMargin > 0:
		boundary = importer.RectBoundary(m, settings.StockMargin)
	}

	r := engine.New(settings)
	if o.verbose {
		r.Logger = log.Default()
	}
	start := time.Now()
	res, err := r.Roughen(m, boundary)
	if err != nil {
		return err
	}
	log.Printf("run %s: %d levels, %d contours, %.0f mm of cut in %s",
		res.RunID, len(res.Levels), res.TotalContours(), res.TotalLength(), time.Since(start).Round(time.Millisecond))

	return writeOutputs(o, res)
}

func writeOutputs(o options, res *engine.Result) error {
	if err := os.MkdirAll(o.out, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	base := filepath.Join(o.out, strings.TrimSuffix(filepath.Base(o.mesh), filepath.Ext(o.mesh)))

	if o.gcode || o.split {
		gen := gcode.New(res.Settings)
		code := gen.Generate(res)
		if o.gcode {
			if err := project.ExportGCode(base+".gcode", code); err != nil {
				return err
			}
			log.Printf("wrote %s.gcode", base)
		}
		if o.split {
			written, err := project.ExportGCodeLevels(base+".gcode", gen.GenerateLevels(res))
			if err != nil {
				return err
			}
			log.Printf("wrote %d level programs", len(written))
		}
		reportProgram(code, res)
	}

	reports := []struct {
		enabled bool
		suffix  string
		write   func(string, *engine.Result) error
	}{
		{o.pdf, ".pdf", export.ExportPDF},
		{o.dxf, ".dxf", export.ExportDXF},
		{o.xlsx, ".xlsx", export.ExportXLSX},
		{o.labels, "_labels.pdf", export.ExportLabels},
	}
	for _, rep := range reports {
		if !rep.enabled {
			continue
		}
		if err := rep.write(base+rep.suffix, res); err != nil {
			return fmt.Errorf("failed to write %s%s: %w", base, rep.suffix, err)
		}
		log.Printf("wrote %s%s", base, rep.suffix)
	}
	return nil
}

// reportProgram logs the program totals and any rapid move below the part.
func reportProgram(code string, res *engine.Result) {
	moves := gcode.ParseGCode(code)
	sum := gcode.Summarize(moves, res.Settings.RapidRate)
	log.Printf("program: %d moves, %d plunges, cut %.0f mm, rapid %.0f mm, about %s",
		sum.Moves, sum.Plunges, sum.CutLength, sum.RapidLength, sum.Time.Round(time.Second))
	for _, w := range gcode.FormatCollisionWarnings(gcode.CheckRapidCollisions(moves, res.TopZ)) {
		log.Printf("warning: %s", w)
	}
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("slabrough: ")
	if err := run(parseFlags()); err != nil {
		log.Fatal(err)
	}
}
