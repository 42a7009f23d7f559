package gcode

import (
	"fmt"
	"strings"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"

	"github.com/piwi3910/SlabRough/internal/engine"
	"github.com/piwi3910/SlabRough/internal/model"
	"github.com/piwi3910/SlabRough/internal/toolpath"
)

// Generator produces GCode from the contours of a roughing run.
type Generator struct {
	Settings model.Settings
	profile  model.GCodeProfile

	pos r3.Vector // last commanded position
}

func New(settings model.Settings) *Generator {
	return NewWithProfile(settings, model.GetProfile(settings.GCodeProfile))
}

// NewWithProfile uses profile instead of the one settings names, for
// previewing a profile that is still being edited.
func NewWithProfile(settings model.Settings, profile model.GCodeProfile) *Generator {
	return &Generator{Settings: settings, profile: profile}
}

// Generate produces one program cutting every level of the result, top
// level first. Contours are joined through the links the engine computed.
func (g *Generator) Generate(res *engine.Result) string {
	var b strings.Builder

	g.writeHeader(&b, res)
	for i, level := range res.Levels {
		g.writeLevel(&b, level, i+1, len(res.Levels), res.RetractZ)
	}
	g.writeFooter(&b, res.RetractZ)
	return b.String()
}

// GenerateLevels produces a separate program per level.
func (g *Generator) GenerateLevels(res *engine.Result) []string {
	codes := make([]string, 0, len(res.Levels))
	for i, level := range res.Levels {
		var b strings.Builder
		g.writeHeader(&b, res)
		g.writeLevel(&b, level, i+1, len(res.Levels), res.RetractZ)
		g.writeFooter(&b, res.RetractZ)
		codes = append(codes, b.String())
	}
	return codes
}

func (g *Generator) writeHeader(b *strings.Builder, res *engine.Result) {
	p := g.profile
	s := g.Settings

	b.WriteString(g.comment(fmt.Sprintf("SlabRough GCode, run %s", res.RunID)))
	b.WriteString(g.comment(fmt.Sprintf("Area: X %.1f..%.1f, Y %.1f..%.1f mm",
		res.XRange.Lo, res.XRange.Hi, res.YRange.Lo, res.YRange.Hi)))
	b.WriteString(g.comment(fmt.Sprintf("Tool: corner radius %.2fmm, flat radius %.2fmm", s.CornerRadius, s.FlatRadius)))
	b.WriteString(g.comment(fmt.Sprintf("Levels: %d at %.2fmm step-down, %d contours, %.0fmm of cut",
		len(res.Levels), s.StepDown, res.TotalContours(), res.TotalLength())))
	b.WriteString(g.comment(fmt.Sprintf("Stock to leave: %.2fmm, retract Z%.2f", s.StockToLeave, res.RetractZ)))
	b.WriteString(g.comment(fmt.Sprintf("Profile: %s", p.Name)))
	b.WriteString("\n")

	for _, code := range p.StartCode {
		b.WriteString(code + "\n")
	}
	if p.SpindleStart != "" {
		b.WriteString(fmt.Sprintf(p.SpindleStart+"\n", s.SpindleSpeed))
	}

	// Clear the part before the first XY move
	b.WriteString(fmt.Sprintf("%s Z%s\n", p.RapidMove, g.format(res.RetractZ)))
	g.pos = r3.Vector{Z: res.RetractZ}
	b.WriteString("\n")
}

func (g *Generator) writeFooter(b *strings.Builder, retractZ float64) {
	p := g.profile

	b.WriteString("\n")
	b.WriteString(g.comment("=== Roughing complete ==="))
	for _, code := range p.EndCode {
		code = strings.ReplaceAll(code, "[SafeZ]", g.format(retractZ))
		b.WriteString(code + "\n")
	}
	if p.SpindleStop != "" {
		b.WriteString(p.SpindleStop + "\n")
	}
}

func (g *Generator) writeLevel(b *strings.Builder, level *toolpath.Series, num, total int, retractZ float64) {
	b.WriteString(g.comment(fmt.Sprintf("--- Level %d/%d, Z=%s, %d contours ---",
		num, total, g.format(level.Z), level.NumPaths())))

	for i := 0; i < level.NumPaths(); i++ {
		path := level.Path(i)
		if len(path) == 0 {
			continue
		}
		g.approach(b, path[0], level.Z, retractZ)

		for _, pt := range path[1:] {
			b.WriteString(fmt.Sprintf("%s X%s Y%s F%s\n", g.profile.FeedMove,
				g.format(pt.X), g.format(pt.Y), g.format(g.Settings.CutFeed)))
			g.pos = r3.Vector{X: pt.X, Y: pt.Y, Z: level.Z}
		}

		link := level.Links[i]
		if len(link) == 0 {
			link = []r3.Vector{g.pos, {X: g.pos.X, Y: g.pos.Y, Z: retractZ}}
		}
		for _, v := range link {
			g.moveTo(b, v)
		}
	}
	b.WriteString("\n")
}

// approach brings the tool onto the start of a contour unless a link has
// already put it there.
func (g *Generator) approach(b *strings.Builder, start r2.Point, z, retractZ float64) {
	at := r3.Vector{X: start.X, Y: start.Y, Z: z}
	if g.pos.Sub(at).Norm() < 1e-9 {
		return
	}
	if g.pos.X != start.X || g.pos.Y != start.Y {
		g.moveTo(b, r3.Vector{X: g.pos.X, Y: g.pos.Y, Z: retractZ})
		g.moveTo(b, r3.Vector{X: start.X, Y: start.Y, Z: retractZ})
	}
	g.moveTo(b, at)
}

// moveTo emits the move from the current position to v. Pure climbs and
// horizontal moves are rapids; descents feed at the plunge rate.
func (g *Generator) moveTo(b *strings.Builder, v r3.Vector) {
	p := g.profile
	from := g.pos
	sameXY := from.X == v.X && from.Y == v.Y

	switch {
	case sameXY && v.Z == from.Z:
		return
	case sameXY && v.Z > from.Z:
		b.WriteString(fmt.Sprintf("%s Z%s\n", p.RapidMove, g.format(v.Z)))
	case sameXY:
		b.WriteString(fmt.Sprintf("%s Z%s F%s\n", p.FeedMove, g.format(v.Z), g.format(g.Settings.PlungeFeed)))
	case v.Z == from.Z:
		b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.RapidMove, g.format(v.X), g.format(v.Y)))
	default:
		b.WriteString(fmt.Sprintf("%s X%s Y%s Z%s F%s\n", p.FeedMove,
			g.format(v.X), g.format(v.Y), g.format(v.Z), g.format(g.Settings.RetractFeed)))
	}
	g.pos = v
}

// comment wraps text in the profile's comment syntax.
func (g *Generator) comment(text string) string {
	return g.profile.CommentPrefix + " " + text + g.profile.CommentSuffix + "\n"
}

// format formats a coordinate according to the profile's decimal places.
func (g *Generator) format(v float64) string {
	return fmt.Sprintf("%.*f", g.profile.DecimalPlaces, v)
}
