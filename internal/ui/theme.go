// Package ui provides the SlabRough viewer: mesh and boundary loading,
// roughing runs, per-level contour previews and exports.
package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// SlabRoughTheme wraps the default Fyne theme with compact sizing so the
// settings cards and level table fit beside the preview.
type SlabRoughTheme struct {
	base    fyne.Theme
	variant fyne.ThemeVariant
	system  bool
}

// NewSlabRoughTheme follows the system light/dark preference.
func NewSlabRoughTheme() *SlabRoughTheme {
	return &SlabRoughTheme{base: theme.DefaultTheme(), system: true}
}

// NewSlabRoughThemeFor picks the variant from an AppConfig theme name:
// "light", "dark" or anything else for the system preference.
func NewSlabRoughThemeFor(name string) *SlabRoughTheme {
	t := NewSlabRoughTheme()
	t.SetThemeName(name)
	return t
}

// SetThemeName switches between "light", "dark" and "system".
func (t *SlabRoughTheme) SetThemeName(name string) {
	switch name {
	case "light":
		t.variant, t.system = theme.VariantLight, false
	case "dark":
		t.variant, t.system = theme.VariantDark, false
	default:
		t.system = true
	}
}

func (t *SlabRoughTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	if !t.system {
		variant = t.variant
	}
	return t.base.Color(name, variant)
}

func (t *SlabRoughTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.base.Font(style)
}

func (t *SlabRoughTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.base.Icon(name)
}

// Size returns compact sizing overrides.
func (t *SlabRoughTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameText:
		return 12
	case theme.SizeNameCaptionText:
		return 9
	case theme.SizeNameHeadingText:
		return 20
	case theme.SizeNameSubHeadingText:
		return 15
	case theme.SizeNamePadding:
		return 3
	case theme.SizeNameInnerPadding:
		return 6
	case theme.SizeNameInlineIcon:
		return 16
	default:
		return t.base.Size(name)
	}
}
