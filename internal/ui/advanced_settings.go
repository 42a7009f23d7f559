package ui

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/SlabRough/internal/model"
)

// floatEntry creates an entry bound to val. Text that does not parse
// leaves val unchanged.
func floatEntry(val *float64) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(strconv.FormatFloat(*val, 'f', -1, 64))
	e.OnChanged = func(text string) {
		if v, err := strconv.ParseFloat(text, 64); err == nil {
			*val = v
		}
	}
	return e
}

func intEntry(val *int) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(fmt.Sprintf("%d", *val))
	e.OnChanged = func(text string) {
		if v, err := strconv.Atoi(text); err == nil {
			*val = v
		}
	}
	return e
}

// settingsCards lays out every field of s as labelled entries, grouped
// the same way as the JSON settings file.
func settingsCards(s *model.Settings, profile fyne.CanvasObject) []fyne.CanvasObject {
	tool := widget.NewCard("Tool", "Ball nose when the flat radius is 0, bull nose otherwise",
		container.NewGridWithColumns(2,
			widget.NewLabel("Corner Radius (mm)"), floatEntry(&s.CornerRadius),
			widget.NewLabel("Flat Radius (mm)"), floatEntry(&s.FlatRadius),
		))

	slicing := widget.NewCard("Slicing", "",
		container.NewGridWithColumns(2,
			widget.NewLabel("Step-down (mm)"), floatEntry(&s.StepDown),
			widget.NewLabel("Weave Resolution (mm)"), floatEntry(&s.WeaveResolution),
			widget.NewLabel("Index Box Width (mm)"), floatEntry(&s.BoxWidth),
			widget.NewLabel("Stock to Leave (mm)"), floatEntry(&s.StockToLeave),
			widget.NewLabel("Thin Tolerance (mm)"), floatEntry(&s.ThinTolerance),
		))

	boundary := widget.NewCard("Boundary", "Without an imported boundary the part footprint grown by the margin is used",
		container.NewGridWithColumns(2,
			widget.NewLabel("Stock Margin (mm)"), floatEntry(&s.StockMargin),
			widget.NewLabel("Boundary Clearance (mm)"), floatEntry(&s.BoundaryClearance),
		))

	machineRows := []fyne.CanvasObject{
		widget.NewLabel("Retract Margin (mm)"), floatEntry(&s.RetractMargin),
		widget.NewLabel("Cut Feed (mm/min)"), floatEntry(&s.CutFeed),
		widget.NewLabel("Plunge Feed (mm/min)"), floatEntry(&s.PlungeFeed),
		widget.NewLabel("Retract Feed (mm/min)"), floatEntry(&s.RetractFeed),
		widget.NewLabel("Rapid Rate (mm/min)"), floatEntry(&s.RapidRate),
		widget.NewLabel("Spindle Speed (RPM)"), intEntry(&s.SpindleSpeed),
	}
	if profile != nil {
		machineRows = append([]fyne.CanvasObject{widget.NewLabel("GCode Profile"), profile}, machineRows...)
	}
	machine := widget.NewCard("Machine / GCode", "", container.NewGridWithColumns(2, machineRows...))

	return []fyne.CanvasObject{tool, slicing, boundary, machine}
}

// showAdvancedSettingsDialog edits every setting of the next run. The
// changes become one undo step when the dialog closes.
func (a *App) showAdvancedSettingsDialog() {
	s := &a.settings

	profileSelect := widget.NewSelect(model.GetProfileNames(), func(selected string) {
		s.GCodeProfile = selected
	})
	profileSelect.SetSelected(s.GCodeProfile)
	manageProfileBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		a.showProfileManager()
	})

	cards := settingsCards(s, container.NewBorder(nil, nil, nil, manageProfileBtn, profileSelect))
	content := container.NewVScroll(container.NewVBox(cards...))

	d := dialog.NewCustom("Advanced Settings", "Close", content, a.window)
	d.SetOnClosed(func() {
		if err := s.Validate(); err != nil {
			dialog.ShowError(err, a.window)
		}
		a.commit("Edit Settings")
		a.refreshSettingsPanel()
	})
	d.Resize(fyne.NewSize(560, 640))
	d.Show()
}
