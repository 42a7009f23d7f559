package ui

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/SlabRough/internal/engine"
	"github.com/piwi3910/SlabRough/internal/gcode"
)

func (a *App) buildComparePanel() fyne.CanvasObject {
	a.compareContainer = container.NewVBox(
		widget.NewLabel("Compare Scenarios roughs the mesh with variations of the current settings."),
	)
	return container.NewVScroll(a.compareContainer)
}

func (a *App) runComparison() {
	if !a.requireMesh() {
		return
	}
	a.commit("Edit Settings")

	scenarios := engine.BuildDefaultScenarios(a.settings)
	mesh, boundary := a.mesh, a.effectiveBoundary()

	progress := dialog.NewCustomWithoutButtons(
		fmt.Sprintf("Comparing %d scenarios", len(scenarios)),
		widget.NewProgressBarInfinite(), a.window)
	progress.Show()
	go func() {
		results := engine.CompareScenarios(scenarios, mesh, boundary)
		fyne.Do(func() {
			progress.Hide()
			a.showComparison(results)
			a.tabs.SelectIndex(2)
		})
	}()
}

// estimatedTime is the machining time of the scenario's full program.
func estimatedTime(cr engine.ComparisonResult) time.Duration {
	s := cr.Scenario.Settings
	moves := gcode.ParseGCode(gcode.New(s).Generate(cr.Result))
	return gcode.Summarize(moves, s.RapidRate).Time
}

func (a *App) showComparison(results []engine.ComparisonResult) {
	a.compareContainer.RemoveAll()

	bold := fyne.TextStyle{Bold: true}
	grid := container.NewGridWithColumns(7,
		widget.NewLabelWithStyle("Scenario", fyne.TextAlignLeading, bold),
		widget.NewLabelWithStyle("Levels", fyne.TextAlignLeading, bold),
		widget.NewLabelWithStyle("Contours", fyne.TextAlignLeading, bold),
		widget.NewLabelWithStyle("Length (mm)", fyne.TextAlignLeading, bold),
		widget.NewLabelWithStyle("Est. Machining", fyne.TextAlignLeading, bold),
		widget.NewLabelWithStyle("Compute", fyne.TextAlignLeading, bold),
		widget.NewLabel(""),
	)

	for _, cr := range results {
		if cr.Err != nil {
			a.logger.Printf("scenario %q failed: %v", cr.Scenario.Name, cr.Err)
			grid.Add(widget.NewLabel(cr.Scenario.Name))
			errLabel := widget.NewLabel("failed: " + cr.Err.Error())
			errLabel.Wrapping = fyne.TextWrapWord
			grid.Add(errLabel)
			for i := 0; i < 5; i++ {
				grid.Add(widget.NewLabel(""))
			}
			continue
		}

		useBtn := widget.NewButtonWithIcon("Use", theme.ConfirmIcon(), func() {
			a.settings = cr.Scenario.Settings
			a.commit("Use " + cr.Scenario.Name)
			a.refreshSettingsPanel()
			a.setResult(cr.Result)
		})
		grid.Add(widget.NewLabel(cr.Scenario.Name))
		grid.Add(widget.NewLabel(fmt.Sprintf("%d", cr.Levels)))
		grid.Add(widget.NewLabel(fmt.Sprintf("%d", cr.Contours)))
		grid.Add(widget.NewLabel(fmt.Sprintf("%.0f", cr.Length)))
		grid.Add(widget.NewLabel(estimatedTime(cr).Round(time.Second).String()))
		grid.Add(widget.NewLabel(cr.Duration.Round(time.Millisecond).String()))
		grid.Add(useBtn)
	}

	a.compareContainer.Add(grid)
	a.compareContainer.Refresh()
}
