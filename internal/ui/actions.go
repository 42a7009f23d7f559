package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/SlabRough/internal/engine"
	"github.com/piwi3910/SlabRough/internal/export"
	"github.com/piwi3910/SlabRough/internal/gcode"
	"github.com/piwi3910/SlabRough/internal/importer"
	"github.com/piwi3910/SlabRough/internal/project"
	"github.com/piwi3910/SlabRough/internal/toolpath"
)

// maxWarningLines caps the rapid move warnings shown in one dialog.
const maxWarningLines = 12

// ─── Mesh ──────────────────────────────────────────────────

func (a *App) openMeshDialog() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		a.openMesh(path)
	}, a.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".stl", ".off"}))
	a.setDialogLocation(d)
	d.Show()
}

// OpenMesh loads the mesh at path, as File > Open Mesh does.
func (a *App) OpenMesh(path string) { a.openMesh(path) }

// openMesh loads a mesh in the background and drops the previous result.
func (a *App) openMesh(path string) {
	a.setStatus("Loading " + filepath.Base(path) + "...")
	go func() {
		m, err := importer.LoadMesh(path)
		fyne.Do(func() {
			if err != nil {
				a.setStatus("Failed to load " + filepath.Base(path))
				dialog.ShowError(err, a.window)
				return
			}
			a.mesh, a.meshPath = m, path
			a.clearResult()
			a.logger.Printf("loaded %s: %d triangles, %d vertices, %d boundary edges",
				path, len(m.Triangles), len(m.Vertices), m.BoundaryEdges())

			a.config.AddRecentMesh(path)
			if err := a.saveConfig(); err != nil {
				a.logger.Printf("failed to save preferences: %v", err)
			}
			a.refreshRecentMenu()
			a.refreshSettingsPanel()
			a.setStatus(fmt.Sprintf("Loaded %s, %d triangles", filepath.Base(path), len(m.Triangles)))
		})
	}()
}

func (a *App) refreshRecentMenu() {
	if a.recentMenu == nil {
		return
	}
	a.recentMenu.Items = nil
	for _, p := range a.config.RecentMeshes {
		a.recentMenu.Items = append(a.recentMenu.Items, fyne.NewMenuItem(p, func() { a.openMesh(p) }))
	}
	if len(a.recentMenu.Items) == 0 {
		none := fyne.NewMenuItem("No recent meshes", nil)
		none.Disabled = true
		a.recentMenu.Items = append(a.recentMenu.Items, none)
	}
	a.recentMenu.Refresh()
}

// ─── Boundary ──────────────────────────────────────────────

// boundaryZ is the height imported boundaries are placed at.
func (a *App) boundaryZ() float64 {
	if a.mesh == nil {
		return 0
	}
	return a.mesh.ZRange.Hi + 1
}

func (a *App) importBoundaryDialog(ext string) {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()

		a.handleBoundaryResult(filepath.Base(path), importer.ImportBoundary(path, a.boundaryZ()))
	}, a.window)
	if ext == ".xlsx" {
		d.SetFilter(storage.NewExtensionFileFilter([]string{".xlsx", ".xlsm"}))
	} else {
		d.SetFilter(storage.NewExtensionFileFilter([]string{ext}))
	}
	a.setDialogLocation(d)
	d.Show()
}

func (a *App) handleBoundaryResult(name string, res importer.BoundaryResult) {
	if len(res.Errors) > 0 {
		errorMsg := "Errors encountered during import:\n\n" + strings.Join(res.Errors, "\n")
		dialog.ShowError(fmt.Errorf("%s", errorMsg), a.window)
	}
	for _, w := range res.Warnings {
		a.logger.Printf("boundary %s: %s", name, w)
	}
	if res.Boundary == nil || res.Boundary.NumPaths() == 0 {
		return
	}

	a.boundary, a.boundaryName = res.Boundary, name
	a.commit("Import Boundary")
	a.refreshSettingsPanel()

	msg := fmt.Sprintf("Imported %d closed paths from %s.", res.Boundary.NumPaths(), name)
	if len(res.Warnings) > 0 {
		msg += fmt.Sprintf("\n\n%d warnings were written to the log.", len(res.Warnings))
	}
	dialog.ShowInformation("Import Complete", msg, a.window)
}

// effectiveBoundary is the imported boundary, or the part rectangle grown
// by the stock margin when a margin is set.
func (a *App) effectiveBoundary() *toolpath.Series {
	if a.boundary == nil && a.mesh != nil && a.settings.StockMargin > 0 {
		return importer.RectBoundary(a.mesh, a.settings.StockMargin)
	}
	return a.boundary
}

func (a *App) clearBoundary() {
	if a.boundary == nil {
		return
	}
	a.boundary, a.boundaryName = nil, ""
	a.commit("Clear Boundary")
	a.refreshSettingsPanel()
}

// ─── Roughing ──────────────────────────────────────────────

// requireMesh reports whether a mesh is loaded and the settings can drive a
// run, telling the user when not.
func (a *App) requireMesh() bool {
	if a.mesh == nil {
		dialog.ShowInformation("No mesh", "Open a mesh first.", a.window)
		return false
	}
	if err := a.settings.Validate(); err != nil {
		dialog.ShowError(err, a.window)
		return false
	}
	return true
}

func (a *App) runRoughing() {
	if !a.requireMesh() {
		return
	}
	a.commit("Edit Settings")

	r := engine.New(a.settings)
	r.Logger = a.logger
	mesh, boundary := a.mesh, a.effectiveBoundary()

	progress := dialog.NewCustomWithoutButtons("Roughing", widget.NewProgressBarInfinite(), a.window)
	progress.Show()
	go func() {
		start := time.Now()
		res, err := r.Roughen(mesh, boundary)
		fyne.Do(func() {
			progress.Hide()
			if err != nil {
				a.logger.Printf("roughing failed: %v", err)
				dialog.ShowError(err, a.window)
				return
			}
			a.logger.Printf("run %s finished in %s", res.RunID, time.Since(start).Round(time.Millisecond))
			a.setResult(res)
		})
	}()
}

func (a *App) setResult(res *engine.Result) {
	a.result = res
	a.levelSums = export.SummarizeLevels(res)
	a.preview.SetResult(res)

	n := len(res.Levels)
	a.levelSlider.Max = float64(max(1, n-1))
	a.levelSlider.Value = 0
	a.levelSlider.Refresh()
	a.updateMoves()
	a.levelTable.Refresh()

	a.setStatus(fmt.Sprintf("%d levels, %d contours, %.0f mm of cut", n, res.TotalContours(), res.TotalLength()))
	a.tabs.SelectIndex(0)
}

func (a *App) clearResult() {
	a.result = nil
	a.levelSums = nil
	if a.preview != nil {
		a.preview.SetResult(nil)
	}
	if a.levelTable != nil {
		a.levelTable.Refresh()
	}
}

// requireResult reports whether there is a result to export or inspect.
func (a *App) requireResult() bool {
	if a.result == nil || len(a.result.Levels) == 0 {
		dialog.ShowInformation("No results", "Run Roughen first.", a.window)
		return false
	}
	return true
}

// checkRapids summarises the whole program and lists the rapid moves that
// travel below the part top.
func (a *App) checkRapids() {
	if !a.requireResult() {
		return
	}
	res := a.result
	moves := gcode.ParseGCode(gcode.New(res.Settings).Generate(res))
	sum := gcode.Summarize(moves, res.Settings.RapidRate)

	var b strings.Builder
	fmt.Fprintf(&b, "%d moves, %d plunges, %d retracts\n", sum.Moves, sum.Plunges, sum.Retracts)
	fmt.Fprintf(&b, "Cut %.0f mm, rapid %.0f mm, lowest Z %.3f\n", sum.CutLength, sum.RapidLength, sum.LowestZ)
	fmt.Fprintf(&b, "Estimated time %s\n\n", sum.Time.Round(time.Second))

	warnings := gcode.FormatCollisionWarnings(gcode.CheckRapidCollisions(moves, res.TopZ))
	if len(warnings) == 0 {
		b.WriteString("No rapid moves below the part top.")
	} else {
		fmt.Fprintf(&b, "%d rapid moves below Z%.3f:\n", len(warnings), res.TopZ)
		shown := warnings[:min(len(warnings), maxWarningLines)]
		b.WriteString(strings.Join(shown, "\n"))
		if len(warnings) > len(shown) {
			fmt.Fprintf(&b, "\n... and %d more", len(warnings)-len(shown))
		}
		for _, w := range warnings {
			a.logger.Print(w)
		}
	}
	dialog.ShowInformation("Rapid Move Check", b.String(), a.window)
}

// ─── Export ────────────────────────────────────────────────

// exportName suggests a file name derived from the mesh name.
func (a *App) exportName(suffix string) string {
	base := "slabrough"
	if a.meshPath != "" {
		base = strings.TrimSuffix(filepath.Base(a.meshPath), filepath.Ext(a.meshPath))
	}
	return base + suffix
}

// setDialogLocation starts file dialogs in the configured output directory,
// or next to the mesh.
func (a *App) setDialogLocation(d *dialog.FileDialog) {
	dir := a.config.OutputDir
	if dir == "" && a.meshPath != "" {
		dir = filepath.Dir(a.meshPath)
	}
	if dir == "" {
		return
	}
	if uri, err := storage.ListerForURI(storage.NewFileURI(dir)); err == nil {
		d.SetLocation(uri)
	}
}

// saveFile asks for a destination and hands its path to write.
func (a *App) saveFile(title, name string, write func(path string) error) {
	if !a.requireResult() {
		return
	}
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()
		if err := write(path); err != nil {
			dialog.ShowError(fmt.Errorf("failed to export %s: %w", strings.ToLower(title), err), a.window)
			return
		}
		a.logger.Printf("exported %s to %s", strings.ToLower(title), path)
		dialog.ShowInformation("Export Complete", fmt.Sprintf("%s saved to %s", title, path), a.window)
	}, a.window)
	d.SetFileName(name)
	a.setDialogLocation(d)
	d.Show()
}

func (a *App) exportFile(title, suffix string, fn func(string, *engine.Result) error) {
	a.saveFile(title, a.exportName(suffix), func(path string) error {
		return fn(path, a.result)
	})
}

func (a *App) exportGCode() {
	a.saveFile("GCode", a.exportName(".gcode"), func(path string) error {
		return project.ExportGCode(path, gcode.New(a.result.Settings).Generate(a.result))
	})
}

func (a *App) exportGCodeLevels() {
	a.saveFile("GCode per Level", a.exportName(".gcode"), func(path string) error {
		// the dialog created path itself; the programs go next to it
		_ = os.Remove(path)
		written, err := project.ExportGCodeLevels(path, gcode.New(a.result.Settings).GenerateLevels(a.result))
		a.logger.Printf("wrote %d level programs", len(written))
		return err
	})
}
