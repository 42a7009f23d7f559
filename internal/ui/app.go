package ui

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/SlabRough/internal/engine"
	"github.com/piwi3910/SlabRough/internal/export"
	"github.com/piwi3910/SlabRough/internal/gcode"
	"github.com/piwi3910/SlabRough/internal/model"
	"github.com/piwi3910/SlabRough/internal/project"
	"github.com/piwi3910/SlabRough/internal/surface"
	"github.com/piwi3910/SlabRough/internal/toolpath"
	"github.com/piwi3910/SlabRough/internal/ui/widgets"
)

// Preview area size handed to the contour preview.
const (
	previewWidth  = 900
	previewHeight = 640
)

// App holds all application state and UI references.
type App struct {
	window fyne.Window
	config model.AppConfig
	theme  *SlabRoughTheme
	logger *log.Logger

	settings  model.Settings
	history   *History
	committed Snapshot // inputs as of the last undo point

	mesh         *surface.Mesh
	meshPath     string
	boundary     *toolpath.Series
	boundaryName string
	result       *engine.Result
	levelSums    []export.LevelSummary

	// UI references for dynamic updates
	tabs             *container.AppTabs
	settingsPanel    *fyne.Container
	profileSelect    *widget.Select
	preview          *widgets.ContourPreview
	levelSlider      *widget.Slider
	levelTable       *widget.Table
	compareContainer *fyne.Container
	logEntry         *widget.Entry
	statusLabel      *widget.Label
	showMoves        bool

	undoItem, redoItem *fyne.MenuItem
	recentMenu         *fyne.Menu
	mainMenu           *fyne.MainMenu
}

// NewApp loads the saved preferences and custom profiles and prepares an
// empty session. Problems reading either are logged and the defaults used.
func NewApp(window fyne.Window, th *SlabRoughTheme) *App {
	a := &App{
		window:  window,
		theme:   th,
		history: NewHistory(),
	}
	a.logger = log.New(io.MultiWriter(os.Stderr, logSink{a}), "", log.Ltime)

	cfg, err := project.LoadAppConfig(project.DefaultConfigPath())
	if err != nil {
		a.logger.Printf("failed to load preferences: %v", err)
		cfg = model.DefaultAppConfig()
	}
	a.config = cfg
	if err := project.InstallCustomProfiles(project.DefaultProfilesPath()); err != nil {
		a.logger.Printf("failed to load custom profiles: %v", err)
	}

	a.settings = model.DefaultSettings()
	a.config.ApplyToSettings(&a.settings)
	a.committed = a.snapshot("")
	if th != nil {
		th.SetThemeName(a.config.Theme)
	}
	return a
}

// logSink mirrors log output into the Log tab.
type logSink struct{ a *App }

func (s logSink) Write(p []byte) (int, error) {
	text := string(p)
	fyne.Do(func() {
		if s.a.logEntry != nil {
			s.a.logEntry.Append(text)
		}
	})
	return len(p), nil
}

// SetupMenus creates the native menu bar for the application.
func (a *App) SetupMenus() {
	a.recentMenu = fyne.NewMenu("")
	openRecent := fyne.NewMenuItem("Open Recent", nil)
	openRecent.ChildMenu = a.recentMenu
	a.refreshRecentMenu()

	exportMenu := fyne.NewMenu("",
		fyne.NewMenuItem("GCode...", a.exportGCode),
		fyne.NewMenuItem("GCode per Level...", a.exportGCodeLevels),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("PDF Report...", func() { a.exportFile("PDF Report", ".pdf", export.ExportPDF) }),
		fyne.NewMenuItem("Level Labels...", func() { a.exportFile("Level Labels", "_labels.pdf", export.ExportLabels) }),
		fyne.NewMenuItem("DXF Contours...", func() { a.exportFile("DXF Contours", ".dxf", export.ExportDXF) }),
		fyne.NewMenuItem("Excel Statistics...", func() { a.exportFile("Excel Statistics", ".xlsx", export.ExportXLSX) }),
	)
	exportItem := fyne.NewMenuItem("Export", nil)
	exportItem.ChildMenu = exportMenu

	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Mesh...", a.openMeshDialog),
		openRecent,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Import Boundary from DXF...", func() { a.importBoundaryDialog(".dxf") }),
		fyne.NewMenuItem("Import Boundary from CSV...", func() { a.importBoundaryDialog(".csv") }),
		fyne.NewMenuItem("Import Boundary from Excel...", func() { a.importBoundaryDialog(".xlsx") }),
		fyne.NewMenuItem("Clear Boundary", a.clearBoundary),
		fyne.NewMenuItemSeparator(),
		exportItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() {
			a.window.Close()
		}),
	)

	a.undoItem = fyne.NewMenuItem("Undo", a.undo)
	a.redoItem = fyne.NewMenuItem("Redo", a.redo)
	editMenu := fyne.NewMenu("Edit",
		a.undoItem,
		a.redoItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Advanced Settings...", a.showAdvancedSettingsDialog),
		fyne.NewMenuItem("Reset Settings to Defaults", a.resetSettings),
		fyne.NewMenuItem("Import / Export Settings...", a.showImportExportDialog),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Preferences...", a.showPreferencesDialog),
	)

	toolsMenu := fyne.NewMenu("Tools",
		fyne.NewMenuItem("Roughen", a.runRoughing),
		fyne.NewMenuItem("Compare Scenarios", a.runComparison),
		fyne.NewMenuItem("Check Rapid Moves", a.checkRapids),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("GCode Profiles...", a.showProfileManager),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", a.showAboutDialog),
	)

	a.mainMenu = fyne.NewMainMenu(fileMenu, editMenu, toolsMenu, helpMenu)
	a.window.SetMainMenu(a.mainMenu)
	a.refreshUndoItems()
}

func (a *App) showAboutDialog() {
	dialog.ShowInformation(
		"About SlabRough",
		"SlabRough: Z-level Roughing for Triangulated Parts\n\n"+
			"Slices a mesh at successive step-down levels, traces the\n"+
			"area a ball or bull nose tool can reach at each level and\n"+
			"writes linked contour toolpaths as GCode.\n\n"+
			"Version 1.0.0",
		a.window,
	)
}

// Build constructs the full UI and returns the root container.
func (a *App) Build() fyne.CanvasObject {
	a.statusLabel = widget.NewLabel("Open a mesh to begin.")

	previewTab := container.NewTabItem("Preview", a.buildPreviewPanel())
	levelsTab := container.NewTabItem("Levels", a.buildLevelsPanel())
	compareTab := container.NewTabItem("Compare", a.buildComparePanel())
	logTab := container.NewTabItem("Log", a.buildLogPanel())
	a.tabs = container.NewAppTabs(previewTab, levelsTab, compareTab, logTab)
	a.tabs.SetTabLocation(container.TabLocationTop)

	split := container.NewHSplit(a.buildSettingsPanel(), a.tabs)
	split.SetOffset(0.25)

	return container.NewBorder(
		a.buildToolbar(),
		container.NewHBox(a.statusLabel),
		nil, nil,
		split,
	)
}

func (a *App) buildToolbar() fyne.CanvasObject {
	return container.NewHBox(
		newIconButtonWithTooltip(theme.FolderOpenIcon(), "Open mesh", a.openMeshDialog),
		newIconButtonWithTooltip(theme.ContentPasteIcon(), "Import boundary from DXF", func() { a.importBoundaryDialog(".dxf") }),
		widget.NewSeparator(),
		newIconButtonWithTooltip(theme.ContentUndoIcon(), "Undo", a.undo),
		newIconButtonWithTooltip(theme.ContentRedoIcon(), "Redo", a.redo),
		widget.NewSeparator(),
		newIconButtonWithTooltip(theme.MediaPlayIcon(), "Roughen", a.runRoughing),
		newIconButtonWithTooltip(theme.ViewRefreshIcon(), "Compare scenarios", a.runComparison),
		newIconButtonWithTooltip(theme.WarningIcon(), "Check rapid moves", a.checkRapids),
		widget.NewSeparator(),
		newIconButtonWithTooltip(theme.DocumentSaveIcon(), "Export GCode", a.exportGCode),
		newIconButtonWithTooltip(theme.DocumentPrintIcon(), "Export PDF report", func() {
			a.exportFile("PDF Report", ".pdf", export.ExportPDF)
		}),
		layout.NewSpacer(),
		newIconButtonWithTooltip(theme.SettingsIcon(), "Advanced settings", a.showAdvancedSettingsDialog),
	)
}

// ─── Settings Panel ────────────────────────────────────────

func (a *App) buildSettingsPanel() fyne.CanvasObject {
	a.settingsPanel = container.NewVBox()
	a.refreshSettingsPanel()
	return container.NewVScroll(a.settingsPanel)
}

// refreshSettingsPanel rebuilds the quick settings entries from a.settings.
func (a *App) refreshSettingsPanel() {
	if a.settingsPanel == nil {
		return
	}
	s := &a.settings
	a.settingsPanel.RemoveAll()

	a.profileSelect = a.buildProfileSelector()

	a.settingsPanel.Add(widget.NewCard("Tool", "", container.NewGridWithColumns(2,
		widget.NewLabel("Corner Radius (mm)"), floatEntry(&s.CornerRadius),
		widget.NewLabel("Flat Radius (mm)"), floatEntry(&s.FlatRadius),
	)))
	a.settingsPanel.Add(widget.NewCard("Slicing", "", container.NewGridWithColumns(2,
		widget.NewLabel("Step-down (mm)"), floatEntry(&s.StepDown),
		widget.NewLabel("Weave Resolution (mm)"), floatEntry(&s.WeaveResolution),
		widget.NewLabel("Stock to Leave (mm)"), floatEntry(&s.StockToLeave),
	)))
	a.settingsPanel.Add(widget.NewCard("GCode", "", container.NewGridWithColumns(2,
		widget.NewLabel("Profile"), a.profileSelect,
		widget.NewLabel("Cut Feed (mm/min)"), floatEntry(&s.CutFeed),
		widget.NewLabel("Spindle (RPM)"), intEntry(&s.SpindleSpeed),
	)))

	roughBtn := widget.NewButtonWithIcon("Roughen", theme.MediaPlayIcon(), a.runRoughing)
	roughBtn.Importance = widget.HighImportance
	a.settingsPanel.Add(roughBtn)
	a.settingsPanel.Add(widget.NewButtonWithIcon("More Settings...", theme.SettingsIcon(), a.showAdvancedSettingsDialog))

	a.settingsPanel.Add(widget.NewSeparator())
	a.settingsPanel.Add(widget.NewLabelWithStyle("Inputs", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}))
	a.settingsPanel.Add(widget.NewLabel(a.inputSummary()))
	a.settingsPanel.Refresh()
}

func (a *App) inputSummary() string {
	var b strings.Builder
	if a.mesh == nil {
		b.WriteString("Mesh: none\n")
	} else {
		fmt.Fprintf(&b, "Mesh: %s\n%d triangles\nX %.1f .. %.1f\nY %.1f .. %.1f\nZ %.1f .. %.1f\n",
			filepath.Base(a.meshPath), len(a.mesh.Triangles),
			a.mesh.XRange.Lo, a.mesh.XRange.Hi, a.mesh.YRange.Lo, a.mesh.YRange.Hi,
			a.mesh.ZRange.Lo, a.mesh.ZRange.Hi)
	}
	if a.boundary == nil {
		b.WriteString("Boundary: part footprint")
	} else {
		fmt.Fprintf(&b, "Boundary: %s (%d paths)", a.boundaryName, a.boundary.NumPaths())
	}
	return b.String()
}

func (a *App) buildProfileSelector() *widget.Select {
	selector := widget.NewSelect(model.GetProfileNames(), func(selected string) {
		a.settings.GCodeProfile = selected
	})
	selector.SetSelected(a.settings.GCodeProfile)
	return selector
}

// refreshProfileSelector reloads the profile names after the profile
// manager changed them.
func (a *App) refreshProfileSelector() {
	if a.profileSelect == nil {
		return
	}
	a.profileSelect.Options = model.GetProfileNames()
	a.profileSelect.SetSelected(model.GetProfile(a.settings.GCodeProfile).Name)
	a.profileSelect.Refresh()
}

// ─── Preview Panel ─────────────────────────────────────────

func (a *App) buildPreviewPanel() fyne.CanvasObject {
	a.preview = widgets.NewContourPreview(nil, previewWidth, previewHeight)

	a.levelSlider = widget.NewSlider(0, 1)
	a.levelSlider.Step = 1
	a.levelSlider.OnChanged = func(v float64) {
		a.preview.SetLevel(int(v))
		a.updateMoves()
	}

	ghost := widget.NewCheck("Other levels", a.preview.SetShowGhost)
	ghost.SetChecked(true)
	moves := widget.NewCheck("Rapids and plunges", func(b bool) {
		a.showMoves = b
		a.updateMoves()
	})

	controls := container.NewBorder(nil, nil,
		widget.NewLabel("Level"),
		container.NewHBox(ghost, moves),
		a.levelSlider,
	)
	return container.NewBorder(nil, controls, nil, nil, container.NewScroll(a.preview))
}

// updateMoves overlays the selected level's program on the preview.
func (a *App) updateMoves() {
	if !a.showMoves || a.result == nil || len(a.result.Levels) == 0 {
		a.preview.SetMoves(nil)
		return
	}
	codes := gcode.New(a.result.Settings).GenerateLevels(a.result)
	a.preview.SetMoves(gcode.ParseGCode(codes[a.preview.Level()]))
}

// ─── Levels Panel ──────────────────────────────────────────

var levelColumns = []string{"Level", "Z (mm)", "Contours", "Points", "Length (mm)", "Area (mm²)", "Mean (mm)", "Longest (mm)"}

func (a *App) buildLevelsPanel() fyne.CanvasObject {
	a.levelTable = widget.NewTable(
		func() (int, int) { return len(a.levelSums) + 1, len(levelColumns) },
		func() fyne.CanvasObject { return widget.NewLabel("000000.000") },
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			label := obj.(*widget.Label)
			if id.Row == 0 {
				label.TextStyle = fyne.TextStyle{Bold: true}
				label.SetText(levelColumns[id.Col])
				return
			}
			label.TextStyle = fyne.TextStyle{}
			label.SetText(levelCell(a.levelSums[id.Row-1], id.Col))
		},
	)
	a.levelTable.OnSelected = func(id widget.TableCellID) {
		if id.Row > 0 && a.result != nil {
			a.levelSlider.SetValue(float64(id.Row - 1))
			a.tabs.SelectIndex(0)
		}
	}
	for i := range levelColumns {
		a.levelTable.SetColumnWidth(i, 100)
	}
	return a.levelTable
}

func levelCell(s export.LevelSummary, col int) string {
	switch col {
	case 0:
		return fmt.Sprintf("%d", s.Index)
	case 1:
		return fmt.Sprintf("%.3f", s.Z)
	case 2:
		return fmt.Sprintf("%d", s.Contours)
	case 3:
		return fmt.Sprintf("%d", s.Points)
	case 4:
		return fmt.Sprintf("%.1f", s.Length)
	case 5:
		return fmt.Sprintf("%.1f", s.Area)
	case 6:
		return fmt.Sprintf("%.1f", s.MeanContour)
	default:
		return fmt.Sprintf("%.1f", s.LongestContour)
	}
}

func (a *App) buildLogPanel() fyne.CanvasObject {
	a.logEntry = widget.NewMultiLineEntry()
	a.logEntry.Wrapping = fyne.TextWrapOff
	a.logEntry.TextStyle = fyne.TextStyle{Monospace: true}
	clearBtn := widget.NewButtonWithIcon("Clear", theme.ContentClearIcon(), func() { a.logEntry.SetText("") })
	return container.NewBorder(nil, container.NewHBox(layout.NewSpacer(), clearBtn), nil, nil, a.logEntry)
}

// ─── Undo / Redo ───────────────────────────────────────────

func (a *App) snapshot(label string) Snapshot {
	return MakeSnapshot(a.settings, a.boundary, label)
}

// commit records an undo point when the inputs changed since the last one.
// Settings entries edit a.settings in place, so edits are folded into the
// next commit rather than recorded per keystroke.
func (a *App) commit(label string) {
	if a.settings == a.committed.Settings && a.boundary == a.committed.Boundary {
		return
	}
	prev := a.committed
	prev.Label = label
	a.history.Push(prev)
	a.committed = Snapshot{Settings: a.settings, Boundary: a.boundary}
	a.refreshUndoItems()
}

func (a *App) restore(s Snapshot) {
	a.settings = s.Settings
	a.boundary = s.Boundary
	if a.boundary == nil {
		a.boundaryName = ""
	}
	a.committed = Snapshot{Settings: a.settings, Boundary: a.boundary}
	a.refreshSettingsPanel()
	a.refreshUndoItems()
}

func (a *App) undo() {
	s, ok := a.history.Undo(Snapshot{Settings: a.settings, Boundary: a.boundary, Label: a.history.UndoLabel()})
	if !ok {
		return
	}
	a.restore(s)
	a.setStatus("Undid " + s.Label)
}

func (a *App) redo() {
	s, ok := a.history.Redo(Snapshot{Settings: a.settings, Boundary: a.boundary, Label: a.history.RedoLabel()})
	if !ok {
		return
	}
	a.restore(s)
	a.setStatus("Redid " + s.Label)
}

func (a *App) refreshUndoItems() {
	if a.undoItem == nil {
		return
	}
	a.undoItem.Disabled = !a.history.CanUndo()
	a.undoItem.Label = "Undo"
	if l := a.history.UndoLabel(); l != "" {
		a.undoItem.Label = "Undo " + l
	}
	a.redoItem.Disabled = !a.history.CanRedo()
	if a.mainMenu != nil {
		a.mainMenu.Refresh()
	}
}

func (a *App) resetSettings() {
	a.settings = model.DefaultSettings()
	a.config.ApplyToSettings(&a.settings)
	a.commit("Reset Settings")
	a.refreshSettingsPanel()
}

func (a *App) setStatus(text string) {
	if a.statusLabel != nil {
		a.statusLabel.SetText(text)
	}
}
