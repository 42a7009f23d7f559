package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/SlabRough/internal/model"
	"github.com/piwi3910/SlabRough/internal/project"
)

// showPreferencesDialog edits the application preferences and the default
// settings new sessions start from.
func (a *App) showPreferencesDialog() {
	cfg := a.config

	themeSelect := widget.NewSelect([]string{"system", "light", "dark"}, func(selected string) {
		cfg.Theme = selected
	})
	themeSelect.SetSelected(cfg.Theme)

	outputEntry := widget.NewEntry()
	outputEntry.SetText(cfg.OutputDir)
	outputEntry.SetPlaceHolder("next to the mesh")
	outputEntry.OnChanged = func(text string) { cfg.OutputDir = text }
	browseBtn := widget.NewButtonWithIcon("", theme.FolderOpenIcon(), func() {
		dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
			if err != nil || uri == nil {
				return
			}
			outputEntry.SetText(uri.Path())
		}, a.window)
	})

	profileSelect := widget.NewSelect(model.GetProfileNames(), func(selected string) {
		cfg.Defaults.GCodeProfile = selected
	})
	profileSelect.SetSelected(cfg.Defaults.GCodeProfile)

	general := widget.NewCard("General", "", container.NewGridWithColumns(2,
		widget.NewLabel("Theme"), themeSelect,
		widget.NewLabel("Output Directory"), container.NewBorder(nil, nil, nil, browseBtn, outputEntry),
	))

	useCurrent := widget.NewButton("Use Current Settings as Defaults", func() {
		cfg.Defaults = a.settings
		a.savePreferences(cfg)
	})

	cards := append([]fyne.CanvasObject{general}, settingsCards(&cfg.Defaults, profileSelect)...)
	cards = append(cards, useCurrent)

	d := dialog.NewCustomConfirm("Preferences", "Save", "Cancel",
		container.NewVScroll(container.NewVBox(cards...)),
		func(ok bool) {
			if !ok {
				return
			}
			if err := cfg.Defaults.Validate(); err != nil {
				dialog.ShowError(fmt.Errorf("default settings: %w", err), a.window)
				return
			}
			a.savePreferences(cfg)
		},
		a.window,
	)
	d.Resize(fyne.NewSize(560, 680))
	d.Show()
}

// savePreferences applies cfg, including its theme, and writes it to disk.
func (a *App) savePreferences(cfg model.AppConfig) {
	a.config = cfg
	if a.theme != nil {
		a.theme.SetThemeName(cfg.Theme)
		fyne.CurrentApp().Settings().SetTheme(a.theme)
	}
	if err := a.saveConfig(); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save preferences: %w", err), a.window)
		return
	}
	dialog.ShowInformation("Preferences Saved", "Application preferences have been saved.", a.window)
}

// showImportExportDialog saves the current settings to a JSON file for the
// command line tool or another machine, or loads them back.
func (a *App) showImportExportDialog() {
	var d dialog.Dialog

	exportBtn := widget.NewButton("Export Settings...", func() {
		fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
			if err != nil || writer == nil {
				return
			}
			path := writer.URI().Path()
			writer.Close()
			if err := project.SaveSettings(path, a.settings); err != nil {
				dialog.ShowError(err, a.window)
				return
			}
			dialog.ShowInformation("Export Complete",
				fmt.Sprintf("Settings exported to:\n%s", path), a.window)
		}, a.window)
		fd.SetFileName(a.exportName("_settings.json"))
		a.setDialogLocation(fd)
		fd.Show()
	})

	importBtn := widget.NewButton("Import Settings...", func() {
		fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
			if err != nil || reader == nil {
				return
			}
			path := reader.URI().Path()
			reader.Close()
			s, err := project.LoadSettings(path)
			if err != nil {
				dialog.ShowError(err, a.window)
				return
			}
			a.settings = s
			a.commit("Import Settings")
			a.refreshSettingsPanel()
			if d != nil {
				d.Hide()
			}
		}, a.window)
		fd.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
		a.setDialogLocation(fd)
		fd.Show()
	})

	content := container.NewVBox(
		widget.NewLabel("Export the current settings to a JSON file, for example to run\nthe same job with slabrough -settings, or import a saved file."),
		widget.NewSeparator(),
		exportBtn,
		widget.NewSeparator(),
		importBtn,
	)

	d = dialog.NewCustom("Import / Export Settings", "Close", content, a.window)
	d.Resize(fyne.NewSize(450, 250))
	d.Show()
}

// saveConfig persists the current app config to disk.
func (a *App) saveConfig() error {
	return project.SaveAppConfig(project.DefaultConfigPath(), a.config)
}
