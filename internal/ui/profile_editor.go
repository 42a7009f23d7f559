package ui

import (
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"

	"github.com/piwi3910/SlabRough/internal/engine"
	"github.com/piwi3910/SlabRough/internal/gcode"
	"github.com/piwi3910/SlabRough/internal/model"
	"github.com/piwi3910/SlabRough/internal/project"
	"github.com/piwi3910/SlabRough/internal/toolpath"
)

const noSelection = "Select a profile to view details."

// showProfileManager opens a window listing the built-in and custom GCode
// profiles with actions to create, duplicate, import, export and delete.
func (a *App) showProfileManager() {
	w := fyne.CurrentApp().NewWindow("GCode Profile Manager")
	w.Resize(fyne.NewSize(720, 520))

	profiles := model.AllProfiles()
	selectedIdx := -1
	detail := container.NewVBox(widget.NewLabel(noSelection))

	var list *widget.List
	list = widget.NewList(
		func() int { return len(profiles) },
		func() fyne.CanvasObject {
			return container.NewHBox(
				widget.NewIcon(theme.DocumentIcon()),
				widget.NewLabel("Profile Name"),
				layout.NewSpacer(),
				widget.NewLabel("(built-in)"),
			)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			box := obj.(*fyne.Container)
			p := profiles[id]
			box.Objects[1].(*widget.Label).SetText(p.Name)
			tag := "(custom)"
			if p.IsBuiltIn {
				tag = "(built-in)"
			}
			box.Objects[3].(*widget.Label).SetText(tag)
		},
	)

	// reload re-reads the registry after any change and clears the selection.
	reload := func() {
		profiles = model.AllProfiles()
		selectedIdx = -1
		list.UnselectAll()
		list.Refresh()
		detail.RemoveAll()
		detail.Add(widget.NewLabel(noSelection))
		detail.Refresh()
		a.refreshProfileSelector()
	}

	list.OnSelected = func(id widget.ListItemID) {
		selectedIdx = id
		a.showProfileDetail(detail, profiles[id], w, reload)
	}

	selected := func(action string) (model.GCodeProfile, bool) {
		if selectedIdx < 0 || selectedIdx >= len(profiles) {
			dialog.ShowInformation("No Selection", "Select a profile to "+action+".", w)
			return model.GCodeProfile{}, false
		}
		return profiles[selectedIdx], true
	}

	newBtn := widget.NewButtonWithIcon("New", theme.ContentAddIcon(), func() {
		a.showNewProfileDialog(w, reload)
	})
	duplicateBtn := widget.NewButtonWithIcon("Duplicate", theme.ContentCopyIcon(), func() {
		if p, ok := selected("duplicate"); ok {
			a.duplicateProfile(p, w, reload)
		}
	})
	importBtn := widget.NewButtonWithIcon("Import", theme.FolderOpenIcon(), func() {
		a.importProfileDialog(w, reload)
	})
	exportBtn := widget.NewButtonWithIcon("Export", theme.DocumentSaveIcon(), func() {
		if p, ok := selected("export"); ok {
			a.exportProfileDialog(p, w)
		}
	})
	deleteBtn := widget.NewButtonWithIcon("Delete", theme.DeleteIcon(), func() {
		p, ok := selected("delete")
		if !ok {
			return
		}
		if p.IsBuiltIn {
			dialog.ShowInformation("Cannot Delete", "Built-in profiles cannot be deleted.", w)
			return
		}
		dialog.ShowConfirm("Delete Profile", fmt.Sprintf("Delete custom profile %q?", p.Name),
			func(ok bool) {
				if !ok {
					return
				}
				if err := model.RemoveCustomProfile(p.Name); err != nil {
					dialog.ShowError(err, w)
					return
				}
				a.persistCustomProfiles(w)
				reload()
			}, w)
	})

	listPanel := container.NewBorder(
		widget.NewLabelWithStyle("Profiles", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(newBtn, duplicateBtn, importBtn, exportBtn, deleteBtn),
		nil, nil,
		list,
	)
	detailPanel := container.NewBorder(
		widget.NewLabelWithStyle("Profile Details", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		nil, nil, nil,
		container.NewVScroll(detail),
	)

	split := container.NewHSplit(listPanel, detailPanel)
	split.SetOffset(0.35)
	w.SetContent(split)
	w.Show()
}

// showProfileDetail fills c with the profile's fields and a sample program.
func (a *App) showProfileDetail(c *fyne.Container, p model.GCodeProfile, w fyne.Window, onChanged func()) {
	c.RemoveAll()

	bold := fyne.TextStyle{Bold: true}
	info := container.NewVBox(
		widget.NewLabelWithStyle(p.Name, fyne.TextAlignLeading, bold),
		widget.NewLabel(p.Description),
		widget.NewSeparator(),
		container.NewGridWithColumns(2,
			widget.NewLabel("Units:"), widget.NewLabel(p.Units),
			widget.NewLabel("Decimal Places:"), widget.NewLabel(strconv.Itoa(p.DecimalPlaces)),
			widget.NewLabel("Rapid / Feed:"), widget.NewLabel(p.RapidMove+" / "+p.FeedMove),
			widget.NewLabel("Spindle Start:"), widget.NewLabel(p.SpindleStart),
			widget.NewLabel("Spindle Stop:"), widget.NewLabel(p.SpindleStop),
			widget.NewLabel("Home All:"), widget.NewLabel(p.HomeAll),
			widget.NewLabel("Comments:"), widget.NewLabel(fmt.Sprintf("%q ... %q", p.CommentPrefix, p.CommentSuffix)),
		),
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Sample Program", fyne.TextAlignLeading, bold),
		monospaceLabel(sampleProgram(a.settings, p)),
	)

	if p.IsBuiltIn {
		c.Add(widget.NewLabel("Built-in profiles are read-only. Duplicate to customize."))
	} else {
		c.Add(widget.NewButtonWithIcon("Edit Profile", theme.DocumentCreateIcon(), func() {
			a.showEditProfileDialog(p, w, onChanged)
		}))
	}
	c.Add(info)
	c.Refresh()
}

func monospaceLabel(text string) *widget.Label {
	l := widget.NewLabel(text)
	l.TextStyle = fyne.TextStyle{Monospace: true}
	return l
}

// sampleProgram runs the generator over a single 40 x 20 contour so a
// profile can be judged by its actual output.
func sampleProgram(s model.Settings, p model.GCodeProfile) string {
	level := toolpath.NewSeries(-5)
	level.Append([]r2.Point{{X: 0, Y: 0}, {X: 40, Y: 0}, {X: 40, Y: 20}, {X: 0, Y: 20}, {X: 0, Y: 0}})
	res := &engine.Result{
		Settings: s,
		XRange:   r1.Interval{Lo: 0, Hi: 40},
		YRange:   r1.Interval{Lo: 0, Hi: 20},
		TopZ:     0,
		RetractZ: s.RetractMargin,
		Levels:   []*toolpath.Series{level},
		Stats:    []engine.LevelStats{{Z: -5, Contours: 1, Points: 5, Length: 120}},
	}
	return gcode.NewWithProfile(s, p).Generate(res)
}

// showNewProfileDialog creates a custom profile from a chosen base.
func (a *App) showNewProfileDialog(w fyne.Window, onCreated func()) {
	nameEntry := widget.NewEntry()
	nameEntry.SetPlaceHolder("My Custom Profile")
	baseSelect := widget.NewSelect(model.GetProfileNames(), nil)
	baseSelect.SetSelected(model.GetProfile("").Name)

	form := dialog.NewForm("New Custom Profile", "Create", "Cancel",
		[]*widget.FormItem{
			widget.NewFormItem("Profile Name", nameEntry),
			widget.NewFormItem("Based On", baseSelect),
		},
		func(ok bool) {
			if !ok {
				return
			}
			name := strings.TrimSpace(nameEntry.Text)
			if name == "" {
				dialog.ShowError(model.ErrProfileNameEmpty, w)
				return
			}
			if err := model.AddCustomProfile(model.NewCustomProfile(name, baseSelect.Selected)); err != nil {
				dialog.ShowError(err, w)
				return
			}
			a.persistCustomProfiles(w)
			onCreated()
		},
		w,
	)
	form.Resize(fyne.NewSize(400, 180))
	form.Show()
}

// duplicateProfile copies source under a new name.
func (a *App) duplicateProfile(source model.GCodeProfile, w fyne.Window, onCreated func()) {
	nameEntry := widget.NewEntry()
	nameEntry.SetText(source.Name + " (Copy)")

	form := dialog.NewForm("Duplicate Profile", "Create", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("New Profile Name", nameEntry)},
		func(ok bool) {
			if !ok {
				return
			}
			name := strings.TrimSpace(nameEntry.Text)
			if name == "" {
				dialog.ShowError(model.ErrProfileNameEmpty, w)
				return
			}
			dup := model.NewCustomProfile(name, source.Name)
			dup.Description = "Copy of " + source.Name
			if err := model.AddCustomProfile(dup); err != nil {
				dialog.ShowError(err, w)
				return
			}
			a.persistCustomProfiles(w)
			onCreated()
		},
		w,
	)
	form.Resize(fyne.NewSize(400, 150))
	form.Show()
}

// showEditProfileDialog edits a custom profile in its own window, with a
// live sample program.
func (a *App) showEditProfileDialog(p model.GCodeProfile, w fyne.Window, onSaved func()) {
	entry := func(text string) *widget.Entry {
		e := widget.NewEntry()
		e.SetText(text)
		return e
	}
	codeEntry := func(lines []string) *widget.Entry {
		e := widget.NewMultiLineEntry()
		e.SetText(strings.Join(lines, "\n"))
		e.SetMinRowsVisible(4)
		return e
	}

	nameEntry := entry(p.Name)
	descEntry := entry(p.Description)
	unitsSelect := widget.NewSelect([]string{"mm", "inches"}, nil)
	unitsSelect.SetSelected(p.Units)
	decimalEntry := entry(strconv.Itoa(p.DecimalPlaces))
	rapidEntry := entry(p.RapidMove)
	feedEntry := entry(p.FeedMove)
	spindleStartEntry := entry(p.SpindleStart)
	spindleStopEntry := entry(p.SpindleStop)
	homeAllEntry := entry(p.HomeAll)
	commentPrefixEntry := entry(p.CommentPrefix)
	commentSuffixEntry := entry(p.CommentSuffix)
	startCodeEntry := codeEntry(p.StartCode)
	endCodeEntry := codeEntry(p.EndCode)

	// collect reads the form; decimals is validated separately.
	collect := func() (model.GCodeProfile, error) {
		decimals, err := strconv.Atoi(decimalEntry.Text)
		if err != nil || decimals < 0 || decimals > 10 {
			return model.GCodeProfile{}, fmt.Errorf("decimal places must be a number between 0 and 10")
		}
		return model.GCodeProfile{
			Name:          strings.TrimSpace(nameEntry.Text),
			Description:   descEntry.Text,
			Units:         unitsSelect.Selected,
			StartCode:     splitLines(startCodeEntry.Text),
			SpindleStart:  spindleStartEntry.Text,
			SpindleStop:   spindleStopEntry.Text,
			HomeAll:       homeAllEntry.Text,
			RapidMove:     rapidEntry.Text,
			FeedMove:      feedEntry.Text,
			EndCode:       splitLines(endCodeEntry.Text),
			CommentPrefix: commentPrefixEntry.Text,
			CommentSuffix: commentSuffixEntry.Text,
			DecimalPlaces: decimals,
		}, nil
	}

	preview := widget.NewMultiLineEntry()
	preview.TextStyle = fyne.TextStyle{Monospace: true}
	preview.SetMinRowsVisible(14)
	updatePreview := func() {
		updated, err := collect()
		if err != nil {
			preview.SetText(err.Error())
			return
		}
		preview.SetText(sampleProgram(a.settings, updated))
	}
	updatePreview()

	tabs := container.NewAppTabs(
		container.NewTabItem("General", container.NewGridWithColumns(2,
			widget.NewLabel("Name"), nameEntry,
			widget.NewLabel("Description"), descEntry,
			widget.NewLabel("Units"), unitsSelect,
			widget.NewLabel("Decimal Places"), decimalEntry,
		)),
		container.NewTabItem("Motion / Spindle", container.NewGridWithColumns(2,
			widget.NewLabel("Rapid Move Command"), rapidEntry,
			widget.NewLabel("Feed Move Command"), feedEntry,
			widget.NewLabel("Spindle Start (use %d for RPM)"), spindleStartEntry,
			widget.NewLabel("Spindle Stop"), spindleStopEntry,
			widget.NewLabel("Home All Axes"), homeAllEntry,
		)),
		container.NewTabItem("Comments", container.NewGridWithColumns(2,
			widget.NewLabel("Comment Prefix"), commentPrefixEntry,
			widget.NewLabel("Comment Suffix"), commentSuffixEntry,
		)),
		container.NewTabItem("Start/End Code", container.NewVBox(
			widget.NewLabelWithStyle("Start Code (one command per line)", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			startCodeEntry,
			widget.NewSeparator(),
			widget.NewLabelWithStyle("End Code, [SafeZ] is the retract height", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			endCodeEntry,
		)),
		container.NewTabItem("Preview", container.NewBorder(
			widget.NewButtonWithIcon("Refresh Preview", theme.ViewRefreshIcon(), updatePreview),
			nil, nil, nil, preview,
		)),
	)

	editWindow := fyne.CurrentApp().NewWindow("Edit Profile: " + p.Name)
	saveBtn := widget.NewButtonWithIcon("Save", theme.DocumentSaveIcon(), func() {
		updated, err := collect()
		if err != nil {
			dialog.ShowError(err, editWindow)
			return
		}
		if updated.Name == "" {
			dialog.ShowError(model.ErrProfileNameEmpty, editWindow)
			return
		}
		if err := model.AddCustomProfile(updated); err != nil {
			dialog.ShowError(err, editWindow)
			return
		}
		// a rename leaves the old entry behind
		if updated.Name != p.Name {
			_ = model.RemoveCustomProfile(p.Name)
			if a.settings.GCodeProfile == p.Name {
				a.settings.GCodeProfile = updated.Name
			}
		}
		a.persistCustomProfiles(w)
		onSaved()
		editWindow.Close()
	})
	saveBtn.Importance = widget.HighImportance

	editWindow.SetContent(container.NewBorder(
		nil,
		container.NewHBox(layout.NewSpacer(), saveBtn),
		nil, nil,
		tabs,
	))
	editWindow.Resize(fyne.NewSize(620, 520))
	editWindow.Show()
}

// importProfileDialog adds a profile exported from another installation.
func (a *App) importProfileDialog(w fyne.Window, onImported func()) {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()

		profile, err := project.ImportProfile(path)
		if err != nil {
			dialog.ShowError(fmt.Errorf("failed to import profile: %w", err), w)
			return
		}
		if err := model.AddCustomProfile(profile); err != nil {
			dialog.ShowError(err, w)
			return
		}
		a.persistCustomProfiles(w)
		onImported()
		dialog.ShowInformation("Import Complete",
			fmt.Sprintf("Profile %q imported successfully.", profile.Name), w)
	}, w)
}

func (a *App) exportProfileDialog(p model.GCodeProfile, w fyne.Window) {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()

		if err := project.ExportProfile(path, p); err != nil {
			dialog.ShowError(fmt.Errorf("failed to export profile: %w", err), w)
			return
		}
		dialog.ShowInformation("Export Complete",
			fmt.Sprintf("Profile %q exported successfully.", p.Name), w)
	}, w)
	d.SetFileName(strings.ReplaceAll(strings.ToLower(p.Name), " ", "_") + "_profile.json")
	d.Show()
}

// persistCustomProfiles saves the current custom profiles to disk.
func (a *App) persistCustomProfiles(w fyne.Window) {
	if err := project.SaveCustomProfiles(project.DefaultProfilesPath(), model.CustomProfiles); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save profiles: %w", err), w)
	}
}

// splitLines splits a multiline string into trimmed, non-empty lines.
func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
