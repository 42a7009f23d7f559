// SlabRough Viewer: interactive roughing of triangulated parts
//
// Opens a mesh, roughs it with adjustable tool and slicing settings and
// previews the contours level by level before exporting GCode and reports.
//
// Build:
//   go build -o slabrough-view ./cmd/slabrough-view
//
// Cross-compile:
//   GOOS=windows GOARCH=amd64 go build -o slabrough-view.exe ./cmd/slabrough-view
//
// Using fyne-cross (recommended for proper packaging):
//   go install github.com/fyne-io/fyne-cross@latest
//   fyne-cross windows -arch=amd64
//   fyne-cross darwin  -arch=amd64,arm64

package main

import (
	"flag"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	fynetooltip "github.com/dweymouth/fyne-tooltip"

	"github.com/piwi3910/SlabRough/internal/ui"
)

func main() {
	meshPath := flag.String("mesh", "", "mesh to open at startup")
	flag.Parse()

	application := app.NewWithID("com.piwi3910.slabrough")
	th := ui.NewSlabRoughTheme()
	application.Settings().SetTheme(th)

	window := application.NewWindow("SlabRough Viewer")

	appUI := ui.NewApp(window, th)
	appUI.SetupMenus()
	window.SetContent(fynetooltip.AddWindowToolTipLayer(appUI.Build(), window.Canvas()))
	window.Resize(fyne.NewSize(1400, 860))
	window.CenterOnScreen()

	if *meshPath != "" {
		appUI.OpenMesh(*meshPath)
	}
	window.ShowAndRun()
}
