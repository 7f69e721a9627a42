package ui

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"gantry/internal/chart"
	appErrors "gantry/internal/errors"
	"gantry/internal/render"

	tea "github.com/charmbracelet/bubbletea"
)

// ExportSVG writes the chart with its swimlane column to w. The chart layer
// is shifted right of the swimlanes only for the duration of the write.
func ExportSVG(w io.Writer, scene *render.Scene, c *chart.Chart) error {
	layers := c.Layers()
	laneWidth := c.SwimlaneWidth()
	width, height := c.Size()

	scene.Set(layers.Chart, render.X(laneWidth))
	defer scene.Set(layers.Chart, render.X(0))
	return render.WriteSVG(w, scene, render.Root, laneWidth+width, height)
}

// ExportSVGFile writes the chart as an SVG file, creating parent
// directories as needed.
func ExportSVGFile(path string, scene *render.Scene, c *chart.Chart) error {
	var buf bytes.Buffer
	if err := ExportSVG(&buf, scene, c); err != nil {
		return appErrors.New(appErrors.CodeUnknown, "render svg", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return appErrors.New(appErrors.CodeUnknown, "create export directory", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return appErrors.New(appErrors.CodeUnknown, "write svg", err)
	}
	return nil
}

func exportCmd(path string, scene *render.Scene, c *chart.Chart) tea.Cmd {
	// rendering reads the scene, so it happens before the command returns
	var buf bytes.Buffer
	err := ExportSVG(&buf, scene, c)
	data := buf.Bytes()
	return func() tea.Msg {
		if err != nil {
			return exportedMsg{path: path, err: err}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return exportedMsg{path: path, err: appErrors.New(appErrors.CodeUnknown, "write svg", err)}
		}
		return exportedMsg{path: path}
	}
}
