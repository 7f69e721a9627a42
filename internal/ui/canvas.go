package ui

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/cellbuf"
)

// Canvas composes lipgloss-rendered blocks into a cellbuf screen so
// overlays can sit on top of the chart frame.
type Canvas struct {
	screen *cellbuf.Screen
	writer *cellbuf.ScreenWriter
	width  int
	height int
}

func NewCanvas(width, height int) *Canvas {
	width, height = max(width, 1), max(height, 1)
	screen := cellbuf.NewScreen(io.Discard, width, height, &cellbuf.ScreenOptions{
		ShowCursor: false,
		AltScreen:  false,
	})
	return &Canvas{
		screen: screen,
		writer: cellbuf.NewScreenWriter(screen),
		width:  width,
		height: height,
	}
}

// Fill paints the whole canvas with bg.
func (c *Canvas) Fill(bg lipgloss.TerminalColor) {
	fill := lipgloss.NewStyle().
		Background(bg).
		Width(c.width).
		Height(c.height).
		Render("")
	c.DrawStringAt(0, 0, fill)
}

// DrawStringAt writes a block starting at x,y; every line starts at x.
func (c *Canvas) DrawStringAt(x, y int, content string) {
	c.drawBlockAt(x, y, splitLines(content))
}

// centerOverlay centres a block between the top and bottom margins.
func (c *Canvas) centerOverlay(overlay string, topMargin, bottomMargin int) {
	lines := splitLines(overlay)
	if len(lines) == 0 {
		return
	}
	h := len(lines)
	w := min(maxLineWidth(lines), c.width)
	topMargin, bottomMargin = max(topMargin, 0), max(bottomMargin, 0)

	usable := max(c.height-topMargin-bottomMargin, h)
	y := topMargin + (usable-h)/2
	y = max(min(y, c.height-bottomMargin-h), topMargin, 0)
	c.drawBlockAt(max((c.width-w)/2, 0), y, lines)
}

// bottomRightOverlay anchors a block to the bottom-right corner.
func (c *Canvas) bottomRightOverlay(overlay string, padding int) {
	lines := splitLines(overlay)
	if len(lines) == 0 {
		return
	}
	padding = max(padding, 0)
	y := max(c.height-len(lines)-padding, 0)
	x := max(c.width-maxLineWidth(lines)-padding, 0)
	c.drawBlockAt(x, y, lines)
}

func (c *Canvas) drawBlockAt(x, y int, lines []string) {
	x, y = max(x, 0), max(y, 0)
	for i, line := range lines {
		row := y + i
		if row >= c.height {
			break
		}
		if line == "" {
			continue
		}
		c.writer.PrintCropAt(x, row, line, "")
	}
}

// Render returns the composed frame as newline separated lines.
func (c *Canvas) Render() string {
	raw := cellbuf.Render(c.screen)
	_ = c.screen.Close()
	return strings.ReplaceAll(raw, "\r\n", "\n")
}

func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
}

func maxLineWidth(lines []string) int {
	w := 0
	for _, l := range lines {
		w = max(w, lipgloss.Width(l))
	}
	return w
}
