package ui

import (
	"math"
	"strings"

	"gantry/internal/render"
	"gantry/internal/ui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Cell geometry of the terminal painter in chart units. One cell holds
// one character of measured text.
const (
	CellWidth  = float64(render.CharWidth)
	CellHeight = 20.0
)

// Window is the visible part of a layer in chart units and the cell grid
// it maps to. Rows whose centre lies above Pin ignore Top, so the date
// header stays put while the rows scroll under it.
type Window struct {
	Left, Top  float64
	Cols, Rows int
	Pin        float64
}

// X is the chart x at the centre of col.
func (w Window) X(col int) float64 {
	return w.Left + (float64(col)+0.5)*CellWidth
}

// Y is the chart y at the centre of row.
func (w Window) Y(row int) float64 {
	y := (float64(row) + 0.5) * CellHeight
	if y >= w.Pin {
		y += w.Top
	}
	return y
}

func (w Window) colOf(x float64) int {
	return int(math.Floor((x - w.Left) / CellWidth))
}

// rowOf is the row showing chart y, or -1 when y is scrolled under the
// pinned band.
func (w Window) rowOf(y float64) int {
	if y < w.Pin {
		return int(math.Floor(y / CellHeight))
	}
	r := int(math.Floor((y - w.Top) / CellHeight))
	if (float64(r)+0.5)*CellHeight < w.Pin {
		return -1
	}
	return r
}

// cols is the half-open column span whose centres lie in [x1, x2). Spans
// narrower than a cell still get the cell containing x1.
func (w Window) cols(x1, x2 float64) (int, int) {
	a := int(math.Ceil((x1-w.Left)/CellWidth - 0.5))
	b := int(math.Ceil((x2-w.Left)/CellWidth - 0.5))
	if b <= a {
		a = w.colOf(x1)
		b = a + 1
	}
	return a, b
}

// rows is the half-open row span whose centres lie in [y1, y2).
func (w Window) rows(y1, y2 float64) (int, int) {
	first, last := -1, -1
	for r := range w.Rows {
		y := w.Y(r)
		if y >= y1 && y < y2 {
			if first < 0 {
				first = r
			}
			last = r
		}
	}
	if first >= 0 {
		return first, last + 1
	}
	if r := w.rowOf((y1 + y2) / 2); r >= 0 {
		return r, r + 1
	}
	return 0, 0
}

type cell struct {
	ch   rune
	fg   lipgloss.TerminalColor
	bg   lipgloss.TerminalColor
	bold bool
}

// Frame is a grid of styled cells.
type Frame struct {
	Cols, Rows int
	cells      []cell
}

// NewFrame returns a frame of blank cells on bg.
func NewFrame(cols, rows int, bg lipgloss.TerminalColor) *Frame {
	cols, rows = max(cols, 0), max(rows, 0)
	f := &Frame{Cols: cols, Rows: rows, cells: make([]cell, cols*rows)}
	for i := range f.cells {
		f.cells[i] = cell{ch: ' ', bg: bg}
	}
	return f
}

func (f *Frame) at(col, row int) *cell {
	if col < 0 || row < 0 || col >= f.Cols || row >= f.Rows {
		return nil
	}
	return &f.cells[row*f.Cols+col]
}

// Rune returns the character at col, row, or zero when out of range.
func (f *Frame) Rune(col, row int) rune {
	if c := f.at(col, row); c != nil {
		return c.ch
	}
	return 0
}

// Row returns the characters of one row without styling.
func (f *Frame) Row(row int) string {
	if row < 0 || row >= f.Rows {
		return ""
	}
	var b strings.Builder
	for _, c := range f.cells[row*f.Cols : (row+1)*f.Cols] {
		b.WriteRune(c.ch)
	}
	return b.String()
}

// Lines renders each row with runs of equal style merged.
func (f *Frame) Lines() []string {
	out := make([]string, f.Rows)
	for r := range f.Rows {
		var b strings.Builder
		row := f.cells[r*f.Cols : (r+1)*f.Cols]
		for start := 0; start < len(row); {
			end := start + 1
			for end < len(row) && sameStyle(row[start], row[end]) {
				end++
			}
			var run strings.Builder
			for _, c := range row[start:end] {
				run.WriteRune(c.ch)
			}
			style := lipgloss.NewStyle().Bold(row[start].bold)
			if row[start].fg != nil {
				style = style.Foreground(row[start].fg)
			}
			if row[start].bg != nil {
				style = style.Background(row[start].bg)
			}
			b.WriteString(style.Render(run.String()))
			start = end
		}
		out[r] = b.String()
	}
	return out
}

func (f *Frame) String() string {
	return strings.Join(f.Lines(), "\n")
}

func sameStyle(a, b cell) bool {
	return a.fg == b.fg && a.bg == b.bg && a.bold == b.bold
}

// region is a window onto a frame, clipped to Cols columns from x0.
type region struct {
	f  *Frame
	x0 int
	w  Window
}

func (r region) cell(col, row int) *cell {
	if col < 0 || col >= r.w.Cols || row < 0 || row >= r.w.Rows {
		return nil
	}
	return r.f.at(r.x0+col, row)
}

func (r region) fill(c1, c2, r1, r2 int, bg lipgloss.TerminalColor) {
	for row := r1; row < r2; row++ {
		for col := c1; col < c2; col++ {
			if c := r.cell(col, row); c != nil {
				c.ch, c.fg, c.bg, c.bold = ' ', nil, bg, false
			}
		}
	}
}

func (r region) put(col, row int, ch rune, fg lipgloss.TerminalColor) {
	if c := r.cell(col, row); c != nil {
		c.ch, c.fg = ch, fg
	}
}

func (r region) text(col, row int, s string, fg lipgloss.TerminalColor, bold bool) {
	for _, ch := range s {
		if c := r.cell(col, row); c != nil {
			c.ch, c.fg, c.bold = ch, fg, bold
		}
		col++
	}
}

// Painter rasterizes a scene layer into a frame.
type Painter struct {
	Scene *render.Scene
	Theme theme.Theme
}

// Paint draws the visible primitives under root into f, starting at
// frame column x0 and clipped to w.Cols columns.
func (p Painter) Paint(f *Frame, root render.ID, x0 int, w Window) {
	r := region{f: f, x0: x0, w: w}
	stripe := 0
	p.Scene.Walk(root, func(_ render.ID, prim render.Primitive, _ int) bool {
		switch prim.Kind {
		case render.KindRect:
			if prim.HasClass("grid-row") {
				stripe++
			}
			p.rect(r, prim, stripe)
		case render.KindLine:
			p.line(r, prim)
		case render.KindPath:
			p.path(r, prim)
		case render.KindCircle:
			p.circle(r, prim)
		case render.KindText:
			p.text(r, prim)
		case render.KindCheckbox:
			mark := '☐'
			if prim.Checked {
				mark = '☑'
			}
			p.glyph(r, prim.X+prim.Width/2, prim.Y+prim.Height/2, mark, p.Theme.Text)
		case render.KindImage:
			p.glyph(r, prim.X+prim.Width/2, prim.Y+prim.Height/2, '◉', p.Theme.Accent)
		}
		return true
	})
}

func (p Painter) glyph(r region, x, y float64, ch rune, fg lipgloss.TerminalColor) {
	if row := r.w.rowOf(y); row >= 0 {
		r.put(r.w.colOf(x), row, ch, fg)
	}
}

func (p Painter) rect(r region, prim render.Primitive, stripe int) {
	if prim.Width <= 0 || prim.Height <= 0 {
		return
	}
	var bg lipgloss.TerminalColor
	switch {
	case prim.HasClass("bar-handle"), prim.HasClass("row-resize-handle"), prim.HasClass("swimlane-resize-handle"),
		prim.HasClass("grid-background"), prim.HasClass("swimlanes-background"):
		return
	case prim.HasClass("bar-milestone"):
		p.glyph(r, prim.X+prim.Width, prim.Y+prim.Height/2, '◆', p.color(prim.Fill, p.Theme.Selected))
		return
	case prim.HasClass("icon-delete"):
		p.glyph(r, prim.X+prim.Width/2, prim.Y+prim.Height/2, '✖', p.Theme.Error)
		return
	case prim.HasClass("grid-row"):
		bg = p.Theme.Background
		if stripe%2 == 0 {
			bg = p.Theme.BackgroundSecondary
		}
	case prim.HasClass("grid-header"), prim.HasClass("swimlanes-header"), prim.HasClass("swimlane-header-rect"),
		prim.HasClass("milestone-tooltip"):
		bg = p.Theme.BackgroundSecondary
	case prim.HasClass("today-highlight"):
		bg = p.Theme.Today
	case prim.HasClass("bar-progress"):
		bg = p.color(prim.Fill, p.Theme.Progress)
	case prim.HasClass("bar"):
		bg = p.color(prim.Fill, p.Theme.Bar)
	case prim.HasClass("swimlane-rect"):
		fallback := p.Theme.Background
		if prim.HasClass("empty") {
			fallback = p.Theme.BackgroundSecondary
		}
		bg = p.color(prim.Fill, fallback)
	case prim.HasClass("swimlane-text-background"):
		bg = p.color(prim.Fill, p.Theme.Border)
	case prim.Fill != "":
		bg = p.color(prim.Fill, p.Theme.Background)
	default:
		return
	}
	c1, c2 := r.w.cols(prim.X, prim.X+prim.Width)
	r1, r2 := r.w.rows(prim.Y, prim.Y+prim.Height)
	r.fill(c1, c2, r1, r2, bg)
}

func (p Painter) line(r region, prim render.Primitive) {
	if !prim.HasClass("tick") || !prim.HasClass("thick") {
		return
	}
	col := r.w.colOf(prim.X)
	r1, r2 := r.w.rows(math.Min(prim.Y, prim.Y2), math.Max(prim.Y, prim.Y2))
	for row := r1; row < r2; row++ {
		r.put(col, row, '│', p.Theme.Border)
	}
}

func (p Painter) path(r region, prim render.Primitive) {
	if !prim.HasClass("arrow") || len(prim.Points) < 2 {
		return
	}
	fg := lipgloss.TerminalColor(p.Theme.Arrow)
	if prim.HasClass("active") {
		fg = p.Theme.Selected
	}
	var last [2]render.Point
	drawn := false
	for i := 0; i+1 < len(prim.Points); i += 2 {
		a, b := prim.Points[i], prim.Points[i+1]
		// chevron strokes are shorter than a cell and a half
		if math.Hypot(b.X-a.X, b.Y-a.Y) < 1.5*CellWidth {
			continue
		}
		p.segment(r, a, b, fg)
		last, drawn = [2]render.Point{a, b}, true
	}
	if !drawn {
		return
	}
	a, b := last[0], last[1]
	head := '▶'
	switch dx, dy := b.X-a.X, b.Y-a.Y; {
	case math.Abs(dy) > math.Abs(dx) && dy > 0:
		head = '▼'
	case math.Abs(dy) > math.Abs(dx):
		head = '▲'
	case dx < 0:
		head = '◀'
	}
	p.glyph(r, b.X, b.Y, head, fg)
}

func (p Painter) segment(r region, a, b render.Point, fg lipgloss.TerminalColor) {
	dx, dy := b.X-a.X, b.Y-a.Y
	if math.Abs(dy) < CellHeight/2 {
		row := r.w.rowOf(a.Y)
		if row < 0 {
			return
		}
		c1, c2 := r.w.cols(math.Min(a.X, b.X), math.Max(a.X, b.X))
		for col := c1; col < c2; col++ {
			r.put(col, row, '─', fg)
		}
		return
	}
	ch := '│'
	if math.Abs(dx) >= CellWidth {
		ch = '╲'
		if dx*dy < 0 {
			ch = '╱'
		}
	}
	steps := int(math.Ceil(math.Abs(dy) / (CellHeight / 2)))
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		p.glyph(r, a.X+t*dx, a.Y+t*dy, ch, fg)
	}
}

func (p Painter) circle(r region, prim render.Primitive) {
	if !prim.HasClass("endpoint") {
		return
	}
	fg := lipgloss.TerminalColor(p.Theme.Arrow)
	switch {
	case prim.HasClass("active"):
		fg = p.Theme.Selected
	case prim.HasClass("clickable"):
		fg = p.Theme.Accent
	}
	p.glyph(r, prim.X, prim.Y, '●', fg)
}

func (p Painter) text(r region, prim render.Primitive) {
	if prim.Text == "" {
		return
	}
	row := r.w.rowOf(prim.Y)
	if row < 0 {
		return
	}
	width := ansi.StringWidth(prim.Text)
	x := prim.X
	switch prim.Anchor {
	case render.AnchorMiddle:
		x -= float64(width) * CellWidth / 2
	case render.AnchorEnd:
		x -= float64(width) * CellWidth
	}
	col := int(math.Round((x - r.w.Left) / CellWidth))
	fg, bold := p.textColor(prim)
	r.text(col, row, prim.Text, p.color(prim.TextColor, fg), bold)
}

func (p Painter) textColor(prim render.Primitive) (lipgloss.TerminalColor, bool) {
	switch {
	case prim.HasClass("upper-text"):
		return p.Theme.TextMuted, true
	case prim.HasClass("swimlane-header-label"):
		return p.Theme.Accent, true
	case prim.HasClass("bar-label") && prim.HasClass("big"):
		return p.Theme.Text, false
	case prim.HasClass("bar-label"):
		return p.Theme.Text, true
	default:
		return p.Theme.Text, false
	}
}

// color maps a chart colour value onto the terminal. Hex colours are used
// as is; anything else, white included, falls back to the theme.
func (p Painter) color(value string, fallback lipgloss.TerminalColor) lipgloss.TerminalColor {
	v := strings.ToLower(strings.TrimSpace(value))
	if !strings.HasPrefix(v, "#") || v == "#fff" || v == "#ffffff" {
		return fallback
	}
	return lipgloss.Color(v)
}
