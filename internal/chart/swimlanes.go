package chart

import (
	"math"
	"slices"

	"gantry/internal/render"
	"gantry/internal/swimlane"
	"gantry/internal/task"
)

const (
	minSwimlaneWidth  = 5
	laneHandleWidth   = 10
	textBackgroundRad = 8
)

// lanes is the swimlane table drawn left of the chart: one column per
// grouping depth, one cell per distinct node, merged down consecutive rows.
type lanes struct {
	chart   *Chart
	columns []*column
	height  float64

	header, background render.ID
	snap               *float64
}

type column struct {
	lanes *lanes
	index int
	x     float64
	width float64

	cells   []*cell
	heights []float64
	ys      []float64

	headerRect, headerText render.ID
	handle                 render.ID
	handleY, handleHeight  float64

	snap *columnSnapshot
}

type columnSnapshot struct {
	x, width     float64
	handleHeight float64
	heights, ys  []float64
}

type cell struct {
	node *swimlane.Node

	group, rect, pill, image, text render.ID
	contentWidth, contentHeight    float64
	imageWidth, imageSize          float64
}

func newLanes(c *Chart) *lanes {
	l := &lanes{chart: c}
	for i, w := range l.initialWidths() {
		x := 0.0
		if i > 0 {
			prev := l.columns[i-1]
			x = prev.x + prev.width
		}
		l.columns = append(l.columns, &column{lanes: l, index: i, x: x, width: w})
	}
	return l
}

// initialWidths sizes each depth by its longest value, header titles
// included. Configured widths win; measured widths are capped.
func (l *lanes) initialWidths() []float64 {
	c := l.chart
	var longest []string
	var seen []bool
	for _, line := range c.lines {
		for i, n := range line.Swimlanes {
			if n == nil {
				continue
			}
			for len(longest) <= i {
				longest = append(longest, "")
				seen = append(seen, false)
			}
			if !seen[i] || len(longest[i]) < len(n.Key) {
				longest[i], seen[i] = n.Key, true
			}
		}
	}
	if len(longest) == 0 {
		return nil
	}
	for i := range longest {
		if info := c.opts.swimlaneInfo(i); info != nil && len(longest[i]) < len(info.Title) {
			longest[i] = info.Title
		}
	}

	widths := make([]float64, len(longest))
	for i, title := range longest {
		if info := c.opts.swimlaneInfo(i); info != nil && info.Width > 0 {
			widths[i] = info.Width
			continue
		}
		measured := c.backend.MeasureText(title, "swimlane-label").Width + 2*c.opts.Padding
		widths[i] = math.Min(measured, c.opts.MaxInitialSwimlaneWidth)
	}
	return widths
}

func (l *lanes) contains() bool {
	return len(l.columns) > 0
}

func (l *lanes) width() float64 {
	var w float64
	for _, col := range l.columns {
		w += col.width
	}
	return w
}

func (l *lanes) render() {
	c := l.chart
	if !l.contains() {
		c.backend.SetVisible(c.layers.Swimlanes, false)
		return
	}
	c.backend.SetVisible(c.layers.Swimlanes, true)
	s := c.settings
	l.header = c.backend.Create(c.layers.Swimlanes, render.Primitive{
		Kind: render.KindRect, Class: []string{"swimlanes-header"},
		Width: l.width(), Height: s.HeaderHeight,
	})
	l.background = c.backend.Create(c.layers.Swimlanes, render.Primitive{
		Kind: render.KindRect, Class: []string{"swimlanes-background"},
		Y: s.HeaderHeight, Width: l.width(), Height: s.TableHeight() - s.HeaderHeight,
	})

	y := s.HeaderHeight
	var previous swimlane.Line
	for i, line := range c.lines {
		h := s.RowHeights[i]
		l.height += h
		empty := line.IsEmpty()
		for _, col := range l.columns {
			col.addCell(line.At(col.index), i, y, h, swimlane.SameNode(previous, line, col.index), empty)
		}
		previous = line
		y += h
	}
	l.renderHeaders()
	for _, col := range l.columns {
		col.draw()
	}
}

func (l *lanes) hasHeader(i int) bool {
	info := l.chart.opts.swimlaneInfo(i)
	return info != nil && (info.Title != "" || info.Background != "")
}

func (l *lanes) renderHeaders() {
	c := l.chart
	s := c.settings
	hh := math.Min(s.DefaultRowHeight, s.HeaderHeight)
	y := s.HeaderHeight - hh
	n := min(len(c.opts.SwimlaneInfo), len(l.columns))
	for i := 0; i < n; i++ {
		l.columns[i].renderHeader(y, hh)
	}
	if !c.opts.ResizeSwimlanes {
		return
	}

	handleHeight := s.TableHeight() - s.HeaderHeight
	if len(c.lines) > 0 && c.lines[len(c.lines)-1].IsEmpty() {
		handleHeight -= s.DefaultRowHeight
	}
	for i := 0; i < n; i++ {
		hy, h := s.HeaderHeight, handleHeight
		if l.hasHeader(i) || l.hasHeader(i+1) {
			hy -= hh
			h += hh
		}
		l.columns[i].renderHandle(hy, h)
	}
}

func (l *lanes) drawWrappers() {
	c := l.chart
	w := l.width()
	c.backend.Set(l.header, render.Width(w))
	c.backend.Set(l.background, render.Width(w), render.Height(l.height))
}

// resizing shifts the columns after col by diff.
func (l *lanes) resizing(col *column, diff float64) {
	for _, next := range l.columns[col.index+1:] {
		next.x += diff
		next.draw()
	}
	l.drawWrappers()
}

func (l *lanes) lineResized(index int, diff float64) {
	if !l.contains() {
		return
	}
	l.height += diff
	l.drawWrappers()
	for _, col := range l.columns {
		col.resizeRow(index, diff)
	}
}

func (l *lanes) snapshot() {
	h := l.height
	l.snap = &h
	for _, col := range l.columns {
		col.snapshot()
	}
}

func (l *lanes) restore() {
	if l.snap != nil {
		l.height = *l.snap
		l.snap = nil
	}
	for _, col := range l.columns {
		col.restore()
	}
	if l.contains() {
		l.drawWrappers()
	}
}

// commit reports the first column whose width changed and drops the
// snapshots.
func (l *lanes) commit() {
	for _, col := range l.columns {
		if col.snap != nil && col.snap.width != col.width {
			log.Logf("swimlane %d resized to %.0f", col.index, col.width)
			if cb := l.chart.cb.SwimlaneResized; cb != nil {
				cb(col.index, col.width)
			}
			break
		}
	}
	l.snap = nil
	for _, col := range l.columns {
		col.snap = nil
	}
}

func (col *column) addCell(n *swimlane.Node, index int, y, h float64, same, empty bool) {
	col.heights = append(col.heights, h)
	col.ys = append(col.ys, y)
	if same && index > 0 {
		col.cells = append(col.cells, col.cells[index-1])
		return
	}
	cl := &cell{node: n}
	col.cells = append(col.cells, cl)
	col.renderCell(cl, empty)
}

func (col *column) renderCell(cl *cell, empty bool) {
	c := col.lanes.chart
	o := c.opts
	var s task.Swimlane
	if cl.node != nil {
		s = cl.node.Swimlane
	}
	cl.group = c.backend.Create(c.layers.Swimlanes, render.Primitive{Kind: render.KindGroup, Class: []string{"swimlane"}})
	fill := s.Background
	if fill == "" {
		fill = "white"
	}
	classes := []string{"swimlane-rect"}
	if empty {
		classes = append(classes, "empty")
	}
	cl.rect = c.backend.Create(cl.group, render.Primitive{Kind: render.KindRect, Class: classes, Fill: fill})

	if s.Value == "" && s.Title == "" && s.Kind != task.KindCheckbox {
		return
	}
	if s.TextBackground != "" {
		cl.pill = c.backend.Create(cl.group, render.Primitive{
			Kind: render.KindRect, Class: []string{"swimlane-text-background"},
			CornerRadius: textBackgroundRad, Fill: s.TextBackground,
		})
	}
	if s.Kind == task.KindCheckbox {
		cl.imageSize = o.CheckboxSize
		cl.contentWidth, cl.contentHeight = o.CheckboxSize, o.CheckboxSize
		cl.image = c.backend.Create(cl.group, render.Primitive{
			Kind: render.KindCheckbox, Class: []string{"swimlane-checkbox"}, Checked: s.Checked,
		})
		return
	}
	if s.AvatarURL != "" {
		cl.imageSize = o.AvatarSize
		cl.imageWidth = o.AvatarSize + o.AvatarPadding
		cl.contentWidth, cl.contentHeight = cl.imageWidth, o.AvatarSize
		cl.image = c.backend.Create(cl.group, render.Primitive{
			Kind: render.KindImage, Class: []string{"circle-image"}, Href: s.AvatarURL,
		})
	}
	label := s.Label()
	cl.text = c.backend.Create(cl.group, render.Primitive{
		Kind: render.KindText, Class: []string{"swimlane-label"}, Text: label, TextColor: s.TextColor,
	})
	size := c.backend.MeasureText(label, "swimlane-label")
	cl.contentWidth += size.Width
	cl.contentHeight = math.Max(cl.contentHeight, size.Height)
}

func (col *column) renderHeader(y, h float64) {
	c := col.lanes.chart
	info := c.opts.swimlaneInfo(col.index)
	g := c.backend.Create(c.layers.Swimlanes, render.Primitive{Kind: render.KindGroup, Class: []string{"swimlane-header"}})
	classes := []string{"swimlane-header-rect"}
	if !col.lanes.hasHeader(col.index) {
		classes = append(classes, "empty")
	}
	col.headerRect = c.backend.Create(g, render.Primitive{
		Kind: render.KindRect, Class: classes, Y: y, Height: h, Fill: info.Background,
	})
	if info.Title != "" {
		col.headerText = c.backend.Create(g, render.Primitive{
			Kind: render.KindText, Class: []string{"swimlane-header-label"}, Text: info.Title,
			TextColor: info.Color, Y: y + h/2,
		})
	}
}

func (col *column) renderHandle(y, h float64) {
	c := col.lanes.chart
	col.handleY, col.handleHeight = y, h
	id := c.backend.Create(c.layers.Swimlanes, render.Primitive{
		Kind: render.KindRect, Class: []string{"swimlane-resize-handle"}, Interactive: true,
	})
	col.handle = c.register(id, target{kind: targetColumnHandle, column: col})
}

// draw lays every element out from x, width and the row geometry.
func (col *column) draw() {
	c := col.lanes.chart
	for i, cl := range col.cells {
		if i > 0 && col.cells[i-1] == cl {
			continue
		}
		h := col.heights[i]
		for j := i + 1; j < len(col.cells) && col.cells[j] == cl; j++ {
			h += col.heights[j]
		}
		col.drawCell(cl, col.ys[i], h)
	}
	if col.headerRect != render.Root {
		c.backend.Set(col.headerRect, render.X(col.x), render.Width(col.width))
	}
	if col.headerText != render.Root {
		c.backend.Set(col.headerText, render.X(col.x+c.opts.Padding))
	}
	if col.handle != render.Root {
		c.backend.Set(col.handle, render.Box(col.x+col.width-laneHandleWidth/2, col.handleY, laneHandleWidth, col.handleHeight))
	}
}

func (col *column) drawCell(cl *cell, y, h float64) {
	c := col.lanes.chart
	o := c.opts
	c.backend.Set(cl.rect, render.Box(col.x, y, col.width, h))

	middle := y + h/2
	x := col.x + o.Padding
	if cl.pill != render.Root {
		x += o.TextBackgroundPadding
		c.backend.Set(cl.pill, render.Box(
			x-o.TextBackgroundPadding,
			middle-cl.contentHeight/2-o.TextBackgroundPadding/2,
			cl.contentWidth+2*o.TextBackgroundPadding,
			cl.contentHeight+o.TextBackgroundPadding,
		))
	}
	if cl.image != render.Root {
		c.backend.Set(cl.image, render.Box(x, middle-cl.imageSize/2, cl.imageSize, cl.imageSize))
	}
	if cl.text != render.Root {
		c.backend.Set(cl.text, render.Pos(x+cl.imageWidth, middle))
	}
}

// resize sets the column width from the drag offset.
func (col *column) resize(x float64) {
	if col.snap == nil {
		return
	}
	c := col.lanes.chart
	width := math.Max(minSwimlaneWidth+2*c.opts.Padding, col.snap.width+x)
	if width == col.width {
		return
	}
	diff := width - col.width
	col.width = width
	col.draw()
	col.lanes.resizing(col, diff)
}

func (col *column) resizeRow(index int, diff float64) {
	if index >= len(col.heights) {
		return
	}
	col.heights[index] += diff
	col.handleHeight += diff
	for i := index + 1; i < len(col.ys); i++ {
		col.ys[i] += diff
	}
	col.draw()
}

func (col *column) snapshot() {
	col.snap = &columnSnapshot{
		x: col.x, width: col.width, handleHeight: col.handleHeight,
		heights: slices.Clone(col.heights), ys: slices.Clone(col.ys),
	}
}

func (col *column) restore() {
	if col.snap == nil {
		return
	}
	s := col.snap
	col.x, col.width, col.handleHeight = s.x, s.width, s.handleHeight
	col.heights, col.ys = slices.Clone(s.heights), slices.Clone(s.ys)
	col.snap = nil
	col.draw()
}
