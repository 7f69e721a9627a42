package chart

import (
	"math"
	"strconv"
	"strings"

	"gantry/internal/render"
	"gantry/internal/scale"
)

const tooltipPadding = 5

// milestones draws the sub-intervals of a bar and their end handles. The
// end positions live in the bar state so bar snapshots cover them.
type milestones struct {
	bar *Bar

	paths   []render.ID
	handles []render.ID
	group   render.ID

	dragging             int
	tooltip, tooltipText render.ID
}

func newMilestones(b *Bar) *milestones {
	c := b.chart
	xs := make([]float64, len(b.task.MilestoneDates))
	for i, d := range b.task.MilestoneDates {
		if d.IsZero() {
			xs[i] = b.st.x1
			continue
		}
		xs[i] = c.settings.DistanceFromStart(d)
	}
	b.st.milestoneXs = xs
	return &milestones{bar: b, dragging: -1}
}

func (m *milestones) xs() []float64 {
	return m.bar.st.milestoneXs
}

// position is the drawn start and width of milestone i, clipped to the bar.
func (m *milestones) position(i int) (float64, float64) {
	s := m.bar.st
	xs := m.xs()
	prev := 0.0
	for _, x := range xs[:i] {
		prev = math.Max(prev, x)
	}
	if prev == 0 {
		prev = s.x1
	}
	start := s.x1
	if i > 0 {
		start = math.Max(prev, s.x1)
	}
	if start < s.x2 && xs[i] > s.x1 {
		return start, math.Min(xs[i]-start, s.x2-start)
	}
	return start, 0
}

func (m *milestones) draggable(i int) bool {
	raw := m.bar.task.Raw.Milestones
	dates := m.bar.task.MilestoneDates
	return i >= 0 && i < len(raw) && i < len(dates) &&
		raw[i].Draggable && m.bar.chart.opts.ResizeMilestones && !dates[i].IsZero()
}

func (m *milestones) render(parent render.ID) {
	c := m.bar.chart
	for i := range m.xs() {
		var color string
		if i < len(m.bar.task.Raw.Milestones) {
			color = m.bar.task.Raw.Milestones[i].Color
		}
		id := c.backend.Create(parent, render.Primitive{
			Kind: render.KindPath, Class: []string{"bar-milestone"}, Fill: color, Interactive: true,
		})
		m.paths = append(m.paths, c.register(id, target{kind: targetBar, bar: m.bar}))
	}
}

func (m *milestones) renderHandles(parent render.ID) {
	c := m.bar.chart
	some := false
	for i := range m.xs() {
		some = some || m.draggable(i)
	}
	if !some {
		return
	}
	m.group = c.backend.Create(parent, render.Primitive{Kind: render.KindGroup, Class: []string{"bar-handle-milestones-group"}})
	m.handles = make([]render.ID, len(m.xs()))
	for i := range m.handles {
		if !m.draggable(i) {
			continue
		}
		id := c.backend.Create(m.group, render.Primitive{
			Kind: render.KindRect, Class: []string{"bar-handle", "milestone"}, Fill: "transparent", Interactive: true,
		})
		m.handles[i] = c.register(id, target{kind: targetMilestone, bar: m.bar, index: i})
	}
}

func (m *milestones) draw() {
	c := m.bar.chart
	s := m.bar.st
	h := m.bar.height()
	radius := c.opts.BarCornerRadius
	for i, id := range m.paths {
		x, w := m.position(i)
		if w <= 0 {
			c.backend.Set(id, render.D(""))
			continue
		}
		left, right := 0.0, 0.0
		if x == s.x1 {
			left = radius
		}
		if x+w == s.x2 {
			right = radius
		}
		d, segs := roundedRect(x, s.y, w, h, left, right)
		c.backend.Set(id, render.Path(d, segs))
	}
	for i, id := range m.handles {
		if id == render.Root {
			continue
		}
		x, w := m.position(i)
		if w <= 0 || m.xs()[i] > s.x2 {
			c.backend.SetVisible(id, i == m.dragging)
			continue
		}
		c.backend.SetVisible(id, true)
		c.backend.Set(id, render.Box(x+w-handleSize/2, s.y, handleSize, h))
	}
}

// roundedRect builds a rectangle path whose left and right corners are
// rounded independently. The drawn segments are its four edges.
func roundedRect(x, y, w, h, left, right float64) (string, [][2]render.Point) {
	n := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	var b strings.Builder
	b.WriteString("M " + n(x+left) + " " + n(y))
	b.WriteString(" H " + n(x+w-right))
	if right > 0 {
		b.WriteString(" a " + n(right) + " " + n(right) + " 0 0 1 " + n(right) + " " + n(right))
	}
	b.WriteString(" V " + n(y+h-right))
	if right > 0 {
		b.WriteString(" a " + n(right) + " " + n(right) + " 0 0 1 -" + n(right) + " " + n(right))
	}
	b.WriteString(" H " + n(x+left))
	if left > 0 {
		b.WriteString(" a " + n(left) + " " + n(left) + " 0 0 1 -" + n(left) + " -" + n(left))
	}
	b.WriteString(" V " + n(y+left))
	if left > 0 {
		b.WriteString(" a " + n(left) + " " + n(left) + " 0 0 1 " + n(left) + " -" + n(left))
	}
	b.WriteString(" Z")

	tl, tr := render.Point{X: x, Y: y}, render.Point{X: x + w, Y: y}
	br, bl := render.Point{X: x + w, Y: y + h}, render.Point{X: x, Y: y + h}
	return b.String(), [][2]render.Point{{tl, tr}, {tr, br}, {br, bl}, {bl, tl}}
}

func (m *milestones) startDrag(i int) {
	c := m.bar.chart
	if m.group == render.Root {
		return
	}
	m.dragging = i
	m.tooltip = c.backend.Create(m.group, render.Primitive{
		Kind: render.KindRect, Class: []string{"milestone-tooltip"}, CornerRadius: c.opts.BarCornerRadius,
	})
	m.tooltipText = c.backend.Create(m.group, render.Primitive{
		Kind: render.KindText, Class: []string{"bar-label", "milestone-tooltip-text"}, Anchor: render.AnchorMiddle,
	})
	m.drawTooltip()
}

func (m *milestones) drawTooltip() {
	if m.dragging < 0 || m.tooltip == render.Root {
		return
	}
	c := m.bar.chart
	start, w := m.position(m.dragging)
	x := start + w
	y := m.bar.st.y - 10
	text := scale.FormatDate(c.settings.NearestTick(x).Date, c.opts.DateFormat)
	c.backend.Set(m.tooltipText, render.Pos(x, y), render.Text(text))
	size := c.backend.MeasureText(text, "bar-label")
	c.backend.Set(m.tooltip, render.Box(x-size.Width/2-tooltipPadding, y-size.Height/2, size.Width+2*tooltipPadding, size.Height))
}

// resize moves the dragged milestone end to the nearest tick between its
// neighbours.
func (m *milestones) resize(dx, x float64) {
	i := m.dragging
	b := m.bar
	if dx == 0 || b.snap == nil || !m.draggable(i) {
		return
	}
	xs := m.xs()
	prev, next := b.st.x1, b.st.x2
	if i > 0 {
		prev = xs[i-1]
	}
	if i+1 < len(xs) {
		next = xs[i+1]
	}
	tick := b.chart.settings.NearestTick(b.snap.state.milestoneXs[i] + x)
	if tick.X > next || tick.X < prev || xs[i] == tick.X {
		return
	}
	xs[i] = tick.X
	dates := append(b.task.MilestoneDates[:0:0], b.task.MilestoneDates...)
	dates[i] = tick.Date
	b.chart.model.SetMilestoneDates(b.task, dates)
	m.draw()
	m.drawTooltip()
}

func (m *milestones) endDrag() {
	c := m.bar.chart
	if m.tooltip != render.Root {
		c.backend.Remove(m.tooltip)
		c.backend.Remove(m.tooltipText)
	}
	m.tooltip, m.tooltipText = render.Root, render.Root
	if m.dragging >= 0 {
		m.dragging = -1
		m.draw()
	}
}

func (m *milestones) unregister() {
	for _, id := range m.paths {
		m.bar.chart.unregister(id)
	}
	for _, id := range m.handles {
		m.bar.chart.unregister(id)
	}
}
