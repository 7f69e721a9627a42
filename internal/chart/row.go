package chart

import (
	"math"

	"gantry/internal/layout"
	"gantry/internal/swimlane"
	"gantry/internal/task"
)

// Row is one swimlane line of the chart. Its bars are packed into
// sub-lines so that no two bars on a sub-line overlap.
type Row struct {
	chart *Chart
	index int
	y     float64
	line  swimlane.Line
	lines layout.Lines[*Bar]

	// extra is height added by dragging the row handle.
	extra float64
	snap  *rowSnapshot
}

type rowSnapshot struct {
	lines layout.Lines[*Bar]
	y     float64
	extra float64
}

func newRow(c *Chart, index int, y float64, line swimlane.Line) *Row {
	return &Row{chart: c, index: index, y: y, line: line}
}

func (r *Row) metrics() layout.Metrics {
	return layout.Metrics{BarHeight: r.chart.opts.BarHeight, Padding: r.chart.opts.Padding}
}

func (r *Row) packedHeight() float64 {
	return r.metrics().Height(r.lines.Len())
}

func (r *Row) height() float64 {
	return r.packedHeight() + r.extra
}

func (r *Row) bars() []*Bar {
	return r.lines.Items()
}

func (r *Row) lineY(line int) float64 {
	return r.metrics().LineY(r.y, line)
}

func (r *Row) render() {
	for _, g := range r.line.Tasks {
		b := newBar(r.chart, g, r)
		b.render()
		r.chart.registerBar(b)
		r.place(b, 0)
	}
}

// place puts b on the first free sub-line at or below minLine.
func (r *Row) place(b *Bar, minLine int) {
	line := layout.FreeLine(r.lines, barSpan, b.span(), minLine)
	b.setY(r.lineY(line))
	r.lines = r.lines.Place(line, b)
}

func (r *Row) resized(before float64) {
	if h := r.height(); h != before {
		r.chart.onRowResized(r.index, h-before)
	}
}

func isBar(b *Bar) func(*Bar) bool {
	return func(o *Bar) bool { return o == b }
}

// onBarDragging re-packs the row around a bar that moved. The bar keeps
// its sub-line when keepY is set; otherwise it may rise to a free line
// above. Every other bar is then re-placed from the top.
func (r *Row) onBarDragging(b *Bar, keepY bool) {
	current := r.lines.Find(isBar(b))
	if current < 0 {
		return
	}
	rest := r.lines.Without(isBar(b))
	position := current
	if !keepY {
		position = min(current, layout.FreeLine(rest, barSpan, b.span(), 0))
	}
	before := r.height()
	b.setY(r.lineY(position))

	others := rest.Items()
	r.lines = layout.Lines[*Bar](nil).Place(position, b)
	for _, o := range others {
		r.place(o, 0)
	}
	r.resized(before)
}

// onNewBarDragging makes room for a bar being drawn between startX and
// endX on the sub-line at y, pushing overlapping bars down.
func (r *Row) onNewBarDragging(startX, endX, y float64) {
	position := r.metrics().LineForY(r.y, y)
	before := r.height()
	old := r.lines.Clone()
	drawn := layout.Span{Start: startX, End: endX}

	r.lines = nil
	for i, line := range old {
		if i < position {
			for len(r.lines) <= i {
				r.lines = append(r.lines, nil)
			}
			r.lines[i] = line
			continue
		}
		for _, b := range line {
			overflows := layout.Overlaps(drawn, b.span())
			at := i
			if i == position {
				if overflows {
					at = i + 1
				}
			} else {
				free := layout.FreeLine(r.lines, barSpan, b.span(), position)
				switch {
				case free == position && !overflows:
					at = position
				case free != position:
					at = free
				default:
					at = layout.FreeLine(r.lines, barSpan, b.span(), i)
				}
			}
			b.setY(r.lineY(at))
			r.lines = r.lines.Place(at, b)
		}
	}
	r.resized(before)
}

// newBarY is the sub-line y a bar dropped at y snaps to.
func (r *Row) newBarY(y float64) float64 {
	n := r.lines.Len()
	quarter := r.chart.opts.Padding / 4
	for i := 0; i < n; i++ {
		lo := r.y
		if i > 0 {
			lo = r.lineY(i) - quarter
		}
		hi := r.y + r.height()
		if i < n-1 {
			hi = r.lineY(i+1) - quarter
		}
		if y >= lo && y <= hi {
			return r.lineY(i)
		}
	}
	return r.lineY(0)
}

func (r *Row) someBarOverflows(b *Bar, y float64) bool {
	span := b.span()
	for _, o := range r.bars() {
		if o != b && o.st.y == y && layout.Overlaps(span, o.span()) {
			return true
		}
	}
	return false
}

func (r *Row) nextLineY(y float64) float64 {
	return r.lineY(r.metrics().LineForY(r.y, y) + 1)
}

func (r *Row) addBar(b *Bar, y float64) {
	before := r.height()
	r.lines = r.lines.Place(r.metrics().LineForY(r.y, y), b)
	r.resized(before)
}

// removeBar takes b out of the row. With repack the remaining bars are
// packed again from the top and a height change is propagated.
func (r *Row) removeBar(b *Bar, repack bool) {
	before := r.height()
	r.lines = r.lines.Without(isBar(b))
	if !repack {
		return
	}
	bars := r.lines.Items()
	r.lines = nil
	for _, o := range bars {
		r.place(o, 0)
	}
	r.resized(before)
}

func (r *Row) updateBarLine(b *Bar, y float64) {
	r.removeBar(b, false)
	r.addBar(b, y)
}

func (r *Row) moveY(offset float64) {
	for _, b := range r.bars() {
		b.moveY(offset)
	}
	r.y += offset
}

// swimlanes are the descriptors a task moved into this row takes over.
// Trailing empty depths are dropped.
func (r *Row) swimlanes() []task.Swimlane {
	out := make([]task.Swimlane, len(r.line.Swimlanes))
	last := -1
	for i, n := range r.line.Swimlanes {
		if n == nil {
			continue
		}
		out[i] = n.Swimlane
		last = i
	}
	return out[:last+1]
}

// createBar adds a task drawn with the create-bar gesture at sub-line y.
func (r *Row) createBar(g *task.GanttTask, y float64) *Bar {
	c := r.chart
	g.Raw.Swimlanes = r.swimlanes()
	b := newBar(c, g, r)
	b.st.y = y
	b.render()
	c.registerBar(b)
	r.addBar(b, y)
	if c.cb.TaskCreated != nil {
		c.cb.TaskCreated(c.clean(g))
	}
	return b
}

// resizeExtra sets the extra height from the drag offset.
func (r *Row) resizeExtra(y float64) {
	if r.snap == nil {
		return
	}
	extra := math.Max(r.snap.extra+y, 0)
	if extra == r.extra {
		return
	}
	before := r.height()
	r.extra = extra
	r.resized(before)
}

func (r *Row) snapshot() {
	r.snap = &rowSnapshot{lines: r.lines.Clone(), y: r.y, extra: r.extra}
}

func (r *Row) restore() {
	if r.snap == nil {
		return
	}
	r.lines = r.snap.lines.Clone()
	r.y = r.snap.y
	r.extra = r.snap.extra
	r.snap = nil
}

func (r *Row) extraChanged() bool {
	return r.snap != nil && r.snap.extra != r.extra
}

func (r *Row) commit() {
	r.snap = nil
}
