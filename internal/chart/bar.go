package chart

import (
	"math"
	"slices"
	"strconv"
	"time"

	"gantry/internal/layout"
	"gantry/internal/render"
	"gantry/internal/route"
	"gantry/internal/task"
)

const (
	handleSize    = 10
	endpointR     = 5
	handlePadding = 1

	// progressTextLift is how far above the bar the progress value floats
	// while it is dragged.
	progressTextLift = 21.6 + 4
)

// barState is everything a drag can change on a bar.
type barState struct {
	x1, x2   float64
	y        float64
	progress float64
	row      int

	// dateX1 and dateX2 are the positions the task dates were last derived
	// from; laneRow is the row the task swimlanes were last copied from.
	dateX1, dateX2 float64
	laneRow        int

	milestoneXs []float64
}

func (s barState) clone() barState {
	s.milestoneXs = slices.Clone(s.milestoneXs)
	return s
}

type barSnapshot struct {
	state      barState
	raw        task.Task
	start, end time.Time
	milestones []time.Time
}

type barElements struct {
	wrapper, group           render.ID
	bar, outer, inner, label render.ID
	left, right              render.ID
	progress, progressText   render.ID
	startPoint, endPoint     render.ID
	endpointClickable        bool
}

// Bar is one rendered task instance.
type Bar struct {
	chart *Chart
	task  *task.GanttTask
	st    barState
	el    barElements

	// from holds arrows to this bar's dependencies, to the arrows of tasks
	// depending on it.
	from, to []*Arrow

	milestones *milestones
	snap       *barSnapshot
}

func newBar(c *Chart, g *task.GanttTask, row *Row) *Bar {
	b := &Bar{chart: c, task: g}
	b.st.x1 = c.settings.DistanceFromStart(g.StartDate)
	b.st.x2 = c.settings.DistanceFromStart(g.EndDate)
	b.st.y = row.y + c.opts.Padding/2
	b.st.progress = g.Raw.Progress
	b.st.row = row.index
	b.st.laneRow = row.index
	b.st.dateX1, b.st.dateX2 = b.st.x1, b.st.x2
	b.milestones = newMilestones(b)
	return b
}

func (b *Bar) row() *Row {
	return b.chart.rows[b.st.row]
}

func (b *Bar) barWidth() float64 {
	return math.Max(b.st.x2-b.st.x1, 1)
}

func (b *Bar) height() float64 {
	return b.chart.opts.BarHeight
}

// span is the horizontal extent used for packing: the drawn box including
// endpoints and an overflowing label.
func (b *Bar) span() layout.Span {
	r := b.chart.backend.Bounds(b.el.wrapper)
	return layout.Span{Start: r.X, End: r.Right()}
}

func barSpan(b *Bar) layout.Span { return b.span() }

func (b *Bar) endpoints() route.Endpoints {
	return route.Endpoints{
		Y:      b.st.y,
		Height: b.height(),
		StartX: b.st.x1 - endpointR*2,
		EndX:   b.st.x2 + endpointR*2,
	}
}

func (b *Bar) canStart() bool {
	return b.task.Raw.StartDrag && b.chart.opts.ResizeTaskLeft
}

func (b *Bar) canEnd() bool {
	return b.task.Raw.EndDrag && b.chart.opts.ResizeTaskRight
}

func (b *Bar) canProgress() bool {
	return b.task.Raw.ProgressDrag && b.chart.opts.ResizeProgress
}

func (b *Bar) canMove() bool {
	return b.task.Raw.Draggable
}

func (b *Bar) canMoveVertically() bool {
	return b.chart.containsSwimlanes() && b.chart.opts.DragTaskSwimlanes
}

func (b *Bar) hasAnyDependencies() bool {
	return len(b.task.AllowedDependencies)+len(b.task.Dependencies) > 0
}

// possibleDependencies are the allowed dependencies not yet drawn and not
// already pointing back at this task.
func (b *Bar) possibleDependencies() []string {
	var out []string
	for _, id := range b.task.AllowedDependencies {
		if !slices.Contains(b.task.Dependencies, id) && !slices.Contains(b.task.ParentDependencies, id) {
			out = append(out, id)
		}
	}
	return out
}

func (b *Bar) render() {
	c := b.chart
	radius := c.opts.BarCornerRadius
	create := func(parent render.ID, p render.Primitive) render.ID {
		return c.backend.Create(parent, p)
	}
	asBar := target{kind: targetBar, bar: b}

	b.el.wrapper = create(c.layers.bar, render.Primitive{Kind: render.KindGroup, Class: []string{"bar-wrapper"}})
	b.el.group = create(b.el.wrapper, render.Primitive{Kind: render.KindGroup, Class: []string{"bar-group"}})
	b.el.bar = c.register(create(b.el.group, render.Primitive{
		Kind: render.KindRect, Class: []string{"bar"}, CornerRadius: radius,
		Fill: b.task.Raw.BarColor, Interactive: true,
	}), asBar)
	b.el.outer = c.register(create(b.el.group, render.Primitive{
		Kind: render.KindRect, Class: []string{"bar-progress"}, CornerRadius: radius,
		Fill: b.task.Raw.ProgressColor, Opacity: 0.5, Interactive: true,
	}), asBar)
	b.el.inner = c.register(create(b.el.group, render.Primitive{
		Kind: render.KindRect, Class: []string{"bar-progress"}, CornerRadius: radius,
		Fill: b.task.Raw.ProgressColor, Interactive: true,
	}), asBar)
	b.milestones.render(b.el.group)
	b.el.label = c.register(create(b.el.group, render.Primitive{
		Kind: render.KindText, Class: []string{"bar-label"}, Text: b.task.Raw.Name,
		TextColor: b.task.Raw.TextColor, Anchor: render.AnchorMiddle, Interactive: true,
	}), asBar)

	if b.hasAnyDependencies() {
		b.el.startPoint = create(b.el.group, render.Primitive{Kind: render.KindCircle, Class: []string{"endpoint", "start"}})
		b.el.endPoint = create(b.el.group, render.Primitive{Kind: render.KindCircle, Class: []string{"endpoint", "end"}})
	}
	if b.canStart() {
		b.el.left = c.register(create(b.el.group, render.Primitive{
			Kind: render.KindRect, Class: []string{"bar-handle", "left"}, CornerRadius: radius, Interactive: true,
		}), target{kind: targetHandleLeft, bar: b})
	}
	if b.canEnd() {
		b.el.right = c.register(create(b.el.group, render.Primitive{
			Kind: render.KindRect, Class: []string{"bar-handle", "right"}, CornerRadius: radius, Interactive: true,
		}), target{kind: targetHandleRight, bar: b})
	}
	if b.canProgress() {
		g := create(b.el.group, render.Primitive{Kind: render.KindGroup, Class: []string{"bar-handle-progress-group"}})
		b.el.progress = c.register(create(g, render.Primitive{
			Kind: render.KindPolygon, Class: []string{"bar-handle", "progress"}, Interactive: true,
		}), target{kind: targetProgress, bar: b})
		b.el.progressText = create(g, render.Primitive{Kind: render.KindText, Class: []string{"bar-label", "progress-text"}, Anchor: render.AnchorMiddle})
		c.backend.SetVisible(b.el.progressText, false)
	}
	b.milestones.renderHandles(b.el.group)
	b.draw()
	b.refreshEndpoints()
}

// draw moves every element to the current state.
func (b *Bar) draw() {
	c := b.chart
	s := b.st
	h := b.height()
	bw := b.barWidth()
	total := bw * s.progress / 100

	c.backend.Set(b.el.bar, render.Box(s.x1, s.y, bw, h))
	c.backend.Set(b.el.outer, render.Box(s.x1, s.y, total, h))
	c.backend.Set(b.el.inner, render.Box(s.x1, s.y, math.Min(bw, total), h))
	b.drawLabel()

	if b.el.startPoint != render.Root {
		ep := b.endpoints()
		c.backend.Set(b.el.startPoint, render.Circle(ep.StartX, ep.CY(), endpointR))
		c.backend.Set(b.el.endPoint, render.Circle(ep.EndX, ep.CY(), endpointR))
	}
	if b.el.left != render.Root {
		c.backend.Set(b.el.left, render.Box(s.x1+handlePadding, s.y+handlePadding, handleSize, h-2*handlePadding))
	}
	if b.el.right != render.Root {
		c.backend.Set(b.el.right, render.Box(s.x1+bw-handlePadding-handleSize, s.y+handlePadding, handleSize, h-2*handlePadding))
	}
	b.drawProgressHandle()
	b.milestones.draw()
}

func (b *Bar) drawLabel() {
	c := b.chart
	s := b.st
	size := c.backend.MeasureText(b.task.Raw.Name, "bar-label")
	if size.Width > b.barWidth() {
		c.backend.Set(b.el.label, render.Pos(s.x2+endpointR*4, s.y+b.height()/2),
			render.Anchored(render.AnchorStart), render.AddClass("big"))
		return
	}
	c.backend.Set(b.el.label, render.Pos(s.x1+b.barWidth()/2, s.y+b.height()/2),
		render.Anchored(render.AnchorMiddle), render.RemoveClass("big"))
}

func (b *Bar) drawProgressHandle() {
	if b.el.progress == render.Root {
		return
	}
	s := b.st
	h := b.height()
	endX := s.x1 + b.barWidth()*s.progress/100
	diagonal := math.Sqrt(handleSize*handleSize - (handleSize/2)*(handleSize/2))
	b.chart.backend.Set(b.el.progress, render.Polygon(
		render.Point{X: endX - handleSize/2, Y: s.y + h},
		render.Point{X: endX + handleSize/2, Y: s.y + h},
		render.Point{X: endX, Y: s.y + h - diagonal},
	))
	b.chart.backend.Set(b.el.progressText, render.Pos(endX, s.y-progressTextLift), render.Text(progressLabel(s.progress)))
}

func progressLabel(p float64) string {
	if p > 999 {
		return "999+"
	}
	return strconv.FormatFloat(p, 'f', -1, 64)
}

// refreshEndpoints toggles whether the end endpoint starts a new arrow.
func (b *Bar) refreshEndpoints() {
	if b.el.endPoint == render.Root {
		return
	}
	c := b.chart
	clickable := len(b.possibleDependencies()) > 0
	if clickable == b.el.endpointClickable {
		return
	}
	b.el.endpointClickable = clickable
	if clickable {
		c.register(b.el.endPoint, target{kind: targetEndpoint, bar: b})
		c.backend.Set(b.el.endPoint, render.AddClass("clickable"), render.Interactive(true))
		return
	}
	c.unregister(b.el.endPoint)
	c.backend.Set(b.el.endPoint, render.RemoveClass("clickable"), render.RemoveClass("active"), render.Interactive(false))
}

func (b *Bar) setEndpointActive(active bool) {
	if b.el.endPoint == render.Root {
		return
	}
	if active {
		b.chart.backend.Set(b.el.endPoint, render.AddClass("active"))
		return
	}
	b.chart.backend.Set(b.el.endPoint, render.RemoveClass("active"))
}

func (b *Bar) updateArrows() {
	for _, a := range b.from {
		a.update()
	}
	for _, a := range b.to {
		a.update()
	}
	b.refreshEndpoints()
}

// update redraws and syncs the task to the drawn geometry.
func (b *Bar) update() {
	b.draw()
	b.updateTaskData()
}

// updateTaskData writes the drawn geometry back into the task. Dates are
// only re-derived when an edge actually moved, so untouched tasks keep
// their exact input dates.
func (b *Bar) updateTaskData() {
	c := b.chart
	s := &b.st
	if s.x1 != s.dateX1 || s.x2 != s.dateX2 {
		c.model.SetDates(b.task, c.settings.DateFromPosition(s.x1), c.settings.DateFromPosition(s.x2))
		s.dateX1, s.dateX2 = s.x1, s.x2
	}
	b.task.Raw.Progress = s.progress
	if s.row != s.laneRow {
		b.task.Raw.Swimlanes = b.row().swimlanes()
		s.laneRow = s.row
	}
}

func (b *Bar) setY(y float64) {
	if b.st.y == y {
		return
	}
	b.st.y = y
	b.update()
	b.updateArrows()
}

func (b *Bar) moveY(offset float64) {
	b.setY(b.st.y + offset)
}

func (b *Bar) snapshot() {
	b.snap = &barSnapshot{
		state:      b.st.clone(),
		raw:        b.task.Raw.Clone(),
		start:      b.task.StartDate,
		end:        b.task.EndDate,
		milestones: slices.Clone(b.task.MilestoneDates),
	}
}

func (b *Bar) restore() {
	if b.snap == nil {
		return
	}
	b.st = b.snap.state.clone()
	b.task.Raw = b.snap.raw.Clone()
	b.task.StartDate, b.task.EndDate = b.snap.start, b.snap.end
	b.task.MilestoneDates = slices.Clone(b.snap.milestones)
	b.snap = nil
	b.draw()
}

func (b *Bar) commit() {
	b.snap = nil
	if b.el.progressText != render.Root {
		b.chart.backend.SetVisible(b.el.progressText, false)
	}
	b.milestones.endDrag()
}

func (b *Bar) rowChanged() bool {
	return b.snap != nil && b.snap.state.row != b.st.row
}

func (b *Bar) progressChanged() bool {
	return b.snap != nil && b.snap.state.progress != b.st.progress
}

func (b *Bar) datesChanged() bool {
	if b.snap == nil {
		return false
	}
	prev := b.snap.state
	return prev.x1 != b.st.x1 || prev.x2 != b.st.x2 || !slices.Equal(prev.milestoneXs, b.st.milestoneXs)
}

// sideHandlesOverlap reports whether the bar is too narrow to tell the
// resize handles apart.
func (b *Bar) sideHandlesOverlap() bool {
	if b.el.left == render.Root || b.el.right == render.Root {
		return false
	}
	left := b.chart.backend.Bounds(b.el.left)
	right := b.chart.backend.Bounds(b.el.right)
	return right.X <= left.X+left.Width
}

func (b *Bar) showProgressText() {
	if b.el.progressText != render.Root {
		b.chart.backend.SetVisible(b.el.progressText, true)
	}
}

// resizeLeft moves the start edge to the tick nearest the dragged position.
// x is the pointer offset since the drag started, dx the last step.
func (b *Bar) resizeLeft(dx, x float64, update bool) {
	if dx == 0 || b.snap == nil {
		return
	}
	s := &b.st
	before := s.x1
	if b.snap.state.x1+x >= s.x2 {
		return
	}
	nearest := b.chart.settings.NearestTick(b.snap.state.x1 + x).X
	if (dx > 0 && nearest < s.x1) || (dx < 0 && nearest > s.x1) {
		return
	}
	if s.x1 == nearest || s.x2-nearest <= 1 {
		return
	}
	diff := nearest - s.x1
	s.x1 = nearest
	b.lockStart(before, s.x2)
	if update {
		b.update()
		b.emitDragging(diff, 0, false)
	}
}

// resizeRight is resizeLeft for the end edge. With locking on, a pure
// resize cannot push the end past the earliest start of what depends on
// this task.
func (b *Bar) resizeRight(dx, x float64, update bool) {
	if dx == 0 || b.snap == nil {
		return
	}
	s := &b.st
	if b.snap.state.x2+x <= s.x1 {
		return
	}
	nearest := b.chart.settings.NearestTick(b.snap.state.x2 + x).X
	if (dx > 0 && nearest < s.x2) || (dx < 0 && nearest > s.x2) {
		return
	}
	if update {
		if limit, ok := b.endLimit(); ok && nearest > limit {
			nearest = limit
		}
	}
	if s.x2 == nearest || nearest-s.x1 <= 1 {
		return
	}
	diff := nearest - s.x2
	s.x2 = nearest
	if update {
		b.update()
		b.emitDragging(0, diff, false)
	}
}

func (b *Bar) resizeProgress(dx, x float64) {
	if dx == 0 || b.snap == nil || !b.canProgress() {
		return
	}
	bw := b.barWidth()
	p := math.Max(math.Round((x+bw*b.snap.state.progress/100)/bw*100), 0)
	p, ok := progressInRange(p, dx, b.task.Raw.MinProgress, b.task.Raw.MaxProgress)
	if !ok {
		return
	}
	if (dx > 0 && p > b.st.progress) || (dx < 0 && p < b.st.progress) {
		diff := p - b.st.progress
		b.st.progress = p
		b.task.Raw.Progress = p
		b.draw()
		b.chart.onBarProgressDragging(b, diff)
		b.row().onBarDragging(b, true)
	}
}

// progressInRange keeps a dragged progress inside its bounds. A value
// already outside may still move towards the range.
func progressInRange(p, dx float64, minP, maxP *float64) (float64, bool) {
	lo, hi := 0.0, math.MaxFloat64
	if minP != nil {
		lo = *minP
	}
	if maxP != nil {
		hi = *maxP
	}
	switch {
	case p >= lo && p <= hi:
		return p, true
	case dx > 0 && p < lo:
		return p, true
	case dx > 0 && p > hi:
		return hi, true
	case dx < 0 && p > hi:
		return p, true
	case dx < 0 && p < lo:
		return lo, true
	}
	return 0, false
}

// dragWrapper moves the whole bar, horizontally by ticks and vertically
// between swimlane rows.
func (b *Bar) dragWrapper(g *gesture, dx, dy, x, y float64) {
	if b.canMoveVertically() && dy != 0 {
		g.vertical = b.chart.dragVertically(b, dy, b.snap.state.y+y) || g.vertical
	}
	s := &b.st
	switch {
	case dx < 0:
		if !b.canMove() {
			return
		}
		before := s.x1
		b.resizeLeft(dx, x, false)
		if diff := s.x1 - before; diff != 0 {
			s.x2 += diff
			b.update()
			b.emitDragging(diff, diff, g.vertical)
		}
	case dx > 0:
		if !b.canMove() {
			return
		}
		before := s.x2
		b.resizeRight(dx, x, false)
		if diff := s.x2 - before; diff != 0 {
			s.x1 += diff
			b.update()
			b.emitDragging(diff, diff, g.vertical)
		}
	default:
		if b.canMoveVertically() {
			b.updateTaskData()
			b.emitDragging(0, 0, g.vertical)
		}
	}
}

func (b *Bar) emitDragging(dx1, dx2 float64, keepY bool) {
	b.chart.onBarDragging(b, dx1, dx2)
	b.row().onBarDragging(b, keepY)
	b.updateArrows()
}

// dragBar shifts the bar along with another instance or a dependency.
func (b *Bar) dragBar(dx1, dx2 float64) {
	left, right := 0.0, 0.0
	if b.canStart() {
		left = dx1
	}
	if b.canEnd() {
		right = dx2
	}
	if left == 0 && right == 0 {
		return
	}
	s := &b.st
	x1, x2 := s.x1, s.x2
	s.x1 += left
	s.x2 += right
	b.lockStart(x1, x2)
	b.update()
	b.updateArrows()
}

func (b *Bar) dragProgress(diff float64) {
	if !b.canProgress() {
		return
	}
	b.st.progress = math.Max(b.st.progress+diff, 0)
	b.task.Raw.Progress = b.st.progress
	b.draw()
}

// lockStart keeps the start from moving before the latest start among
// the tasks this one transitively blocks, when locking is on.
func (b *Bar) lockStart(initialX1, initialX2 float64) {
	c := b.chart
	if !c.opts.LockResize {
		return
	}
	var maxX float64
	for _, id := range b.task.TransitiveParentDependencies {
		if g, ok := c.model.Get(id); ok {
			maxX = math.Max(maxX, c.settings.DistanceFromStart(g.StartDate))
		}
	}
	s := &b.st
	if s.x1 >= maxX {
		return
	}
	if initialX1 >= maxX {
		diff := maxX - s.x1
		s.x1 += diff
		if s.x2 != initialX2 {
			s.x2 += diff
		}
	} else if initialX1 > s.x1 {
		s.x1 = initialX1
		if s.x2 != initialX2 {
			s.x2 = initialX2
		}
	}
}

// endLimit is the earliest start among the transitive dependencies.
func (b *Bar) endLimit() (float64, bool) {
	c := b.chart
	if !c.opts.LockResize {
		return 0, false
	}
	limit, found := math.MaxFloat64, false
	for _, id := range b.task.TransitiveDependencies {
		if g, ok := c.model.Get(id); ok {
			limit = math.Min(limit, c.settings.DistanceFromStart(g.StartDate))
			found = true
		}
	}
	return limit, found
}

func (b *Bar) remove() {
	c := b.chart
	for _, id := range []render.ID{b.el.bar, b.el.outer, b.el.inner, b.el.label, b.el.left, b.el.right, b.el.progress, b.el.endPoint} {
		c.unregister(id)
	}
	b.milestones.unregister()
	c.backend.Remove(b.el.wrapper)
}
