package chart

import (
	"gantry/internal/input"
)

type targetKind int

const (
	targetNone targetKind = iota
	targetGrid
	targetBar
	targetEndpoint
	targetHandleLeft
	targetHandleRight
	targetProgress
	targetMilestone
	targetArrow
	targetDeleteIcon
	targetColumnHandle
	targetRowHandle
)

// target is what an interactive primitive stands for.
type target struct {
	kind   targetKind
	bar    *Bar
	arrow  *Arrow
	column *column
	// index is the milestone or row the target belongs to.
	index int
}

// gesture is one pointer drag from down to up.
type gesture struct {
	target         target
	startX, startY float64
	lastX, lastY   float64

	// vertical is set once the bar left its row or sub-line.
	vertical bool
	// overlap marks side handles too close to tell apart; side is then
	// decided by the first horizontal step.
	overlap bool
	side    targetKind
}

func (c *Chart) bindListeners() {
	c.subs.Add(c.source, input.PointerDown, c.onPointerDown)
	c.subs.Add(c.source, input.PointerMove, c.onPointerMove)
	for _, k := range []input.Kind{input.PointerUp, input.PointerLeave, input.PointerCancel} {
		c.subs.Add(c.source, k, func(input.Event) { c.endDrag() })
	}
	c.subs.Add(c.source, input.KeyUp, c.onKeyUp)
	c.subs.Add(c.source, input.Click, c.onClick)
	c.subs.Add(c.source, input.DoubleClick, c.onDoubleClick)
}

func (c *Chart) onPointerDown(ev input.Event) {
	if c.modal() {
		return
	}
	t := c.targets[ev.Target]
	g := &gesture{target: t, startX: ev.X, startY: ev.Y, lastX: ev.X, lastY: ev.Y}
	c.drag = g
	c.snapshotAll()

	switch t.kind {
	case targetHandleLeft, targetHandleRight:
		g.overlap = t.bar.sideHandlesOverlap()
	case targetProgress:
		t.bar.showProgressText()
	case targetMilestone:
		t.bar.milestones.startDrag(t.index)
	}
}

func (c *Chart) onPointerMove(ev input.Event) {
	g := c.drag
	if g == nil || c.modal() {
		return
	}
	dx, dy := ev.X-g.lastX, ev.Y-g.lastY
	x, y := ev.X-g.startX, ev.Y-g.startY
	g.lastX, g.lastY = ev.X, ev.Y

	t := g.target
	switch t.kind {
	case targetHandleLeft, targetHandleRight:
		kind := t.kind
		if g.overlap {
			if g.side == targetNone {
				switch {
				case dx < 0:
					g.side = targetHandleLeft
				case dx > 0:
					g.side = targetHandleRight
				default:
					return
				}
			}
			kind = g.side
		}
		if kind == targetHandleLeft {
			t.bar.resizeLeft(dx, x, true)
		} else {
			t.bar.resizeRight(dx, x, true)
		}
	case targetProgress:
		t.bar.resizeProgress(dx, x)
	case targetMilestone:
		t.bar.milestones.resize(dx, x)
	case targetBar:
		t.bar.dragWrapper(g, dx, dy, x, y)
	case targetColumnHandle:
		t.column.resize(x)
	case targetRowHandle:
		if t.index < len(c.rows) {
			c.rows[t.index].resizeExtra(y)
		}
	}
}

// endDrag reports what the gesture changed and keeps it.
func (c *Chart) endDrag() {
	if c.modal() {
		return
	}
	c.drag = nil
	if !c.snapshotted {
		return
	}
	c.checkTasksChanged()
	for _, r := range c.rows {
		if r.extraChanged() {
			log.Logf("row %d resized to %.0f", r.index, r.height())
			if c.cb.RowResized != nil {
				c.cb.RowResized(r.index, r.height())
			}
		}
	}
	c.commitAll()
}

func (c *Chart) onKeyUp(ev input.Event) {
	if ev.Key == input.KeyEscape {
		c.cancel()
	}
}

// cancel drops any create gesture and puts everything back the way it was
// when the gesture started.
func (c *Chart) cancel() {
	if c.barCreator != nil {
		c.barCreator.destroy()
	}
	if c.arrowMaker != nil {
		c.arrowMaker.destroy()
	}
	if !c.snapshotted {
		c.drag = nil
		return
	}
	c.restoreAll()
	log.Logf("gesture cancelled")
	c.endDrag()
}

func (c *Chart) snapshotAll() {
	for _, b := range c.bars {
		b.snapshot()
		for _, a := range b.from {
			a.snapshot()
		}
	}
	for _, r := range c.rows {
		r.snapshot()
	}
	c.lanes.snapshot()
	c.grid.snapshot()
	c.snapshotted = true
}

func (c *Chart) restoreAll() {
	for _, r := range c.rows {
		r.restore()
	}
	for _, b := range c.bars {
		b.restore()
	}
	for _, b := range c.bars {
		for _, a := range b.from {
			a.restore()
		}
		b.refreshEndpoints()
	}
	c.lanes.restore()
	c.grid.restore()
	c.updateSize()
}

func (c *Chart) commitAll() {
	for _, b := range c.bars {
		b.commit()
		for _, a := range b.from {
			a.commit()
		}
	}
	for _, r := range c.rows {
		r.commit()
	}
	c.lanes.commit()
	c.grid.commit()
	c.snapshotted = false
}

func (c *Chart) onClick(ev input.Event) {
	if c.modal() {
		return
	}
	t := c.targets[ev.Target]
	if s := c.selection; s != nil {
		if t.kind == targetDeleteIcon {
			s.delete()
			return
		}
		previous := s.arrow
		s.reset()
		if t.kind == targetArrow && t.arrow != previous {
			c.selectArrow(t.arrow, ev.X, ev.Y)
		}
		return
	}
	switch t.kind {
	case targetArrow:
		c.selectArrow(t.arrow, ev.X, ev.Y)
	case targetEndpoint:
		if len(t.bar.possibleDependencies()) > 0 {
			c.startArrowCreator(t.bar)
		}
	}
}

func (c *Chart) onDoubleClick(ev input.Event) {
	if c.modal() {
		return
	}
	t := c.targets[ev.Target]
	switch t.kind {
	case targetGrid:
		if !c.opts.CreateTasks {
			return
		}
		if r := c.rowAt(ev.Y); r != nil {
			c.startBarCreator(r, ev.X, ev.Y)
		}
	case targetBar:
		if c.cb.TaskDetail != nil {
			c.cb.TaskDetail(c.clean(t.bar.task))
		}
	}
}
