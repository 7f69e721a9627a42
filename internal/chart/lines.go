package chart

import (
	"slices"

	"gantry/internal/task"
)

// onBarDragging carries a bar's horizontal move over to the other
// instances of its task and, when locked, to everything depending on it.
func (c *Chart) onBarDragging(b *Bar, dx1, dx2 float64) {
	same := c.otherInstances(b)
	moved := slices.Clone(same)
	if c.opts.LockResize && len(b.task.TransitiveDependencies) > 0 {
		c.dragBars(same, dx1, dx2)

		var deps []string
		for _, id := range b.task.TransitiveDependencies {
			if !slices.Contains(same, id) {
				deps = append(deps, id)
			}
		}
		moved = append(moved, deps...)
		depDx2 := dx2
		switch {
		case dx1 == 0:
			depDx2 = 0
		case dx2 == 0:
			depDx2 = dx1
		}
		c.dragBars(deps, dx1, depDx2)
	} else {
		c.dragBars(same, dx1, dx2)
	}
	c.checkAfterBarDragging(b, moved)
}

func (c *Chart) onBarProgressDragging(b *Bar, diff float64) {
	same := c.otherInstances(b)
	for _, id := range same {
		if o, ok := c.barsByID[id]; ok {
			o.dragProgress(diff)
		}
	}
	c.checkAfterBarDragging(b, same)
}

func (c *Chart) otherInstances(b *Bar) []string {
	var out []string
	for _, id := range c.model.Instances(b.task.TaskID) {
		if id != b.task.ID {
			out = append(out, id)
		}
	}
	return out
}

// dragBars shifts the bars with the given ids, in row order.
func (c *Chart) dragBars(ids []string, dx1, dx2 float64) {
	if len(ids) == 0 {
		return
	}
	for _, r := range c.rows {
		for _, b := range r.bars() {
			if slices.Contains(ids, b.task.ID) {
				b.dragBar(dx1, dx2)
			}
		}
	}
}

// checkAfterBarDragging re-packs every other row holding a moved bar.
func (c *Chart) checkAfterBarDragging(b *Bar, moved []string) {
	if len(moved) == 0 {
		return
	}
	for _, r := range c.rows {
		if r.index == b.st.row {
			continue
		}
		for _, o := range r.bars() {
			if slices.Contains(moved, o.task.ID) {
				r.onBarDragging(o, false)
				break
			}
		}
	}
}

// dragVertically moves b into the row under y, or to another sub-line of
// its own row. It reports whether the bar moved.
func (c *Chart) dragVertically(b *Bar, dy, y float64) bool {
	var to *Row
	last := len(c.rows) - 1
	for i, r := range c.rows {
		if (i == 0 && y <= r.y) || (i == last && y >= r.y+r.height()) || (r.y <= y && r.y+r.height() >= y) {
			to = r
			break
		}
	}
	if to == nil {
		return false
	}

	previousY := b.st.y
	newY := to.newBarY(y)
	changed := false
	if to == b.row() {
		to.updateBarLine(b, newY)
	} else {
		if dy < 0 && to.someBarOverflows(b, newY) {
			newY = to.nextLineY(newY)
		}
		b.row().removeBar(b, true)
		to.addBar(b, newY)
		changed = true
	}
	if changed || previousY != newY {
		c.reassignBar(b, to, newY)
		return true
	}
	return false
}

// reassignBar is the single place a bar changes its owning row.
func (c *Chart) reassignBar(b *Bar, r *Row, y float64) {
	if !b.canMoveVertically() {
		return
	}
	b.st.row = r.index
	b.setY(y)
}

// checkTasksChanged notifies at most once per task: a swimlane move wins
// over a progress change, which wins over a date change.
func (c *Chart) checkTasksChanged() {
	emitted := make(map[string]bool)
	for _, b := range c.bars {
		if emitted[b.task.TaskID] {
			continue
		}
		var notify func(task.Task)
		switch {
		case b.rowChanged():
			notify = c.cb.TaskSwimlanesChanged
		case b.progressChanged():
			notify = c.cb.TaskProgressChanged
		case b.datesChanged():
			notify = c.cb.TaskDatesChanged
		default:
			continue
		}
		emitted[b.task.TaskID] = true
		log.Logf("task %s changed", b.task.TaskID)
		if notify != nil {
			notify(c.clean(b.task))
		}
	}
}

// createArrows makes every from-bar depend on every to-bar.
func (c *Chart) createArrows(from, to []*Bar) {
	if len(from) == 0 || len(to) == 0 {
		return
	}
	for _, f := range from {
		for _, t := range to {
			if !c.model.AddDependency(f.task.ID, t.task.ID) {
				continue
			}
			a := newArrow(c, f, t)
			a.render()
			f.from = append(f.from, a)
			t.to = append(t.to, a)
			t.refreshEndpoints()
		}
		f.refreshEndpoints()
	}
	log.Logf("dependency %s -> %s added", from[0].task.TaskID, to[0].task.TaskID)
	if c.cb.DependencyAdded != nil {
		c.cb.DependencyAdded(c.clean(from[0].task), c.clean(to[0].task))
	}
}

// deleteArrow removes the dependency between two tasks across all their
// instances.
func (c *Chart) deleteArrow(from, to *Bar) {
	toBars := c.sameTaskBars(to)
	for _, f := range c.sameTaskBars(from) {
		for _, t := range toBars {
			c.model.RemoveDependency(f.task.ID, t.task.ID)
			for _, a := range f.from {
				if a.to == t {
					a.remove()
				}
			}
			f.from = slices.DeleteFunc(f.from, func(a *Arrow) bool { return a.to == t })
			t.to = slices.DeleteFunc(t.to, func(a *Arrow) bool { return a.from == f })
			t.refreshEndpoints()
		}
		f.refreshEndpoints()
	}
	log.Logf("dependency %s -> %s removed", from.task.TaskID, to.task.TaskID)
	if c.cb.DependencyRemoved != nil {
		c.cb.DependencyRemoved(c.clean(from.task), c.clean(to.task))
	}
}

func (c *Chart) setArrowActive(from, to *Bar, active bool) {
	toBars := c.sameTaskBars(to)
	for _, f := range c.sameTaskBars(from) {
		for _, a := range f.from {
			if slices.Contains(toBars, a.to) {
				a.setActive(active)
			}
		}
	}
}
