package chart

import (
	"gantry/internal/render"
	"gantry/internal/route"
)

const deleteIconSize = 17

// Arrow is a drawn dependency: from depends on to.
type Arrow struct {
	chart    *Chart
	from, to *Bar
	path     route.Path
	snap     route.Path

	el, hit render.ID
}

func newArrow(c *Chart, from, to *Bar) *Arrow {
	return &Arrow{chart: c, from: from, to: to}
}

func (a *Arrow) compute() route.Path {
	o := a.chart.opts
	return route.Compute(a.from.endpoints(), a.to.endpoints(), o.ArrowCurve, o.BarHeight, o.Padding)
}

// clickable arrows can be selected and deleted.
func (a *Arrow) clickable() bool {
	return a.from.task.Raw.Editable && a.to.task.Raw.Editable
}

func (a *Arrow) render() {
	c := a.chart
	a.path = a.compute()
	a.el = c.backend.Create(c.layers.arrow, render.Primitive{Kind: render.KindPath, Class: []string{"arrow"}})
	if a.clickable() {
		id := c.backend.Create(c.layers.arrow, render.Primitive{
			Kind: render.KindPath, Class: []string{"arrow-clickable"}, Interactive: true,
		})
		a.hit = c.register(id, target{kind: targetArrow, arrow: a})
	}
	a.draw()
}

func (a *Arrow) draw() {
	attr := render.Path(a.path.String(), segments(a.path))
	a.chart.backend.Set(a.el, attr)
	if a.hit != render.Root {
		a.chart.backend.Set(a.hit, attr)
	}
}

func segments(p route.Path) [][2]render.Point {
	segs := p.Segments()
	out := make([][2]render.Point, len(segs))
	for i, s := range segs {
		out[i] = [2]render.Point{{X: s[0].X, Y: s[0].Y}, {X: s[1].X, Y: s[1].Y}}
	}
	return out
}

// update re-routes the arrow after either bar moved.
func (a *Arrow) update() {
	a.path = a.compute()
	a.draw()
}

func (a *Arrow) setActive(active bool) {
	if active {
		a.chart.backend.Set(a.el, render.AddClass("active"))
		return
	}
	a.chart.backend.Set(a.el, render.RemoveClass("active"))
}

func (a *Arrow) snapshot() {
	a.snap = a.path
}

func (a *Arrow) restore() {
	if a.snap == nil {
		return
	}
	if a.snap.String() != a.path.String() {
		a.path = a.snap
		a.draw()
	}
	a.snap = nil
}

func (a *Arrow) commit() {
	a.snap = nil
}

func (a *Arrow) remove() {
	c := a.chart
	c.unregister(a.hit)
	c.backend.Remove(a.el)
	if a.hit != render.Root {
		c.backend.Remove(a.hit)
	}
}

// arrowSelection is a clicked arrow showing its delete icon.
type arrowSelection struct {
	chart *Chart
	arrow *Arrow
	icon  render.ID
}

func (c *Chart) selectArrow(a *Arrow, x, y float64) {
	c.setArrowActive(a.from, a.to, true)
	icon := c.backend.Create(c.layers.handle, render.Primitive{
		Kind: render.KindRect, Class: []string{"icon-delete"},
		X: x + 10, Y: y + 5, Width: deleteIconSize, Height: deleteIconSize, Interactive: true,
	})
	c.register(icon, target{kind: targetDeleteIcon, arrow: a})
	c.selection = &arrowSelection{chart: c, arrow: a, icon: icon}
	log.Logf("arrow %s -> %s selected", a.from.task.TaskID, a.to.task.TaskID)
}

func (s *arrowSelection) reset() {
	c := s.chart
	c.unregister(s.icon)
	c.backend.Remove(s.icon)
	c.setArrowActive(s.arrow.from, s.arrow.to, false)
	if c.selection == s {
		c.selection = nil
	}
}

func (s *arrowSelection) delete() {
	s.reset()
	s.chart.deleteArrow(s.arrow.from, s.arrow.to)
}
