package chart

import (
	"slices"
	"strconv"

	"gantry/internal/input"
	"gantry/internal/render"
	"gantry/internal/route"
)

// barCreator draws a new task between the tick under the double-click and
// the tick under the pointer. The next click finishes it.
type barCreator struct {
	chart *Chart
	row   *Row

	initialX, currentX float64
	y                  float64

	wrapper, rect render.ID
	subs          input.Group
}

func (c *Chart) startBarCreator(r *Row, x, y float64) {
	if c.modal() {
		return
	}
	tick := c.settings.NearestTick(x)
	bc := &barCreator{chart: c, row: r, initialX: tick.X, currentX: tick.X, y: r.newBarY(y)}
	bc.wrapper = c.backend.Create(c.layers.bar, render.Primitive{Kind: render.KindGroup, Class: []string{"bar-wrapper", "disabled"}})
	bc.rect = c.backend.Create(bc.wrapper, render.Primitive{
		Kind: render.KindRect, Class: []string{"bar"}, CornerRadius: c.opts.BarCornerRadius,
		X: bc.initialX, Y: bc.y, Height: c.opts.BarHeight,
	})
	bc.subs.Add(c.source, input.PointerMove, bc.onMove)
	bc.subs.Add(c.source, input.Click, bc.onClick)
	c.barCreator = bc
	c.snapshotAll()
	log.Logf("create bar started in row %d at %.0f", r.index, bc.initialX)
}

func (bc *barCreator) startX() float64 { return min(bc.currentX, bc.initialX) }
func (bc *barCreator) endX() float64   { return max(bc.currentX, bc.initialX) }

func (bc *barCreator) onMove(ev input.Event) {
	c := bc.chart
	previous := bc.currentX
	bc.currentX = c.settings.NearestTick(ev.X).X
	if previous == bc.currentX {
		return
	}
	c.backend.Set(bc.rect, render.X(bc.startX()), render.Width(bc.endX()-bc.startX()))
	bc.row.onNewBarDragging(bc.startX(), bc.endX(), bc.y)
}

func (bc *barCreator) onClick(input.Event) {
	c := bc.chart
	bc.destroy()
	x1, x2 := bc.startX(), bc.endX()
	if x1 == x2 {
		c.restoreAll()
		c.commitAll()
		return
	}
	g := c.model.Create("", c.settings.DateFromPosition(x1), c.settings.DateFromPosition(x2), bc.row.swimlanes())
	bc.row.createBar(g, bc.y)
	c.commitAll()
	log.Logf("create bar finished: %s", g.ID)
}

func (bc *barCreator) destroy() {
	c := bc.chart
	bc.subs.Unsubscribe()
	if bc.wrapper != render.Root {
		c.backend.Remove(bc.wrapper)
		bc.wrapper, bc.rect = render.Root, render.Root
	}
	if c.barCreator == bc {
		c.barCreator = nil
	}
}

// arrowCreator follows the pointer from a bar's end endpoint until a click
// either lands on a bar the task may depend on or dismisses it.
type arrowCreator struct {
	chart    *Chart
	from     *Bar
	possible []*Bar

	fromBars, selected []*Bar
	paths              []render.ID
	subs               input.Group
}

func (c *Chart) startArrowCreator(b *Bar) {
	if c.modal() {
		return
	}
	ac := &arrowCreator{chart: c, from: b}
	for _, id := range b.possibleDependencies() {
		if o, ok := c.barsByID[id]; ok {
			ac.possible = append(ac.possible, o)
		}
	}
	b.setEndpointActive(true)
	ep := b.endpoints()
	ac.show([]string{dragPath(ep.EndX, ep.CY(), ep.EndX, ep.CY())}, nil)
	ac.subs.Add(c.source, input.PointerMove, ac.onMove)
	ac.subs.Add(c.source, input.Click, ac.onClick)
	c.arrowMaker = ac
	log.Logf("create arrow started from %s", b.task.TaskID)
}

func dragPath(x1, y1, x2, y2 float64) string {
	n := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return "M " + n(x1) + " " + n(y1) + " L " + n(x2) + " " + n(y2)
}

func (ac *arrowCreator) onMove(ev input.Event) {
	c := ac.chart
	ac.selected = ac.barsAt(ev.X, ev.Y)
	if len(ac.selected) == 0 {
		ac.fromBars = nil
		ep := ac.from.endpoints()
		seg := [][2]render.Point{{{X: ep.EndX, Y: ep.CY()}, {X: ev.X, Y: ev.Y}}}
		ac.show([]string{dragPath(ep.EndX, ep.CY(), ev.X, ev.Y)}, [][][2]render.Point{seg})
		return
	}
	ac.fromBars = c.sameTaskBars(ac.from)
	var ds []string
	var segs [][][2]render.Point
	for _, f := range ac.fromBars {
		for _, t := range ac.selected {
			p := route.Compute(f.endpoints(), t.endpoints(), c.opts.ArrowCurve, c.opts.BarHeight, c.opts.Padding)
			ds = append(ds, p.String())
			segs = append(segs, segments(p))
		}
	}
	ac.show(ds, segs)
}

// barsAt returns every instance of the candidate task under the point.
func (ac *arrowCreator) barsAt(x, y float64) []*Bar {
	i := slices.IndexFunc(ac.possible, func(b *Bar) bool {
		s := b.st
		return s.x1 <= x && s.x2 >= x && s.y <= y && s.y+b.height() >= y
	})
	if i < 0 {
		return nil
	}
	taskID := ac.possible[i].task.TaskID
	var out []*Bar
	for _, b := range ac.possible {
		if b.task.TaskID == taskID {
			out = append(out, b)
		}
	}
	return out
}

// show draws one preview path per entry, reusing elements and blanking
// the unused ones.
func (ac *arrowCreator) show(ds []string, segs [][][2]render.Point) {
	c := ac.chart
	for i, d := range ds {
		var s [][2]render.Point
		if i < len(segs) {
			s = segs[i]
		}
		if i >= len(ac.paths) {
			ac.paths = append(ac.paths, c.backend.Create(c.layers.arrow, render.Primitive{Kind: render.KindPath, Class: []string{"arrow"}}))
		}
		c.backend.Set(ac.paths[i], render.Path(d, s))
	}
	for _, id := range ac.paths[len(ds):] {
		c.backend.Set(id, render.D(""))
	}
}

func (ac *arrowCreator) onClick(input.Event) {
	c := ac.chart
	from, selected := ac.fromBars, ac.selected
	if len(from) == 0 {
		from = []*Bar{ac.from}
	}
	ac.destroy()
	if len(selected) > 0 {
		c.createArrows(from, selected)
	}
}

func (ac *arrowCreator) destroy() {
	c := ac.chart
	ac.subs.Unsubscribe()
	for _, id := range ac.paths {
		c.backend.Remove(id)
	}
	ac.paths = nil
	ac.from.setEndpointActive(false)
	if c.arrowMaker == ac {
		c.arrowMaker = nil
	}
	log.Logf("create arrow finished")
}
