// Package chart is the Gantt engine: it lays tasks out on a time grid,
// draws bars, arrows, milestones and swimlane columns through a rendering
// back end, and turns pointer gestures into task edits reported through
// callbacks.
package chart

import (
	"time"

	appErrors "gantry/internal/errors"
	"gantry/internal/debug"
	"gantry/internal/input"
	"gantry/internal/render"
	"gantry/internal/scale"
	"gantry/internal/swimlane"
	"gantry/internal/task"
)

var log = debug.For("chart")

// Mount is everything a chart needs from its host.
type Mount struct {
	Backend  render.Backend
	Input    input.Source
	Viewport render.Viewport
	// Now defaults to time.Now.
	Now func() time.Time
}

// Callbacks notify the host of edits. Every field is optional.
type Callbacks struct {
	TaskDatesChanged     func(task.Task)
	TaskProgressChanged  func(task.Task)
	TaskSwimlanesChanged func(task.Task)
	TaskCreated          func(task.Task)
	DependencyAdded      func(from, to task.Task)
	DependencyRemoved    func(from, to task.Task)
	SwimlaneResized      func(index int, width float64)
	RowResized           func(index int, height float64)
	ScrollChanged        func(left float64)
	TaskDetail           func(task.Task)
}

// Layers are the top-level groups a chart draws into. The swimlane layer
// uses its own coordinate space starting at x=0; hosts place it left of the
// chart layer.
type Layers struct {
	Swimlanes render.ID
	Chart     render.ID

	grid, date, arrow, bar, handle render.ID
}

// Chart is a mounted Gantt chart. It is not safe for concurrent use; all
// calls and input events must come from one goroutine.
type Chart struct {
	backend  render.Backend
	source   input.Source
	viewport render.Viewport
	now      func() time.Time
	cb       Callbacks

	opts     Options
	model    *task.Model
	lines    []swimlane.Line
	settings Settings

	layers   Layers
	rows     []*Row
	bars     []*Bar
	barsByID map[string]*Bar
	grid     *grid
	lanes    *lanes
	targets  map[render.ID]target

	subs        input.Group
	drag        *gesture
	snapshotted bool
	barCreator  *barCreator
	arrowMaker  *arrowCreator
	selection   *arrowSelection

	scrollSnapshot time.Time
	rendered       bool
}

// New mounts a chart and renders tasks. A missing back end or input source
// is reported as a CodeMissingMount error.
func New(mount Mount, tasks []task.Task, opts Options, cb Callbacks) (*Chart, error) {
	if mount.Backend == nil {
		return nil, appErrors.New(appErrors.CodeMissingMount, "chart mount has no rendering back end", nil)
	}
	if mount.Input == nil {
		return nil, appErrors.New(appErrors.CodeMissingMount, "chart mount has no input source", nil)
	}
	c := &Chart{
		backend:  mount.Backend,
		source:   mount.Input,
		viewport: mount.Viewport,
		now:      mount.Now,
		cb:       cb,
		opts:     opts.Normalize(),
	}
	if c.viewport == nil {
		c.viewport = &render.StaticViewport{}
	}
	if c.now == nil {
		c.now = time.Now
	}

	c.setupTasks(tasks)
	c.setupAndRender()
	c.bindListeners()
	return c, nil
}

// ChangeTasks replaces the task list. The chart is rebuilt when the tasks
// differ from the current ones or when opts changes the layout.
func (c *Chart) ChangeTasks(tasks []task.Task, opts *Options) {
	merged := c.opts
	if opts != nil {
		merged = opts.Normalize()
	}
	if c.model.Changed(tasks) {
		c.refresh(tasks, merged, true)
		return
	}
	c.refresh(c.model.CleanAll(), merged, false)
}

// ChangeOptions replaces the options and rebuilds the chart if they differ.
// It does not merge with the current options: opts passes through Normalize,
// so unset sizes fall back to their defaults or minimums and unset gates are
// off. To change a few fields, pass Options().Merge(partial).
func (c *Chart) ChangeOptions(opts Options) {
	c.refresh(c.model.CleanAll(), opts.Normalize(), false)
}

// ChangeViewMode switches the time scale, keeping the centred date in view.
func (c *Chart) ChangeViewMode(mode scale.ViewMode) {
	if mode == c.opts.ViewMode || !mode.Valid() {
		return
	}
	c.opts.ViewMode = mode
	c.snapshotDate()
	c.setupAndRender()
}

// ScrollToToday centres the viewport on today.
func (c *Chart) ScrollToToday() {
	c.scrollToDate(scale.AddHours(scale.StartOfToday(c.now()), 12))
}

// ScrollTo is called by the host when the user scrolls.
func (c *Chart) ScrollTo(left float64) {
	c.viewport.SetScrollLeft(left)
	c.scrollChanged()
}

// Tasks returns the current tasks with edits applied, one entry per
// rendered instance.
func (c *Chart) Tasks() []task.Task {
	return c.model.CleanAll()
}

// Settings returns a copy of the current layout settings.
func (c *Chart) Settings() Settings {
	return c.settings.clone()
}

// Options returns the options in effect.
func (c *Chart) Options() Options {
	return c.opts
}

// Layers returns the chart's top-level groups.
func (c *Chart) Layers() Layers {
	return c.layers
}

// SwimlaneWidth is the width of the swimlane layer; zero when no task is
// grouped.
func (c *Chart) SwimlaneWidth() float64 {
	if c.lanes == nil || !c.lanes.contains() {
		return 0
	}
	return c.lanes.width()
}

// Size is the width and height of the chart layer.
func (c *Chart) Size() (float64, float64) {
	return c.settings.RowWidth, c.settings.TableHeight()
}

// Busy reports whether a drag or a create gesture is in progress.
func (c *Chart) Busy() bool {
	return c.drag != nil || c.modal()
}

// Close unsubscribes from input and removes everything the chart drew.
func (c *Chart) Close() {
	c.subs.Unsubscribe()
	c.reset()
	c.clear()
}

func (c *Chart) refresh(tasks []task.Task, opts Options, force bool) {
	if !force && c.opts.Equal(opts) {
		return
	}
	c.opts = opts
	c.snapshotDate()
	c.setupTasks(tasks)
	c.setupAndRender()
}

func (c *Chart) setupTasks(tasks []task.Task) {
	c.model = task.NewModel(tasks, c.opts.DateFormat)
	c.lines = swimlane.Lines(c.model.Tasks(), c.opts.SwimlaneInfo, swimlane.DefaultIDGenerator)
}

func (c *Chart) setupAndRender() {
	start := time.Now()
	c.reset()
	c.settings = newSettings(c.opts, c.model, len(c.lines), c.now())
	c.render()
	c.updateSize()
	c.setScrollPosition()
	c.rendered = true
	log.Since("render", start)
}

// reset drops gesture state without restoring anything; used before the
// scene is rebuilt.
func (c *Chart) reset() {
	if c.barCreator != nil {
		c.barCreator.destroy()
	}
	if c.arrowMaker != nil {
		c.arrowMaker.destroy()
	}
	if c.selection != nil {
		c.selection.reset()
	}
	c.drag = nil
	c.snapshotted = false
}

func (c *Chart) clear() {
	if c.layers.Chart != render.Root {
		c.backend.Remove(c.layers.Chart)
	}
	if c.layers.Swimlanes != render.Root {
		c.backend.Remove(c.layers.Swimlanes)
	}
	c.layers = Layers{}
	c.rows = nil
	c.bars = nil
	c.barsByID = make(map[string]*Bar)
	c.targets = make(map[render.ID]target)
	c.grid = nil
	c.lanes = nil
}

func (c *Chart) setupLayers() {
	group := func(parent render.ID, class string) render.ID {
		return c.backend.Create(parent, render.Primitive{Kind: render.KindGroup, Class: []string{class}})
	}
	c.layers.Swimlanes = group(render.Root, "gantt-swimlanes")
	c.layers.Chart = group(render.Root, "gantt")
	c.layers.grid = group(c.layers.Chart, "grid")
	c.layers.date = group(c.layers.Chart, "date")
	c.layers.arrow = group(c.layers.Chart, "arrow")
	c.layers.bar = group(c.layers.Chart, "bar")
	c.layers.handle = group(c.layers.Chart, "handle")
}

func (c *Chart) render() {
	c.clear()
	c.setupLayers()
	c.renderRows()
	c.renderArrows()
	c.lanes = newLanes(c)
	c.lanes.render()
	c.grid = newGrid(c)
	c.grid.render()
}

func (c *Chart) renderRows() {
	y := c.settings.HeaderHeight
	for i, line := range c.lines {
		r := newRow(c, i, y, line)
		r.render()
		c.rows = append(c.rows, r)
		c.settings.RowHeights[i] = r.height()
		y += r.height()
	}
}

func (c *Chart) renderArrows() {
	for _, b := range c.bars {
		for _, dep := range b.task.Dependencies {
			to, ok := c.barsByID[dep]
			if !ok {
				continue
			}
			a := newArrow(c, b, to)
			a.render()
			b.from = append(b.from, a)
			to.to = append(to.to, a)
		}
		b.refreshEndpoints()
	}
}

func (c *Chart) registerBar(b *Bar) {
	c.bars = append(c.bars, b)
	c.barsByID[b.task.ID] = b
}

// register records what an interactive primitive stands for.
func (c *Chart) register(id render.ID, t target) render.ID {
	c.targets[id] = t
	return id
}

func (c *Chart) unregister(id render.ID) {
	delete(c.targets, id)
}

// modal reports whether a create gesture owns the pointer.
func (c *Chart) modal() bool {
	return c.barCreator != nil || c.arrowMaker != nil
}

func (c *Chart) containsSwimlanes() bool {
	return c.lanes != nil && c.lanes.contains()
}

// sameTaskBars returns every rendered instance of b's task.
func (c *Chart) sameTaskBars(b *Bar) []*Bar {
	var out []*Bar
	for _, id := range c.model.Instances(b.task.TaskID) {
		if other, ok := c.barsByID[id]; ok {
			out = append(out, other)
		}
	}
	if len(out) == 0 {
		return []*Bar{b}
	}
	return out
}

// rowAt returns the row containing y, or nil.
func (c *Chart) rowAt(y float64) *Row {
	for _, r := range c.rows {
		if r.y <= y && r.y+r.height() >= y {
			return r
		}
	}
	return nil
}

// onRowResized propagates a height change of row index to everything
// below it.
func (c *Chart) onRowResized(index int, diff float64) {
	c.settings.RowHeights[index] = c.rows[index].height()
	if c.grid != nil {
		c.grid.updatePositions(index)
	}
	for _, r := range c.rows[index+1:] {
		r.moveY(diff)
	}
	if c.lanes != nil {
		c.lanes.lineResized(index, diff)
	}
	c.updateSize()
}

func (c *Chart) clean(g *task.GanttTask) task.Task {
	return c.model.Clean(g)
}
