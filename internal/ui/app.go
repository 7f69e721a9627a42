// Package ui is the terminal host of the chart: a Bubble Tea model that
// paints the chart scene into terminal cells and turns mouse and keyboard
// messages into chart input.
package ui

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"gantry/internal/chart"
	"gantry/internal/debug"
	"gantry/internal/input"
	"gantry/internal/render"
	"gantry/internal/scale"
	"gantry/internal/store"
	"gantry/internal/swimlane"
	"gantry/internal/task"
	"gantry/internal/ui/theme"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

var log = debug.For("ui")

const (
	doubleClickWindow = 400 * time.Millisecond
	saveTimeout       = 30 * time.Second
	defaultExportPath = "gantry.svg"

	// bodyTop is the screen row the chart starts on, under the header.
	bodyTop = 1
)

// Config wires an App to its data and its persistence hooks.
type Config struct {
	Store    store.Store
	Document store.Document
	Options  chart.Options
	// Source names the store in the header.
	Source       string
	ExportPath   string
	OutputFormat string
	Version      string
	Now          func() time.Time

	// Optional hooks persisting view preferences.
	SaveViewMode func(scale.ViewMode) error
	SaveTheme    func(string) error
}

// App implements the Bubble Tea model for gantry.
type App struct {
	cfg  Config
	keys KeyMap
	now  func() time.Time

	scene     *render.Scene
	bus       *input.Bus
	viewport  *render.StaticViewport
	chart     *chart.Chart
	recorder  *store.Recorder
	swimlanes []swimlane.Info
	unsynced  []store.Change
	saving    bool

	width, height int
	top           float64
	ready         bool
	quitArmed     bool

	focused  string
	detail   detailPane
	search   searchBar
	showHelp bool

	ptr   pointer
	hover string

	toast    toast
	needTick bool
	ticking  bool
}

type pointer struct {
	layer              render.ID
	pressed            bool
	downCol, downRow   int
	lastClick          time.Time
	clickCol, clickRow int
}

// NewApp mounts a chart for the document. Chart errors are returned as is.
func NewApp(cfg Config) (*App, error) {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.ExportPath == "" {
		cfg.ExportPath = defaultExportPath
	}
	a := &App{
		cfg:       cfg,
		keys:      DefaultKeyMap(),
		now:       cfg.Now,
		scene:     render.NewScene(),
		bus:       input.NewBus(),
		viewport:  &render.StaticViewport{},
		recorder:  store.NewRecorder(cfg.Now),
		swimlanes: slices.Clone(cfg.Document.Swimlanes),
		detail:    newDetailPane(cfg.OutputFormat),
		search:    newSearchBar(),
	}
	callbacks := a.recorder.Wrap(chart.Callbacks{
		TaskDetail: a.openDetail,
		TaskCreated: func(t task.Task) {
			a.focused = t.ID
			a.notify("Created "+t.Name, false)
		},
		DependencyRemoved: func(from, to task.Task) {
			a.notify(fmt.Sprintf("Removed dependency %s → %s", from.Name, to.Name), false)
		},
	})
	c, err := chart.New(chart.Mount{
		Backend:  a.scene,
		Input:    a.bus,
		Viewport: a.viewport,
		Now:      cfg.Now,
	}, cfg.Document.Tasks, cfg.Options, callbacks)
	if err != nil {
		return nil, err
	}
	a.chart = c
	log.Logf("mounted %d tasks, %s view", len(cfg.Document.Tasks), cfg.Options.ViewMode)
	return a, nil
}

func (a *App) Init() tea.Cmd {
	return nil
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := a.update(msg)
	if a.needTick && !a.ticking {
		a.needTick, a.ticking = false, true
		return a, tea.Batch(cmd, scheduleToastTick())
	}
	a.needTick = false
	return a, cmd
}

func (a *App) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.layout()
		if !a.ready {
			a.ready = true
			a.chart.ScrollToToday()
		}
	case tea.KeyMsg:
		return a.handleKey(msg)
	case tea.MouseMsg:
		return a.handleMouse(msg)
	case savedMsg:
		a.saving = false
		if msg.err != nil {
			a.unsynced = append(msg.changes, a.unsynced...)
			log.Logf("save failed: %v", msg.err)
			a.notify(msg.err.Error(), true)
			return nil
		}
		a.notify(fmt.Sprintf("Saved %d changes", len(msg.changes)), false)
	case exportedMsg:
		if msg.err != nil {
			a.notify(msg.err.Error(), true)
			return nil
		}
		a.notify("Exported "+msg.path, false)
	case toastTickMsg:
		if a.toast.visible(a.now()) {
			return scheduleToastTick()
		}
		a.ticking = false
	}
	return nil
}

// Pending is the number of edits not yet saved.
func (a *App) Pending() int {
	return len(a.unsynced) + a.recorder.Pending()
}

// Chart exposes the mounted chart.
func (a *App) Chart() *chart.Chart {
	return a.chart
}

func (a *App) notify(text string, isError bool) {
	d := toastDuration
	if isError {
		d = errorToastDuration
	}
	a.toast = toast{text: text, isError: isError, until: a.now().Add(d)}
	a.needTick = true
}

// layout re-derives the viewport from the window and the swimlane width.
func (a *App) layout() {
	a.viewport.Client = float64(a.plotCols()) * CellWidth
	a.viewport.SetScrollLeft(a.viewport.Left)
	if a.detail.open {
		a.detail.resize(a.detailWidth(), a.bodyRows())
	}
	a.clampTop()
}

func (a *App) bodyRows() int {
	return max(a.height-2, 1)
}

func (a *App) detailWidth() int {
	if !a.detail.open {
		return 0
	}
	return min(max(a.width/3, 30), 60, a.width/2)
}

func (a *App) chartCols() int {
	return max(a.width-a.detailWidth(), 1)
}

func (a *App) laneCols() int {
	w := a.chart.SwimlaneWidth()
	if w <= 0 {
		return 0
	}
	return min(int(math.Ceil(w/CellWidth)), a.chartCols()/2)
}

func (a *App) plotCols() int {
	return max(a.chartCols()-a.laneCols(), 1)
}

func (a *App) window(layer render.ID) Window {
	w := Window{
		Top:  a.top,
		Cols: a.plotCols(),
		Rows: a.bodyRows(),
		Pin:  a.chart.Settings().HeaderHeight,
	}
	if layer == a.chart.Layers().Swimlanes {
		w.Cols = a.laneCols()
		return w
	}
	w.Left = a.viewport.Left
	return w
}

func (a *App) clampTop() {
	_, height := a.chart.Size()
	maxTop := max(height-float64(a.bodyRows())*CellHeight, 0)
	a.top = min(max(a.top, 0), maxTop)
}

func (a *App) scrollBy(dx float64) {
	a.chart.ScrollTo(a.viewport.Left + dx)
}

func (a *App) scrollRows(n int) {
	a.top += float64(n) * a.chart.Settings().DefaultRowHeight
	a.clampTop()
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if a.search.open {
		return a.handleSearchKey(msg)
	}
	if a.showHelp {
		if key.Matches(msg, a.keys.Help, a.keys.Escape, a.keys.Quit) {
			a.showHelp = false
		}
		return nil
	}
	if !key.Matches(msg, a.keys.Quit) {
		a.quitArmed = false
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		if n := a.Pending(); n > 0 && !a.quitArmed {
			a.quitArmed = true
			a.notify(fmt.Sprintf("%d unsaved changes, press q again to quit", n), true)
			return nil
		}
		return tea.Quit
	case key.Matches(msg, a.keys.Escape):
		if a.detail.open && !a.chart.Busy() {
			a.detail.close()
			a.layout()
			return nil
		}
		a.bus.Dispatch(input.Event{Kind: input.KeyUp, Key: input.KeyEscape})
	case key.Matches(msg, a.keys.Help):
		a.showHelp = true
	case key.Matches(msg, a.keys.Left):
		a.scrollBy(-4 * CellWidth)
	case key.Matches(msg, a.keys.Right):
		a.scrollBy(4 * CellWidth)
	case key.Matches(msg, a.keys.PageLeft):
		a.scrollBy(-a.viewport.Client * 0.8)
	case key.Matches(msg, a.keys.PageRight):
		a.scrollBy(a.viewport.Client * 0.8)
	case key.Matches(msg, a.keys.Up):
		a.scrollRows(-1)
	case key.Matches(msg, a.keys.Down):
		a.scrollRows(1)
	case key.Matches(msg, a.keys.Today):
		a.chart.ScrollToToday()
	case key.Matches(msg, a.keys.ZoomIn):
		a.setViewMode(a.chart.Options().ViewMode.Prev())
	case key.Matches(msg, a.keys.ZoomOut):
		a.setViewMode(a.chart.Options().ViewMode.Next())
	case key.Matches(msg, a.keys.Theme):
		name := theme.Cycle()
		if a.cfg.SaveTheme != nil {
			if err := a.cfg.SaveTheme(name); err != nil {
				a.notify(err.Error(), true)
				return nil
			}
		}
		a.notify("Theme: "+name, false)
	case key.Matches(msg, a.keys.Detail):
		a.toggleDetail()
	case key.Matches(msg, a.keys.Copy):
		a.copyFocused()
	case key.Matches(msg, a.keys.Save):
		return a.save()
	case key.Matches(msg, a.keys.Export):
		return exportCmd(a.cfg.ExportPath, a.scene, a.chart)
	case key.Matches(msg, a.keys.Search):
		a.search.show(a.chart.Tasks())
	}
	return nil
}

func (a *App) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.keys.Escape):
		a.search.close()
	case key.Matches(msg, a.keys.Enter):
		if t, ok := a.search.selected(); ok {
			a.jumpTo(t)
		}
		a.search.close()
	case msg.Type == tea.KeyUp || msg.Type == tea.KeyCtrlP:
		a.search.move(-1)
	case msg.Type == tea.KeyDown || msg.Type == tea.KeyCtrlN:
		a.search.move(1)
	default:
		var cmd tea.Cmd
		a.search.input, cmd = a.search.input.Update(msg)
		a.search.refresh()
		return cmd
	}
	return nil
}

func (a *App) setViewMode(mode scale.ViewMode) {
	a.chart.ChangeViewMode(mode)
	a.clampTop()
	if a.cfg.SaveViewMode != nil {
		if err := a.cfg.SaveViewMode(mode); err != nil {
			a.notify(err.Error(), true)
			return
		}
	}
	a.notify("View: "+mode.String(), false)
}

// jumpTo scrolls so the task's first bar sits near the top left of the
// plot and focuses it.
func (a *App) jumpTo(t task.Task) {
	a.focused = t.ID
	opts := a.chart.Options()
	if start, ok := scale.ParseDate(t.Start, opts.DateFormat); ok {
		x := a.chart.Settings().DistanceFromStart(start)
		a.chart.ScrollTo(x - a.viewport.Client/4)
	}
	for _, id := range a.scene.FindByClass("bar-label") {
		p, _ := a.scene.Get(id)
		if p.Text != t.Name || !a.scene.Visible(id) {
			continue
		}
		pin := a.chart.Settings().HeaderHeight
		a.top = p.Y - pin - CellHeight
		a.clampTop()
		break
	}
}

func (a *App) findTask(id string) (task.Task, bool) {
	for _, t := range a.chart.Tasks() {
		if t.ID == id {
			return t, true
		}
	}
	return task.Task{}, false
}

func (a *App) openDetail(t task.Task) {
	a.focused = t.ID
	a.detail.show(t, max(a.width/3, 30), a.bodyRows())
	a.layout()
}

func (a *App) toggleDetail() {
	if a.detail.open {
		a.detail.close()
		a.layout()
		return
	}
	t, ok := a.findTask(a.focused)
	if !ok {
		a.notify("Double-click a bar or search with / to pick a task", true)
		return
	}
	a.openDetail(t)
}

func (a *App) copyFocused() {
	if a.focused == "" {
		a.notify("No task selected", true)
		return
	}
	if err := clipboard.WriteAll(a.focused); err != nil {
		a.notify("Clipboard unavailable: "+err.Error(), true)
		return
	}
	a.notify(fmt.Sprintf("Copied '%s' to clipboard.", a.focused), false)
}

// save drains recorded edits and syncs the current tasks to the store in
// the background. Failed changes are queued for the next save.
func (a *App) save() tea.Cmd {
	if a.cfg.Store == nil {
		a.notify("No store configured", true)
		return nil
	}
	if a.saving {
		return nil
	}
	changes := append(a.unsynced, a.recorder.Drain()...)
	a.unsynced = nil
	a.swimlanes = store.ApplySwimlaneWidths(a.swimlanes, changes)
	doc := store.Document{
		ViewMode:  a.chart.Options().ViewMode.String(),
		Swimlanes: a.swimlanes,
		Tasks:     a.chart.Tasks(),
	}
	a.saving = true
	s := a.cfg.Store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		return savedMsg{changes: changes, err: store.Sync(ctx, s, doc, changes)}
	}
}

func (a *App) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if a.search.open || a.showHelp || !a.ready {
		return nil
	}
	if a.detail.open && msg.X >= a.chartCols() && !a.ptr.pressed {
		var cmd tea.Cmd
		a.detail.viewport, cmd = a.detail.viewport.Update(msg)
		return cmd
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if msg.Shift {
			a.scrollBy(-4 * CellWidth)
		} else {
			a.scrollRows(-1)
		}
		return nil
	case tea.MouseButtonWheelDown:
		if msg.Shift {
			a.scrollBy(4 * CellWidth)
		} else {
			a.scrollRows(1)
		}
		return nil
	case tea.MouseButtonWheelLeft:
		a.scrollBy(-4 * CellWidth)
		return nil
	case tea.MouseButtonWheelRight:
		a.scrollBy(4 * CellWidth)
		return nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return nil
		}
		layer, ok := a.layerAt(msg.X, msg.Y)
		if !ok {
			return nil
		}
		a.ptr.layer, a.ptr.pressed = layer, true
		a.ptr.downCol, a.ptr.downRow = msg.X, msg.Y
		a.dispatch(input.PointerDown, msg.X, msg.Y)
	case tea.MouseActionMotion:
		if !a.ptr.pressed {
			layer, ok := a.layerAt(msg.X, msg.Y)
			if !ok {
				a.hover = ""
				return nil
			}
			a.ptr.layer = layer
		}
		a.dispatch(input.PointerMove, msg.X, msg.Y)
	case tea.MouseActionRelease:
		if !a.ptr.pressed {
			return nil
		}
		a.ptr.pressed = false
		a.dispatch(input.PointerUp, msg.X, msg.Y)
		if msg.X == a.ptr.downCol && msg.Y == a.ptr.downRow {
			a.click(msg.X, msg.Y)
		}
	}
	a.layout()
	return nil
}

func (a *App) click(col, row int) {
	a.dispatch(input.Click, col, row)
	now := a.now()
	if !a.ptr.lastClick.IsZero() && now.Sub(a.ptr.lastClick) < doubleClickWindow &&
		col == a.ptr.clickCol && row == a.ptr.clickRow {
		a.ptr.lastClick = time.Time{}
		a.dispatch(input.DoubleClick, col, row)
		return
	}
	a.ptr.lastClick, a.ptr.clickCol, a.ptr.clickRow = now, col, row
}

// layerAt is the layer under a screen cell.
func (a *App) layerAt(col, row int) (render.ID, bool) {
	r := row - bodyTop
	if r < 0 || r >= a.bodyRows() || col < 0 || col >= a.chartCols() {
		return 0, false
	}
	layers := a.chart.Layers()
	if col < a.laneCols() {
		return layers.Swimlanes, true
	}
	return layers.Chart, true
}

// toLayer maps a screen cell to coordinates of layer. Cells outside the
// layer map past its edges, so drags keep their coordinate space.
func (a *App) toLayer(layer render.ID, col, row int) (float64, float64) {
	w := a.window(layer)
	if layer != a.chart.Layers().Swimlanes {
		col -= a.laneCols()
	}
	return w.X(col), w.Y(row - bodyTop)
}

func (a *App) dispatch(kind input.Kind, col, row int) {
	layer := a.ptr.layer
	x, y := a.toLayer(layer, col, row)
	target, _ := a.scene.HitTest(layer, x, y)
	if layer == a.chart.Layers().Chart {
		a.hover = a.chart.Settings().DateFromPosition(x).Format("Mon 2 Jan 2006 15:04")
	}
	a.bus.Dispatch(input.Event{Kind: kind, X: x, Y: y, Target: target})
}

func (a *App) View() string {
	if !a.ready {
		return "Loading…"
	}
	t := theme.Current()

	frame := NewFrame(a.chartCols(), a.bodyRows(), t.Background)
	painter := Painter{Scene: a.scene, Theme: t}
	layers := a.chart.Layers()
	if lanes := a.laneCols(); lanes > 0 {
		painter.Paint(frame, layers.Swimlanes, 0, a.window(layers.Swimlanes))
	}
	painter.Paint(frame, layers.Chart, a.laneCols(), a.window(layers.Chart))
	body := frame.String()
	if a.detail.open {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, a.detail.view())
	}

	canvas := NewCanvas(a.width, a.height)
	canvas.Fill(t.Background)
	canvas.DrawStringAt(0, 0, a.renderHeader())
	canvas.DrawStringAt(0, bodyTop, body)
	canvas.DrawStringAt(0, a.height-1, a.renderFooter())

	switch {
	case a.showHelp:
		canvas.DrawStringAt(0, 0, renderHelpOverlay(a.keys, a.width, a.height))
	case a.search.open:
		canvas.centerOverlay(a.search.view(a.width), bodyTop, 1)
	}
	if now := a.now(); a.toast.visible(now) {
		canvas.bottomRightOverlay(a.toast.view(now), 1)
	}
	return canvas.Render()
}

func (a *App) renderHeader() string {
	title := styleHeader().Render("GANTRY")
	info := fmt.Sprintf(" %s · %s · %d tasks",
		truncate.StringWithTail(a.cfg.Source, 40, "…"),
		a.chart.Options().ViewMode,
		len(a.chart.Tasks()))
	if n := a.Pending(); n > 0 {
		info += fmt.Sprintf(" · ● %d unsaved", n)
	}
	left := title + styleHeaderInfo().Render(info)
	right := styleHeaderInfo().Render(a.cfg.Version + " ")
	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return left + styleHeaderInfo().Render(strings.Repeat(" ", gap)) + right
}

func (a *App) renderFooter() string {
	hints := []struct{ key, desc string }{
		{"?", "help"}, {"/", "find"}, {"+/-", "zoom"}, {"t", "today"}, {"s", "save"}, {"e", "export"}, {"q", "quit"},
	}
	var b strings.Builder
	b.WriteString(styleFooter().Render(" "))
	for _, h := range hints {
		b.WriteString(styleFooterKey().Render(h.key))
		b.WriteString(styleFooter().Render(" " + h.desc + "  "))
	}
	left := b.String()
	right := styleFooter().Render(a.hover + " ")
	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return left + styleFooter().Render(strings.Repeat(" ", gap)) + right
}
