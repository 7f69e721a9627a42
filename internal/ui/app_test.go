package ui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gantry/internal/chart"
	"gantry/internal/scale"
	"gantry/internal/store"
	"gantry/internal/task"
	"gantry/internal/ui/theme"

	tea "github.com/charmbracelet/bubbletea"
)

var testNow = time.Date(2024, time.March, 3, 9, 0, 0, 0, time.UTC)

func sampleTasks() []task.Task {
	return []task.Task{
		{ID: "A", Name: "Design", Start: "2024-03-01 00", End: "2024-03-06 00", Draggable: true,
			Metadata: map[string]any{"owner": "sam"}},
		{ID: "B", Name: "Build", Start: "2024-03-08 00", End: "2024-03-10 00", Dependencies: []string{"A"}},
	}
}

func newTestApp(t *testing.T, cfg Config) *App {
	t.Helper()
	if cfg.Document.Tasks == nil {
		cfg.Document.Tasks = sampleTasks()
	}
	if cfg.Options.ColumnWidth == 0 {
		cfg.Options = chart.DefaultOptions()
	}
	cfg.Now = func() time.Time { return testNow }
	cfg.Source = "tasks.yaml"
	cfg.OutputFormat = "plain"
	a, err := NewApp(cfg)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	a.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	return a
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func mouse(action tea.MouseAction, col, row int) tea.MouseMsg {
	return tea.MouseMsg{X: col, Y: row, Action: action, Button: tea.MouseButtonLeft}
}

// labelCell is the screen cell at the centre of a task's bar label.
func labelCell(t *testing.T, a *App, name string) (int, int) {
	t.Helper()
	layer := a.chart.Layers().Chart
	w := a.window(layer)
	for _, id := range a.scene.FindByClass("bar-label") {
		p, _ := a.scene.Get(id)
		if p.Text != name || !a.scene.Visible(id) {
			continue
		}
		col, row := a.laneCols()+w.colOf(p.X), bodyTop+w.rowOf(p.Y)
		if col < 0 || col >= a.chartCols() || row < bodyTop {
			t.Fatalf("label %q is off screen at %d,%d", name, col, row)
		}
		return col, row
	}
	t.Fatalf("no label %q", name)
	return 0, 0
}

func TestViewRendersChart(t *testing.T) {
	a := newTestApp(t, Config{Version: "v1.2.3"})
	view := a.View()
	for _, want := range []string{"GANTRY", "tasks.yaml", "Day", "2 tasks", "v1.2.3", "Design", "? help"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestZoomPersistsViewMode(t *testing.T) {
	var saved []scale.ViewMode
	a := newTestApp(t, Config{SaveViewMode: func(m scale.ViewMode) error {
		saved = append(saved, m)
		return nil
	}})

	a.Update(keyMsg("-"))
	if got := a.Chart().Options().ViewMode; got != scale.Week {
		t.Fatalf("zoom out: view mode = %v, want Week", got)
	}
	a.Update(keyMsg("+"))
	a.Update(keyMsg("+"))
	if got := a.Chart().Options().ViewMode; got != scale.HalfDay {
		t.Fatalf("zoom in twice: view mode = %v, want Half Day", got)
	}
	if len(saved) != 3 || saved[0] != scale.Week || saved[2] != scale.HalfDay {
		t.Fatalf("saved modes = %v", saved)
	}
}

func TestThemeCycleIsPersisted(t *testing.T) {
	before := theme.CurrentName()
	t.Cleanup(func() { theme.Set(before) })

	var saved string
	a := newTestApp(t, Config{SaveTheme: func(name string) error {
		saved = name
		return nil
	}})
	a.Update(keyMsg("T"))

	if theme.CurrentName() == before {
		t.Fatalf("theme did not change")
	}
	if saved != theme.CurrentName() {
		t.Fatalf("saved theme %q, current %q", saved, theme.CurrentName())
	}
}

func TestDoubleClickOpensDetail(t *testing.T) {
	a := newTestApp(t, Config{})
	col, row := labelCell(t, a, "Design")

	for range 2 {
		a.Update(mouse(tea.MouseActionPress, col, row))
		a.Update(mouse(tea.MouseActionRelease, col, row))
	}

	if !a.detail.open || a.focused != "A" {
		t.Fatalf("detail not opened: open=%v focused=%q", a.detail.open, a.focused)
	}
	view := a.View()
	for _, want := range []string{"Progress", "2024-03-01 00", "owner"} {
		if !strings.Contains(view, want) {
			t.Fatalf("detail pane missing %q:\n%s", want, view)
		}
	}

	a.Update(keyMsg("esc"))
	if a.detail.open {
		t.Fatalf("Esc should close the detail pane")
	}
}

func TestSingleClicksFarApartDoNotOpenDetail(t *testing.T) {
	now := testNow
	a := newTestApp(t, Config{})
	a.now = func() time.Time { return now }
	col, row := labelCell(t, a, "Design")

	a.Update(mouse(tea.MouseActionPress, col, row))
	a.Update(mouse(tea.MouseActionRelease, col, row))
	now = now.Add(time.Second)
	a.Update(mouse(tea.MouseActionPress, col, row))
	a.Update(mouse(tea.MouseActionRelease, col, row))

	if a.detail.open {
		t.Fatalf("clicks a second apart must not count as a double-click")
	}
}

func TestSearchJumpsToTask(t *testing.T) {
	a := newTestApp(t, Config{})
	a.Update(keyMsg("/"))
	if !a.search.open {
		t.Fatalf("search did not open")
	}
	for _, r := range "bui" {
		a.Update(keyMsg(string(r)))
	}
	if len(a.search.matches) != 1 || a.search.matches[0].ID != "B" {
		t.Fatalf("matches = %+v", a.search.matches)
	}
	a.Update(keyMsg("enter"))
	if a.search.open || a.focused != "B" {
		t.Fatalf("enter should close search and focus B: open=%v focused=%q", a.search.open, a.focused)
	}
}

func TestRankTasks(t *testing.T) {
	tasks := append(sampleTasks(), task.Task{ID: "A", Name: "Design"})
	if got := rankTasks(tasks, ""); len(got) != 3 {
		t.Fatalf("empty query should keep every task, got %d", len(got))
	}
	got := rankTasks(tasks, "des")
	if len(got) != 1 || got[0].ID != "A" {
		t.Fatalf("split instances should collapse: %+v", got)
	}
	if got := rankTasks(tasks, "zzz"); len(got) != 0 {
		t.Fatalf("no match expected, got %+v", got)
	}
}

func TestDragThenSaveRecordsChange(t *testing.T) {
	ctx := context.Background()
	db, err := store.OpenSQLite(ctx, filepath.Join(t.TempDir(), "gantry.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	a := newTestApp(t, Config{Store: db})
	col, row := labelCell(t, a, "Design")
	a.Update(mouse(tea.MouseActionPress, col, row))
	a.Update(mouse(tea.MouseActionMotion, col+5, row))
	a.Update(mouse(tea.MouseActionRelease, col+5, row))

	if a.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", a.Pending())
	}
	if !strings.Contains(a.View(), "1 unsaved") {
		t.Fatalf("header should show the unsaved edit")
	}

	_, cmd := a.Update(keyMsg("s"))
	if cmd == nil {
		t.Fatalf("save returned no command")
	}
	msg := runUntil[savedMsg](t, cmd)
	if msg.err != nil {
		t.Fatalf("save failed: %v", msg.err)
	}
	a.Update(msg)
	if a.Pending() != 0 {
		t.Fatalf("pending after save = %d", a.Pending())
	}

	doc, err := db.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc.Tasks) != 2 || doc.Tasks[0].Start == "2024-03-01 00" {
		t.Fatalf("moved task not saved: %+v", doc.Tasks)
	}
	if doc.ViewMode != "Day" {
		t.Fatalf("view mode saved as %q", doc.ViewMode)
	}
	history, err := db.History(ctx, 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 || history[0].Kind != store.ChangeDates || history[0].TaskID != "A" {
		t.Fatalf("history = %+v", history)
	}
}

type failingStore struct{ saves int }

func (f *failingStore) Load(context.Context) (store.Document, error) { return store.Document{}, nil }
func (f *failingStore) Close() error                                { return nil }
func (f *failingStore) Save(context.Context, store.Document) error {
	f.saves++
	return errors.New("disk full")
}

func TestFailedSaveRequeuesChanges(t *testing.T) {
	s := &failingStore{}
	a := newTestApp(t, Config{Store: s})
	col, row := labelCell(t, a, "Design")
	a.Update(mouse(tea.MouseActionPress, col, row))
	a.Update(mouse(tea.MouseActionMotion, col+5, row))
	a.Update(mouse(tea.MouseActionRelease, col+5, row))

	_, cmd := a.Update(keyMsg("s"))
	if cmd == nil {
		t.Fatalf("save returned no command")
	}
	if a.Pending() != 0 {
		t.Fatalf("changes should be in flight, pending = %d", a.Pending())
	}
	msg := runUntil[savedMsg](t, cmd)
	if msg.err == nil || len(msg.changes) != 1 || s.saves != 1 {
		t.Fatalf("expected one failed save carrying one change: %+v", msg)
	}
	a.Update(msg)

	if a.Pending() != 1 {
		t.Fatalf("failed save must keep the change, pending = %d", a.Pending())
	}
	if !a.toast.isError || !strings.Contains(a.toast.text, "disk full") {
		t.Fatalf("toast = %+v", a.toast)
	}
	if msg.changes[0].Kind != store.ChangeDates || msg.changes[0].TaskID != "A" {
		t.Fatalf("requeued change = %+v", msg.changes[0])
	}
}

func TestQuitAsksTwiceWithUnsavedChanges(t *testing.T) {
	a := newTestApp(t, Config{})
	col, row := labelCell(t, a, "Design")
	a.Update(mouse(tea.MouseActionPress, col, row))
	a.Update(mouse(tea.MouseActionMotion, col+5, row))
	a.Update(mouse(tea.MouseActionRelease, col+5, row))

	a.Update(keyMsg("q"))
	if !a.quitArmed || !strings.Contains(a.toast.text, "unsaved") {
		t.Fatalf("first q must warn instead of quitting: %+v", a.toast)
	}
	_, cmd := a.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatalf("second q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("second q should quit")
	}
}

func TestEscapeCancelsDrag(t *testing.T) {
	a := newTestApp(t, Config{})
	col, row := labelCell(t, a, "Design")
	a.Update(mouse(tea.MouseActionPress, col, row))
	a.Update(mouse(tea.MouseActionMotion, col+5, row))
	a.Update(keyMsg("esc"))
	a.Update(mouse(tea.MouseActionRelease, col+5, row))

	if a.Pending() != 0 {
		t.Fatalf("cancelled drag recorded %d changes", a.Pending())
	}
	if got := a.Chart().Tasks()[0].Start; got != "2024-03-01 00" {
		t.Fatalf("start = %q after cancel", got)
	}
}

func TestSaveWithoutStore(t *testing.T) {
	a := newTestApp(t, Config{})
	if _, cmd := a.Update(keyMsg("s")); cmd == nil {
		t.Fatalf("expected the toast tick to be scheduled")
	}
	if !a.toast.isError || !strings.Contains(a.toast.text, "No store") {
		t.Fatalf("toast = %+v", a.toast)
	}
}

// runUntil runs cmd, unpacking batches, until it yields a T.
func runUntil[T tea.Msg](t *testing.T, cmd tea.Cmd) T {
	t.Helper()
	var zero T
	msg := cmd()
	switch m := msg.(type) {
	case T:
		return m
	case tea.BatchMsg:
		for _, c := range m {
			if c == nil {
				continue
			}
			if inner, ok := c().(T); ok {
				return inner
			}
		}
	}
	t.Fatalf("command did not produce %T", zero)
	return zero
}
