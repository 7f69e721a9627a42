package task

import (
	"time"

	"github.com/google/uuid"

	"gantry/internal/debug"
	"gantry/internal/scale"
)

var log = debug.For("task")

// GanttTask is one rendered instance of a raw task. A raw task id that
// appears several times in the input expands into several instances that
// move in lockstep.
type GanttTask struct {
	// ID is the generated internal id; TaskID the external id it came from.
	ID     string
	TaskID string
	Raw    Task

	StartDate      time.Time
	EndDate        time.Time
	MilestoneDates []time.Time

	// Edge lists hold internal ids.
	Dependencies                 []string
	AllowedDependencies          []string
	ParentDependencies           []string
	TransitiveDependencies       []string
	TransitiveParentDependencies []string

	// Created marks instances drawn with the create-bar gesture.
	Created bool
}

// IDGenerator returns a fresh internal id for an external id.
type IDGenerator func(external string) string

// Option configures a Model.
type Option func(*Model)

// WithIDGenerator replaces the uuid-based internal id generator.
func WithIDGenerator(gen IDGenerator) Option {
	return func(m *Model) {
		if gen != nil {
			m.newID = gen
		}
	}
}

// DefaultIDGenerator appends a random uuid to the external id.
func DefaultIDGenerator(external string) string {
	return external + "_" + uuid.NewString()
}

// Model is the arena of internal tasks. Tasks are addressed by position;
// the index map resolves internal ids and ids resolves external ids to
// every instance they expanded into.
type Model struct {
	format string
	newID  IDGenerator

	tasks []*GanttTask
	index map[string]int
	ids   map[string][]string
}

// NewModel parses raw tasks into internal tasks. Tasks whose start or end
// cannot be parsed are left out; dependencies on them are dropped.
func NewModel(raw []Task, format string, opts ...Option) *Model {
	if format == "" {
		format = scale.DefaultDateFormat
	}
	m := &Model{
		format: format,
		newID:  DefaultIDGenerator,
		index:  make(map[string]int),
		ids:    make(map[string][]string),
	}
	for _, opt := range opts {
		opt(m)
	}

	for _, t := range raw {
		start, okStart := scale.ParseDate(t.Start, format)
		end, okEnd := scale.ParseDate(t.End, format)
		if !okStart || !okEnd {
			log.Logf("dropped task %q: start=%q end=%q do not match %q", t.ID, t.Start, t.End, format)
			continue
		}
		g := &GanttTask{
			ID:        m.newID(t.ID),
			TaskID:    t.ID,
			Raw:       t.Clone(),
			StartDate: start,
			EndDate:   end,
		}
		g.MilestoneDates = parseMilestones(t.Milestones, format)
		m.insert(g)
	}

	for _, g := range m.tasks {
		g.Dependencies = m.expand(g.Raw.Dependencies)
		g.AllowedDependencies = m.expand(g.Raw.AllowedDependencies)
	}
	for _, g := range m.tasks {
		for _, dep := range g.Dependencies {
			parent := m.tasks[m.index[dep]]
			parent.ParentDependencies = append(parent.ParentDependencies, g.ID)
		}
	}
	m.RefreshClosures()
	return m
}

func parseMilestones(milestones []Milestone, format string) []time.Time {
	if len(milestones) == 0 {
		return nil
	}
	out := make([]time.Time, len(milestones))
	for i, ms := range milestones {
		if d, ok := scale.ParseDate(ms.End, format); ok {
			out[i] = d
		}
	}
	return out
}

func (m *Model) insert(g *GanttTask) {
	m.index[g.ID] = len(m.tasks)
	m.tasks = append(m.tasks, g)
	m.ids[g.TaskID] = append(m.ids[g.TaskID], g.ID)
}

// expand maps external ids to internal ids; unknown ids contribute nothing.
func (m *Model) expand(external []string) []string {
	var out []string
	for _, id := range external {
		out = append(out, m.ids[id]...)
	}
	return out
}

// Format is the date format the model parses and formats with.
func (m *Model) Format() string {
	return m.format
}

// Tasks returns the internal tasks in input order.
func (m *Model) Tasks() []*GanttTask {
	return m.tasks
}

// Len returns the number of internal tasks.
func (m *Model) Len() int {
	return len(m.tasks)
}

// Get looks up an internal task by internal id.
func (m *Model) Get(id string) (*GanttTask, bool) {
	i, ok := m.index[id]
	if !ok {
		return nil, false
	}
	return m.tasks[i], true
}

// Instances returns the internal ids an external id expanded into.
func (m *Model) Instances(external string) []string {
	return m.ids[external]
}

// Span returns the earliest start and latest end over all tasks. Both are
// zero when the model is empty.
func (m *Model) Span() (time.Time, time.Time) {
	var min, max time.Time
	for _, g := range m.tasks {
		if min.IsZero() || g.StartDate.Before(min) {
			min = g.StartDate
		}
		if max.IsZero() || g.EndDate.After(max) {
			max = g.EndDate
		}
	}
	return min, max
}

// Create adds a task drawn on the chart. Its internal id doubles as its
// external id until the host assigns one.
func (m *Model) Create(name string, start, end time.Time, swimlanes []Swimlane) *GanttTask {
	id := uuid.NewString()
	g := &GanttTask{
		ID:        id,
		TaskID:    id,
		StartDate: start,
		EndDate:   end,
		Created:   true,
		Raw: Task{
			ID:        id,
			Name:      name,
			Start:     scale.FormatDate(start, m.format),
			End:       scale.FormatDate(end, m.format),
			Swimlanes: append([]Swimlane(nil), swimlanes...),
		},
	}
	m.insert(g)
	return g
}

// SetDates updates an instance's dates and their formatted strings.
func (m *Model) SetDates(g *GanttTask, start, end time.Time) {
	g.StartDate = start
	g.EndDate = end
	g.Raw.Start = scale.FormatDate(start, m.format)
	g.Raw.End = scale.FormatDate(end, m.format)
}

// SetMilestoneDates replaces milestone dates and their formatted ends.
func (m *Model) SetMilestoneDates(g *GanttTask, dates []time.Time) {
	g.MilestoneDates = append([]time.Time(nil), dates...)
	milestones := append([]Milestone(nil), g.Raw.Milestones...)
	for i := range milestones {
		if i < len(dates) && !dates[i].IsZero() {
			milestones[i].End = scale.FormatDate(dates[i], m.format)
		}
	}
	g.Raw.Milestones = milestones
}

// AddDependency records that from depends on to and refreshes closures.
// It reports false when either id is unknown or the edge already exists.
func (m *Model) AddDependency(from, to string) bool {
	f, okFrom := m.Get(from)
	t, okTo := m.Get(to)
	if !okFrom || !okTo || contains(f.Dependencies, to) {
		return false
	}
	f.Dependencies = append(f.Dependencies, to)
	t.ParentDependencies = append(t.ParentDependencies, from)
	m.RefreshClosures()
	return true
}

// RemoveDependency deletes the edge from -> to and refreshes closures.
func (m *Model) RemoveDependency(from, to string) bool {
	f, okFrom := m.Get(from)
	t, okTo := m.Get(to)
	if !okFrom || !okTo || !contains(f.Dependencies, to) {
		return false
	}
	f.Dependencies = without(f.Dependencies, to)
	t.ParentDependencies = without(t.ParentDependencies, from)
	m.RefreshClosures()
	return true
}

// RefreshClosures recomputes both transitive closures of every task from
// the current edges.
func (m *Model) RefreshClosures() {
	deps := make([][]int, len(m.tasks))
	parents := make([][]int, len(m.tasks))
	for i, g := range m.tasks {
		deps[i] = m.indices(g.Dependencies)
		parents[i] = m.indices(g.ParentDependencies)
	}
	for i, g := range m.tasks {
		g.TransitiveDependencies = m.idsOf(Closure(deps, i))
		g.TransitiveParentDependencies = m.idsOf(Closure(parents, i))
	}
}

func (m *Model) indices(ids []string) []int {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if i, ok := m.index[id]; ok {
			out = append(out, i)
		}
	}
	return out
}

func (m *Model) idsOf(indices []int) []string {
	out := make([]string, len(indices))
	for i, idx := range indices {
		out[i] = m.tasks[idx].ID
	}
	return out
}

// Closure returns every node reachable from start over adj, in discovery
// order and without duplicates. The walk runs at most len(adj) passes, so
// cyclic input terminates; a node on a cycle through start includes start.
func Closure(adj [][]int, start int) []int {
	seen := make([]bool, len(adj))
	var out []int
	frontier := make([]int, 0, len(adj[start]))
	for _, v := range adj[start] {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
			frontier = append(frontier, v)
		}
	}
	for pass := 0; pass < len(adj) && len(frontier) > 0; pass++ {
		var next []int
		for _, v := range frontier {
			for _, w := range adj[v] {
				if !seen[w] {
					seen[w] = true
					out = append(out, w)
					next = append(next, w)
				}
			}
		}
		frontier = next
	}
	return out
}

// Clean maps an instance back to a raw task with external ids.
func (m *Model) Clean(g *GanttTask) Task {
	out := g.Raw.Clone()
	out.ID = g.TaskID
	out.Dependencies = m.external(g.Dependencies)
	out.AllowedDependencies = m.external(g.AllowedDependencies)
	return out
}

// CleanAll cleans every instance in model order.
func (m *Model) CleanAll() []Task {
	out := make([]Task, len(m.tasks))
	for i, g := range m.tasks {
		out[i] = m.Clean(g)
	}
	return out
}

func (m *Model) external(internal []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, id := range internal {
		g, ok := m.Get(id)
		if !ok || seen[g.TaskID] {
			continue
		}
		seen[g.TaskID] = true
		out = append(out, g.TaskID)
	}
	return out
}

// Changed reports whether next differs from the model's current tasks in
// any property that affects layout.
func (m *Model) Changed(next []Task) bool {
	return Changed(m.CleanAll(), next, m.format)
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
