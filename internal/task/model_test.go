package task

import (
	"fmt"
	"reflect"
	"testing"
	"time"
)

func sequentialIDs() IDGenerator {
	n := 0
	return func(external string) string {
		n++
		return fmt.Sprintf("%s#%d", external, n)
	}
}

func sampleTasks() []Task {
	return []Task{
		{ID: "A", Name: "Design", Start: "2024-03-01 00", End: "2024-03-03 00", Dependencies: []string{"B"}},
		{ID: "B", Name: "Build", Start: "2024-03-05 00", End: "2024-03-07 00", Dependencies: []string{"C"}},
		{ID: "C", Name: "Ship", Start: "2024-03-08 00", End: "2024-03-09 00"},
	}
}

func mustGet(t *testing.T, m *Model, id string) *GanttTask {
	t.Helper()
	g, ok := m.Get(id)
	if !ok {
		t.Fatalf("task %q not found", id)
	}
	return g
}

func TestNewModelDropsUnparsableTasks(t *testing.T) {
	raw := append(sampleTasks(), Task{ID: "D", Name: "Broken", Start: "soon", End: "2024-03-09 00"})
	raw[0].Dependencies = append(raw[0].Dependencies, "D")

	m := NewModel(raw, "", WithIDGenerator(sequentialIDs()))

	if m.Len() != 3 {
		t.Fatalf("expected 3 tasks after dropping the broken one, got %d", m.Len())
	}
	if ids := m.Instances("D"); len(ids) != 0 {
		t.Fatalf("expected no instances for D, got %v", ids)
	}
	a := mustGet(t, m, "A#1")
	if !reflect.DeepEqual(a.Dependencies, []string{"B#2"}) {
		t.Fatalf("expected dependency on D to be dropped, got %v", a.Dependencies)
	}
	if want := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC); !a.StartDate.Equal(want) {
		t.Fatalf("expected parsed start %s, got %s", want, a.StartDate)
	}
}

func TestSplitTaskExpandsDependencies(t *testing.T) {
	raw := []Task{
		{ID: "A", Start: "2024-03-01 00", End: "2024-03-02 00", Dependencies: []string{"B"}, Swimlanes: []Swimlane{{Value: "X"}}},
		{ID: "B", Start: "2024-03-03 00", End: "2024-03-04 00", Swimlanes: []Swimlane{{Value: "X"}}},
		{ID: "B", Start: "2024-03-03 00", End: "2024-03-04 00", Swimlanes: []Swimlane{{Value: "Y"}}},
	}
	m := NewModel(raw, "", WithIDGenerator(sequentialIDs()))

	if got := m.Instances("B"); !reflect.DeepEqual(got, []string{"B#2", "B#3"}) {
		t.Fatalf("expected two instances of B, got %v", got)
	}
	a := mustGet(t, m, "A#1")
	if !reflect.DeepEqual(a.Dependencies, []string{"B#2", "B#3"}) {
		t.Fatalf("expected A to depend on both instances, got %v", a.Dependencies)
	}
	for _, id := range []string{"B#2", "B#3"} {
		if got := mustGet(t, m, id).ParentDependencies; !reflect.DeepEqual(got, []string{"A#1"}) {
			t.Fatalf("expected %s parent edge from A, got %v", id, got)
		}
	}
}

func TestClosuresFollowChains(t *testing.T) {
	m := NewModel(sampleTasks(), "", WithIDGenerator(sequentialIDs()))

	a := mustGet(t, m, "A#1")
	if !reflect.DeepEqual(a.TransitiveDependencies, []string{"B#2", "C#3"}) {
		t.Fatalf("unexpected closure of A: %v", a.TransitiveDependencies)
	}
	c := mustGet(t, m, "C#3")
	if !reflect.DeepEqual(c.TransitiveParentDependencies, []string{"B#2", "A#1"}) {
		t.Fatalf("unexpected parent closure of C: %v", c.TransitiveParentDependencies)
	}
	if len(c.TransitiveDependencies) != 0 {
		t.Fatalf("expected C to have no dependencies, got %v", c.TransitiveDependencies)
	}
}

func TestClosureTerminatesOnCycles(t *testing.T) {
	adj := [][]int{{1}, {2}, {0}}
	got := Closure(adj, 0)
	if !reflect.DeepEqual(got, []int{1, 2, 0}) {
		t.Fatalf("unexpected cyclic closure: %v", got)
	}
	if got := Closure([][]int{{0}}, 0); !reflect.DeepEqual(got, []int{0}) {
		t.Fatalf("expected self loop to include start, got %v", got)
	}
}

func TestRefreshClosuresIsIdempotent(t *testing.T) {
	m := NewModel(sampleTasks(), "", WithIDGenerator(sequentialIDs()))
	before := snapshotClosures(m)
	m.RefreshClosures()
	if after := snapshotClosures(m); !reflect.DeepEqual(before, after) {
		t.Fatalf("closures changed on refresh:\n%v\n%v", before, after)
	}
}

func TestAddThenRemoveRestoresClosures(t *testing.T) {
	m := NewModel(sampleTasks(), "", WithIDGenerator(sequentialIDs()))
	before := snapshotClosures(m)

	if !m.AddDependency("C#3", "A#1") {
		t.Fatalf("expected edge to be added")
	}
	if m.AddDependency("C#3", "A#1") {
		t.Fatalf("expected duplicate edge to be rejected")
	}
	c := mustGet(t, m, "C#3")
	if !reflect.DeepEqual(c.TransitiveDependencies, []string{"A#1", "B#2", "C#3"}) {
		t.Fatalf("expected cycle to show up in C's closure, got %v", c.TransitiveDependencies)
	}

	if !m.RemoveDependency("C#3", "A#1") {
		t.Fatalf("expected edge to be removed")
	}
	if after := snapshotClosures(m); !reflect.DeepEqual(before, after) {
		t.Fatalf("closures not restored:\n%v\n%v", before, after)
	}
	if m.RemoveDependency("C#3", "A#1") {
		t.Fatalf("expected removing a missing edge to report false")
	}
}

func TestCleanRestoresExternalIDs(t *testing.T) {
	raw := []Task{
		{ID: "A", Start: "2024-03-01 00", End: "2024-03-02 00", Dependencies: []string{"B"}, Metadata: map[string]any{"owner": "ops"}},
		{ID: "B", Start: "2024-03-03 00", End: "2024-03-04 00"},
		{ID: "B", Start: "2024-03-03 00", End: "2024-03-04 00"},
	}
	m := NewModel(raw, "", WithIDGenerator(sequentialIDs()))

	cleaned := m.Clean(mustGet(t, m, "A#1"))
	if cleaned.ID != "A" {
		t.Fatalf("expected external id A, got %q", cleaned.ID)
	}
	if !reflect.DeepEqual(cleaned.Dependencies, []string{"B"}) {
		t.Fatalf("expected deduplicated external dependencies, got %v", cleaned.Dependencies)
	}
	if cleaned.Metadata["owner"] != "ops" {
		t.Fatalf("expected metadata to pass through, got %v", cleaned.Metadata)
	}
}

func TestSetDatesFormatsStrings(t *testing.T) {
	m := NewModel(sampleTasks(), "", WithIDGenerator(sequentialIDs()))
	a := mustGet(t, m, "A#1")

	m.SetDates(a, time.Date(2024, time.April, 2, 5, 0, 0, 0, time.UTC), time.Date(2024, time.April, 4, 0, 0, 0, 0, time.UTC))
	if a.Raw.Start != "2024-04-02 05" || a.Raw.End != "2024-04-04 00" {
		t.Fatalf("unexpected formatted dates %q %q", a.Raw.Start, a.Raw.End)
	}
}

func TestCreateRegistersTask(t *testing.T) {
	m := NewModel(sampleTasks(), "", WithIDGenerator(sequentialIDs()))
	start := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	g := m.Create("", start, start.AddDate(0, 0, 2), []Swimlane{{Value: "TeamX"}})

	if !g.Created || g.TaskID != g.ID {
		t.Fatalf("expected created task to use its internal id externally: %+v", g)
	}
	if got := m.Instances(g.ID); !reflect.DeepEqual(got, []string{g.ID}) {
		t.Fatalf("expected id table entry, got %v", got)
	}
	if m.Len() != 4 {
		t.Fatalf("expected 4 tasks, got %d", m.Len())
	}
	if g.Raw.Start != "2024-03-10 00" {
		t.Fatalf("unexpected start %q", g.Raw.Start)
	}
}

func TestMilestonesParsedTolerantly(t *testing.T) {
	raw := []Task{{
		ID: "A", Start: "2024-03-01 00", End: "2024-03-10 00",
		Milestones: []Milestone{{End: "2024-03-04 00", Draggable: true}, {End: "later"}},
	}}
	m := NewModel(raw, "", WithIDGenerator(sequentialIDs()))
	a := mustGet(t, m, "A#1")

	if len(a.MilestoneDates) != 2 {
		t.Fatalf("expected both milestones kept, got %d", len(a.MilestoneDates))
	}
	if a.MilestoneDates[0].IsZero() || !a.MilestoneDates[1].IsZero() {
		t.Fatalf("unexpected milestone dates %v", a.MilestoneDates)
	}

	snapshot := a.Raw.Milestones
	m.SetMilestoneDates(a, []time.Time{time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), {}})
	if a.Raw.Milestones[0].End != "2024-03-05 00" || a.Raw.Milestones[1].End != "later" {
		t.Fatalf("unexpected milestones after update: %+v", a.Raw.Milestones)
	}
	if snapshot[0].End != "2024-03-04 00" {
		t.Fatalf("expected earlier milestone slice to stay untouched, got %+v", snapshot)
	}
}

func snapshotClosures(m *Model) map[string][2][]string {
	out := make(map[string][2][]string)
	for _, g := range m.Tasks() {
		out[g.ID] = [2][]string{
			append([]string(nil), g.TransitiveDependencies...),
			append([]string(nil), g.TransitiveParentDependencies...),
		}
	}
	return out
}
