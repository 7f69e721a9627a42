package swimlane

import (
	"fmt"
	"testing"

	"gantry/internal/task"
)

func counterIDs() IDGenerator {
	n := 0
	return func(key string) string {
		n++
		return fmt.Sprintf("%s-%d", key, n)
	}
}

func ganttTask(id string, lanes ...task.Swimlane) *task.GanttTask {
	return &task.GanttTask{ID: id, TaskID: id, Raw: task.Task{ID: id, Swimlanes: lanes}}
}

func taskIDs(tasks []*task.GanttTask) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestBuildMergesByKey(t *testing.T) {
	tasks := []*task.GanttTask{
		ganttTask("a", task.Swimlane{Value: "TeamX"}),
		ganttTask("b", task.Swimlane{Value: "TeamX"}),
		ganttTask("c", task.Swimlane{Value: "TeamY"}),
	}
	tree := Build(tasks, nil, counterIDs())

	if len(tree.Roots) != 2 {
		t.Fatalf("expected 2 root nodes, got %d", len(tree.Roots))
	}
	if got := taskIDs(tree.Roots[0].Tasks); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("expected TeamX to hold a and b, got %v", got)
	}
	if tree.Roots[1].Key != "TeamY" || len(tree.Roots[1].Tasks) != 1 {
		t.Fatalf("expected TeamY to hold c alone, got %+v", tree.Roots[1])
	}
	if tree.MaxLevel != 1 {
		t.Fatalf("expected max level 1, got %d", tree.MaxLevel)
	}

	lines := tree.Lines()
	if len(lines) != MinLines {
		t.Fatalf("expected lines padded to %d, got %d", MinLines, len(lines))
	}
	if !SameNode(lines[0], lines[0], 0) || SameNode(lines[0], lines[1], 0) {
		t.Fatalf("expected distinct nodes for TeamX and TeamY")
	}
	if !lines[2].IsEmpty() || lines[0].IsEmpty() {
		t.Fatalf("expected only padding lines to be empty")
	}
}

func TestBuildFallsBackToTitleKey(t *testing.T) {
	tasks := []*task.GanttTask{
		ganttTask("a", task.Swimlane{Title: "Ops"}),
		ganttTask("b", task.Swimlane{Title: "Ops", Background: "#eee"}),
	}
	tree := Build(tasks, nil, counterIDs())
	if len(tree.Roots) != 1 {
		t.Fatalf("expected a single node keyed by title, got %d", len(tree.Roots))
	}
	if tree.Roots[0].Swimlane.Background != "#eee" {
		t.Fatalf("expected background merged from the second task, got %q", tree.Roots[0].Swimlane.Background)
	}
}

func TestBuildFirstSeenStylingWins(t *testing.T) {
	tasks := []*task.GanttTask{
		ganttTask("a", task.Swimlane{Value: "X", TextColor: "red"}),
		ganttTask("b", task.Swimlane{Value: "X", TextColor: "blue", Kind: task.KindAvatar, AvatarURL: "u"}),
	}
	node := Build(tasks, nil, counterIDs()).Roots[0]
	if node.Swimlane.TextColor != "red" {
		t.Fatalf("expected first text color to win, got %q", node.Swimlane.TextColor)
	}
	if node.Swimlane.Kind != task.KindAvatar || node.Swimlane.AvatarURL != "u" {
		t.Fatalf("expected kind and avatar merged from later task, got %+v", node.Swimlane)
	}
}

func TestStaticDepthNeverMerges(t *testing.T) {
	tasks := []*task.GanttTask{
		ganttTask("a", task.Swimlane{Value: "X"}, task.Swimlane{Value: "alice"}),
		ganttTask("b", task.Swimlane{Value: "X"}, task.Swimlane{Value: "alice"}),
	}
	infos := []Info{{Title: "Team"}, {Title: "Owner", Static: true}}
	tree := Build(tasks, infos, counterIDs())

	if len(tree.Roots) != 1 {
		t.Fatalf("expected merged first depth, got %d roots", len(tree.Roots))
	}
	if got := len(tree.Roots[0].Children); got != 2 {
		t.Fatalf("expected static depth to create 2 nodes, got %d", got)
	}

	lines := tree.Lines()
	if !SameNode(lines[0], lines[1], 0) {
		t.Fatalf("expected both lines to share the team node")
	}
	if SameNode(lines[0], lines[1], 1) {
		t.Fatalf("expected static owner cells to stay separate")
	}
}

func TestLinesOrderAndPadding(t *testing.T) {
	tasks := []*task.GanttTask{
		ganttTask("a", task.Swimlane{Value: "X"}),
		ganttTask("b", task.Swimlane{Value: "X"}, task.Swimlane{Value: "sub"}),
		ganttTask("loose"),
		ganttTask("c", task.Swimlane{Value: "Y"}),
	}
	lines := Lines(tasks, nil, counterIDs())

	want := [][]string{{"b"}, {"a"}, {"c"}, {"loose"}}
	for i, ids := range want {
		got := taskIDs(lines[i].Tasks)
		if fmt.Sprint(got) != fmt.Sprint(ids) {
			t.Fatalf("line %d: expected %v, got %v", i, ids, got)
		}
		if len(lines[i].Swimlanes) != 2 {
			t.Fatalf("line %d: expected path padded to 2, got %d", i, len(lines[i].Swimlanes))
		}
	}
	if lines[1].At(1) != nil {
		t.Fatalf("expected nil second depth for task a")
	}
	if !lines[3].IsEmpty() {
		t.Fatalf("expected ungrouped line to be empty")
	}
	if len(lines) != MinLines {
		t.Fatalf("expected %d lines, got %d", MinLines, len(lines))
	}
}

func TestLinesWithoutSwimlanes(t *testing.T) {
	var tasks []*task.GanttTask
	for i := 0; i < 7; i++ {
		tasks = append(tasks, ganttTask(fmt.Sprintf("t%d", i)))
	}
	lines := Lines(tasks, nil, counterIDs())
	if len(lines) != 7 {
		t.Fatalf("expected one line per task, got %d", len(lines))
	}
	for i, line := range lines {
		if len(line.Tasks) != 1 || len(line.Swimlanes) != 0 {
			t.Fatalf("line %d: unexpected shape %+v", i, line)
		}
	}

	if got := Lines(nil, nil, nil); len(got) != MinLines {
		t.Fatalf("expected %d padding lines for no tasks, got %d", MinLines, len(got))
	}
}
