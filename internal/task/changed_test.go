package task

import "testing"

func TestChangedEmptyAndLength(t *testing.T) {
	if Changed(nil, []Task{}, "") {
		t.Fatalf("expected two empty lists to be unchanged")
	}
	if !Changed(sampleTasks(), sampleTasks()[:2], "") {
		t.Fatalf("expected different lengths to be changed")
	}
	if Changed(sampleTasks(), sampleTasks(), "") {
		t.Fatalf("expected identical lists to be unchanged")
	}
}

func TestChangedSinglePropertySensitivity(t *testing.T) {
	half := 0.5
	tests := []struct {
		name   string
		mutate func(*Task)
		want   bool
	}{
		{"name", func(t *Task) { t.Name = "Other" }, true},
		{"start", func(t *Task) { t.Start = "2024-03-02 00" }, true},
		{"end", func(t *Task) { t.End = "2024-03-04 00" }, true},
		{"same instant written differently", func(t *Task) { t.Start = "2024-03-01" }, false},
		{"progress", func(t *Task) { t.Progress = 40 }, true},
		{"min progress", func(t *Task) { t.MinProgress = &half }, true},
		{"swimlanes", func(t *Task) { t.Swimlanes = []Swimlane{{Value: "TeamA"}} }, true},
		{"milestones", func(t *Task) { t.Milestones = []Milestone{{End: "2024-03-02 00"}} }, true},
		{"dependencies", func(t *Task) { t.Dependencies = []string{"C"} }, true},
		{"allowed dependencies", func(t *Task) { t.AllowedDependencies = []string{"C"} }, true},
		{"bar color", func(t *Task) { t.BarColor = "#ff0000" }, true},
		{"editable", func(t *Task) { t.Editable = true }, true},
		{"draggable", func(t *Task) { t.Draggable = true }, true},
		{"metadata", func(t *Task) { t.Metadata = map[string]any{"k": "v"} }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := sampleTasks()
			next := sampleTasks()
			tt.mutate(&next[0])
			if got := Changed(prev, next, ""); got != tt.want {
				t.Fatalf("Changed = %v, want %v", got, tt.want)
			}
			if got := Changed(next, prev, ""); got != tt.want {
				t.Fatalf("Changed is not symmetric: reversed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChangedComparesListsAsSets(t *testing.T) {
	prev := []Task{{ID: "A", Start: "2024-03-01 00", End: "2024-03-02 00", Dependencies: []string{"B", "C"}}}
	next := []Task{{ID: "A", Start: "2024-03-01 00", End: "2024-03-02 00", Dependencies: []string{"C", "B"}}}
	if Changed(prev, next, "") {
		t.Fatalf("expected reordered dependencies to be unchanged")
	}
}

func TestChangedUnparsableDatesCompareAsText(t *testing.T) {
	prev := []Task{{ID: "A", Start: "soon", End: "later"}}
	next := []Task{{ID: "A", Start: "soon", End: "later"}}
	if Changed(prev, next, "") {
		t.Fatalf("expected identical unparsable dates to be unchanged")
	}
	next[0].End = "much later"
	if !Changed(prev, next, "") {
		t.Fatalf("expected differing unparsable dates to be changed")
	}
}

func TestModelChangedAgainstOwnTasks(t *testing.T) {
	m := NewModel(sampleTasks(), "", WithIDGenerator(sequentialIDs()))
	if m.Changed(sampleTasks()) {
		t.Fatalf("expected model to match the tasks it was built from")
	}
	next := sampleTasks()
	next[2].Progress = 10
	if !m.Changed(next) {
		t.Fatalf("expected progress change to be detected")
	}
}
