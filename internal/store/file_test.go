package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	appErrors "gantry/internal/errors"
	"gantry/internal/swimlane"
	"gantry/internal/task"
)

const sampleYAML = `viewMode: Week
swimlanes:
  - title: Team
    width: 120
tasks:
  - id: A
    name: Design
    start: "2024-03-01 00"
    end: "2024-03-03 00"
    progress: 40
    dependencies: [B]
    swimlanes:
      - value: TeamX
        type: checkbox
        checked: true
    milestones:
      - end: "2024-03-02 00"
        draggable: true
    editable: true
    metadata:
      owner: sam
  - id: B
    name: Build
    start: "2024-03-05 00"
    end: "2024-03-07 00"
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestFileLoadYAML(t *testing.T) {
	f := NewFile(writeFile(t, "tasks.yaml", sampleYAML))
	doc, err := f.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.ViewMode != "Week" {
		t.Fatalf("view mode = %q", doc.ViewMode)
	}
	if len(doc.Swimlanes) != 1 || doc.Swimlanes[0].Title != "Team" || doc.Swimlanes[0].Width != 120 {
		t.Fatalf("swimlanes = %+v", doc.Swimlanes)
	}
	if len(doc.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(doc.Tasks))
	}
	a := doc.Tasks[0]
	if a.ID != "A" || a.Start != "2024-03-01 00" || a.Progress != 40 || !a.Editable {
		t.Fatalf("unexpected task A: %+v", a)
	}
	if len(a.Dependencies) != 1 || a.Dependencies[0] != "B" {
		t.Fatalf("dependencies = %v", a.Dependencies)
	}
	if len(a.Swimlanes) != 1 || a.Swimlanes[0].Kind != task.KindCheckbox || !a.Swimlanes[0].Checked {
		t.Fatalf("swimlanes = %+v", a.Swimlanes)
	}
	if len(a.Milestones) != 1 || !a.Milestones[0].Draggable {
		t.Fatalf("milestones = %+v", a.Milestones)
	}
	if a.Metadata["owner"] != "sam" {
		t.Fatalf("metadata = %v", a.Metadata)
	}
}

func TestFileLoadBareJSONArray(t *testing.T) {
	f := NewFile(writeFile(t, "tasks.json", `[{"id":"A","name":"x","start":"2024-01-01 00","end":"2024-01-02 00"}]`))
	doc, err := f.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc.Tasks) != 1 || doc.Tasks[0].ID != "A" {
		t.Fatalf("tasks = %+v", doc.Tasks)
	}
}

func TestFileLoadMissing(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := f.Load(context.Background())
	if !appErrors.IsCode(err, appErrors.CodeNotFound) {
		t.Fatalf("expected CodeNotFound, got %v", err)
	}
}

func TestFileLoadMalformed(t *testing.T) {
	f := NewFile(writeFile(t, "tasks.yaml", "tasks: [oops"))
	_, err := f.Load(context.Background())
	if !appErrors.IsCode(err, appErrors.CodeParseFailed) {
		t.Fatalf("expected CodeParseFailed, got %v", err)
	}
}

func TestFileSaveKeepsFormat(t *testing.T) {
	for _, name := range []string{"out.yaml", "out.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			f := NewFile(path)
			doc := Document{
				ViewMode:  "Month",
				Swimlanes: []swimlane.Info{{Title: "Owner"}},
				Tasks: []task.Task{
					{ID: "A", Name: "one", Start: "2024-01-01 00", End: "2024-01-03 00", Swimlanes: []task.Swimlane{{Kind: task.KindAvatar, Value: "ann"}}},
					{ID: "A", Name: "one", Start: "2024-01-01 00", End: "2024-01-03 00", Swimlanes: []task.Swimlane{{Value: "bob"}}},
				},
			}
			if err := f.Save(context.Background(), doc); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err := f.Load(context.Background())
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got.ViewMode != "Month" || len(got.Tasks) != 2 {
				t.Fatalf("got %+v", got)
			}
			if got.Tasks[0].Swimlanes[0].Kind != task.KindAvatar || got.Tasks[1].Swimlanes[0].Value != "bob" {
				t.Fatalf("split instances not kept apart: %+v", got.Tasks)
			}
			entries, err := os.ReadDir(filepath.Dir(path))
			if err != nil {
				t.Fatalf("ReadDir: %v", err)
			}
			if len(entries) != 1 {
				t.Fatalf("temp file left behind: %v", entries)
			}
		})
	}
}
