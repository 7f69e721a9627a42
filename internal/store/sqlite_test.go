package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gantry/internal/swimlane"
	"gantry/internal/task"
)

func openTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "gantry.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func TestSQLiteEmptyLoad(t *testing.T) {
	s := openTestSQLite(t)
	doc, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc.Tasks) != 0 || doc.ViewMode != "" || doc.Swimlanes != nil {
		t.Fatalf("expected empty document, got %+v", doc)
	}
}

func TestSQLiteSaveReplacesTasks(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()
	first := Document{
		ViewMode:  "Day",
		Swimlanes: []swimlane.Info{{Title: "Team", Width: 80}},
		Tasks: []task.Task{
			{ID: "A", Name: "a", Start: "2024-01-01 00", End: "2024-01-02 00", Dependencies: []string{"B"}},
			{ID: "B", Name: "b", Start: "2024-01-03 00", End: "2024-01-04 00"},
		},
	}
	if err := s.Save(ctx, first); err != nil {
		t.Fatalf("Save: %v", err)
	}
	second := first
	second.ViewMode = "Week"
	second.Tasks = []task.Task{{ID: "C", Name: "c", Start: "2024-02-01 00", End: "2024-02-05 00"}}
	if err := s.Save(ctx, second); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ViewMode != "Week" {
		t.Fatalf("view mode = %q", got.ViewMode)
	}
	if len(got.Tasks) != 1 || got.Tasks[0].ID != "C" {
		t.Fatalf("tasks = %+v", got.Tasks)
	}
	if len(got.Swimlanes) != 1 || got.Swimlanes[0].Width != 80 {
		t.Fatalf("swimlanes = %+v", got.Swimlanes)
	}
}

func TestSQLiteKeepsOrderAndSplitInstances(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()
	doc := Document{Tasks: []task.Task{
		{ID: "Z", Name: "z"},
		{ID: "A", Name: "a", Swimlanes: []task.Swimlane{{Value: "x"}}},
		{ID: "A", Name: "a", Swimlanes: []task.Swimlane{{Value: "y"}}},
	}}
	if err := s.Save(ctx, doc); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Tasks) != 3 || got.Tasks[0].ID != "Z" || got.Tasks[2].Swimlanes[0].Value != "y" {
		t.Fatalf("tasks = %+v", got.Tasks)
	}
}

func TestSQLiteHistory(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	moved := task.Task{ID: "A", Start: "2024-03-02 00", End: "2024-03-04 00"}
	changes := []Change{
		{Kind: ChangeDates, TaskID: "A", Task: &moved, At: at},
		{Kind: ChangeDependencyAdded, TaskID: "A", OtherID: "B", At: at.Add(time.Minute)},
		{Kind: ChangeRowResized, Index: 2, Size: 64, At: at.Add(2 * time.Minute)},
	}
	if err := Sync(ctx, s, Document{}, changes); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	all, err := s.History(ctx, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 changes, got %d", len(all))
	}
	if all[0].Kind != ChangeDates || all[0].Task == nil || all[0].Task.Start != "2024-03-02 00" {
		t.Fatalf("first change = %+v", all[0])
	}
	if !all[0].At.Equal(at) {
		t.Fatalf("time = %v, want %v", all[0].At, at)
	}
	if all[1].OtherID != "B" || all[1].Task != nil {
		t.Fatalf("second change = %+v", all[1])
	}

	last, err := s.History(ctx, 1)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(last) != 1 || last[0].Kind != ChangeRowResized || last[0].Index != 2 || last[0].Size != 64 {
		t.Fatalf("latest change = %+v", last)
	}
}
