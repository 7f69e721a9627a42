package chart

import (
	"testing"

	"gantry/internal/scale"
	"gantry/internal/swimlane"
	"gantry/internal/task"
)

func TestMergeIgnoresUnsetValues(t *testing.T) {
	base := DefaultOptions()
	got := base.Merge(Partial{ColumnWidth: -5, BarHeight: 0, DateFormat: ""})
	if got.ColumnWidth != base.ColumnWidth || got.BarHeight != base.BarHeight || got.DateFormat != base.DateFormat {
		t.Fatalf("zero and negative values must not override: %+v", got)
	}
}

func TestMergeOverlaysAndClamps(t *testing.T) {
	week := scale.Week
	off := false
	lanes := []swimlane.Info{{Title: "Team", Width: 80}}
	got := DefaultOptions().Merge(Partial{
		ViewMode:     &week,
		ColumnWidth:  12,
		HeaderHeight: 64,
		SwimlaneInfo: lanes,
		LockResize:   &off,
	})

	if got.ViewMode != scale.Week {
		t.Errorf("view mode = %v", got.ViewMode)
	}
	if got.ColumnWidth != 20 {
		t.Errorf("column width should clamp to 20, got %v", got.ColumnWidth)
	}
	if got.HeaderHeight != 64 {
		t.Errorf("header height = %v", got.HeaderHeight)
	}
	if got.LockResize {
		t.Errorf("an explicit false gate must turn the capability off")
	}
	if !got.CreateTasks {
		t.Errorf("unset gates keep their base value")
	}
	lanes[0].Width = 999
	if got.SwimlaneInfo[0].Width != 80 {
		t.Errorf("merge must copy swimlane info")
	}
}

func TestNormalizeFillsZeroOptions(t *testing.T) {
	got := Options{ViewMode: scale.ViewMode(99)}.Normalize()
	if got.ViewMode != scale.Day || got.DateFormat != scale.DefaultDateFormat {
		t.Fatalf("defaults not filled: %+v", got)
	}
	if got.HeaderHeight != 30 || got.BarHeight != 10 || got.MaxInitialSwimlaneWidth != 30 {
		t.Fatalf("minimums not applied: %+v", got)
	}
}

func TestOptionsEqual(t *testing.T) {
	a := DefaultOptions()
	b := DefaultOptions()
	if !a.Equal(b) {
		t.Fatal("default options should be equal")
	}
	b.ColumnWidth = 40
	if a.Equal(b) {
		t.Fatal("a geometry change must be detected")
	}
}

func TestChangeOptionsReplacesRatherThanMerges(t *testing.T) {
	opts := DefaultOptions()
	opts.HeaderHeight = 64
	h := newHarness(t, []task.Task{editable("A", "2024-03-01 00", "2024-03-03 00")}, opts)
	c := h.chart

	c.ChangeOptions(c.Options().Merge(Partial{ColumnWidth: 40}))
	if got := c.Options(); got.HeaderHeight != 64 || got.ColumnWidth != 40 || !got.CreateTasks {
		t.Fatalf("merged change lost current values: %+v", got)
	}

	c.ChangeOptions(Options{ViewMode: scale.Day, ColumnWidth: 40})
	got := c.Options()
	if got.HeaderHeight != 30 || got.BarHeight != 10 {
		t.Fatalf("unset sizes should fall back to their minimums, got header %v bar %v", got.HeaderHeight, got.BarHeight)
	}
	if got.Padding != DefaultOptions().Padding {
		t.Fatalf("unset padding should fall back to the default, got %v", got.Padding)
	}
	if got.CreateTasks || got.LockResize {
		t.Fatalf("unset gates are off after a replace: %+v", got.Gates)
	}
}
