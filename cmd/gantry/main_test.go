package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gantry/internal/chart"
	"gantry/internal/config"
	"gantry/internal/scale"
	"gantry/internal/store"
	"gantry/internal/swimlane"
	"gantry/internal/task"
	"gantry/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

func TestRunProgramBuildsAndRuns(t *testing.T) {
	var ran bool
	err := runProgram(ui.Config{Options: chart.DefaultOptions()}, ui.NewApp, func(app *ui.App) programRunner {
		if app == nil {
			t.Fatal("expected app")
		}
		return programFunc(func() (tea.Model, error) {
			ran = true
			return app, nil
		})
	})
	if err != nil {
		t.Fatalf("runProgram: %v", err)
	}
	if !ran {
		t.Fatal("program was not run")
	}
}

func TestRunProgramBuilderError(t *testing.T) {
	builder := func(ui.Config) (*ui.App, error) { return nil, errors.New("boom") }
	err := runProgram(ui.Config{}, builder, func(*ui.App) programRunner {
		t.Fatal("factory should not be called")
		return nil
	})
	if err == nil || !strings.Contains(err.Error(), "initialize UI") {
		t.Fatalf("expected wrapped builder error, got %v", err)
	}
}

func TestRunProgramRunError(t *testing.T) {
	err := runProgram(ui.Config{Options: chart.DefaultOptions()}, ui.NewApp, func(*ui.App) programRunner {
		return programFunc(func() (tea.Model, error) { return nil, errors.New("tty") })
	})
	if err == nil || !strings.Contains(err.Error(), "run UI") {
		t.Fatalf("expected wrapped run error, got %v", err)
	}
}

func TestComputeRuntimeOptions(t *testing.T) {
	cleanup := config.ResetForTesting(t)
	defer cleanup()

	flags := runtimeFlags{
		store:        ptrString(" sqlite "),
		path:         ptrString("plan.db"),
		dsn:          ptrString(""),
		viewMode:     ptrString("Week"),
		theme:        ptrString("dracula"),
		outputFormat: ptrString("plain"),
		debug:        ptrBool(true),
		exportSVG:    ptrString(" out.svg "),
	}

	got := computeRuntimeOptions(flags, map[string]struct{}{})
	if got.store != "file" || got.path != config.DefaultStorePath || got.debug {
		t.Fatalf("unvisited flags should keep config values: %+v", got)
	}
	if got.exportSVG != "out.svg" {
		t.Fatalf("export path = %q", got.exportSVG)
	}

	got = computeRuntimeOptions(flags, map[string]struct{}{"store": {}, "path": {}, "view-mode": {}, "debug": {}})
	if got.store != "sqlite" || got.path != "plan.db" || !got.debug {
		t.Fatalf("visited flags should win: %+v", got)
	}
	if !flagWasSet(got, "view-mode") || flagWasSet(got, "theme") {
		t.Fatalf("explicit set = %v", got.explicit)
	}
}

func TestChartOptionsPrefersDocument(t *testing.T) {
	base := chart.DefaultOptions()
	doc := store.Document{
		ViewMode:  "Month",
		Swimlanes: []swimlane.Info{{Title: "Ops", Width: 120}},
	}

	opts := chartOptions(base, doc, false)
	if opts.ViewMode != scale.Month {
		t.Fatalf("view mode = %v, want Month", opts.ViewMode)
	}
	if len(opts.SwimlaneInfo) != 1 || opts.SwimlaneInfo[0].Title != "Ops" {
		t.Fatalf("swimlanes = %+v", opts.SwimlaneInfo)
	}

	if opts := chartOptions(base, doc, true); opts.ViewMode != scale.Day {
		t.Fatalf("a forced view mode keeps the base, got %v", opts.ViewMode)
	}
	if opts := chartOptions(base, store.Document{ViewMode: "fortnight"}, false); opts.ViewMode != scale.Day {
		t.Fatalf("unknown saved mode should be ignored, got %v", opts.ViewMode)
	}
}

func TestOpenDocumentMissingFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.yaml")
	s, doc, err := openDocument(context.Background(), runtimeOptions{store: "file", path: path}, noopAnimator{})
	if err != nil {
		t.Fatalf("openDocument: %v", err)
	}
	defer func() { _ = s.Close() }()
	if len(doc.Tasks) != 0 {
		t.Fatalf("expected empty document, got %+v", doc)
	}
}

func TestOpenDocumentRejectsUnknownStore(t *testing.T) {
	if _, _, err := openDocument(context.Background(), runtimeOptions{store: "redis"}, noopAnimator{}); err == nil {
		t.Fatal("expected an error for an unknown store kind")
	}
}

func TestExportHeadless(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "plan.svg")
	doc := store.Document{Tasks: []task.Task{
		{ID: "a", Name: "Kickoff", Start: "2024-03-01 00", End: "2024-03-04 00"},
	}}
	if err := exportHeadless(out, doc, chart.DefaultOptions()); err != nil {
		t.Fatalf("exportHeadless: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.HasPrefix(string(data), "<svg") || !strings.Contains(string(data), "Kickoff") {
		t.Fatalf("unexpected svg: %.200s", data)
	}
}

func TestVersionString(t *testing.T) {
	oldVersion, oldBuild, oldTime := Version, Build, BuildTime
	t.Cleanup(func() { Version, Build, BuildTime = oldVersion, oldBuild, oldTime })

	Version, Build, BuildTime = "1.0.0", "def5678", "2025-11-22_12:00:00"
	got := versionString()
	for _, want := range []string{"gantry version 1.0.0", "(build: def5678)", "[2025-11-22_12:00:00]", "Go version:", "OS/Arch:"} {
		if !strings.Contains(got, want) {
			t.Errorf("version output missing %q:\n%s", want, got)
		}
	}
}

type programFunc func() (tea.Model, error)

func (f programFunc) Run() (tea.Model, error) { return f() }

func ptrString(v string) *string { return &v }
func ptrBool(v bool) *bool       { return &v }
