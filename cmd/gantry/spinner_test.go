package main

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestStartupSpinnerRendersStage(t *testing.T) {
	var out lockedBuffer
	sp := newStartupSpinner(&out, 0)
	sp.Stage(stageLoadingTasks, "tasks.yaml")

	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(out.String(), "Loading tasks... tasks.yaml") {
		if time.Now().After(deadline) {
			t.Fatalf("spinner never rendered the stage: %q", out.String())
		}
		time.Sleep(10 * time.Millisecond)
	}
	sp.Stop()
	sp.Stop()
	if !strings.HasSuffix(out.String(), "\r\033[2K") {
		t.Fatalf("stop should clear the line: %q", out.String())
	}
}

func TestStartupSpinnerStaysHiddenForFastLoads(t *testing.T) {
	var out lockedBuffer
	sp := newStartupSpinner(&out, time.Hour)
	sp.Stage(stageOpeningStore, "")
	sp.Stop()
	if out.String() != "" {
		t.Fatalf("spinner drew before its delay: %q", out.String())
	}
}

func TestFormatStageMessage(t *testing.T) {
	if got := formatStageMessage(stageOpeningStore, "  "); got != "Opening store..." {
		t.Fatalf("got %q", got)
	}
	if got := formatStageMessage(startupStage(99), "x"); got != "Starting... x" {
		t.Fatalf("got %q", got)
	}
}
