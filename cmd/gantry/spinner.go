package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

// startupDelay keeps fast local loads from flashing a spinner.
const startupDelay = 250 * time.Millisecond

type startupStage int

const (
	stageOpeningStore startupStage = iota
	stageLoadingTasks
	stageRendering
)

var stageMessages = map[startupStage]string{
	stageOpeningStore: "Opening store...",
	stageLoadingTasks: "Loading tasks...",
	stageRendering:    "Laying out bars...",
}

type startupAnimator interface {
	Stage(stage startupStage, detail string)
	Stop()
}

type stageEvent struct {
	stage  startupStage
	detail string
}

// startupSpinner draws a one-line progress indicator on a terminal while the
// store is opened. It appears only once delay has passed.
type startupSpinner struct {
	writer   io.Writer
	delay    time.Duration
	interval time.Duration
	frames   []string
	style    lipgloss.Style

	events chan stageEvent
	stopCh chan struct{}
	doneCh chan struct{}
	once   sync.Once
}

func newStartupSpinner(w io.Writer, delay time.Duration) *startupSpinner {
	if w == nil {
		w = io.Discard
	}
	sp := &startupSpinner{
		writer:   w,
		delay:    delay,
		interval: spinner.MiniDot.FPS,
		frames:   spinner.MiniDot.Frames,
		style:    lipgloss.NewStyle().Foreground(lipgloss.Color("#7aa2f7")),
		events:   make(chan stageEvent, 8),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	go sp.loop()
	return sp
}

func (s *startupSpinner) Stage(stage startupStage, detail string) {
	select {
	case <-s.stopCh:
		return
	default:
	}
	select {
	case s.events <- stageEvent{stage: stage, detail: detail}:
	default:
	}
}

func (s *startupSpinner) Stop() {
	s.once.Do(func() {
		close(s.stopCh)
		<-s.doneCh
	})
}

func (s *startupSpinner) loop() {
	defer close(s.doneCh)

	var delayCh <-chan time.Time
	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		delayCh = timer.C
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var (
		current  stageEvent
		hasStage bool
		frame    int
	)
	visible := s.delay <= 0
	draw := func() {
		if !visible || !hasStage {
			return
		}
		glyph := s.style.Render(s.frames[frame%len(s.frames)])
		frame++
		_, _ = fmt.Fprintf(s.writer, "\r\033[2K%s %s", glyph, formatStageMessage(current.stage, current.detail))
	}

	for {
		select {
		case <-s.stopCh:
			if visible && hasStage {
				_, _ = fmt.Fprint(s.writer, "\r\033[2K")
			}
			return
		case ev := <-s.events:
			current, hasStage = ev, true
			draw()
		case <-ticker.C:
			draw()
		case <-delayCh:
			delayCh = nil
			visible = true
			draw()
		}
	}
}

func formatStageMessage(stage startupStage, detail string) string {
	msg := stageMessages[stage]
	if msg == "" {
		msg = "Starting..."
	}
	if detail = strings.TrimSpace(detail); detail != "" {
		return msg + " " + detail
	}
	return msg
}

type noopAnimator struct{}

func (noopAnimator) Stage(startupStage, string) {}
func (noopAnimator) Stop()                      {}
