package ui

import (
	"strconv"
	"time"

	"gantry/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

// savedMsg reports the outcome of a store sync.
type savedMsg struct {
	changes []store.Change
	err     error
}

// exportedMsg reports the outcome of an SVG export.
type exportedMsg struct {
	path string
	err  error
}

type toastTickMsg struct{}

func scheduleToastTick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return toastTickMsg{}
	})
}

const (
	toastDuration      = 4 * time.Second
	errorToastDuration = 8 * time.Second
)

// toast is a transient bottom-right notice.
type toast struct {
	text    string
	isError bool
	until   time.Time
}

func (t toast) visible(now time.Time) bool {
	return t.text != "" && now.Before(t.until)
}

func (t toast) view(now time.Time) string {
	remaining := int(t.until.Sub(now).Round(time.Second).Seconds())
	content := t.text
	if remaining > 0 {
		content += "  " + styleMuted().Render("["+strconv.Itoa(remaining)+"s]")
	}
	if t.isError {
		return styleErrorToast().Render("⚠ " + content)
	}
	return styleSuccessToast().Render(content)
}
