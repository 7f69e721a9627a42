package ui

import (
	"fmt"
	"slices"
	"strings"

	"gantry/internal/task"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

// notesKeys are the metadata fields rendered as markdown in the detail pane.
var notesKeys = []string{"notes", "description"}

// detailPane shows one task in a scrollable side pane.
type detailPane struct {
	task     task.Task
	open     bool
	viewport viewport.Model
	format   string
}

func newDetailPane(format string) detailPane {
	return detailPane{viewport: viewport.New(0, 0), format: format}
}

func (d *detailPane) show(t task.Task, width, height int) {
	d.task = t
	d.open = true
	d.resize(width, height)
	d.viewport.GotoTop()
}

func (d *detailPane) close() {
	d.open = false
}

// resize fits the pane into width by height cells, borders included.
func (d *detailPane) resize(width, height int) {
	d.viewport.Width = max(width-2, 1)
	d.viewport.Height = max(height-2, 1)
	if d.open {
		d.viewport.SetContent(renderTaskDetail(d.task, d.viewport.Width, d.format))
	}
}

func (d *detailPane) view() string {
	return stylePane().Render(d.viewport.View())
}

// renderTaskDetail formats a task as field rows followed by its notes.
func renderTaskDetail(t task.Task, width int, format string) string {
	var b strings.Builder
	b.WriteString(styleDetailTitle().Render(t.Name))
	b.WriteString("\n\n")

	field := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, styleField().Render(label), styleVal().Render(value)))
		b.WriteString("\n")
	}
	field("ID", t.ID)
	field("Start", t.Start)
	field("End", t.End)
	field("Progress", fmt.Sprintf("%.0f%%", t.Progress))
	field("Depends on", strings.Join(t.Dependencies, ", "))
	for _, s := range t.Swimlanes {
		if s.IsZero() {
			continue
		}
		label := s.Label()
		if s.Kind == task.KindCheckbox {
			label = "☐ " + label
			if s.Checked {
				label = "☑ " + s.Label()
			}
		}
		field("Swimlane", label)
	}
	for _, m := range t.Milestones {
		field("Milestone", m.End)
	}

	var extra []string
	for k := range t.Metadata {
		if !slices.Contains(notesKeys, k) {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	for _, k := range extra {
		field(k, fmt.Sprint(t.Metadata[k]))
	}

	for _, k := range notesKeys {
		if notes, ok := t.Metadata[k].(string); ok && strings.TrimSpace(notes) != "" {
			b.WriteString("\n")
			b.WriteString(buildMarkdownRenderer(format, width)(notes))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
