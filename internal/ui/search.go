package ui

import (
	"fmt"
	"strings"

	"gantry/internal/task"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

const searchMaxResults = 8

// searchBar finds tasks by fuzzy matching their id and name.
type searchBar struct {
	input   textinput.Model
	tasks   []task.Task
	matches []task.Task
	cursor  int
	open    bool
}

func newSearchBar() searchBar {
	in := textinput.New()
	in.Prompt = "/ "
	in.Placeholder = "task name or id"
	in.CharLimit = 120
	return searchBar{input: in}
}

func (s *searchBar) show(tasks []task.Task) {
	s.tasks = tasks
	s.open = true
	s.input.SetValue("")
	s.input.Focus()
	s.refresh()
}

func (s *searchBar) close() {
	s.open = false
	s.input.Blur()
}

func (s *searchBar) move(delta int) {
	if len(s.matches) == 0 {
		return
	}
	s.cursor = (s.cursor + delta + len(s.matches)) % len(s.matches)
}

// selected returns the highlighted match.
func (s *searchBar) selected() (task.Task, bool) {
	if s.cursor < 0 || s.cursor >= len(s.matches) {
		return task.Task{}, false
	}
	return s.matches[s.cursor], true
}

func (s *searchBar) refresh() {
	s.matches = rankTasks(s.tasks, s.input.Value())
	s.cursor = 0
}

// rankTasks orders tasks by fuzzy score against query. An empty query
// keeps every task in chart order; a query matching nothing returns none.
func rankTasks(tasks []task.Task, query string) []task.Task {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return tasks
	}
	targets := make([]string, len(tasks))
	for i, t := range tasks {
		targets[i] = strings.ToLower(t.Name + " " + t.ID)
	}
	matches := fuzzy.Find(query, targets)
	ranked := make([]task.Task, 0, len(matches))
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		t := tasks[m.Index]
		// split instances share an id
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		ranked = append(ranked, t)
	}
	return ranked
}

func (s *searchBar) view(width int) string {
	lines := []string{s.input.View()}
	for i, t := range s.matches {
		if i == searchMaxResults {
			lines = append(lines, styleMuted().Render(fmt.Sprintf("  … %d more", len(s.matches)-i)))
			break
		}
		row := fmt.Sprintf("%s  %s", t.Name, styleMuted().Render(t.ID))
		if i == s.cursor {
			row = styleSelected().Render(fmt.Sprintf(" %s  %s ", t.Name, t.ID))
		} else {
			row = " " + row
		}
		lines = append(lines, row)
	}
	if len(s.matches) == 0 {
		lines = append(lines, styleMuted().Render("  no matching task"))
	}
	return stylePane().Width(max(min(width-4, 60), 20)).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
