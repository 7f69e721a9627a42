package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keyboard shortcuts of the chart view. Paired bindings
// share help text since they show as one row in the help overlay.
type KeyMap struct {
	// Navigation
	Left      key.Binding
	Right     key.Binding
	Up        key.Binding
	Down      key.Binding
	PageLeft  key.Binding
	PageRight key.Binding
	Today     key.Binding

	// View
	ZoomIn  key.Binding
	ZoomOut key.Binding
	Theme   key.Binding

	// Actions
	Detail key.Binding
	Copy   key.Binding
	Save   key.Binding
	Export key.Binding
	Help   key.Binding
	Quit   key.Binding

	// Search
	Search key.Binding
	Enter  key.Binding
	Escape key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/→  h/l", "Scroll left/right"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("←/→  h/l", "Scroll left/right"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/↓  j/k", "Scroll up/down"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↑/↓  j/k", "Scroll up/down"),
		),
		PageLeft: key.NewBinding(
			key.WithKeys("pgup", "H"),
			key.WithHelp("PgUp/PgDn", "Page left/right"),
		),
		PageRight: key.NewBinding(
			key.WithKeys("pgdown", "L"),
			key.WithHelp("PgUp/PgDn", "Page left/right"),
		),
		Today: key.NewBinding(
			key.WithKeys("t", "home"),
			key.WithHelp("t", "Jump to today"),
		),
		ZoomIn: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+/-", "Finer/coarser view mode"),
		),
		ZoomOut: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("+/-", "Finer/coarser view mode"),
		),
		Theme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Detail: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Toggle task detail"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Copy task ID"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s", "s"),
			key.WithHelp("s", "Save changes"),
		),
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "Export SVG"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "Quit"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Find task"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "Jump to match"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "Cancel gesture or close"),
		),
	}
}
