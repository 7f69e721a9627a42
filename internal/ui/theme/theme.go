// Package theme provides the semantic colours the terminal host paints the
// chart and its chrome with.
package theme

import (
	"slices"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme is one named palette. Every colour adapts to light and dark
// terminals.
type Theme struct {
	Name string

	// Chrome
	Primary   lipgloss.AdaptiveColor // header bar, focused borders
	Secondary lipgloss.AdaptiveColor // field labels, key pills
	Accent    lipgloss.AdaptiveColor // ids, titles
	Error     lipgloss.AdaptiveColor
	Success   lipgloss.AdaptiveColor

	Text      lipgloss.AdaptiveColor
	TextMuted lipgloss.AdaptiveColor

	Background          lipgloss.AdaptiveColor
	BackgroundSecondary lipgloss.AdaptiveColor // alternate rows, swimlane cells
	Border              lipgloss.AdaptiveColor

	// Chart
	Bar      lipgloss.AdaptiveColor
	Progress lipgloss.AdaptiveColor
	Arrow    lipgloss.AdaptiveColor
	Today    lipgloss.AdaptiveColor
	Selected lipgloss.AdaptiveColor // active arrows and endpoints
}

var registry = struct {
	mu      sync.RWMutex
	themes  map[string]Theme
	current string
}{themes: make(map[string]Theme)}

// Register adds a theme. The first registered theme becomes current.
func Register(t Theme) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.themes[t.Name] = t
	if registry.current == "" {
		registry.current = t.Name
	}
}

// Set switches to a registered theme by name and reports whether it exists.
func Set(name string) bool {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if _, ok := registry.themes[name]; !ok {
		return false
	}
	registry.current = name
	return true
}

// Current returns the active theme.
func Current() Theme {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	return registry.themes[registry.current]
}

// CurrentName returns the name of the active theme.
func CurrentName() string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	return registry.current
}

// Available lists the registered theme names in sorted order.
func Available() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	return sortedNames()
}

func sortedNames() []string {
	names := make([]string, 0, len(registry.themes))
	for name := range registry.themes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Cycle switches to the next theme in sorted order and returns its name.
func Cycle() string {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	names := sortedNames()
	if len(names) == 0 {
		return ""
	}
	next := (slices.Index(names, registry.current) + 1) % len(names)
	registry.current = names[next]
	return registry.current
}
