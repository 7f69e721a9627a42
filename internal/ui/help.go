package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// helpSection is a titled group of bindings.
type helpSection struct {
	title string
	rows  [][]string // [keys, description]
}

// getHelpSections lists which bindings appear in which section. Text comes
// from binding.Help().
func getHelpSections(keys KeyMap) []helpSection {
	return []helpSection{
		{
			title: "NAVIGATION",
			rows: [][]string{
				{keys.Left.Help().Key, keys.Left.Help().Desc},
				{keys.Up.Help().Key, keys.Up.Help().Desc},
				{keys.PageLeft.Help().Key, keys.PageLeft.Help().Desc},
				{keys.Today.Help().Key, keys.Today.Help().Desc},
				{keys.ZoomIn.Help().Key, keys.ZoomIn.Help().Desc},
				{keys.Theme.Help().Key, keys.Theme.Help().Desc},
			},
		},
		{
			title: "ACTIONS",
			rows: [][]string{
				{keys.Detail.Help().Key, keys.Detail.Help().Desc},
				{keys.Copy.Help().Key, keys.Copy.Help().Desc},
				{keys.Save.Help().Key, keys.Save.Help().Desc},
				{keys.Export.Help().Key, keys.Export.Help().Desc},
				{keys.Quit.Help().Key, keys.Quit.Help().Desc},
			},
		},
		{
			title: "MOUSE",
			rows: [][]string{
				{"Drag bar", "Move task"},
				{"Drag edge", "Change start or end"},
				{"Drag endpoint", "Add dependency"},
				{"Double-click", "Open task or create one"},
				{"Wheel", "Scroll"},
			},
		},
		{
			title: "SEARCH",
			rows: [][]string{
				{keys.Search.Help().Key, keys.Search.Help().Desc},
				{keys.Enter.Help().Key, keys.Enter.Help().Desc},
				{keys.Escape.Help().Key, keys.Escape.Help().Desc},
			},
		},
	}
}

// renderHelpOverlay renders the help modal centred in width by height.
func renderHelpOverlay(keys KeyMap, width, height int) string {
	sections := getHelpSections(keys)

	leftCol := lipgloss.JoinVertical(lipgloss.Left,
		renderHelpSectionTable(sections[0]),
		"",
		renderHelpSectionTable(sections[2]),
	)
	rightCol := lipgloss.JoinVertical(lipgloss.Left,
		renderHelpSectionTable(sections[1]),
		"",
		renderHelpSectionTable(sections[3]),
	)
	columns := lipgloss.JoinHorizontal(lipgloss.Top, leftCol, "    ", rightCol)

	title := styleHelpTitle().Render("✦ GANTRY HELP ✦")
	dividerWidth := max(lipgloss.Width(columns), 40)
	divider := styleMuted().Render(strings.Repeat("─", dividerWidth))
	footer := styleMuted().Render("Press ? or Esc to close")

	content := lipgloss.JoinVertical(lipgloss.Center,
		title,
		divider,
		"",
		columns,
		"",
		footer,
	)
	return lipgloss.Place(width, height,
		lipgloss.Center, lipgloss.Center,
		styleHelpOverlay().Render(content),
		lipgloss.WithWhitespaceChars(" "),
	)
}

func renderHelpSectionTable(section helpSection) string {
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return styleHelpKey().Width(16)
			}
			return styleHelpDesc()
		}).
		Rows(section.rows...)

	header := styleHelpSectionHeader().Render(section.title)
	underline := styleMuted().Render(strings.Repeat("─", len(section.title)))

	// the hidden border adds an empty top row
	tableStr := strings.TrimPrefix(t.String(), "\n")

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		underline,
		tableStr,
	)
}
