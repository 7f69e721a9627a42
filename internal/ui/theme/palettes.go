package theme

import "github.com/charmbracelet/lipgloss"

func c(dark, light string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Dark: dark, Light: light}
}

// TokyoNight is the default palette.
var TokyoNight = Theme{
	Name:                "tokyonight",
	Primary:             c("#82aaff", "#2e7de9"),
	Secondary:           c("#c099ff", "#9854f1"),
	Accent:              c("#ff966c", "#b15c00"),
	Error:               c("#ff757f", "#f52a65"),
	Success:             c("#c3e88d", "#587539"),
	Text:                c("#c8d3f5", "#3760bf"),
	TextMuted:           c("#636da6", "#848cb5"),
	Background:          c("#222436", "#e1e2e7"),
	BackgroundSecondary: c("#2f334d", "#d5d6db"),
	Border:              c("#3b4261", "#a8aecb"),
	Bar:                 c("#3e68d7", "#a8bef2"),
	Progress:            c("#82aaff", "#2e7de9"),
	Arrow:               c("#828bb8", "#6172b0"),
	Today:               c("#3b3a32", "#f2ecd3"),
	Selected:            c("#ffc777", "#8c6c3e"),
}

var Catppuccin = Theme{
	Name:                "catppuccin",
	Primary:             c("#89b4fa", "#1e66f5"),
	Secondary:           c("#cba6f7", "#8839ef"),
	Accent:              c("#fab387", "#fe640b"),
	Error:               c("#f38ba8", "#d20f39"),
	Success:             c("#a6e3a1", "#40a02b"),
	Text:                c("#cdd6f4", "#4c4f69"),
	TextMuted:           c("#6c7086", "#9ca0b0"),
	Background:          c("#1e1e2e", "#eff1f5"),
	BackgroundSecondary: c("#313244", "#e6e9ef"),
	Border:              c("#45475a", "#ccd0da"),
	Bar:                 c("#585b70", "#bcc0cc"),
	Progress:            c("#89b4fa", "#1e66f5"),
	Arrow:               c("#9399b2", "#7c7f93"),
	Today:               c("#3a3546", "#f4ead7"),
	Selected:            c("#f5e0dc", "#dc8a78"),
}

var Dracula = Theme{
	Name:                "dracula",
	Primary:             c("#bd93f9", "#7e57c2"),
	Secondary:           c("#8be9fd", "#0097a7"),
	Accent:              c("#f1fa8c", "#f9a825"),
	Error:               c("#ff5555", "#d32f2f"),
	Success:             c("#50fa7b", "#388e3c"),
	Text:                c("#f8f8f2", "#212121"),
	TextMuted:           c("#6272a4", "#757575"),
	Background:          c("#282a36", "#fafafa"),
	BackgroundSecondary: c("#44475a", "#eeeeee"),
	Border:              c("#44475a", "#bdbdbd"),
	Bar:                 c("#6272a4", "#b39ddb"),
	Progress:            c("#bd93f9", "#7e57c2"),
	Arrow:               c("#f8f8f2", "#616161"),
	Today:               c("#3c3d2e", "#fff8e1"),
	Selected:            c("#ff79c6", "#c2185b"),
}

var Gruvbox = Theme{
	Name:                "gruvbox",
	Primary:             c("#83a598", "#076678"),
	Secondary:           c("#d3869b", "#8f3f71"),
	Accent:              c("#fabd2f", "#b57614"),
	Error:               c("#fb4934", "#9d0006"),
	Success:             c("#b8bb26", "#79740e"),
	Text:                c("#ebdbb2", "#3c3836"),
	TextMuted:           c("#a89984", "#7c6f64"),
	Background:          c("#282828", "#fbf1c7"),
	BackgroundSecondary: c("#3c3836", "#ebdbb2"),
	Border:              c("#504945", "#bdae93"),
	Bar:                 c("#665c54", "#d5c4a1"),
	Progress:            c("#83a598", "#076678"),
	Arrow:               c("#a89984", "#7c6f64"),
	Today:               c("#3d3a26", "#f9e8b0"),
	Selected:            c("#fe8019", "#af3a03"),
}

var Nord = Theme{
	Name:                "nord",
	Primary:             c("#88c0d0", "#5e81ac"),
	Secondary:           c("#81a1c1", "#81a1c1"),
	Accent:              c("#8fbcbb", "#8fbcbb"),
	Error:               c("#bf616a", "#bf616a"),
	Success:             c("#a3be8c", "#a3be8c"),
	Text:                c("#eceff4", "#2e3440"),
	TextMuted:           c("#8b95a7", "#3b4252"),
	Background:          c("#2e3440", "#eceff4"),
	BackgroundSecondary: c("#3b4252", "#e5e9f0"),
	Border:              c("#434c5e", "#d8dee9"),
	Bar:                 c("#4c566a", "#d8dee9"),
	Progress:            c("#88c0d0", "#5e81ac"),
	Arrow:               c("#d8dee9", "#4c566a"),
	Today:               c("#3f4136", "#f3eedb"),
	Selected:            c("#ebcb8b", "#d08770"),
}

func init() {
	for _, t := range []Theme{TokyoNight, Catppuccin, Dracula, Gruvbox, Nord} {
		Register(t)
	}
}
