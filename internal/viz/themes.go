package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the colour scheme of the live view.
type Theme struct {
	Name     string
	Body     lipgloss.Color
	Pair     lipgloss.Color
	Neighbor lipgloss.Color
	Selected lipgloss.Color
	Title    lipgloss.Color
	Muted    lipgloss.Color
}

var (
	ThemeCyberpunk = Theme{
		Name:     "cyberpunk",
		Body:     lipgloss.Color("#00ffff"),
		Pair:     lipgloss.Color("#00ff00"),
		Neighbor: lipgloss.Color("#ffff00"),
		Selected: lipgloss.Color("#ff00ff"),
		Title:    lipgloss.Color("#00ffff"),
		Muted:    lipgloss.Color("#666666"),
	}

	ThemeRetroGreen = Theme{
		Name:     "retro",
		Body:     lipgloss.Color("#00cc00"),
		Pair:     lipgloss.Color("#88ff88"),
		Neighbor: lipgloss.Color("#ffff00"),
		Selected: lipgloss.Color("#ffffff"),
		Title:    lipgloss.Color("#00ff00"),
		Muted:    lipgloss.Color("#005500"),
	}

	ThemeMinimal = Theme{
		Name:     "minimal",
		Body:     lipgloss.Color("#cccccc"),
		Pair:     lipgloss.Color("#00ff00"),
		Neighbor: lipgloss.Color("#0088ff"),
		Selected: lipgloss.Color("#ffaa00"),
		Title:    lipgloss.Color("#ffffff"),
		Muted:    lipgloss.Color("#888888"),
	}

	ThemeOcean = Theme{
		Name:     "ocean",
		Body:     lipgloss.Color("#00a8cc"),
		Pair:     lipgloss.Color("#00ff88"),
		Neighbor: lipgloss.Color("#ffd700"),
		Selected: lipgloss.Color("#ff4444"),
		Title:    lipgloss.Color("#0077be"),
		Muted:    lipgloss.Color("#4488aa"),
	}

	CurrentTheme = ThemeCyberpunk

	Themes = []Theme{
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeMinimal,
		ThemeOcean,
	}
)

// GetTheme returns a theme by name, falling back to cyberpunk.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeCyberpunk
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// nextTheme cycles to the theme after the current one.
func nextTheme() {
	names := ThemeNames()
	for i, name := range names {
		if name == CurrentTheme.Name {
			SetTheme(names[(i+1)%len(names)])
			return
		}
	}
}

// layerStyles maps canvas layers to the current theme.
func layerStyles() map[Layer]lipgloss.Style {
	t := CurrentTheme
	return map[Layer]lipgloss.Style{
		LayerBody:     lipgloss.NewStyle().Foreground(t.Body),
		LayerPair:     lipgloss.NewStyle().Foreground(t.Pair),
		LayerNeighbor: lipgloss.NewStyle().Foreground(t.Neighbor).Bold(true),
		LayerSelected: lipgloss.NewStyle().Foreground(t.Selected).Bold(true),
	}
}
