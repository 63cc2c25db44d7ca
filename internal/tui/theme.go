package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines colors for the terminal desktop.
type Theme struct {
	Name string

	Background string
	Surface    string
	Border     string
	Text       string
	Muted      string
	Accent     string
	Danger     string
	Selection  string
}

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	Header    lipgloss.Style
	Muted     lipgloss.Style
	Accent    lipgloss.Style
	Danger    lipgloss.Style
	Tile      lipgloss.Style
	Empty     lipgloss.Style
	Selected  lipgloss.Style
	Dragging  lipgloss.Style
	Hovered   lipgloss.Style
	Window    lipgloss.Style
	Dialog    lipgloss.Style
	StatusBar lipgloss.Style
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	tile := lipgloss.NewStyle().
		Width(tileCols-2).
		Height(tileRows-2).
		MaxHeight(tileRows).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(t.Border)).
		Foreground(lipgloss.Color(t.Text)).
		Align(lipgloss.Center)

	return Styles{
		Header: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)).
			Bold(true),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),
		Accent: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)),
		Danger: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Danger)).
			Bold(true),
		Tile: tile,
		Empty: tile.
			BorderStyle(lipgloss.HiddenBorder()),
		Selected: tile.
			BorderForeground(lipgloss.Color(t.Selection)),
		Dragging: tile.
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color(t.Muted)).
			Foreground(lipgloss.Color(t.Muted)),
		Hovered: tile.
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color(t.Accent)),
		Window: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Accent)).
			Padding(0, windowInsetCols-1),
		Dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Danger)).
			Padding(1, 2),
		StatusBar: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),
	}
}

var themes = map[string]Theme{
	"Genshin": genshinTheme(),
	"Dracula": draculaTheme(),
	"Slate":   slateTheme(),
}

var themeOrder = []string{"Genshin", "Dracula", "Slate"}

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return genshinTheme()
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return themeOrder
}

func genshinTheme() Theme {
	return Theme{
		Name:       "Genshin",
		Background: "#1d2230",
		Surface:    "#262c3d",
		Border:     "#4a5270",
		Text:       "#f4ecd8",
		Muted:      "#8a8fa3",
		Accent:     "#d3bc8e",
		Danger:     "#c0504d",
		Selection:  "#7fb4ca",
	}
}

func draculaTheme() Theme {
	return Theme{
		Name:       "Dracula",
		Background: "#282a36",
		Surface:    "#44475a",
		Border:     "#6272a4",
		Text:       "#f8f8f2",
		Muted:      "#6272a4",
		Accent:     "#bd93f9",
		Danger:     "#ff5555",
		Selection:  "#8be9fd",
	}
}

func slateTheme() Theme {
	return Theme{
		Name:       "Slate",
		Background: "#1e293b",
		Surface:    "#334155",
		Border:     "#475569",
		Text:       "#e2e8f0",
		Muted:      "#94a3b8",
		Accent:     "#38bdf8",
		Danger:     "#f87171",
		Selection:  "#a3e635",
	}
}
