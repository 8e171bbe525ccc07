package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/quicklinks/internal/state"
)

// Theme is a named palette.
type Theme struct {
	Name string

	Background string
	Surface    string

	SelectionBg   string
	SelectionText string
	BorderFocus   string

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string

	// Sources colors the status badge of a collection by where its dataset
	// came from.
	Sources map[state.Source]string
}

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style

	Header   lipgloss.Style
	Footer   lipgloss.Style
	Logo     lipgloss.Style
	Selected lipgloss.Style

	theme Theme
}

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// Styles builds the styles for t.
func (t Theme) Styles() Styles {
	bar := lipgloss.NewStyle().Background(lipgloss.Color(t.Surface)).Padding(0, 1)
	return Styles{
		Text:        fg(t.Text),
		MutedText:   fg(t.Muted),
		FaintText:   fg(t.Faint),
		AccentText:  fg(t.Accent),
		SuccessText: fg(t.Success).Bold(true),
		WarningText: fg(t.Warning),
		DangerText:  fg(t.Danger).Bold(true),

		Header: bar.Foreground(lipgloss.Color(t.Text)),
		Footer: bar.Foreground(lipgloss.Color(t.Muted)),
		Logo:   fg(t.Warning).Bold(true),
		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.SelectionText)),

		theme: t,
	}
}

// SourceStyle returns the badge style for source. Unknown sources use the
// muted color.
func (s Styles) SourceStyle(source state.Source) lipgloss.Style {
	color, ok := s.theme.Sources[source]
	if !ok {
		color = s.theme.Muted
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.theme.Background)).
		Background(lipgloss.Color(color)).
		Padding(0, 1)
}

// WithBackground returns a copy of s whose text styles paint bgColor, so
// segments placed on a bar do not fall back to the terminal background.
func (s Styles) WithBackground(bgColor string) Styles {
	bg := lipgloss.Color(bgColor)
	out := s
	for _, st := range []*lipgloss.Style{
		&out.Text, &out.MutedText, &out.FaintText, &out.AccentText,
		&out.SuccessText, &out.WarningText, &out.DangerText,
		&out.Header, &out.Footer, &out.Logo,
	} {
		*st = st.Background(bg)
	}
	return out
}

var themeOrder = []Theme{nightfox, kanagawa, slate}

// GetTheme returns the theme called name, or the first theme when name is
// unknown.
func GetTheme(name string) Theme {
	for _, t := range themeOrder {
		if t.Name == name {
			return t
		}
	}
	return themeOrder[0]
}

// NextTheme returns the theme name following current, wrapping around.
func NextTheme(current string) string {
	for i, t := range themeOrder {
		if t.Name == current {
			return themeOrder[(i+1)%len(themeOrder)].Name
		}
	}
	return themeOrder[0].Name
}

// ThemeNames returns the theme names in cycle order.
func ThemeNames() []string {
	names := make([]string, len(themeOrder))
	for i, t := range themeOrder {
		names[i] = t.Name
	}
	return names
}

// https://github.com/EdenEast/nightfox.nvim
var nightfox = Theme{
	Name:          "Nightfox",
	Background:    "#131a24",
	Surface:       "#192330",
	SelectionBg:   "#2b3b51",
	SelectionText: "#cdcecf",
	BorderFocus:   "#719cd6",
	Text:          "#cdcecf",
	Muted:         "#738091",
	Faint:         "#71839b",
	Accent:        "#719cd6",
	Success:       "#81b29a",
	Warning:       "#dbc074",
	Danger:        "#c94f6d",
	Sources: map[state.Source]string{
		state.SourceOverride: "#dbc074",
		state.SourceCache:    "#81b29a",
		state.SourceFallback: "#c94f6d",
	},
}

// https://github.com/rebelot/kanagawa.nvim
var kanagawa = Theme{
	Name:          "Kanagawa",
	Background:    "#16161D",
	Surface:       "#1F1F28",
	SelectionBg:   "#2D4F67",
	SelectionText: "#DCD7BA",
	BorderFocus:   "#7E9CD8",
	Text:          "#DCD7BA",
	Muted:         "#C8C093",
	Faint:         "#727169",
	Accent:        "#7E9CD8",
	Success:       "#98BB6C",
	Warning:       "#E6C384",
	Danger:        "#E46876",
	Sources: map[state.Source]string{
		state.SourceOverride: "#E6C384",
		state.SourceCache:    "#98BB6C",
		state.SourceFallback: "#E46876",
	},
}

// Tailwind slate and sky.
var slate = Theme{
	Name:          "Slate",
	Background:    "#020617",
	Surface:       "#0f172a",
	SelectionBg:   "#0284c7",
	SelectionText: "#f8fafc",
	BorderFocus:   "#38bdf8",
	Text:          "#f1f5f9",
	Muted:         "#94a3b8",
	Faint:         "#64748b",
	Accent:        "#38bdf8",
	Success:       "#22c55e",
	Warning:       "#f59e0b",
	Danger:        "#ef4444",
	Sources: map[state.Source]string{
		state.SourceOverride: "#f59e0b",
		state.SourceCache:    "#22c55e",
		state.SourceFallback: "#ef4444",
	},
}
