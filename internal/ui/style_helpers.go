package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// BgStyle paints every cell of a segment, spaces included, with one
// background. Without it the resets lipgloss emits between adjacent styled
// segments leave unpainted gaps in the header and command bar.
type BgStyle struct {
	fill lipgloss.Style
}

// NewBgStyle returns a helper painting with bgColor.
func NewBgStyle(bgColor string) BgStyle {
	return BgStyle{fill: lipgloss.NewStyle().Background(lipgloss.Color(bgColor))}
}

// Render styles text word by word and joins the words with painted spaces.
// Runs of spaces are preserved.
func (b BgStyle) Render(text string, style lipgloss.Style) string {
	if text == "" {
		return ""
	}
	styled := style.Background(b.fill.GetBackground())
	words := strings.Split(text, " ")
	for i, w := range words {
		if w != "" {
			words[i] = styled.Render(w)
		}
	}
	return strings.Join(words, b.fill.Render(" "))
}

// Spaces returns n painted spaces.
func (b BgStyle) Spaces(n int) string {
	return b.fill.Render(strings.Repeat(" ", n))
}

// Sep returns a painted separator.
func (b BgStyle) Sep(sep string) string {
	return b.fill.Render(sep)
}

// Join joins parts with a painted separator.
func (b BgStyle) Join(parts []string, sep string) string {
	return strings.Join(parts, b.Sep(sep))
}
