package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const helpModalWidth = 48

// renderHelp renders the key bindings as a centered modal.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	keyStyle := fg(m.theme.Warning).Width(14)

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n" + styles.FaintText.Render(strings.Repeat("─", 30)) + "\n")

	for _, group := range m.keys.helpGroups() {
		b.WriteString("\n" + styles.AccentText.Bold(true).Render(group.title) + "\n")
		for _, binding := range group.bindings {
			h := binding.Help()
			b.WriteString(keyStyle.Render(h.Key) + styles.Text.Render(h.Desc) + "\n")
		}
	}

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(helpModalWidth).
		Render(strings.TrimRight(b.String(), "\n"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}
