package ui

import (
	"fmt"
	"strings"

	"github.com/five82/quicklinks/internal/links"
	"github.com/five82/quicklinks/internal/popup"
)

// renderHeader renders the collection tabs, the search box and a rule.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	parts := []string{bg.Render("quicklinks", styles.Logo)}
	for i, kind := range links.Kinds {
		label := fmt.Sprintf("%d %s", i+1, kind)
		style := styles.MutedText
		if kind == m.state.View {
			style = styles.AccentText.Bold(true).Underline(true)
		}
		parts = append(parts, bg.Render(label, style))
	}
	if !m.loaded {
		parts = append(parts, bg.Render("loading...", styles.FaintText))
	}
	tabs := styles.Header.Width(m.width).Render(bg.Join(parts, "   "))

	search := m.search.View()
	if m.focus != focusSearch && m.state.Query == "" {
		search = m.theme.Styles().FaintText.Render("/ to search")
	}

	rule := m.theme.Styles().FaintText.Render(strings.Repeat("─", max(m.width, 1)))
	return tabs + "\n" + search + "\n" + rule
}

// renderFooter renders one status line per collection, the message line
// and the command bar.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()

	lines := make([]string, 0, footerRows)
	for _, kind := range links.Kinds {
		source := m.snapshot.Source(kind)
		badge := styles.SourceStyle(source).Render(padRight(string(source), 8))
		lines = append(lines, badge+" "+styles.MutedText.Render(popup.StatusLine(m.snapshot, kind)))
	}

	switch {
	case m.message == "":
		lines = append(lines, "")
	case m.messageErr:
		lines = append(lines, styles.DangerText.Render(truncate(m.message, max(m.width, 10))))
	case m.syncing:
		lines = append(lines, styles.WarningText.Render(m.message))
	default:
		lines = append(lines, styles.SuccessText.Render(truncate(m.message, max(m.width, 10))))
	}

	lines = append(lines, m.renderCommandBar())
	return strings.Join(lines, "\n")
}

// renderCommandBar renders the key hints for the focused widget.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.focus {
	case focusSearch:
		commands = []cmd{
			{"enter", "Done"},
			{"esc", "Back"},
		}
	case focusPane:
		commands = []cmd{{"esc", "Close"}}
		if m.paneMode == paneImport {
			commands = append([]cmd{{"ctrl+s", "Apply"}}, commands...)
		}
	default:
		commands = []cmd{
			{"tab", ternary(m.state.View == links.Customers, "Standard", "Customers")},
			{"/", "Search"},
			{"enter", "Open"},
			{"o", "Open all"},
			{"s", ternary(m.syncing, "Syncing", "Sync")},
			{"x", "Export"},
			{"i", "Import"},
			{"r", "Reset"},
			{"?", "More"},
		}
	}

	colon := bg.Sep(":")
	sep := bg.Spaces(2)

	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Footer.Width(m.width).Render(strings.Join(segments, sep))
}

// renderList renders every row of the accordion. The viewport scrolls it.
func (m Model) renderList() string {
	styles := m.theme.Styles()
	lines := make([]string, 0, len(m.list.rows))
	for i, r := range m.list.rows {
		line := m.renderRow(styles, r)
		if i == m.list.cursor && r.selectable() && m.focus == focusList {
			line = styles.Selected.Width(max(m.width, 1)).Render(plainRow(r, m.width, r.key == m.list.expanded))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(styles Styles, r row) string {
	switch r.kind {
	case rowTitle:
		return styles.AccentText.Bold(true).Render(strings.ToUpper(r.text))
	case rowEmpty:
		return "  " + styles.FaintText.Render(r.text)
	case rowGroup:
		marker := ternary(r.key == m.list.expanded, "▾", "▸")
		text := styles.Text.Bold(true).Render(marker + " " + r.group.Title)
		meta := fmt.Sprintf("  %d links", len(r.group.Links))
		if len(r.group.Tags) > 0 {
			meta += "  #" + strings.Join(r.group.Tags, " #")
		}
		return text + styles.FaintText.Render(meta)
	default:
		l := r.group.Links[r.link]
		text := "    " + styles.Text.Render(l.Title)
		if m.width >= LayoutCompactWidth {
			text += "  " + styles.MutedText.Render(truncate(l.URL, m.width/2))
		}
		return text
	}
}

// plainRow renders r without colors, for the highlighted cursor row.
func plainRow(r row, width int, expanded bool) string {
	switch r.kind {
	case rowGroup:
		return ternary(expanded, "▾ ", "▸ ") + r.group.Title
	case rowLink:
		l := r.group.Links[r.link]
		if width >= LayoutCompactWidth {
			return "    " + l.Title + "  " + truncate(l.URL, width/2)
		}
		return "    " + l.Title
	default:
		return r.text
	}
}
