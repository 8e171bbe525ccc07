package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds every binding of the list view. The search box and the
// import/export pane handle their own keys apart from Escape and Submit.
type keyMap struct {
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	Escape     key.Binding

	ViewStandard  key.Binding
	ViewCustomers key.Binding
	Search        key.Binding

	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	Activate key.Binding
	OpenAll  key.Binding

	Sync   key.Binding
	Export key.Binding
	Import key.Binding
	Reset  key.Binding
	Submit key.Binding
}

func bind(label, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(label, desc))
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit:       bind("e/ctrl+c", "Quit", "ctrl+c", "e"),
		Help:       bind("h/?", "Toggle help", "h", "?"),
		CycleTheme: bind("T", "Cycle theme", "T"),
		Tab:        bind("tab", "Switch collection", "tab", "shift+tab"),
		Escape:     bind("esc", "Clear search / close pane", "esc"),

		ViewStandard:  bind("1", "Standard links", "1"),
		ViewCustomers: bind("2", "Customers", "2"),
		Search:        bind("/", "Search", "/"),

		Up:       bind("k/up", "Move up", "k", "up"),
		Down:     bind("j/down", "Move down", "j", "down"),
		Top:      bind("g", "Go to top", "g", "home"),
		Bottom:   bind("G", "Go to bottom", "G", "end"),
		PageUp:   bind("ctrl+u", "Page up", "pgup", "ctrl+u"),
		PageDown: bind("ctrl+d", "Page down", "pgdown", "ctrl+d"),

		Activate: bind("enter", "Expand group / open link", "enter", " "),
		OpenAll:  bind("o", "Open all links in group", "o"),

		Sync:   bind("s", "Sync now", "s"),
		Export: bind("x", "Export to clipboard", "x"),
		Import: bind("i", "Import local override", "i"),
		Reset:  bind("r", "Remove local override", "r"),
		Submit: bind("ctrl+s", "Apply import", "ctrl+s"),
	}
}

type helpGroup struct {
	title    string
	bindings []key.Binding
}

func (k keyMap) helpGroups() []helpGroup {
	return []helpGroup{
		{"Collections", []key.Binding{k.Tab, k.ViewStandard, k.ViewCustomers, k.Search, k.Escape}},
		{"Navigation", []key.Binding{k.Up, k.Down, k.Top, k.Bottom, k.PageUp, k.PageDown, k.Activate, k.OpenAll}},
		{"Data", []key.Binding{k.Sync, k.Export, k.Import, k.Submit, k.Reset}},
		{"General", []key.Binding{k.CycleTheme, k.Help, k.Quit}},
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	groups := k.helpGroups()
	out := make([][]key.Binding, len(groups))
	for i, g := range groups {
		out[i] = g.bindings
	}
	return out
}
