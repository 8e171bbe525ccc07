package popup

import "github.com/five82/quicklinks/internal/links"

// IntentKind enumerates the user actions the controller handles.
type IntentKind int

const (
	SwitchView IntentKind = iota
	Search
	Sync
	Export
	Import
	ResetOverride
	OpenLink
	OpenAll
)

var intentNames = map[IntentKind]string{
	SwitchView:    "switch-view",
	Search:        "search",
	Sync:          "sync",
	Export:        "export",
	Import:        "import",
	ResetOverride: "reset-override",
	OpenLink:      "open-link",
	OpenAll:       "open-all",
}

func (k IntentKind) String() string {
	if name, ok := intentNames[k]; ok {
		return name
	}
	return "unknown"
}

// Intent is one user action. Only the fields relevant to Kind are read.
type Intent struct {
	Kind IntentKind

	View  links.Kind // SwitchView
	Query string     // Search
	Text  string     // Import

	// OwnerID is the folder or customer the link belongs to. For the
	// customers view it is recorded as recently used.
	OwnerID string
	URLs    []string // OpenLink uses the first
}

// SwitchTo selects a collection.
func SwitchTo(kind links.Kind) Intent { return Intent{Kind: SwitchView, View: kind} }

// SearchFor sets the filter query.
func SearchFor(query string) Intent { return Intent{Kind: Search, Query: query} }

// ImportText installs text as the active collection's override.
func ImportText(text string) Intent { return Intent{Kind: Import, Text: text} }

// Open opens one link owned by ownerID.
func Open(ownerID, url string) Intent {
	return Intent{Kind: OpenLink, OwnerID: ownerID, URLs: []string{url}}
}

// OpenEvery opens all links of ownerID.
func OpenEvery(ownerID string, urls []string) Intent {
	return Intent{Kind: OpenAll, OwnerID: ownerID, URLs: urls}
}
