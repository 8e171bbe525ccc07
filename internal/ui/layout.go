package ui

import "time"

// Layout rows taken by chrome around the link list: tabs, search box,
// status lines and the command bar.
const (
	headerRows = 3
	footerRows = 4
)

// Widths.
const (
	// LayoutCompactWidth is the threshold below which link URLs are hidden.
	LayoutCompactWidth = 80

	// PaneMinWidth is the narrowest the import/export pane gets.
	PaneMinWidth = 40

	// SearchCharLimit caps the search query length.
	SearchCharLimit = 100
)

// MessageTTL is how long a transient status message stays visible.
const MessageTTL = 6 * time.Second
