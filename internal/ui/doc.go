// Package ui provides the quicklinks terminal interface built on Bubble Tea.
//
// # Layout
//
//	quicklinks   1 standard   2 customers          tabs
//	/ search                                       search box
//	────────────────────────────────────────────
//	▾ Daily  3 links                               accordion (viewport)
//	    Mail  https://mail.google.com/
//	▸ Support  2 links
//	────────────────────────────────────────────
//	cache    standard: cache (last ok: ...)        one status line per collection
//	override customers: local override
//	sync ok                                        transient message
//	tab:Customers  /:Search  enter:Open ...        command bar
//
// The customers tab shows a "recently used" section above the full list while
// the search box is empty.
//
// # State
//
// Model keeps a popup.State (active collection and query) and the last
// resolved state.Snapshot. Every user action becomes a popup.Intent that runs
// as a tea.Cmd against popup.Controller; the resulting Outcome carries a fresh
// snapshot, so the list always reflects what the store holds. View and query
// changes are applied to the model immediately and the dispatch only
// refreshes the data behind them.
//
// # Background work
//
//   - A soft sync started at launch is passed in as Options.InitialSync and
//     awaited by a command; pressing s starts another through the controller.
//     When a run finishes the model shows "sync ok" or "sync completed with
//     errors" and re-resolves.
//   - Options.StoreEvents (from the watch package) re-resolves whenever the
//     store file changes on disk, for example after `quicklinks import`.
//
// # Import and export
//
// x exports the active collection as indented JSON, copies it to the
// clipboard when possible and shows it in a read-only pane. i opens an empty
// pane; ctrl+s validates and installs the text as the collection's local
// override. A rejected import keeps the pane open with the reason shown.
//
// # Themes
//
// Nightfox, Kanagawa and Slate. T cycles them; the choice and the last
// active collection are saved through the prefs package.
package ui
