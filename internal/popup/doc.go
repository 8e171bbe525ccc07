// Package popup is the application layer between the UI and the core.
//
// The UI owns a State value (active collection and search query) and sends
// Intents to Controller.Dispatch:
//
//	out, err := ctl.Dispatch(ctx, st, popup.SwitchTo(links.Customers))
//	st = out.State
//	render(popup.Sections(out.Snapshot, st), popup.StatusText(out.Snapshot))
//
// Every Dispatch re-reads the store, so the returned Snapshot always reflects
// the write the intent performed. Sync returns immediately with a
// *syncer.Handle; the UI waits on it in the background and refreshes when it
// completes.
//
// Import messages follow the import pane: "invalid json" when the text does
// not parse, the validator's reason when the shape is wrong, and a
// confirmation naming the collection when the override is installed.
//
// Opening a customer link records the customer as recently used before the
// browser is asked to open it.
package popup
