// Package app is the composition root of quicklinks.
//
// Open loads the config, opens the log file and the sqlite store, migrates
// the legacy JSON store once, resolves the shared key and wires the fetch
// boundary, syncer, recent tracker and popup controller into a Runtime. The
// CLI commands share that Runtime; Run adds the preferences, the store
// watcher and the startup soft sync, then hands control to the TUI.
//
// Background syncs go through a tracking starter so Close can wait for a run
// that is still writing before the store is closed.
package app
