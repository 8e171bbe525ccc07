// Package state decides which dataset is shown for each collection.
//
// # Precedence
//
// For each of the standard and customers collections exactly one dataset is
// effective, never a merge:
//
//	override (user import)  →  cache (last good sync)  →  bundled fallback
//
// A stored value is usable only when it is a JSON array that decodes into the
// collection's shape. An empty array is usable: an imported or synced empty
// collection hides the fallback. A missing key, null, a non-array, or an array
// with the wrong shape falls through to the next tier.
//
// # Resolve and Load
//
// Resolve is pure: it takes the raw store values and the bundled fallback and
// returns a Snapshot. Load reads all keys Resolve needs in one store read, so a
// Snapshot never mixes two store generations.
//
// Snapshot also carries the sync metadata and the recent-customer ids, and
// records per collection whether the dataset came from the override, the
// cache, or the fallback.
//
// # Store
//
// Store keeps the most recent Snapshot for concurrent readers. A failed reload
// keeps the previous Snapshot and records the error:
//
//	st.Update(snap, nil)  // replace
//	st.Update(Snapshot{}, err)  // keep previous, remember err
//
// Current returns copies so callers can never mutate shared state.
package state
