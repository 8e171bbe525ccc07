// Package logtail reads the end of the quicklinks log file for
// `quicklinks logs`.
//
// Read keeps a ring buffer of the last N lines, so memory stays
// proportional to N rather than to the file size, and a missing file simply
// yields no lines (nothing has been logged yet). Level and Filter understand
// both slog handlers the logging package can write:
//
//	time=2026-01-02T10:00:00Z level=WARN msg="sync collection failed" collection=standard
//	{"time":"2026-01-02T10:00:00Z","level":"WARN","msg":"sync collection failed"}
//
// Continuation lines without a level stay with the record above them.
package logtail
