package ui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// truncate trims value and cuts it to limit cells with an ellipsis. A
// non-positive limit leaves it whole.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	if limit <= 3 {
		return ansi.Truncate(value, limit, "")
	}
	return ansi.Truncate(value, limit, "...")
}

// padRight pads s with spaces to width cells.
func padRight(s string, width int) string {
	if gap := width - ansi.StringWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func ternary(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}
