package ui

import (
	"fmt"
	"strings"

	"github.com/five82/quicklinks/internal/popup"
)

type rowKind int

const (
	rowTitle rowKind = iota
	rowEmpty
	rowGroup
	rowLink
)

// row is one rendered line of the link list.
type row struct {
	kind  rowKind
	text  string
	key   string // group key, shared by the group row and its link rows
	group popup.Group
	link  int
}

func (r row) selectable() bool {
	return r.kind == rowGroup || r.kind == rowLink
}

// listState is the accordion over the current sections. At most one group
// is expanded at a time.
type listState struct {
	sections  []popup.Section
	rows      []row
	cursor    int
	expanded  string
	lastQuery string
}

// groupKey identifies a group within its section. The same customer can
// appear both under recently used and under all customers.
func groupKey(section int, id string) string {
	return fmt.Sprintf("%d/%s", section, id)
}

// rebuild replaces the sections and flattens them into rows. A changed,
// non-empty query expands the first matching group. The cursor stays on the
// same group or link when it is still visible.
func (l *listState) rebuild(sections []popup.Section, query string) {
	var anchor *row
	if l.cursor >= 0 && l.cursor < len(l.rows) {
		r := l.rows[l.cursor]
		anchor = &r
	}

	if query != l.lastQuery {
		l.expanded = ""
		if strings.TrimSpace(query) != "" {
			if key, ok := firstGroup(sections); ok {
				l.expanded = key
			}
		}
		l.lastQuery = query
		anchor = nil
	}

	l.sections = sections
	l.rows = l.rows[:0]
	for si, section := range sections {
		if section.Title != "" {
			l.rows = append(l.rows, row{kind: rowTitle, text: section.Title})
		}
		if len(section.Groups) == 0 {
			l.rows = append(l.rows, row{kind: rowEmpty, text: section.Empty})
			continue
		}
		for _, g := range section.Groups {
			key := groupKey(si, g.ID)
			l.rows = append(l.rows, row{kind: rowGroup, key: key, group: g})
			if key != l.expanded {
				continue
			}
			for i := range g.Links {
				l.rows = append(l.rows, row{kind: rowLink, key: key, group: g, link: i})
			}
		}
	}

	if anchor != nil {
		for i, r := range l.rows {
			if r.kind == anchor.kind && r.key == anchor.key && r.link == anchor.link {
				l.cursor = i
				return
			}
		}
	}
	l.moveTo(l.cursor)
}

func firstGroup(sections []popup.Section) (string, bool) {
	for si, section := range sections {
		if len(section.Groups) > 0 {
			return groupKey(si, section.Groups[0].ID), true
		}
	}
	return "", false
}

// reset collapses everything and forgets the last query, so the next
// rebuild treats a non-empty query as new.
func (l *listState) reset() {
	l.expanded = ""
	l.cursor = 0
	l.lastQuery = ""
}

// moveTo places the cursor on the selectable row nearest to index, searching
// forward first.
func (l *listState) moveTo(index int) {
	if len(l.rows) == 0 {
		l.cursor = 0
		return
	}
	if index < 0 {
		index = 0
	}
	if index >= len(l.rows) {
		index = len(l.rows) - 1
	}
	for i := index; i < len(l.rows); i++ {
		if l.rows[i].selectable() {
			l.cursor = i
			return
		}
	}
	for i := index; i >= 0; i-- {
		if l.rows[i].selectable() {
			l.cursor = i
			return
		}
	}
	l.cursor = index
}

// move steps the cursor by delta selectable rows.
func (l *listState) move(delta int) {
	step := 1
	if delta < 0 {
		step = -1
		delta = -delta
	}
	pos := l.cursor
	for ; delta > 0; delta-- {
		next := pos + step
		for next >= 0 && next < len(l.rows) && !l.rows[next].selectable() {
			next += step
		}
		if next < 0 || next >= len(l.rows) {
			break
		}
		pos = next
	}
	l.cursor = pos
}

// current returns the row under the cursor.
func (l *listState) current() (row, bool) {
	if l.cursor < 0 || l.cursor >= len(l.rows) {
		return row{}, false
	}
	r := l.rows[l.cursor]
	return r, r.selectable()
}

// activate toggles the group under the cursor, or returns an intent to open
// the link under it.
func (l *listState) activate() (popup.Intent, bool) {
	r, ok := l.current()
	if !ok {
		return popup.Intent{}, false
	}
	if r.kind == rowLink {
		return popup.Open(r.group.ID, r.group.Links[r.link].URL), true
	}

	if l.expanded == r.key {
		l.expanded = ""
	} else {
		l.expanded = r.key
	}
	l.anchorRebuild(r)
	return popup.Intent{}, false
}

// openAll returns an intent to open every link of the group under the
// cursor.
func (l *listState) openAll() (popup.Intent, bool) {
	r, ok := l.current()
	if !ok || len(r.group.Links) == 0 {
		return popup.Intent{}, false
	}
	return popup.OpenEvery(r.group.ID, r.group.URLs()), true
}

// anchorRebuild re-flattens rows after an expansion change and puts the
// cursor back on r's group.
func (l *listState) anchorRebuild(r row) {
	l.cursor = -1
	l.rebuild(l.sections, l.lastQuery)
	for i, candidate := range l.rows {
		if candidate.kind == rowGroup && candidate.key == r.key {
			l.cursor = i
			return
		}
	}
	l.moveTo(0)
}
