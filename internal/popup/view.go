package popup

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/five82/quicklinks/internal/links"
	"github.com/five82/quicklinks/internal/state"
)

// Group is one expandable entry: a folder or a customer.
type Group struct {
	ID    string
	Title string
	Tags  []string
	Links []links.Link
}

// URLs returns the URL of every link in the group.
func (g Group) URLs() []string {
	return links.URLs(g.Links)
}

// LinkID returns the structural identity of link i.
func (g Group) LinkID(kind links.Kind, i int) string {
	return links.LinkID(kind, g.ID, g.Links[i])
}

// Section is a titled run of groups. Empty is shown when Groups is empty.
type Section struct {
	Title  string
	Groups []Group
	Empty  string
}

// Section titles and empty-state texts.
const (
	TitleRecent           = "recently used"
	TitleAllCustomers     = "all customers"
	TitleFilteredCustomer = "customers (filtered)"
	EmptyStandard         = "no results"
	EmptyCustomers        = "no customers found"
)

// Sections builds the render model for st's view and query. With a non-empty
// query the first group of the result is meant to start expanded.
func Sections(snap state.Snapshot, st State) []Section {
	q := links.Normalize(st.Query)
	if st.View == links.Customers {
		return customerSections(snap, q)
	}

	folders := links.FilterFolders(snap.Standard.Folders, q)
	return []Section{{
		Groups: lo.Map(folders, func(f links.Folder, _ int) Group {
			return Group{ID: f.ID, Title: f.Name, Links: f.Items}
		}),
		Empty: EmptyStandard,
	}}
}

func customerSections(snap state.Snapshot, q string) []Section {
	toGroup := func(c links.Customer, _ int) Group {
		return Group{ID: c.ID, Title: c.Name, Tags: c.Tags, Links: c.Links}
	}

	var sections []Section
	if q == "" && len(snap.Recent) > 0 {
		recent := links.CustomersByID(snap.Customers.Customers, snap.Recent)
		if len(recent) > 0 {
			sections = append(sections, Section{Title: TitleRecent, Groups: lo.Map(recent, toGroup)})
		}
	}

	title := TitleAllCustomers
	if q != "" {
		title = TitleFilteredCustomer
	}
	matches := links.FilterCustomers(snap.Customers.Customers, q)
	sections = append(sections, Section{
		Title:  title,
		Groups: lo.Map(matches, toGroup),
		Empty:  EmptyCustomers,
	})
	return sections
}

// TimeLayout formats last-ok timestamps in the status line.
const TimeLayout = "2006-01-02 15:04"

// StatusLine describes where kind's dataset came from and when it last
// synced successfully.
func StatusLine(snap state.Snapshot, kind links.Kind) string {
	var mode string
	switch snap.Source(kind) {
	case state.SourceOverride:
		mode = "local override"
	case state.SourceCache:
		mode = "cache"
	default:
		mode = "sync error: fallback"
	}
	line := fmt.Sprintf("%s: %s", kind, mode)
	if at := snap.Meta.For(kind).LastOkAt; at != nil {
		line += fmt.Sprintf(" (last ok: %s)", at.In(time.Local).Format(TimeLayout))
	}
	return line
}

// StatusText returns the status lines of both collections.
func StatusText(snap state.Snapshot) string {
	lines := lo.Map(links.Kinds, func(k links.Kind, _ int) string { return StatusLine(snap, k) })
	return strings.Join(lines, "\n")
}
