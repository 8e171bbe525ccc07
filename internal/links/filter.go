package links

import (
	"strings"

	"github.com/samber/lo"
)

// Normalize lowercases and trims a search query or haystack.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// FilterFolders keeps the links whose "<folder> <title> <url>" contains query
// and drops folders left empty. An empty query returns folders unchanged.
// query must already be normalized.
func FilterFolders(folders []Folder, query string) []Folder {
	if query == "" {
		return folders
	}
	return lo.FilterMap(folders, func(f Folder, _ int) (Folder, bool) {
		items := lo.Filter(f.Items, func(it Link, _ int) bool {
			return strings.Contains(Normalize(f.Name+" "+it.Title+" "+it.URL), query)
		})
		f.Items = items
		return f, len(items) > 0
	})
}

// FilterCustomers keeps customers whose name or tags match query, or that have
// any link whose title or url matches. query must already be normalized.
func FilterCustomers(customers []Customer, query string) []Customer {
	if query == "" {
		return customers
	}
	return lo.Filter(customers, func(c Customer, _ int) bool {
		if strings.Contains(Normalize(c.Name+" "+strings.Join(c.Tags, " ")), query) {
			return true
		}
		return lo.SomeBy(c.Links, func(it Link) bool {
			return strings.Contains(Normalize(it.Title+" "+it.URL), query)
		})
	})
}

// CustomersByID resolves ids against customers in the order given, skipping
// ids that no longer exist.
func CustomersByID(customers []Customer, ids []string) []Customer {
	index := lo.KeyBy(customers, func(c Customer) string { return c.ID })
	return lo.FilterMap(ids, func(id string, _ int) (Customer, bool) {
		c, ok := index[id]
		return c, ok
	})
}
