package links

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ValidationError describes why a payload was rejected.
type ValidationError struct {
	Kind   Kind
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func invalid(kind Kind, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// shape names the JSON fields that differ between the two collections.
type shape struct {
	collection string // label used for the top-level array
	entry      string // label for an element
	linksField string
}

var shapes = map[Kind]shape{
	Standard:  {collection: "standard", entry: "folder", linksField: "items"},
	Customers: {collection: "customers", entry: "customer", linksField: "links"},
}

// Validate checks the structure of a raw payload for the given kind. It
// returns nil or a *ValidationError naming the first defect found. The whole
// payload is rejected on any defect.
//
// Ids, names and link titles may be non-empty strings or non-zero numbers, as
// spreadsheet exports often emit numeric ids. URLs must be strings.
func Validate(kind Kind, raw json.RawMessage) error {
	_, err := parse(kind, raw)
	return err
}

// parse validates raw and returns its entries with numeric text fields
// rewritten as strings, ready to decode into the typed structs.
func parse(kind Kind, raw json.RawMessage) ([]any, error) {
	sh, ok := shapes[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, invalid(kind, "%s json is not valid json", sh.collection)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, invalid(kind, "%s json is not valid json", sh.collection)
	}
	entries, ok := doc.([]any)
	if !ok {
		return nil, invalid(kind, "%s json must be an array", sh.collection)
	}

	for _, e := range entries {
		obj, ok := e.(map[string]any)
		if !ok {
			return nil, invalid(kind, "%s must be an object", sh.entry)
		}
		id, okID := text(obj["id"])
		name, okName := text(obj["name"])
		if !okID || !okName {
			return nil, invalid(kind, "%s is missing id or name", sh.entry)
		}
		obj["id"], obj["name"] = id, name

		items, ok := obj[sh.linksField].([]any)
		if !ok {
			return nil, invalid(kind, "%s %q is missing %s array", sh.entry, name, sh.linksField)
		}
		for _, it := range items {
			link, ok := it.(map[string]any)
			if !ok {
				return nil, invalid(kind, "a link in %q is missing title or url", name)
			}
			title, okTitle := text(link["title"])
			url, okURL := link["url"].(string)
			if !okTitle || !okURL || url == "" {
				return nil, invalid(kind, "a link in %q is missing title or url", name)
			}
			link["title"] = title
		}

		if kind == Customers {
			if tags, present := obj["tags"]; present && tags != nil && !stringArray(tags) {
				return nil, invalid(kind, "%s %q has tags that are not a list of strings", sh.entry, name)
			}
		}
	}
	return entries, nil
}

// Decode validates raw and converts it into a Dataset. It is the only way
// untrusted bytes become a Dataset.
func Decode(kind Kind, raw json.RawMessage) (Dataset, error) {
	entries, err := parse(kind, raw)
	if err != nil {
		return Dataset{}, err
	}
	clean, err := json.Marshal(entries)
	if err != nil {
		return Dataset{}, invalid(kind, "%s json: %v", kind, err)
	}
	switch kind {
	case Standard:
		var folders []Folder
		if err := json.Unmarshal(clean, &folders); err != nil {
			return Dataset{}, invalid(kind, "standard json: %v", err)
		}
		return StandardDataset(normalizeFolders(folders)), nil
	default:
		var customers []Customer
		if err := json.Unmarshal(clean, &customers); err != nil {
			return Dataset{}, invalid(kind, "customers json: %v", err)
		}
		return CustomersDataset(normalizeCustomers(customers)), nil
	}
}

// text returns v as a string when it is a non-empty string or a non-zero
// number.
func text(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, t != ""
	case json.Number:
		f, err := t.Float64()
		return t.String(), err == nil && f != 0
	}
	return "", false
}

func stringArray(v any) bool {
	arr, ok := v.([]any)
	if !ok {
		return false
	}
	for _, item := range arr {
		if _, ok := item.(string); !ok {
			return false
		}
	}
	return true
}

// normalizeFolders makes empty item lists non-nil so they encode as [].
func normalizeFolders(folders []Folder) []Folder {
	if folders == nil {
		folders = []Folder{}
	}
	for i := range folders {
		if folders[i].Items == nil {
			folders[i].Items = []Link{}
		}
	}
	return folders
}

func normalizeCustomers(customers []Customer) []Customer {
	if customers == nil {
		customers = []Customer{}
	}
	for i := range customers {
		if customers[i].Links == nil {
			customers[i].Links = []Link{}
		}
		if len(customers[i].Tags) == 0 {
			customers[i].Tags = nil
		}
	}
	return customers
}
