package links

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Kind identifies one of the two link collections.
type Kind string

const (
	Standard  Kind = "standard"
	Customers Kind = "customers"
)

// Kinds lists every collection kind in display order.
var Kinds = []Kind{Standard, Customers}

// ErrInvalidKind is returned when a collection name is not recognized.
var ErrInvalidKind = errors.New("invalid collection kind")

// ParseKind converts a user supplied name into a Kind.
func ParseKind(value string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "standard", "std":
		return Standard, nil
	case "customers", "customer", "cus":
		return Customers, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, value)
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	return string(k)
}

// Namespace is the short prefix used in link identities.
func (k Kind) Namespace() string {
	if k == Customers {
		return "cus"
	}
	return "std"
}

// Link is a single titled URL.
type Link struct {
	Title string `json:"title" yaml:"title"`
	URL   string `json:"url" yaml:"url"`
}

// Folder is a named group of links in the standard collection.
type Folder struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Items []Link `json:"items" yaml:"items"`
}

// Customer is a customer entry with its links and optional search tags.
type Customer struct {
	ID    string   `json:"id" yaml:"id"`
	Name  string   `json:"name" yaml:"name"`
	Tags  []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Links []Link   `json:"links" yaml:"links"`
}

// Dataset is a validated collection tagged by kind. Exactly one of Folders or
// Customers is meaningful, selected by Kind.
type Dataset struct {
	Kind      Kind
	Folders   []Folder
	Customers []Customer
}

// StandardDataset wraps folders as a Dataset.
func StandardDataset(folders []Folder) Dataset {
	return Dataset{Kind: Standard, Folders: folders}
}

// CustomersDataset wraps customers as a Dataset.
func CustomersDataset(customers []Customer) Dataset {
	return Dataset{Kind: Customers, Customers: customers}
}

// Len returns the number of top-level entries.
func (d Dataset) Len() int {
	if d.Kind == Customers {
		return len(d.Customers)
	}
	return len(d.Folders)
}

// Payload returns the slice selected by Kind, suitable for marshaling.
func (d Dataset) Payload() any {
	if d.Kind == Customers {
		return d.Customers
	}
	return d.Folders
}

// MarshalJSON encodes the dataset as its bare array.
func (d Dataset) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Payload())
}

// Indent encodes the dataset as pretty-printed JSON with two-space indentation.
func (d Dataset) Indent() (string, error) {
	data, err := json.MarshalIndent(d.Payload(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", d.Kind, err)
	}
	return string(data), nil
}

// LinkID returns the structural identity of a link owned by a folder or customer.
func LinkID(kind Kind, ownerID string, link Link) string {
	return kind.Namespace() + "||" + ownerID + "||" + link.Title + "||" + link.URL
}

// URLs returns the URL of every link in order.
func URLs(items []Link) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.URL)
	}
	return out
}
