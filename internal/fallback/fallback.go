// Package fallback holds the link collections bundled into the binary. They
// are shown when neither an override nor a synced cache exists.
package fallback

import (
	"embed"
	"fmt"

	"github.com/five82/quicklinks/internal/links"
)

//go:embed data/*.json
var files embed.FS

// Data is the bundled pair of collections.
type Data struct {
	Standard  links.Dataset
	Customers links.Dataset
}

// For returns the bundled dataset for kind.
func (d Data) For(kind links.Kind) links.Dataset {
	if kind == links.Customers {
		return d.Customers
	}
	return d.Standard
}

// Empty returns Data with two empty collections.
func Empty() Data {
	return Data{
		Standard:  links.StandardDataset([]links.Folder{}),
		Customers: links.CustomersDataset([]links.Customer{}),
	}
}

// Load decodes and validates the embedded collections.
func Load() (Data, error) {
	std, err := load(links.Standard)
	if err != nil {
		return Data{}, err
	}
	cus, err := load(links.Customers)
	if err != nil {
		return Data{}, err
	}
	return Data{Standard: std, Customers: cus}, nil
}

func load(kind links.Kind) (links.Dataset, error) {
	name := "data/" + kind.String() + ".json"
	raw, err := files.ReadFile(name)
	if err != nil {
		return links.Dataset{}, fmt.Errorf("read bundled %s: %w", name, err)
	}
	ds, err := links.Decode(kind, raw)
	if err != nil {
		return links.Dataset{}, fmt.Errorf("bundled %s: %w", name, err)
	}
	return ds, nil
}
