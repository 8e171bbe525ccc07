package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"slices"

	"github.com/five82/quicklinks/internal/apperr"
	"github.com/five82/quicklinks/internal/fallback"
	"github.com/five82/quicklinks/internal/links"
	"github.com/five82/quicklinks/internal/store"
	"github.com/five82/quicklinks/internal/syncer"
)

// Source names where an effective dataset came from.
type Source string

const (
	SourceOverride Source = "override"
	SourceCache    Source = "cache"
	SourceFallback Source = "fallback"
)

// Snapshot is the renderable state: one effective dataset per collection plus
// the metadata needed to describe it.
type Snapshot struct {
	Standard        links.Dataset
	Customers       links.Dataset
	StandardSource  Source
	CustomersSource Source
	Meta            syncer.Meta
	Recent          []string
	// Rejected lists stored arrays that were skipped because they did not
	// decode into their collection's shape.
	Rejected []Rejection
}

// Rejection is a stored override or cache array that Resolve ignored.
type Rejection struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// Dataset returns the effective dataset of kind.
func (s Snapshot) Dataset(kind links.Kind) links.Dataset {
	if kind == links.Customers {
		return s.Customers
	}
	return s.Standard
}

// Source returns where kind's effective dataset came from.
func (s Snapshot) Source(kind links.Kind) Source {
	if kind == links.Customers {
		return s.CustomersSource
	}
	return s.StandardSource
}

// Clone returns a copy that shares no top-level slices with s.
func (s Snapshot) Clone() Snapshot {
	dup := s
	dup.Standard.Folders = slices.Clone(s.Standard.Folders)
	dup.Customers.Customers = slices.Clone(s.Customers.Customers)
	dup.Recent = slices.Clone(s.Recent)
	dup.Rejected = slices.Clone(s.Rejected)
	return dup
}

// Resolve picks the effective dataset for each collection: override, else
// cache, else fallback. A stored value counts only when it is an array that
// decodes into the collection's shape; an empty array is a valid choice.
func Resolve(values store.Values, fb fallback.Data) Snapshot {
	snap := Snapshot{
		Meta:   syncer.ParseMeta(values[store.KeyMeta]),
		Recent: ParseRecent(values[store.KeyRecentCustomers]),
	}
	snap.Standard, snap.StandardSource = snap.effective(values, links.Standard, fb)
	snap.Customers, snap.CustomersSource = snap.effective(values, links.Customers, fb)
	return snap
}

// Load reads every resolver key in one store read and resolves.
func Load(ctx context.Context, kv store.Store, fb fallback.Data) (Snapshot, error) {
	values, err := kv.Get(ctx, store.StateKeys...)
	if err != nil {
		return Snapshot{}, apperr.New(apperr.KindStorage, "read state", err)
	}
	return Resolve(values, fb), nil
}

// effective walks override then cache. Absent and non-array values fall
// through silently; arrays that fail validation are recorded in Rejected.
func (s *Snapshot) effective(values store.Values, kind links.Kind, fb fallback.Data) (links.Dataset, Source) {
	tiers := []struct {
		key    string
		source Source
	}{
		{store.OverrideKey(kind), SourceOverride},
		{store.CacheKey(kind), SourceCache},
	}
	for _, tier := range tiers {
		raw := bytes.TrimSpace(values[tier.key])
		if len(raw) == 0 {
			continue
		}
		ds, err := links.Decode(kind, raw)
		if err == nil {
			return ds, tier.source
		}
		if raw[0] == '[' {
			s.Rejected = append(s.Rejected, Rejection{Key: tier.key, Reason: rejectReason(err)})
		}
	}
	return fb.For(kind), SourceFallback
}

func rejectReason(err error) string {
	var ve *links.ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	return err.Error()
}

// ParseRecent decodes the stored recent-customer list. Anything other than an
// array yields an empty list; non-string entries are skipped.
func ParseRecent(raw json.RawMessage) []string {
	var items []any
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if id, ok := it.(string); ok {
			out = append(out, id)
		}
	}
	return out
}
