package syncer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/five82/quicklinks/internal/links"
)

// DefaultInterval is how old the older of the two successful syncs may get
// before a soft sync fires.
const DefaultInterval = 24 * time.Hour

// CollectionMeta records the sync outcome of one collection.
type CollectionMeta struct {
	LastOkAt  *time.Time `json:"lastOkAt,omitempty"`
	LastError string     `json:"lastError,omitempty"`
}

// UnmarshalJSON accepts lastOkAt as RFC3339 text or as epoch milliseconds and
// treats null fields as unset.
func (m *CollectionMeta) UnmarshalJSON(data []byte) error {
	var raw struct {
		LastOkAt  json.RawMessage `json:"lastOkAt"`
		LastError *string         `json:"lastError"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = CollectionMeta{}
	if raw.LastError != nil {
		m.LastError = *raw.LastError
	}
	ts := bytes.TrimSpace(raw.LastOkAt)
	if len(ts) == 0 || bytes.Equal(ts, []byte("null")) {
		return nil
	}
	if ts[0] == '"' {
		var s string
		if err := json.Unmarshal(ts, &s); err != nil {
			return err
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("parse lastOkAt: %w", err)
		}
		m.LastOkAt = &t
		return nil
	}
	ms, err := strconv.ParseFloat(string(ts), 64)
	if err != nil {
		return fmt.Errorf("parse lastOkAt: %w", err)
	}
	if ms > 0 {
		t := time.UnixMilli(int64(ms)).UTC()
		m.LastOkAt = &t
	}
	return nil
}

// Meta is the persisted sync metadata for both collections.
type Meta struct {
	Standard  CollectionMeta `json:"standard"`
	Customers CollectionMeta `json:"customers"`
}

// For returns the metadata of kind.
func (m Meta) For(kind links.Kind) CollectionMeta {
	if kind == links.Customers {
		return m.Customers
	}
	return m.Standard
}

// With returns a copy of m with kind's metadata replaced.
func (m Meta) With(kind links.Kind, cm CollectionMeta) Meta {
	if kind == links.Customers {
		m.Customers = cm
	} else {
		m.Standard = cm
	}
	return m
}

// HasErrors reports whether either collection carries a sync error.
func (m Meta) HasErrors() bool {
	return m.Standard.LastError != "" || m.Customers.LastError != ""
}

// ParseMeta decodes stored metadata. Each collection is decoded on its own:
// absent or unreadable metadata for one collection yields its zero value,
// which forces a sync, and leaves the other collection intact.
func ParseMeta(raw json.RawMessage) Meta {
	var m Meta
	var parts map[string]json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &parts) != nil {
		return m
	}
	for _, kind := range links.Kinds {
		var cm CollectionMeta
		if part, ok := parts[string(kind)]; ok && json.Unmarshal(part, &cm) == nil {
			m = m.With(kind, cm)
		}
	}
	return m
}

// Encode serializes m for storage.
func (m Meta) Encode() (json.RawMessage, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode meta: %w", err)
	}
	return data, nil
}

// ShouldSync reports whether a soft sync is due: always when either
// collection has never synced, otherwise when the older success is at least
// interval old. A non-positive interval means DefaultInterval.
func ShouldSync(meta Meta, now time.Time, interval time.Duration) bool {
	if interval <= 0 {
		interval = DefaultInterval
	}
	std, cus := meta.Standard.LastOkAt, meta.Customers.LastOkAt
	if std == nil || cus == nil {
		return true
	}
	oldest := *std
	if cus.Before(oldest) {
		oldest = *cus
	}
	return now.Sub(oldest) >= interval
}
