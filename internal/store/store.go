// Package store defines the key/value contract quicklinks persists its state
// through, the key schema, and the one-time legacy migration.
package store

import (
	"context"
	"encoding/json"
	"slices"
	"sync"

	"github.com/five82/quicklinks/internal/links"
)

// Persistent keys. The first six are also read from the legacy store once.
const (
	KeyRecentCustomers = "recentCustomers"
	KeyCustomStandard  = "customStandard"
	KeyCustomCustomers = "customCustomers"
	KeyCacheStandard   = "cacheStandard"
	KeyCacheCustomers  = "cacheCustomers"
	KeyMeta            = "meta"
	KeyMigratedToLocal = "migratedToLocal"
)

// LegacyKeys are relocated from the legacy store by MigrateIfNeeded.
var LegacyKeys = []string{
	KeyRecentCustomers,
	KeyCustomStandard,
	KeyCustomCustomers,
	KeyCacheStandard,
	KeyCacheCustomers,
	KeyMeta,
}

// StateKeys are the keys a full state resolve reads in one Get.
var StateKeys = LegacyKeys

// OverrideKey returns the key holding the user-imported dataset for kind.
func OverrideKey(kind links.Kind) string {
	if kind == links.Customers {
		return KeyCustomCustomers
	}
	return KeyCustomStandard
}

// CacheKey returns the key holding the last synced dataset for kind.
func CacheKey(kind links.Kind) string {
	if kind == links.Customers {
		return KeyCacheCustomers
	}
	return KeyCacheStandard
}

// Values maps keys to raw JSON values. A nil value passed to Set deletes the key.
type Values map[string]json.RawMessage

// Store is a durable key/value store. Get returns only keys that are present.
// Set applies all values in one atomic write.
type Store interface {
	Get(ctx context.Context, keys ...string) (Values, error)
	Set(ctx context.Context, values Values) error
}

// Memory is an in-process Store. The zero value is ready to use.
type Memory struct {
	mu     sync.Mutex
	data   map[string]json.RawMessage
	writes int
}

// NewMemory returns a Memory store seeded with values.
func NewMemory(values Values) *Memory {
	m := &Memory{}
	if len(values) > 0 {
		m.data = make(map[string]json.RawMessage, len(values))
		for k, v := range values {
			if v != nil {
				m.data[k] = slices.Clone(v)
			}
		}
	}
	return m
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, keys ...string) (Values, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(Values, len(keys))
	for _, k := range keys {
		if v, ok := m.data[k]; ok {
			out[k] = slices.Clone(v)
		}
	}
	return out, nil
}

// Set implements Store.
func (m *Memory) Set(_ context.Context, values Values) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		m.data = make(map[string]json.RawMessage)
	}
	for k, v := range values {
		if v == nil {
			delete(m.data, k)
			continue
		}
		m.data[k] = slices.Clone(v)
	}
	m.writes++
	return nil
}

// Writes returns how many Set calls the store has applied.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Dump returns a copy of every stored value.
func (m *Memory) Dump() Values {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(Values, len(m.data))
	for k, v := range m.data {
		out[k] = slices.Clone(v)
	}
	return out
}
