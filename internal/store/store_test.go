package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/five82/quicklinks/internal/links"
)

func TestMemory_GetReturnsOnlyPresentKeys(t *testing.T) {
	m := NewMemory(Values{KeyMeta: json.RawMessage(`{}`)})

	got, err := m.Get(context.Background(), KeyMeta, KeyCacheStandard)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if len(got) != 1 || string(got[KeyMeta]) != `{}` {
		t.Fatalf("Get = %v, want only meta", got)
	}
	if _, ok := got[KeyCacheStandard]; ok {
		t.Fatalf("Get returned absent key")
	}
}

func TestMemory_SetNilDeletes(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(Values{KeyCustomStandard: json.RawMessage(`[]`)})

	if err := m.Set(ctx, Values{KeyCustomStandard: nil, KeyCacheStandard: json.RawMessage(`[]`)}); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	got, _ := m.Get(ctx, KeyCustomStandard, KeyCacheStandard)
	if _, ok := got[KeyCustomStandard]; ok {
		t.Fatalf("override still present after nil Set")
	}
	if string(got[KeyCacheStandard]) != `[]` {
		t.Fatalf("cache = %q, want []", got[KeyCacheStandard])
	}
	if m.Writes() != 1 {
		t.Fatalf("Writes = %d, want 1", m.Writes())
	}
}

func TestMemory_GetReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(Values{KeyMeta: json.RawMessage(`{"a":1}`)})
	got, _ := m.Get(ctx, KeyMeta)
	got[KeyMeta][0] = 'X'

	again, _ := m.Get(ctx, KeyMeta)
	if string(again[KeyMeta]) != `{"a":1}` {
		t.Fatalf("stored value mutated through Get result: %q", again[KeyMeta])
	}
}

func TestKeysForKind(t *testing.T) {
	if OverrideKey(links.Standard) != KeyCustomStandard || OverrideKey(links.Customers) != KeyCustomCustomers {
		t.Fatalf("OverrideKey mapping wrong")
	}
	if CacheKey(links.Standard) != KeyCacheStandard || CacheKey(links.Customers) != KeyCacheCustomers {
		t.Fatalf("CacheKey mapping wrong")
	}
}
