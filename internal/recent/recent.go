// Package recent tracks the customers the user opened most recently.
package recent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/five82/quicklinks/internal/state"
	"github.com/five82/quicklinks/internal/store"
)

// Limit is the maximum number of ids kept.
const Limit = 12

// Tracker records opened customers in the store.
type Tracker struct {
	kv store.Store
}

// NewTracker returns a Tracker backed by kv.
func NewTracker(kv store.Store) *Tracker {
	return &Tracker{kv: kv}
}

// List returns the stored ids, most recent first.
func (t *Tracker) List(ctx context.Context) ([]string, error) {
	values, err := t.kv.Get(ctx, store.KeyRecentCustomers)
	if err != nil {
		return nil, fmt.Errorf("read recent customers: %w", err)
	}
	return state.ParseRecent(values[store.KeyRecentCustomers]), nil
}

// RecordOpened moves id to the front of the list, dropping any earlier
// occurrence and anything beyond Limit.
func (t *Tracker) RecordOpened(ctx context.Context, id string) ([]string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("customer id is empty")
	}
	current, err := t.List(ctx)
	if err != nil {
		return nil, err
	}
	next := Push(current, id)

	raw, err := json.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("encode recent customers: %w", err)
	}
	if err := t.kv.Set(ctx, store.Values{store.KeyRecentCustomers: raw}); err != nil {
		return nil, fmt.Errorf("write recent customers: %w", err)
	}
	return next, nil
}

// Push returns ids with id moved to the front, capped at Limit.
func Push(ids []string, id string) []string {
	next := append([]string{id}, lo.Without(ids, id)...)
	if len(next) > Limit {
		next = next[:Limit]
	}
	return next
}
