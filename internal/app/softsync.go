package app

import (
	"context"
	"fmt"
	"time"

	"github.com/five82/quicklinks/internal/popup"
	"github.com/five82/quicklinks/internal/store"
	"github.com/five82/quicklinks/internal/syncer"
)

// SoftSync starts a background run when the stored metadata says one is
// due. It returns a nil handle when no run was started, including when no
// endpoint is configured.
func (rt *Runtime) SoftSync(ctx context.Context, now time.Time) (*syncer.Handle, error) {
	if !rt.Fetcher.Configured() {
		rt.Logger.Info("soft sync skipped", "reason", "no endpoint configured")
		return nil, nil
	}
	h, err := StartIfDue(ctx, rt.Store, rt.starter, rt.Config.SyncInterval, now)
	if err != nil {
		return nil, err
	}
	if h != nil {
		rt.Logger.Info("soft sync started", "interval", rt.Config.SyncInterval)
	}
	return h, nil
}

// StartIfDue reads the sync metadata from kv and starts a run through
// starter when syncer.ShouldSync reports one is due.
func StartIfDue(ctx context.Context, kv store.Store, starter popup.SyncStarter, interval time.Duration, now time.Time) (*syncer.Handle, error) {
	values, err := kv.Get(ctx, store.KeyMeta)
	if err != nil {
		return nil, fmt.Errorf("read sync meta: %w", err)
	}
	if !syncer.ShouldSync(syncer.ParseMeta(values[store.KeyMeta]), now, interval) {
		return nil, nil
	}
	return starter.Start(ctx), nil
}
