// Package syncer refreshes the cached collections from the remote endpoint
// and records the outcome in the sync metadata.
package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/five82/quicklinks/internal/links"
	"github.com/five82/quicklinks/internal/logging"
	"github.com/five82/quicklinks/internal/store"
	"github.com/five82/quicklinks/internal/tracing"
)

// Report status values.
const (
	StatusOK         = "ok"
	StatusWithErrors = "ok with errors"
)

// Source fetches the raw payload of a collection.
type Source interface {
	Fetch(ctx context.Context, kind links.Kind) (json.RawMessage, error)
}

// Result is the outcome of syncing one collection.
type Result struct {
	Kind    links.Kind
	OK      bool
	Entries int
	Error   string
}

// Report summarizes a sync run.
type Report struct {
	RunID    string
	Started  time.Time
	Finished time.Time
	Results  []Result
	Meta     Meta
	Status   string
	// Err is set when the metadata could not be written.
	Err error
}

// Failed returns the results that did not succeed.
func (r Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.OK {
			out = append(out, res)
		}
	}
	return out
}

// Options configures a Syncer. Zero values select defaults.
type Options struct {
	Logger *slog.Logger
	Tracer *tracing.Tracer
	Clock  func() time.Time
}

// Syncer runs sync passes against a store. Runs are serialized.
type Syncer struct {
	kv     store.Store
	source Source
	logger *slog.Logger
	tracer *tracing.Tracer
	now    func() time.Time

	mu sync.Mutex
}

// New builds a Syncer.
func New(kv store.Store, source Source, opts Options) *Syncer {
	s := &Syncer{
		kv:     kv,
		source: source,
		logger: logging.OrDiscard(opts.Logger),
		tracer: opts.Tracer,
		now:    opts.Clock,
	}
	if s.tracer == nil {
		s.tracer = tracing.Noop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Run syncs both collections. A failure of one never affects the other, and
// Run itself never fails: errors end up in the metadata and the Report.
func (s *Syncer) Run(ctx context.Context) Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := Report{RunID: uuid.NewString(), Started: s.now()}
	logger := s.logger.With("run_id", report.RunID)
	ctx, span := s.tracer.StartRun(ctx, report.RunID)

	logger.Info("sync started")

	for _, kind := range links.Kinds {
		report.Results = append(report.Results, s.syncOne(ctx, logger, kind))
	}

	// Meta is read after the fetches so the write covers the latest stored
	// state. Without a readable previous value it is not written at all.
	values, err := s.kv.Get(ctx, store.KeyMeta)
	if err != nil {
		report.Err = fmt.Errorf("read meta: %w", err)
	}
	meta := ParseMeta(values[store.KeyMeta])
	for _, res := range report.Results {
		cm := meta.For(res.Kind)
		if res.OK {
			now := s.now()
			if cm.LastOkAt == nil || now.After(*cm.LastOkAt) {
				cm.LastOkAt = &now
			}
			cm.LastError = ""
		} else {
			cm.LastError = res.Error
		}
		meta = meta.With(res.Kind, cm)
	}

	report.Meta = meta
	if report.Err == nil {
		if encoded, err := meta.Encode(); err != nil {
			report.Err = err
		} else if err := s.kv.Set(ctx, store.Values{store.KeyMeta: encoded}); err != nil {
			report.Err = fmt.Errorf("write meta: %w", err)
		}
	}

	failures := len(report.Failed())
	report.Status = StatusOK
	if failures > 0 || report.Err != nil {
		report.Status = StatusWithErrors
	}
	report.Finished = s.now()

	span.SetFailures(failures)
	if report.Err != nil {
		logger.Error("sync meta update failed", "error", report.Err)
		span.EndWithError(report.Err)
	} else if failures > 0 {
		span.EndWithError(errors.New(StatusWithErrors))
	} else {
		span.End()
	}
	logger.Info("sync finished", "status", report.Status, "failures", failures,
		"duration", report.Finished.Sub(report.Started).String())
	return report
}

// syncOne fetches, validates and stores one collection. On success the cache
// is replaced and the override removed in a single write.
func (s *Syncer) syncOne(ctx context.Context, logger *slog.Logger, kind links.Kind) Result {
	ctx, span := s.tracer.StartCollection(ctx, kind.String())
	res := Result{Kind: kind}

	fail := func(err error) Result {
		res.Error = err.Error()
		logger.Warn("sync collection failed", "collection", kind, "error", res.Error)
		span.EndWithError(err)
		return res
	}

	raw, err := s.source.Fetch(ctx, kind)
	if err != nil {
		return fail(err)
	}
	ds, err := links.Decode(kind, raw)
	if err != nil {
		return fail(fmt.Errorf("%s json invalid: %s", kind, validationReason(err)))
	}
	payload, err := json.Marshal(ds)
	if err != nil {
		return fail(fmt.Errorf("%s encode failed: %w", kind, err))
	}
	if err := s.kv.Set(ctx, store.Values{
		store.CacheKey(kind):    payload,
		store.OverrideKey(kind): nil,
	}); err != nil {
		return fail(fmt.Errorf("%s store failed: %w", kind, err))
	}

	res.OK = true
	res.Entries = ds.Len()
	span.SetCount(res.Entries)
	span.End()
	logger.Info("sync collection ok", "collection", kind, "entries", res.Entries)
	return res
}

func validationReason(err error) string {
	var ve *links.ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	return err.Error()
}

// Handle tracks a background run started by Start.
type Handle struct {
	done   chan struct{}
	report Report
}

// Start runs a sync in the background and returns immediately. The run is
// detached from ctx cancellation so closing the UI does not abort a write.
func (s *Syncer) Start(ctx context.Context) *Handle {
	h := &Handle{done: make(chan struct{})}
	ctx = context.WithoutCancel(ctx)
	go func() {
		defer close(h.done)
		h.report = s.Run(ctx)
	}()
	return h
}

// Done is closed when the run finishes.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the run finishes and returns its report.
func (h *Handle) Wait() Report {
	<-h.done
	return h.report
}
