// Package popup turns user intents into store changes and fresh snapshots.
// It holds no presentation state of its own: callers pass State in and get
// the next State back.
package popup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/five82/quicklinks/internal/apperr"
	"github.com/five82/quicklinks/internal/fallback"
	"github.com/five82/quicklinks/internal/links"
	"github.com/five82/quicklinks/internal/logging"
	"github.com/five82/quicklinks/internal/opener"
	"github.com/five82/quicklinks/internal/recent"
	"github.com/five82/quicklinks/internal/state"
	"github.com/five82/quicklinks/internal/store"
	"github.com/five82/quicklinks/internal/syncer"
)

// Import pane messages.
const (
	MsgInvalidJSON     = "invalid json"
	MsgExportCopied    = "export copied to clipboard"
	MsgExportManual    = "could not copy automatically, copy from the pane"
	MsgOverrideRemoved = "local override removed"
	MsgSyncRunning     = "sync running..."
	MsgSyncOK          = "sync ok"
	MsgSyncErrors      = "sync completed with errors"
)

// State is the application state owned by the caller.
type State struct {
	View  links.Kind
	Query string
}

// Initial returns the state a fresh popup starts in.
func Initial() State {
	return State{View: links.Standard}
}

// Outcome is the result of one Dispatch.
type Outcome struct {
	State      State
	Snapshot   state.Snapshot
	Message    string
	IsError    bool
	ExportText string
	// Sync is set for Sync intents; the run continues in the background.
	Sync *syncer.Handle
}

// SyncStarter starts a background sync.
type SyncStarter interface {
	Start(ctx context.Context) *syncer.Handle
}

// Deps are the collaborators a Controller needs. Clipboard and Logger are
// optional.
type Deps struct {
	Store     store.Store
	Fallback  *fallback.Data
	Syncer    SyncStarter
	Tracker   *recent.Tracker
	Opener    opener.Opener
	Clipboard opener.Clipboard
	Logger    *slog.Logger
}

// Controller dispatches intents.
type Controller struct {
	kv      store.Store
	fb      fallback.Data
	syncer  SyncStarter
	tracker *recent.Tracker
	opener  opener.Opener
	clip    opener.Clipboard
	logger  *slog.Logger
	current state.Store

	mu     sync.Mutex
	warned map[state.Rejection]bool
}

// New validates deps and builds a Controller. A missing required
// collaborator is reported as an ElementMissing error.
func New(deps Deps) (*Controller, error) {
	switch {
	case deps.Store == nil:
		return nil, apperr.ElementMissing("store")
	case deps.Fallback == nil:
		return nil, apperr.ElementMissing("fallback")
	case deps.Syncer == nil:
		return nil, apperr.ElementMissing("syncer")
	case deps.Tracker == nil:
		return nil, apperr.ElementMissing("tracker")
	case deps.Opener == nil:
		return nil, apperr.ElementMissing("opener")
	}
	return &Controller{
		kv:      deps.Store,
		fb:      *deps.Fallback,
		syncer:  deps.Syncer,
		tracker: deps.Tracker,
		opener:  deps.Opener,
		clip:    deps.Clipboard,
		logger:  logging.OrDiscard(deps.Logger),
		warned:  map[state.Rejection]bool{},
	}, nil
}

// Refresh re-resolves the store and remembers the result.
func (c *Controller) Refresh(ctx context.Context) (state.Snapshot, error) {
	snap, err := state.Load(ctx, c.kv, c.fb)
	c.current.Update(snap, err)
	if err != nil {
		return c.current.Current().Snapshot, err
	}
	c.warnRejected(snap.Rejected)
	return snap, nil
}

// warnRejected logs each ignored stored array once per Controller.
func (c *Controller) warnRejected(rejected []state.Rejection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range rejected {
		if c.warned[r] {
			continue
		}
		c.warned[r] = true
		c.logger.Warn("ignoring stored value that failed validation", "key", r.Key, "reason", r.Reason)
	}
}

// Current returns the last resolved snapshot and load bookkeeping.
func (c *Controller) Current() state.View {
	return c.current.Current()
}

// Dispatch applies intent to st and returns the next state with a freshly
// resolved snapshot. User-facing failures (bad import, browser errors) are
// reported through Outcome.IsError; a returned error means the store failed.
func (c *Controller) Dispatch(ctx context.Context, st State, in Intent) (Outcome, error) {
	if st.View == "" {
		st.View = links.Standard
	}
	out := Outcome{State: st}
	c.logger.Debug("dispatch", "intent", in.Kind.String(), "view", st.View)

	var err error
	switch in.Kind {
	case SwitchView:
		if in.View != links.Standard && in.View != links.Customers {
			return out, fmt.Errorf("%w: %q", links.ErrInvalidKind, in.View)
		}
		out.State.View = in.View
	case Search:
		out.State.Query = in.Query
	case Sync:
		out.Sync = c.syncer.Start(ctx)
		out.Message = MsgSyncRunning
	case Export:
		err = c.export(ctx, &out)
	case Import:
		err = c.importText(ctx, in.Text, &out)
	case ResetOverride:
		err = c.resetOverride(ctx, &out)
	case OpenLink, OpenAll:
		err = c.open(ctx, in, &out)
	default:
		return out, fmt.Errorf("unknown intent %d", in.Kind)
	}
	if err != nil {
		return out, err
	}

	snap, err := c.Refresh(ctx)
	if err != nil {
		return out, err
	}
	out.Snapshot = snap
	return out, nil
}

func (c *Controller) export(ctx context.Context, out *Outcome) error {
	text, err := c.ExportText(ctx, out.State.View)
	if err != nil {
		return err
	}
	out.ExportText = text
	out.Message = MsgExportManual
	if c.clip != nil {
		if err := c.clip.WriteAll(text); err != nil {
			c.logger.Warn("clipboard write failed", "error", err)
		} else {
			out.Message = MsgExportCopied
		}
	}
	return nil
}

// ExportText returns kind's effective dataset as two-space indented JSON.
func (c *Controller) ExportText(ctx context.Context, kind links.Kind) (string, error) {
	snap, err := state.Load(ctx, c.kv, c.fb)
	if err != nil {
		return "", err
	}
	return snap.Dataset(kind).Indent()
}

func (c *Controller) importText(ctx context.Context, text string, out *Outcome) error {
	ds, reason := ParseImport(out.State.View, []byte(text))
	if reason != "" {
		out.Message = reason
		out.IsError = true
		return nil
	}
	if err := c.InstallOverride(ctx, ds); err != nil {
		return err
	}
	out.Message = fmt.Sprintf("import ok (%s local override active)", ds.Kind)
	return nil
}

// ParseImport parses and validates text for kind. It returns the dataset, or
// a user-facing reason when the text is rejected.
func ParseImport(kind links.Kind, text []byte) (links.Dataset, string) {
	if !json.Valid(text) {
		return links.Dataset{}, MsgInvalidJSON
	}
	ds, err := links.Decode(kind, text)
	if err != nil {
		var ve *links.ValidationError
		if errors.As(err, &ve) {
			return links.Dataset{}, ve.Reason
		}
		return links.Dataset{}, err.Error()
	}
	return ds, ""
}

// InstallOverride stores ds as its collection's override.
func (c *Controller) InstallOverride(ctx context.Context, ds links.Dataset) error {
	raw, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("encode override: %w", err)
	}
	if err := c.kv.Set(ctx, store.Values{store.OverrideKey(ds.Kind): raw}); err != nil {
		return apperr.New(apperr.KindStorage, "write override", err)
	}
	c.logger.Info("override installed", "collection", ds.Kind, "entries", ds.Len())
	return nil
}

func (c *Controller) resetOverride(ctx context.Context, out *Outcome) error {
	if err := c.ClearOverride(ctx, out.State.View); err != nil {
		return err
	}
	out.Message = MsgOverrideRemoved
	return nil
}

// ClearOverride deletes kind's override.
func (c *Controller) ClearOverride(ctx context.Context, kind links.Kind) error {
	if err := c.kv.Set(ctx, store.Values{store.OverrideKey(kind): nil}); err != nil {
		return apperr.New(apperr.KindStorage, "clear override", err)
	}
	c.logger.Info("override cleared", "collection", kind)
	return nil
}

func (c *Controller) open(ctx context.Context, in Intent, out *Outcome) error {
	urls := in.URLs
	if in.Kind == OpenLink && len(urls) > 1 {
		urls = urls[:1]
	}
	if out.State.View == links.Customers && in.OwnerID != "" {
		if _, err := c.tracker.RecordOpened(ctx, in.OwnerID); err != nil {
			return apperr.New(apperr.KindStorage, "record recent customer", err)
		}
	}
	if err := opener.OpenAll(c.opener, urls); err != nil {
		out.Message = err.Error()
		out.IsError = true
		c.logger.Warn("open link failed", "error", err)
		return nil
	}
	if len(urls) == 1 {
		out.Message = "opened " + urls[0]
	} else {
		out.Message = fmt.Sprintf("opened %d links", len(urls))
	}
	return nil
}

// SyncMessage describes a finished sync for the status line.
func SyncMessage(report syncer.Report) (string, bool) {
	if report.Status == syncer.StatusOK {
		return MsgSyncOK, false
	}
	return MsgSyncErrors, true
}
