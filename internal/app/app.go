package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/five82/quicklinks/internal/apperr"
	"github.com/five82/quicklinks/internal/config"
	"github.com/five82/quicklinks/internal/fallback"
	"github.com/five82/quicklinks/internal/logging"
	"github.com/five82/quicklinks/internal/opener"
	"github.com/five82/quicklinks/internal/popup"
	"github.com/five82/quicklinks/internal/prefs"
	"github.com/five82/quicklinks/internal/recent"
	"github.com/five82/quicklinks/internal/remote"
	"github.com/five82/quicklinks/internal/store"
	"github.com/five82/quicklinks/internal/store/jsonfile"
	"github.com/five82/quicklinks/internal/store/sqlite"
	"github.com/five82/quicklinks/internal/syncer"
	"github.com/five82/quicklinks/internal/tracing"
	"github.com/five82/quicklinks/internal/ui"
	"github.com/five82/quicklinks/internal/watch"
)

// closeWait bounds how long Close waits for background syncs to finish
// their store write.
const closeWait = 10 * time.Second

// Options configure a Runtime.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses ~/.config/quicklinks/prefs.toml
	Version    string

	// Opener and Clipboard default to the system browser and clipboard.
	Opener    opener.Opener
	Clipboard opener.Clipboard
	// LogOutput replaces the configured log file when set.
	LogOutput io.Writer
}

// Runtime holds the wired collaborators shared by the TUI and the CLI
// commands.
type Runtime struct {
	Config     config.Config
	KeySource  config.KeySource
	Logger     *slog.Logger
	Tracer     *tracing.Tracer
	Store      *sqlite.Store
	Fallback   fallback.Data
	Boundary   remote.Boundary
	Fetcher    *remote.Fetcher
	Syncer     *syncer.Syncer
	Tracker    *recent.Tracker
	Controller *popup.Controller

	starter *trackedStarter
	logFile io.Closer
}

// Open loads configuration and wires every collaborator. The legacy store is
// migrated into the primary store before anything reads it.
func Open(ctx context.Context, opts Options) (*Runtime, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, apperr.New(apperr.KindConfig, "load config", err)
	}
	config.LoadDotenv(config.DotenvPath(opts.ConfigPath), ".env")

	rt := &Runtime{Config: cfg}

	logCfg := logging.Config{
		Level:  logging.Level(cfg.LogLevel),
		Format: logging.Format(cfg.LogFormat),
		Path:   cfg.LogPath,
	}
	if opts.LogOutput != nil {
		logCfg.Path = ""
		logCfg.Output = opts.LogOutput
	}
	logger, logFile, err := logging.Open(logCfg)
	if err != nil {
		return nil, apperr.New(apperr.KindConfig, "open log", err)
	}
	rt.Logger = logger.With("component", "quicklinks")
	rt.logFile = logFile

	exporter, err := tracing.ParseExporter(cfg.Tracing)
	if err != nil {
		rt.Close()
		return nil, apperr.New(apperr.KindConfig, "parse tracing", err)
	}
	rt.Tracer, err = tracing.New(ctx, tracing.Config{
		ExporterType: exporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
		Version:      opts.Version,
	})
	if err != nil {
		rt.Close()
		return nil, apperr.New(apperr.KindConfig, "init tracing", err)
	}

	rt.Store, err = sqlite.Open(cfg.StorePath)
	if err != nil {
		rt.Close()
		return nil, apperr.New(apperr.KindStorage, "open store", err)
	}
	if ran, err := store.MigrateIfNeeded(ctx, rt.Store, jsonfile.New(cfg.LegacyPath)); err != nil {
		rt.Logger.Warn("legacy migration failed", "legacy_path", cfg.LegacyPath, "error", err)
	} else if ran {
		rt.Logger.Info("legacy store migrated", "legacy_path", cfg.LegacyPath)
	}

	key, source, err := cfg.ResolveKey()
	if err != nil {
		rt.Logger.Warn("shared key unavailable", "error", err)
	}
	rt.KeySource = source

	rt.Boundary, err = NewBoundary(cfg, opts.Version)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.Fetcher = remote.NewFetcher(cfg.Endpoint, key, rt.Boundary)
	rt.Syncer = syncer.New(rt.Store, rt.Fetcher, syncer.Options{
		Logger: rt.Logger.With("component", "syncer"),
		Tracer: rt.Tracer,
	})
	rt.starter = &trackedStarter{syncer: rt.Syncer}
	rt.Tracker = recent.NewTracker(rt.Store)

	rt.Fallback, err = fallback.Load()
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("load fallback data: %w", err)
	}

	open := opts.Opener
	if open == nil {
		open = opener.NewBrowser()
	}
	clip := opts.Clipboard
	if clip == nil {
		clip = opener.SystemClipboard{}
	}
	rt.Controller, err = popup.New(popup.Deps{
		Store:     rt.Store,
		Fallback:  &rt.Fallback,
		Syncer:    rt.starter,
		Tracker:   rt.Tracker,
		Opener:    open,
		Clipboard: clip,
		Logger:    rt.Logger.With("component", "popup"),
	})
	if err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

// NewBoundary picks the privileged fetch boundary: the broker when one is
// configured, the in-process transport otherwise.
func NewBoundary(cfg config.Config, version string) (remote.Boundary, error) {
	if cfg.Broker != "" {
		client, err := remote.NewBrokerClient(cfg.Broker, cfg.RequestTimeout)
		if err != nil {
			return nil, apperr.New(apperr.KindConfig, "broker address", err)
		}
		return client, nil
	}
	return NewTransport(cfg, version)
}

// NewTransport builds the in-process transport from cfg.
func NewTransport(cfg config.Config, version string) (*remote.Transport, error) {
	ua := ""
	if version != "" {
		ua = "quicklinks/" + version
	}
	t, err := remote.NewTransport(remote.TransportOptions{
		Timeout:   cfg.RequestTimeout,
		Cookie:    cfg.Cookie,
		UserAgent: ua,
	})
	if err != nil {
		return nil, fmt.Errorf("init transport: %w", err)
	}
	return t, nil
}

// StartSync starts a background sync run tracked by Close.
func (rt *Runtime) StartSync(ctx context.Context) *syncer.Handle {
	return rt.starter.Start(ctx)
}

// Close waits briefly for background syncs, then releases the tracer, the
// store and the log file. It is safe on a partially opened Runtime.
func (rt *Runtime) Close() error {
	var errs []error
	if rt.starter != nil && !rt.starter.wait(closeWait) && rt.Logger != nil {
		rt.Logger.Warn("background sync still running at exit")
	}
	if rt.Tracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rt.Tracer.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
		cancel()
	}
	if rt.Store != nil {
		if err := rt.Store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if rt.logFile != nil {
		if err := rt.logFile.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Run boots the TUI until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	rt, err := Open(ctx, opts)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	userPrefs := prefs.Load(opts.PrefsPath)

	var events <-chan watch.Event
	watcher, err := watch.New(rt.Config.StorePath, watch.Config{})
	if err != nil {
		rt.Logger.Warn("store watcher disabled", "error", err)
	} else {
		defer func() { _ = watcher.Close() }()
		events = watcher.Events()
		go logWatchErrors(rt.Logger, watcher.Errors())
	}

	initial, err := rt.SoftSync(ctx, time.Now())
	if err != nil {
		rt.Logger.Warn("soft sync check failed", "error", err)
	}

	return ui.Run(ui.Options{
		Context:     ctx,
		Controller:  rt.Controller,
		StoreEvents: events,
		InitialSync: initial,
		ThemeName:   userPrefs.Theme,
		View:        userPrefs.Kind(),
		PrefsPath:   opts.PrefsPath,
		Logger:      rt.Logger.With("component", "ui"),
	})
}

func logWatchErrors(logger *slog.Logger, errs <-chan error) {
	for err := range errs {
		logger.Warn("store watcher error", "error", err)
	}
}

// trackedStarter starts syncs and remembers them so Close does not pull the
// store out from under a run that is still writing.
type trackedStarter struct {
	syncer *syncer.Syncer
	wg     sync.WaitGroup
}

func (t *trackedStarter) Start(ctx context.Context) *syncer.Handle {
	h := t.syncer.Start(ctx)
	t.wg.Add(1)
	go func() {
		<-h.Done()
		t.wg.Done()
	}()
	return h
}

// wait reports whether every run finished within timeout.
func (t *trackedStarter) wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
