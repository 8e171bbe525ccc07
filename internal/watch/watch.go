// Package watch reports changes to the local store file so an open TUI can
// re-resolve when another process (a CLI import, a second TUI) writes to it.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the store must be quiet before a change is
// reported.
const DefaultDebounce = 150 * time.Millisecond

// Event reports that the store changed on disk.
type Event struct {
	Path string
	At   time.Time
}

// Config holds watcher settings.
type Config struct {
	Debounce   time.Duration
	BufferSize int
}

// Watcher monitors the directory holding a store file. Writes to the file
// and its sqlite side files (-wal, -journal, -shm) are coalesced into a
// single Event once they settle.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	target    string
	config    Config
	events    chan Event
	errors    chan error

	pendingMu sync.Mutex
	pending   time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

// New starts watching storePath. The parent directory must exist.
func New(storePath string, cfg Config) (*Watcher, error) {
	if strings.TrimSpace(storePath) == "" {
		return nil, fmt.Errorf("store path is empty")
	}
	abs, err := filepath.Abs(storePath)
	if err != nil {
		return nil, fmt.Errorf("resolve store path: %w", err)
	}
	dir := filepath.Dir(abs)
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("stat store dir: %w", err)
	}

	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 8
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsWatcher.Add(dir); err != nil {
		_ = fsWatcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		fsWatcher: fsWatcher,
		target:    filepath.Base(abs),
		config:    cfg,
		events:    make(chan Event, cfg.BufferSize),
		errors:    make(chan error, cfg.BufferSize),
		ctx:       ctx,
		cancel:    cancel,
	}
	w.wg.Add(2)
	go w.processEvents()
	go w.debounceProcessor(abs)
	return w, nil
}

// Events returns the channel of settled store changes. It is closed by Close.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns watcher errors. It is closed by Close.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	w.cancel()
	err := w.fsWatcher.Close()
	w.wg.Wait()

	close(w.events)
	close(w.errors)
	return err
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.matches(event) {
				continue
			}
			w.pendingMu.Lock()
			w.pending = time.Now()
			w.pendingMu.Unlock()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

func (w *Watcher) matches(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return isStoreFile(w.target, filepath.Base(event.Name))
}

func (w *Watcher) debounceProcessor(path string) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.Debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.emitIfSettled(path)
		}
	}
}

func (w *Watcher) emitIfSettled(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	if w.pending.IsZero() || time.Since(w.pending) < w.config.Debounce {
		return
	}
	event := Event{Path: path, At: w.pending}
	w.pending = time.Time{}

	select {
	case w.events <- event:
	default:
		// A change is already queued; the reader re-resolves everything anyway.
	}
}

// isStoreFile reports whether name is the store file or one of its sqlite
// side files. Atomic rewrites arrive as a create or rename of the target.
func isStoreFile(target, name string) bool {
	if name == target {
		return true
	}
	for _, suffix := range []string{"-wal", "-journal", "-shm"} {
		if name == target+suffix {
			return true
		}
	}
	return false
}
