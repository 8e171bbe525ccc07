package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNew_RejectsMissingDir(t *testing.T) {
	if _, err := New("", Config{}); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if _, err := New(filepath.Join(t.TempDir(), "missing", "store.db"), Config{}); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}

func TestWatcher_CoalescesStoreWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quicklinks.db")

	w, err := New(path, Config{Debounce: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte{byte(i)}, 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	select {
	case ev := <-w.Events():
		if ev.Path != path {
			t.Fatalf("event path = %q, want %q", ev.Path, path)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for store event")
	}

	select {
	case ev := <-w.Events():
		t.Fatalf("unexpected second event %+v", ev)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := New(filepath.Join(dir, "quicklinks.db"), Config{Debounce: 30 * time.Millisecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	select {
	case ev := <-w.Events():
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_CloseIsIdempotent(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "store.db"), Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if _, ok := <-w.Events(); ok {
		t.Fatalf("events channel should be closed")
	}
}

func TestIsStoreFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"quicklinks.db", true},
		{"quicklinks.db-wal", true},
		{"quicklinks.db-journal", true},
		{"quicklinks.db-shm", true},
		{"quicklinks.db.bak", false},
		{"state.json", false},
	}
	for _, tt := range tests {
		if got := isStoreFile("quicklinks.db", tt.name); got != tt.want {
			t.Errorf("isStoreFile(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
