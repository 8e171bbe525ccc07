package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/five82/quicklinks/internal/links"
	"github.com/five82/quicklinks/internal/state"
	"github.com/five82/quicklinks/internal/store"
	"github.com/five82/quicklinks/internal/syncer"
)

type nopOpener struct{ opened []string }

func (o *nopOpener) Open(url string) error {
	o.opened = append(o.opened, url)
	return nil
}

type nopClipboard struct{}

func (nopClipboard) WriteAll(string) error { return nil }

func writeConfig(t *testing.T, dir, endpoint string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	content := fmt.Sprintf(`endpoint = %q
key = "secret"
store_path = %q
legacy_path = %q
log_path = %q
`, endpoint, filepath.Join(dir, "data", "quicklinks.db"), filepath.Join(dir, "state.json"), filepath.Join(dir, "quicklinks.log"))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func openRuntime(t *testing.T, configPath string) *Runtime {
	t.Helper()
	rt, err := Open(context.Background(), Options{
		ConfigPath: configPath,
		Opener:     &nopOpener{},
		Clipboard:  nopClipboard{},
		LogOutput:  &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })
	return rt
}

func TestOpen_MigratesLegacyStore(t *testing.T) {
	dir := t.TempDir()
	legacy := `{"recentCustomers":["acme"],"customStandard":[{"id":"f","name":"F","items":[]}]}`
	if err := os.WriteFile(filepath.Join(dir, "state.json"), []byte(legacy), 0o644); err != nil {
		t.Fatalf("write legacy: %v", err)
	}
	rt := openRuntime(t, writeConfig(t, dir, ""))

	ctx := context.Background()
	ids, err := rt.Tracker.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(ids) != 1 || ids[0] != "acme" {
		t.Fatalf("recent = %v, want [acme]", ids)
	}

	snap, err := rt.Controller.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if snap.Source(links.Standard) != state.SourceOverride {
		t.Fatalf("standard source = %q, want override", snap.Source(links.Standard))
	}
	if snap.Source(links.Customers) != state.SourceFallback {
		t.Fatalf("customers source = %q, want fallback", snap.Source(links.Customers))
	}
}

func TestOpen_SyncThroughTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "secret" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("type") {
		case "standard":
			_, _ = w.Write([]byte(`[{"id":"ops","name":"Ops","items":[{"title":"Grafana","url":"https://grafana.example.com"}]}]`))
		default:
			_, _ = w.Write([]byte(`[{"id":"acme","name":"Acme","links":[{"title":"Portal","url":"https://acme.example.com"}]}]`))
		}
	}))
	defer srv.Close()

	rt := openRuntime(t, writeConfig(t, t.TempDir(), srv.URL))

	h, err := rt.SoftSync(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("SoftSync() error = %v", err)
	}
	if h == nil {
		t.Fatal("SoftSync() started nothing on a fresh store")
	}
	report := h.Wait()
	if len(report.Failed()) != 0 {
		t.Fatalf("sync failures: %+v", report.Failed())
	}

	snap, err := rt.Controller.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	for _, kind := range links.Kinds {
		if snap.Source(kind) != state.SourceCache {
			t.Errorf("%s source = %q, want cache", kind, snap.Source(kind))
		}
	}

	again, err := rt.SoftSync(context.Background(), time.Now())
	if err != nil || again != nil {
		t.Fatalf("second SoftSync() = %v, %v; want nil, nil", again, err)
	}
}

func TestSoftSync_NoEndpoint(t *testing.T) {
	rt := openRuntime(t, writeConfig(t, t.TempDir(), ""))
	h, err := rt.SoftSync(context.Background(), time.Now())
	if err != nil || h != nil {
		t.Fatalf("SoftSync() = %v, %v; want nil, nil", h, err)
	}
}

func TestOpen_BadTracingExporter(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		t.Fatalf("open config: %v", err)
	}
	_, _ = f.WriteString("tracing = \"jaeger\"\n")
	_ = f.Close()

	if _, err := Open(context.Background(), Options{ConfigPath: path, LogOutput: &bytes.Buffer{}}); err == nil {
		t.Fatal("Open() accepted an unknown tracing exporter")
	}
}

type countingStarter struct{ starts int }

func (c *countingStarter) Start(context.Context) *syncer.Handle {
	c.starts++
	return &syncer.Handle{}
}

type failingStore struct{}

func (failingStore) Get(context.Context, ...string) (store.Values, error) {
	return nil, errors.New("disk on fire")
}

func (failingStore) Set(context.Context, store.Values) error {
	return errors.New("disk on fire")
}

func TestStartIfDue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	metaAt := func(std, cus time.Time) json.RawMessage {
		return json.RawMessage(fmt.Sprintf(`{"standard":{"lastOkAt":%q},"customers":{"lastOkAt":%q}}`,
			std.Format(time.RFC3339), cus.Format(time.RFC3339)))
	}

	tests := []struct {
		name   string
		meta   json.RawMessage
		starts bool
	}{
		{name: "never synced", meta: nil, starts: true},
		{name: "one collection never synced", meta: json.RawMessage(`{"standard":{"lastOkAt":"2026-03-10T11:00:00Z"}}`), starts: true},
		{name: "both fresh", meta: metaAt(now.Add(-time.Hour), now.Add(-2*time.Hour)), starts: false},
		{name: "older one stale", meta: metaAt(now.Add(-time.Hour), now.Add(-25*time.Hour)), starts: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := store.Values{}
			if tt.meta != nil {
				values[store.KeyMeta] = tt.meta
			}
			starter := &countingStarter{}
			h, err := StartIfDue(context.Background(), store.NewMemory(values), starter, 24*time.Hour, now)
			if err != nil {
				t.Fatalf("StartIfDue() error = %v", err)
			}
			if (h != nil) != tt.starts || (starter.starts == 1) != tt.starts {
				t.Fatalf("StartIfDue() handle = %v, starts = %d; want started %v", h, starter.starts, tt.starts)
			}
		})
	}
}

func TestStartIfDue_StoreError(t *testing.T) {
	starter := &countingStarter{}
	if _, err := StartIfDue(context.Background(), failingStore{}, starter, 0, time.Now()); err == nil {
		t.Fatal("StartIfDue() ignored a store error")
	}
	if starter.starts != 0 {
		t.Fatalf("starts = %d, want 0", starter.starts)
	}
}
