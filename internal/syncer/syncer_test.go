package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/five82/quicklinks/internal/links"
	"github.com/five82/quicklinks/internal/remote"
	"github.com/five82/quicklinks/internal/store"
)

type fakeSource struct {
	mu      sync.Mutex
	payload map[links.Kind]string
	errs    map[links.Kind]error
	calls   int
}

func (f *fakeSource) Fetch(_ context.Context, kind links.Kind) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := f.errs[kind]; err != nil {
		return nil, err
	}
	return json.RawMessage(f.payload[kind]), nil
}

const (
	stdPayload = `[{"id":"f1","name":"Folder","items":[{"title":"A","url":"https://a"}]}]`
	cusPayload = `[{"id":"c1","name":"Acme","links":[{"title":"Shop","url":"https://shop"}]}]`
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRun_BothSucceed(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	kv := store.NewMemory(store.Values{
		store.KeyCustomStandard:  json.RawMessage(`[]`),
		store.KeyCustomCustomers: json.RawMessage(`[]`),
	})
	src := &fakeSource{payload: map[links.Kind]string{links.Standard: stdPayload, links.Customers: cusPayload}}

	report := New(kv, src, Options{Clock: fixedClock(now)}).Run(ctx)

	if report.Status != StatusOK {
		t.Fatalf("status = %q, want ok (results %+v)", report.Status, report.Results)
	}
	if report.RunID == "" {
		t.Fatalf("run id is empty")
	}
	dump := kv.Dump()
	for _, key := range []string{store.KeyCustomStandard, store.KeyCustomCustomers} {
		if _, ok := dump[key]; ok {
			t.Fatalf("override %s not cleared", key)
		}
	}
	assertJSONEqual(t, dump[store.KeyCacheStandard], stdPayload)
	assertJSONEqual(t, dump[store.KeyCacheCustomers], cusPayload)

	meta := ParseMeta(dump[store.KeyMeta])
	if meta.Standard.LastOkAt == nil || !meta.Standard.LastOkAt.Equal(now) {
		t.Fatalf("standard lastOkAt = %v", meta.Standard.LastOkAt)
	}
	if meta.HasErrors() {
		t.Fatalf("unexpected errors in meta: %+v", meta)
	}
}

func TestRun_OneFailureLeavesOtherCollectionUntouched(t *testing.T) {
	ctx := context.Background()
	earlier := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	now := earlier.Add(72 * time.Hour)

	prevMeta, _ := Meta{
		Standard:  CollectionMeta{LastOkAt: &earlier},
		Customers: CollectionMeta{LastOkAt: &earlier},
	}.Encode()
	kv := store.NewMemory(store.Values{
		store.KeyCustomCustomers: json.RawMessage(`[{"id":"o","name":"Override","links":[]}]`),
		store.KeyCacheCustomers:  json.RawMessage(`[{"id":"old","name":"Old","links":[]}]`),
		store.KeyCustomStandard:  json.RawMessage(`[]`),
		store.KeyMeta:            prevMeta,
	})
	src := &fakeSource{
		payload: map[links.Kind]string{links.Standard: stdPayload},
		errs:    map[links.Kind]error{links.Customers: &remote.FetchError{Label: "customers", Status: 500, Text: "down"}},
	}

	report := New(kv, src, Options{Clock: fixedClock(now)}).Run(ctx)

	if report.Status != StatusWithErrors {
		t.Fatalf("status = %q, want %q", report.Status, StatusWithErrors)
	}
	failed := report.Failed()
	if len(failed) != 1 || failed[0].Kind != links.Customers {
		t.Fatalf("failed = %+v", failed)
	}

	dump := kv.Dump()
	assertJSONEqual(t, dump[store.KeyCustomCustomers], `[{"id":"o","name":"Override","links":[]}]`)
	assertJSONEqual(t, dump[store.KeyCacheCustomers], `[{"id":"old","name":"Old","links":[]}]`)
	if _, ok := dump[store.KeyCustomStandard]; ok {
		t.Fatalf("standard override not cleared")
	}

	meta := ParseMeta(dump[store.KeyMeta])
	if meta.Customers.LastError != "customers fetch failed (500): down" {
		t.Fatalf("customers lastError = %q", meta.Customers.LastError)
	}
	if meta.Customers.LastOkAt == nil || !meta.Customers.LastOkAt.Equal(earlier) {
		t.Fatalf("customers lastOkAt changed: %v", meta.Customers.LastOkAt)
	}
	if meta.Standard.LastOkAt == nil || !meta.Standard.LastOkAt.Equal(now) {
		t.Fatalf("standard lastOkAt = %v", meta.Standard.LastOkAt)
	}
}

func TestRun_InvalidPayloadRecordsReason(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory(nil)
	src := &fakeSource{payload: map[links.Kind]string{
		links.Standard:  `[{"id":"1","items":[]}]`,
		links.Customers: `{"not":"array"}`,
	}}

	report := New(kv, src, Options{}).Run(ctx)

	meta := report.Meta
	if meta.Standard.LastError != "standard json invalid: folder is missing id or name" {
		t.Fatalf("standard lastError = %q", meta.Standard.LastError)
	}
	if meta.Customers.LastError != "customers json invalid: customers json must be an array" {
		t.Fatalf("customers lastError = %q", meta.Customers.LastError)
	}
	dump := kv.Dump()
	if _, ok := dump[store.KeyCacheStandard]; ok {
		t.Fatalf("invalid payload was cached")
	}
	if _, ok := dump[store.KeyMeta]; !ok {
		t.Fatalf("meta not written after failed run")
	}
}

func TestRun_LastOkAtNeverMovesBackwards(t *testing.T) {
	ctx := context.Background()
	future := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	prev, _ := Meta{Standard: CollectionMeta{LastOkAt: &future}}.Encode()
	kv := store.NewMemory(store.Values{store.KeyMeta: prev})
	src := &fakeSource{payload: map[links.Kind]string{links.Standard: stdPayload, links.Customers: cusPayload}}

	report := New(kv, src, Options{Clock: fixedClock(future.Add(-time.Hour))}).Run(ctx)

	if got := report.Meta.Standard.LastOkAt; got == nil || !got.Equal(future) {
		t.Fatalf("lastOkAt = %v, want %v", got, future)
	}
}

func TestRun_SuccessClearsPreviousError(t *testing.T) {
	ctx := context.Background()
	prev, _ := Meta{Standard: CollectionMeta{LastError: "standard fetch failed (0): x"}}.Encode()
	kv := store.NewMemory(store.Values{store.KeyMeta: prev})
	src := &fakeSource{payload: map[links.Kind]string{links.Standard: stdPayload, links.Customers: cusPayload}}

	report := New(kv, src, Options{}).Run(ctx)
	if report.Meta.Standard.LastError != "" {
		t.Fatalf("lastError = %q, want cleared", report.Meta.Standard.LastError)
	}
}

type failingStore struct {
	store.Store
	failMeta bool
}

func (f *failingStore) Set(ctx context.Context, values store.Values) error {
	if _, ok := values[store.KeyMeta]; ok && f.failMeta {
		return errors.New("disk full")
	}
	return f.Store.Set(ctx, values)
}

func TestRun_MetaWriteFailureIsReported(t *testing.T) {
	kv := &failingStore{Store: store.NewMemory(nil), failMeta: true}
	src := &fakeSource{payload: map[links.Kind]string{links.Standard: stdPayload, links.Customers: cusPayload}}

	report := New(kv, src, Options{}).Run(context.Background())
	if report.Err == nil || !strings.Contains(report.Err.Error(), "disk full") {
		t.Fatalf("report.Err = %v", report.Err)
	}
	if report.Status != StatusWithErrors {
		t.Fatalf("status = %q", report.Status)
	}
}

// flakyMetaStore fails the first Get that asks for the meta key.
type flakyMetaStore struct {
	store.Store
	failed bool
}

func (f *flakyMetaStore) Get(ctx context.Context, keys ...string) (store.Values, error) {
	for _, key := range keys {
		if key == store.KeyMeta && !f.failed {
			f.failed = true
			return nil, errors.New("database is locked")
		}
	}
	return f.Store.Get(ctx, keys...)
}

func TestRun_MetaReadFailureKeepsStoredMeta(t *testing.T) {
	earlier := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	prev, _ := Meta{
		Standard:  CollectionMeta{LastOkAt: &earlier},
		Customers: CollectionMeta{LastOkAt: &earlier},
	}.Encode()
	mem := store.NewMemory(store.Values{store.KeyMeta: prev})
	kv := &flakyMetaStore{Store: mem}
	src := &fakeSource{
		payload: map[links.Kind]string{links.Standard: stdPayload},
		errs:    map[links.Kind]error{links.Customers: errors.New("down")},
	}

	report := New(kv, src, Options{Clock: fixedClock(earlier.Add(48 * time.Hour))}).Run(context.Background())

	if report.Err == nil || !strings.Contains(report.Err.Error(), "database is locked") {
		t.Fatalf("report.Err = %v", report.Err)
	}
	if report.Status != StatusWithErrors {
		t.Fatalf("status = %q", report.Status)
	}
	assertJSONEqual(t, mem.Dump()[store.KeyCacheStandard], stdPayload)

	meta := ParseMeta(mem.Dump()[store.KeyMeta])
	if meta.Customers.LastOkAt == nil || !meta.Customers.LastOkAt.Equal(earlier) {
		t.Fatalf("customers lastOkAt = %v, want %v", meta.Customers.LastOkAt, earlier)
	}
	if meta.Standard.LastOkAt == nil || !meta.Standard.LastOkAt.Equal(earlier) {
		t.Fatalf("standard lastOkAt = %v, want %v", meta.Standard.LastOkAt, earlier)
	}

	// The next run reads meta normally and records both outcomes.
	report = New(kv, src, Options{Clock: fixedClock(earlier.Add(72 * time.Hour))}).Run(context.Background())
	if report.Err != nil {
		t.Fatalf("second run err = %v", report.Err)
	}
	meta = ParseMeta(mem.Dump()[store.KeyMeta])
	if meta.Customers.LastOkAt == nil || !meta.Customers.LastOkAt.Equal(earlier) {
		t.Fatalf("customers lastOkAt after failed fetch = %v", meta.Customers.LastOkAt)
	}
	if meta.Customers.LastError != "down" {
		t.Fatalf("customers lastError = %q", meta.Customers.LastError)
	}
	if !meta.Standard.LastOkAt.Equal(earlier.Add(72 * time.Hour)) {
		t.Fatalf("standard lastOkAt = %v", meta.Standard.LastOkAt)
	}
}

func TestStart_DetachedFromCancellation(t *testing.T) {
	kv := store.NewMemory(nil)
	src := &fakeSource{payload: map[links.Kind]string{links.Standard: stdPayload, links.Customers: cusPayload}}
	s := New(kv, src, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	h := s.Start(ctx)
	cancel()

	select {
	case <-h.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("background sync did not finish")
	}
	report := h.Wait()
	if report.Status != StatusOK {
		t.Fatalf("status = %q, want ok", report.Status)
	}
	if _, ok := kv.Dump()[store.KeyCacheStandard]; !ok {
		t.Fatalf("cache not written by background run")
	}
}

func TestStart_ConcurrentRunsAreSerialized(t *testing.T) {
	kv := store.NewMemory(nil)
	src := &fakeSource{payload: map[links.Kind]string{links.Standard: stdPayload, links.Customers: cusPayload}}
	s := New(kv, src, Options{})

	h1 := s.Start(context.Background())
	h2 := s.Start(context.Background())
	r1, r2 := h1.Wait(), h2.Wait()

	if r1.RunID == r2.RunID {
		t.Fatalf("runs share id %q", r1.RunID)
	}
	if src.calls != 4 {
		t.Fatalf("fetch calls = %d, want 4", src.calls)
	}
	// Each run does two collection writes and one meta write.
	if got := kv.Writes(); got != 6 {
		t.Fatalf("writes = %d, want 6", got)
	}
}

func assertJSONEqual(t *testing.T, got json.RawMessage, want string) {
	t.Helper()
	var g, w any
	if err := json.Unmarshal(got, &g); err != nil {
		t.Fatalf("stored value %q is not json: %v", got, err)
	}
	if err := json.Unmarshal([]byte(want), &w); err != nil {
		t.Fatalf("want %q is not json: %v", want, err)
	}
	gb, _ := json.Marshal(g)
	wb, _ := json.Marshal(w)
	if string(gb) != string(wb) {
		t.Fatalf("json = %s, want %s", gb, wb)
	}
}
