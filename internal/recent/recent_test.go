package recent

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"testing"

	"github.com/five82/quicklinks/internal/store"
)

func TestRecordOpened_MovesToFrontWithoutDuplicates(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(store.NewMemory(nil))

	for _, id := range []string{"A", "B", "A"} {
		if _, err := tr.RecordOpened(ctx, id); err != nil {
			t.Fatalf("RecordOpened(%q) error = %v", id, err)
		}
	}
	got, err := tr.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if want := []string{"A", "B"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("List() = %v, want %v", got, want)
	}
}

func TestRecordOpened_CapsAtLimit(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory(nil)
	tr := NewTracker(kv)

	for i := 1; i <= 13; i++ {
		if _, err := tr.RecordOpened(ctx, fmt.Sprintf("c%d", i)); err != nil {
			t.Fatalf("RecordOpened error = %v", err)
		}
	}
	got, _ := tr.List(ctx)
	if len(got) != Limit {
		t.Fatalf("len = %d, want %d", len(got), Limit)
	}
	if got[0] != "c13" || got[Limit-1] != "c2" {
		t.Fatalf("List() = %v, want c13..c2", got)
	}

	var stored []string
	if err := json.Unmarshal(kv.Dump()[store.KeyRecentCustomers], &stored); err != nil {
		t.Fatalf("stored value is not a string array: %v", err)
	}
	if !reflect.DeepEqual(stored, got) {
		t.Fatalf("stored = %v, listed = %v", stored, got)
	}
}

func TestRecordOpened_RecoversFromCorruptValue(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(store.NewMemory(store.Values{store.KeyRecentCustomers: json.RawMessage(`{"bad":true}`)}))

	got, err := tr.RecordOpened(ctx, "x")
	if err != nil {
		t.Fatalf("RecordOpened error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{"x"}) {
		t.Fatalf("got %v", got)
	}
}

func TestRecordOpened_RejectsEmptyID(t *testing.T) {
	if _, err := NewTracker(store.NewMemory(nil)).RecordOpened(context.Background(), " "); err == nil {
		t.Fatalf("expected error for empty id")
	}
}

func TestPush(t *testing.T) {
	in := []string{"a", "b", "c"}
	got := Push(in, "c")
	if !reflect.DeepEqual(got, []string{"c", "a", "b"}) {
		t.Fatalf("Push = %v", got)
	}
	if !reflect.DeepEqual(in, []string{"a", "b", "c"}) {
		t.Fatalf("Push mutated input: %v", in)
	}
}
