package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/five82/quicklinks/internal/links"
)

func sampleSnapshot(id string) Snapshot {
	return Snapshot{
		Standard:       links.StandardDataset([]links.Folder{{ID: id, Name: id, Items: []links.Link{}}}),
		Customers:      links.CustomersDataset([]links.Customer{}),
		StandardSource: SourceCache,
		Recent:         []string{"a"},
	}
}

func TestStore_UpdateAndCurrentClone(t *testing.T) {
	var s Store

	before := time.Now()
	s.Update(sampleSnapshot("one"), nil)

	v := s.Current()
	if !v.Loaded || v.Snapshot.Standard.Folders[0].ID != "one" {
		t.Fatalf("view = %#v", v)
	}
	if v.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", v.LastUpdated, before)
	}

	// Returned snapshot should be independent of the stored one.
	v.Snapshot.Standard.Folders[0].ID = "mutated"
	v.Snapshot.Recent[0] = "z"
	again := s.Current()
	if again.Snapshot.Standard.Folders[0].ID != "one" || again.Snapshot.Recent[0] != "a" {
		t.Fatalf("Current should clone slices; got %#v", again.Snapshot)
	}
}

func TestStore_UpdateErrorKeepsPreviousSnapshot(t *testing.T) {
	var s Store
	s.Update(sampleSnapshot("keep"), nil)

	origErr := errors.New("store locked")
	s.Update(Snapshot{}, origErr)
	s.Update(Snapshot{}, origErr)

	v := s.Current()
	if v.Snapshot.Standard.Folders[0].ID != "keep" {
		t.Fatalf("snapshot replaced on error: %#v", v.Snapshot)
	}
	if v.LastError == nil || v.LastError.Error() != "store locked" {
		t.Fatalf("LastError = %v", v.LastError)
	}
	if reflect.ValueOf(v.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Current should clone error instance")
	}
	if v.ConsecutiveFailures != 2 {
		t.Fatalf("ConsecutiveFailures = %d, want 2", v.ConsecutiveFailures)
	}

	s.Update(sampleSnapshot("new"), nil)
	if v := s.Current(); v.ConsecutiveFailures != 0 || v.LastError != nil {
		t.Fatalf("success did not reset failures: %#v", v)
	}
}
