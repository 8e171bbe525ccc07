package state

import (
	"fmt"
	"sync"
	"time"
)

// Store holds the latest resolved snapshot for concurrent readers.
type Store struct {
	mu                  sync.RWMutex
	snapshot            Snapshot
	loaded              bool
	lastUpdated         time.Time
	lastError           error
	consecutiveFailures int
}

// View is what Current returns: the snapshot plus load bookkeeping.
type View struct {
	Snapshot            Snapshot
	Loaded              bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// Update replaces the stored snapshot. When err is non-nil the previous
// snapshot is kept and the error recorded.
func (s *Store) Update(snap Snapshot, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastUpdated = time.Now()
	if err != nil {
		s.lastError = err
		s.consecutiveFailures++
		return
	}
	s.snapshot = snap.Clone()
	s.loaded = true
	s.lastError = nil
	s.consecutiveFailures = 0
}

// Current returns a copy of the stored state.
func (s *Store) Current() View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := View{
		Snapshot:            s.snapshot.Clone(),
		Loaded:              s.loaded,
		LastUpdated:         s.lastUpdated,
		ConsecutiveFailures: s.consecutiveFailures,
	}
	if s.lastError != nil {
		v.LastError = fmt.Errorf("%w", s.lastError)
	}
	return v
}
