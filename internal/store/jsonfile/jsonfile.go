// Package jsonfile implements store.Store over a single JSON object on disk.
// Earlier releases kept all state in this format; it is now read once by the
// legacy migration.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/five82/quicklinks/internal/store"
)

var _ store.Store = (*Store)(nil)

// Store is a file-backed store. Every Set rewrites the whole file.
type Store struct {
	path string
	mu   sync.Mutex
}

// New returns a store backed by path. The file is not touched until used.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Get implements store.Store. A missing file reads as empty.
func (s *Store) Get(_ context.Context, keys ...string) (store.Values, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return nil, err
	}
	out := make(store.Values, len(keys))
	for _, k := range keys {
		if v, ok := all[k]; ok && v != nil {
			out[k] = v
		}
	}
	return out, nil
}

// Set implements store.Store.
func (s *Store) Set(_ context.Context, values store.Values) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return err
	}
	for k, v := range values {
		if v == nil {
			delete(all, k)
			continue
		}
		if !json.Valid(v) {
			return fmt.Errorf("write %s: value is not valid json", k)
		}
		all[k] = v
	}
	return s.write(all)
}

func (s *Store) read() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}
	all := map[string]json.RawMessage{}
	if len(data) == 0 {
		return all, nil
	}
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("parse state file %s: %w", s.path, err)
	}
	if all == nil {
		all = map[string]json.RawMessage{}
	}
	return all, nil
}

func (s *Store) write(all map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state file: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
