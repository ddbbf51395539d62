// Package localstore is the durable local key/value store backing the
// persisted workspace selection and view descriptor. It is a single JSON
// file; a missing or corrupt file reads as empty rather than erroring.
package localstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store is a file-backed string map. Safe for concurrent use.
type Store struct {
	path string

	mu   sync.Mutex
	data map[string]string
}

// Open loads the store at path, creating an empty one if the file does not
// exist or cannot be parsed.
func Open(path string) *Store {
	s := &Store{path: path, data: map[string]string{}}
	raw, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var data map[string]string
	if err := json.Unmarshal(raw, &data); err != nil || data == nil {
		return s
	}
	s.data = data
	return s
}

// Get returns the value for key and whether it was present.
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

// Set stores key=value and writes the file.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return s.flush()
}

// Remove deletes key and writes the file. Removing an absent key is a no-op.
func (s *Store) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return nil
	}
	delete(s.data, key)
	return s.flush()
}

func (s *Store) flush() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("localstore: marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("localstore: create dir: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0600); err != nil {
		return fmt.Errorf("localstore: write: %w", err)
	}
	return nil
}
