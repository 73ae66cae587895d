// Package filestore persists the catalog as a single JSON document that is
// rewritten wholesale on every mutation.
package filestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var emptyDocument = []byte("{\n  \"user\": [],\n  \"products\": []\n}\n")

// Store serializes access to the document. Update holds the write lock for
// the whole read-modify-write cycle, so concurrent mutations never clobber
// each other.
type Store struct {
	path string
	mu   sync.RWMutex
}

// Open returns a Store for path, creating an empty document if none exists.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("filestore: create directory: %w", err)
		}
		if err := os.WriteFile(path, emptyDocument, 0o600); err != nil {
			return nil, fmt.Errorf("filestore: create %s: %w", path, err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("filestore: stat %s: %w", path, err)
	}

	s := &Store{path: path}
	if _, err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Path() string {
	return s.path
}

// View runs fn against a fresh snapshot of the document.
func (s *Store) View(fn func(doc *Document) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	return fn(doc)
}

// Update runs fn against the document and writes it back if fn succeeds.
func (s *Store) Update(fn func(doc *Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.save(doc)
}

func (s *Store) load() (*Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("filestore: read %s: %w", s.path, err)
	}
	doc := &Document{}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("filestore: parse %s: %w", s.path, err)
	}
	return doc, nil
}

// save writes to a temp file in the same directory and renames it over the
// original, so readers never observe a half-written document.
func (s *Store) save(doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("filestore: encode: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".db-*.json")
	if err != nil {
		return fmt.Errorf("filestore: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("filestore: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("filestore: sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("filestore: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("filestore: replace %s: %w", s.path, err)
	}
	return nil
}
