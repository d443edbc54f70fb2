// Package jsonstore is the file-backed persistence alternative: a single
// JSON document keyed by collection name, with the escrow list stored as an
// array under one key. It trades sqlite's querying for a store that needs no
// cgo and can be inspected with any text editor.
package jsonstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/kshaw/clearhold/internal/escrow"
)

const escrowsKey = "escrowmanager_escrows"

// Store reads and writes escrows in a local JSON file. All operations load
// the full document and rewrite it atomically via a temp file, which is fine
// at single-user scale.
type Store struct {
	mu   sync.Mutex
	path string
}

// Open returns a store over path, creating parent directories as needed.
// The file itself is created on first write.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &Store{path: path}, nil
}

func (s *Store) Insert(ctx context.Context, e escrow.Escrow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.load()
	if err != nil {
		return err
	}
	// Newest first, matching the sqlite repo's list order.
	list = append([]escrow.Escrow{e.Clone()}, list...)
	return s.save(list)
}

func (s *Store) Get(ctx context.Context, id string) (escrow.Escrow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.load()
	if err != nil {
		return escrow.Escrow{}, err
	}
	for _, e := range list {
		if e.ID == id {
			return e.Clone(), nil
		}
	}
	return escrow.Escrow{}, escrow.ErrNotFound
}

func (s *Store) List(ctx context.Context, q escrow.Query) ([]escrow.Escrow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.load()
	if err != nil {
		return nil, err
	}
	return escrow.Filter(list, q), nil
}

func (s *Store) Update(ctx context.Context, e escrow.Escrow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.load()
	if err != nil {
		return err
	}
	for i := range list {
		if list[i].ID == e.ID {
			list[i] = e.Clone()
			return s.save(list)
		}
	}
	return escrow.ErrNotFound
}

// load returns the stored escrows newest first. A missing file or key is an
// empty store, not an error.
func (s *Store) load() ([]escrow.Escrow, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	raw, ok := doc[escrowsKey]
	if !ok {
		return nil, nil
	}
	var list []escrow.Escrow
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Store) save(list []escrow.Escrow) error {
	doc := map[string]json.RawMessage{}
	if data, err := os.ReadFile(s.path); err == nil {
		// Preserve unrelated keys written by other parts of the app.
		_ = json.Unmarshal(data, &doc)
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return err
	}
	doc[escrowsKey] = raw
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
