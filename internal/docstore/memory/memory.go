package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"daybook/internal/docstore"
)

var _ docstore.Store = (*Store)(nil)

// ErrClosed is returned after Close.
var ErrClosed = errors.New("memory store closed")

type Store struct {
	mu     sync.Mutex
	docs   map[string][]byte
	closed bool
}

func New() *Store {
	return &Store{docs: make(map[string][]byte)}
}

// NewFromFiles seeds the store from <base>/<key>.json for every known key.
// Missing files are skipped; files that are not valid JSON are an error.
func NewFromFiles(base string) (*Store, error) {
	s := New()
	for _, key := range docstore.Keys {
		b, err := os.ReadFile(filepath.Join(base, key+".json"))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read seed %s: %w", key, err)
		}
		if !json.Valid(b) {
			return nil, fmt.Errorf("seed %s: invalid JSON", key)
		}
		s.docs[key] = b
	}
	return s, nil
}

func (s *Store) Load(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, ErrClosed
	}
	b, ok := s.docs[key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(b), true, nil
}

func (s *Store) Save(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.docs[key] = slices.Clone(value)
	return nil
}

// Close makes every later call fail, which is handy for exercising persistence errors.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
