// Package memory is an in-memory implementation of the key-value
// store, used in tests and throwaway sessions. Nothing survives a
// process restart.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/tekmiz/tekmiz-go/internal/kv"
)

// Store is an in-memory key-value store
type Store struct {
	mu     sync.RWMutex
	values map[string]string
}

// New creates a new in-memory store
func New() *Store {
	return &Store{values: make(map[string]string)}
}

// Ensure Store implements the interface
var _ kv.Store = (*Store)(nil)

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	if !ok {
		return "", kv.ErrKeyNotFound
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for k := range s.values {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}
