package memory

import (
	"context"
	"sync"

	"github.com/aretw0/pious/pkg/domain"
)

// Store implements ports.TreeInfoStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]domain.TreeInfo
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.TreeInfo),
	}
}

// Put stores a copy of info.
func (s *Store) Put(ctx context.Context, key string, info domain.TreeInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = info.Clone()
	return nil
}

// Get returns a copy so callers cannot mutate the stored value.
func (s *Store) Get(ctx context.Context, key string) (domain.TreeInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.data[key]
	if !ok {
		return domain.TreeInfo{}, domain.ErrNotFound
	}
	return info.Clone(), nil
}

// Delete removes the entry.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
