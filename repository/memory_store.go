package repository

import (
	"context"
	"sync"
)

// MemoryKVStore keeps entries in process memory. Values are lost on exit.
type MemoryKVStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryKVStore creates an empty store
func NewMemoryKVStore() *MemoryKVStore {
	return &MemoryKVStore{entries: map[string]string{}}
}

func (s *MemoryKVStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	return v, ok, nil
}

func (s *MemoryKVStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
	return nil
}

func (s *MemoryKVStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
