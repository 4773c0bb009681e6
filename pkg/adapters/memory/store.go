package memory

import (
	"context"
	"sync"

	"github.com/aretw0/walkthrough/pkg/domain"
)

// Store implements ports.PreferenceStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]string
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]string),
	}
}

// Get retrieves a value from memory.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return "", domain.ErrPreferenceNotFound
	}
	return v, nil
}

// Set persists the value in memory.
func (s *Store) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// Delete removes the value.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Keys returns the stored keys.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}

// BrokenStore is a PreferenceStore whose every call fails, standing in for
// disabled storage (private browsing, quota exceeded).
type BrokenStore struct{}

func (BrokenStore) Get(context.Context, string) (string, error) {
	return "", domain.ErrStorageUnavailable
}

func (BrokenStore) Set(context.Context, string, string) error {
	return domain.ErrStorageUnavailable
}

func (BrokenStore) Delete(context.Context, string) error {
	return domain.ErrStorageUnavailable
}
