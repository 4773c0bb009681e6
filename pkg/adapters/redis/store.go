package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/walkthrough/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces preference keys.
const DefaultPrefix = "walkthrough:pref:"

// PreferenceStore implements ports.PreferenceStore using Redis strings.
// It lets several server instances share the platform preference of a user
// when the key is scoped per user (see preference.WithKey).
type PreferenceStore struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*PreferenceStore)

// WithTTL sets the expiration of stored preferences. Every Set refreshes it.
func WithTTL(ttl time.Duration) Option {
	return func(s *PreferenceStore) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *PreferenceStore) {
		s.prefix = prefix
	}
}

// New creates a store with its own client.
func New(address, password string, db int, opts ...Option) *PreferenceStore {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *PreferenceStore {
	store := &PreferenceStore{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *PreferenceStore) key(k string) string {
	return s.prefix + k
}

// Get returns the value stored under key.
func (s *PreferenceStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return "", domain.ErrPreferenceNotFound
		}
		return "", fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return val, nil
}

// Set persists value under key.
func (s *PreferenceStore) Set(ctx context.Context, key, value string) error {
	// A zero ttl means no expiration.
	if err := s.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// Delete removes key.
func (s *PreferenceStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// Ping checks connectivity, for health endpoints.
func (s *PreferenceStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the client.
func (s *PreferenceStore) Close() error {
	return s.client.Close()
}
