package ports

import "context"

// PreferenceStore is a persistent key/value store (the localStorage of the host).
type PreferenceStore interface {
	// Get returns domain.ErrPreferenceNotFound if the key does not exist.
	Get(ctx context.Context, key string) (string, error)

	// Set persists value under key.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
