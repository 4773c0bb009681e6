package ports

import "context"

// ConfigSource defines how the engine retrieves the workflow configuration.
// This allows the storage layer (file, HTTP, memory) to be decoupled.
type ConfigSource interface {
	// Load returns the raw configuration document (JSON, YAML or TOML).
	Load(ctx context.Context) ([]byte, error)

	// Name is a human-readable label for logs and error messages.
	Name() string
}

// Watchable defines an interface for sources that can notify about backend changes.
// This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying configuration changes.
	// Each value names the changed resource.
	Watch(ctx context.Context) (<-chan string, error)
}

// FragmentFetcher resolves a step's contentFile reference into markup.
type FragmentFetcher interface {
	Fetch(ctx context.Context, ref string) (string, error)
}
