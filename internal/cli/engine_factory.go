package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/aretw0/walkthrough"
	"github.com/aretw0/walkthrough/internal/config"
	"github.com/aretw0/walkthrough/internal/logging"
	"github.com/aretw0/walkthrough/pkg/adapters/file"
	"github.com/aretw0/walkthrough/pkg/adapters/memory"
	"github.com/aretw0/walkthrough/pkg/adapters/redis"
	"github.com/aretw0/walkthrough/pkg/adapters/sqlite"
	"github.com/aretw0/walkthrough/pkg/adapters/web"
	"github.com/aretw0/walkthrough/pkg/persistence/middleware"
	"github.com/aretw0/walkthrough/pkg/ports"
	"github.com/aretw0/walkthrough/pkg/preference"
)

// Workflow is a configuration source with the fetcher for its fragments.
type Workflow struct {
	Source  ports.ConfigSource
	Fetcher ports.FragmentFetcher
}

// OpenWorkflow resolves location to a source. http and https URLs are read
// with the web adapter; anything else is a local file whose directory holds
// the fragments unless contentDir says otherwise.
func OpenWorkflow(location, contentDir string, logger *slog.Logger) (Workflow, error) {
	if location == "" {
		return Workflow{}, fmt.Errorf("no workflow configuration given")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if isURL(location) {
		source, err := web.NewConfigSource(location, web.WithLogger(logger))
		if err != nil {
			return Workflow{}, err
		}
		base := source.BaseURL()
		if contentDir != "" {
			base = strings.TrimSuffix(contentDir, "/") + "/"
		}
		fetcher, err := web.NewFetcher(base, web.WithLogger(logger))
		if err != nil {
			return Workflow{}, err
		}
		return Workflow{Source: source, Fetcher: fetcher}, nil
	}

	path, err := filepath.Abs(location)
	if err != nil {
		return Workflow{}, fmt.Errorf("invalid path: %w", err)
	}
	if contentDir == "" {
		contentDir = filepath.Dir(path)
	}
	source := file.NewConfigSource(path,
		file.WithContentDir(contentDir),
		file.WithSourceLogger(logger),
	)
	return Workflow{Source: source, Fetcher: file.NewFetcher(contentDir)}, nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// OpenStore builds the preference backend named in settings, sealed with
// the store key when one is configured. The returned closer is never nil.
func OpenStore(ctx context.Context, s config.Settings) (ports.PreferenceStore, io.Closer, error) {
	enc, err := s.Encryption()
	if err != nil {
		return nil, nopCloser{}, err
	}
	store, closer, err := openBackend(ctx, s)
	if err != nil || enc == nil {
		return store, closer, err
	}
	mw, err := middleware.NewEncryptionMiddleware(*enc)
	if err != nil {
		_ = closer.Close()
		return nil, nopCloser{}, err
	}
	return middleware.Chain(store, mw), closer, nil
}

func openBackend(ctx context.Context, s config.Settings) (ports.PreferenceStore, io.Closer, error) {
	switch s.Store {
	case config.StoreMemory:
		return memory.NewStore(), nopCloser{}, nil
	case config.StoreFile:
		return file.NewPreferenceStore(s.StorePath), nopCloser{}, nil
	case config.StoreRedis:
		opts := []redis.Option{redis.WithPrefix(s.RedisPrefix)}
		if s.RedisTTL > 0 {
			opts = append(opts, redis.WithTTL(s.RedisTTL))
		}
		store := redis.New(s.RedisAddr, "", 0, opts...)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nopCloser{}, fmt.Errorf("redis at %s: %w", s.RedisAddr, err)
		}
		return store, store, nil
	case config.StoreSQLite:
		path := s.StorePath
		if path == "" || strings.HasSuffix(path, ".json") {
			path = sqlite.DefaultPath
		}
		store, err := sqlite.Open(ctx, path)
		if err != nil {
			return nil, nopCloser{}, err
		}
		return store, store, nil
	}
	return nil, nopCloser{}, fmt.Errorf("unknown store %q", s.Store)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// EngineOptions are the walkthrough options every CLI host shares.
func EngineOptions(s config.Settings, wf Workflow, store ports.PreferenceStore, logger *slog.Logger, debug bool) []walkthrough.Option {
	opts := []walkthrough.Option{
		walkthrough.WithLogger(logger),
		walkthrough.WithFetcher(wf.Fetcher),
		walkthrough.WithPreferenceStore(store),
		walkthrough.WithPreferenceKey(preference.DefaultKey),
		walkthrough.WithActionDelay(s.ActionDelay),
		walkthrough.WithAnchorDelay(s.AnchorDelay),
	}
	if debug {
		opts = append(opts, walkthrough.WithLifecycleHooks(createDebugHooks(logger)))
	}
	return opts
}
