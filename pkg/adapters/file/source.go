package file

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/walkthrough/internal/logging"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces editor save bursts (write + chmod + rename) into one event.
const DefaultDebounce = 100 * time.Millisecond

// watchedExtensions are the files whose changes count as a configuration reload.
var watchedExtensions = map[string]bool{
	".json": true,
	".yaml": true,
	".yml":  true,
	".toml": true,
	".html": true,
	".htm":  true,
	".md":   true,
}

// SourceOption configures a ConfigSource.
type SourceOption func(*ConfigSource)

// WithContentDir adds a directory whose fragment files are watched alongside the configuration.
func WithContentDir(dir string) SourceOption {
	return func(s *ConfigSource) {
		s.contentDir = dir
	}
}

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) SourceOption {
	return func(s *ConfigSource) {
		s.debounce = d
	}
}

// WithSourceLogger sets the logger used by the watcher goroutine.
func WithSourceLogger(logger *slog.Logger) SourceOption {
	return func(s *ConfigSource) {
		s.logger = logger
	}
}

// ConfigSource implements ports.ConfigSource and ports.Watchable over a local file.
type ConfigSource struct {
	path       string
	contentDir string
	debounce   time.Duration
	logger     *slog.Logger
}

// NewConfigSource creates a source reading the configuration document at path.
func NewConfigSource(path string, opts ...SourceOption) *ConfigSource {
	s := &ConfigSource{
		path:     path,
		debounce: DefaultDebounce,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the configuration document.
func (s *ConfigSource) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	return data, nil
}

// Name returns the configuration path.
func (s *ConfigSource) Name() string {
	return s.path
}

// Path returns the configuration path.
func (s *ConfigSource) Path() string {
	return s.path
}

// Watch implements ports.Watchable. It watches the directory of the configuration
// file (so atomic saves that replace the inode are seen) and the content directory.
// The returned channel carries the base name of the last changed file of each burst
// and is closed when ctx is done.
func (s *ConfigSource) Watch(ctx context.Context) (<-chan string, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	dirs := []string{filepath.Dir(s.path)}
	if s.contentDir != "" {
		dirs = append(dirs, s.contentDir)
	}
	for _, dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	target := filepath.Clean(s.path)
	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		defer fsw.Close()

		var (
			mu      sync.Mutex
			timer   *time.Timer
			pending string
		)
		fire := func() {
			mu.Lock()
			name := pending
			mu.Unlock()
			select {
			case ch <- name:
			case <-ctx.Done():
			}
		}
		defer func() {
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			mu.Unlock()
		}()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				if !s.relevant(target, event) {
					continue
				}
				s.logger.Debug("config source changed", "file", event.Name, "op", event.Op.String())

				mu.Lock()
				pending = filepath.Base(event.Name)
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(s.debounce, fire)
				mu.Unlock()

			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				s.logger.Warn("config watcher error", "err", err)
			}
		}
	}()

	return ch, nil
}

func (s *ConfigSource) relevant(target string, event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	name := filepath.Clean(event.Name)
	if name == target {
		return true
	}
	if s.contentDir == "" {
		return false
	}
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "tmp-") {
		return false
	}
	return watchedExtensions[strings.ToLower(filepath.Ext(name))]
}
