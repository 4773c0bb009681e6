package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/aretw0/walkthrough/pkg/domain"
	json "github.com/goccy/go-json"
)

// PreferenceStore implements ports.PreferenceStore as a single JSON object on disk.
// Every write replaces the file atomically so a crash never leaves a torn document.
type PreferenceStore struct {
	Path string
	mu   sync.Mutex
}

// NewPreferenceStore creates a store at path.
// If path is empty, it defaults to ".walkthrough/preferences.json".
func NewPreferenceStore(path string) *PreferenceStore {
	if path == "" {
		path = filepath.Join(".walkthrough", "preferences.json")
	}
	return &PreferenceStore{Path: path}
}

// Get returns the value stored under key.
func (s *PreferenceStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs, err := s.read()
	if err != nil {
		return "", err
	}
	v, ok := prefs[key]
	if !ok {
		return "", domain.ErrPreferenceNotFound
	}
	return v, nil
}

// Set persists value under key.
func (s *PreferenceStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs, err := s.read()
	if err != nil {
		return err
	}
	prefs[key] = value
	return s.write(prefs)
}

// Delete removes key. The file is rewritten only if the key was present.
func (s *PreferenceStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := prefs[key]; !ok {
		return nil
	}
	delete(prefs, key)
	return s.write(prefs)
}

func (s *PreferenceStore) read() (map[string]string, error) {
	prefs := make(map[string]string)
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return prefs, nil
		}
		return nil, fmt.Errorf("%w: failed to read preferences: %v", domain.ErrStorageUnavailable, err)
	}
	if len(data) == 0 {
		return prefs, nil
	}
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil, fmt.Errorf("%w: failed to decode preferences: %v", domain.ErrStorageUnavailable, err)
	}
	return prefs, nil
}

// write saves prefs atomically: temp file in the same directory, fsync, rename.
func (s *PreferenceStore) write(prefs map[string]string) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to ensure preference directory: %v", domain.ErrStorageUnavailable, err)
	}

	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, "tmp-preferences-*.json")
	if err != nil {
		return fmt.Errorf("%w: failed to create temp file: %v", domain.ErrStorageUnavailable, err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("%w: failed to write temp file: %v", domain.ErrStorageUnavailable, err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("%w: failed to fsync temp file: %v", domain.ErrStorageUnavailable, err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("%w: failed to close temp file: %v", domain.ErrStorageUnavailable, err)
	}

	// On Windows os.Rename fails if the destination exists.
	if _, err := os.Stat(s.Path); err == nil {
		if err := os.Remove(s.Path); err != nil {
			return fmt.Errorf("%w: failed to replace preferences: %v", domain.ErrStorageUnavailable, err)
		}
	}
	if err := os.Rename(tmpPath, s.Path); err != nil {
		return fmt.Errorf("%w: failed to rename temp file: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}
