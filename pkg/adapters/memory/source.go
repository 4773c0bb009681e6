package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/walkthrough/pkg/domain"
	json "github.com/goccy/go-json"
)

// Source implements ports.ConfigSource over an in-memory document.
type Source struct {
	name string
	mu   sync.RWMutex
	data []byte
	err  error
}

// NewSource creates a source serving data verbatim.
func NewSource(name string, data []byte) *Source {
	return &Source{name: name, data: data}
}

// NewSourceFromSteps serializes steps into a configuration document.
// This handles serialization automatically, improving DX for tests.
func NewSourceFromSteps(startStep string, steps ...domain.Step) (*Source, error) {
	stepMap := make(map[string]any, len(steps))
	for _, s := range steps {
		if s.ID == "" {
			return nil, fmt.Errorf("step missing ID")
		}
		entry := map[string]any{
			"title":   s.Title,
			"actions": s.Actions,
		}
		if s.ContentFile != "" {
			entry["contentFile"] = s.ContentFile
		} else {
			entry["content"] = s.Content
		}
		stepMap[s.ID] = entry
	}

	doc := map[string]any{
		"workflow": map[string]any{
			"startStep": startStep,
			"steps":     stepMap,
		},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal workflow: %w", err)
	}
	return NewSource("memory", data), nil
}

// NewFailingSource creates a source whose Load always fails with err.
func NewFailingSource(name string, err error) *Source {
	return &Source{name: name, err: err}
}

// Load returns the configured document.
func (s *Source) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]byte(nil), s.data...), nil
}

// Name returns the source label.
func (s *Source) Name() string {
	return s.name
}

// Replace swaps the served document.
func (s *Source) Replace(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	s.err = nil
}
