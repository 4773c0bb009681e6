package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/walkthrough/pkg/domain"
)

// Fetcher implements ports.FragmentFetcher over a map of fragments.
type Fetcher struct {
	mu        sync.RWMutex
	fragments map[string]string
	calls     map[string]int
}

// NewFetcher creates a fetcher serving the given fragments.
func NewFetcher(fragments map[string]string) *Fetcher {
	f := &Fetcher{
		fragments: make(map[string]string, len(fragments)),
		calls:     make(map[string]int),
	}
	for k, v := range fragments {
		f.fragments[k] = v
	}
	return f
}

// Fetch returns the fragment for ref.
func (f *Fetcher) Fetch(ctx context.Context, ref string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[ref]++
	content, ok := f.fragments[ref]
	if !ok {
		return "", fmt.Errorf("%w: %s not found", domain.ErrFragmentFetch, ref)
	}
	return content, nil
}

// Put adds or replaces a fragment.
func (f *Fetcher) Put(ref, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fragments[ref] = content
}

// Calls returns how many times ref was fetched.
func (f *Fetcher) Calls(ref string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.calls[ref]
}
