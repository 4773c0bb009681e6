package memory

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/aretw0/walkthrough/pkg/ports"
)

// History implements ports.BrowserHistory as a simulated browser session:
// a list of entries with a cursor, where Back/Forward move the cursor and
// fire popstate listeners, just like the browser's native buttons.
type History struct {
	mu        sync.Mutex
	entries   []ports.HistoryEntry
	index     int
	listeners []func(context.Context, ports.HistoryEntry)
	pushErr   error
}

// NewHistory creates a session whose landing entry is rawURL.
func NewHistory(rawURL string) (*History, error) {
	if _, err := url.Parse(rawURL); err != nil {
		return nil, fmt.Errorf("invalid landing url: %w", err)
	}
	return &History{
		entries: []ports.HistoryEntry{{URL: rawURL}},
	}, nil
}

// MustHistory is like NewHistory but panics on an invalid URL.
func MustHistory(rawURL string) *History {
	h, err := NewHistory(rawURL)
	if err != nil {
		panic(err)
	}
	return h
}

// Location returns the URL of the current entry.
func (h *History) Location() *url.URL {
	h.mu.Lock()
	raw := h.entries[h.index].URL
	h.mu.Unlock()

	u, err := url.Parse(raw)
	if err != nil {
		return &url.URL{}
	}
	return u
}

// PushState drops any forward entries and appends entry.
func (h *History) PushState(ctx context.Context, entry ports.HistoryEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.pushErr != nil {
		return h.pushErr
	}
	h.entries = append(h.entries[:h.index+1], entry)
	h.index = len(h.entries) - 1
	return nil
}

// OnPopState registers a popstate listener.
func (h *History) OnPopState(fn func(ctx context.Context, entry ports.HistoryEntry)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = append(h.listeners, fn)
}

// Back moves one entry back and fires popstate. It reports whether it moved.
func (h *History) Back(ctx context.Context) bool {
	return h.Go(ctx, -1)
}

// Forward moves one entry forward and fires popstate. It reports whether it moved.
func (h *History) Forward(ctx context.Context) bool {
	return h.Go(ctx, 1)
}

// Go moves delta entries and fires popstate. Out-of-range moves are ignored.
func (h *History) Go(ctx context.Context, delta int) bool {
	h.mu.Lock()
	target := h.index + delta
	if delta == 0 || target < 0 || target >= len(h.entries) {
		h.mu.Unlock()
		return false
	}
	h.index = target
	entry := h.entries[target]
	listeners := append([]func(context.Context, ports.HistoryEntry){}, h.listeners...)
	h.mu.Unlock()

	// Listeners run outside the lock: they usually push or read state.
	for _, fn := range listeners {
		fn(ctx, entry)
	}
	return true
}

// Entries returns a copy of all entries.
func (h *History) Entries() []ports.HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]ports.HistoryEntry(nil), h.entries...)
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Current returns the entry under the cursor.
func (h *History) Current() ports.HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index]
}

// FailPushes makes every subsequent PushState return err (nil restores).
// It simulates environments where pushState is unavailable.
func (h *History) FailPushes(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pushErr = err
}
