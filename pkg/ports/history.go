package ports

import (
	"context"
	"net/url"
)

// HistoryEntry is a browser history entry. StepID is the state payload and
// is empty for entries the engine did not create (e.g. the landing URL).
type HistoryEntry struct {
	StepID string
	Title  string
	URL    string
}

// BrowserHistory abstracts window.location and window.history.
type BrowserHistory interface {
	// Location returns a copy of the current URL.
	Location() *url.URL

	// PushState appends a history entry and makes its URL current.
	PushState(ctx context.Context, entry HistoryEntry) error

	// OnPopState registers a listener fired when the user moves through
	// history (back/forward) and the browser has already changed the URL.
	OnPopState(fn func(ctx context.Context, entry HistoryEntry))
}

// LinkOpener opens an external URL in a new browsing context.
type LinkOpener interface {
	Open(ctx context.Context, url string) error
}
