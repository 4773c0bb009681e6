// Package location keeps the current step and the browser URL in step.
//
// Forward navigation records a history entry carrying the step id and a
// ?step=<id> query parameter. Back/forward moves reported by the browser are
// replayed through a popstate handler while a suppression flag prevents the
// replay from recording new entries.
package location

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/aretw0/walkthrough/internal/logging"
	"github.com/aretw0/walkthrough/pkg/domain"
	"github.com/aretw0/walkthrough/pkg/ports"
)

// DefaultAnchorDelay is how long ScrollToAnchor waits for content to settle.
const DefaultAnchorDelay = 500 * time.Millisecond

// Sync bridges the engine and a BrowserHistory.
// A nil history is allowed: every operation becomes a logged no-op.
type Sync struct {
	history     ports.BrowserHistory
	logger      *slog.Logger
	anchorDelay time.Duration
	sleep       Sleeper

	responding atomic.Int32
}

// Option configures a Sync.
type Option func(*Sync)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sync) {
		s.logger = logger
	}
}

// WithAnchorDelay overrides DefaultAnchorDelay.
func WithAnchorDelay(d time.Duration) Option {
	return func(s *Sync) {
		s.anchorDelay = d
	}
}

// WithSleeper overrides the timer used for the anchor delay.
func WithSleeper(sleep Sleeper) Option {
	return func(s *Sync) {
		s.sleep = sleep
	}
}

// New creates a Sync over history.
func New(history ports.BrowserHistory, opts ...Option) *Sync {
	s := &Sync{
		history:     history,
		logger:      logging.NewNop(),
		anchorDelay: DefaultAnchorDelay,
		sleep:       TimerSleeper,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordStep pushes a history entry for stepID, unless a browser navigation
// is being handled. It reports whether an entry was recorded.
func (s *Sync) RecordStep(ctx context.Context, stepID, title string) bool {
	if s.Responding() {
		return false
	}
	if s.history == nil {
		s.logger.Debug("no browser history, step not recorded", "step_id", stepID)
		return false
	}

	u := s.history.Location()
	q := u.Query()
	q.Set(domain.QueryParamStep, stepID)
	u.RawQuery = q.Encode()

	entry := ports.HistoryEntry{StepID: stepID, Title: title, URL: u.String()}
	if err := s.history.PushState(ctx, entry); err != nil {
		s.logger.Warn("failed to record history entry", "step_id", stepID, "error", err)
		return false
	}
	return true
}

// ReadStepFromURL returns the step query parameter of the current URL.
func (s *Sync) ReadStepFromURL() (string, bool) {
	if s.history == nil {
		return "", false
	}
	id := s.history.Location().Query().Get(domain.QueryParamStep)
	return id, id != ""
}

// CurrentURL returns the current URL, or "" without a history.
func (s *Sync) CurrentURL() string {
	if s.history == nil {
		return ""
	}
	return s.history.Location().String()
}

// OnPopState routes browser back/forward moves to handler.
// Entries without a step payload (such as the landing page) are ignored.
func (s *Sync) OnPopState(handler func(ctx context.Context, stepID string)) {
	if s.history == nil {
		return
	}
	s.history.OnPopState(func(ctx context.Context, entry ports.HistoryEntry) {
		if entry.StepID == "" {
			s.logger.Debug("ignoring popstate without step", "url", entry.URL)
			return
		}
		handler(ctx, entry.StepID)
	})
}

// Scroller scrolls to an element by id. ports.Page satisfies it.
type Scroller interface {
	ScrollIntoView(id string) bool
}

// ScrollToAnchor waits for the anchor delay and scrolls to the URL fragment.
// It reports whether the target element was found.
func (s *Sync) ScrollToAnchor(ctx context.Context, page Scroller) bool {
	if s.history == nil {
		return false
	}
	anchor := s.history.Location().Fragment
	if anchor == "" {
		return false
	}
	if err := s.sleep(ctx, s.anchorDelay); err != nil {
		return false
	}
	if !page.ScrollIntoView(anchor) {
		s.logger.Debug("anchor not found", "anchor", anchor)
		return false
	}
	return true
}

// BeginBrowserNav marks the start of popstate handling.
func (s *Sync) BeginBrowserNav() {
	s.responding.Add(1)
}

// EndBrowserNav marks the end of popstate handling.
func (s *Sync) EndBrowserNav() {
	s.responding.Add(-1)
}

// Responding reports whether a popstate is being handled.
func (s *Sync) Responding() bool {
	return s.responding.Load() > 0
}
