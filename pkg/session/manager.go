package session

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/walkthrough"
	"github.com/aretw0/walkthrough/internal/logging"
	"github.com/aretw0/walkthrough/pkg/domain"
)

// DefaultIdleTimeout is how long a session may go unused before Sweep evicts it.
const DefaultIdleTimeout = 30 * time.Minute

// Factory builds the engine of a new session. landingURL is the URL the
// visitor arrived on; its "step" query parameter deep-links.
type Factory func(ctx context.Context, sessionID, landingURL string) (*walkthrough.Engine, error)

// Session is one visitor's engine.
type Session struct {
	ID      string
	Engine  *walkthrough.Engine
	Created time.Time

	mu       sync.Mutex
	lastSeen time.Time
}

// LastSeen returns the time of the last locked operation on the session.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	factory Factory

	mu       sync.Mutex            // Global lock for both maps
	locks    map[string]*lockEntry // Map of active locks
	sessions map[string]*Session

	idle    time.Duration
	now     func() time.Time
	onEvict func(id string)
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithIdleTimeout sets how long an unused session survives. Zero disables eviction.
func WithIdleTimeout(d time.Duration) Option {
	return func(m *Manager) {
		m.idle = d
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithEvictionListener is called with the id of every evicted or deleted session.
func WithEvictionListener(fn func(id string)) Option {
	return func(m *Manager) {
		m.onEvict = fn
	}
}

// NewManager creates a Manager that builds engines with factory.
func NewManager(factory Factory, opts ...Option) *Manager {
	m := &Manager{
		factory:  factory,
		locks:    make(map[string]*lockEntry),
		sessions: make(map[string]*Session),
		idle:     DefaultIdleTimeout,
		now:      time.Now,
		logger:   logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

func (m *Manager) lookup(sessionID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	return s, ok
}

// Get returns an existing session without locking it.
func (m *Manager) Get(sessionID string) (*Session, bool) {
	return m.lookup(sessionID)
}

// LoadOrStart returns the session, creating and starting its engine if it
// does not exist yet. created reports whether a new engine was built. A
// failed Start is not an error here: the engine shows the fatal error page
// and the session is kept so the visitor sees it.
func (m *Manager) LoadOrStart(ctx context.Context, sessionID, landingURL string) (sess *Session, created bool, err error) {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if s, ok := m.lookup(sessionID); ok {
		s.touch(m.now())
		return s, false, nil
	}

	eng, err := m.factory(ctx, sessionID, landingURL)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create session engine: %w", err)
	}
	if err := eng.Start(ctx); err != nil {
		m.logger.Warn("session engine failed to start", "session_id", sessionID, "err", err)
	}

	now := m.now()
	s := &Session{ID: sessionID, Engine: eng, Created: now, lastSeen: now}
	m.mu.Lock()
	m.sessions[sessionID] = s
	m.mu.Unlock()

	m.logger.Debug("session created", "session_id", sessionID, "step_id", eng.State().CurrentStepID)
	return s, true, nil
}

// WithLock executes fn while holding the lock for the session.
// It returns domain.ErrSessionNotFound for unknown ids.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context, *Session) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	s, ok := m.lookup(sessionID)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}
	s.touch(m.now())
	return fn(ctx, s)
}

// Delete drops the session. Deleting an unknown id is a no-op.
func (m *Manager) Delete(ctx context.Context, sessionID string) {
	m.deleteIf(sessionID, nil)
}

// deleteIf drops the session under its lock when keep is nil or returns
// false for it, and reports whether it was dropped.
func (m *Manager) deleteIf(sessionID string, keep func(*Session) bool) bool {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	if ok && keep != nil && keep(s) {
		ok = false
	}
	if ok {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()

	if ok && m.onEvict != nil {
		m.onEvict(sessionID)
	}
	return ok
}

// List returns the ids of live sessions, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep evicts sessions idle for longer than the idle timeout and returns
// how many were removed. A candidate used while Sweep waited for its lock
// is kept.
func (m *Manager) Sweep(ctx context.Context) int {
	if m.idle <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.idle)
	fresh := func(s *Session) bool { return !s.LastSeen().Before(cutoff) }

	var stale []string
	m.mu.Lock()
	for id, s := range m.sessions {
		if !fresh(s) {
			stale = append(stale, id)
		}
	}
	m.mu.Unlock()

	evicted := 0
	for _, id := range stale {
		if m.deleteIf(id, fresh) {
			evicted++
		}
	}
	if evicted > 0 {
		m.logger.Debug("sessions evicted", "count", evicted)
	}
	return evicted
}

// Run sweeps periodically until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}
