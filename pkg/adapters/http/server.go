// Package http serves walkthrough sessions to browsers and API clients.
//
// Every visitor gets a session cookie that maps to one walkthrough.Engine.
// Page routes render the engine's document server-side and answer form
// posts with a 303 to the URL the engine recorded, so the browser's own
// history mirrors the back stack. A JSON API, server-sent events and a
// WebSocket expose the same sessions to scripts.
package http

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/walkthrough"
	"github.com/aretw0/walkthrough/internal/logging"
	"github.com/aretw0/walkthrough/pkg/adapters/memory"
	"github.com/aretw0/walkthrough/pkg/domain"
	"github.com/aretw0/walkthrough/pkg/observability"
	"github.com/aretw0/walkthrough/pkg/ports"
	"github.com/aretw0/walkthrough/pkg/preference"
	"github.com/aretw0/walkthrough/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// DefaultCookieName names the session cookie.
const DefaultCookieName = "walkthrough_session"

//go:embed templates/*.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.New("page.html.tmpl").
	Funcs(template.FuncMap{"join": strings.Join}).
	ParseFS(templateFS, "templates/page.html.tmpl"))

// Server hosts walkthrough sessions over HTTP.
type Server struct {
	source   ports.ConfigSource
	sessions *session.Manager
	streams  *StreamManager
	metrics  *observability.Metrics
	store    ports.PreferenceStore

	engineOpts []walkthrough.Option
	prefKey    string
	cookieName string
	idle       time.Duration
	hotReload  bool
	newID      func() string
	logger     *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger. Session engines log through it too.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics records engine events and serves them on /metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithPreferenceStore shares one store between sessions. Each session uses
// its own key, derived from the session id.
func WithPreferenceStore(store ports.PreferenceStore) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithPreferenceKey sets the prefix of per-session preference keys.
func WithPreferenceKey(key string) Option {
	return func(s *Server) {
		s.prefKey = key
	}
}

// WithEngineOptions adds options applied to every session engine
// (fetcher, delays, hooks).
func WithEngineOptions(opts ...walkthrough.Option) Option {
	return func(s *Server) {
		s.engineOpts = append(s.engineOpts, opts...)
	}
}

// WithCookieName overrides DefaultCookieName.
func WithCookieName(name string) Option {
	return func(s *Server) {
		s.cookieName = name
	}
}

// WithIdleTimeout sets how long an unused session is kept.
func WithIdleTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.idle = d
	}
}

// WithHotReload makes Run watch the config source and reload sessions on change.
func WithHotReload(enabled bool) Option {
	return func(s *Server) {
		s.hotReload = enabled
	}
}

// WithSessionIDs replaces the uuid generator, for tests.
func WithSessionIDs(fn func() string) Option {
	return func(s *Server) {
		s.newID = fn
	}
}

// NewServer creates a server reading the workflow from source.
func NewServer(source ports.ConfigSource, opts ...Option) *Server {
	s := &Server{
		source:     source,
		prefKey:    preference.DefaultKey,
		cookieName: DefaultCookieName,
		idle:       session.DefaultIdleTimeout,
		newID:      func() string { return uuid.NewString() },
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = memory.NewStore()
	}
	s.streams = NewStreamManager(s.logger)
	s.sessions = session.NewManager(s.newEngine,
		session.WithLogger(s.logger),
		session.WithIdleTimeout(s.idle),
		session.WithEvictionListener(func(string) { s.recordSessions() }),
	)
	return s
}

// Sessions exposes the session manager.
func (s *Server) Sessions() *session.Manager {
	return s.sessions
}

// Streams exposes the event stream manager.
func (s *Server) Streams() *StreamManager {
	return s.streams
}

func (s *Server) newEngine(ctx context.Context, sessionID, landingURL string) (*walkthrough.Engine, error) {
	opts := append([]walkthrough.Option{}, s.engineOpts...)
	opts = append(opts,
		walkthrough.WithURL(landingURL),
		walkthrough.WithLogger(s.logger.With("session_id", sessionID)),
		walkthrough.WithPreferenceStore(s.store),
		walkthrough.WithPreferenceKey(s.prefKey+":"+sessionID),
		walkthrough.WithStateListener(func(ctx context.Context, prev, next domain.NavigationState) {
			s.publishDiff(sessionID, prev, next)
		}),
	)
	if s.metrics != nil {
		opts = append(opts, walkthrough.WithLifecycleHooks(s.metrics.Hooks()))
	}
	return walkthrough.New(s.source, opts...)
}

func (s *Server) publishDiff(sessionID string, prev, next domain.NavigationState) {
	diff := domain.Diff(&prev, &next)
	if diff == nil {
		return
	}
	data, err := json.Marshal(diff)
	if err != nil {
		s.logger.Error("failed to encode state diff", "err", err)
		return
	}
	s.streams.Broadcast(sessionID, Event{Name: "diff", Data: string(data)})
}

func (s *Server) recordSessions() {
	if s.metrics != nil {
		s.metrics.Sessions.Set(float64(s.sessions.Len()))
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Post("/actions/{buttonID}", s.pageAction(activate))
	r.Post("/actions/{buttonID}/enable", s.pageAction(enable))
	r.Post("/back", s.pageAction(back))
	r.Post("/restart", s.pageAction(restart))
	r.Post("/platform", s.pageAction(setPlatform))
	r.Post("/platform/reset", s.pageAction(resetPlatform))

	r.Route("/api", func(r chi.Router) {
		r.Get("/graph", s.handleGraph)
		r.Get("/platform/detect", s.handleDetect)
		r.Post("/session", s.handleCreateSession)
		r.Route("/session/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/goto", s.apiAction(goTo))
			r.Post("/popstate", s.apiAction(popState))
			r.Post("/back", s.apiAction(back))
			r.Post("/restart", s.apiAction(restart))
			r.Post("/actions/{buttonID}", s.apiAction(activate))
			r.Post("/actions/{buttonID}/enable", s.apiAction(enable))
			r.Post("/platform", s.apiAction(setPlatform))
			r.Delete("/platform", s.apiAction(resetPlatform))
		})
	})

	r.Get("/events", s.handleEvents)
	r.Get("/ws", s.handleWebSocket)
	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}
	return r
}

// Run sweeps idle sessions and, with hot reload enabled, watches the config
// source until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	go s.sessions.Run(ctx, time.Minute)

	if !s.hotReload {
		<-ctx.Done()
		return nil
	}
	w, ok := s.source.(ports.Watchable)
	if !ok {
		s.logger.Warn("config source does not support watching", "source", s.source.Name())
		<-ctx.Done()
		return nil
	}
	events, err := w.Watch(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case name, ok := <-events:
			if !ok {
				return nil
			}
			s.Reload(ctx, name)
		}
	}
}

// Reload drops every session so the next request rebuilds its engine from
// the changed configuration, and tells connected pages to refresh. Pages
// reload at their current URL, which deep-links back to the same step.
func (s *Server) Reload(ctx context.Context, resource string) {
	for _, id := range s.sessions.List() {
		s.sessions.Delete(ctx, id)
	}
	s.logger.Info("configuration changed, sessions reset", "resource", resource)

	data, _ := json.Marshal(map[string]string{"resource": resource})
	s.streams.BroadcastAll(Event{Name: "reload", Data: string(data)})
}

// ensureSession returns the visitor's session, creating one (and its
// cookie) when the cookie is missing, malformed or points to an evicted session.
func (s *Server) ensureSession(w http.ResponseWriter, r *http.Request, landingURL string) (*session.Session, bool, error) {
	id := s.cookieSession(r)
	if id == "" {
		id = s.newID()
		http.SetCookie(w, &http.Cookie{
			Name:     s.cookieName,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Secure:   r.TLS != nil,
		})
	}
	sess, created, err := s.sessions.LoadOrStart(r.Context(), id, landingURL)
	if created {
		s.recordSessions()
	}
	return sess, created, err
}

func (s *Server) cookieSession(r *http.Request) string {
	c, err := r.Cookie(s.cookieName)
	if err != nil || c.Value == "" {
		return ""
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return ""
	}
	return c.Value
}
