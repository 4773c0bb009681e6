package walkthrough

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aretw0/walkthrough/internal/logging"
	"github.com/aretw0/walkthrough/internal/runtime"
	"github.com/aretw0/walkthrough/pkg/adapters/file"
	"github.com/aretw0/walkthrough/pkg/adapters/memory"
	"github.com/aretw0/walkthrough/pkg/dom"
	"github.com/aretw0/walkthrough/pkg/domain"
	"github.com/aretw0/walkthrough/pkg/graph"
	"github.com/aretw0/walkthrough/pkg/location"
	"github.com/aretw0/walkthrough/pkg/ports"
)

// Engine is the high-level entry point for the walkthrough library.
// It wraps the internal navigation runtime and the page it renders into.
type Engine struct {
	runtime *runtime.Engine
	source  ports.ConfigSource
	page    ports.Page
	doc     *dom.Document
	history ports.BrowserHistory
	store   ports.PreferenceStore

	url         string
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	runtimeOpts []runtime.EngineOption
	Name        string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks. Multiple calls are merged.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithPage renders into a host-provided page instead of the built-in DOM document.
func WithPage(page ports.Page) Option {
	return func(e *Engine) {
		e.page = page
	}
}

// WithFetcher sets how contentFile fragments are resolved.
func WithFetcher(fetcher ports.FragmentFetcher) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithFetcher(fetcher))
	}
}

// WithHistory replaces the in-memory browser history.
func WithHistory(history ports.BrowserHistory) Option {
	return func(e *Engine) {
		e.history = history
	}
}

// WithURL sets the landing URL of the default in-memory history.
// A "step" query parameter deep-links into the workflow.
func WithURL(rawURL string) Option {
	return func(e *Engine) {
		e.url = rawURL
	}
}

// WithPreferenceStore replaces the in-memory preference store.
func WithPreferenceStore(store ports.PreferenceStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithPreferenceKey overrides the key of the stored platform preference.
func WithPreferenceKey(key string) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithPreferenceKey(key))
	}
}

// WithLinkOpener sets how external_link actions are opened.
func WithLinkOpener(opener ports.LinkOpener) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithLinkOpener(opener))
	}
}

// WithActionDelay sets the pause between an action click and its navigation.
func WithActionDelay(d time.Duration) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithActionDelay(d))
	}
}

// WithAnchorDelay sets the pause before scrolling to a URL fragment on startup.
func WithAnchorDelay(d time.Duration) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithAnchorDelay(d))
	}
}

// WithSleeper replaces the timer used for both delays. location.NoSleep skips them.
func WithSleeper(sleep location.Sleeper) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithSleeper(sleep))
	}
}

// WithStateListener registers a callback fired after every state change.
func WithStateListener(fn func(ctx context.Context, prev, next domain.NavigationState)) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithStateListener(fn))
	}
}

// New initializes an Engine reading its workflow from source.
// Unless overridden, it renders into a fresh dom.Document, keeps browser
// history in memory and stores the platform preference in memory.
func New(source ports.ConfigSource, opts ...Option) (*Engine, error) {
	if source == nil {
		return nil, fmt.Errorf("config source is required")
	}
	eng := &Engine{source: source, url: "/"}

	for _, opt := range opts {
		opt(eng)
	}

	if eng.page == nil {
		eng.doc = dom.New()
		eng.page = eng.doc
	} else if doc, ok := eng.page.(*dom.Document); ok {
		eng.doc = doc
	}

	if eng.history == nil {
		h, err := memory.NewHistory(eng.url)
		if err != nil {
			return nil, fmt.Errorf("invalid url: %w", err)
		}
		eng.history = h
	}
	if eng.store == nil {
		eng.store = memory.NewStore()
	}

	// Ensure logger is initialized (so we don't pass nil to runtime, which would overwrite its default)
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	eng.Name = source.Name()
	if eng.Name != "" {
		eng.logger = eng.logger.With("graph", eng.Name)
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
		runtime.WithHistory(eng.history),
		runtime.WithPreferenceStore(eng.store),
	}
	runtimeOpts = append(runtimeOpts, eng.runtimeOpts...)

	rt, err := runtime.NewEngine(source, eng.page, runtimeOpts...)
	if err != nil {
		return nil, err
	}
	eng.runtime = rt
	return eng, nil
}

// Open initializes an Engine from a configuration file on disk.
// Fragments are read relative to the file's directory unless a
// WithFetcher option says otherwise.
func Open(path string, opts ...Option) (*Engine, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is required")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	source := file.NewConfigSource(absPath)
	defaults := []Option{WithFetcher(file.NewFetcher(filepath.Dir(absPath)))}
	return New(source, append(defaults, opts...)...)
}

// Start loads the workflow and renders the first step.
func (e *Engine) Start(ctx context.Context) error {
	return e.runtime.Start(ctx)
}

// GoTo navigates to stepID and records a history entry.
func (e *Engine) GoTo(ctx context.Context, stepID string) error {
	return e.runtime.GoTo(ctx, stepID)
}

// PopState handles a browser back/forward move to stepID.
func (e *Engine) PopState(ctx context.Context, stepID string) error {
	return e.runtime.PopState(ctx, stepID)
}

// HandleAction performs action as if its button was clicked.
func (e *Engine) HandleAction(ctx context.Context, action domain.Action) error {
	return e.runtime.HandleAction(ctx, action)
}

// Activate dispatches a rendered control by id: domain.BackButtonID or an action label.
func (e *Engine) Activate(ctx context.Context, buttonID string) error {
	return e.runtime.Activate(ctx, buttonID)
}

// EnableButton enables a start-disabled action of the current step.
func (e *Engine) EnableButton(buttonID string) bool {
	return e.runtime.EnableButton(buttonID)
}

// GoBack returns to the previous step of the back stack, if any.
func (e *Engine) GoBack(ctx context.Context) error {
	return e.runtime.GoBack(ctx)
}

// Restart clears the back stack and returns to the start step.
func (e *Engine) Restart(ctx context.Context) error {
	return e.runtime.Restart(ctx)
}

// SetPlatform persists platform and applies it to the page.
func (e *Engine) SetPlatform(ctx context.Context, platform string) error {
	return e.runtime.SetPlatform(ctx, platform)
}

// ResetPlatform forgets the stored platform.
func (e *Engine) ResetPlatform(ctx context.Context) error {
	return e.runtime.ResetPlatform(ctx)
}

// State returns a snapshot of the navigation state.
func (e *Engine) State() domain.NavigationState {
	return e.runtime.State()
}

// Graph returns the loaded step graph, or nil before a successful Start.
func (e *Engine) Graph() *graph.StepGraph {
	return e.runtime.Graph()
}

// CurrentStep returns the current step definition.
func (e *Engine) CurrentStep() (domain.Step, bool) {
	return e.runtime.CurrentStep()
}

// Buttons returns the controls currently offered to the user.
func (e *Engine) Buttons() []domain.Button {
	return e.runtime.Buttons()
}

// CurrentURL returns the URL recorded by the last navigation.
func (e *Engine) CurrentURL() string {
	return e.runtime.CurrentURL()
}

// Page returns the page the engine renders into.
func (e *Engine) Page() ports.Page {
	return e.page
}

// Document returns the built-in DOM document, or nil when a custom page was given.
func (e *Engine) Document() *dom.Document {
	return e.doc
}

// History returns the browser history the engine records into.
func (e *Engine) History() ports.BrowserHistory {
	return e.history
}

// Source returns the configuration source.
func (e *Engine) Source() ports.ConfigSource {
	return e.source
}

// Watch returns a channel that signals when the underlying configuration changes.
// Returns error if the source does not support watching.
func (e *Engine) Watch(ctx context.Context) (<-chan string, error) {
	if w, ok := e.source.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("config source %q does not support watching", e.source.Name())
}

var _ ports.Navigator = (*Engine)(nil)
