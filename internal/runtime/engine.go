package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/walkthrough/internal/logging"
	"github.com/aretw0/walkthrough/pkg/domain"
	"github.com/aretw0/walkthrough/pkg/graph"
	"github.com/aretw0/walkthrough/pkg/history"
	"github.com/aretw0/walkthrough/pkg/location"
	"github.com/aretw0/walkthrough/pkg/ports"
	"github.com/aretw0/walkthrough/pkg/preference"
	"github.com/aretw0/walkthrough/pkg/render"
)

// Engine is the navigation state machine for one wizard session.
// All methods are safe for concurrent use.
type Engine struct {
	source  ports.ConfigSource
	fetcher ports.FragmentFetcher
	history ports.BrowserHistory
	store   ports.PreferenceStore
	opener  ports.LinkOpener

	logger        *slog.Logger
	hooks         domain.LifecycleHooks
	preferenceKey string
	actionDelay   time.Duration
	anchorDelay   time.Duration
	sleep         location.Sleeper
	listeners     []func(ctx context.Context, prev, next domain.NavigationState)

	pipeline  *render.Pipeline
	location  *location.Sync
	platform  *preference.Platform
	lifecycle *lifecycle

	mu           sync.Mutex
	started      bool
	graph        *graph.StepGraph
	stack        *history.Stack
	current      string
	ticket       render.Ticket
	showingError bool
	enabled      map[string]bool
	active       string
}

// NewEngine creates an engine that loads its workflow from source and
// renders into page. Nothing is loaded until Start.
func NewEngine(source ports.ConfigSource, page ports.Page, opts ...EngineOption) (*Engine, error) {
	if source == nil {
		return nil, fmt.Errorf("config source is required")
	}
	if page == nil {
		return nil, fmt.Errorf("page is required")
	}

	e := &Engine{
		source:        source,
		logger:        logging.NewNop(),
		preferenceKey: preference.DefaultKey,
		actionDelay:   DefaultActionDelay,
		anchorDelay:   location.DefaultAnchorDelay,
		sleep:         location.TimerSleeper,
		stack:         history.New(),
		enabled:       make(map[string]bool),
	}
	for _, opt := range opts {
		opt(e)
	}

	lc, err := newLifecycle()
	if err != nil {
		return nil, err
	}
	e.lifecycle = lc

	e.pipeline = render.New(page, e.fetcher,
		render.WithLogger(e.logger),
		render.WithHooks(e.hooks),
	)
	e.location = location.New(e.history,
		location.WithLogger(e.logger),
		location.WithAnchorDelay(e.anchorDelay),
		location.WithSleeper(e.sleep),
	)
	e.platform = preference.New(e.store,
		preference.WithKey(e.preferenceKey),
		preference.WithLogger(e.logger),
	)

	e.location.OnPopState(func(ctx context.Context, stepID string) {
		if err := e.PopState(ctx, stepID); err != nil {
			e.logger.Warn("popstate navigation failed", "step_id", stepID, "error", err)
		}
	})

	return e, nil
}

// Start loads the workflow and shows the first step: the deep-linked step
// when the URL names a valid one (without recording history), otherwise the
// start step. A configuration failure is terminal: the page shows a fatal
// error and every later navigation returns domain.ErrNotReady.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return domain.ErrAlreadyStarted
	}
	e.started = true
	old := e.stateLocked()
	e.mu.Unlock()

	g, err := graph.Load(ctx, e.source, graph.WithLogger(e.logger))
	if err != nil {
		e.logger.Error("failed to load workflow", "source", e.source.Name(), "error", err)
		e.lifecycle.failed(err)
		e.pipeline.ShowFatal(fatalMessage(e.source.Name()))
		e.notify(ctx, old)
		return err
	}

	platform, _ := e.platform.Read(ctx)

	e.mu.Lock()
	e.graph = g
	e.logger = e.logger.With("graph", g.Source())
	e.active = platform
	e.pipeline.SetPlatform(platform)
	e.lifecycle.loaded()
	e.mu.Unlock()
	e.notify(ctx, old)

	if id, ok := e.location.ReadStepFromURL(); ok && g.Has(id) {
		err = e.GoTo(ctx, id, WithoutHistory())
	} else {
		if ok {
			e.logger.Debug("ignoring deep link to unknown step", "step_id", id)
		}
		err = e.GoTo(ctx, g.StartStep())
	}
	if err != nil {
		return err
	}

	e.location.ScrollToAnchor(ctx, e.pipeline)
	return nil
}

// GoTo makes stepID the current step and renders it. Unless WithoutHistory
// is given (or a browser navigation is being handled) a history entry is
// recorded. An unknown stepID shows an error in place and returns a
// *StepNotFoundError; the current step does not change.
func (e *Engine) GoTo(ctx context.Context, stepID string, opts ...GoToOption) error {
	cfg := goToConfig{pushHistory: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	e.mu.Lock()
	if e.graph == nil {
		e.mu.Unlock()
		return domain.ErrNotReady
	}
	old := e.stateLocked()
	from := e.current
	ticket := e.pipeline.Begin()
	e.ticket = ticket

	step, err := e.graph.Get(stepID)
	if err != nil {
		e.showingError = true
		e.mu.Unlock()

		e.logger.Warn("step not found", "step_id", stepID, "from_step_id", from)
		e.emitStepMissing(ctx, stepID, from)
		e.pipeline.ShowError(ticket, notFoundMessage(stepID))
		return &StepNotFoundError{StepID: stepID}
	}

	e.current = stepID
	e.showingError = false
	e.enabled = make(map[string]bool)
	recorded := false
	if cfg.pushHistory {
		recorded = e.location.RecordStep(ctx, stepID, step.Title)
	}
	showBack := stepID != e.graph.StartStep()
	e.mu.Unlock()

	e.logger.Debug("entering step", "step_id", stepID, "from_step_id", from, "history_recorded", recorded)
	e.emitStepEnter(ctx, stepID, from, recorded)
	e.notify(ctx, old)

	_, err = e.pipeline.Render(ctx, ticket, step, render.Options{ShowBack: showBack})
	if errors.Is(err, render.ErrSuperseded) {
		return nil
	}
	return err
}

// PopState handles a browser back/forward move to stepID. History recording
// is suppressed for its duration.
func (e *Engine) PopState(ctx context.Context, stepID string) error {
	e.location.BeginBrowserNav()
	defer e.location.EndBrowserNav()
	return e.GoTo(ctx, stepID, WithoutHistory())
}

// HandleAction performs action as if its button was clicked: after the
// action delay the current step is pushed on the back stack and the engine
// navigates to NextStep. External links are opened independently. A delay
// cut short by ctx leaves the stack untouched.
func (e *Engine) HandleAction(ctx context.Context, action domain.Action) error {
	e.mu.Lock()
	if e.graph == nil {
		e.mu.Unlock()
		return domain.ErrNotReady
	}
	from := e.current
	e.mu.Unlock()

	if action.IsExternalLink() {
		e.openLink(ctx, from, action.URL)
	}

	if action.NextStep == "" {
		return nil
	}
	if err := e.sleep(ctx, e.actionDelay); err != nil {
		return err
	}

	e.mu.Lock()
	old := e.stateLocked()
	pushed := false
	if from != "" {
		e.stack.Push(from)
		pushed = true
	}
	e.mu.Unlock()

	if pushed {
		e.notify(ctx, old)
	}
	return e.GoTo(ctx, action.NextStep)
}

// Activate dispatches the rendered control buttonID: the Back control or an
// action of the current step.
func (e *Engine) Activate(ctx context.Context, buttonID string) error {
	e.mu.Lock()
	if e.graph == nil {
		e.mu.Unlock()
		return domain.ErrNotReady
	}

	if buttonID == domain.BackButtonID {
		// Back stays usable while an error is shown in place.
		allowed := e.showingError || e.current != e.graph.StartStep()
		e.mu.Unlock()
		if !allowed {
			return fmt.Errorf("%w: %q", domain.ErrButtonNotFound, buttonID)
		}
		return e.GoBack(ctx)
	}

	if e.showingError {
		e.mu.Unlock()
		return fmt.Errorf("%w: %q", domain.ErrButtonNotFound, buttonID)
	}
	step, err := e.graph.Get(e.current)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	action, ok := step.FindAction(buttonID)
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("%w: %q", domain.ErrButtonNotFound, buttonID)
	}
	if action.StartDisabled && !e.enabled[buttonID] {
		e.mu.Unlock()
		return fmt.Errorf("%w: %q", domain.ErrButtonDisabled, buttonID)
	}
	e.mu.Unlock()

	return e.HandleAction(ctx, action)
}

// EnableButton enables a start-disabled action of the current step.
// It reports whether a rendered button was enabled.
func (e *Engine) EnableButton(buttonID string) bool {
	e.mu.Lock()
	if e.graph == nil || e.showingError {
		e.mu.Unlock()
		return false
	}
	step, err := e.graph.Get(e.current)
	if err != nil {
		e.mu.Unlock()
		return false
	}
	if _, ok := step.FindAction(buttonID); !ok {
		e.mu.Unlock()
		return false
	}
	e.enabled[buttonID] = true
	ticket := e.ticket
	e.mu.Unlock()

	if e.pipeline.EnableAction(ticket, buttonID) {
		return true
	}

	e.mu.Lock()
	if e.ticket == ticket {
		delete(e.enabled, buttonID)
	}
	e.mu.Unlock()
	return false
}

// GoBack returns to the most recent step of the back stack. With an empty
// stack it does nothing.
func (e *Engine) GoBack(ctx context.Context) error {
	e.mu.Lock()
	if e.graph == nil {
		e.mu.Unlock()
		return domain.ErrNotReady
	}
	old := e.stateLocked()
	prev, err := e.stack.Pop()
	e.mu.Unlock()

	if err != nil {
		return nil
	}
	e.notify(ctx, old)
	return e.GoTo(ctx, prev)
}

// Restart clears the back stack and returns to the start step.
func (e *Engine) Restart(ctx context.Context) error {
	e.mu.Lock()
	if e.graph == nil {
		e.mu.Unlock()
		return domain.ErrNotReady
	}
	old := e.stateLocked()
	e.stack.Clear()
	start := e.graph.StartStep()
	e.mu.Unlock()

	e.notify(ctx, old)
	return e.GoTo(ctx, start)
}

// SetPlatform persists platform and applies it to the current page,
// reverting the tags of the previously applied platform first.
// An empty platform resets the preference.
func (e *Engine) SetPlatform(ctx context.Context, platform string) error {
	if platform == "" {
		return e.ResetPlatform(ctx)
	}
	e.platform.Write(ctx, platform)

	e.mu.Lock()
	old := e.stateLocked()
	e.active = platform
	e.pipeline.SetPlatform(platform)
	e.mu.Unlock()

	e.logger.Info("platform set", "platform", platform)
	e.notify(ctx, old)
	return nil
}

// ResetPlatform forgets the stored platform and reverts tagged content.
func (e *Engine) ResetPlatform(ctx context.Context) error {
	e.platform.Forget(ctx)

	e.mu.Lock()
	old := e.stateLocked()
	e.active = ""
	e.pipeline.SetPlatform("")
	e.mu.Unlock()

	e.logger.Info("platform reset")
	e.notify(ctx, old)
	return nil
}

// State returns a snapshot of the navigation state.
func (e *Engine) State() domain.NavigationState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

func (e *Engine) stateLocked() domain.NavigationState {
	return domain.NavigationState{
		CurrentStepID:          e.current,
		History:                e.stack.Snapshot(),
		RespondingToBrowserNav: e.location.Responding(),
		Platform:               e.active,
		Phase:                  e.lifecycle.phase(),
		Error:                  e.lifecycle.err(),
	}
}

// Graph returns the loaded graph, or nil before a successful Start.
func (e *Engine) Graph() *graph.StepGraph {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph
}

// CurrentStep returns the current step definition.
func (e *Engine) CurrentStep() (domain.Step, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.graph == nil || e.current == "" {
		return domain.Step{}, false
	}
	step, err := e.graph.Get(e.current)
	return step, err == nil
}

// Buttons returns the controls currently offered to the user. It is empty
// while an error is displayed.
func (e *Engine) Buttons() []domain.Button {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.graph == nil || e.showingError || e.current == "" {
		return nil
	}
	step, err := e.graph.Get(e.current)
	if err != nil {
		return nil
	}
	buttons := render.Buttons(step, e.current != e.graph.StartStep())
	for i := range buttons {
		if buttons[i].Disabled && e.enabled[buttons[i].ID] {
			buttons[i].Disabled = false
			buttons[i].Classes = []string{domain.ClassActionButton, domain.ClassActionEnabled}
		}
	}
	return buttons
}

// ShowingError reports whether an in-place or fatal error is displayed.
func (e *Engine) ShowingError() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.showingError || e.lifecycle.phase() == domain.PhaseError
}

// CurrentURL returns the browser URL as recorded by the last navigation.
func (e *Engine) CurrentURL() string {
	return e.location.CurrentURL()
}

// Page returns the page the engine renders into.
func (e *Engine) Page() ports.Page {
	return e.pipeline.Page()
}

func (e *Engine) openLink(ctx context.Context, stepID, url string) {
	e.emitExternalLink(ctx, stepID, url)
	if e.opener == nil {
		e.logger.Warn("no link opener configured", "url", url)
		return
	}
	if err := e.opener.Open(ctx, url); err != nil {
		e.logger.Warn("failed to open external link", "url", url, "error", err)
	}
}

// notify fires state listeners when the state differs from old.
func (e *Engine) notify(ctx context.Context, old domain.NavigationState) {
	if len(e.listeners) == 0 {
		return
	}
	current := e.State()
	if domain.Diff(&old, &current) == nil {
		return
	}
	for _, fn := range e.listeners {
		fn(ctx, old, current)
	}
}
