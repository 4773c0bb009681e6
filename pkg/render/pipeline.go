// Package render sequences the DOM updates that display one step.
//
// A render runs in fixed stages: title, content resolution, body injection,
// platform tagging, action buttons and scroll. Each navigation takes a Ticket;
// only the holder of the latest ticket may write to the page, so a slow
// fragment fetch for an abandoned step can never overwrite a newer one.
package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/walkthrough/internal/logging"
	"github.com/aretw0/walkthrough/pkg/domain"
	"github.com/aretw0/walkthrough/pkg/ports"
	"github.com/aretw0/walkthrough/pkg/preference"
	"golang.org/x/net/html"
)

// ErrSuperseded is returned when a newer ticket took over the page mid-render.
var ErrSuperseded = errors.New("render superseded by a newer navigation")

// Ticket orders renders. Higher tickets win.
type Ticket uint64

// Options carries per-render inputs owned by the engine.
type Options struct {
	// ShowBack prepends the Back control.
	ShowBack bool
}

// Result describes a finished render.
type Result struct {
	StepID      string
	Applied     bool
	FragmentErr error
	Duration    time.Duration
}

// Pipeline renders steps into a Page.
type Pipeline struct {
	page    ports.Page
	fetcher ports.FragmentFetcher
	logger  *slog.Logger
	hooks   domain.LifecycleHooks

	seq atomic.Uint64

	mu       sync.Mutex
	platform string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithHooks registers lifecycle hooks. Only OnRender is used here.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(p *Pipeline) {
		p.hooks = hooks
	}
}

// New creates a pipeline writing into page. fetcher may be nil when no step
// uses contentFile.
func New(page ports.Page, fetcher ports.FragmentFetcher, opts ...Option) *Pipeline {
	p := &Pipeline{
		page:    page,
		fetcher: fetcher,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Page returns the page the pipeline writes into.
func (p *Pipeline) Page() ports.Page {
	return p.page
}

// Begin issues a new ticket, superseding every earlier one.
func (p *Pipeline) Begin() Ticket {
	return Ticket(p.seq.Add(1))
}

// Current reports whether t is still the latest ticket.
func (p *Pipeline) Current(t Ticket) bool {
	return Ticket(p.seq.Load()) == t
}

// Apply runs fn under the page lock if t is still current.
// It is the only way engine-side page writes (platform toggles, enabling
// buttons) should touch the page.
func (p *Pipeline) Apply(t Ticket, fn func(page ports.Page)) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.Current(t) {
		return false
	}
	fn(p.page)
	return true
}

// Do runs fn under the page lock regardless of tickets.
func (p *Pipeline) Do(fn func(page ports.Page)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p.page)
}

// Render displays step. It returns ErrSuperseded when a newer ticket was
// issued before the render finished; the page is then left to the newer one.
// A failed fragment fetch is not an error: the body is left empty and the
// failure is reported in Result.FragmentErr.
func (p *Pipeline) Render(ctx context.Context, t Ticket, step domain.Step, opts Options) (Result, error) {
	start := time.Now()
	res := Result{StepID: step.ID}

	defer func() {
		res.Duration = time.Since(start)
		if p.hooks.OnRender != nil {
			p.hooks.OnRender(ctx, &domain.RenderEvent{
				EventBase:   domain.EventBase{Timestamp: time.Now(), Type: domain.EventStepRendered},
				StepID:      step.ID,
				Duration:    res.Duration,
				Applied:     res.Applied,
				FragmentErr: res.FragmentErr,
			})
		}
	}()

	// 1. Title
	if !p.Apply(t, func(page ports.Page) {
		page.SetLoading(false)
		page.ShowContent()
		page.SetTitle(step.Title)
	}) {
		return res, ErrSuperseded
	}

	// 2. Content, outside the lock: fetches may be slow.
	content := step.Content
	if step.HasFragment() {
		fetched, err := p.fetch(ctx, step.ContentFile)
		if err != nil {
			p.logger.Warn("error loading content fragment",
				"step_id", step.ID,
				"content_file", step.ContentFile,
				"error", err,
			)
			res.FragmentErr = err
			content = ""
		} else {
			content = fetched
		}
	}

	// 3-6. Body, platform, actions, scroll.
	applied := p.Apply(t, func(page ports.Page) {
		if err := page.SetBody(content); err != nil {
			p.logger.Warn("invalid step markup", "step_id", step.ID, "error", err)
		}
		preference.Apply(page, p.platform)
		page.ClearActions()
		page.SetActions(Buttons(step, opts.ShowBack))
		page.ScrollToTop()
	})
	if !applied {
		p.logger.Debug("discarding stale render", "step_id", step.ID, "ticket", uint64(t))
		return res, ErrSuperseded
	}

	res.Applied = true
	return res, nil
}

func (p *Pipeline) fetch(ctx context.Context, ref string) (string, error) {
	if p.fetcher == nil {
		return "", fmt.Errorf("%w: no fragment fetcher configured for %s", domain.ErrFragmentFetch, ref)
	}
	content, err := p.fetcher.Fetch(ctx, ref)
	if err != nil {
		if !errors.Is(err, domain.ErrFragmentFetch) {
			err = fmt.Errorf("%w: %w", domain.ErrFragmentFetch, err)
		}
		return "", err
	}
	return content, nil
}

// Buttons builds the action area for step: Back first when requested, then
// one control per action in declaration order.
func Buttons(step domain.Step, showBack bool) []domain.Button {
	buttons := make([]domain.Button, 0, len(step.Actions)+1)
	if showBack {
		buttons = append(buttons, domain.BackButton())
	}
	for _, a := range step.Actions {
		buttons = append(buttons, domain.ActionButton(a))
	}
	return buttons
}

// SetPlatform switches the platform applied to conditional content. Tags of
// any previous platform are reverted before the new one is applied, and every
// later render applies the new value.
func (p *Pipeline) SetPlatform(platform string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.platform = platform
	preference.Revert(p.page)
	preference.Apply(p.page, platform)
}

// Platform returns the platform applied by renders.
func (p *Pipeline) Platform() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.platform
}

// ScrollIntoView scrolls the page to the element with id.
func (p *Pipeline) ScrollIntoView(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page.ScrollIntoView(id)
}

// EnableAction enables a rendered control if t is still current.
func (p *Pipeline) EnableAction(t Ticket, id string) bool {
	enabled := false
	p.Apply(t, func(page ports.Page) {
		enabled = page.EnableAction(id)
	})
	return enabled
}

// ShowError replaces the step with an error message if t is still current.
// The message is escaped.
func (p *Pipeline) ShowError(t Ticket, message string) bool {
	return p.Apply(t, func(page ports.Page) {
		writeError(page, message)
	})
}

// ShowFatal displays an error that no pending render may overwrite.
func (p *Pipeline) ShowFatal(message string) {
	t := p.Begin()
	p.Apply(t, func(page ports.Page) {
		writeError(page, message)
	})
}

func writeError(page ports.Page, message string) {
	page.SetLoading(false)
	page.ShowContent()
	page.SetTitle(domain.ErrorTitle)
	_ = page.SetBody(ErrorMarkup(message))
	page.ClearActions()
}

// ErrorMarkup is the body shown for errors.
func ErrorMarkup(message string) string {
	return `<div class="reminder urgent"><strong>⚠️ Error:</strong><br>` +
		html.EscapeString(message) +
		`</div><p>Please check that all files are properly set up and try refreshing the page.</p>`
}
