package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/walkthrough/pkg/domain"
	"github.com/aretw0/walkthrough/pkg/location"
	"github.com/aretw0/walkthrough/pkg/ports"
)

// DefaultActionDelay is the pause between an action click and the navigation.
const DefaultActionDelay = 150 * time.Millisecond

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithFetcher sets the resolver for step contentFile references.
func WithFetcher(fetcher ports.FragmentFetcher) EngineOption {
	return func(e *Engine) {
		e.fetcher = fetcher
	}
}

// WithHistory connects the engine to a browser history.
// Without one, navigation works but no URLs are recorded.
func WithHistory(history ports.BrowserHistory) EngineOption {
	return func(e *Engine) {
		e.history = history
	}
}

// WithPreferenceStore sets where the platform preference is persisted.
func WithPreferenceStore(store ports.PreferenceStore) EngineOption {
	return func(e *Engine) {
		e.store = store
	}
}

// WithPreferenceKey overrides the store key of the platform preference.
func WithPreferenceKey(key string) EngineOption {
	return func(e *Engine) {
		e.preferenceKey = key
	}
}

// WithLinkOpener sets how external links are opened.
func WithLinkOpener(opener ports.LinkOpener) EngineOption {
	return func(e *Engine) {
		e.opener = opener
	}
}

// WithActionDelay overrides DefaultActionDelay.
func WithActionDelay(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.actionDelay = d
	}
}

// WithAnchorDelay overrides location.DefaultAnchorDelay.
func WithAnchorDelay(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.anchorDelay = d
	}
}

// WithSleeper replaces the timer behind the action and anchor delays.
func WithSleeper(sleep location.Sleeper) EngineOption {
	return func(e *Engine) {
		e.sleep = sleep
	}
}

// WithStateListener registers a callback fired after every state change,
// with the state before and after. Listeners run synchronously on the
// navigating goroutine.
func WithStateListener(fn func(ctx context.Context, prev, next domain.NavigationState)) EngineOption {
	return func(e *Engine) {
		e.listeners = append(e.listeners, fn)
	}
}

// GoToOption configures a single GoTo call.
type GoToOption func(*goToConfig)

type goToConfig struct {
	pushHistory bool
}

// WithoutHistory skips recording a browser history entry.
func WithoutHistory() GoToOption {
	return func(c *goToConfig) {
		c.pushHistory = false
	}
}
