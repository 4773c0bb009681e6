package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepEnter    EventType = "step_enter"
	EventStepRendered EventType = "step_rendered"
	EventStepMissing  EventType = "step_missing"
	EventExternalLink EventType = "external_link"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// StepEvent represents entry into a step (or a failed attempt to enter one).
type StepEvent struct {
	EventBase
	StepID string `json:"step_id"`
	// FromStepID is empty on the first render.
	FromStepID  string `json:"from_step_id,omitempty"`
	PushHistory bool   `json:"push_history"`
}

// RenderEvent describes a finished render pipeline run.
type RenderEvent struct {
	EventBase
	StepID   string        `json:"step_id"`
	Duration time.Duration `json:"duration"`
	// Applied is false when a newer navigation superseded this render.
	Applied     bool  `json:"applied"`
	FragmentErr error `json:"-"`
}

// LinkEvent records an external link being opened.
type LinkEvent struct {
	EventBase
	StepID string `json:"step_id"`
	URL    string `json:"url"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnStepEnter    func(context.Context, *StepEvent)
	OnStepMissing  func(context.Context, *StepEvent)
	OnRender       func(context.Context, *RenderEvent)
	OnExternalLink func(context.Context, *LinkEvent)
}

// Merge returns hooks that invoke h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStepEnter:    chain(h.OnStepEnter, other.OnStepEnter),
		OnStepMissing:  chain(h.OnStepMissing, other.OnStepMissing),
		OnRender:       chain(h.OnRender, other.OnRender),
		OnExternalLink: chain(h.OnExternalLink, other.OnExternalLink),
	}
}

func chain[E any](a, b func(context.Context, *E)) func(context.Context, *E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *E) {
		a(ctx, e)
		b(ctx, e)
	}
}
