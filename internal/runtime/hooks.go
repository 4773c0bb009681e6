package runtime

import (
	"context"
	"time"

	"github.com/aretw0/walkthrough/pkg/domain"
)

func (e *Engine) emitStepEnter(ctx context.Context, stepID, from string, pushed bool) {
	if e.hooks.OnStepEnter == nil {
		return
	}
	e.hooks.OnStepEnter(ctx, &domain.StepEvent{
		EventBase:   domain.EventBase{Timestamp: time.Now(), Type: domain.EventStepEnter},
		StepID:      stepID,
		FromStepID:  from,
		PushHistory: pushed,
	})
}

func (e *Engine) emitStepMissing(ctx context.Context, stepID, from string) {
	if e.hooks.OnStepMissing == nil {
		return
	}
	e.hooks.OnStepMissing(ctx, &domain.StepEvent{
		EventBase:  domain.EventBase{Timestamp: time.Now(), Type: domain.EventStepMissing},
		StepID:     stepID,
		FromStepID: from,
	})
}

func (e *Engine) emitExternalLink(ctx context.Context, stepID, url string) {
	if e.hooks.OnExternalLink == nil {
		return
	}
	e.hooks.OnExternalLink(ctx, &domain.LinkEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventExternalLink},
		StepID:    stepID,
		URL:       url,
	})
}
