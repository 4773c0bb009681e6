package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/walkthrough/pkg/domain"
)

// LogHooks returns lifecycle hooks that write one structured line per event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			logger.Info("step_enter",
				"step_id", e.StepID,
				"from_step_id", e.FromStepID,
				"push_history", e.PushHistory,
			)
		},
		OnStepMissing: func(ctx context.Context, e *domain.StepEvent) {
			logger.Warn("step_missing", "step_id", e.StepID, "from_step_id", e.FromStepID)
		},
		OnRender: func(ctx context.Context, e *domain.RenderEvent) {
			attrs := []any{"step_id", e.StepID, "duration", e.Duration, "applied", e.Applied}
			if e.FragmentErr != nil {
				logger.Warn("step_render", append(attrs, "err", e.FragmentErr)...)
				return
			}
			logger.Debug("step_render", attrs...)
		},
		OnExternalLink: func(ctx context.Context, e *domain.LinkEvent) {
			logger.Info("external_link", "step_id", e.StepID, "url", e.URL)
		},
	}
}
