// Package cli holds the logic behind the walkthrough commands: building
// engines from settings, picking the interactive host and reloading on
// configuration changes.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/walkthrough/internal/logging"
	"github.com/aretw0/walkthrough/pkg/domain"
	"golang.org/x/term"
)

// Output is where system messages go. Tests replace it.
var Output io.Writer = os.Stdout

// CreateLogger returns a stderr logger at level in the given format, or a
// no-op logger when quiet is set.
func CreateLogger(level slog.Level, format logging.Format, quiet bool) *slog.Logger {
	if quiet {
		return logging.NewNop()
	}
	return logging.NewWithOptions(logging.Options{
		Level:     level,
		Format:    format,
		Component: "walkthrough",
	})
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(format string, args ...any) {
	fmt.Fprintf(Output, ">>> %s\n", fmt.Sprintf(format, args...))
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			logger.Debug("Enter Step", "step_id", e.StepID, "from_step_id", e.FromStepID)
		},
		OnStepMissing: func(ctx context.Context, e *domain.StepEvent) {
			logger.Debug("Missing Step", "step_id", e.StepID, "from_step_id", e.FromStepID)
		},
		OnRender: func(ctx context.Context, e *domain.RenderEvent) {
			if e.FragmentErr != nil {
				logger.Debug("Render (fragment failed)", "step_id", e.StepID, "err", e.FragmentErr)
				return
			}
			logger.Debug("Render", "step_id", e.StepID, "duration", e.Duration, "applied", e.Applied)
		},
		OnExternalLink: func(ctx context.Context, e *domain.LinkEvent) {
			logger.Debug("External Link", "step_id", e.StepID, "url", e.URL)
		},
	}
}

// IsTerminal reports whether both stdin and stdout are attached to a TTY.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, io.EOF)
}

// handleExecutionError maps interruptions to a clean exit.
func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil
	}
	return err
}
