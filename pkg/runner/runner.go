package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"

	"github.com/aretw0/walkthrough"
	"github.com/aretw0/walkthrough/internal/logging"
	"github.com/aretw0/walkthrough/pkg/domain"
)

// Runner handles the prompt loop of the walkthrough engine using provided IO.
// It uses an IOHandler strategy to abstract the interaction mode (Text vs JSON).
type Runner struct {
	// Handler is the strategy for IO. If nil, a TextHandler over Input/Output is used.
	Handler IOHandler

	// Logger is used for internal debug logging.
	Logger *slog.Logger

	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer
}

// NewRunner creates a new Runner with default Stdin/Stdout.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Input:  os.Stdin,
		Output: os.Stdout,
		Logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts the engine if needed and processes commands until the user
// quits, input ends or the process is interrupted. A failed Start prints
// the error page and is returned.
func (r *Runner) Run(ctx context.Context, eng *walkthrough.Engine) error {
	handler := r.resolveHandler()

	signals := NewSignalManager(ctx)
	defer signals.Stop()

	if eng.State().Phase == domain.PhaseUninitialized {
		if err := eng.Start(signals.Context()); err != nil {
			_ = handler.Output(ctx, eng.View())
			return fmt.Errorf("failed to start walkthrough: %w", err)
		}
	}

	if !r.Headless {
		_ = handler.SystemOutput(ctx, "Type 'help' for commands.")
	}

	var last *walkthrough.View
	for {
		view := eng.View()
		if last == nil || !reflect.DeepEqual(*last, view) {
			if err := handler.Output(ctx, view); err != nil {
				return fmt.Errorf("output error: %w", err)
			}
			last = &view
		}

		line, err := handler.Input(signals.Context())
		if err != nil {
			signals.CheckRace()
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if signals.Context().Err() != nil {
				r.Logger.Debug("runner interrupted")
				return nil
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		quit, err := r.dispatch(signals.Context(), eng, handler, line, view)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

// dispatch runs one command. Engine errors are reported to the user and
// do not stop the loop, except for cancellation.
func (r *Runner) dispatch(ctx context.Context, eng *walkthrough.Engine, handler IOHandler, line string, view walkthrough.View) (bool, error) {
	cmd, err := ParseCommand(line, view.Buttons)
	if err != nil {
		return false, handler.SystemOutput(ctx, fmt.Sprintf("%v. Type 'help' for commands.", err))
	}
	r.Logger.Debug("runner command", "command", cmd.Kind, "arg", cmd.Arg, "step_id", view.StepID)

	switch cmd.Kind {
	case CommandNone:
		return false, nil
	case CommandQuit:
		return true, nil
	case CommandHelp:
		return false, handler.SystemOutput(ctx, HelpText)
	case CommandActivate:
		err = eng.Activate(ctx, cmd.Arg)
	case CommandBack:
		err = eng.Activate(ctx, domain.BackButtonID)
		if errors.Is(err, domain.ErrButtonNotFound) {
			return false, handler.SystemOutput(ctx, "Already at the first step.")
		}
	case CommandRestart:
		err = eng.Restart(ctx)
	case CommandPlatform:
		if cmd.Arg == "" {
			platform := eng.State().Platform
			if platform == "" {
				platform = "not set"
			}
			return false, handler.SystemOutput(ctx, "Platform: "+platform)
		}
		err = eng.SetPlatform(ctx, cmd.Arg)
	case CommandReset:
		err = eng.ResetPlatform(ctx)
	case CommandGoTo:
		err = eng.GoTo(ctx, cmd.Arg)
	case CommandEnable:
		if !eng.EnableButton(cmd.Arg) {
			return false, handler.SystemOutput(ctx, fmt.Sprintf("No button %q to enable.", cmd.Arg))
		}
	}

	if err == nil {
		return false, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true, nil
	}
	r.Logger.Debug("runner command failed", "command", cmd.Kind, "error", err)
	return false, handler.SystemOutput(ctx, describeError(err))
}

func describeError(err error) string {
	switch {
	case errors.Is(err, domain.ErrButtonDisabled):
		return "That button is disabled."
	case errors.Is(err, domain.ErrButtonNotFound):
		return "No such button on this step."
	case errors.Is(err, domain.ErrStepNotFound):
		return err.Error()
	case errors.Is(err, domain.ErrNotReady):
		return "The walkthrough could not be loaded."
	}
	return "Error: " + err.Error()
}

// resolveHandler ensures a valid IOHandler is set.
func (r *Runner) resolveHandler() IOHandler {
	if r.Handler != nil {
		return r.Handler
	}
	th := NewTextHandler(r.Input, r.Output, WithTextHandlerRenderer(r.Renderer))
	if !r.Headless && r.Output != nil {
		fmt.Fprintln(r.Output, "--- Walkthrough ---")
	}
	// Memoize to prevent creating new pumps on subsequent Run() calls
	r.Handler = th
	return th
}
