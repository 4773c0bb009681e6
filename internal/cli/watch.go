package cli

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/walkthrough"
	"github.com/aretw0/walkthrough/internal/presentation/tui"
	"github.com/aretw0/walkthrough/pkg/runner"
)

// reloadSettle lets editors finish writing before the workflow is re-read.
const reloadSettle = 100 * time.Millisecond

// RunWatch runs the walkthrough in development mode: when the workflow or a
// fragment changes the engine is rebuilt and lands back on the step the
// user was looking at, through the ?step= deep link.
func RunWatch(ctx context.Context, opts RunOptions) error {
	logger := opts.logger()
	wf, err := OpenWorkflow(opts.Settings.Config, opts.Settings.ContentDir, logger)
	if err != nil {
		return err
	}
	store, closer, err := OpenStore(ctx, opts.Settings)
	if err != nil {
		return err
	}
	defer closer.Close()

	interactive := opts.interactive()
	var handler runner.IOHandler
	if !interactive {
		handler = newIOHandler(opts)
	}

	landing := opts.URL
	for {
		eng, err := newEngine(wf, store, opts, landing)
		if err != nil {
			return err
		}

		reload, err := watchIteration(ctx, eng, opts, interactive, handler)
		if err != nil || !reload {
			return handleExecutionError(err)
		}

		landing = eng.CurrentURL()
		logger.Info("Watcher restarting", "url", landing)
		if !interactive {
			printSystemMessage("Reloading at '%s'...", eng.State().CurrentStepID)
		}
	}
}

// watchIteration runs one engine until the user quits (reload=false) or the
// source changes (reload=true).
func watchIteration(parent context.Context, eng *walkthrough.Engine, opts RunOptions, interactive bool, handler runner.IOHandler) (bool, error) {
	logger := opts.logger()
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	changes, err := eng.Watch(ctx)
	if err != nil {
		logger.Warn("hot reload unavailable", "err", err)
	}

	reloaded := make(chan string, 1)
	go func() {
		select {
		case <-ctx.Done():
		case name, ok := <-changes:
			if !ok {
				return
			}
			logger.Info("Change detected, triggering reload", "file", name)
			select {
			case <-time.After(reloadSettle):
			case <-ctx.Done():
			}
			reloaded <- name
			cancel()
		}
	}()

	if interactive {
		err = tui.Run(ctx, eng)
	} else {
		err = runner.NewRunner(runnerOptions(opts, handler)...).Run(ctx, eng)
	}

	if parent.Err() != nil {
		return false, nil
	}
	select {
	case name := <-reloaded:
		if !interactive {
			printSystemMessage("Change detected in '%s'.", name)
		}
		return true, nil
	default:
	}
	if errors.Is(err, context.Canceled) {
		return false, nil
	}
	return false, err
}
