package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/walkthrough"
	"github.com/aretw0/walkthrough/internal/config"
	"github.com/aretw0/walkthrough/internal/logging"
	"github.com/aretw0/walkthrough/internal/presentation/tui"
	"github.com/aretw0/walkthrough/pkg/adapters/process"
	"github.com/aretw0/walkthrough/pkg/ports"
	"github.com/aretw0/walkthrough/pkg/runner"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	Settings config.Settings
	// URL is the landing URL; a ?step= query deep-links into the workflow.
	URL       string
	Plain     bool
	JSON      bool
	Watch     bool
	Debug     bool
	OpenLinks bool
	Logger    *slog.Logger

	// Input and Output default to the process streams. Setting either one
	// forces the line-based host.
	Input  io.Reader
	Output io.Writer
}

func (o RunOptions) interactive() bool {
	return !o.Plain && !o.JSON && o.Input == nil && o.Output == nil && IsTerminal()
}

func (o RunOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return logging.NewNop()
	}
	return o.Logger
}

// Execute handles the run command, dispatching to a single session or to
// watch mode.
func Execute(ctx context.Context, opts RunOptions) error {
	if opts.Watch {
		if opts.JSON {
			return fmt.Errorf("--watch and --json cannot be used together")
		}
		return RunWatch(ctx, opts)
	}
	return RunSession(ctx, opts)
}

// RunSession runs one walkthrough until the user quits or ctx is done.
func RunSession(ctx context.Context, opts RunOptions) error {
	wf, err := OpenWorkflow(opts.Settings.Config, opts.Settings.ContentDir, opts.logger())
	if err != nil {
		return err
	}
	store, closer, err := OpenStore(ctx, opts.Settings)
	if err != nil {
		return err
	}
	defer closer.Close()

	eng, err := newEngine(wf, store, opts, opts.URL)
	if err != nil {
		return err
	}

	if opts.interactive() {
		tui.PrintBanner(os.Stdout, walkthrough.Version)
		return handleExecutionError(tui.Run(ctx, eng))
	}
	r := runner.NewRunner(runnerOptions(opts, newIOHandler(opts))...)
	return handleExecutionError(r.Run(ctx, eng))
}

func newEngine(wf Workflow, store ports.PreferenceStore, opts RunOptions, landing string) (*walkthrough.Engine, error) {
	engineOpts := EngineOptions(opts.Settings, wf, store, opts.logger(), opts.Debug)
	if landing != "" {
		engineOpts = append(engineOpts, walkthrough.WithURL(landing))
	}
	if opts.OpenLinks {
		engineOpts = append(engineOpts, walkthrough.WithLinkOpener(process.NewOpener(process.WithLogger(opts.logger()))))
	}
	eng, err := walkthrough.New(wf.Source, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return eng, nil
}

// newIOHandler builds the line-based handler. It is created once per
// process so a single goroutine reads stdin across reloads.
func newIOHandler(opts RunOptions) runner.IOHandler {
	in, out := opts.Input, opts.Output
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	if opts.JSON {
		return runner.NewJSONHandler(in, out)
	}
	var textOpts []runner.TextHandlerOption
	if !opts.Plain && opts.Output == nil && IsTerminal() {
		textOpts = append(textOpts, runner.WithTextHandlerRenderer(tui.NewRenderer(78)))
	}
	textOpts = append(textOpts, runner.WithTextHandlerURL(opts.Debug))
	return runner.NewTextHandler(in, out, textOpts...)
}

func runnerOptions(opts RunOptions, handler runner.IOHandler) []runner.Option {
	return []runner.Option{
		runner.WithLogger(opts.logger()),
		runner.WithInputHandler(handler),
		runner.WithHeadless(opts.JSON),
	}
}
