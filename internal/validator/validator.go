// Package validator checks a workflow before it is served: the graph is
// loaded and crawled, and every fragment it references is fetched.
package validator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/walkthrough/internal/logging"
	"github.com/aretw0/walkthrough/pkg/graph"
	"github.com/aretw0/walkthrough/pkg/ports"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds parallel fragment fetches.
const DefaultConcurrency = 8

// Report is the outcome of a validation run.
type Report struct {
	Source    string        `json:"source"`
	StartStep string        `json:"start_step"`
	Steps     int           `json:"steps"`
	Fragments int           `json:"fragments"`
	Issues    []graph.Issue `json:"issues"`
}

// HasErrors reports whether any issue has error severity.
func (r Report) HasErrors() bool {
	return graph.HasErrors(r.Issues)
}

// Error summarizes the issues in the same shape the CLI prints.
func (r Report) Error() string {
	lines := make([]string, 0, len(r.Issues))
	for _, i := range r.Issues {
		lines = append(lines, i.String())
	}
	return fmt.Sprintf("found %d issues:\n- %s", len(r.Issues), strings.Join(lines, "\n- "))
}

// Option configures ValidateWorkflow.
type Option func(*options)

type options struct {
	fetcher     ports.FragmentFetcher
	concurrency int
	logger      *slog.Logger
}

// WithFetcher checks fragments with f. Without it fragments are not fetched.
func WithFetcher(f ports.FragmentFetcher) Option {
	return func(o *options) {
		o.fetcher = f
	}
}

// WithConcurrency overrides DefaultConcurrency.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// ValidateWorkflow loads source and reports graph issues plus fragments that
// cannot be fetched. A configuration that cannot be loaded at all is
// returned as an error; everything else lands in the Report.
func ValidateWorkflow(ctx context.Context, source ports.ConfigSource, opts ...Option) (Report, error) {
	o := options{concurrency: DefaultConcurrency, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	g, err := graph.Load(ctx, source)
	if err != nil {
		return Report{Source: source.Name()}, err
	}

	report := Report{
		Source:    g.Source(),
		StartStep: g.StartStep(),
		Steps:     g.Len(),
		Issues:    graph.Validate(g),
	}
	if o.fetcher == nil {
		return report, nil
	}

	fragmentIssues, fetched, err := checkFragments(ctx, g, o)
	if err != nil {
		return report, err
	}
	report.Fragments = fetched
	report.Issues = append(report.Issues, fragmentIssues...)
	sort.SliceStable(report.Issues, func(i, j int) bool {
		return report.Issues[i].StepID < report.Issues[j].StepID
	})
	return report, nil
}

func checkFragments(ctx context.Context, g *graph.StepGraph, o options) ([]graph.Issue, int, error) {
	var (
		mu      sync.Mutex
		issues  []graph.Issue
		fetched int
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(o.concurrency, 1))

	for _, step := range g.Steps() {
		if !step.HasFragment() {
			continue
		}
		eg.Go(func() error {
			_, err := o.fetcher.Fetch(ctx, step.ContentFile)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			mu.Lock()
			defer mu.Unlock()
			fetched++
			if err != nil {
				o.logger.Debug("fragment check failed", "step_id", step.ID, "content_file", step.ContentFile, "err", err)
				issues = append(issues, graph.Issue{
					Severity: graph.SeverityError,
					StepID:   step.ID,
					Message:  fmt.Sprintf("contentFile %q cannot be loaded: %v", step.ContentFile, err),
				})
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, 0, err
	}
	return issues, fetched, nil
}
