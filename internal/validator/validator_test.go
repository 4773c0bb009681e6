package validator

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/walkthrough/pkg/adapters/memory"
	"github.com/aretw0/walkthrough/pkg/domain"
	"github.com/aretw0/walkthrough/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const workflow = `{
  "workflow": {
    "startStep": "start",
    "steps": {
      "start": {"title": "Start", "contentFile": "start.html", "actions": [{"label": "Next", "nextStep": "a"}]},
      "a": {"title": "A", "contentFile": "missing.html", "actions": [{"label": "Next", "nextStep": "ghost"}]},
      "island": {"title": "Island", "content": ""}
    }
  }
}`

func TestValidateWorkflow(t *testing.T) {
	source := memory.NewSource("workflow.json", []byte(workflow))
	fetcher := memory.NewFetcher(map[string]string{"start.html": "<p>hi</p>"})

	report, err := ValidateWorkflow(context.Background(), source, WithFetcher(fetcher), WithConcurrency(2))
	require.NoError(t, err)

	assert.Equal(t, "start", report.StartStep)
	assert.Equal(t, 3, report.Steps)
	assert.Equal(t, 2, report.Fragments)
	assert.True(t, report.HasErrors())

	var messages []string
	for _, i := range report.Issues {
		messages = append(messages, i.StepID+": "+i.Message)
	}
	assert.Contains(t, report.Error(), "ghost")
	assert.Contains(t, report.Error(), "missing.html")
	assert.Contains(t, report.Error(), "island")
	assert.Len(t, messages, 3)
}

func TestValidateWorkflow_WithoutFetcher(t *testing.T) {
	source := memory.NewSource("workflow.json", []byte(workflow))
	report, err := ValidateWorkflow(context.Background(), source)
	require.NoError(t, err)
	assert.Zero(t, report.Fragments)
	for _, i := range report.Issues {
		assert.NotContains(t, i.Message, "contentFile")
	}
}

func TestValidateWorkflow_LoadError(t *testing.T) {
	_, err := ValidateWorkflow(context.Background(), memory.NewFailingSource("workflow.json", errors.New("boom")))
	var loadErr *graph.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, graph.Unreachable, loadErr.Kind)
}

func TestValidateWorkflow_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	source := memory.NewSource("workflow.json", []byte(workflow))
	fetcher := fetchFunc(func(ctx context.Context, ref string) (string, error) {
		cancel()
		return "", domain.ErrFragmentFetch
	})
	_, err := ValidateWorkflow(ctx, source, WithFetcher(fetcher))
	assert.ErrorIs(t, err, context.Canceled)
}

type fetchFunc func(ctx context.Context, ref string) (string, error)

func (f fetchFunc) Fetch(ctx context.Context, ref string) (string, error) { return f(ctx, ref) }
