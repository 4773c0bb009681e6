package graph_test

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

const jsonWorkflow = `{
  "workflow": {
    "startStep": "welcome",
    "steps": {
      "welcome": {
        "title": "Welcome",
        "content": "<p>Hello</p>",
        "actions": [{"label": "Start", "nextStep": "install"}]
      },
      "install": {
        "title": "Install",
        "contentFile": "install.html",
        "actions": [
          {"label": "Docs", "type": "external_link", "url": "https://example.com/docs"},
          {"label": "Done", "nextStep": "done", "startDisabled": true}
        ]
      },
      "done": {"title": "Done", "content": ""}
    }
  }
}`

const yamlWorkflow = `
workflow:
  startStep: welcome
  steps:
    welcome:
      title: Welcome
      content: <p>Hello</p>
      actions:
        - label: Start
          nextStep: install
    install:
      title: Install
      contentFile: install.html
      actions:
        - label: Done
          nextStep: done
          startDisabled: true
    done:
      title: Done
      content: ""
`

func TestLoad_JSON(t *testing.T) {
	g, err := graph.Load(context.Background(), memory.NewSource("workflow.json", []byte(jsonWorkflow)))
	require.NoError(t, err)

	assert.Equal(t, "welcome", g.StartStep())
	assert.Equal(t, []string{"done", "install", "welcome"}, g.IDs())
	assert.Equal(t, "workflow.json", g.Source())

	install, err := g.Get("install")
	require.NoError(t, err)
	assert.Equal(t, "install.html", install.ContentFile)
	assert.True(t, install.HasFragment())
	require.Len(t, install.Actions, 2)
	assert.True(t, install.Actions[0].IsExternalLink())
	assert.True(t, install.Actions[1].StartDisabled)

	done, err := g.Get("done")
	require.NoError(t, err)
	assert.Empty(t, done.Content)
	assert.Empty(t, done.Actions)
}

func TestLoad_YAML(t *testing.T) {
	g, err := graph.Load(context.Background(), memory.NewSource("workflow.yaml", []byte(yamlWorkflow)))
	require.NoError(t, err)

	welcome, err := g.Get("welcome")
	require.NoError(t, err)
	assert.Equal(t, "Welcome", welcome.Title)
	assert.Equal(t, "<p>Hello</p>", welcome.Content)

	action, ok := welcome.FindAction("Start")
	require.True(t, ok)
	assert.Equal(t, "install", action.NextStep)
}

const tomlWorkflow = `
[workflow]
startStep = "welcome"

[workflow.steps.welcome]
title = "Welcome"
content = "<p>Hello</p>"

[[workflow.steps.welcome.actions]]
label = "Start"
nextStep = "done"

[workflow.steps.done]
title = "Done"
content = ""
`

func TestLoad_TOML(t *testing.T) {
	g, err := graph.Load(context.Background(), memory.NewSource("workflow.toml", []byte(tomlWorkflow)))
	require.NoError(t, err)

	assert.Equal(t, []string{"done", "welcome"}, g.IDs())
	welcome, err := g.Get("welcome")
	require.NoError(t, err)
	action, ok := welcome.FindAction("Start")
	require.True(t, ok)
	assert.Equal(t, "done", action.NextStep)

	_, err = graph.Parse("broken.toml", []byte("[workflow\n"))
	var loadErr *graph.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, graph.Malformed, loadErr.Kind)
}

func TestLoad_Unreachable(t *testing.T) {
	src := memory.NewFailingSource("https://example.com/workflow.json", errors.New("connection refused"))

	_, err := graph.Load(context.Background(), src)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfigLoad)
	assert.True(t, graph.IsUnreachable(err))
	assert.False(t, graph.IsMalformed(err))
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty document", ``},
		{"invalid json", `{"workflow": `},
		{"missing workflow", `{"steps": {}}`},
		{"missing startStep", `{"workflow": {"steps": {"a": {"title": "A", "content": ""}}}}`},
		{"missing steps", `{"workflow": {"startStep": "a"}}`},
		{"undefined startStep", `{"workflow": {"startStep": "b", "steps": {"a": {"title": "A", "content": ""}}}}`},
		{"missing title", `{"workflow": {"startStep": "a", "steps": {"a": {"content": "x"}}}}`},
		{"content and contentFile", `{"workflow": {"startStep": "a", "steps": {"a": {"title": "A", "content": "x", "contentFile": "a.html"}}}}`},
		{"neither content nor contentFile", `{"workflow": {"startStep": "a", "steps": {"a": {"title": "A"}}}}`},
		{"empty contentFile", `{"workflow": {"startStep": "a", "steps": {"a": {"title": "A", "contentFile": ""}}}}`},
		{"external link without url", `{"workflow": {"startStep": "a", "steps": {"a": {"title": "A", "content": "", "actions": [{"label": "Go", "type": "external_link"}]}}}}`},
		{"duplicate label", `{"workflow": {"startStep": "a", "steps": {"a": {"title": "A", "content": "", "actions": [{"label": "Go"}, {"label": "Go"}]}}}}`},
		{"empty label", `{"workflow": {"startStep": "a", "steps": {"a": {"title": "A", "content": "", "actions": [{"nextStep": "a"}]}}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := graph.Parse("test", []byte(tt.doc))
			require.Error(t, err)
			assert.True(t, graph.IsMalformed(err), "expected malformed, got %v", err)
			assert.ErrorIs(t, err, domain.ErrConfigLoad)
		})
	}
}

func TestLoad_DanglingNextStepIsNotFatal(t *testing.T) {
	doc := `{"workflow": {"startStep": "a", "steps": {"a": {"title": "A", "content": "", "actions": [{"label": "Next", "nextStep": "ghost"}]}}}}`

	g, err := graph.Load(context.Background(), memory.NewSource("test", []byte(doc)))
	require.NoError(t, err)

	_, err = g.Get("ghost")
	assert.ErrorIs(t, err, domain.ErrStepNotFound)
}

func TestLoad_EmptyTitleAndBackLabelAreNotFatal(t *testing.T) {
	doc := `{"workflow": {"startStep": "a", "steps": {"a": {"title": "", "content": "", "actions": [{"label": "back", "nextStep": "a"}]}}}}`

	g, err := graph.Parse("test", []byte(doc))
	require.NoError(t, err)

	a, err := g.Get("a")
	require.NoError(t, err)
	assert.Empty(t, a.Title)
	_, ok := a.FindAction("back")
	assert.True(t, ok)
}

func TestNewSourceFromSteps_RoundTripsThroughLoad(t *testing.T) {
	src, err := memory.NewSourceFromSteps("a",
		domain.Step{ID: "a", Title: "A", Content: "<p>a</p>", Actions: []domain.Action{{Label: "Next", NextStep: "b"}}},
		domain.Step{ID: "b", Title: "B", ContentFile: "b.html"},
	)
	require.NoError(t, err)

	g, err := graph.Load(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())

	b, err := g.Get("b")
	require.NoError(t, err)
	assert.Equal(t, "b.html", b.ContentFile)
}
