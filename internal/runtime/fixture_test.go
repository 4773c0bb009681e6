package runtime_test

import (
	"context"
	"testing"

	"github.com/aretw0/walkthrough/internal/runtime"
	"github.com/aretw0/walkthrough/pkg/adapters/memory"
	"github.com/aretw0/walkthrough/pkg/dom"
	"github.com/aretw0/walkthrough/pkg/domain"
	"github.com/aretw0/walkthrough/pkg/location"
	"github.com/stretchr/testify/require"
)

const docsURL = "https://example.com/docs"

func wizardSteps() []domain.Step {
	return []domain.Step{
		{
			ID:      "welcome",
			Title:   "Welcome",
			Content: "<p>Welcome to the setup guide.</p>",
			Actions: []domain.Action{{Label: "Start", NextStep: "install"}},
		},
		{
			ID:          "install",
			Title:       "Install",
			ContentFile: "install.html",
			Actions: []domain.Action{
				{Label: "Docs", Type: domain.ActionTypeExternalLink, URL: docsURL},
				{Label: "Next", NextStep: "configure"},
				{Label: "Skip", NextStep: "done"},
			},
		},
		{
			ID:      "configure",
			Title:   "Configure",
			Content: `<p class="mac other-platform">Edit ~/.zshrc</p><p class="linux other-platform">Edit ~/.bashrc</p><h2 id="verify">Verify</h2>`,
			Actions: []domain.Action{
				{Label: "Continue", NextStep: "done", StartDisabled: true},
				{Label: "Broken", NextStep: "ghost"},
			},
		},
		{
			ID:      "done",
			Title:   "Done",
			Content: "<p>All set.</p>",
		},
	}
}

type fixture struct {
	engine  *runtime.Engine
	page    *dom.Document
	history *memory.History
	store   *memory.Store
	opener  *memory.Opener
	fetcher *memory.Fetcher
}

func newFixture(t *testing.T, landingURL string, opts ...runtime.EngineOption) *fixture {
	t.Helper()

	src, err := memory.NewSourceFromSteps("welcome", wizardSteps()...)
	require.NoError(t, err)

	f := &fixture{
		page:    dom.New(),
		history: memory.MustHistory(landingURL),
		store:   memory.NewStore(),
		opener:  memory.NewOpener(),
		fetcher: memory.NewFetcher(map[string]string{
			"install.html": `<p class="mac other-platform">brew install tool</p><p class="windows other-platform">winget install tool</p>`,
		}),
	}

	base := []runtime.EngineOption{
		runtime.WithHistory(f.history),
		runtime.WithPreferenceStore(f.store),
		runtime.WithLinkOpener(f.opener),
		runtime.WithFetcher(f.fetcher),
		runtime.WithSleeper(location.NoSleep),
	}
	f.engine, err = runtime.NewEngine(src, f.page, append(base, opts...)...)
	require.NoError(t, err)
	return f
}

func startedFixture(t *testing.T, opts ...runtime.EngineOption) *fixture {
	t.Helper()
	f := newFixture(t, "https://example.com/guide/", opts...)
	require.NoError(t, f.engine.Start(context.Background()))
	return f
}

func (f *fixture) backVisible() bool {
	_, ok := f.page.Button(domain.BackButtonID)
	return ok
}
