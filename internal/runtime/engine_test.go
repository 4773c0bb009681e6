package runtime_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/walkthrough/internal/runtime"
	"github.com/aretw0/walkthrough/pkg/adapters/memory"
	"github.com/aretw0/walkthrough/pkg/dom"
	"github.com/aretw0/walkthrough/pkg/domain"
	"github.com/aretw0/walkthrough/pkg/graph"
	"github.com/aretw0/walkthrough/pkg/location"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStart_LandsOnStartStep(t *testing.T) {
	f := startedFixture(t)

	state := f.engine.State()
	assert.Equal(t, "welcome", state.CurrentStepID)
	assert.Equal(t, domain.PhaseReady, state.Phase)
	assert.Empty(t, state.History)

	assert.Equal(t, "Welcome", f.page.Title())
	assert.Contains(t, f.page.BodyHTML(), "Welcome to the setup guide.")
	assert.False(t, f.page.LoadingVisible())
	assert.False(t, f.backVisible())

	// Landing entry plus the recorded start step.
	require.Equal(t, 2, f.history.Len())
	assert.Equal(t, "welcome", f.history.Current().StepID)
	assert.Equal(t, "https://example.com/guide/?step=welcome", f.engine.CurrentURL())
}

func TestStart_DeepLink(t *testing.T) {
	f := newFixture(t, "https://example.com/guide/?step=configure")
	require.NoError(t, f.engine.Start(context.Background()))

	assert.Equal(t, "configure", f.engine.State().CurrentStepID)
	assert.Equal(t, "Configure", f.page.Title())
	assert.Equal(t, 1, f.history.Len(), "deep links must not record history")
	assert.True(t, f.backVisible())
	assert.Empty(t, f.engine.State().History)
}

func TestStart_UnknownDeepLinkFallsBackToStart(t *testing.T) {
	f := newFixture(t, "https://example.com/guide/?step=nope")
	require.NoError(t, f.engine.Start(context.Background()))

	assert.Equal(t, "welcome", f.engine.State().CurrentStepID)
	assert.Equal(t, 2, f.history.Len())
}

func TestStart_ScrollsToAnchor(t *testing.T) {
	f := newFixture(t, "https://example.com/guide/?step=configure#verify")
	require.NoError(t, f.engine.Start(context.Background()))
	assert.Equal(t, "verify", f.page.ScrollTarget())
}

func TestStart_ConfigFailureIsTerminal(t *testing.T) {
	page := dom.New()
	src := memory.NewFailingSource("workflow_config.json", errors.New("404 Not Found"))
	engine, err := runtime.NewEngine(src, page, runtime.WithSleeper(location.NoSleep))
	require.NoError(t, err)

	err = engine.Start(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfigLoad)
	assert.True(t, graph.IsUnreachable(err))

	state := engine.State()
	assert.Equal(t, domain.PhaseError, state.Phase)
	assert.NotEmpty(t, state.Error)
	assert.Empty(t, state.CurrentStepID)
	assert.True(t, engine.ShowingError())

	assert.Equal(t, domain.ErrorTitle, page.Title())
	assert.Contains(t, page.BodyHTML(), "workflow_config.json")

	assert.ErrorIs(t, engine.GoTo(context.Background(), "welcome"), domain.ErrNotReady)
	assert.ErrorIs(t, engine.Restart(context.Background()), domain.ErrNotReady)
	assert.Equal(t, domain.ErrorTitle, page.Title())
}

func TestStart_MalformedConfig(t *testing.T) {
	src := memory.NewSource("workflow.json", []byte(`{"workflow": {"steps": {}}}`))
	engine, err := runtime.NewEngine(src, dom.New())
	require.NoError(t, err)

	err = engine.Start(context.Background())
	assert.True(t, graph.IsMalformed(err))
	assert.Equal(t, domain.PhaseError, engine.State().Phase)
}

func TestActivate_ActionLabelledBack(t *testing.T) {
	src, err := memory.NewSourceFromSteps("a",
		domain.Step{ID: "a", Content: "<p>a</p>", Actions: []domain.Action{{Label: "Next", NextStep: "b"}}},
		domain.Step{ID: "b", Title: "B", Content: "<p>b</p>", Actions: []domain.Action{{Label: "back", NextStep: "c"}}},
		domain.Step{ID: "c", Title: "C", Content: "<p>c</p>"},
	)
	require.NoError(t, err)
	page := dom.New()
	engine, err := runtime.NewEngine(src, page, runtime.WithSleeper(location.NoSleep))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, engine.Start(ctx))
	assert.Empty(t, page.Title())

	require.NoError(t, engine.Activate(ctx, "Next"))
	_, ok := page.Button("back")
	assert.True(t, ok)
	_, ok = page.Button(domain.BackButtonID)
	assert.True(t, ok)

	require.NoError(t, engine.Activate(ctx, "back"))
	assert.Equal(t, "c", engine.State().CurrentStepID)
	assert.Equal(t, []string{"a", "b"}, engine.State().History)
}

func TestStart_Twice(t *testing.T) {
	f := startedFixture(t)
	assert.ErrorIs(t, f.engine.Start(context.Background()), domain.ErrAlreadyStarted)
}

func TestNewEngine_RequiresSourceAndPage(t *testing.T) {
	_, err := runtime.NewEngine(nil, dom.New())
	assert.Error(t, err)
	_, err = runtime.NewEngine(memory.NewSource("x", nil), nil)
	assert.Error(t, err)
}

func TestGoTo_Valid(t *testing.T) {
	f := startedFixture(t)
	ctx := context.Background()

	require.NoError(t, f.engine.GoTo(ctx, "done"))
	assert.Equal(t, "done", f.engine.State().CurrentStepID)
	assert.Equal(t, "Done", f.page.Title())
	assert.Equal(t, "<p>All set.</p>", f.page.BodyHTML())
	assert.Equal(t, "done", f.history.Current().StepID)
	assert.Equal(t, dom.ScrollTop, f.page.ScrollTarget())
}

func TestGoTo_UnknownKeepsCurrentStep(t *testing.T) {
	f := startedFixture(t)
	ctx := context.Background()
	require.NoError(t, f.engine.Activate(ctx, "Start"))
	entries := f.history.Len()

	err := f.engine.GoTo(ctx, "ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStepNotFound)
	var notFound *runtime.StepNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "ghost", notFound.StepID)

	assert.Equal(t, "install", f.engine.State().CurrentStepID)
	assert.Equal(t, domain.ErrorTitle, f.page.Title())
	assert.Contains(t, f.page.BodyHTML(), `Step &#34;ghost&#34; not found`)
	assert.Empty(t, f.page.Buttons())
	assert.Empty(t, f.engine.Buttons())
	assert.True(t, f.engine.ShowingError())
	assert.Equal(t, entries, f.history.Len())

	// Back still works from the error display.
	require.NoError(t, f.engine.Activate(ctx, domain.BackButtonID))
	assert.Equal(t, "welcome", f.engine.State().CurrentStepID)
	assert.False(t, f.engine.ShowingError())
}

func TestHandleAction_DanglingNextStep(t *testing.T) {
	f := startedFixture(t)
	ctx := context.Background()
	require.NoError(t, f.engine.GoTo(ctx, "configure"))

	err := f.engine.Activate(ctx, "Broken")
	assert.ErrorIs(t, err, domain.ErrStepNotFound)
	assert.Equal(t, "configure", f.engine.State().CurrentStepID)
	assert.Equal(t, []string{"configure"}, f.engine.State().History)
}

func TestRoundTrip_ActionThenBack(t *testing.T) {
	f := startedFixture(t)
	ctx := context.Background()

	require.NoError(t, f.engine.GoTo(ctx, "install"))
	before := len(f.engine.State().History)

	require.NoError(t, f.engine.HandleAction(ctx, domain.Action{Label: "Next", NextStep: "configure"}))
	assert.Equal(t, "configure", f.engine.State().CurrentStepID)
	assert.Len(t, f.engine.State().History, before+1)

	require.NoError(t, f.engine.GoBack(ctx))
	assert.Equal(t, "install", f.engine.State().CurrentStepID)
	assert.Len(t, f.engine.State().History, before)
	assert.Equal(t, "Install", f.page.Title())
}

func TestHandleAction_CancelledDelayLeavesStack(t *testing.T) {
	for name, sleep := range map[string]location.Sleeper{
		"no sleep": location.NoSleep,
		"timer":    location.TimerSleeper,
	} {
		t.Run(name, func(t *testing.T) {
			f := startedFixture(t, runtime.WithSleeper(sleep), runtime.WithActionDelay(time.Hour))
			before := f.engine.State()
			require.Empty(t, before.History)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			err := f.engine.Activate(ctx, "Start")
			require.ErrorIs(t, err, context.Canceled)

			after := f.engine.State()
			assert.Equal(t, before.History, after.History)
			assert.Equal(t, "welcome", after.CurrentStepID)
			assert.False(t, f.backVisible())
		})
	}
}

func TestGoBack_EmptyStackIsNoop(t *testing.T) {
	f := startedFixture(t)
	entries := f.history.Len()

	require.NoError(t, f.engine.GoBack(context.Background()))
	assert.Equal(t, "welcome", f.engine.State().CurrentStepID)
	assert.Equal(t, entries, f.history.Len())
}

func TestRestart_Idempotent(t *testing.T) {
	f := startedFixture(t)
	ctx := context.Background()
	require.NoError(t, f.engine.Activate(ctx, "Start"))
	require.NoError(t, f.engine.Activate(ctx, "Next"))

	require.NoError(t, f.engine.Restart(ctx))
	once := f.engine.State()
	onceTitle := f.page.Title()

	require.NoError(t, f.engine.Restart(ctx))
	twice := f.engine.State()

	assert.Equal(t, once, twice)
	assert.Equal(t, "welcome", twice.CurrentStepID)
	assert.Empty(t, twice.History)
	assert.Equal(t, onceTitle, f.page.Title())
	assert.False(t, f.backVisible())
}

func TestPopState_DoesNotRecordHistory(t *testing.T) {
	f := startedFixture(t)
	ctx := context.Background()
	require.NoError(t, f.engine.Activate(ctx, "Start"))
	require.NoError(t, f.engine.Activate(ctx, "Next"))
	entries := f.history.Len()
	stack := f.engine.State().History

	require.True(t, f.history.Back(ctx))
	assert.Equal(t, "install", f.engine.State().CurrentStepID)
	assert.Equal(t, "Install", f.page.Title())
	assert.Equal(t, entries, f.history.Len())
	assert.Equal(t, stack, f.engine.State().History, "browser navigation never touches the back stack")
	assert.False(t, f.engine.State().RespondingToBrowserNav)

	require.True(t, f.history.Forward(ctx))
	assert.Equal(t, "configure", f.engine.State().CurrentStepID)

	// Back to the landing entry: no step payload, nothing happens.
	f.history.Back(ctx)
	f.history.Back(ctx)
	f.history.Back(ctx)
	assert.Equal(t, "welcome", f.engine.State().CurrentStepID)
}

func TestActivate(t *testing.T) {
	f := startedFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.engine.Activate(ctx, domain.BackButtonID), domain.ErrButtonNotFound, "no Back on the start step")
	assert.ErrorIs(t, f.engine.Activate(ctx, "Nope"), domain.ErrButtonNotFound)

	require.NoError(t, f.engine.Activate(ctx, "Start"))
	require.NoError(t, f.engine.Activate(ctx, "Next"))

	assert.ErrorIs(t, f.engine.Activate(ctx, "Continue"), domain.ErrButtonDisabled)

	b, ok := f.page.Button("Continue")
	require.True(t, ok)
	assert.True(t, b.Disabled)

	assert.True(t, f.engine.EnableButton("Continue"))
	assert.False(t, f.engine.EnableButton("Nope"))
	b, _ = f.page.Button("Continue")
	assert.False(t, b.Disabled)
	assert.Contains(t, b.Classes, domain.ClassActionEnabled)

	require.NoError(t, f.engine.Activate(ctx, "Continue"))
	assert.Equal(t, "done", f.engine.State().CurrentStepID)

	// Enabling does not survive navigation.
	require.NoError(t, f.engine.GoBack(ctx))
	assert.ErrorIs(t, f.engine.Activate(ctx, "Continue"), domain.ErrButtonDisabled)
}

func TestButtons(t *testing.T) {
	f := startedFixture(t)
	ctx := context.Background()

	buttons := f.engine.Buttons()
	require.Len(t, buttons, 1)
	assert.Equal(t, "Start", buttons[0].ID)

	require.NoError(t, f.engine.GoTo(ctx, "configure"))
	buttons = f.engine.Buttons()
	require.Len(t, buttons, 3)
	assert.Equal(t, domain.ButtonBack, buttons[0].Kind)
	assert.Equal(t, f.page.Buttons(), buttons)
}

func TestExternalLink(t *testing.T) {
	var links []string
	f := startedFixture(t, runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnExternalLink: func(ctx context.Context, e *domain.LinkEvent) {
			links = append(links, e.StepID+" "+e.URL)
		},
	}))
	ctx := context.Background()
	require.NoError(t, f.engine.GoTo(ctx, "install"))
	before := f.engine.State()

	require.NoError(t, f.engine.Activate(ctx, "Docs"))
	assert.Equal(t, []string{docsURL}, f.opener.Opened())
	assert.Equal(t, []string{"install " + docsURL}, links)
	assert.Equal(t, before, f.engine.State(), "a link without nextStep does not navigate")
}

func TestExternalLinkWithNextStep(t *testing.T) {
	f := startedFixture(t)
	ctx := context.Background()

	require.NoError(t, f.engine.HandleAction(ctx, domain.Action{
		Label:    "Read and continue",
		NextStep: "install",
		Type:     domain.ActionTypeExternalLink,
		URL:      docsURL,
	}))
	assert.Equal(t, []string{docsURL}, f.opener.Opened())
	assert.Equal(t, "install", f.engine.State().CurrentStepID)
}

func TestPlatform(t *testing.T) {
	f := startedFixture(t)
	ctx := context.Background()
	require.NoError(t, f.engine.GoTo(ctx, "install"))
	assert.Empty(t, f.page.QueryClass(domain.ClassThisPlatform))

	require.NoError(t, f.engine.SetPlatform(ctx, domain.PlatformMac))
	tagged := f.page.QueryClass(domain.ClassThisPlatform)
	require.Len(t, tagged, 1)
	assert.True(t, tagged[0].Contains(domain.PlatformMac))
	assert.Equal(t, domain.PlatformMac, f.engine.State().Platform)

	stored, err := f.store.Get(ctx, "walkthrough-platform")
	require.NoError(t, err)
	assert.Equal(t, domain.PlatformMac, stored)

	// Newly rendered content picks up the platform.
	require.NoError(t, f.engine.GoTo(ctx, "configure"))
	tagged = f.page.QueryClass(domain.ClassThisPlatform)
	require.Len(t, tagged, 1)
	assert.Contains(t, f.page.Markdown(), "zshrc")
	assert.NotContains(t, f.page.Markdown(), "bashrc")

	// Switching reverts the previous platform's tags.
	require.NoError(t, f.engine.SetPlatform(ctx, domain.PlatformLinux))
	tagged = f.page.QueryClass(domain.ClassThisPlatform)
	require.Len(t, tagged, 1)
	assert.True(t, tagged[0].Contains(domain.PlatformLinux))

	require.NoError(t, f.engine.ResetPlatform(ctx))
	assert.Empty(t, f.page.QueryClass(domain.ClassThisPlatform))
	assert.Empty(t, f.engine.State().Platform)
	_, err = f.store.Get(ctx, "walkthrough-platform")
	assert.ErrorIs(t, err, domain.ErrPreferenceNotFound)
}

func TestPlatform_ReadAtStart(t *testing.T) {
	f := newFixture(t, "https://example.com/guide/?step=install", runtime.WithPreferenceKey("course-platform"))
	require.NoError(t, f.store.Set(context.Background(), "course-platform", domain.PlatformWindows))
	require.NoError(t, f.engine.Start(context.Background()))

	assert.Equal(t, domain.PlatformWindows, f.engine.State().Platform)
	tagged := f.page.QueryClass(domain.ClassThisPlatform)
	require.Len(t, tagged, 1)
	assert.True(t, tagged[0].Contains(domain.PlatformWindows))
}

func TestPlatform_UnavailableStorage(t *testing.T) {
	f := startedFixture(t, runtime.WithPreferenceStore(memory.BrokenStore{}))
	ctx := context.Background()

	require.NoError(t, f.engine.GoTo(ctx, "install"))
	require.NoError(t, f.engine.SetPlatform(ctx, domain.PlatformMac))
	assert.Len(t, f.page.QueryClass(domain.ClassThisPlatform), 1, "the page still reflects the choice")
	require.NoError(t, f.engine.ResetPlatform(ctx))
}

func TestFragmentFailureStillNavigates(t *testing.T) {
	var rendered []*domain.RenderEvent
	f := startedFixture(t,
		runtime.WithFetcher(memory.NewFetcher(nil)),
		runtime.WithLifecycleHooks(domain.LifecycleHooks{
			OnRender: func(ctx context.Context, e *domain.RenderEvent) {
				rendered = append(rendered, e)
			},
		}),
	)

	require.NoError(t, f.engine.GoTo(context.Background(), "install"))
	assert.Equal(t, "install", f.engine.State().CurrentStepID)
	assert.Equal(t, "Install", f.page.Title())
	assert.Empty(t, f.page.BodyHTML())
	assert.Len(t, f.page.Buttons(), 4)

	require.Len(t, rendered, 2)
	assert.ErrorIs(t, rendered[1].FragmentErr, domain.ErrFragmentFetch)
}

func TestHooks(t *testing.T) {
	var entered, missing []string
	f := startedFixture(t, runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			entered = append(entered, e.FromStepID+">"+e.StepID)
		},
		OnStepMissing: func(ctx context.Context, e *domain.StepEvent) {
			missing = append(missing, e.StepID)
		},
	}))
	ctx := context.Background()

	require.NoError(t, f.engine.Activate(ctx, "Start"))
	_ = f.engine.GoTo(ctx, "ghost")

	assert.Equal(t, []string{">welcome", "welcome>install"}, entered)
	assert.Equal(t, []string{"ghost"}, missing)
}

func TestStateListener(t *testing.T) {
	var diffs []*domain.StateDiff
	f := startedFixture(t, runtime.WithStateListener(func(ctx context.Context, prev, next domain.NavigationState) {
		diffs = append(diffs, domain.Diff(&prev, &next))
	}))
	diffs = nil

	require.NoError(t, f.engine.Activate(context.Background(), "Start"))

	// The back stack push and the step change are reported separately.
	require.Len(t, diffs, 2)
	assert.Equal(t, []string{"welcome"}, diffs[0].History)
	require.NotNil(t, diffs[1].CurrentStepID)
	assert.Equal(t, "install", *diffs[1].CurrentStepID)
}
