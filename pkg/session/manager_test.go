package session_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/walkthrough"
	"github.com/aretw0/walkthrough/pkg/adapters/memory"
	"github.com/aretw0/walkthrough/pkg/domain"
	"github.com/aretw0/walkthrough/pkg/location"
	"github.com/aretw0/walkthrough/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFactory(t *testing.T, built *atomic.Int32) session.Factory {
	t.Helper()
	source, err := memory.NewSourceFromSteps("welcome",
		domain.Step{ID: "welcome", Title: "Welcome", Content: "<p>Hi</p>", Actions: []domain.Action{{Label: "Next", NextStep: "done"}}},
		domain.Step{ID: "done", Title: "Done", Content: "<p>Bye</p>"},
	)
	require.NoError(t, err)

	return func(ctx context.Context, id, landing string) (*walkthrough.Engine, error) {
		if built != nil {
			built.Add(1)
		}
		return walkthrough.New(source,
			walkthrough.WithURL(landing),
			walkthrough.WithSleeper(location.NoSleep),
		)
	}
}

func TestManager_LoadOrStartCreatesOnce(t *testing.T) {
	var built atomic.Int32
	mgr := session.NewManager(newFactory(t, &built))
	ctx := context.Background()

	var wg sync.WaitGroup
	var createdCount atomic.Int32
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, created, err := mgr.LoadOrStart(ctx, "atomic-init", "/")
			assert.NoError(t, err)
			assert.NotNil(t, s)
			if created {
				createdCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), built.Load())
	assert.Equal(t, int32(1), createdCount.Load())
	assert.Equal(t, []string{"atomic-init"}, mgr.List())
}

func TestManager_DeepLinkLanding(t *testing.T) {
	mgr := session.NewManager(newFactory(t, nil))

	s, created, err := mgr.LoadOrStart(context.Background(), "deep", "/?step=done")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "done", s.Engine.State().CurrentStepID)
}

func TestManager_WithLock(t *testing.T) {
	mgr := session.NewManager(newFactory(t, nil))
	ctx := context.Background()

	err := mgr.WithLock(ctx, "missing", func(context.Context, *session.Session) error { return nil })
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, _, err = mgr.LoadOrStart(ctx, "s1", "/")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := mgr.WithLock(ctx, "s1", func(ctx context.Context, s *session.Session) error {
				if s.Engine.State().CurrentStepID == "welcome" {
					return s.Engine.Activate(ctx, "Next")
				}
				return s.Engine.GoBack(ctx)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	s, ok := mgr.Get("s1")
	require.True(t, ok)
	// Five alternating moves, serialized, end on the second step.
	assert.Equal(t, "done", s.Engine.State().CurrentStepID)
}

func TestManager_FactoryError(t *testing.T) {
	mgr := session.NewManager(func(context.Context, string, string) (*walkthrough.Engine, error) {
		return nil, errors.New("boom")
	})
	_, _, err := mgr.LoadOrStart(context.Background(), "s1", "/")
	assert.Error(t, err)
	assert.Zero(t, mgr.Len())
}

func TestManager_Sweep(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var evicted []string
	mgr := session.NewManager(newFactory(t, nil),
		session.WithIdleTimeout(time.Minute),
		session.WithClock(func() time.Time { return now }),
		session.WithEvictionListener(func(id string) { evicted = append(evicted, id) }),
	)
	ctx := context.Background()

	_, _, err := mgr.LoadOrStart(ctx, "old", "/")
	require.NoError(t, err)
	now = now.Add(45 * time.Second)
	_, _, err = mgr.LoadOrStart(ctx, "fresh", "/")
	require.NoError(t, err)

	now = now.Add(30 * time.Second)
	assert.Equal(t, 1, mgr.Sweep(ctx))
	assert.Equal(t, []string{"fresh"}, mgr.List())
	assert.Equal(t, []string{"old"}, evicted)
}

func TestManager_SweepDisabled(t *testing.T) {
	mgr := session.NewManager(newFactory(t, nil), session.WithIdleTimeout(0))
	_, _, err := mgr.LoadOrStart(context.Background(), "s1", "/")
	require.NoError(t, err)
	assert.Zero(t, mgr.Sweep(context.Background()))
}
