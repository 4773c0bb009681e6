package location_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/walkthrough/pkg/adapters/memory"
	"github.com/aretw0/walkthrough/pkg/dom"
	"github.com/aretw0/walkthrough/pkg/location"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordStep(t *testing.T) {
	h := memory.MustHistory("https://example.com/wizard/?lang=en")
	s := location.New(h)

	assert.True(t, s.RecordStep(context.Background(), "install", "Install"))

	entries := h.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "install", entries[1].StepID)
	assert.Equal(t, "Install", entries[1].Title)
	assert.Equal(t, "https://example.com/wizard/?lang=en&step=install", entries[1].URL)

	id, ok := s.ReadStepFromURL()
	assert.True(t, ok)
	assert.Equal(t, "install", id)
}

func TestRecordStep_SuppressedDuringBrowserNav(t *testing.T) {
	h := memory.MustHistory("/")
	s := location.New(h)

	s.BeginBrowserNav()
	assert.True(t, s.Responding())
	assert.False(t, s.RecordStep(context.Background(), "a", "A"))
	s.EndBrowserNav()

	assert.False(t, s.Responding())
	assert.Equal(t, 1, h.Len())
}

func TestRecordStep_BestEffort(t *testing.T) {
	h := memory.MustHistory("/")
	h.FailPushes(errors.New("SecurityError"))
	s := location.New(h)
	assert.False(t, s.RecordStep(context.Background(), "a", "A"))

	none := location.New(nil)
	assert.False(t, none.RecordStep(context.Background(), "a", "A"))
	_, ok := none.ReadStepFromURL()
	assert.False(t, ok)
	assert.Empty(t, none.CurrentURL())
}

func TestOnPopState_IgnoresEntriesWithoutStep(t *testing.T) {
	ctx := context.Background()
	h := memory.MustHistory("/")
	s := location.New(h)

	var got []string
	s.OnPopState(func(ctx context.Context, stepID string) {
		got = append(got, stepID)
	})

	s.RecordStep(ctx, "a", "A")
	s.RecordStep(ctx, "b", "B")
	h.Back(ctx)
	h.Back(ctx)

	assert.Equal(t, []string{"a"}, got)
}

func TestScrollToAnchor(t *testing.T) {
	ctx := context.Background()
	page := dom.New()
	require.NoError(t, page.SetBody(`<h2 id="faq">FAQ</h2>`))

	var slept bool
	sleeper := func(ctx context.Context, _ time.Duration) error {
		slept = true
		return nil
	}

	s := location.New(memory.MustHistory("/?step=a#faq"), location.WithSleeper(sleeper))
	assert.True(t, s.ScrollToAnchor(ctx, page))
	assert.True(t, slept)
	assert.Equal(t, "faq", page.ScrollTarget())

	noAnchor := location.New(memory.MustHistory("/?step=a"), location.WithSleeper(location.NoSleep))
	assert.False(t, noAnchor.ScrollToAnchor(ctx, page))

	missing := location.New(memory.MustHistory("/#nowhere"), location.WithSleeper(location.NoSleep))
	assert.False(t, missing.ScrollToAnchor(ctx, page))
}

func TestScrollToAnchor_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	page := dom.New()
	require.NoError(t, page.SetBody(`<h2 id="faq">FAQ</h2>`))

	s := location.New(memory.MustHistory("/#faq"))
	assert.False(t, s.ScrollToAnchor(ctx, page))
	assert.Empty(t, page.ScrollTarget())
}
