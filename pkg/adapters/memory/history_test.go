package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/walkthrough/pkg/adapters/memory"
	"github.com/aretw0/walkthrough/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_PushBackForward(t *testing.T) {
	ctx := context.Background()
	h := memory.MustHistory("https://example.com/wizard")

	var popped []string
	h.OnPopState(func(ctx context.Context, e ports.HistoryEntry) {
		popped = append(popped, e.StepID)
	})

	require.NoError(t, h.PushState(ctx, ports.HistoryEntry{StepID: "a", URL: "https://example.com/wizard?step=a"}))
	require.NoError(t, h.PushState(ctx, ports.HistoryEntry{StepID: "b", URL: "https://example.com/wizard?step=b"}))
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, "b", h.Location().Query().Get("step"))

	assert.True(t, h.Back(ctx))
	assert.Equal(t, "a", h.Location().Query().Get("step"))
	assert.True(t, h.Back(ctx))
	assert.False(t, h.Back(ctx), "cannot go before the landing entry")
	assert.True(t, h.Forward(ctx))

	assert.Equal(t, []string{"a", "", "a"}, popped)
}

func TestHistory_PushTruncatesForwardEntries(t *testing.T) {
	ctx := context.Background()
	h := memory.MustHistory("/")

	require.NoError(t, h.PushState(ctx, ports.HistoryEntry{StepID: "a", URL: "/?step=a"}))
	require.NoError(t, h.PushState(ctx, ports.HistoryEntry{StepID: "b", URL: "/?step=b"}))
	h.Back(ctx)
	require.NoError(t, h.PushState(ctx, ports.HistoryEntry{StepID: "c", URL: "/?step=c"}))

	entries := h.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "c", entries[2].StepID)
	assert.False(t, h.Forward(context.Background()))
}

func TestHistory_FailPushes(t *testing.T) {
	h := memory.MustHistory("/")
	boom := errors.New("pushState unavailable")
	h.FailPushes(boom)

	err := h.PushState(context.Background(), ports.HistoryEntry{StepID: "a"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, h.Len())
}
