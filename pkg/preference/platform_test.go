package preference_test

import (
	"context"
	"testing"

	"github.com/aretw0/walkthrough/pkg/adapters/memory"
	"github.com/aretw0/walkthrough/pkg/dom"
	"github.com/aretw0/walkthrough/pkg/domain"
	"github.com/aretw0/walkthrough/pkg/preference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const platformBody = `
<p class="mac other-platform">brew</p>
<p class="windows other-platform">winget</p>
<p class="linux other-platform">apt</p>`

func TestReadWrite(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	p := preference.New(store)

	_, ok := p.Read(ctx)
	assert.False(t, ok)

	p.Write(ctx, domain.PlatformLinux)
	got, ok := p.Read(ctx)
	assert.True(t, ok)
	assert.Equal(t, domain.PlatformLinux, got)

	stored, err := store.Get(ctx, preference.DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, domain.PlatformLinux, stored)
}

func TestWithKey(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	p := preference.New(store, preference.WithKey("course-platform"))

	p.Write(ctx, domain.PlatformMac)
	v, err := store.Get(ctx, "course-platform")
	require.NoError(t, err)
	assert.Equal(t, domain.PlatformMac, v)
	assert.Equal(t, "course-platform", p.Key())
}

func TestUnavailableStoreDegrades(t *testing.T) {
	ctx := context.Background()
	for name, p := range map[string]*preference.Platform{
		"broken": preference.New(memory.BrokenStore{}),
		"nil":    preference.New(nil),
	} {
		t.Run(name, func(t *testing.T) {
			p.Write(ctx, domain.PlatformMac)
			_, ok := p.Read(ctx)
			assert.False(t, ok)

			page := dom.New()
			require.NoError(t, page.SetBody(platformBody))
			preference.Apply(page, domain.PlatformMac)
			p.Reset(ctx, page)
			assert.Empty(t, page.QueryClass(domain.ClassThisPlatform))
		})
	}
}

func TestApplyAndReset(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Set(ctx, "unrelated", "keep me"))

	p := preference.New(store)
	p.Write(ctx, domain.PlatformWindows)

	page := dom.New()
	require.NoError(t, page.SetBody(platformBody))

	assert.Equal(t, 1, preference.Apply(page, domain.PlatformWindows))
	tagged := page.QueryClass(domain.ClassThisPlatform)
	require.Len(t, tagged, 1)
	assert.True(t, tagged[0].Contains(domain.PlatformWindows))
	assert.Len(t, page.QueryClass(domain.ClassOtherPlatform), 2)

	p.Reset(ctx, page)
	assert.Empty(t, page.QueryClass(domain.ClassThisPlatform))
	assert.Len(t, page.QueryClass(domain.ClassOtherPlatform), 3)

	_, ok := p.Read(ctx)
	assert.False(t, ok)
	v, err := store.Get(ctx, "unrelated")
	require.NoError(t, err)
	assert.Equal(t, "keep me", v)
}

func TestApply_EmptyPlatformIsNoop(t *testing.T) {
	page := dom.New()
	require.NoError(t, page.SetBody(platformBody))
	assert.Zero(t, preference.Apply(page, ""))
	assert.Empty(t, page.QueryClass(domain.ClassThisPlatform))
}
