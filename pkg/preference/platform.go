// Package preference persists the user's platform choice and applies it to
// platform-conditional content.
//
// Content for a platform carries the platform value as a class together with
// other-platform. Applying a platform swaps other-platform for this-platform
// on its elements; resetting swaps every this-platform back.
package preference

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aretw0/walkthrough/internal/logging"
	"github.com/aretw0/walkthrough/pkg/domain"
	"github.com/aretw0/walkthrough/pkg/ports"
)

// DefaultKey is the store key holding the platform value.
const DefaultKey = "walkthrough-platform"

// Platform reads and writes the platform preference.
// Store failures degrade to "no preference" and are never returned.
type Platform struct {
	store  ports.PreferenceStore
	key    string
	logger *slog.Logger
}

// Option configures a Platform.
type Option func(*Platform)

// WithKey overrides DefaultKey.
func WithKey(key string) Option {
	return func(p *Platform) {
		p.key = key
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Platform) {
		p.logger = logger
	}
}

// New creates a Platform backed by store. A nil store behaves like an
// unavailable one.
func New(store ports.PreferenceStore, opts ...Option) *Platform {
	p := &Platform{
		store:  store,
		key:    DefaultKey,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Key returns the store key.
func (p *Platform) Key() string {
	return p.key
}

// Read returns the stored platform, if any.
func (p *Platform) Read(ctx context.Context) (string, bool) {
	if p.store == nil {
		return "", false
	}
	v, err := p.store.Get(ctx, p.key)
	if err != nil {
		if !errors.Is(err, domain.ErrPreferenceNotFound) {
			p.logger.Debug("platform preference unavailable", "key", p.key, "error", err)
		}
		return "", false
	}
	return v, v != ""
}

// Write persists value.
func (p *Platform) Write(ctx context.Context, value string) {
	if p.store == nil {
		return
	}
	if err := p.store.Set(ctx, p.key, value); err != nil {
		p.logger.Debug("platform preference not saved", "key", p.key, "error", err)
	}
}

// Forget deletes the stored platform. Only the preference key is removed;
// other keys in the store are kept.
func (p *Platform) Forget(ctx context.Context) {
	if p.store == nil {
		return
	}
	if err := p.store.Delete(ctx, p.key); err != nil {
		p.logger.Debug("platform preference not cleared", "key", p.key, "error", err)
	}
}

// Reset forgets the stored platform and reverts every tagged element.
func (p *Platform) Reset(ctx context.Context, page ports.Page) {
	p.Forget(ctx)
	Revert(page)
}

// Apply tags every element carrying the platform class as this-platform.
// An empty platform is a no-op.
func Apply(page ports.Page, platform string) int {
	if platform == "" {
		return 0
	}
	elements := page.QueryClass(platform)
	for _, el := range elements {
		el.Remove(domain.ClassOtherPlatform)
		el.Add(domain.ClassThisPlatform)
	}
	return len(elements)
}

// Revert turns every this-platform element back into other-platform.
// The element list is a static snapshot, so tags can change while iterating.
func Revert(page ports.Page) int {
	elements := page.QueryClass(domain.ClassThisPlatform)
	for _, el := range elements {
		el.Replace(domain.ClassThisPlatform, domain.ClassOtherPlatform)
	}
	return len(elements)
}
