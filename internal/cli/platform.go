package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/walkthrough/pkg/domain"
	"github.com/aretw0/walkthrough/pkg/ports"
	"github.com/aretw0/walkthrough/pkg/preference"
	"github.com/charmbracelet/huh"
)

// GetPlatform returns the stored platform, or "" when none is stored.
func GetPlatform(ctx context.Context, store ports.PreferenceStore) (string, error) {
	p, err := store.Get(ctx, preference.DefaultKey)
	if errors.Is(err, domain.ErrPreferenceNotFound) {
		return "", nil
	}
	return p, err
}

// SetPlatform stores platform, normalized. An empty value resets it.
func SetPlatform(ctx context.Context, store ports.PreferenceStore, platform string) error {
	platform = preference.Normalize(platform)
	if platform == "" {
		return store.Delete(ctx, preference.DefaultKey)
	}
	return store.Set(ctx, preference.DefaultKey, platform)
}

// PickPlatform asks for a platform with a huh select, preselecting current
// or, when nothing is stored, the platform detected from the host OS.
func PickPlatform(current, detected string) (string, error) {
	choice := current
	if choice == "" {
		choice = detected
	}

	options := make([]huh.Option[string], 0, len(domain.Platforms))
	for _, p := range domain.Platforms {
		label := preference.DisplayName(p)
		if p == detected {
			label += " (detected)"
		}
		options = append(options, huh.NewOption(label, p))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which platform are you on?").
				Description("Instructions for other platforms are hidden.").
				Options(options...).
				Value(&choice),
		),
	).WithTheme(huh.ThemeDracula())
	if !IsTerminal() {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return "", fmt.Errorf("platform selection: %w", err)
	}
	return choice, nil
}
