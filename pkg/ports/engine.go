package ports

import (
	"context"

	"github.com/aretw0/walkthrough/pkg/domain"
)

// Navigator is the surface hosts (HTTP, MCP, TUI) use to drive a wizard session.
type Navigator interface {
	// GoTo navigates to stepID and records a browser history entry.
	GoTo(ctx context.Context, stepID string) error

	// PopState handles a browser back/forward move to stepID without pushing history.
	PopState(ctx context.Context, stepID string) error

	// GoBack returns to the previous step of the back stack, if any.
	GoBack(ctx context.Context) error

	// Restart clears the back stack and returns to the start step.
	Restart(ctx context.Context) error

	// Activate dispatches a rendered control (an action label or the Back control).
	Activate(ctx context.Context, buttonID string) error

	SetPlatform(ctx context.Context, platform string) error
	ResetPlatform(ctx context.Context) error

	// State returns a snapshot of the navigation state.
	State() domain.NavigationState
}
