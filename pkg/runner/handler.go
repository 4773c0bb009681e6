package runner

import (
	"context"

	"github.com/aretw0/walkthrough"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI) and JSON (structured) modes.
type IOHandler interface {
	// Output presents the current page.
	Output(ctx context.Context, view walkthrough.View) error

	// Input reads one command line from the user.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message (command errors, help) that is
	// not part of the step content.
	SystemOutput(ctx context.Context, msg string) error
}
