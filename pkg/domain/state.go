package domain

// Phase is the lifecycle stage of the navigation engine.
type Phase string

const (
	PhaseUninitialized Phase = "uninitialized"
	PhaseReady         Phase = "ready"
	PhaseError         Phase = "error"
)

// NavigationState is a snapshot of the engine's mutable state.
type NavigationState struct {
	// CurrentStepID is empty until the first successful render.
	CurrentStepID string `json:"current_step_id"`

	// History is the back stack, oldest first.
	History []string `json:"history"`

	// RespondingToBrowserNav is true while a popstate is being handled.
	RespondingToBrowserNav bool `json:"responding_to_browser_nav"`

	// Platform is empty when no preference is stored.
	Platform string `json:"platform,omitempty"`

	Phase Phase `json:"phase"`

	// Error holds the message of a fatal configuration error.
	Error string `json:"error,omitempty"`
}

// Snapshot returns a deep copy of the state.
func (s NavigationState) Snapshot() NavigationState {
	out := s
	out.History = append([]string(nil), s.History...)
	return out
}
