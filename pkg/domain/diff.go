package domain

// StateDiff represents the changes between two navigation snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	CurrentStepID *string `json:"current_step_id,omitempty"`
	Phase         *Phase  `json:"phase,omitempty"`
	Platform      *string `json:"platform,omitempty"`

	// History is sent whole whenever it changed: the back stack shrinks as
	// often as it grows, so append-only deltas do not fit.
	History []string `json:"history,omitempty"`

	// HistoryCleared is set when the stack went from non-empty to empty.
	HistoryCleared bool `json:"history_cleared,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, the diff describes the entire newState (initial load).
// It returns nil when nothing changed.
func Diff(oldState, newState *NavigationState) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{}

	if oldState == nil || oldState.CurrentStepID != newState.CurrentStepID {
		id := newState.CurrentStepID
		diff.CurrentStepID = &id
	}
	if oldState == nil || oldState.Phase != newState.Phase {
		phase := newState.Phase
		diff.Phase = &phase
	}
	if oldState == nil || oldState.Platform != newState.Platform {
		platform := newState.Platform
		diff.Platform = &platform
	}

	if oldState == nil || !sameHistory(oldState.History, newState.History) {
		if len(newState.History) == 0 {
			diff.HistoryCleared = oldState != nil
		} else {
			diff.History = append([]string(nil), newState.History...)
		}
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func sameHistory(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.CurrentStepID == nil &&
		d.Phase == nil &&
		d.Platform == nil &&
		len(d.History) == 0 &&
		!d.HistoryCleared
}
