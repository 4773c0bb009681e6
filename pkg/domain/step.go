package domain

// Step represents one page of the guided workflow.
// Exactly one of Content or ContentFile is set on a loaded step.
type Step struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`

	// Content holds inline markup rendered into the step body.
	Content string `json:"content,omitempty" yaml:"content,omitempty"`

	// ContentFile references an external fragment fetched at render time.
	ContentFile string `json:"contentFile,omitempty" yaml:"contentFile,omitempty"`

	Actions []Action `json:"actions" yaml:"actions"`
}

// HasFragment reports whether the step body must be fetched.
func (s Step) HasFragment() bool {
	return s.ContentFile != ""
}

// FindAction returns the action with the given label.
func (s Step) FindAction(label string) (Action, bool) {
	for _, a := range s.Actions {
		if a.Label == label {
			return a, true
		}
	}
	return Action{}, false
}

// NextSteps lists the distinct step IDs referenced by the step's actions, in order.
func (s Step) NextSteps() []string {
	seen := make(map[string]bool)
	var out []string
	for _, a := range s.Actions {
		if a.NextStep == "" || seen[a.NextStep] {
			continue
		}
		seen[a.NextStep] = true
		out = append(out, a.NextStep)
	}
	return out
}
