package domain

// ActionTypeExternalLink opens Action.URL in a new browsing context.
const ActionTypeExternalLink = "external_link"

// Action is a user-triggered transition from the current step.
type Action struct {
	// Label is both the display text and the DOM id of the rendered button.
	Label    string `json:"label" yaml:"label"`
	NextStep string `json:"nextStep,omitempty" yaml:"nextStep,omitempty"`
	Type     string `json:"type,omitempty" yaml:"type,omitempty"`
	URL      string `json:"url,omitempty" yaml:"url,omitempty"`

	StartDisabled bool `json:"startDisabled,omitempty" yaml:"startDisabled,omitempty"`
}

// IsExternalLink reports whether the action opens an external resource.
func (a Action) IsExternalLink() bool {
	return a.Type == ActionTypeExternalLink && a.URL != ""
}

// ButtonKind distinguishes the Back control from step actions.
type ButtonKind string

const (
	ButtonBack   ButtonKind = "back"
	ButtonAction ButtonKind = "action"
)

// Button is a rendered control in the action area.
type Button struct {
	ID       string     `json:"id"`
	Label    string     `json:"label"`
	Kind     ButtonKind `json:"kind"`
	Disabled bool       `json:"disabled"`
	Classes  []string   `json:"classes"`

	// Action is nil for the Back control.
	Action *Action `json:"action,omitempty"`
}

// BackButton builds the Back control.
func BackButton() Button {
	return Button{
		ID:      BackButtonID,
		Label:   BackButtonLabel,
		Kind:    ButtonBack,
		Classes: []string{ClassActionButton, ClassBackButton},
	}
}

// ActionButton builds the control for a step action.
func ActionButton(a Action) Button {
	act := a
	b := Button{
		ID:       a.Label,
		Label:    a.Label,
		Kind:     ButtonAction,
		Disabled: a.StartDisabled,
		Action:   &act,
	}
	if a.StartDisabled {
		b.Classes = []string{ClassActionButton, ClassActionDisabled}
	} else {
		b.Classes = []string{ClassActionButton, ClassActionEnabled}
	}
	return b
}
