package walkthrough

import "github.com/aretw0/walkthrough/pkg/domain"

// View is a host-friendly snapshot of what the user currently sees.
type View struct {
	StepID string `json:"step_id"`
	Title  string `json:"title"`
	// Body is the rendered step body markup.
	Body string `json:"body"`
	// Text is Body as plain markdown, without other-platform content.
	Text    string          `json:"text"`
	Buttons []domain.Button `json:"buttons"`
	URL     string          `json:"url"`
	// Error is true while an in-place or fatal error is displayed.
	Error bool                   `json:"error"`
	State domain.NavigationState `json:"state"`
}

// View captures the current page. With the built-in document the page
// content is read back from the DOM. With a custom page only the step
// definition is available.
func (e *Engine) View() View {
	v := View{
		State: e.runtime.State(),
		URL:   e.runtime.CurrentURL(),
		Error: e.runtime.ShowingError(),
	}
	v.StepID = v.State.CurrentStepID

	if e.doc != nil {
		v.Title = e.doc.Title()
		v.Body = e.doc.BodyHTML()
		v.Text = e.doc.Markdown()
		v.Buttons = e.doc.Buttons()
		return v
	}

	if step, ok := e.runtime.CurrentStep(); ok && !v.Error {
		v.Title = step.Title
		v.Body = step.Content
	}
	v.Buttons = e.runtime.Buttons()
	return v
}
