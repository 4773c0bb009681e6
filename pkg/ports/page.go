package ports

import "github.com/aretw0/walkthrough/pkg/domain"

// ClassList mirrors the DOM classList API of a single element.
type ClassList interface {
	Contains(class string) bool
	Add(class string)
	Remove(class string)
	// Replace swaps old for new and reports whether old was present.
	Replace(old, new string) bool
}

// Page is the DOM surface the core writes into. It is owned by the host
// (browser shell, HTTP template, terminal) and consumed by the render pipeline.
type Page interface {
	// SetLoading toggles the loading indicator.
	SetLoading(visible bool)
	// ShowContent reveals the content container.
	ShowContent()
	SetTitle(title string)
	// SetBody replaces the step body with the given markup.
	SetBody(markup string) error

	// QueryClass returns a static snapshot of the elements carrying class,
	// in document order (like querySelectorAll, not a live collection).
	QueryClass(class string) []ClassList

	// SetActions replaces the action area with the given controls.
	SetActions(buttons []domain.Button)
	ClearActions()
	// EnableAction enables a rendered control and reports whether it exists.
	EnableAction(id string) bool

	ScrollToTop()
	// ScrollIntoView scrolls to the element with the given id, if present.
	ScrollIntoView(id string) bool
}
