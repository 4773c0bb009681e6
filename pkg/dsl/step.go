package dsl

import (
	"errors"

	"github.com/aretw0/walkthrough/pkg/domain"
)

var errContentConflict = errors.New("content and contentFile are mutually exclusive")

// StepBuilder provides a fluent API for configuring a step.
type StepBuilder struct {
	step domain.Step
	err  error
}

// ActionOption configures an action added by Go or Link.
type ActionOption func(*domain.Action)

// StartDisabled renders the action's button disabled until the host enables it.
func StartDisabled() ActionOption {
	return func(a *domain.Action) {
		a.StartDisabled = true
	}
}

// Title sets the step heading. It defaults to the step id.
func (s *StepBuilder) Title(title string) *StepBuilder {
	s.step.Title = title
	return s
}

// Content sets inline markup.
func (s *StepBuilder) Content(markup string) *StepBuilder {
	if s.step.ContentFile != "" {
		s.err = errContentConflict
	}
	s.step.Content = markup
	return s
}

// ContentFile makes the step body a fragment fetched at render time.
func (s *StepBuilder) ContentFile(ref string) *StepBuilder {
	if s.step.Content != "" {
		s.err = errContentConflict
	}
	s.step.ContentFile = ref
	return s
}

// Go adds an action that moves to target.
func (s *StepBuilder) Go(label, target string, opts ...ActionOption) *StepBuilder {
	return s.add(domain.Action{Label: label, NextStep: target}, opts)
}

// Link adds an action that opens url in a new tab.
func (s *StepBuilder) Link(label, url string, opts ...ActionOption) *StepBuilder {
	return s.add(domain.Action{Label: label, Type: domain.ActionTypeExternalLink, URL: url}, opts)
}

// LinkAndGo adds an action that opens url and then moves to target.
func (s *StepBuilder) LinkAndGo(label, url, target string, opts ...ActionOption) *StepBuilder {
	return s.add(domain.Action{Label: label, Type: domain.ActionTypeExternalLink, URL: url, NextStep: target}, opts)
}

func (s *StepBuilder) add(a domain.Action, opts []ActionOption) *StepBuilder {
	for _, opt := range opts {
		opt(&a)
	}
	s.step.Actions = append(s.step.Actions, a)
	return s
}

// Build returns the underlying domain.Step.
func (s *StepBuilder) Build() domain.Step {
	step := s.step
	step.Actions = append([]domain.Action(nil), s.step.Actions...)
	return step
}
