package dsl

import (
	"fmt"

	"github.com/aretw0/walkthrough/pkg/adapters/memory"
	"github.com/aretw0/walkthrough/pkg/domain"
)

// Builder manages the workflow construction.
type Builder struct {
	start string
	order []string
	steps map[string]*StepBuilder
}

// New creates a new workflow builder. The first step added is the start
// step unless Start says otherwise.
func New() *Builder {
	return &Builder{
		steps: make(map[string]*StepBuilder),
	}
}

// Start sets the start step.
func (b *Builder) Start(id string) *Builder {
	b.start = id
	return b
}

// Step creates a step in the workflow.
// If the step already exists, it returns the existing builder.
func (b *Builder) Step(id string) *StepBuilder {
	if sb, ok := b.steps[id]; ok {
		return sb
	}
	sb := &StepBuilder{step: domain.Step{ID: id, Title: id}}
	b.steps[id] = sb
	b.order = append(b.order, id)
	if b.start == "" {
		b.start = id
	}
	return sb
}

// Steps returns the built steps in insertion order.
func (b *Builder) Steps() []domain.Step {
	steps := make([]domain.Step, 0, len(b.order))
	for _, id := range b.order {
		steps = append(steps, b.steps[id].Build())
	}
	return steps
}

// Build compiles the workflow into a memory.Source. It fails when a step
// has both inline content and a content file, like a malformed document.
func (b *Builder) Build() (*memory.Source, error) {
	if b.start == "" {
		return nil, fmt.Errorf("workflow has no steps")
	}
	for _, id := range b.order {
		if err := b.steps[id].err; err != nil {
			return nil, fmt.Errorf("step %q: %w", id, err)
		}
	}
	source, err := memory.NewSourceFromSteps(b.start, b.Steps()...)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory source: %w", err)
	}
	return source, nil
}
