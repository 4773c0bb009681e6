package graph

import (
	"fmt"
	"sort"

	"github.com/aretw0/walkthrough/pkg/domain"
)

// StepGraph is the validated, read-only mapping of step IDs to steps.
type StepGraph struct {
	start  string
	steps  map[string]domain.Step
	ids    []string
	source string
}

// New builds a StepGraph from in-memory steps, applying the same structural
// checks as Load. It is mostly useful for tests and embedded workflows.
func New(startStep string, steps ...domain.Step) (*StepGraph, error) {
	m := make(map[string]domain.Step, len(steps))
	for _, s := range steps {
		if s.ID == "" {
			return nil, &LoadError{Kind: Malformed, Source: "memory", Err: fmt.Errorf("step missing ID")}
		}
		if _, dup := m[s.ID]; dup {
			return nil, &LoadError{Kind: Malformed, Source: "memory", Err: fmt.Errorf("duplicate step %q", s.ID)}
		}
		m[s.ID] = s
	}
	return build("memory", startStep, m)
}

// MustNew is like New but panics on error. Intended for tests and examples.
func MustNew(startStep string, steps ...domain.Step) *StepGraph {
	g, err := New(startStep, steps...)
	if err != nil {
		panic(err)
	}
	return g
}

func build(source, start string, steps map[string]domain.Step) (*StepGraph, error) {
	malformed := func(format string, args ...any) error {
		return &LoadError{Kind: Malformed, Source: source, Err: fmt.Errorf(format, args...)}
	}

	if start == "" {
		return nil, malformed("workflow.startStep is required")
	}
	if len(steps) == 0 {
		return nil, malformed("workflow.steps is required")
	}
	if _, ok := steps[start]; !ok {
		return nil, malformed("startStep %q is not defined in steps", start)
	}

	ids := make([]string, 0, len(steps))
	for id, s := range steps {
		if err := checkStep(s); err != nil {
			return nil, malformed("step %q: %v", id, err)
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return &StepGraph{
		start:  start,
		steps:  steps,
		ids:    ids,
		source: source,
	}, nil
}

func checkStep(s domain.Step) error {
	labels := make(map[string]bool, len(s.Actions))
	for i, a := range s.Actions {
		if a.Label == "" {
			return fmt.Errorf("action %d: label is required", i)
		}
		if labels[a.Label] {
			return fmt.Errorf("duplicate action label %q", a.Label)
		}
		labels[a.Label] = true
		if a.Type == domain.ActionTypeExternalLink && a.URL == "" {
			return fmt.Errorf("action %q: url is required for %s", a.Label, domain.ActionTypeExternalLink)
		}
	}
	return nil
}

// Get returns the step with the given ID.
// The error wraps domain.ErrStepNotFound for unknown IDs.
func (g *StepGraph) Get(id string) (domain.Step, error) {
	s, ok := g.steps[id]
	if !ok {
		return domain.Step{}, fmt.Errorf("%w: %q", domain.ErrStepNotFound, id)
	}
	return cloneStep(s), nil
}

// Has reports whether id names a step.
func (g *StepGraph) Has(id string) bool {
	_, ok := g.steps[id]
	return ok
}

// StartStep returns the designated start step ID.
func (g *StepGraph) StartStep() string {
	return g.start
}

// IDs returns all step IDs in sorted order.
func (g *StepGraph) IDs() []string {
	return append([]string(nil), g.ids...)
}

// Steps returns all steps, sorted by ID.
func (g *StepGraph) Steps() []domain.Step {
	out := make([]domain.Step, 0, len(g.ids))
	for _, id := range g.ids {
		out = append(out, cloneStep(g.steps[id]))
	}
	return out
}

// Len returns the number of steps.
func (g *StepGraph) Len() int {
	return len(g.ids)
}

// Source names where the graph was loaded from.
func (g *StepGraph) Source() string {
	return g.source
}

func cloneStep(s domain.Step) domain.Step {
	s.Actions = append([]domain.Action(nil), s.Actions...)
	return s
}
