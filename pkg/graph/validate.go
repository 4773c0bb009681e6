package graph

import (
	"fmt"

	"github.com/aretw0/walkthrough/pkg/domain"
)

// Severity grades a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a soft problem found in a loaded graph.
type Issue struct {
	Severity Severity `json:"severity"`
	StepID   string   `json:"step_id"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s: %s", i.Severity, i.StepID, i.Message)
}

// Validate crawls the graph from the start step and reports dead links
// (nextStep targets that do not exist), steps unreachable from the start,
// empty titles, and action labels shadowed by the Back control.
// Neither prevents navigation: dead links surface as StepNotFound when followed.
func Validate(g *StepGraph) []Issue {
	var issues []Issue

	visited := make(map[string]bool)
	queue := []string{g.start}

	for len(queue) > 0 {
		currentID := queue[0]
		queue = queue[1:]

		if visited[currentID] {
			continue
		}
		visited[currentID] = true

		step, ok := g.steps[currentID]
		if !ok {
			continue
		}
		for _, next := range step.NextSteps() {
			if !visited[next] && g.Has(next) {
				queue = append(queue, next)
			}
		}
	}

	for _, id := range g.ids {
		step := g.steps[id]
		if step.Title == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				StepID:   id,
				Message:  "step title is empty",
			})
		}
		for _, a := range step.Actions {
			if a.Label == domain.BackButtonID {
				issues = append(issues, Issue{
					Severity: SeverityError,
					StepID:   id,
					Message:  fmt.Sprintf("action label %q is shadowed by the Back control", a.Label),
				})
			}
			if a.NextStep != "" && !g.Has(a.NextStep) {
				issues = append(issues, Issue{
					Severity: SeverityError,
					StepID:   id,
					Message:  fmt.Sprintf("action %q points to missing step %q", a.Label, a.NextStep),
				})
			}
		}
		if !visited[id] {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				StepID:   id,
				Message:  "step is unreachable from the start step",
			})
		}
	}

	return issues
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}
