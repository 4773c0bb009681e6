package runtime

import (
	"fmt"

	"github.com/aretw0/walkthrough/pkg/domain"
)

// StepNotFoundError is returned by GoTo for ids that are not in the graph.
// The current step is left unchanged.
type StepNotFoundError struct {
	StepID string
}

func (e *StepNotFoundError) Error() string {
	return fmt.Sprintf("step %q not found", e.StepID)
}

func (e *StepNotFoundError) Unwrap() error {
	return domain.ErrStepNotFound
}

// notFoundMessage is the in-page text shown for unknown steps.
func notFoundMessage(stepID string) string {
	return fmt.Sprintf("Step %q not found in workflow configuration.", stepID)
}

// fatalMessage is the in-page text shown when the configuration cannot load.
func fatalMessage(source string) string {
	return fmt.Sprintf("Failed to load workflow configuration. Make sure %s is available.", source)
}
