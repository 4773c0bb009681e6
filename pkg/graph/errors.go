package graph

import (
	"errors"
	"fmt"

	"github.com/aretw0/walkthrough/pkg/domain"
)

// LoadErrorKind classifies configuration failures.
type LoadErrorKind string

const (
	// Unreachable means the source could not be fetched.
	Unreachable LoadErrorKind = "unreachable"
	// Malformed means the document was fetched but is not a valid workflow.
	Malformed LoadErrorKind = "malformed"
)

// LoadError is returned by Load. It matches domain.ErrConfigLoad with errors.Is.
type LoadError struct {
	Kind   LoadErrorKind
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load workflow from %s (%s): %v", e.Source, e.Kind, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is reports domain.ErrConfigLoad for every LoadError.
func (e *LoadError) Is(target error) bool {
	return target == domain.ErrConfigLoad
}

// IsMalformed reports whether err is a Malformed LoadError.
func IsMalformed(err error) bool {
	var le *LoadError
	return errors.As(err, &le) && le.Kind == Malformed
}

// IsUnreachable reports whether err is an Unreachable LoadError.
func IsUnreachable(err error) bool {
	var le *LoadError
	return errors.As(err, &le) && le.Kind == Unreachable
}
