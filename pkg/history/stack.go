// Package history implements the explicit back-navigation stack.
//
// The stack is deliberately independent of browser history: it drives the
// on-page Back control (which works even after deep-linking), while the
// browser's own history drives OS-level back/forward gestures.
package history

import (
	"sync"

	"github.com/aretw0/walkthrough/pkg/domain"
)

// Stack is an in-memory LIFO of previously visited step IDs.
// Safe for concurrent use.
type Stack struct {
	mu    sync.Mutex
	items []string
}

// New creates an empty stack.
func New() *Stack {
	return &Stack{}
}

// Push appends stepID to the top of the stack.
func (s *Stack) Push(stepID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, stepID)
}

// Pop removes and returns the top of the stack.
// It returns domain.ErrHistoryEmpty when there is nothing to pop.
func (s *Stack) Pop() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.items)
	if n == 0 {
		return "", domain.ErrHistoryEmpty
	}
	top := s.items[n-1]
	s.items = s.items[:n-1]
	return top, nil
}

// Peek returns the top of the stack without removing it.
func (s *Stack) Peek() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 {
		return "", false
	}
	return s.items[len(s.items)-1], true
}

// Clear empties the stack.
func (s *Stack) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

// Len returns the number of entries.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Snapshot returns a copy of the entries, oldest first.
func (s *Stack) Snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.items...)
}
