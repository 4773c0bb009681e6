package runtime

import (
	"fmt"
	"sync"

	"github.com/aretw0/walkthrough/pkg/domain"
	"github.com/felixgeelhaar/statekit"
)

// Lifecycle events.
const (
	EventLoaded = "LOADED"
	EventFailed = "FAILED"
)

type lifecycleContext struct {
	Err string
}

// lifecycle tracks the engine phase: uninitialized until the configuration
// is loaded, then ready or error. Both outcomes are final.
type lifecycle struct {
	mu      sync.Mutex
	interp  *statekit.Interpreter[lifecycleContext]
	lastErr string
}

func newLifecycle() (*lifecycle, error) {
	lc := &lifecycle{}

	machine, err := statekit.NewMachine[lifecycleContext]("walkthrough-engine").
		WithInitial(statekit.StateID(domain.PhaseUninitialized)).
		WithContext(lifecycleContext{}).
		WithAction("recordError", func(_ *lifecycleContext, event statekit.Event) {
			if err, ok := event.Payload.(error); ok {
				lc.lastErr = err.Error()
			}
		}).
		State(statekit.StateID(domain.PhaseUninitialized)).
		On(EventLoaded).Target(statekit.StateID(domain.PhaseReady)).
		On(EventFailed).Target(statekit.StateID(domain.PhaseError)).Done().
		State(statekit.StateID(domain.PhaseReady)).Done().
		State(statekit.StateID(domain.PhaseError)).
		OnEntry("recordError").Done().
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build lifecycle machine: %w", err)
	}

	lc.interp = statekit.NewInterpreter(machine)
	lc.interp.Start()
	return lc, nil
}

func (l *lifecycle) loaded() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.interp.Send(statekit.Event{Type: EventLoaded})
}

func (l *lifecycle) failed(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.interp.Send(statekit.Event{Type: EventFailed, Payload: err})
}

func (l *lifecycle) phase() domain.Phase {
	l.mu.Lock()
	defer l.mu.Unlock()
	return domain.Phase(l.interp.State().Value)
}

func (l *lifecycle) err() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}
