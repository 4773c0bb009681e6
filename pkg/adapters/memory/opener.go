package memory

import (
	"context"
	"sync"
)

// Opener implements ports.LinkOpener by recording the URLs it was asked to open.
// Hosts that cannot open windows themselves (HTTP, tests) drain it.
type Opener struct {
	mu     sync.Mutex
	opened []string
}

// NewOpener creates an empty recorder.
func NewOpener() *Opener {
	return &Opener{}
}

// Open records url.
func (o *Opener) Open(ctx context.Context, url string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opened = append(o.opened, url)
	return nil
}

// Opened returns every URL recorded so far.
func (o *Opener) Opened() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.opened...)
}

// Drain returns the recorded URLs and forgets them.
func (o *Opener) Drain() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := o.opened
	o.opened = nil
	return out
}
