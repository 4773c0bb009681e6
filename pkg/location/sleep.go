package location

import (
	"context"
	"time"
)

// Sleeper pauses for d or until ctx is done. It replaces the browser's
// setTimeout pacing so hosts and tests can speed it up or skip it.
type Sleeper func(ctx context.Context, d time.Duration) error

// TimerSleeper waits on a real timer.
func TimerSleeper(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// NoSleep returns immediately. Intended for tests and non-interactive hosts.
func NoSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}
