package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/walkthrough"
	"github.com/aretw0/walkthrough/pkg/adapters/memory"
	"github.com/aretw0/walkthrough/pkg/domain"
	"github.com/aretw0/walkthrough/pkg/location"
)

func TestManager_LockLifecycle(t *testing.T) {
	source, err := memory.NewSourceFromSteps("start", domain.Step{ID: "start", Title: "Start", Content: "<p>Hi</p>"})
	if err != nil {
		t.Fatal(err)
	}
	mgr := NewManager(func(ctx context.Context, id, landing string) (*walkthrough.Engine, error) {
		return walkthrough.New(source, walkthrough.WithSleeper(location.NoSleep))
	})
	ctx := context.Background()
	count := 1000

	for i := 0; i < count; i++ {
		sid := fmt.Sprintf("session-%d", i)
		_, _, _ = mgr.LoadOrStart(ctx, sid, "/")
		_ = mgr.WithLock(ctx, sid, func(context.Context, *Session) error { return nil })
		mgr.Delete(ctx, sid)
	}

	if lockCount := len(mgr.locks); lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Delete", lockCount)
	}
	if n := mgr.Len(); n != 0 {
		t.Errorf("expected no sessions, got %d", n)
	}
}

func TestManager_SweepRechecksUnderLock(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var clockMu sync.Mutex
	now := t0
	clock := func() time.Time {
		clockMu.Lock()
		defer clockMu.Unlock()
		return now
	}
	var evicted []string
	mgr := NewManager(nil,
		WithIdleTimeout(time.Minute),
		WithClock(clock),
		WithEvictionListener(func(id string) { evicted = append(evicted, id) }),
	)
	mgr.sessions["busy"] = &Session{ID: "busy", Created: t0, lastSeen: t0}
	ctx := context.Background()

	entered := make(chan struct{})
	proceed := make(chan struct{})
	held := make(chan error, 1)
	go func() {
		held <- mgr.WithLock(ctx, "busy", func(_ context.Context, s *Session) error {
			close(entered)
			<-proceed
			s.touch(clock())
			return nil
		})
	}()
	<-entered

	clockMu.Lock()
	now = t0.Add(75 * time.Second)
	clockMu.Unlock()

	swept := make(chan int, 1)
	go func() { swept <- mgr.Sweep(ctx) }()

	// Sweep has picked the session and is queued on its lock.
	deadline := time.Now().Add(5 * time.Second)
	for {
		mgr.mu.Lock()
		e := mgr.locks["busy"]
		waiting := e != nil && e.refs == 2
		mgr.mu.Unlock()
		if waiting {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("sweep never queued on the session lock")
		}
		time.Sleep(time.Millisecond)
	}
	close(proceed)

	if err := <-held; err != nil {
		t.Fatal(err)
	}
	if n := <-swept; n != 0 {
		t.Errorf("expected no evictions, got %d", n)
	}
	if _, ok := mgr.Get("busy"); !ok {
		t.Error("session touched while sweep waited was evicted")
	}
	if len(evicted) != 0 {
		t.Errorf("unexpected eviction callbacks: %v", evicted)
	}
	if lockCount := len(mgr.locks); lockCount != 0 {
		t.Errorf("%d locks remaining after sweep", lockCount)
	}
}
