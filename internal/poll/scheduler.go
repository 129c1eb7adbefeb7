// Package poll re-fetches lists on a fixed interval. Callers only see the
// Scheduler interface, so a push-based source can replace the ticker later.
package poll

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is the refresh interval of a viewed todo list
const DefaultInterval = 1500 * time.Millisecond

// Scheduler runs fn repeatedly until stopped
type Scheduler interface {
	// Start begins calling fn. Starting a running scheduler restarts it.
	Start(ctx context.Context, fn func(context.Context))
	// Stop cancels the schedule and waits for a running fn to return
	Stop()
	Interval() time.Duration
}

// Ticker calls fn every interval on its own goroutine
type Ticker struct {
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewTicker creates a ticker scheduler
func NewTicker(interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Ticker{interval: interval}
}

// Interval returns the tick interval
func (t *Ticker) Interval() time.Duration {
	return t.interval
}

// Start begins ticking. The first call to fn happens after one interval.
func (t *Ticker) Start(ctx context.Context, fn func(context.Context)) {
	t.Stop()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	t.mu.Lock()
	t.cancel = cancel
	t.done = done
	t.mu.Unlock()

	go t.loop(ctx, done, fn)
}

func (t *Ticker) loop(ctx context.Context, done chan struct{}, fn func(context.Context)) {
	defer close(done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fn(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Stop cancels the schedule. It is safe to call on a stopped ticker.
func (t *Ticker) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the ticker is started
func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}
