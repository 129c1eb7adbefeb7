package poll

import (
	"context"
	"sync"

	"github.com/existflow/toedo/internal/logger"
	"github.com/existflow/toedo/internal/notify"
)

// FetchFunc loads the full list
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// Refresher keeps a list fresh through a Scheduler. Each successful fetch
// replaces the list wholesale; a failed fetch keeps the last good list.
// Only the first failure after Start produces a notice.
type Refresher[T any] struct {
	fetch    FetchFunc[T]
	sched    Scheduler
	notifier notify.Notifier
	failure  notify.Notice

	mu       sync.Mutex
	items    []T
	loaded   bool
	notified bool
	lastErr  error
	onUpdate func([]T)
}

// NewRefresher creates a refresher. failure is the notice shown on the first
// failed fetch of a mount.
func NewRefresher[T any](fetch FetchFunc[T], sched Scheduler, n notify.Notifier, failure notify.Notice) *Refresher[T] {
	if n == nil {
		n = notify.Discard
	}
	return &Refresher[T]{
		fetch:    fetch,
		sched:    sched,
		notifier: n,
		failure:  failure,
	}
}

// OnUpdate registers a callback run after every successful fetch
func (r *Refresher[T]) OnUpdate(fn func([]T)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onUpdate = fn
}

// Start performs an immediate fetch and then schedules the rest. It begins a
// new mount: the failure notice may be shown again.
func (r *Refresher[T]) Start(ctx context.Context) {
	r.mu.Lock()
	r.notified = false
	r.mu.Unlock()

	r.Refresh(ctx)
	r.sched.Start(ctx, func(ctx context.Context) { r.Refresh(ctx) })
}

// Stop cancels the schedule. The last list stays readable.
func (r *Refresher[T]) Stop() {
	r.sched.Stop()
}

// Refresh fetches once
func (r *Refresher[T]) Refresh(ctx context.Context) {
	items, err := r.fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		r.mu.Lock()
		r.lastErr = err
		first := !r.notified
		r.notified = true
		r.mu.Unlock()

		if first {
			r.notifier.Notify(r.failure)
			logger.Warn("List refresh failed", logger.F("error", err))
		} else {
			logger.Debug("List refresh failed", logger.F("error", err))
		}
		return
	}

	r.mu.Lock()
	r.items = items
	r.loaded = true
	r.lastErr = nil
	cb := r.onUpdate
	r.mu.Unlock()

	if cb != nil {
		cb(items)
	}
}

// Items returns the last good list
func (r *Refresher[T]) Items() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items
}

// Loaded reports whether at least one fetch succeeded
func (r *Refresher[T]) Loaded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loaded
}

// Err returns the error of the latest fetch, nil after a success
func (r *Refresher[T]) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// Set replaces the list locally, e.g. after an optimistic mutation. The next
// successful poll overwrites it.
func (r *Refresher[T]) Set(items []T) {
	r.mu.Lock()
	r.items = items
	r.mu.Unlock()
}
