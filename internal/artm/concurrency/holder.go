// Package concurrency provides the synchronization primitives the master
// orchestrator and processor pool share: a snapshot-publish holder, a
// blocking batch queue, a worker pool, per-pass batch accounting, and a
// one-shot awaitable for async operations.
package concurrency

import "sync/atomic"

// ThreadSafeHolder publishes snapshots of T with store-and-publish
// semantics: readers calling Get always observe either the old or the new
// value in full, never a partially constructed one.
type ThreadSafeHolder[T any] struct {
	v atomic.Pointer[T]
}

// NewThreadSafeHolder returns a holder initialized to initial.
func NewThreadSafeHolder[T any](initial T) *ThreadSafeHolder[T] {
	h := &ThreadSafeHolder[T]{}
	h.v.Store(&initial)
	return h
}

// Get returns the most recently published snapshot.
func (h *ThreadSafeHolder[T]) Get() T {
	return *h.v.Load()
}

// Set publishes a new snapshot, visible to subsequent Get calls.
func (h *ThreadSafeHolder[T]) Set(val T) {
	h.v.Store(&val)
}
