package concurrency

import (
	"sync"
	"time"
)

// BatchManager tracks which batches of the current pass have been
// dispatched and which have completed. It is the bookkeeping behind
// FitOnline checkpointing and WaitIdle barriers.
type BatchManager struct {
	mu        sync.Mutex
	cond      *sync.Cond
	ids       []string
	next      int
	inflight  map[string]struct{}
	completed map[string]struct{}
}

// NewBatchManager seeds a manager with the ordered batch ids of one pass.
func NewBatchManager(ids []string) *BatchManager {
	bm := &BatchManager{
		ids:       ids,
		inflight:  make(map[string]struct{}),
		completed: make(map[string]struct{}, len(ids)),
	}
	bm.cond = sync.NewCond(&bm.mu)
	return bm
}

// Next returns the next undispatched batch id, or ("", false) once every
// batch in the pass has been handed out.
func (bm *BatchManager) Next() (string, bool) {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.next >= len(bm.ids) {
		return "", false
	}
	id := bm.ids[bm.next]
	bm.next++
	bm.inflight[id] = struct{}{}
	return id, true
}

// Dequeue implements Dispatcher, handing Pool.Run the same ordered ids
// Next would, so a pool can dispatch from a BatchManager directly and
// have its per-batch completion tracked without a separate BatchQueue.
func (bm *BatchManager) Dequeue() (string, bool) {
	return bm.Next()
}

// Done marks id as completed, waking any WaitIdle waiters.
func (bm *BatchManager) Done(id string) {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	delete(bm.inflight, id)
	bm.completed[id] = struct{}{}
	bm.cond.Broadcast()
}

// Completed reports whether id has finished.
func (bm *BatchManager) Completed(id string) bool {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	_, ok := bm.completed[id]
	return ok
}

// CompletedCount returns how many batches have finished so far.
func (bm *BatchManager) CompletedCount() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return len(bm.completed)
}

// Idle reports whether every batch handed out by Next has completed and
// no further batches remain to dispatch.
func (bm *BatchManager) Idle() bool {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.next >= len(bm.ids) && len(bm.inflight) == 0
}

// WaitIdle blocks until Idle() or timeout elapses, returning true if idle
// was reached and false ("still working") on timeout. A zero timeout waits
// indefinitely.
func (bm *BatchManager) WaitIdle(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		bm.mu.Lock()
		for !(bm.next >= len(bm.ids) && len(bm.inflight) == 0) {
			bm.cond.Wait()
		}
		bm.mu.Unlock()
		close(done)
	}()

	if timeout <= 0 {
		<-done
		return true
	}
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
