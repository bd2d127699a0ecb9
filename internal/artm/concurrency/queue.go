package concurrency

// BatchQueue is a simple blocking FIFO of work items (batch filenames or
// ids) shared by a worker Pool, implementing Dispatcher. It wraps a
// buffered channel rather than a hand-rolled condition variable, matching
// the teacher's preference for channel-based handoff over lower-level
// primitives where a channel suffices. The training engine's own
// passes dispatch through a BatchManager instead, since its Done/Idle
// bookkeeping is needed there; BatchQueue remains the plain FIFO
// Dispatcher for callers that only need ordered hand-out, with no
// per-item completion tracking.
type BatchQueue struct {
	ch chan string
}

// NewBatchQueue returns a queue pre-loaded with items. The queue's
// capacity is len(items)+1, leaving room for one Enqueue beyond the
// initial load before a consumer has to dequeue.
func NewBatchQueue(items []string) *BatchQueue {
	q := &BatchQueue{ch: make(chan string, len(items)+1)}
	for _, it := range items {
		q.ch <- it
	}
	return q
}

// Enqueue adds an item past the initial load, before Close.
func (q *BatchQueue) Enqueue(item string) { q.ch <- item }

// Close signals that no further items will be enqueued; workers drain
// remaining items and then see Dequeue return false.
func (q *BatchQueue) Close() { close(q.ch) }

// Dequeue blocks until an item is available or the queue is closed and
// drained, in which case ok is false.
func (q *BatchQueue) Dequeue() (item string, ok bool) {
	item, ok = <-q.ch
	return
}
