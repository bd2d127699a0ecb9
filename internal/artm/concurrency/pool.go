package concurrency

import (
	"runtime"
	"sync"
)

// Dispatcher hands out work items one at a time, returning ok=false once
// exhausted. BatchQueue and BatchManager both implement it; Pool.Run is
// agnostic to which one is backing the pass.
type Dispatcher interface {
	Dequeue() (string, bool)
}

// Pool runs a fixed number of worker goroutines that pull from a
// Dispatcher and invoke a handler per item, modeled on the teacher's
// scheduler.Scheduler worker loop (internal/infrastructure/scheduler),
// generalized from recurring cron tasks to a run-to-drain batch pool.
type Pool struct {
	numWorkers int
	wg         sync.WaitGroup
}

// NumProcessors resolves the configured num_processors: a value <= 0
// means "auto", resolved to runtime.NumCPU().
func NumProcessors(configured int) int {
	if configured > 0 {
		return configured
	}
	n := runtime.NumCPU()
	if n < 1 {
		n = 1
	}
	return n
}

// NewPool returns a pool sized by NumProcessors(numProcessors).
func NewPool(numProcessors int) *Pool {
	return &Pool{numWorkers: NumProcessors(numProcessors)}
}

// Run dequeues from q until it drains, invoking handle(item) in each of
// numWorkers goroutines, then blocks until all workers have returned.
func (p *Pool) Run(q Dispatcher, handle func(item string)) {
	p.wg.Add(p.numWorkers)
	for i := 0; i < p.numWorkers; i++ {
		go func() {
			defer p.wg.Done()
			for {
				item, ok := q.Dequeue()
				if !ok {
					return
				}
				handle(item)
			}
		}()
	}
	p.wg.Wait()
}

// NumWorkers returns the resolved worker count.
func (p *Pool) NumWorkers() int { return p.numWorkers }
