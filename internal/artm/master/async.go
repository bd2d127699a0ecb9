package master

import (
	"fmt"
	"time"

	"github.com/artm-core/artm/internal/artm/artmerr"
	"github.com/artm-core/artm/internal/artm/batch"
	"github.com/artm-core/artm/internal/artm/concurrency"
)

// AsyncProcessBatches runs one inner-E-step barrier over batches against
// the named source Φ, accumulating the result under nwtTarget (in the nwt
// namespace, raw/unnormalized — a later MergeModel+NormalizeModel pair
// turns it into a usable Φ), and returns an operation id AwaitOperation
// polls. The work runs in its own goroutine; the call itself never blocks.
func (m *Master) AsyncProcessBatches(batches []*batch.Batch, pwtSource, nwtTarget string) (string, error) {
	m.mu.RLock()
	phi, ok := m.phi[pwtSource]
	m.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("master: async_process_batches: source %q: %w", pwtSource, artmerr.NotFound)
	}

	id := newOperationID()
	awaiter := concurrency.NewAwaiter[OperationResult]()

	m.opsMu.Lock()
	m.ops[id] = awaiter
	m.opsMu.Unlock()

	go func() {
		group, err := m.processGroup(phi, batches, true)
		if err != nil {
			awaiter.Complete(OperationResult{}, err)
			return
		}
		m.mu.Lock()
		m.nwt[nwtTarget] = group.n
		m.mu.Unlock()
		m.addItemsProcessed(int64(len(group.results)))
		awaiter.Complete(OperationResult{Matrix: group.n}, nil)
	}()

	return id, nil
}

// AwaitOperation blocks up to timeout for the operation id to complete,
// returning done=false ("still working") on timeout without canceling the
// underlying work — matching the non-cancelling contract every suspension
// point in this package follows. A zero timeout waits indefinitely.
func (m *Master) AwaitOperation(id string, timeout time.Duration) (done bool, err error) {
	m.opsMu.Lock()
	awaiter, ok := m.ops[id]
	m.opsMu.Unlock()
	if !ok {
		return false, fmt.Errorf("master: await_operation: %q: %w", id, artmerr.NotFound)
	}

	_, err, done = awaiter.Await(timeout)
	return done, err
}
