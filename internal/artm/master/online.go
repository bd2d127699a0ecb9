package master

import (
	"fmt"

	"github.com/artm-core/artm/internal/artm/artmerr"
	"github.com/artm-core/artm/internal/artm/batch"
	"github.com/artm-core/artm/internal/artm/concurrency"
	"github.com/artm-core/artm/internal/artm/phimatrix"
	"github.com/artm-core/artm/internal/artm/regularize"
)

// OperationResult is the value an async operation's Awaiter carries once
// complete: the raw (unnormalized) accumulator it produced, for
// AsyncProcessBatches, or nothing meaningful for a FitOnline run awaited
// via its own Awaiter (Phi is the Φ published to the master, not
// returned here — callers re-read it through GetTopicModel).
type OperationResult struct {
	Matrix phimatrix.Matrix
}

// FitOnline splits batches into checkpoint intervals at the cumulative
// counts in updateAfter, processing each interval as its own barrier and
// folding its N into Φ as
// Φ_new = decayWeight[k]*Φ_old + applyWeight[k]*normalize(N_interval).
// Any batches beyond the last checkpoint boundary form one final,
// implicit checkpoint reusing the last entry of applyWeight/decayWeight,
// so every input batch is always folded in by the time FitOnline returns
// (or, with async=true, by the time the returned Awaiter completes).
func (m *Master) FitOnline(batches []*batch.Batch, updateAfter []int, applyWeight, decayWeight []float64, async bool) (*concurrency.Awaiter[OperationResult], error) {
	if len(updateAfter) != len(applyWeight) || len(updateAfter) != len(decayWeight) {
		return nil, fmt.Errorf("master: fit_online: update_after/apply_weight/decay_weight length mismatch: %w", artmerr.InvalidArgument)
	}

	run := func() (OperationResult, error) {
		m.mu.RLock()
		phi, ok := m.phi[m.cfg.PwtName]
		m.mu.RUnlock()
		if !ok {
			return OperationResult{}, fmt.Errorf("master: fit_online: no model published: %w", artmerr.InvalidOperation)
		}

		start := 0
		for k, boundary := range updateAfter {
			if boundary <= start {
				continue
			}
			end := boundary
			if end > len(batches) {
				end = len(batches)
			}
			var err error
			phi, err = m.foldCheckpoint(phi, batches[start:end], applyWeight[k], decayWeight[k])
			if err != nil {
				return OperationResult{}, err
			}
			start = end
		}
		if start < len(batches) {
			apply, decay := 1.0, 0.0
			if len(applyWeight) > 0 {
				apply, decay = applyWeight[len(applyWeight)-1], decayWeight[len(decayWeight)-1]
			}
			var err error
			phi, err = m.foldCheckpoint(phi, batches[start:], apply, decay)
			if err != nil {
				return OperationResult{}, err
			}
		}

		return OperationResult{Matrix: phi}, nil
	}

	if !async {
		_, err := run()
		return nil, err
	}

	awaiter := concurrency.NewAwaiter[OperationResult]()
	go func() {
		res, err := run()
		awaiter.Complete(res, err)
	}()
	return awaiter, nil
}

// foldCheckpoint processes one checkpoint interval's batches against ref,
// then commits Φ_new = decay*ref + apply*normalize(N_interval), publishing
// the result under cfg.PwtName.
func (m *Master) foldCheckpoint(ref phimatrix.Matrix, batches []*batch.Batch, apply, decay float64) (phimatrix.Matrix, error) {
	m.scores.ClearScoreCache()

	group, err := m.processGroup(ref, batches, true)
	if err != nil {
		return nil, err
	}

	r := phimatrix.NewDense(tokensOf(ref), classesOf(ref), ref.TopicNames())
	for _, reg := range m.phiRegularizers {
		reg.RegularizePhi(group.n, ref, r)
	}
	normalized := phimatrix.NewDense(tokensOf(ref), classesOf(ref), ref.TopicNames())
	regularize.Normalize(group.n, r, normalized)

	next := phimatrix.NewDense(tokensOf(ref), classesOf(ref), ref.TopicNames())
	for i := 0; i < ref.TokenSize(); i++ {
		for t := 0; t < ref.TopicSize(); t++ {
			next.Set(i, t, decay*ref.Get(i, t)+apply*normalized.Get(i, t))
		}
	}

	m.mu.Lock()
	m.phi[m.cfg.PwtName] = next
	m.rebuildIndexLocked()
	m.mu.Unlock()

	m.addItemsProcessed(int64(len(group.results)))
	m.scores.FinalizeAll(next)
	m.logger.Info("fit_online checkpoint committed", "apply_weight", apply, "decay_weight", decay, "items", len(group.results))

	return next, nil
}
