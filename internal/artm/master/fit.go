package master

import (
	"fmt"
	"sync"

	"github.com/artm-core/artm/internal/artm/artmerr"
	"github.com/artm-core/artm/internal/artm/batch"
	"github.com/artm-core/artm/internal/artm/concurrency"
	"github.com/artm-core/artm/internal/artm/phimatrix"
	"github.com/artm-core/artm/internal/artm/processor"
	"github.com/artm-core/artm/internal/artm/regularize"
	"github.com/artm-core/artm/internal/artm/score"
	"github.com/artm-core/artm/internal/artm/theta"
)

// processorConfig derives the per-pass processor.Config from the master's
// config and registered Θ regularizers.
func (m *Master) processorConfig() processor.Config {
	return processor.Config{
		NumDocumentPasses: m.cfg.NumDocumentPasses,
		ReuseTheta:        m.cfg.ReuseTheta,
		ModalityWeight:    m.cfg.ModalityWeight,
		TransactionWeight: m.cfg.TransactionWeight,
		ThetaRegularizers: m.thetaRegularizers,
		OptForAVX:         m.cfg.OptForAVX,
	}
}

// runGroupResult is what processGroup hands back to its caller: the
// reduced N shard (nil when accumulateN is false) and the per-item
// results gathered for scoring/Transform.
type runGroupResult struct {
	n       phimatrix.Matrix
	results []processor.Result
}

// processGroup runs one inner-E-step barrier over batches against phi:
// num_processors workers each own a private N shard drawn from a
// pre-filled channel (so concurrent Increase calls never race on one
// matrix), reduced into a single matrix once every worker has drained the
// pass's BatchManager. accumulateN controls whether occurrences are
// folded into N (false for Transform, which only wants Θ). The
// BatchManager backing this pass is the same in-flight/completed
// bookkeeping FitOnline's checkpoint folding relies on, since
// foldCheckpoint drives one interval's batches through this function.
func (m *Master) processGroup(phi phimatrix.Matrix, batches []*batch.Batch, accumulateN bool) (runGroupResult, error) {
	cfg := m.processorConfig()
	numWorkers := concurrency.NumProcessors(m.cfg.NumProcessors)

	byID := make(map[string]*batch.Batch, len(batches))
	ids := make([]string, len(batches))
	for i, b := range batches {
		byID[b.ID] = b
		ids[i] = b.ID
	}

	shards := make(chan phimatrix.Matrix, numWorkers)
	if accumulateN {
		for i := 0; i < numWorkers; i++ {
			shards <- phimatrix.NewDense(tokensOf(phi), classesOf(phi), phi.TopicNames())
		}
	}

	var resultsMu sync.Mutex
	var allResults []processor.Result

	pool := concurrency.NewPool(m.cfg.NumProcessors)
	bm := concurrency.NewBatchManager(ids)

	pool.Run(bm, func(id string) {
		b := byID[id]

		var shard phimatrix.Matrix
		if accumulateN {
			shard = <-shards
			defer func() { shards <- shard }()
		} else {
			shard = phimatrix.NewDense(tokensOf(phi), classesOf(phi), phi.TopicNames())
		}

		idx := processor.ResolveBatchIndex(phi, b)
		bp := score.BatchPartial{Batch: b, TopicNames: phi.TopicNames()}

		for _, item := range b.Items {
			res, err := processor.ProcessItem(phi, shard, b, idx, item, cfg, nil)
			if err != nil {
				m.logger.Warn("dropping malformed item", "batch_id", b.ID, "item_id", item.ID, "error", err.Error())
				continue
			}
			bp.Items = append(bp.Items, res)
		}

		resultsMu.Lock()
		allResults = append(allResults, bp.Items...)
		resultsMu.Unlock()

		m.scores.Accumulate(bp)
		bm.Done(id)
	})
	bm.WaitIdle(0)

	var reduced phimatrix.Matrix
	if accumulateN {
		close(shards)
		reduced = phimatrix.NewDense(tokensOf(phi), classesOf(phi), phi.TopicNames())
		for shard := range shards {
			for i := 0; i < shard.TokenSize(); i++ {
				shard.RowNonzero(i, func(t int, v float64) {
					if v != 0 {
						reduced.Increase(i, t, v)
					}
				})
			}
		}
	}

	m.logger.Debug("batch group completed", "batches", bm.CompletedCount())
	return runGroupResult{n: reduced, results: allResults}, nil
}

// commitPass folds n (this pass's accumulated shard sum) plus the
// registered Phi regularizers' R contribution into a fresh Φ, replacing
// the published snapshot under cfg.PwtName.
func (m *Master) commitPass(ref phimatrix.Matrix, n phimatrix.Matrix) phimatrix.Matrix {
	r := phimatrix.NewDense(tokensOf(ref), classesOf(ref), ref.TopicNames())
	for _, reg := range m.phiRegularizers {
		reg.RegularizePhi(n, ref, r)
	}
	out := phimatrix.NewDense(tokensOf(ref), classesOf(ref), ref.TopicNames())
	regularize.Normalize(n, r, out)
	return out
}

// FitOffline runs numPasses EM iterations over batches: each pass clears
// the score cache, dispatches every batch once, reduces to N, and folds
// N + regularizer R into the next Φ via column normalization.
func (m *Master) FitOffline(batches []*batch.Batch, numPasses int) error {
	if numPasses <= 0 {
		return fmt.Errorf("master: fit_offline: num_collection_passes must be > 0: %w", artmerr.InvalidArgument)
	}

	m.mu.RLock()
	phi, ok := m.phi[m.cfg.PwtName]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("master: fit_offline: no model published: %w", artmerr.InvalidOperation)
	}

	for pass := 0; pass < numPasses; pass++ {
		m.scores.ClearScoreCache()

		group, err := m.processGroup(phi, batches, true)
		if err != nil {
			return err
		}

		next := m.commitPass(phi, group.n)

		m.mu.Lock()
		m.phi[m.cfg.PwtName] = next
		m.rebuildIndexLocked()
		m.mu.Unlock()
		phi = next

		m.addItemsProcessed(int64(len(group.results)))
		m.scores.FinalizeAll(phi)
		m.logger.Info("fit_offline pass committed", "pass", pass, "items", len(group.results))
	}
	return nil
}

// Transform runs the inner E-step without updating Φ, returning Θ for
// batches. item_title is preserved from the input batch items.
func (m *Master) Transform(batches []*batch.Batch) (*theta.Matrix, error) {
	m.mu.RLock()
	phi, ok := m.phi[m.cfg.PwtName]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("master: transform: no model published: %w", artmerr.InvalidOperation)
	}

	group, err := m.processGroup(phi, batches, false)
	if err != nil {
		return nil, err
	}

	titleByID := make(map[string]string)
	for _, b := range batches {
		for _, it := range b.Items {
			titleByID[it.ID] = it.Title
		}
	}

	itemIDs := make([]string, len(group.results))
	itemTitles := make([]string, len(group.results))
	for i, res := range group.results {
		itemIDs[i] = res.ItemID
		itemTitles[i] = titleByID[res.ItemID]
	}

	out := theta.New(itemIDs, itemTitles, phi.TopicNames())
	for i, res := range group.results {
		for t, v := range res.Theta {
			out.Set(i, t, v)
		}
	}
	return out, nil
}

func (m *Master) addItemsProcessed(n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.itemsProcessed += n
}
