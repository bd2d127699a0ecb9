// Package processor implements the inner E-step: for one item, iterate
// between a per-item θ estimate and per-occurrence p(t|d,w) until
// num_document_passes is exhausted, accumulating the item's contribution
// to the shared N matrix on the final pass.
package processor

import "github.com/artm-core/artm/internal/artm/batch"

// ThetaRegularizer is implemented by regularizers that act on a single
// item's θ row during the inner loop (SmoothSparseTheta, TopicSelection,
// SmoothPtdw, HierarchySparsing, TopicSegmentationPtdw live in the
// regularize package). RegularizeTheta returns the r_td vector to add to
// the unnormalized θ accumulator before normalization; it must not mutate
// theta or ptdw in place.
type ThetaRegularizer interface {
	RegularizeTheta(item *batch.Item, topics []string, theta []float64, ptdw [][]float64) []float64
}

// PtdwAware is implemented by regularizers whose RegularizeTheta needs the
// per-transaction p(t|d,w) distributions computed during the inner loop
// (SmoothPtdw, TopicSegmentationPtdw). Its presence in Config.ThetaRegularizers
// forces the scalar inner-loop path even when OptForAVX is set, since the
// vectorized path does not materialize ptdw.
type PtdwAware interface {
	NeedsPtdw() bool
}

// Config carries the per-pass tuning a MasterModelConfig resolves down to
// before dispatching items to the processor; it holds no state shared
// across items so it is safe to reuse across a worker's whole batch.
type Config struct {
	// NumDocumentPasses is the number of inner E-step iterations per item
	// ("num_document_passes"). Zero leaves θ at its initial value, which
	// with ReuseTheta=false is uniform (Transform's documented boundary
	// behavior).
	NumDocumentPasses int

	// ReuseTheta, if true, seeds θ_d from a caller-supplied prior estimate
	// instead of uniform.
	ReuseTheta bool

	// Epsilon guards against near-zero transaction probability mass; a
	// transaction whose Σ_t θ_t·φ falls at or below Epsilon contributes
	// nothing on that pass rather than dividing by a near-zero sum.
	Epsilon float64

	// ModalityWeight scales a token's contribution to Δn by its class_id.
	// A class absent from the map defaults to weight 1.
	ModalityWeight map[string]float64

	// TransactionWeight scales a transaction's contribution by its
	// transaction_typename. A typename absent from the map defaults to 1.
	TransactionWeight map[string]float64

	// ThetaRegularizers run, in order, after each inner pass's raw θ_new
	// accumulation and before normalization.
	ThetaRegularizers []ThetaRegularizer

	// OptForAVX selects the vectorized single-modality kernel when no
	// configured regularizer needs ptdw; otherwise the scalar path always
	// runs regardless of this flag.
	OptForAVX bool
}

func (c Config) modalityWeight(classID string) float64 {
	if w, ok := c.ModalityWeight[classID]; ok {
		return w
	}
	return 1
}

func (c Config) transactionWeight(typename string) float64 {
	if w, ok := c.TransactionWeight[typename]; ok {
		return w
	}
	return 1
}

func (c Config) epsilon() float64 {
	if c.Epsilon > 0 {
		return c.Epsilon
	}
	return 1e-100
}

func (c Config) needsPtdw() bool {
	for _, r := range c.ThetaRegularizers {
		if pa, ok := r.(PtdwAware); ok && pa.NeedsPtdw() {
			return true
		}
	}
	return false
}
