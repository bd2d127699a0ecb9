// Package score implements the score engine: named, pluggable score
// objects that reduce a pass's per-batch processor output into a single
// cumulative value, with a per-score array cache recording one entry per
// FitOffline pass and per FitOnline checkpoint.
package score

import (
	"sync"

	"github.com/artm-core/artm/internal/artm/batch"
	"github.com/artm-core/artm/internal/artm/phimatrix"
	"github.com/artm-core/artm/internal/artm/processor"
)

// BatchPartial is the per-batch input CalculateScore consumes: the batch
// itself (for token/class lookups), the processor's per-item results, and
// the topic name axis they were computed against (θ rows are positional,
// not self-describing).
type BatchPartial struct {
	Batch      *batch.Batch
	Items      []processor.Result
	TopicNames []string
}

// Score is a named score: CalculateScore is pure and batch-local,
// AppendScore is an associative combine over batches within a pass, and
// Finalize produces the reported value, optionally scanning Φ.
type Score interface {
	Name() string
	CalculateScore(bp BatchPartial) any
	AppendScore(cumulative, partial any) any
	Finalize(cumulative any, phi phimatrix.Matrix) any
}

// Engine owns the registered scores, their in-progress cumulative state for
// the current pass, and the array cache of finalized values across calls.
type Engine struct {
	mu         sync.Mutex
	scores     map[string]Score
	cumulative map[string]any
	arrayCache map[string][]any
}

// NewEngine returns an Engine with no scores registered.
func NewEngine() *Engine {
	return &Engine{
		scores:     make(map[string]Score),
		cumulative: make(map[string]any),
		arrayCache: make(map[string][]any),
	}
}

// Register adds or replaces a named score.
func (e *Engine) Register(s Score) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scores[s.Name()] = s
}

// Accumulate calls CalculateScore/AppendScore for every registered score
// over one batch's partial results, folding into the pass's cumulative
// state under a single mutex (the score cache is append-only under one
// lock, per §5's shared-resource policy).
func (e *Engine) Accumulate(bp BatchPartial) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for name, s := range e.scores {
		partial := s.CalculateScore(bp)
		e.cumulative[name] = s.AppendScore(e.cumulative[name], partial)
	}
}

// FinalizeAll runs Finalize for every registered score against the given Φ
// snapshot, pushes each result onto that score's array cache, and returns
// the map of freshly finalized values.
func (e *Engine) FinalizeAll(phi phimatrix.Matrix) map[string]any {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]any, len(e.scores))
	for name, s := range e.scores {
		v := s.Finalize(e.cumulative[name], phi)
		out[name] = v
		e.arrayCache[name] = append(e.arrayCache[name], v)
	}
	return out
}

// Value returns the most recently finalized value for name, if any.
func (e *Engine) Value(name string) (any, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	arr := e.arrayCache[name]
	if len(arr) == 0 {
		return nil, false
	}
	return arr[len(arr)-1], true
}

// Array returns the full finalized-value history for name.
func (e *Engine) Array(name string) []any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]any(nil), e.arrayCache[name]...)
}

// ClearScoreCache resets the in-progress cumulative state for every score,
// without touching the array cache. Called at the start of a pass.
func (e *Engine) ClearScoreCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cumulative = make(map[string]any)
}

// ClearScoreArrayCache discards the finalized-value history for every
// score.
func (e *Engine) ClearScoreArrayCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.arrayCache = make(map[string][]any)
}
