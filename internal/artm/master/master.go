// Package master implements the training orchestrator: it owns the
// published Φ snapshot(s), drives the worker pool across FitOffline/
// FitOnline/Transform, folds per-worker N shards into Φ through the
// regularize/normalize pipeline, and answers the synchronous Get*
// requests. It is the one component every other package in this module
// is wired through.
package master

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/artm-core/artm/internal/artm/ann"
	"github.com/artm-core/artm/internal/artm/artmerr"
	"github.com/artm-core/artm/internal/artm/concurrency"
	"github.com/artm-core/artm/internal/artm/config"
	"github.com/artm-core/artm/internal/artm/logging"
	"github.com/artm-core/artm/internal/artm/phimatrix"
	"github.com/artm-core/artm/internal/artm/processor"
	"github.com/artm-core/artm/internal/artm/regularize"
	"github.com/artm-core/artm/internal/artm/score"
	"github.com/artm-core/artm/internal/artm/token"
)

// Master owns every piece of shared state a training run touches: the
// named Φ snapshots, the named raw-N accumulators AsyncProcessBatches
// writes to, the registered dictionaries, the score engine, and the
// regularizer pipelines. All public methods are safe for concurrent use.
type Master struct {
	mu sync.RWMutex

	cfg    config.MasterModelConfig
	logger *logging.Logger

	phi map[string]phimatrix.Matrix // keyed by pwt name (cfg.PwtName is the default)
	nwt map[string]phimatrix.Matrix // keyed by nwt name, raw (unnormalized) accumulators

	index *ann.Index // built from the default Φ on each commit

	dictionaries map[string]*token.Dictionary

	scores *score.Engine

	phiRegularizers   []regularize.PhiRegularizer
	thetaRegularizers []processor.ThetaRegularizer

	itemsProcessed int64

	ops   map[string]*concurrency.Awaiter[OperationResult]
	opsMu sync.Mutex
}

// Options carries the dependencies New needs beyond the loaded config:
// the regularizer pipelines are wired by the caller (the CLI/config layer
// that knows which regularizers to build from a richer experiment config),
// not derived from MasterModelConfig's scalar fields.
type Options struct {
	PhiRegularizers   []regularize.PhiRegularizer
	ThetaRegularizers []processor.ThetaRegularizer
	Logger            *logging.Logger
}

// New returns a Master with no Φ yet; InitializeModel, OverwriteModel, or
// MergeModel must be called before FitOffline/Transform.
func New(cfg config.MasterModelConfig, opts Options) *Master {
	logger := opts.Logger
	if logger == nil {
		logger = logging.New(logging.DefaultConfig())
	}
	return &Master{
		cfg:               cfg,
		logger:            logger,
		phi:               make(map[string]phimatrix.Matrix),
		nwt:               make(map[string]phimatrix.Matrix),
		dictionaries:      make(map[string]*token.Dictionary),
		scores:            score.NewEngine(),
		phiRegularizers:   opts.PhiRegularizers,
		thetaRegularizers: opts.ThetaRegularizers,
		ops:               make(map[string]*concurrency.Awaiter[OperationResult]),
	}
}

// Scores exposes the score engine for score registration by callers that
// build a Master directly (the CLI registers the configured score set
// before the first Fit call).
func (m *Master) Scores() *score.Engine { return m.scores }

// RegisterDictionary makes d available to InitializeModel/MergeModel and
// GetDictionary under its own Name.
func (m *Master) RegisterDictionary(d *token.Dictionary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dictionaries[d.Name] = d
}

// GetDictionary returns a registered dictionary by name.
func (m *Master) GetDictionary(name string) (*token.Dictionary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.dictionaries[name]
	if !ok {
		return nil, fmt.Errorf("master: dictionary %q: %w", name, artmerr.NotFound)
	}
	return d, nil
}

// InitializeModel allocates Φ under cfg.PwtName with rows = dict's
// entries (restricted to modalities carrying a configured weight, when
// ModalityWeight is non-empty) and columns = topicNames; each cell is
// seeded from a deterministic hash of (token, seed) and the result is
// column-normalized per modality, matching the documented boundary
// property (every modality's topic columns sum to 1 after init).
func (m *Master) InitializeModel(dict *token.Dictionary, topicNames []string, seed int64) error {
	if len(topicNames) == 0 {
		return fmt.Errorf("master: initialize_model: topic_names must be non-empty: %w", artmerr.InvalidArgument)
	}

	tokens := make([]token.Token, 0, len(dict.Entries))
	classes := make([]string, 0, len(dict.Entries))
	for _, e := range dict.Entries {
		if !m.modalityAllowed(e.Tok.ClassID) {
			continue
		}
		tokens = append(tokens, e.Tok)
		classes = append(classes, e.Tok.ClassID)
	}
	if len(tokens) == 0 {
		return fmt.Errorf("master: initialize_model: no tokens survive modality filtering: %w", artmerr.InvalidArgument)
	}

	seedN := phimatrix.NewDense(tokens, classes, topicNames)
	zeroR := phimatrix.NewDense(tokens, classes, topicNames)
	for i, tok := range tokens {
		for t := range topicNames {
			seedN.Set(i, t, tok.SeededScore(seed+int64(t)))
		}
	}

	phi := phimatrix.NewDense(tokens, classes, topicNames)
	regularize.Normalize(seedN, zeroR, phi)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.phi[m.cfg.PwtName] = phi
	m.rebuildIndexLocked()
	m.logger.Info("model initialized", "topics", len(topicNames), "tokens", len(tokens), "seed", seed)
	return nil
}

func (m *Master) modalityAllowed(classID string) bool {
	if len(m.cfg.ModalityWeight) == 0 {
		return true
	}
	_, ok := m.cfg.ModalityWeight[classID]
	return ok
}

// OverwriteModel replaces the named Φ (cfg.PwtName if name is empty) with
// phi as-is, preserving its row/column order. If a Φ is already published
// under that name, its topic axis must match phi's; a mismatched axis is
// rejected with InvalidOperation rather than silently reshaped.
func (m *Master) OverwriteModel(name string, phi phimatrix.Matrix) error {
	if name == "" {
		name = m.cfg.PwtName
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.phi[name]; ok {
		if !sameTopicAxis(existing.TopicNames(), phi.TopicNames()) {
			return fmt.Errorf("master: overwrite_model %q: topic axis mismatch: %w", name, artmerr.InvalidOperation)
		}
	}

	m.phi[name] = phi
	if name == m.cfg.PwtName {
		m.rebuildIndexLocked()
	}
	m.logger.Info("model overwritten", "name", name, "tokens", phi.TokenSize())
	return nil
}

func sameTopicAxis(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// NamedSource is one weighted contribution to MergeModel: Name identifies
// a matrix previously published (via OverwriteModel/InitializeModel, under
// phi[Name]) or accumulated (via AsyncProcessBatches, under nwt[Name]);
// Weight scales its contribution before the pointwise sum.
type NamedSource struct {
	Name   string
	Weight float64
}

// MergeModel computes a pointwise weighted sum of sources over the union
// of their tokens, restricted to topicNames and (if dict is non-nil) to
// dict's tokens, storing the raw (unnormalized) result under target in the
// nwt namespace — callers that want a usable Φ call NormalizeModel(target)
// next, matching the two-step merge-then-normalize scenario.
func (m *Master) MergeModel(sources []NamedSource, target string, topicNames []string, dict *token.Dictionary) error {
	if len(sources) == 0 {
		return fmt.Errorf("master: merge_model: no sources: %w", artmerr.InvalidArgument)
	}

	m.mu.RLock()
	mats := make([]phimatrix.Matrix, len(sources))
	for i, s := range sources {
		mat, ok := m.phi[s.Name]
		if !ok {
			mat, ok = m.nwt[s.Name]
		}
		if !ok {
			m.mu.RUnlock()
			return fmt.Errorf("master: merge_model: source %q: %w", s.Name, artmerr.NotFound)
		}
		mats[i] = mat
	}
	m.mu.RUnlock()

	union := unionTokens(mats)
	if dict != nil {
		union = restrictToDictionary(union, dict)
	}

	tokens := make([]token.Token, len(union))
	classes := make([]string, len(union))
	for i, u := range union {
		tokens[i] = u.tok
		classes[i] = u.class
	}

	out := phimatrix.NewDense(tokens, classes, topicNames)
	for si, mat := range mats {
		w := sources[si].Weight
		if w == 0 {
			continue
		}
		for i, u := range union {
			row, ok := mat.TokenRow(u.tok)
			if !ok {
				continue
			}
			for t, name := range topicNames {
				if srcT, ok := topicColumn(mat, name); ok {
					out.Increase(i, t, w*mat.Get(row, srcT))
				}
			}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nwt[target] = out
	m.logger.Info("model merged", "target", target, "sources", len(sources), "tokens", len(tokens))
	return nil
}

func topicColumn(mat phimatrix.Matrix, name string) (int, bool) {
	for t, n := range mat.TopicNames() {
		if n == name {
			return t, true
		}
	}
	return 0, false
}

type unionEntry struct {
	tok   token.Token
	class string
}

func unionTokens(mats []phimatrix.Matrix) []unionEntry {
	seen := make(map[uint64]bool)
	var out []unionEntry
	for _, mat := range mats {
		for i := 0; i < mat.TokenSize(); i++ {
			tok := mat.TokenAt(i)
			if seen[tok.Hash()] {
				continue
			}
			seen[tok.Hash()] = true
			out = append(out, unionEntry{tok: tok, class: mat.ClassAt(i)})
		}
	}
	return out
}

func restrictToDictionary(union []unionEntry, dict *token.Dictionary) []unionEntry {
	out := make([]unionEntry, 0, len(union))
	for _, u := range union {
		if _, ok := dict.LookupToken(u.tok); ok {
			out = append(out, u)
		}
	}
	return out
}

// NormalizeModel column-normalizes the raw accumulator stored under
// source (looked up in the nwt namespace) into the Φ namespace under
// target, per modality, with no additive regularization (r is the zero
// matrix) — the second half of the merge-then-normalize scenario.
func (m *Master) NormalizeModel(source, target string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.nwt[source]
	if !ok {
		return fmt.Errorf("master: normalize_model: source %q: %w", source, artmerr.NotFound)
	}
	zeroR := phimatrix.NewDense(tokensOf(n), classesOf(n), n.TopicNames())
	out := phimatrix.NewDense(tokensOf(n), classesOf(n), n.TopicNames())
	regularize.Normalize(n, zeroR, out)

	m.phi[target] = out
	if target == m.cfg.PwtName {
		m.rebuildIndexLocked()
	}
	return nil
}

func tokensOf(mat phimatrix.Matrix) []token.Token {
	out := make([]token.Token, mat.TokenSize())
	for i := range out {
		out[i] = mat.TokenAt(i)
	}
	return out
}

func classesOf(mat phimatrix.Matrix) []string {
	out := make([]string, mat.TokenSize())
	for i := range out {
		out[i] = mat.ClassAt(i)
	}
	return out
}

// rebuildIndexLocked rebuilds the ANN index from the default Φ. Callers
// must hold m.mu for writing. A build failure is logged and leaves the
// previous index in place rather than failing the caller's operation.
// The index is kept on the master only: it is not handed to
// ImproveCoherencePhi/NetPlsaPhi, which read the Index set on their own
// Index field.
func (m *Master) rebuildIndexLocked() {
	phi, ok := m.phi[m.cfg.PwtName]
	if !ok {
		return
	}
	idx, err := ann.Build(phi, ann.Config{})
	if err != nil {
		m.logger.Warn("ann index rebuild failed", "error", err.Error())
		return
	}
	m.index = idx
}

// newOperationID returns a fresh, unused operation id for AsyncProcessBatches.
func newOperationID() string { return uuid.NewString() }
