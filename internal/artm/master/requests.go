package master

import (
	"fmt"

	"github.com/artm-core/artm/internal/artm/artmerr"
	"github.com/artm-core/artm/internal/artm/concurrency"
	"github.com/artm-core/artm/internal/artm/logging"
	"github.com/artm-core/artm/internal/artm/phimatrix"
	"github.com/artm-core/artm/internal/artm/theta"
	"github.com/artm-core/artm/internal/artm/token"
)

// MatrixLayout selects GetTopicModel/GetThetaMatrix's projection shape.
type MatrixLayout int

const (
	LayoutDense MatrixLayout = iota
	LayoutSparse
)

// ProjectionArgs narrows a GetTopicModel/GetThetaMatrix request to a
// subset of the stored axes.
type ProjectionArgs struct {
	TopicNames []string
	ClassIDs   []string
	Tokens     []token.Token
	Layout     MatrixLayout
	Eps        float64
}

// GetTopicModel returns the named Φ (cfg.PwtName if name is empty),
// projected to args' topic/class/token subset and re-expressed in the
// requested layout. A sparse projection is built directly from row
// iteration rather than round-tripping through a dense copy first.
func (m *Master) GetTopicModel(name string, args ProjectionArgs) (phimatrix.Matrix, error) {
	if name == "" {
		name = m.cfg.PwtName
	}
	m.mu.RLock()
	phi, ok := m.phi[name]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("master: get_topic_model: %q: %w", name, artmerr.NotFound)
	}
	return project(phi, args), nil
}

// project copies phi's rows/topics matching args into a fresh matrix of
// the requested layout. An empty args field means "no restriction" on
// that axis.
func project(phi phimatrix.Matrix, args ProjectionArgs) phimatrix.Matrix {
	topics := args.TopicNames
	if len(topics) == 0 {
		topics = phi.TopicNames()
	}
	topicCol := make(map[string]int, len(phi.TopicNames()))
	for t, name := range phi.TopicNames() {
		topicCol[name] = t
	}

	classAllowed := toSet(args.ClassIDs)
	tokenAllowed := toTokenSet(args.Tokens)

	var tokens []token.Token
	var classes []string
	var rows []int
	for i := 0; i < phi.TokenSize(); i++ {
		if classAllowed != nil && !classAllowed[phi.ClassAt(i)] {
			continue
		}
		if tokenAllowed != nil && !tokenAllowed[phi.TokenAt(i).Hash()] {
			continue
		}
		tokens = append(tokens, phi.TokenAt(i))
		classes = append(classes, phi.ClassAt(i))
		rows = append(rows, i)
	}

	var out phimatrix.Matrix
	if args.Layout == LayoutSparse {
		eps := args.Eps
		if eps <= 0 {
			eps = 1e-10
		}
		out = phimatrix.NewSparse(tokens, classes, topics, eps)
	} else {
		out = phimatrix.NewDense(tokens, classes, topics)
	}

	for newRow, oldRow := range rows {
		for newT, name := range topics {
			if oldT, ok := topicCol[name]; ok {
				out.Set(newRow, newT, phi.Get(oldRow, oldT))
			}
		}
	}
	return out
}

func toSet(vals []string) map[string]bool {
	if len(vals) == 0 {
		return nil
	}
	m := make(map[string]bool, len(vals))
	for _, v := range vals {
		m[v] = true
	}
	return m
}

func toTokenSet(toks []token.Token) map[uint64]bool {
	if len(toks) == 0 {
		return nil
	}
	m := make(map[uint64]bool, len(toks))
	for _, t := range toks {
		m[t.Hash()] = true
	}
	return m
}

// GetThetaMatrix resolves item rows from theta, optionally restricted to
// args.TopicNames (class_id/token/layout don't apply to Θ, which has no
// per-cell modality).
func (m *Master) GetThetaMatrix(th *theta.Matrix, args ProjectionArgs) *theta.Matrix {
	topics := args.TopicNames
	if len(topics) == 0 {
		return th
	}
	itemIDs := make([]string, th.ItemSize())
	itemTitles := make([]string, th.ItemSize())
	for i := 0; i < th.ItemSize(); i++ {
		itemIDs[i] = th.ItemID(i)
		itemTitles[i] = th.ItemTitle(i)
	}
	out := theta.New(itemIDs, itemTitles, topics)
	srcCols := make(map[string]int, len(th.TopicNames()))
	for t, name := range th.TopicNames() {
		srcCols[name] = t
	}
	for i := 0; i < th.ItemSize(); i++ {
		for newT, name := range topics {
			if oldT, ok := srcCols[name]; ok {
				out.Set(i, newT, th.Get(i, oldT))
			}
		}
	}
	return out
}

// GetScore returns the most recently finalized value for a registered
// score name.
func (m *Master) GetScore(name string) (any, error) {
	v, ok := m.scores.Value(name)
	if !ok {
		return nil, fmt.Errorf("master: get_score: %q: %w", name, artmerr.NotFound)
	}
	return v, nil
}

// GetScoreArray returns the full finalized-value history for a score.
func (m *Master) GetScoreArray(name string) []any {
	return m.scores.Array(name)
}

// ClearScoreCache resets every score's in-progress cumulative state.
func (m *Master) ClearScoreCache() { m.scores.ClearScoreCache() }

// ClearScoreArrayCache discards every score's finalized-value history.
func (m *Master) ClearScoreArrayCache() { m.scores.ClearScoreArrayCache() }

// MasterComponentInfo is the snapshot GetMasterComponentInfo returns:
// counters plus a window of recent lifecycle log entries.
type MasterComponentInfo struct {
	NumProcessors  int
	ItemsProcessed int64
	ModelNames     []string
	RecentLogs     []logging.LogEntry
}

// GetMasterComponentInfo reports the master's live counters and recent
// lifecycle events (model init, checkpoint commits, batch failures) drawn
// from the logger's ring buffer — no separate log-shipping pipeline.
func (m *Master) GetMasterComponentInfo() MasterComponentInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.phi))
	for name := range m.phi {
		names = append(names, name)
	}

	return MasterComponentInfo{
		NumProcessors:  concurrency.NumProcessors(m.cfg.NumProcessors),
		ItemsProcessed: m.itemsProcessed,
		ModelNames:     names,
		RecentLogs:     m.logger.Buffer().Query(logging.LogFilter{Limit: 50}),
	}
}
