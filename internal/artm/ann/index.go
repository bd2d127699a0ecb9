// Package ann builds an approximate nearest-neighbor index over a
// committed Φ snapshot's token rows, giving ImproveCoherencePhi and
// NetPlsaPhi a token-affinity graph without a separate co-occurrence
// collection pass.
package ann

import (
	"fmt"
	"strconv"

	"github.com/TFMV/hnsw"

	"github.com/artm-core/artm/internal/artm/phimatrix"
)

// Index wraps an hnsw.Graph[string] keyed by the token's row index
// (stringified), so a lookup result can be mapped straight back to a
// PhiMatrix row without re-hashing the token.
type Index struct {
	graph *hnsw.Graph[string]
	size  int
}

// Config tunes the underlying graph. Zero values fall back to
// reasonable defaults for a token-affinity graph of a few hundred
// thousand vocabulary rows.
type Config struct {
	M        int
	Ml       float64
	EfSearch int
}

func (c Config) resolved() (m int, ml float64, ef int) {
	m, ml, ef = c.M, c.Ml, c.EfSearch
	if m <= 0 {
		m = 16
	}
	if ml <= 0 {
		ml = 0.25
	}
	if ef <= 0 {
		ef = 64
	}
	return
}

// Build indexes every token row of phi as a TopicSize()-dimensional
// vector under cosine distance. It is always built from a committed,
// immutable Φ snapshot — never from the in-flight N matrix — since the
// graph is rebuilt once per published snapshot rather than updated
// incrementally mid-step.
func Build(phi phimatrix.Matrix, cfg Config) (*Index, error) {
	m, ml, ef := cfg.resolved()
	g, err := hnsw.NewGraphWithConfig[string](m, ml, ef, hnsw.CosineDistance)
	if err != nil {
		return nil, fmt.Errorf("ann: new graph: %w", err)
	}

	for i := 0; i < phi.TokenSize(); i++ {
		vec := vectorOf(phi, i)
		if err := g.Add(hnsw.MakeNode(rowKey(i), vec)); err != nil {
			return nil, fmt.Errorf("ann: add row %d: %w", i, err)
		}
	}

	return &Index{graph: g, size: phi.TokenSize()}, nil
}

// Neighbor is one nearest-neighbor hit: the PhiMatrix row and its cosine
// distance from the query row (smaller is closer).
type Neighbor struct {
	Row      int
	Distance float64
}

// Neighbors returns up to k nearest rows to row (excluding row itself).
func (idx *Index) Neighbors(phi phimatrix.Matrix, row int, k int) []Neighbor {
	if idx == nil || idx.graph == nil {
		return nil
	}
	vec := vectorOf(phi, row)
	hits, err := idx.graph.Search(vec, k+1)
	if err != nil {
		return nil
	}

	out := make([]Neighbor, 0, len(hits))
	for _, h := range hits {
		r, ok := rowOf(h.Key)
		if !ok || r == row {
			continue
		}
		out = append(out, Neighbor{Row: r, Distance: float64(idx.graph.Distance(vec, h.Value))})
		if len(out) == k {
			break
		}
	}
	return out
}

// Len returns the number of indexed rows.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return idx.size
}

func rowKey(i int) string { return strconv.Itoa(i) }

func rowOf(key string) (int, bool) {
	i, err := strconv.Atoi(key)
	if err != nil {
		return 0, false
	}
	return i, true
}

// vectorOf materializes token row i as a dense float32 vector suitable for
// hnsw indexing/search, regardless of whether phi's underlying
// representation is dense or sparse.
func vectorOf(phi phimatrix.Matrix, i int) []float32 {
	vec := make([]float32, phi.TopicSize())
	phi.RowNonzero(i, func(t int, v float64) { vec[t] = float32(v) })
	return vec
}
