package phimatrix

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/artm-core/artm/internal/artm/token"
)

// SparseMatrix stores, per row, a bitset of populated topic indices plus a
// packed value slice indexed by the bit's rank within the set. It is used
// to return projections (e.g. top-K topics, GetTopicModel with
// matrix_layout=sparse) without materializing zero cells.
type SparseMatrix struct {
	rowIndex
	topics   []string
	topicIdx map[string]int
	tol      float64

	present []*bitset.BitSet // per row: which topic indices are nonzero
	values  [][]float32      // per row: packed values, values[i][k] corresponds to the k-th set bit
}

// NewSparse allocates an empty sparse matrix (every row starts with no
// nonzero entries) with the given tolerance: values with |v| < tol are
// treated as absent.
func NewSparse(tokens []token.Token, classes []string, topics []string, tol float64) *SparseMatrix {
	n := len(tokens)
	m := &SparseMatrix{
		rowIndex: newRowIndex(tokens, classes),
		topics:   append([]string(nil), topics...),
		topicIdx: topicIndex(topics),
		tol:      tol,
		present:  make([]*bitset.BitSet, n),
		values:   make([][]float32, n),
	}
	for i := range m.present {
		m.present[i] = bitset.New(uint(len(topics)))
	}
	return m
}

func (m *SparseMatrix) TokenSize() int { return len(m.tokens) }
func (m *SparseMatrix) TopicSize() int { return len(m.topics) }

func (m *SparseMatrix) TokenAt(i int) token.Token            { return m.tokens[i] }
func (m *SparseMatrix) ClassAt(i int) string                 { return m.classes[i] }
func (m *SparseMatrix) TopicName(t int) string                { return m.topics[t] }
func (m *SparseMatrix) TopicNames() []string                 { return append([]string(nil), m.topics...) }
func (m *SparseMatrix) TokenRow(tok token.Token) (int, bool) { return m.lookup(tok) }


// rank returns the number of set bits strictly before position t, i.e. the
// index of t's value within the packed values[i] slice.
func rank(b *bitset.BitSet, t uint) int {
	count := 0
	for i, ok := b.NextSet(0); ok && i < t; i, ok = b.NextSet(i + 1) {
		count++
	}
	return count
}

func (m *SparseMatrix) Get(i, t int) float64 {
	b := m.present[i]
	if !b.Test(uint(t)) {
		return 0
	}
	return float64(m.values[i][rank(b, uint(t))])
}

func (m *SparseMatrix) Set(i, t int, v float64) {
	b := m.present[i]
	tu := uint(t)
	if v == 0 || (v > -m.tol && v < m.tol) {
		if b.Test(tu) {
			k := rank(b, tu)
			m.values[i] = append(m.values[i][:k], m.values[i][k+1:]...)
			b.Clear(tu)
		}
		return
	}
	if b.Test(tu) {
		m.values[i][rank(b, tu)] = float32(v)
		return
	}
	k := rank(b, tu)
	m.values[i] = append(m.values[i], 0)
	copy(m.values[i][k+1:], m.values[i][k:])
	m.values[i][k] = float32(v)
	b.Set(tu)
}

func (m *SparseMatrix) Increase(i, t int, delta float64) {
	m.Set(i, t, m.Get(i, t)+delta)
}

func (m *SparseMatrix) RowNonzero(i int, fn func(t int, v float64)) {
	b := m.present[i]
	for t, ok := b.NextSet(0); ok; t, ok = b.NextSet(t + 1) {
		fn(int(t), float64(m.values[i][rank(b, t)]))
	}
}

func (m *SparseMatrix) Clear() {
	for i := range m.present {
		m.present[i] = bitset.New(uint(len(m.topics)))
		m.values[i] = nil
	}
}

func (m *SparseMatrix) ReshapeTopics(newTopics []string) (Matrix, error) {
	out := NewSparse(m.tokens, m.classes, newTopics, m.tol)
	newIdx := topicIndex(newTopics)
	for i := range m.tokens {
		m.RowNonzero(i, func(t int, v float64) {
			name := m.topics[t]
			if nt, ok := newIdx[name]; ok {
				out.Set(i, nt, v)
			}
		})
	}
	return out, nil
}

func (m *SparseMatrix) Clone() Matrix {
	out := NewSparse(m.tokens, m.classes, m.topics, m.tol)
	for i := range m.tokens {
		m.RowNonzero(i, func(t int, v float64) {
			out.Set(i, t, v)
		})
	}
	return out
}

// AsDense materializes a dense copy of the sparse matrix, used by
// GetTopicModel(matrix_layout=dense) and by callers that need guaranteed
// O(1) cell access.
func (m *SparseMatrix) AsDense() *DenseMatrix {
	out := NewDense(m.tokens, m.classes, m.topics)
	for i := range m.tokens {
		m.RowNonzero(i, func(t int, v float64) {
			out.Set(i, t, v)
		})
	}
	return out
}
