package phimatrix

import (
	"fmt"

	"github.com/viterin/vek/vek32"

	"github.com/artm-core/artm/internal/artm/artmerr"
	"github.com/artm-core/artm/internal/artm/token"
)

// DenseMatrix is a contiguous W*T row-major float32 matrix. It is the
// representation used when most cells are expected nonzero: Φ itself, and
// the N/R accumulators during a training step.
type DenseMatrix struct {
	rowIndex
	topics   []string
	topicIdx map[string]int
	values   []float32 // row-major, len == TokenSize()*TopicSize()

	attached bool // true if values is an externally owned buffer
}

// NewDense allocates a zeroed dense matrix over tokens/classes and topics.
func NewDense(tokens []token.Token, classes []string, topics []string) *DenseMatrix {
	return &DenseMatrix{
		rowIndex: newRowIndex(tokens, classes),
		topics:   append([]string(nil), topics...),
		topicIdx: topicIndex(topics),
		values:   make([]float32, len(tokens)*len(topics)),
	}
}

// Attach wraps an externally owned buffer as a DenseMatrix view. The
// promoter of the view (the caller) owns the storage; while attached,
// ReshapeTopics is refused (the topic axis is frozen) per §4.6/E6.
func Attach(tokens []token.Token, classes []string, topics []string, buf []float32) (*DenseMatrix, error) {
	want := len(tokens) * len(topics)
	if len(buf) != want {
		return nil, fmt.Errorf("phimatrix: attach buffer has %d elements, want %d: %w", len(buf), want, artmerr.InvalidArgument)
	}
	return &DenseMatrix{
		rowIndex: newRowIndex(tokens, classes),
		topics:   append([]string(nil), topics...),
		topicIdx: topicIndex(topics),
		values:   buf,
		attached: true,
	}, nil
}

func (m *DenseMatrix) TokenSize() int { return len(m.tokens) }
func (m *DenseMatrix) TopicSize() int { return len(m.topics) }

func (m *DenseMatrix) TokenAt(i int) token.Token            { return m.tokens[i] }
func (m *DenseMatrix) ClassAt(i int) string                 { return m.classes[i] }
func (m *DenseMatrix) TopicName(t int) string               { return m.topics[t] }
func (m *DenseMatrix) TopicNames() []string                 { return append([]string(nil), m.topics...) }
func (m *DenseMatrix) TokenRow(tok token.Token) (int, bool) { return m.lookup(tok) }

func (m *DenseMatrix) index(i, t int) int { return i*len(m.topics) + t }

func (m *DenseMatrix) Get(i, t int) float64 { return float64(m.values[m.index(i, t)]) }

func (m *DenseMatrix) Set(i, t int, v float64) { m.values[m.index(i, t)] = float32(v) }

func (m *DenseMatrix) Increase(i, t int, delta float64) {
	m.values[m.index(i, t)] += float32(delta)
}

func (m *DenseMatrix) RowNonzero(i int, fn func(t int, v float64)) {
	base := i * len(m.topics)
	row := m.values[base : base+len(m.topics)]
	for t, v := range row {
		fn(t, float64(v))
	}
}

func (m *DenseMatrix) Clear() {
	for i := range m.values {
		m.values[i] = 0
	}
}

// Row returns the backing float32 slice for token row i, primarily for the
// vectorized inner kernel (processor package) and normalization pipeline.
func (m *DenseMatrix) Row(i int) []float32 {
	base := i * len(m.topics)
	return m.values[base : base+len(m.topics)]
}

// RowDot returns the dot product of row i with a topic-weight vector w,
// using vek32's vectorized reduction.
func (m *DenseMatrix) RowDot(i int, w []float32) float32 {
	return vek32.Dot(m.Row(i), w)
}

func (m *DenseMatrix) ReshapeTopics(newTopics []string) (Matrix, error) {
	if m.attached {
		return nil, errAttached("reshape_topics")
	}
	out := NewDense(m.tokens, m.classes, newTopics)
	for i := range m.tokens {
		oldRow := m.Row(i)
		for t, name := range newTopics {
			if oldT, ok := m.topicIdx[name]; ok {
				out.Set(i, t, float64(oldRow[oldT]))
			}
		}
	}
	return out, nil
}

func (m *DenseMatrix) Clone() Matrix {
	out := &DenseMatrix{
		rowIndex: m.rowIndex,
		topics:   append([]string(nil), m.topics...),
		topicIdx: topicIndex(m.topics),
		values:   append([]float32(nil), m.values...),
	}
	return out
}
