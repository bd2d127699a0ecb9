// Package theta holds the Θ (topic×item) matrix produced by the inner
// E-step: one distribution over topics per item, normalized so each
// item's row sums to 1 (the Θ analogue of Φ's column-stochastic invariant,
// since Θ is keyed by item rather than token/class).
package theta

import (
	"fmt"

	"github.com/artm-core/artm/internal/artm/artmerr"
)

// Matrix is a dense Θ slab: one row per item, one column per topic.
// Unlike PhiMatrix it has no sparse representation in the base contract —
// Θ is small per batch (item count, not vocabulary size) so a dense slab
// is always cheap enough; projections to a subset of topics are served by
// copying out selected columns rather than by a distinct storage kind.
type Matrix struct {
	itemIDs    []string
	itemTitles []string
	itemIdx    map[string]int

	topics   []string
	topicIdx map[string]int

	values []float64 // item-major, len == ItemSize()*TopicSize()
}

// New allocates a zeroed Θ matrix over the given items and topics.
// itemTitles may be nil if items carry no title.
func New(itemIDs []string, itemTitles []string, topics []string) *Matrix {
	idIdx := make(map[string]int, len(itemIDs))
	for i, id := range itemIDs {
		idIdx[id] = i
	}
	titles := itemTitles
	if titles == nil {
		titles = make([]string, len(itemIDs))
	}
	return &Matrix{
		itemIDs:    append([]string(nil), itemIDs...),
		itemTitles: append([]string(nil), titles...),
		itemIdx:    idIdx,
		topics:     append([]string(nil), topics...),
		topicIdx:   topicIndex(topics),
		values:     make([]float64, len(itemIDs)*len(topics)),
	}
}

func topicIndex(topics []string) map[string]int {
	m := make(map[string]int, len(topics))
	for t, name := range topics {
		m[name] = t
	}
	return m
}

func (m *Matrix) ItemSize() int  { return len(m.itemIDs) }
func (m *Matrix) TopicSize() int { return len(m.topics) }

func (m *Matrix) ItemID(i int) string    { return m.itemIDs[i] }
func (m *Matrix) ItemTitle(i int) string { return m.itemTitles[i] }
func (m *Matrix) TopicName(t int) string { return m.topics[t] }
func (m *Matrix) TopicNames() []string   { return append([]string(nil), m.topics...) }

// ItemRow resolves an item id to its row index.
func (m *Matrix) ItemRow(id string) (int, bool) {
	i, ok := m.itemIdx[id]
	return i, ok
}

func (m *Matrix) index(i, t int) int { return i*len(m.topics) + t }

func (m *Matrix) Get(i, t int) float64 { return m.values[m.index(i, t)] }

func (m *Matrix) Set(i, t int, v float64) { m.values[m.index(i, t)] = v }

func (m *Matrix) Increase(i, t int, delta float64) { m.values[m.index(i, t)] += delta }

// Row returns the backing slice of item i's per-topic distribution, for
// in-place inner-loop updates by the processor.
func (m *Matrix) Row(i int) []float64 {
	base := i * len(m.topics)
	return m.values[base : base+len(m.topics)]
}

// FillUniform sets item i's row to a uniform distribution over its topic
// set (1/TopicSize() each), used both for θ initialization and for the
// zero-sum reset during normalization.
func (m *Matrix) FillUniform(i int) {
	row := m.Row(i)
	if len(row) == 0 {
		return
	}
	u := 1.0 / float64(len(row))
	for t := range row {
		row[t] = u
	}
}

// Normalize rescales item i's row to sum to 1. If the row sums to <= 0 it
// is reset to uniform instead of producing NaN/negative mass (Φ column
// normalization differs here: it leaves such a column at zero).
func (m *Matrix) Normalize(i int) {
	row := m.Row(i)
	var sum float64
	for _, v := range row {
		if v > 0 {
			sum += v
		}
	}
	if sum <= 0 {
		m.FillUniform(i)
		return
	}
	for t, v := range row {
		if v < 0 {
			v = 0
		}
		row[t] = v / sum
	}
}

// RowSum returns Σ_t θ_{t,i} for item i (it equals 1 for every normalized
// row, so this helper is mainly useful in tests asserting that invariant).
func (m *Matrix) RowSum(i int) float64 {
	var sum float64
	for _, v := range m.Row(i) {
		sum += v
	}
	return sum
}

// Clone deep-copies the matrix.
func (m *Matrix) Clone() *Matrix {
	return &Matrix{
		itemIDs:    append([]string(nil), m.itemIDs...),
		itemTitles: append([]string(nil), m.itemTitles...),
		itemIdx:    m.itemIdx,
		topics:     append([]string(nil), m.topics...),
		topicIdx:   topicIndex(m.topics),
		values:     append([]float64(nil), m.values...),
	}
}

// Lookup returns an error wrapping artmerr.NotFound when an item id is not
// present in the matrix, for callers (GetThetaMatrix) that need a reported
// failure rather than a boolean.
func (m *Matrix) Lookup(id string) (int, error) {
	i, ok := m.itemIdx[id]
	if !ok {
		return 0, fmt.Errorf("theta: item %q not found: %w", id, artmerr.NotFound)
	}
	return i, nil
}
