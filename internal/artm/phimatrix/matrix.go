// Package phimatrix implements the PhiMatrix store: dense and sparse
// token×topic matrices behind one interface, with copy-on-write publish
// semantics safe under concurrent readers and a single committing writer.
package phimatrix

import (
	"fmt"

	"github.com/artm-core/artm/internal/artm/artmerr"
	"github.com/artm-core/artm/internal/artm/token"
)

// Matrix is the capability-set interface shared by dense and sparse
// representations of Φ, N, or R. A published Matrix is immutable; a new
// instance is allocated for each training step and swapped in by its
// owner (the master replaces its published entry under its lock).
type Matrix interface {
	TokenSize() int
	TopicSize() int

	TokenAt(i int) token.Token
	ClassAt(i int) string
	TopicName(t int) string
	TopicNames() []string

	// TokenRow returns the row index for tok, if present.
	TokenRow(tok token.Token) (int, bool)

	Get(i, t int) float64
	Set(i, t int, v float64)
	Increase(i, t int, delta float64)

	// RowNonzero iterates the nonzero (topic, value) entries of row i in
	// ascending topic order. For a DenseMatrix this yields every topic;
	// for a SparseMatrix, only entries above tol.
	RowNonzero(i int, fn func(t int, v float64))

	Clear()

	// ReshapeTopics reorders/adds zero columns to match newTopics,
	// preserving the token axis. It fails with InvalidOperation if the
	// matrix is attached to external memory.
	ReshapeTopics(newTopics []string) (Matrix, error)

	Clone() Matrix
}

// newRowIndex builds the token -> row lookup shared by both
// representations.
type rowIndex struct {
	tokens  []token.Token
	classes []string
	byHash  map[uint64][]int
}

func newRowIndex(tokens []token.Token, classes []string) rowIndex {
	idx := rowIndex{tokens: tokens, classes: classes, byHash: make(map[uint64][]int, len(tokens))}
	for i, t := range tokens {
		idx.byHash[t.Hash()] = append(idx.byHash[t.Hash()], i)
	}
	return idx
}

func (idx rowIndex) lookup(tok token.Token) (int, bool) {
	for _, i := range idx.byHash[tok.Hash()] {
		if idx.tokens[i].Equal(tok) {
			return i, true
		}
	}
	return 0, false
}

func topicIndex(topics []string) map[string]int {
	m := make(map[string]int, len(topics))
	for i, name := range topics {
		m[name] = i
	}
	return m
}

// errAttached is returned (wrapped) when ReshapeTopics is attempted on a
// matrix that is attached to externally owned memory; the topic_name list
// is frozen while an attachment is live.
func errAttached(op string) error {
	return fmt.Errorf("phimatrix: %s while attached: %w", op, artmerr.InvalidOperation)
}
