// Package batch is the in-memory representation of one training batch:
// its token table, items (bags/sequences of token occurrences), and
// transaction layout.
package batch

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/artm-core/artm/internal/artm/artmerr"
	"github.com/artm-core/artm/internal/artm/token"
)

// Item is one document-like unit: a sequence of token occurrences grouped
// into transactions.
type Item struct {
	ID    string
	Title string

	// TokenID indexes into the owning Batch's Tokens table.
	TokenID     []int
	TokenWeight []float64

	// TransactionStartIndex has length len(transactions)+1; the tokens of
	// transaction k are TokenID[TransactionStartIndex[k]:TransactionStartIndex[k+1]].
	TransactionStartIndex []int
	// TransactionTypenameID indexes into the owning Batch's transaction
	// typename table, parallel to the transactions implied by
	// TransactionStartIndex.
	TransactionTypenameID []int
}

// Validate checks the per-item invariants from the data model: TokenID and
// TokenWeight have equal length, TransactionStartIndex is strictly
// increasing, and its last entry equals len(TokenID).
func (it Item) Validate() error {
	if len(it.TokenID) != len(it.TokenWeight) {
		return fmt.Errorf("item %q: token_id/token_weight length mismatch (%d vs %d): %w",
			it.ID, len(it.TokenID), len(it.TokenWeight), artmerr.InvalidArgument)
	}
	if len(it.TransactionStartIndex) == 0 {
		return fmt.Errorf("item %q: empty transaction_start_index: %w", it.ID, artmerr.InvalidArgument)
	}
	for i := 1; i < len(it.TransactionStartIndex); i++ {
		if it.TransactionStartIndex[i] <= it.TransactionStartIndex[i-1] {
			return fmt.Errorf("item %q: transaction_start_index not strictly increasing at %d: %w",
				it.ID, i, artmerr.InvalidArgument)
		}
	}
	if it.TransactionStartIndex[len(it.TransactionStartIndex)-1] != len(it.TokenID) {
		return fmt.Errorf("item %q: transaction_start_index last entry %d != token count %d: %w",
			it.ID, it.TransactionStartIndex[len(it.TransactionStartIndex)-1], len(it.TokenID), artmerr.InvalidArgument)
	}
	if len(it.TransactionTypenameID) != len(it.TransactionStartIndex)-1 {
		return fmt.Errorf("item %q: transaction_typename_id length %d != transaction count %d: %w",
			it.ID, len(it.TransactionTypenameID), len(it.TransactionStartIndex)-1, artmerr.InvalidArgument)
	}
	return nil
}

// NumTransactions returns the number of transactions in the item.
func (it Item) NumTransactions() int {
	if len(it.TransactionStartIndex) == 0 {
		return 0
	}
	return len(it.TransactionStartIndex) - 1
}

// Transaction returns the token occurrence range [start, end) of
// transaction k.
func (it Item) Transaction(k int) (start, end int) {
	return it.TransactionStartIndex[k], it.TransactionStartIndex[k+1]
}

// Batch is the unit of work dispatched to a Processor worker: a token
// table, parallel class_id per token, a transaction typename table, and the
// items that reference them.
type Batch struct {
	ID                   string
	Tokens               []token.Token
	ClassID              []string // parallel to Tokens
	TransactionTypenames []string // decoded transaction typename table
	Items                []Item
}

// New allocates an empty batch with a fresh UUID id.
func New() *Batch {
	return &Batch{ID: uuid.NewString()}
}

// Validate checks the batch-level invariant (non-empty token table) and
// every item's invariants. The first invalid item's error is returned;
// callers that want per-item drop-and-continue semantics should call
// Item.Validate directly per item instead (see processor package).
func (b *Batch) Validate() error {
	if len(b.Tokens) == 0 {
		return fmt.Errorf("batch %q: empty token table: %w", b.ID, artmerr.InvalidArgument)
	}
	for _, it := range b.Items {
		if err := it.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// GatherTokens implements token.GatherSource.
func (b *Batch) GatherTokens() []token.Token { return b.Tokens }

// GatherItems implements token.GatherSource.
func (b *Batch) GatherItems() [][]token.GatherOccurrence {
	out := make([][]token.GatherOccurrence, len(b.Items))
	for i, it := range b.Items {
		occs := make([]token.GatherOccurrence, len(it.TokenID))
		for j, tid := range it.TokenID {
			occs[j] = token.GatherOccurrence{TokenIndex: tid, Weight: it.TokenWeight[j]}
		}
		out[i] = occs
	}
	return out
}
