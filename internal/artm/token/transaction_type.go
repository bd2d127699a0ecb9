package token

import (
	"sort"
	"strings"
)

// transactionSeparator joins class_ids into the canonical TransactionType
// string. It is a control character unlikely to appear in a class_id, so the
// joined form round-trips without escaping.
const transactionSeparator = "\x1f"

// TransactionType is an unordered set of class_ids materialized as a
// canonical separator-joined string, used to weight joint-modality
// transactions.
type TransactionType struct {
	joined string
	set    map[string]struct{}
}

// NewTransactionType builds a TransactionType from a (possibly unsorted,
// possibly duplicated) slice of class_ids.
func NewTransactionType(classIDs []string) TransactionType {
	set := make(map[string]struct{}, len(classIDs))
	for _, c := range classIDs {
		set[c] = struct{}{}
	}
	sorted := make([]string, 0, len(set))
	for c := range set {
		sorted = append(sorted, c)
	}
	sort.Strings(sorted)
	return TransactionType{joined: strings.Join(sorted, transactionSeparator), set: set}
}

// Joined returns the canonical separator-joined string for this transaction
// type, suitable for use as a map key or a `transaction_typename`.
func (tt TransactionType) Joined() string { return tt.joined }

// Contains reports whether classID participates in this transaction type.
func (tt TransactionType) Contains(classID string) bool {
	_, ok := tt.set[classID]
	return ok
}

// ClassIDs returns the sorted, de-duplicated class_ids of this transaction
// type.
func (tt TransactionType) ClassIDs() []string {
	if tt.joined == "" {
		return nil
	}
	return strings.Split(tt.joined, transactionSeparator)
}

// Size returns the number of distinct class_ids in the transaction type.
func (tt TransactionType) Size() int { return len(tt.set) }
