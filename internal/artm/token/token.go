// Package token implements the canonical (modality, keyword) interning used
// across the artm core: Token identity, TransactionType grouping, and the
// Dictionary of per-token statistics built on top of a TokenCollection.
package token

import (
	"hash/fnv"

	"golang.org/x/text/unicode/norm"
)

// DefaultClass is the modality used when a token carries no explicit
// class_id, matching the wire-format default from the batch file format.
const DefaultClass = "@default_class"

// Token is the triple (class_id, keyword, transaction_typename) that
// identifies a token across a collection. Tokens compare by triple
// equality and order by (Keyword, ClassID, TransactionTypename).
type Token struct {
	ClassID             string
	Keyword             string
	TransactionTypename string
	hash                uint64
}

// New normalizes keyword to NFC before interning so tokens that differ only
// by Unicode normalization form compare equal.
func New(classID, keyword, transactionTypename string) Token {
	if classID == "" {
		classID = DefaultClass
	}
	keyword = norm.NFC.String(keyword)

	t := Token{ClassID: classID, Keyword: keyword, TransactionTypename: transactionTypename}
	t.hash = hashTriple(t.ClassID, t.Keyword, t.TransactionTypename)
	return t
}

// Hash returns the cached FNV-1a hash of the triple.
func (t Token) Hash() uint64 { return t.hash }

// Equal reports triple equality.
func (t Token) Equal(o Token) bool {
	return t.hash == o.hash && t.ClassID == o.ClassID &&
		t.Keyword == o.Keyword && t.TransactionTypename == o.TransactionTypename
}

// Less orders tokens by (Keyword, ClassID, TransactionTypename), the order
// specified for the data model.
func (t Token) Less(o Token) bool {
	if t.Keyword != o.Keyword {
		return t.Keyword < o.Keyword
	}
	if t.ClassID != o.ClassID {
		return t.ClassID < o.ClassID
	}
	return t.TransactionTypename < o.TransactionTypename
}

func hashTriple(classID, keyword, transactionTypename string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(classID))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(keyword))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(transactionTypename))
	return h.Sum64()
}

// SeededScore derives a deterministic pseudo-random value in [0,1) from the
// token's hash and a seed, used by InitializeModel to seed Φ without a
// process-global RNG.
func (t Token) SeededScore(seed int64) float64 {
	h := fnv.New64a()
	var buf [8]byte
	for i := range buf {
		buf[i] = byte(seed >> (8 * i))
	}
	_, _ = h.Write(buf[:])
	var hb [8]byte
	v := t.hash
	for i := range hb {
		hb[i] = byte(v >> (8 * i))
	}
	_, _ = h.Write(hb[:])
	// The top 53 bits fit a float64 mantissa exactly, so the quotient stays below 1.
	return float64(h.Sum64()>>11) / (1 << 53)
}
