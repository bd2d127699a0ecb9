package token

import (
	"fmt"

	"github.com/artm-core/artm/internal/artm/artmerr"
)

// Collection is a bijection between Token triples and dense integer ids,
// with O(1) average lookup in either direction and insertion-order
// iteration.
type Collection struct {
	byID    []Token
	byToken map[uint64][]int // hash bucket -> candidate ids, disambiguated on Equal
}

// NewCollection returns an empty TokenCollection.
func NewCollection() *Collection {
	return &Collection{byToken: make(map[uint64][]int)}
}

// Add interns t, returning its id. Re-adding an identical token returns the
// existing id rather than erroring; Insert is the strict variant used where
// duplicates must be rejected.
func (c *Collection) Add(t Token) int {
	if id, ok := c.Lookup(t); ok {
		return id
	}
	id := len(c.byID)
	c.byID = append(c.byID, t)
	c.byToken[t.hash] = append(c.byToken[t.hash], id)
	return id
}

// Insert interns t, failing with artmerr.AlreadyExists if an identical
// token is already present.
func (c *Collection) Insert(t Token) (int, error) {
	if _, ok := c.Lookup(t); ok {
		return 0, fmt.Errorf("insert token %q/%q: %w", t.ClassID, t.Keyword, artmerr.AlreadyExists)
	}
	return c.Add(t), nil
}

// Lookup returns the id for t, if present.
func (c *Collection) Lookup(t Token) (int, bool) {
	for _, id := range c.byToken[t.hash] {
		if c.byID[id].Equal(t) {
			return id, true
		}
	}
	return 0, false
}

// Token returns the Token for id. ok is false if id is out of range.
func (c *Collection) Token(id int) (Token, bool) {
	if id < 0 || id >= len(c.byID) {
		return Token{}, false
	}
	return c.byID[id], true
}

// Len returns the number of distinct tokens interned.
func (c *Collection) Len() int { return len(c.byID) }

// Each calls fn for every token in insertion order. Iteration stops early
// if fn returns false.
func (c *Collection) Each(fn func(id int, t Token) bool) {
	for id, t := range c.byID {
		if !fn(id, t) {
			return
		}
	}
}
