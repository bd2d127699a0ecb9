package token

import (
	"testing"

	"github.com/artm-core/artm/internal/artm/artmerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollection_AddIsIdempotent(t *testing.T) {
	c := NewCollection()
	id1 := c.Add(New("@word", "dog", ""))
	id2 := c.Add(New("@word", "dog", ""))
	assert.Equal(t, id1, id2)
	assert.Equal(t, 1, c.Len())
}

func TestCollection_InsertRejectsDuplicate(t *testing.T) {
	c := NewCollection()
	_, err := c.Insert(New("@word", "dog", ""))
	require.NoError(t, err)

	_, err = c.Insert(New("@word", "dog", ""))
	require.ErrorIs(t, err, artmerr.AlreadyExists)
}

func TestCollection_LookupAndToken_RoundTrip(t *testing.T) {
	c := NewCollection()
	tok := New("@word", "dog", "")
	id := c.Add(tok)

	got, ok := c.Token(id)
	require.True(t, ok)
	assert.True(t, got.Equal(tok))

	gotID, ok := c.Lookup(tok)
	require.True(t, ok)
	assert.Equal(t, id, gotID)
}

func TestCollection_Token_OutOfRange(t *testing.T) {
	c := NewCollection()
	_, ok := c.Token(42)
	assert.False(t, ok)
}

func TestCollection_Each_InsertionOrder(t *testing.T) {
	c := NewCollection()
	c.Add(New("@word", "b", ""))
	c.Add(New("@word", "a", ""))
	c.Add(New("@word", "c", ""))

	var order []string
	c.Each(func(id int, tok Token) bool {
		order = append(order, tok.Keyword)
		return true
	})
	assert.Equal(t, []string{"b", "a", "c"}, order)
}

func TestCollection_Each_StopsEarly(t *testing.T) {
	c := NewCollection()
	c.Add(New("@word", "a", ""))
	c.Add(New("@word", "b", ""))
	c.Add(New("@word", "c", ""))

	var visited int
	c.Each(func(id int, tok Token) bool {
		visited++
		return visited < 2
	})
	assert.Equal(t, 2, visited)
}
