package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTransactionType_SortsAndDeduplicates(t *testing.T) {
	tt := NewTransactionType([]string{"@author", "@word", "@word", "@tag"})
	assert.Equal(t, 3, tt.Size())
	assert.Equal(t, []string{"@author", "@tag", "@word"}, tt.ClassIDs())
}

func TestTransactionType_Contains(t *testing.T) {
	tt := NewTransactionType([]string{"@word", "@tag"})
	assert.True(t, tt.Contains("@word"))
	assert.False(t, tt.Contains("@author"))
}

func TestTransactionType_JoinedIsStableKey(t *testing.T) {
	a := NewTransactionType([]string{"@word", "@tag"})
	b := NewTransactionType([]string{"@tag", "@word"})
	assert.Equal(t, a.Joined(), b.Joined())
}
