package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_DefaultsClassID(t *testing.T) {
	tok := New("", "apple", "")
	assert.Equal(t, DefaultClass, tok.ClassID)
}

func TestNew_NormalizesUnicode(t *testing.T) {
	// "café" as NFD (e + combining acute) vs NFC (precomposed é) must collide.
	nfd := New("@default_class", "café", "")
	nfc := New("@default_class", "café", "")
	assert.True(t, nfd.Equal(nfc))
	assert.Equal(t, nfd.Hash(), nfc.Hash())
}

func TestToken_Equal(t *testing.T) {
	a := New("@word", "dog", "")
	b := New("@word", "dog", "")
	c := New("@author", "dog", "")
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestToken_Less_OrdersByKeywordThenClassThenTransaction(t *testing.T) {
	a := New("@word", "apple", "")
	b := New("@word", "banana", "")
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))

	sameKeyword1 := New("@author", "apple", "")
	sameKeyword2 := New("@word", "apple", "")
	assert.True(t, sameKeyword1.Less(sameKeyword2))
}

func TestSeededScore_Deterministic(t *testing.T) {
	tok := New("@word", "dog", "")
	a := tok.SeededScore(1)
	b := tok.SeededScore(1)
	c := tok.SeededScore(2)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.GreaterOrEqual(t, a, 0.0)
	assert.Less(t, a, 1.0)
}
