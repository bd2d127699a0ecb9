package theta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artm-core/artm/internal/artm/artmerr"
)

func sampleMatrix() *Matrix {
	return New([]string{"d1", "d2"}, []string{"Doc One", "Doc Two"}, []string{"t0", "t1", "t2"})
}

func TestNew_ZeroedAndShaped(t *testing.T) {
	m := sampleMatrix()
	assert.Equal(t, 2, m.ItemSize())
	assert.Equal(t, 3, m.TopicSize())
	assert.Equal(t, "d1", m.ItemID(0))
	assert.Equal(t, "Doc Two", m.ItemTitle(1))
	assert.Equal(t, "t1", m.TopicName(1))
	for t := 0; t < 3; t++ {
		assert.Zero(t, m.Get(0, t))
	}
}

func TestItemRow_LookupAndNotFound(t *testing.T) {
	m := sampleMatrix()
	i, ok := m.ItemRow("d2")
	require.True(t, ok)
	assert.Equal(t, 1, i)

	_, ok = m.ItemRow("missing")
	assert.False(t, ok)

	_, err := m.Lookup("missing")
	assert.ErrorIs(t, err, artmerr.NotFound)
}

func TestGetSetIncrease(t *testing.T) {
	m := sampleMatrix()
	m.Set(0, 1, 0.5)
	assert.Equal(t, 0.5, m.Get(0, 1))
	m.Increase(0, 1, 0.25)
	assert.InDelta(t, 0.75, m.Get(0, 1), 1e-12)
}

func TestFillUniform(t *testing.T) {
	m := sampleMatrix()
	m.FillUniform(0)
	for t := 0; t < 3; t++ {
		assert.InDelta(t, 1.0/3.0, m.Get(0, t), 1e-12)
	}
	assert.InDelta(t, 1.0, m.RowSum(0), 1e-12)
}

func TestNormalize_RescalesToOne(t *testing.T) {
	m := sampleMatrix()
	m.Set(0, 0, 2)
	m.Set(0, 1, 2)
	m.Set(0, 2, 0)
	m.Normalize(0)
	assert.InDelta(t, 0.5, m.Get(0, 0), 1e-12)
	assert.InDelta(t, 0.5, m.Get(0, 1), 1e-12)
	assert.InDelta(t, 0.0, m.Get(0, 2), 1e-12)
	assert.InDelta(t, 1.0, m.RowSum(0), 1e-12)
}

func TestNormalize_ZeroSumResetsToUniform(t *testing.T) {
	m := sampleMatrix()
	m.Set(0, 0, 0)
	m.Set(0, 1, -1) // negative mass, clamps to 0 and still sums <= 0
	m.Set(0, 2, 0)
	m.Normalize(0)
	for t := 0; t < 3; t++ {
		assert.InDelta(t, 1.0/3.0, m.Get(0, t), 1e-12)
	}
}

func TestNormalize_NegativeEntriesClampToZero(t *testing.T) {
	m := sampleMatrix()
	m.Set(0, 0, 3)
	m.Set(0, 1, -1)
	m.Set(0, 2, 1)
	m.Normalize(0)
	assert.InDelta(t, 0.75, m.Get(0, 0), 1e-12)
	assert.InDelta(t, 0.0, m.Get(0, 1), 1e-12)
	assert.InDelta(t, 0.25, m.Get(0, 2), 1e-12)
}

func TestRow_ReturnsBackingSlice(t *testing.T) {
	m := sampleMatrix()
	row := m.Row(1)
	row[0] = 9
	assert.Equal(t, 9.0, m.Get(1, 0))
}

func TestClone_IsIndependent(t *testing.T) {
	m := sampleMatrix()
	m.Set(0, 0, 1)
	c := m.Clone()
	c.Set(0, 0, 2)
	assert.Equal(t, 1.0, m.Get(0, 0))
	assert.Equal(t, 2.0, c.Get(0, 0))
}
