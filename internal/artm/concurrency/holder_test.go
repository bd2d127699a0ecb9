package concurrency

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThreadSafeHolder_GetSet(t *testing.T) {
	h := NewThreadSafeHolder(1)
	assert.Equal(t, 1, h.Get())
	h.Set(2)
	assert.Equal(t, 2, h.Get())
}

func TestThreadSafeHolder_ConcurrentReadersSeeWholeSnapshots(t *testing.T) {
	type snap struct{ a, b int }
	h := NewThreadSafeHolder(snap{1, 1})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := h.Get()
			assert.Equal(t, s.a, s.b) // never a torn read
		}()
	}

	for i := 0; i < 100; i++ {
		h.Set(snap{i, i})
	}
	wg.Wait()
}
