package clock

import (
	"sync"
	"testing"

	"javelin/pkg/types"

	"github.com/stretchr/testify/assert"
)

func TestAtomicClock_Next(t *testing.T) {
	ac := NewAtomic(10)
	assert.Equal(t, types.SequenceNumber(10), ac.Val())
	assert.Equal(t, types.SequenceNumber(11), ac.Next())
	assert.Equal(t, types.SequenceNumber(11), ac.Val())

	ac.Set(100)
	assert.Equal(t, types.SequenceNumber(101), ac.Next())
}

func TestAtomicClock_Unique(t *testing.T) {
	ac := NewAtomic(0)

	var (
		mu   sync.Mutex
		seen = make(map[types.SequenceNumber]struct{})
		wg   sync.WaitGroup
	)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]types.SequenceNumber, 0, 1000)
			for i := 0; i < 1000; i++ {
				local = append(local, ac.Next())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, s := range local {
				seen[s] = struct{}{}
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 8000)
	assert.Equal(t, types.SequenceNumber(8000), ac.Val())
}
