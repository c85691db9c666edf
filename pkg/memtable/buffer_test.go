package memtable

import (
	"fmt"
	"testing"

	"javelin/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newTestMutable() *Mutable {
	return NewMutable(NewSkipList(0.5, 1_000, 8, 1))
}

func TestMutable_InsertAndGet(t *testing.T) {
	m := newTestMutable()

	require.NoError(t, m.Insert(putInt(1, 1)))
	require.NoError(t, m.Insert(delInt(1, 2)))

	rec, ok, err := m.Get(intKey(1), 1)
	require.NoError(t, err)
	assertRecord(t, putInt(1, 1), rec, ok)

	rec, ok, err = m.Get(intKey(1), 2)
	require.NoError(t, err)
	assertRecord(t, delInt(1, 2), rec, ok)

	_, ok, err = m.Get(intKey(2), types.MaxSequenceNumber)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := m.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	size, err := m.ApproximateSize()
	require.NoError(t, err)
	assert.Positive(t, size)
}

func TestMutable_DuplicateVersion(t *testing.T) {
	m := newTestMutable()

	require.NoError(t, m.Insert(putInt(1, 1)))
	require.ErrorIs(t, m.Insert(putInt(1, 1)), ErrDuplicateVersion)

	// a rejected duplicate does not poison the buffer
	require.NoError(t, m.Insert(putInt(1, 2)))
}

func TestMutable_PoisonedAfterPanic(t *testing.T) {
	m := newTestMutable()
	require.NoError(t, m.Insert(putInt(1, 1)))

	assert.PanicsWithValue(t, "boom", func() {
		_ = m.withLock(func(*SkipList) error {
			panic("boom")
		})
	})

	require.ErrorIs(t, m.Insert(putInt(2, 2)), ErrLockPoisoned)

	_, ok, err := m.Get(intKey(1), 1)
	require.ErrorIs(t, err, ErrLockPoisoned)
	assert.False(t, ok)

	_, err = m.Freeze()
	require.ErrorIs(t, err, ErrLockPoisoned)

	_, err = m.Len()
	require.ErrorIs(t, err, ErrLockPoisoned)

	_, err = m.ApproximateSize()
	require.ErrorIs(t, err, ErrLockPoisoned)
}

func TestMutable_Freeze(t *testing.T) {
	m := newTestMutable()
	for i := 0; i < 100; i++ {
		require.NoError(t, m.Insert(putInt(i, types.SequenceNumber(i+1))))
	}

	frozen, err := m.Freeze()
	require.NoError(t, err)
	assert.Equal(t, 100, frozen.Len())

	require.ErrorIs(t, m.Insert(putInt(500, 500)), ErrBufferFrozen)

	_, err = m.Freeze()
	require.ErrorIs(t, err, ErrBufferFrozen)

	// the sealed buffer still answers reads
	rec, ok, err := m.Get(intKey(10), types.MaxSequenceNumber)
	require.NoError(t, err)
	assertRecord(t, putInt(10, 11), rec, ok)
}

func TestMutable_ConcurrentWriters(t *testing.T) {
	const (
		writers   = 8
		perWriter = 500
	)
	m := newTestMutable()

	var g errgroup.Group
	for w := 0; w < writers; w++ {
		g.Go(func() error {
			for i := 0; i < perWriter; i++ {
				seqN := types.SequenceNumber(w*perWriter + i + 1)
				key := fmt.Appendf(nil, "k%03d", i)
				if err := m.Insert(NewRecord(Put(key, []byte{byte(w)}), seqN)); err != nil {
					return err
				}
				if _, ok, err := m.Get(key, seqN); err != nil || !ok {
					return fmt.Errorf("lost own write %s@%d: %v", key, seqN, err)
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	n, err := m.Len()
	require.NoError(t, err)
	require.Equal(t, writers*perWriter, n)

	for i := 0; i < perWriter; i++ {
		key := fmt.Appendf(nil, "k%03d", i)
		rec, ok, err := m.Get(key, types.MaxSequenceNumber)
		require.NoError(t, err)
		require.True(t, ok)
		// writer w uses sequence numbers from its own block; the last writer's is newest
		assert.Equal(t, types.SequenceNumber((writers-1)*perWriter+i+1), rec.SeqNum)
	}
}
