package memtable

import (
	"fmt"
	"sync"

	"javelin/pkg/types"
)

// Mutable is the write side of a memtable buffer. Every call holds one coarse
// lock for the duration of the index operation, so readers and writers are
// serialized in lock acquisition order.
type Mutable struct {
	mu       sync.Mutex
	sl       *SkipList
	sealed   bool
	poisoned bool
}

func NewMutable(sl *SkipList) *Mutable {
	return &Mutable{sl: sl}
}

// withLock runs fn under the buffer lock. A panic inside fn poisons the
// buffer before it propagates; every later call fails with ErrLockPoisoned.
func (m *Mutable) withLock(fn func(sl *SkipList) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.poisoned {
		return ErrLockPoisoned
	}

	defer func() {
		if r := recover(); r != nil {
			m.poisoned = true
			panic(r)
		}
	}()

	return fn(m.sl)
}

func (m *Mutable) Insert(rec Record) error {
	return m.withLock(func(sl *SkipList) error {
		if m.sealed {
			return ErrBufferFrozen
		}
		return sl.Insert(rec)
	})
}

// Get looks key up at snapshot maxSeqN. A frozen buffer still answers reads.
// The returned record aliases the buffer's storage and must not be modified.
func (m *Mutable) Get(key types.Key, maxSeqN types.SequenceNumber) (Record, bool, error) {
	var (
		rec Record
		ok  bool
	)
	err := m.withLock(func(sl *SkipList) error {
		rec, ok = sl.Get(key, maxSeqN)
		return nil
	})
	if err != nil {
		return Record{}, false, err
	}

	return rec, ok, nil
}

// Freeze seals the buffer and hands its index to a Frozen buffer. After Freeze
// returns, Insert fails with ErrBufferFrozen and the index is never written again.
func (m *Mutable) Freeze() (*Frozen, error) {
	var sl *SkipList
	err := m.withLock(func(s *SkipList) error {
		if m.sealed {
			return ErrBufferFrozen
		}
		m.sealed = true
		sl = s
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to freeze buffer: %w", err)
	}

	return newFrozen(sl), nil
}

func (m *Mutable) Len() (int, error) {
	var n int
	err := m.withLock(func(sl *SkipList) error {
		n = sl.Len()
		return nil
	})
	if err != nil {
		return 0, err
	}

	return n, nil
}

func (m *Mutable) ApproximateSize() (uint64, error) {
	var size uint64
	err := m.withLock(func(sl *SkipList) error {
		size = sl.ApproximateSize()
		return nil
	})
	if err != nil {
		return 0, err
	}

	return size, nil
}

// seal closes the buffer to writes without handing out its index.
func (m *Mutable) seal() error {
	return m.withLock(func(*SkipList) error {
		m.sealed = true
		return nil
	})
}
