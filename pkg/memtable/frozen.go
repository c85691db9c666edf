package memtable

import (
	"time"

	"javelin/pkg/types"

	"github.com/google/uuid"
)

// Frozen is a buffer closed to writes. Its index is never modified again, so
// Get needs no locking and may be called from any number of goroutines.
type Frozen struct {
	id       uuid.UUID
	frozenAt time.Time
	sl       *SkipList
}

func newFrozen(sl *SkipList) *Frozen {
	return &Frozen{
		id:       uuid.New(),
		frozenAt: time.Now(),
		sl:       sl,
	}
}

// ID identifies the buffer to the flush subsystem; see Memtable.Evict.
func (f *Frozen) ID() uuid.UUID {
	return f.id
}

func (f *Frozen) FrozenAt() time.Time {
	return f.frozenAt
}

// Get returns the newest version of key visible at maxSeqN. The record aliases
// the buffer's storage; do not modify its Key or Value.
func (f *Frozen) Get(key types.Key, maxSeqN types.SequenceNumber) (Record, bool) {
	return f.sl.Get(key, maxSeqN)
}

func (f *Frozen) Len() int {
	return f.sl.Len()
}

func (f *Frozen) ApproximateSize() uint64 {
	return f.sl.ApproximateSize()
}

// MaxSeqNum is the newest sequence number the buffer holds.
func (f *Frozen) MaxSeqNum() types.SequenceNumber {
	return f.sl.MaxSeqNum()
}
