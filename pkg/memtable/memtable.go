package memtable

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"javelin/pkg/config"
	"javelin/pkg/dberrors"
	"javelin/pkg/types"

	"github.com/google/uuid"
)

// seedStride spreads per-buffer seeds when a fixed seed is configured.
const seedStride = 0x9e3779b97f4a7c15

// Memtable owns one active buffer and the frozen buffers waiting to be
// persisted. Reads check the active buffer first and then the frozen buffers,
// most recently frozen first.
type Memtable struct {
	cfg *config.MemtableConfig
	gen atomic.Uint64

	active atomic.Pointer[Mutable]

	mu sync.Mutex
	// frozen tables, newest first. The slice is replaced on every change and
	// never modified in place, so a copy of the header is a stable snapshot.
	imm []*Frozen

	lifecycle sync.Mutex // serializes Freeze and Close
	closed    atomic.Bool
	flushChan chan *Frozen
}

func New(cfg config.MemtableConfig) (*Memtable, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mt := Memtable{cfg: &cfg}
	if cfg.FlushQueueSize > 0 {
		mt.flushChan = make(chan *Frozen, cfg.FlushQueueSize)
	}
	mt.active.Store(mt.newMutable())

	return &mt, nil
}

func (mt *Memtable) newMutable() *Mutable {
	gen := mt.gen.Add(1) - 1
	seed := mt.cfg.Seed
	if seed != 0 {
		seed += gen * seedStride
	}

	return NewMutable(NewSkipList(
		mt.cfg.Probability,
		mt.cfg.ExpectedNumKeys,
		mt.cfg.MaxLevels,
		seed,
	))
}

// Insert writes rec into the active buffer.
func (mt *Memtable) Insert(rec Record) error {
	for {
		if mt.closed.Load() {
			return dberrors.ErrClosed
		}

		err := mt.active.Load().Insert(rec)
		if errors.Is(err, ErrBufferFrozen) {
			// a freeze or Close sealed the buffer we loaded; both finish
			// with it before releasing mu
			mt.mu.Lock()
			mt.mu.Unlock() //nolint:staticcheck // empty critical section waits for the swap
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to insert into active buffer: %w", err)
		}
		return nil
	}
}

// Get returns the newest version of key visible at maxSeqN. A miss is
// reported as ok == false with a nil error. The record aliases buffer storage
// and must not be modified.
func (mt *Memtable) Get(key types.Key, maxSeqN types.SequenceNumber) (Record, bool, error) {
	rec, ok, err := mt.active.Load().Get(key, maxSeqN)
	if err != nil {
		return Record{}, false, fmt.Errorf("failed to get from active buffer: %w", err)
	}
	if ok {
		return rec, true, nil
	}

	for _, frozen := range mt.immutable() {
		if rec, ok = frozen.Get(key, maxSeqN); ok {
			return rec, true, nil
		}
	}

	return Record{}, false, nil
}

// Freeze seals the active buffer, puts it in front of the immutable set and
// installs a fresh active buffer, all under the immutable-set lock. When a
// flush queue is configured the frozen buffer is also offered on FlushChan. If
// the queue is full it is skipped with a warning; it stays in Immutable until
// evicted.
func (mt *Memtable) Freeze() (*Frozen, error) {
	mt.lifecycle.Lock()
	defer mt.lifecycle.Unlock()

	if mt.closed.Load() {
		return nil, dberrors.ErrClosed
	}

	mt.mu.Lock()
	frozen, err := mt.active.Load().Freeze()
	if err != nil {
		mt.mu.Unlock()
		return nil, fmt.Errorf("failed to freeze active buffer: %w", err)
	}

	imm := make([]*Frozen, 0, len(mt.imm)+1)
	imm = append(imm, frozen)
	mt.imm = append(imm, mt.imm...)
	mt.active.Store(mt.newMutable())
	immCount := len(mt.imm)
	mt.mu.Unlock()

	slog.Debug("memtable frozen",
		"id", frozen.ID(),
		"records", frozen.Len(),
		"size", frozen.ApproximateSize(),
		"max_seq", frozen.MaxSeqNum(),
		"immutable", immCount,
	)

	if mt.flushChan != nil {
		select {
		case mt.flushChan <- frozen:
		default:
			slog.Warn("flush queue is full, frozen buffer not queued",
				"id", frozen.ID(),
				"queue_size", cap(mt.flushChan),
			)
		}
	}

	return frozen, nil
}

// Evict drops a frozen buffer once the flush subsystem has persisted it.
func (mt *Memtable) Evict(id uuid.UUID) bool {
	mt.mu.Lock()
	i := slices.IndexFunc(mt.imm, func(f *Frozen) bool {
		return f.ID() == id
	})
	if i < 0 {
		mt.mu.Unlock()
		return false
	}

	imm := make([]*Frozen, 0, len(mt.imm)-1)
	imm = append(imm, mt.imm[:i]...)
	mt.imm = append(imm, mt.imm[i+1:]...)
	immCount := len(mt.imm)
	mt.mu.Unlock()

	slog.Debug("memtable evicted", "id", id, "immutable", immCount)

	return true
}

func (mt *Memtable) immutable() []*Frozen {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.imm
}

// Immutable returns the frozen buffers, most recently frozen first.
func (mt *Memtable) Immutable() []*Frozen {
	return slices.Clone(mt.immutable())
}

// ActiveSize reports the payload bytes of the active buffer, for callers
// deciding when to freeze.
func (mt *Memtable) ActiveSize() (uint64, error) {
	size, err := mt.active.Load().ApproximateSize()
	if err != nil {
		return 0, fmt.Errorf("failed to size active buffer: %w", err)
	}

	return size, nil
}

// FlushChan delivers frozen buffers in freeze order. It is nil when the
// flush queue is disabled and is closed by Close.
func (mt *Memtable) FlushChan() <-chan *Frozen {
	return mt.flushChan
}

// Close seals the active buffer and closes the flush queue. Inserts that
// return before Close are kept; any Insert or Freeze after it fails with
// dberrors.ErrClosed. Reads keep working.
func (mt *Memtable) Close() {
	mt.lifecycle.Lock()
	defer mt.lifecycle.Unlock()

	if mt.closed.Swap(true) {
		return
	}

	mt.mu.Lock()
	err := mt.active.Load().seal()
	mt.mu.Unlock()
	if err != nil {
		slog.Warn("failed to seal active buffer on close", "error", err)
	}

	if mt.flushChan != nil {
		close(mt.flushChan)
	}

	slog.Info("memtable closed", "immutable", len(mt.immutable()))
}
