package memtable

import "errors"

var (
	// ErrDuplicateVersion means a writer reused a sequence number for a key.
	// The index is left untouched; callers usually treat this as fatal.
	ErrDuplicateVersion = errors.New("memtable: duplicate key version")
	// ErrLockPoisoned is returned once a panic escaped while the buffer lock was held.
	ErrLockPoisoned = errors.New("memtable: buffer lock poisoned")
	// ErrBufferFrozen is returned on writes to a buffer that has been frozen.
	ErrBufferFrozen = errors.New("memtable: buffer is frozen")
)
