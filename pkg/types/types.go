package types

// Key is an immutable byte slice type alias used for clarity.
type Key = []byte

// Value is an immutable byte slice type alias used for clarity.
type Value = []byte

// SequenceNumber represents a monotonically increasing sequence used for MVCC and WAL ordering.
type SequenceNumber uint64

// MaxSequenceNumber makes every stored version visible to a lookup.
const MaxSequenceNumber = SequenceNumber(^uint64(0))
