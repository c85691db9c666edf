package memtable

import (
	"bytes"

	"javelin/pkg/types"
)

// Kind enumerates mutation kinds.
type Kind uint8

const (
	// KindEmpty is the sentinel carried by the skip list head. It is never stored.
	KindEmpty Kind = iota
	KindPut
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindPut:
		return "put"
	case KindDelete:
		return "delete"
	default:
		return "empty"
	}
}

// Mutation is a single logical operation applied to a key.
type Mutation struct {
	Kind  Kind
	Key   types.Key
	Value types.Value
}

func Put(key types.Key, value types.Value) Mutation {
	return Mutation{Kind: KindPut, Key: key, Value: value}
}

func Delete(key types.Key) Mutation {
	return Mutation{Kind: KindDelete, Key: key}
}

// Record is a mutation tagged with the sequence number assigned by the writer.
type Record struct {
	Mutation
	SeqNum types.SequenceNumber
}

func NewRecord(m Mutation, seqN types.SequenceNumber) Record {
	return Record{Mutation: m, SeqNum: seqN}
}

// IsEmpty reports whether r carries the sentinel mutation.
func (r Record) IsEmpty() bool {
	return r.Kind == KindEmpty
}

// Equal compares kind, key, value and sequence number.
func (r Record) Equal(other Record) bool {
	return r.Kind == other.Kind &&
		r.SeqNum == other.SeqNum &&
		bytes.Equal(r.Key, other.Key) &&
		bytes.Equal(r.Value, other.Value)
}

// compare orders records by key ascending, then by sequence number descending.
func (r *Record) compare(key types.Key, seqN types.SequenceNumber) int {
	if c := bytes.Compare(r.Key, key); c != 0 {
		return c
	}
	switch {
	case r.SeqNum > seqN:
		return -1
	case r.SeqNum < seqN:
		return 1
	default:
		return 0
	}
}

func (r *Record) size() uint64 {
	const seqNSize = 8
	return uint64(len(r.Key)) + uint64(len(r.Value)) + seqNSize + 1
}

func (r Record) clone() Record {
	r.Key = bytes.Clone(r.Key)
	if r.Value != nil {
		r.Value = bytes.Clone(r.Value)
	}
	return r
}
