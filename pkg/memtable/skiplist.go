package memtable

import (
	"bytes"
	"fmt"
	"iter"
	"math"
	"math/rand/v2"

	"javelin/pkg/types"
)

// headIdx is the arena slot of the head sentinel. No node links back to the
// head, so it doubles as the nil link.
const headIdx uint32 = 0

type node struct {
	rec  Record
	next []uint32
}

// SkipList is an ordered multi-version index. Records are sorted by key and,
// within a key, by descending sequence number, so the newest version of a key
// is always the first one reached by a forward scan.
//
// Nodes live in a single arena and link to each other by slot index. Nodes are
// never removed and a record is never rewritten after insertion; only link
// slots change. SkipList is not safe for concurrent use while being written.
type SkipList struct {
	nodes  []node
	p      float64
	levels int
	seed   uint64
	rng    *rand.Rand

	size    uint64
	maxSeqN types.SequenceNumber
}

// NewSkipList builds an empty index with min(maxLevels, ceil(log_{1/p}(expectedNumKeys)))
// levels, at least one. p must be in (0, 1). A zero seed is replaced by a random
// one; Seed reports the seed in use.
func NewSkipList(p float64, expectedNumKeys, maxLevels uint32, seed uint64) *SkipList {
	if !(p > 0 && p < 1) {
		panic(fmt.Sprintf("memtable: skip list probability %v not in (0, 1)", p))
	}

	levels := 1
	if expectedNumKeys > 1 {
		levels = int(math.Ceil(math.Log(float64(expectedNumKeys)) / math.Log(1/p)))
	}
	levels = max(min(levels, int(maxLevels)), 1)

	for seed == 0 {
		seed = rand.Uint64()
	}

	s := &SkipList{
		nodes:  make([]node, 1, 1+int(min(expectedNumKeys, 1<<16))),
		p:      p,
		levels: levels,
		seed:   seed,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
	s.nodes[headIdx] = node{next: make([]uint32, levels)}

	return s
}

// randomLevel draws a level in [1, levels] from a geometric distribution.
func (s *SkipList) randomLevel() int {
	lvl := 1
	for lvl < s.levels && s.rng.Float64() < s.p {
		lvl++
	}
	return lvl
}

// Insert links rec into the index. Empty records are ignored. A record whose
// key and sequence number are already present is rejected with
// ErrDuplicateVersion before any link is touched.
func (s *SkipList) Insert(rec Record) error {
	if rec.IsEmpty() {
		return nil
	}
	if uint64(len(s.nodes)) > math.MaxUint32-1 {
		return fmt.Errorf("memtable: skip list arena is full (%d nodes)", len(s.nodes)-1)
	}

	update := make([]uint32, s.levels)
	x := headIdx
	for i := s.levels - 1; i >= 0; i-- {
		for {
			nx := s.nodes[x].next[i]
			if nx == headIdx {
				break
			}
			c := s.nodes[nx].rec.compare(rec.Key, rec.SeqNum)
			if c == 0 {
				return fmt.Errorf("%w: key=%q seq=%d", ErrDuplicateVersion, rec.Key, rec.SeqNum)
			}
			if c > 0 {
				break
			}
			x = nx
		}
		update[i] = x
	}

	level := s.randomLevel()
	idx := uint32(len(s.nodes))
	s.nodes = append(s.nodes, node{
		rec:  rec.clone(),
		next: make([]uint32, level),
	})

	for i := 0; i < level; i++ {
		s.nodes[idx].next[i] = s.nodes[update[i]].next[i]
		s.nodes[update[i]].next[i] = idx
	}

	s.size += rec.size()
	s.maxSeqN = max(s.maxSeqN, rec.SeqNum)

	return nil
}

// Get returns the newest version of key whose sequence number is at most maxSeqN.
// The returned Key and Value alias the index and must not be modified.
func (s *SkipList) Get(key types.Key, maxSeqN types.SequenceNumber) (Record, bool) {
	x := headIdx
	for i := s.levels - 1; i >= 0; i-- {
		for {
			nx := s.nodes[x].next[i]
			// stop at the first node ordered at or after (key, maxSeqN)
			if nx == headIdx || s.nodes[nx].rec.compare(key, maxSeqN) >= 0 {
				break
			}
			x = nx
		}
	}

	nx := s.nodes[x].next[0]
	if nx == headIdx || !bytes.Equal(s.nodes[nx].rec.Key, key) {
		return Record{}, false
	}

	return s.nodes[nx].rec, true
}

// All yields every record in index order. Yielded records alias the index
// and must not be modified.
func (s *SkipList) All() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for x := s.nodes[headIdx].next[0]; x != headIdx; x = s.nodes[x].next[0] {
			if !yield(s.nodes[x].rec) {
				return
			}
		}
	}
}

// Len returns the number of stored records.
func (s *SkipList) Len() int {
	return len(s.nodes) - 1
}

// ApproximateSize returns the payload bytes held by the index.
func (s *SkipList) ApproximateSize() uint64 {
	return s.size
}

// MaxSeqNum returns the highest sequence number inserted so far.
func (s *SkipList) MaxSeqNum() types.SequenceNumber {
	return s.maxSeqN
}

func (s *SkipList) Levels() int {
	return s.levels
}

func (s *SkipList) Seed() uint64 {
	return s.seed
}
