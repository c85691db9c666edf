package memtable

// SortedSet is what the flush subsystem needs from a frozen buffer.
type SortedSet interface {
	Sorted() []Record
}

var _ SortedSet = (*Frozen)(nil)

// Sorted returns every record ordered by key, newest version first. The
// records share their Key and Value with the buffer and must be treated as
// read-only.
func (f *Frozen) Sorted() []Record {
	result := make([]Record, 0, f.sl.Len())
	for rec := range f.sl.All() {
		result = append(result, rec)
	}

	return result
}
