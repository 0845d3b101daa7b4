package recommender

import "sync/atomic"

// indexSnapshot maps a product id to its ranked similarity list. A snapshot
// is immutable once published; a rebuild always constructs a new one.
type indexSnapshot map[int64][]RankedProduct

// Index holds the currently published recommendation mapping. Single
// writer (the active rebuild), many readers. Readers always observe a
// complete snapshot, never a partially built one, and never block on a
// rebuild in flight.
type Index struct {
	snapshot atomic.Pointer[indexSnapshot]
}

// NewIndex creates an index with an empty published snapshot
func NewIndex() *Index {
	idx := &Index{}
	empty := make(indexSnapshot)
	idx.snapshot.Store(&empty)
	return idx
}

// Get returns the ranked similarity list for a product, or nil when the
// index has no entry. No entry uniformly covers "not rebuilt yet",
// "nothing above the threshold" and "unknown id".
func (idx *Index) Get(productID int64) []RankedProduct {
	return (*idx.snapshot.Load())[productID]
}

// Len returns the number of products with at least one ranked edge
func (idx *Index) Len() int {
	return len(*idx.snapshot.Load())
}

// publish atomically swaps in a fully built snapshot
func (idx *Index) publish(s indexSnapshot) {
	idx.snapshot.Store(&s)
}
