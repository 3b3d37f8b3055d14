package cache

import (
	"sync"

	"github.com/IvanBrykalov/blockcache/internal/util"
)

// bucket is one hash shard of the slot pool: a short-held lock and the list
// of slots whose block number hashes here.
type bucket struct {
	// ---- guarded by mu ----
	mu    sync.Mutex
	slots []*Slot // resident slots are slots[:n]; cap is the pool size
	n     int

	// ---- hot counters (separate cache lines to avoid false sharing) ----
	_      util.CacheLinePad
	hits   util.Counter
	misses util.Counter
	evicts util.Counter
	reads  util.Counter
	writes util.Counter
}

// newBucket returns an empty bucket able to hold the whole pool.
func newBucket(poolSize int) *bucket {
	return &bucket{slots: make([]*Slot, poolSize)}
}

// -------------------- internals (mu held) --------------------

// lookup returns the resident slot caching (dev, blockNo), or nil.
func (b *bucket) lookup(dev uint32, blockNo uint64) *Slot {
	for _, s := range b.slots[:b.n] {
		if s.is(dev, blockNo) {
			return s
		}
	}
	return nil
}

// push appends s and records its position.
func (b *bucket) push(s *Slot) {
	s.ord = b.n
	b.slots[b.n] = s
	b.n++
}

// remove detaches s in O(1) by moving the last slot into its position.
func (b *bucket) remove(s *Slot) {
	last := b.n - 1
	if s.ord < last {
		moved := b.slots[last]
		b.slots[s.ord] = moved
		moved.ord = s.ord
	}
	b.slots[last] = nil
	b.n--
	s.ord = -1
}

// len returns the number of resident slots.
func (b *bucket) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.n
}
