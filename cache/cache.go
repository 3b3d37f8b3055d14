package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/IvanBrykalov/blockcache/internal/sleeplock"
	"github.com/IvanBrykalov/blockcache/internal/util"
	"github.com/IvanBrykalov/blockcache/policy/recycle"
)

// blockCache is a fixed pool of slots indexed by hash buckets.
// All methods are safe for concurrent use by multiple goroutines.
//
// Lock order: mu, then the target bucket, then the victim's bucket.
// The hit path takes a single bucket lock and never mu.
type blockCache struct {
	// mu serializes evictions. It is never held across a device transfer
	// or while waiting for a slot lock.
	mu sync.Mutex

	slots   []*Slot
	buckets []*bucket
	clock   Clock
	closed  atomic.Bool

	opt Options
	log *slog.Logger
}

// New constructs a cache with the provided Options.
// It panics if Slots <= 0 or Device is nil.
func New(opt Options) Cache {
	if opt.Slots <= 0 {
		panic("Slots must be > 0")
	}
	if opt.Device == nil {
		panic("Device must be set")
	}
	if opt.BlockSize <= 0 {
		opt.BlockSize = DefaultBlockSize
	}
	if opt.Buckets <= 0 {
		opt.Buckets = util.DefaultBucketCount(opt.Slots)
	}
	if opt.Policy == nil {
		opt.Policy = recycle.New()
	}
	if opt.Clock == nil {
		opt.Clock = &LogicalClock{}
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Logger == nil {
		opt.Logger = slog.New(slog.DiscardHandler)
	}

	c := &blockCache{
		slots:   make([]*Slot, opt.Slots),
		buckets: make([]*bucket, opt.Buckets),
		clock:   opt.Clock,
		opt:     opt,
		log:     opt.Logger,
	}
	for i := range c.buckets {
		c.buckets[i] = newBucket(opt.Slots)
	}

	// One slab backs every payload; each slot gets a capped window.
	slab := make([]byte, opt.Slots*opt.BlockSize)
	for i := range c.slots {
		off := i * opt.BlockSize
		s := &Slot{
			blockNo: uint64(i), // placeholder identity (dev 0, block i)
			data:    slab[off : off+opt.BlockSize : off+opt.BlockSize],
			lock:    sleeplock.New(),
		}
		c.slots[i] = s
		c.bucketFor(s.blockNo).push(s)
	}

	if c.log.Enabled(context.Background(), slog.LevelDebug) {
		occupancy := make([]int, len(c.buckets))
		for i, b := range c.buckets {
			occupancy[i] = b.n
		}
		c.log.Debug("block cache initialized",
			"slots", opt.Slots, "buckets", opt.Buckets, "block_size", opt.BlockSize,
			"policy", opt.Policy.Name(), "occupancy", occupancy)
	}
	return c
}

// ---- Cache implementation ----

// Acquire returns the locked slot for (dev, blockNo), recycling the free
// slot with the smallest stamp on a miss.
func (c *blockCache) Acquire(dev uint32, blockNo uint64) *Slot {
	if c.closed.Load() {
		panic(ErrClosed)
	}
	bkt := c.bucketFor(blockNo)

	// Fast path: already resident.
	bkt.mu.Lock()
	if s := bkt.lookup(dev, blockNo); s != nil {
		s.refs.Add(1)
		bkt.mu.Unlock()
		c.hit(bkt)
		s.lock.Lock()
		return s
	}
	// Drop the bucket before taking mu to keep the lock order.
	bkt.mu.Unlock()

	c.mu.Lock()
	bkt.mu.Lock()

	// Someone may have loaded the block while no lock was held.
	if s := bkt.lookup(dev, blockNo); s != nil {
		s.refs.Add(1)
		bkt.mu.Unlock()
		c.mu.Unlock()
		c.hit(bkt)
		s.lock.Lock()
		return s
	}

	bkt.misses.Add(1)
	c.opt.Metrics.Miss()
	s := c.evictLocked(bkt, dev, blockNo)
	bkt.mu.Unlock()
	c.mu.Unlock()
	return s
}

// Read returns the locked slot for (dev, blockNo) with its payload loaded.
func (c *blockCache) Read(dev uint32, blockNo uint64) (*Slot, error) {
	s := c.Acquire(dev, blockNo)
	s.stamp.Store(c.clock.Tick())
	if !s.valid {
		if err := c.transfer(s, false); err != nil {
			c.Release(s)
			return nil, err
		}
		s.valid = true
	}
	return s, nil
}

// Write persists the payload of a held slot.
func (c *blockCache) Write(s *Slot) error {
	if !s.held() {
		panic(ErrNotHeld)
	}
	s.stamp.Store(c.clock.Tick())
	return c.transfer(s, true)
}

// Release unlocks s and drops the caller's reference. When the last
// reference goes, the stamp is rewritten by the configured policy.
func (c *blockCache) Release(s *Slot) {
	if !s.held() {
		panic(ErrNotHeld)
	}
	bkt := c.bucketFor(s.blockNo)
	s.lock.Unlock()

	bkt.mu.Lock()
	if s.refs.Add(-1) == 0 {
		s.stamp.Store(c.opt.Policy.Released(s.stamp.Load()))
	}
	bkt.mu.Unlock()
}

// Pin adds a reference and refreshes the stamp.
func (c *blockCache) Pin(s *Slot) {
	bkt := c.bucketFor(s.blockNo)
	bkt.mu.Lock()
	if s.refs.Load() <= 0 {
		bkt.mu.Unlock()
		panic(ErrNotReferenced)
	}
	s.refs.Add(1)
	s.stamp.Store(c.clock.Tick())
	bkt.mu.Unlock()
}

// Unpin drops a reference added by Pin. The stamp is left as is.
func (c *blockCache) Unpin(s *Slot) {
	bkt := c.bucketFor(s.blockNo)
	bkt.mu.Lock()
	if s.refs.Load() <= 0 {
		bkt.mu.Unlock()
		panic(ErrNotReferenced)
	}
	s.refs.Add(-1)
	bkt.mu.Unlock()
}

// Stats sums the per-bucket counters.
func (c *blockCache) Stats() Stats {
	var st Stats
	for _, b := range c.buckets {
		st.Hits += b.hits.Load()
		st.Misses += b.misses.Load()
		st.Evictions += b.evicts.Load()
		st.Reads += b.reads.Load()
		st.Writes += b.writes.Load()
	}
	return st
}

// Len returns the size of the slot pool.
func (c *blockCache) Len() int { return len(c.slots) }

// BlockSize returns the slot payload size.
func (c *blockCache) BlockSize() int { return c.opt.BlockSize }

// Close marks the cache as closed. There are no background workers to stop.
func (c *blockCache) Close() error {
	c.closed.Store(true)
	return nil
}

// ---- eviction (mu and target.mu held) ----

// evictLocked moves the free slot with the smallest stamp into target and
// gives it the new identity. The scan is repeated when the chosen slot gains
// a reference before its bucket lock is taken.
func (c *blockCache) evictLocked(target *bucket, dev uint32, blockNo uint64) *Slot {
	for {
		victim := c.oldestFree()
		if victim == nil {
			target.mu.Unlock()
			c.mu.Unlock()
			c.opt.Metrics.Exhausted()
			c.log.Error("block cache exhausted", "dev", dev, "block", blockNo, "slots", len(c.slots))
			panic(ErrNoBuffers)
		}

		src := c.bucketFor(victim.blockNo)
		if src != target {
			src.mu.Lock()
		}
		if victim.refs.Load() != 0 {
			// Picked up by a hit or Pin since the scan.
			if src != target {
				src.mu.Unlock()
			}
			continue
		}

		oldDev, oldBlock := victim.dev, victim.blockNo
		src.remove(victim)
		target.push(victim)
		victim.dev, victim.blockNo = dev, blockNo
		victim.valid = false
		victim.refs.Store(1)
		if !victim.lock.TryLock() {
			panic("cache: free slot is locked")
		}
		if src != target {
			src.mu.Unlock()
		}

		target.evicts.Add(1)
		c.opt.Metrics.Evict()
		c.log.Debug("slot recycled",
			"dev", dev, "block", blockNo, "old_dev", oldDev, "old_block", oldBlock)
		return victim
	}
}

// oldestFree scans the whole pool for the unreferenced slot with the
// smallest stamp. Ties go to the lowest pool index.
func (c *blockCache) oldestFree() *Slot {
	var (
		victim   *Slot
		minStamp uint64
	)
	for _, s := range c.slots {
		if s.refs.Load() != 0 {
			continue
		}
		if st := s.stamp.Load(); victim == nil || st < minStamp {
			victim, minStamp = s, st
		}
	}
	return victim
}

// ---- helpers ----

// bucketFor picks the bucket by block number alone.
func (c *blockCache) bucketFor(blockNo uint64) *bucket {
	return c.buckets[util.BucketIndex(blockNo, len(c.buckets))]
}

func (c *blockCache) hit(b *bucket) {
	b.hits.Add(1)
	c.opt.Metrics.Hit()
}

// transfer moves the payload of a held slot to or from the device.
func (c *blockCache) transfer(s *Slot, write bool) error {
	bkt := c.bucketFor(s.blockNo)
	c.opt.Metrics.Transfer(write)
	if write {
		bkt.writes.Add(1)
		if err := c.opt.Device.WriteBlock(s.dev, s.blockNo, s.data); err != nil {
			return fmt.Errorf("cache: write dev %d block %d: %w", s.dev, s.blockNo, err)
		}
		return nil
	}
	bkt.reads.Add(1)
	if err := c.opt.Device.ReadBlock(s.dev, s.blockNo, s.data); err != nil {
		return fmt.Errorf("cache: read dev %d block %d: %w", s.dev, s.blockNo, err)
	}
	return nil
}
