package cache

import (
	"encoding/binary"
	"sync/atomic"
	"testing"

	"github.com/IvanBrykalov/blockcache/device/memdisk"
)

const testBlockSize = 16

// identityFill stamps each unwritten block with (dev, blockNo) in its first
// 8 bytes; the rest stays zero.
func identityFill(dev uint32, blockNo uint64, p []byte) {
	clear(p)
	binary.LittleEndian.PutUint64(p, uint64(dev)<<40|blockNo)
}

func identityOf(p []byte) uint64 { return binary.LittleEndian.Uint64(p) }

// newTestCache builds a cache over an identity-filled memdisk.
func newTestCache(t testing.TB, opt Options) (*blockCache, *memdisk.Disk) {
	t.Helper()
	if opt.BlockSize == 0 {
		opt.BlockSize = testBlockSize
	}
	disk := memdisk.New(opt.BlockSize, identityFill)
	opt.Device = disk
	c := New(opt).(*blockCache)
	t.Cleanup(func() { _ = c.Close() })
	return c, disk
}

// resident reports whether (dev, blockNo) is cached, without side effects.
func resident(c *blockCache, dev uint32, blockNo uint64) bool {
	b := c.bucketFor(blockNo)
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lookup(dev, blockNo) != nil
}

// checkInvariants verifies the structural invariants with every lock held.
// Callers must not hold any slot-free operation in flight that takes mu.
func checkInvariants(t testing.TB, c *blockCache) {
	t.Helper()

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, b := range c.buckets {
		b.mu.Lock()
	}
	defer func() {
		for _, b := range c.buckets {
			b.mu.Unlock()
		}
	}()

	total := 0
	seen := make(map[*Slot]bool, len(c.slots))
	for i, b := range c.buckets {
		total += b.n
		for ord, s := range b.slots[:b.n] {
			if s.ord != ord {
				t.Fatalf("bucket %d: slot at %d records ord %d", i, ord, s.ord)
			}
			if c.bucketFor(s.blockNo) != b {
				t.Fatalf("bucket %d holds block %d that hashes elsewhere", i, s.blockNo)
			}
			if seen[s] {
				t.Fatalf("slot for block %d resident twice", s.blockNo)
			}
			seen[s] = true
		}
	}
	if total != len(c.slots) {
		t.Fatalf("buckets hold %d slots, pool has %d", total, len(c.slots))
	}

	type id struct {
		dev uint32
		blk uint64
	}
	ids := make(map[id]bool, len(c.slots))
	for _, s := range c.slots {
		if s.refs.Load() < 0 {
			t.Fatalf("block %d has negative refs %d", s.blockNo, s.refs.Load())
		}
		k := id{s.dev, s.blockNo}
		if ids[k] {
			t.Fatalf("block (%d,%d) cached by two slots", s.dev, s.blockNo)
		}
		ids[k] = true
	}
}

// countingMetrics records every hook call.
type countingMetrics struct {
	hits, misses, evicts, reads, writes, exhausted atomic.Int64
}

func (m *countingMetrics) Hit()   { m.hits.Add(1) }
func (m *countingMetrics) Miss()  { m.misses.Add(1) }
func (m *countingMetrics) Evict() { m.evicts.Add(1) }
func (m *countingMetrics) Transfer(write bool) {
	if write {
		m.writes.Add(1)
		return
	}
	m.reads.Add(1)
}
func (m *countingMetrics) Exhausted() { m.exhausted.Add(1) }

// stepClock is a deterministic Clock.
type stepClock struct{ t uint64 }

func (c *stepClock) Tick() uint64 { c.t++; return c.t }
