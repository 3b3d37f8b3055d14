// Package cache provides a fixed-capacity cache of device blocks that sits
// between a file-system layer and a raw block device. It saves device
// transfers and serializes concurrent access to shared blocks.
//
// Design
//
//   - Pool: Options.Slots slots are allocated once, each with a payload of
//     Options.BlockSize bytes. The pool never grows or shrinks; a slot is
//     recycled for another block only when nobody references it.
//
//   - Buckets: slots are indexed by Options.Buckets hash buckets
//     (blockNo % Buckets). Each bucket has its own short-held mutex and a
//     dense list of its slots; a slot records its index in that list so it
//     can be removed in O(1) by swapping in the last element.
//
//   - Eviction: there is no recency list. Every slot carries a logical stamp
//     and a miss recycles the unreferenced slot with the smallest stamp,
//     found by scanning the whole pool under a single coarse lock. The
//     coarse lock is taken only on a miss and always before bucket locks, so
//     hits never contend with it and lock cycles are impossible.
//
//   - Slot lock: a held slot is exclusively locked with a lock that parks
//     waiters. It may be held across a device transfer. Short locks are
//     never held while waiting for it.
//
//   - Stamps: Read, Write and Pin stamp with the current clock. When Release
//     drops the last reference, the configured policy sets the stamp. The
//     default (policy/recycle) resets it to zero, so blocks just finished
//     with are recycled first; policy/lru keeps strict recency.
//
//   - Pinning: Pin and Unpin add and drop references without the slot lock,
//     so an external mechanism (e.g. a log) can keep a block resident across
//     many Acquire/Release cycles.
//
//   - Failures: running out of free slots (ErrNoBuffers) and contract
//     violations (ErrNotHeld, ErrNotReferenced) panic. Device errors are
//     returned from Read and Write.
//
// Basic usage
//
//	disk := memdisk.New(1024, nil)
//	c := cache.New(cache.Options{Slots: 30, Buckets: 13, BlockSize: 1024, Device: disk})
//
//	s, err := c.Read(dev, blockNo)
//	if err != nil {
//	    return err
//	}
//	s.Data()[0] = 1
//	if err := c.Write(s); err != nil {
//	    c.Release(s)
//	    return err
//	}
//	c.Release(s)
//
// Keeping a block resident
//
//	s, _ := c.Read(dev, blockNo)
//	c.Pin(s) // survives the Release below
//	c.Release(s)
//	// ... later
//	c.Unpin(s) // evictable again
//
// Exporting metrics (Prometheus adapter)
//
//	m := prom.New(nil, "blockcache", "fs", nil) // implements Metrics
//	c := cache.New(cache.Options{Slots: 1024, Device: disk, Metrics: m})
package cache
