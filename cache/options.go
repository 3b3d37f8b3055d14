package cache

import (
	"log/slog"

	"github.com/IvanBrykalov/blockcache/policy"
)

// DefaultBlockSize is the payload size used when Options.BlockSize is zero.
const DefaultBlockSize = 1024

// BlockDevice transfers exactly one block between a device and p.
// len(p) is always the cache block size. Both calls block until the transfer
// completes. The cache only calls them while holding the slot's lock.
type BlockDevice interface {
	ReadBlock(dev uint32, blockNo uint64, p []byte) error
	WriteBlock(dev uint32, blockNo uint64, p []byte) error
}

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit()
	Miss()
	Evict()
	// Transfer is called once per device transfer; write is false for reads.
	Transfer(write bool)
	// Exhausted is called right before the cache panics with ErrNoBuffers.
	Exhausted()
}

// Clock hands out logical "last used" stamps. Values must increase.
type Clock interface{ Tick() uint64 }

// Options configures the cache. Everything is fixed at construction.
// Zero values are safe except Slots and Device; defaults are applied in New():
//   - Buckets <= 0   => auto (power of two from GOMAXPROCS, at most Slots)
//   - BlockSize <= 0 => DefaultBlockSize
//   - nil Policy     => recycle (released slots are evicted first)
//   - nil Clock      => a fresh LogicalClock
//   - nil Metrics    => NoopMetrics
//   - nil Logger     => discard
type Options struct {
	// Buckets is the number of hash buckets. A block lives in bucket
	// blockNo % Buckets regardless of its device number.
	Buckets int

	// Slots is the number of cache slots (required, > 0).
	Slots int

	// BlockSize is the payload size of each slot in bytes.
	BlockSize int

	// Device performs the actual block transfers (required).
	Device BlockDevice

	// Policy decides the stamp of a slot released to zero references.
	Policy policy.Policy

	// Clock allows overriding the stamp source (tests).
	Clock Clock

	// Observability
	Metrics Metrics
	Logger  *slog.Logger
}
