package cache

import (
	"sync/atomic"

	"github.com/IvanBrykalov/blockcache/internal/sleeplock"
)

// Slot is one cache entry: a block identity and its in-memory payload.
// Slots are owned by the cache and reused for other blocks after eviction;
// a caller only borrows one between Acquire/Read and Release.
type Slot struct {
	// Identity. Changed only during eviction, under the coarse lock.
	dev     uint32
	blockNo uint64

	// valid and data belong to whoever holds lock.
	valid bool
	data  []byte

	// refs and stamp are written under the owning bucket's lock (Read/Write
	// stamp under the slot lock). The eviction scan reads them holding only
	// the coarse lock, hence atomics.
	refs  atomic.Int32
	stamp atomic.Uint64

	// ord is the slot's index in its bucket's list. Guarded by that bucket.
	ord int

	lock *sleeplock.Lock
}

// Dev returns the device number of the cached block.
func (s *Slot) Dev() uint32 { return s.dev }

// BlockNo returns the block number of the cached block.
func (s *Slot) BlockNo() uint64 { return s.blockNo }

// Data returns the payload. It is exactly BlockSize bytes long and may only
// be used while the slot is held.
func (s *Slot) Data() []byte { return s.data }

// Valid reports whether the payload holds the block's device contents.
func (s *Slot) Valid() bool { return s.valid }

// Refs returns the current reference count (holders plus pins).
func (s *Slot) Refs() int32 { return s.refs.Load() }

// held reports whether the slot lock is held by someone.
func (s *Slot) held() bool { return s != nil && s.lock.Holding() }

func (s *Slot) is(dev uint32, blockNo uint64) bool {
	return s.dev == dev && s.blockNo == blockNo
}
