package cache

// Cache is a fixed-capacity cache of device blocks shared by many goroutines.
// All methods are safe for concurrent use.
//
// A slot returned by Acquire or Read is exclusively locked and carries one
// reference. The holder may read and modify Data() until it calls Release;
// after Release the slot must not be touched. Only one goroutine at a time
// holds a given slot, so hold it no longer than necessary.
type Cache interface {
	// Acquire returns the slot caching (dev, blockNo), locked and with its
	// reference count incremented. The payload is not loaded: check Valid().
	// It may park the caller while another goroutine holds the slot.
	// Panics with ErrNoBuffers if every slot is referenced.
	Acquire(dev uint32, blockNo uint64) *Slot

	// Read is Acquire followed by a device read when the slot is not valid.
	// On a device error the slot is released and the error is returned.
	Read(dev uint32, blockNo uint64) (*Slot, error)

	// Write persists the slot payload to the device.
	// The caller must hold the slot (Acquire/Read); otherwise it panics with ErrNotHeld.
	Write(s *Slot) error

	// Release unlocks the slot and drops one reference.
	// The caller must hold the slot; otherwise it panics with ErrNotHeld.
	Release(s *Slot)

	// Pin adds a reference without touching the slot lock, keeping the block
	// resident across Acquire/Release cycles. The slot must be referenced.
	Pin(s *Slot)

	// Unpin drops a reference added by Pin.
	Unpin(s *Slot)

	// Stats returns cumulative counters summed across buckets.
	Stats() Stats

	// Len returns the number of slots in the pool (fixed at construction).
	Len() int

	// BlockSize returns the payload size of every slot in bytes.
	BlockSize() int

	// Close marks the cache closed; later Acquire/Read calls panic with ErrClosed.
	// Slots already held may still be written and released.
	Close() error
}

// Stats is a snapshot of cache activity.
type Stats struct {
	Hits      uint64 // Acquire found the block resident
	Misses    uint64 // Acquire had to recycle a slot
	Evictions uint64 // slots reassigned to a new block
	Reads     uint64 // device reads issued
	Writes    uint64 // device writes issued
}
