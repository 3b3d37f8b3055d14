// Package memdisk implements an in-memory block device.
//
// Blocks that were never written read as the output of the fill function
// (zeros by default). The disk counts transfers and can be told to fail
// specific blocks, which makes it the device of choice for tests.
package memdisk

import (
	"sync"
	"sync/atomic"

	"github.com/IvanBrykalov/blockcache/device"
)

type key struct {
	dev     uint32
	blockNo uint64
}

// FillFunc produces the contents of a block that was never written.
type FillFunc func(dev uint32, blockNo uint64, p []byte)

// Disk is a map-backed block device. Safe for concurrent use.
type Disk struct {
	blockSize int
	fill      FillFunc

	mu     sync.RWMutex
	blocks map[key][]byte
	fail   map[key]error

	reads  atomic.Uint64
	writes atomic.Uint64
}

// New returns an empty disk with the given block size.
// fill may be nil, in which case unwritten blocks read as zeros.
func New(blockSize int, fill FillFunc) *Disk {
	if blockSize <= 0 {
		panic("memdisk: block size must be > 0")
	}
	return &Disk{
		blockSize: blockSize,
		fill:      fill,
		blocks:    make(map[key][]byte),
		fail:      make(map[key]error),
	}
}

// ReadBlock copies the block into p.
func (d *Disk) ReadBlock(dev uint32, blockNo uint64, p []byte) error {
	if err := device.CheckBuffer(p, d.blockSize); err != nil {
		return err
	}
	d.reads.Add(1)

	k := key{dev, blockNo}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if err := d.fail[k]; err != nil {
		return err
	}
	if b, ok := d.blocks[k]; ok {
		copy(p, b)
		return nil
	}
	if d.fill != nil {
		d.fill(dev, blockNo, p)
		return nil
	}
	clear(p)
	return nil
}

// WriteBlock stores a copy of p.
func (d *Disk) WriteBlock(dev uint32, blockNo uint64, p []byte) error {
	if err := device.CheckBuffer(p, d.blockSize); err != nil {
		return err
	}
	d.writes.Add(1)

	k := key{dev, blockNo}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fail[k]; err != nil {
		return err
	}
	b, ok := d.blocks[k]
	if !ok {
		b = make([]byte, d.blockSize)
		d.blocks[k] = b
	}
	copy(b, p)
	return nil
}

// Fail makes every later transfer of (dev, blockNo) return err.
// A nil err clears the failure.
func (d *Disk) Fail(dev uint32, blockNo uint64, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil {
		delete(d.fail, key{dev, blockNo})
		return
	}
	d.fail[key{dev, blockNo}] = err
}

// Block returns a copy of the stored block and whether it was ever written.
func (d *Disk) Block(dev uint32, blockNo uint64) ([]byte, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	b, ok := d.blocks[key{dev, blockNo}]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), b...), true
}

// Reads returns the number of ReadBlock calls.
func (d *Disk) Reads() uint64 { return d.reads.Load() }

// Writes returns the number of WriteBlock calls.
func (d *Disk) Writes() uint64 { return d.writes.Load() }

// BlockSize returns the block size the disk was created with.
func (d *Disk) BlockSize() int { return d.blockSize }
