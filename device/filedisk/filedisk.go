// Package filedisk implements a block device over disk image files,
// one image per device number.
package filedisk

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/IvanBrykalov/blockcache/device"
	"github.com/natefinch/atomic"
)

// Create writes a zero-filled image of blocks*blockSize bytes to path.
// The file appears atomically: readers never observe a partial image.
func Create(path string, blocks uint64, blockSize int) error {
	if blockSize <= 0 {
		return fmt.Errorf("filedisk: block size must be > 0, got %d", blockSize)
	}
	size := int64(blocks) * int64(blockSize)
	if err := atomic.WriteFile(path, io.LimitReader(zeroReader{}, size)); err != nil {
		return fmt.Errorf("filedisk: create %s: %w", path, err)
	}
	return nil
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

type image struct {
	f      *os.File
	blocks uint64
}

// Disk maps device numbers to open image files. Safe for concurrent use;
// transfers use positioned I/O so they never contend on a file offset.
type Disk struct {
	blockSize int

	mu     sync.RWMutex
	images map[uint32]*image
}

// New returns a Disk with no images attached.
func New(blockSize int) *Disk {
	if blockSize <= 0 {
		panic("filedisk: block size must be > 0")
	}
	return &Disk{blockSize: blockSize, images: make(map[uint32]*image)}
}

// Attach opens the image at path for read/write and serves it as dev.
// The image size must be a whole number of blocks.
func (d *Disk) Attach(dev uint32, path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("filedisk: attach dev %d: %w", dev, err)
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("filedisk: attach dev %d: %w", dev, err)
	}
	if fi.Size()%int64(d.blockSize) != 0 {
		_ = f.Close()
		return fmt.Errorf("filedisk: attach dev %d: image size %d is not a multiple of %d",
			dev, fi.Size(), d.blockSize)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if old, ok := d.images[dev]; ok {
		_ = old.f.Close()
	}
	d.images[dev] = &image{f: f, blocks: uint64(fi.Size()) / uint64(d.blockSize)}
	return nil
}

// Detach closes the image served as dev.
func (d *Disk) Detach(dev uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	img, ok := d.images[dev]
	if !ok {
		return fmt.Errorf("%w: %d", device.ErrNoDevice, dev)
	}
	delete(d.images, dev)
	return img.f.Close()
}

// Close syncs and closes every attached image.
func (d *Disk) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var errs []error
	for dev, img := range d.images {
		errs = append(errs, img.f.Sync(), img.f.Close())
		delete(d.images, dev)
	}
	return errors.Join(errs...)
}

// Blocks returns the size of dev in blocks.
func (d *Disk) Blocks(dev uint32) (uint64, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	img, ok := d.images[dev]
	if !ok {
		return 0, fmt.Errorf("%w: %d", device.ErrNoDevice, dev)
	}
	return img.blocks, nil
}

// ReadBlock reads block blockNo of dev into p.
func (d *Disk) ReadBlock(dev uint32, blockNo uint64, p []byte) error {
	return d.do(dev, blockNo, p, func(f *os.File, off int64) error {
		_, err := f.ReadAt(p, off)
		return err
	})
}

// WriteBlock writes p to block blockNo of dev.
func (d *Disk) WriteBlock(dev uint32, blockNo uint64, p []byte) error {
	return d.do(dev, blockNo, p, func(f *os.File, off int64) error {
		_, err := f.WriteAt(p, off)
		return err
	})
}

// do validates the request and runs op with the image held open.
func (d *Disk) do(dev uint32, blockNo uint64, p []byte, op func(*os.File, int64) error) error {
	if err := device.CheckBuffer(p, d.blockSize); err != nil {
		return err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	img, ok := d.images[dev]
	if !ok {
		return fmt.Errorf("%w: %d", device.ErrNoDevice, dev)
	}
	if blockNo >= img.blocks {
		return fmt.Errorf("%w: block %d of %d", device.ErrOutOfRange, blockNo, img.blocks)
	}
	return op(img.f, int64(blockNo)*int64(d.blockSize))
}
