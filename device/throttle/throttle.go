// Package throttle limits the transfer rate of a block device.
//
// It models a device with bounded IOPS, so that a slot lock held across a
// transfer is held for a realistic amount of time.
package throttle

import (
	"context"

	"github.com/IvanBrykalov/blockcache/cache"
	"golang.org/x/time/rate"
)

// Device wraps a cache.BlockDevice with a token bucket shared by reads and writes.
type Device struct {
	next cache.BlockDevice
	lim  *rate.Limiter
}

// New allows iops transfers per second with bursts of up to burst.
// A non-positive iops disables limiting.
func New(next cache.BlockDevice, iops float64, burst int) *Device {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Limit(iops)
	if iops <= 0 {
		limit = rate.Inf
	}
	return &Device{next: next, lim: rate.NewLimiter(limit, burst)}
}

// ReadBlock waits for a token, then reads through.
func (d *Device) ReadBlock(dev uint32, blockNo uint64, p []byte) error {
	if err := d.lim.Wait(context.Background()); err != nil {
		return err
	}
	return d.next.ReadBlock(dev, blockNo, p)
}

// WriteBlock waits for a token, then writes through.
func (d *Device) WriteBlock(dev uint32, blockNo uint64, p []byte) error {
	if err := d.lim.Wait(context.Background()); err != nil {
		return err
	}
	return d.next.WriteBlock(dev, blockNo, p)
}

var _ cache.BlockDevice = (*Device)(nil)
