package cache

import "sync/atomic"

// LogicalClock is a monotonically increasing counter used to stamp slots.
// The zero value is ready to use; the first Tick returns 1.
type LogicalClock struct {
	now atomic.Uint64
}

// Tick advances the clock and returns the new value.
func (c *LogicalClock) Tick() uint64 { return c.now.Add(1) }

// Now returns the last value handed out by Tick.
func (c *LogicalClock) Now() uint64 { return c.now.Load() }

var _ Clock = (*LogicalClock)(nil)
