package util

import (
	"sync/atomic"
	"unsafe"
)

// CacheLineSize is a reasonable default for most modern CPUs.
const CacheLineSize = 64

// CacheLinePad separates hot fields into distinct cache lines.
type CacheLinePad struct{ _ [CacheLineSize]byte }

// Counter is an atomic uint64 padded to exactly one cache line, so
// per-bucket statistics updated by different goroutines do not false-share.
type Counter struct {
	atomic.Uint64
	_ [CacheLineSize - 8]byte
}

// Must be exactly one cache line.
var _ [CacheLineSize - int(unsafe.Sizeof(Counter{}))]byte
