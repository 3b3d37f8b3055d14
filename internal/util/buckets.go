// Package util contains internal helpers (bucket indexing, padding).
//revive:disable:var-naming  // allow 'util' as an internal helpers package name
package util

import "runtime"

// maxDefaultBuckets caps the automatic bucket count.
const maxDefaultBuckets = 256

// IsPowerOfTwo reports whether x is a power of two (> 0).
func IsPowerOfTwo(x uint64) bool {
	return x != 0 && (x&(x-1)) == 0
}

// NextPow2 returns the smallest power of two >= x (1 for x <= 1).
// Results that would overflow are clamped to 1<<63.
func NextPow2(x uint64) uint64 {
	if x <= 1 {
		return 1
	}
	x--
	x |= x >> 1
	x |= x >> 2
	x |= x >> 4
	x |= x >> 8
	x |= x >> 16
	x |= x >> 32
	x++
	if x == 0 {
		return 1 << 63
	}
	return x
}

// DefaultBucketCount picks a bucket count for a pool of slots.
// Heuristic: nextPow2(2*GOMAXPROCS), clamped to [1..256] and never more
// than the number of slots, so every bucket can start non-empty.
func DefaultBucketCount(slots int) int {
	p := runtime.GOMAXPROCS(0)
	if p < 1 {
		p = 1
	}
	n := int(NextPow2(uint64(p * 2)))
	if n > maxDefaultBuckets {
		n = maxDefaultBuckets
	}
	if slots > 0 && n > slots {
		n = slots
	}
	if n < 1 {
		n = 1
	}
	return n
}

// BucketIndex maps a block number to one of n buckets.
// It is blockNo mod n; the mask path is taken when n is a power of two.
func BucketIndex(blockNo uint64, n int) int {
	if n <= 1 {
		return 0
	}
	if IsPowerOfTwo(uint64(n)) {
		return int(blockNo & uint64(n-1))
	}
	return int(blockNo % uint64(n))
}
