package util

import "testing"

func TestNextPow2(t *testing.T) {
	t.Parallel()

	cases := map[uint64]uint64{0: 1, 1: 1, 2: 2, 3: 4, 5: 8, 64: 64, 65: 128}
	for in, want := range cases {
		if got := NextPow2(in); got != want {
			t.Fatalf("NextPow2(%d) = %d, want %d", in, got, want)
		}
	}
	if got := NextPow2(1<<63 + 1); got != 1<<63 {
		t.Fatalf("overflow must clamp, got %d", got)
	}
}

// BucketIndex must be plain modulo for any bucket count.
func TestBucketIndex_Modulo(t *testing.T) {
	t.Parallel()

	for _, n := range []int{1, 2, 3, 4, 7, 13, 16} {
		for b := uint64(0); b < 100; b++ {
			if got, want := BucketIndex(b, n), int(b%uint64(n)); got != want {
				t.Fatalf("BucketIndex(%d, %d) = %d, want %d", b, n, got, want)
			}
		}
	}
}

func TestDefaultBucketCount_Bounds(t *testing.T) {
	t.Parallel()

	if got := DefaultBucketCount(1); got != 1 {
		t.Fatalf("one slot must give one bucket, got %d", got)
	}
	got := DefaultBucketCount(1 << 20)
	if got < 1 || got > maxDefaultBuckets || !IsPowerOfTwo(uint64(got)) {
		t.Fatalf("unexpected default bucket count %d", got)
	}
}
