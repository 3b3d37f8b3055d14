package lru

import "testing"

// Released must keep recency: older uses stay older.
func TestLRU_ReleasedKeepsStamp(t *testing.T) {
	t.Parallel()

	p := New()
	for _, ts := range []uint64{0, 1, 42, 1 << 40} {
		if got := p.Released(ts); got != ts {
			t.Fatalf("Released(%d) = %d, want unchanged", ts, got)
		}
	}
	if p.Released(3) >= p.Released(7) {
		t.Fatal("older stamp must remain the better eviction candidate")
	}
}

func TestLRU_Name(t *testing.T) {
	t.Parallel()

	if got := New().Name(); got != "lru" {
		t.Fatalf("Name() = %q", got)
	}
}
