//go:build go1.18

package cache

import (
	"testing"
)

// Fuzz single-goroutine operation sequences over a tiny cache.
// Each input byte picks an operation; structural invariants and payload
// identity are checked after every step.
func FuzzCache_Operations(f *testing.F) {
	f.Add([]byte{0, 0, 1, 2, 3, 4, 5})
	f.Add([]byte{0, 8, 16, 24, 32, 1, 1, 1, 1})
	f.Add([]byte{0, 3, 9, 12, 4, 0, 5, 10, 1})

	f.Fuzz(func(t *testing.T, ops []byte) {
		const slots = 4
		if len(ops) > 512 {
			ops = ops[:512]
		}
		c, disk := newTestCache(t, Options{Buckets: 3, Slots: slots})

		var (
			held   []*Slot
			pinned []*Slot
		)
		isHeld := func(blk uint64) bool {
			for _, s := range held {
				if s.BlockNo() == blk {
					return true
				}
			}
			return false
		}
		referenced := func() int {
			seen := map[*Slot]bool{}
			for _, s := range held {
				seen[s] = true
			}
			for _, s := range pinned {
				seen[s] = true
			}
			return len(seen)
		}

		for _, op := range ops {
			arg := uint64(op >> 3)
			switch op & 7 {
			case 0, 1: // read a block we don't hold while a slot is free
				if isHeld(arg) || referenced() >= slots {
					continue
				}
				reads := disk.Reads()
				wasResident := resident(c, 1, arg)
				s, err := c.Read(1, arg)
				if err != nil {
					t.Fatalf("read %d: %v", arg, err)
				}
				if identityOf(s.Data()) != uint64(1)<<40|arg {
					t.Fatalf("block %d has wrong payload", arg)
				}
				if wasResident && disk.Reads() != reads {
					t.Fatalf("resident block %d was re-read", arg)
				}
				held = append(held, s)
			case 2, 3: // release
				if len(held) == 0 {
					continue
				}
				i := int(arg) % len(held)
				c.Release(held[i])
				held = append(held[:i], held[i+1:]...)
			case 4: // write
				if len(held) == 0 {
					continue
				}
				if err := c.Write(held[int(arg)%len(held)]); err != nil {
					t.Fatalf("write: %v", err)
				}
			case 5: // pin a held slot
				if len(held) == 0 {
					continue
				}
				s := held[int(arg)%len(held)]
				c.Pin(s)
				pinned = append(pinned, s)
			case 6: // unpin
				if len(pinned) == 0 {
					continue
				}
				i := int(arg) % len(pinned)
				c.Unpin(pinned[i])
				pinned = append(pinned[:i], pinned[i+1:]...)
			case 7: // pinned slots never move
				for _, s := range pinned {
					if !resident(c, s.Dev(), s.BlockNo()) {
						t.Fatalf("pinned block %d not resident", s.BlockNo())
					}
				}
			}
			checkInvariants(t, c)
		}

		for _, s := range held {
			c.Release(s)
		}
		for _, s := range pinned {
			c.Unpin(s)
		}
		for _, s := range c.slots {
			if s.Refs() != 0 {
				t.Fatalf("block %d left with %d refs", s.BlockNo(), s.Refs())
			}
		}
	})
}
