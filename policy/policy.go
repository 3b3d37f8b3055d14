// Package policy defines how a slot's eviction stamp is set when its last
// reference goes away.
//
// The block cache never maintains a recency list. Instead every slot carries
// a logical stamp and the eviction scan picks, among slots with no
// references, the one with the smallest stamp. A Policy only decides what the
// stamp becomes at the moment Release drops the reference count to zero;
// Read, Write and Pin always stamp with the current clock.
package policy

// Policy computes the stamp of a slot whose reference count just reached
// zero through Release. lastUsed is the stamp it carried while in use.
//
// Implementations must be safe for concurrent use; Released is called under
// the owning bucket's lock and must not block.
type Policy interface {
	Released(lastUsed uint64) uint64
	// Name is a short stable identifier used in logs and metrics labels.
	Name() string
}
