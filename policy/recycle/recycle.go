// Package recycle implements the reset-on-release stamp policy.
//
// A released slot gets stamp zero, so it becomes the first eviction
// candidate, ahead of slots that have sat idle at zero references with an
// older non-zero stamp (for example after an Unpin). Blocks a caller has just
// finished with are recycled before anything else.
package recycle

import "github.com/IvanBrykalov/blockcache/policy"

type recyclePolicy struct{}

// New returns the reset-on-release policy. It is the cache default.
func New() policy.Policy { return recyclePolicy{} }

// Released always returns the lowest possible stamp.
func (recyclePolicy) Released(uint64) uint64 { return 0 }

// Name implements policy.Policy.
func (recyclePolicy) Name() string { return "recycle" }
