// Package lru implements strict least-recently-used stamping.
//
// A released slot keeps the stamp of its last use, so the eviction scan
// always picks the free slot that was used longest ago.
package lru

import "github.com/IvanBrykalov/blockcache/policy"

type lruPolicy struct{}

// New returns the strict LRU policy.
func New() policy.Policy { return lruPolicy{} }

// Released keeps the last-use stamp unchanged.
func (lruPolicy) Released(lastUsed uint64) uint64 { return lastUsed }

// Name implements policy.Policy.
func (lruPolicy) Name() string { return "lru" }
