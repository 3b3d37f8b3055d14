// Package sleeplock provides a long-held exclusive lock whose waiters park
// instead of spinning. It is meant to be held across blocking work such as a
// device transfer.
package sleeplock

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Lock is an exclusive-use lock backed by a weighted semaphore of size one.
// Waiters are queued by the semaphore and woken in FIFO order.
//
// Unlike sync.Mutex, Lock records whether it is currently held so callers
// can assert a "must be locked" precondition. Go has no goroutine identity,
// so Holding reports that some holder exists, not that it is the caller.
type Lock struct {
	sem  *semaphore.Weighted
	held atomic.Bool
}

// New returns an unlocked Lock.
func New() *Lock {
	return &Lock{sem: semaphore.NewWeighted(1)}
}

// Lock blocks until the lock is acquired.
func (l *Lock) Lock() {
	// Acquire only fails on context cancellation; Background never cancels.
	if err := l.sem.Acquire(context.Background(), 1); err != nil {
		panic("sleeplock: " + err.Error())
	}
	l.held.Store(true)
}

// TryLock acquires the lock without blocking and reports success.
func (l *Lock) TryLock() bool {
	if !l.sem.TryAcquire(1) {
		return false
	}
	l.held.Store(true)
	return true
}

// Unlock releases the lock. Unlocking an unlocked Lock panics.
func (l *Lock) Unlock() {
	if !l.held.CompareAndSwap(true, false) {
		panic("sleeplock: unlock of unlocked lock")
	}
	l.sem.Release(1)
}

// Holding reports whether the lock is held. A nil Lock is never held.
func (l *Lock) Holding() bool {
	return l != nil && l.held.Load()
}
