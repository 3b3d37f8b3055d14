package cache

import "errors"

// Fatal conditions are raised as panics carrying one of these values;
// callers that recover can match them with errors.Is.
var (
	// ErrNoBuffers means every slot is referenced, so a miss cannot be served.
	ErrNoBuffers = errors.New("cache: no free buffers")
	// ErrNotHeld means Write or Release was called without holding the slot.
	ErrNotHeld = errors.New("cache: slot not held")
	// ErrNotReferenced means Pin or Unpin was called on a slot with no references.
	ErrNotReferenced = errors.New("cache: slot not referenced")
	// ErrClosed means the cache was used after Close.
	ErrClosed = errors.New("cache: closed")
)
