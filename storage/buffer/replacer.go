package buffer

import "github.com/stoneframe/stoneframe/types"

// FrameID is the type for frame id.
type FrameID = types.FrameID

// Replacer chooses which unpinned frame to evict when the buffer pool
// needs a free one. The only implementation in this package is the LRU-K
// policy of LRUKReplacer; dynamic pool resizing and other eviction
// policies (clock, plain LRU) are out of scope.
type Replacer interface {
	// RecordAccess registers one access to frame f at the replacer's
	// current logical timestamp, then advances that timestamp.
	RecordAccess(f FrameID)

	// SetEvictable toggles whether f is a candidate for Evict. It does not
	// move f between the history and cache queues; it only flips a flag.
	SetEvictable(f FrameID, evictable bool)

	// Evict chooses and removes one evictable victim. It returns false if
	// there are none; that is never a fatal condition.
	Evict() (FrameID, bool)

	// Remove drops all tracking for f. f must currently be evictable.
	Remove(f FrameID) error

	// Size returns the number of currently evictable frames.
	Size() int
}
