// this code generalizes the intrusive doubly-linked-list-plus-map technique
// of the clock replacer found in this family of databases (a circular list
// of frame ids backed by a map for O(1) lookup) into two linear queues: a
// history queue ordered by latest access, and a cache queue ordered by
// K-distance anchor. Evict always prefers the history queue.

package buffer

import (
	"errors"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sasha-s/go-deadlock"
)

// ErrNotEvictable is returned by Remove when the caller asks to drop
// tracking for a frame that SetEvictable has not marked evictable - a
// precondition violation, not a recoverable runtime condition.
var ErrNotEvictable = errors.New("lru-k replacer: frame is not evictable")

type lkrNode struct {
	frameID     FrameID
	timestamp   uint64 // history: last access time; cache: K-distance anchor
	accessCount int
	inCache     bool
	evictable   bool
	prev, next  *lkrNode
}

// dll is a minimal intrusive doubly-linked list of *lkrNode, ordered head
// (oldest) to tail (newest). It exists only to keep pushBack/remove/moveBack
// from being duplicated between the history and cache queues.
type dll struct {
	head, tail *lkrNode
}

func (q *dll) pushBack(n *lkrNode) {
	n.prev, n.next = q.tail, nil
	if q.tail != nil {
		q.tail.next = n
	} else {
		q.head = n
	}
	q.tail = n
}

func (q *dll) remove(n *lkrNode) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		q.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		q.tail = n.prev
	}
	n.prev, n.next = nil, nil
}

func (q *dll) moveToBack(n *lkrNode) {
	q.remove(n)
	q.pushBack(n)
}

// LRUKReplacer implements the LRU-K eviction policy: a frame becomes an
// eviction candidate for the history queue until it has been accessed K
// times, at which point it is promoted to the cache queue and ranked by its
// anchor timestamp, which is set at promotion and reset to the current
// time on every later access.
type LRUKReplacer struct {
	mu               deadlock.Mutex
	k                int
	currentTimestamp uint64
	nodes            map[FrameID]*lkrNode
	history          dll
	cache            dll
	evictable        mapset.Set[FrameID]
}

// NewLRUKReplacer returns a replacer that waits for k accesses before
// promoting a frame out of the history queue.
func NewLRUKReplacer(k int) *LRUKReplacer {
	if k < 1 {
		k = 1
	}
	return &LRUKReplacer{
		k:         k,
		nodes:     make(map[FrameID]*lkrNode),
		evictable: mapset.NewThreadUnsafeSet[FrameID](),
	}
}

// RecordAccess registers one access to f and advances the logical clock.
func (r *LRUKReplacer) RecordAccess(f FrameID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.currentTimestamp
	r.currentTimestamp++

	n, ok := r.nodes[f]
	if !ok {
		n = &lkrNode{frameID: f, timestamp: now, accessCount: 1}
		r.nodes[f] = n
		r.history.pushBack(n)
		if n.accessCount >= r.k {
			r.promote(n, now)
		}
		return
	}

	if n.inCache {
		n.timestamp = now
		r.cache.moveToBack(n)
		return
	}

	n.accessCount++
	n.timestamp = now
	if n.accessCount >= r.k {
		r.promote(n, now)
	} else {
		r.history.moveToBack(n)
	}
}

// promote moves n from the history queue to the cache queue. Callers must
// hold mu.
func (r *LRUKReplacer) promote(n *lkrNode, now uint64) {
	r.history.remove(n)
	n.inCache = true
	n.timestamp = now
	r.cache.pushBack(n)
}

// SetEvictable flips whether f is a candidate for Evict. It does not move f
// between queues.
func (r *LRUKReplacer) SetEvictable(f FrameID, evictable bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.nodes[f]
	if !ok || n.evictable == evictable {
		return
	}
	n.evictable = evictable
	if evictable {
		r.evictable.Add(f)
	} else {
		r.evictable.Remove(f)
	}
}

// Evict chooses the first evictable frame in the history queue (smallest
// latest-access timestamp); if none qualify, it falls back to the cache
// queue (smallest anchor timestamp). It reports false if no frame is
// evictable.
func (r *LRUKReplacer) Evict() (FrameID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n := firstEvictable(r.history.head); n != nil {
		return r.evict(n, &r.history), true
	}
	if n := firstEvictable(r.cache.head); n != nil {
		return r.evict(n, &r.cache), true
	}
	var zero FrameID
	return zero, false
}

func firstEvictable(head *lkrNode) *lkrNode {
	for n := head; n != nil; n = n.next {
		if n.evictable {
			return n
		}
	}
	return nil
}

func (r *LRUKReplacer) evict(n *lkrNode, q *dll) FrameID {
	q.remove(n)
	delete(r.nodes, n.frameID)
	r.evictable.Remove(n.frameID)
	return n.frameID
}

// Remove drops all tracking for f. f must be evictable; removing a pinned
// (non-evictable) frame is a contract violation reported as ErrNotEvictable
// rather than silently ignored, matching the precondition on
// Replacer.Remove.
func (r *LRUKReplacer) Remove(f FrameID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.nodes[f]
	if !ok {
		return nil
	}
	if !n.evictable {
		return ErrNotEvictable
	}
	if n.inCache {
		r.cache.remove(n)
	} else {
		r.history.remove(n)
	}
	delete(r.nodes, f)
	r.evictable.Remove(f)
	return nil
}

// Size returns the number of currently evictable frames across both
// queues.
func (r *LRUKReplacer) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.evictable.Cardinality()
}
