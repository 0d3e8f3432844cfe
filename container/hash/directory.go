// Package hash implements an in-memory extendible hash directory, the
// lookup structure the buffer pool manager uses as its page table.
//
// this code is grounded on the bucket/header-page split logic of the
// linear-probing hash table in this family of databases, reworked from a
// disk-backed, byte-key-only table into a generic, purely in-memory
// directory of shared bucket references.
package hash

import (
	"github.com/stoneframe/stoneframe/common"
)

// maxGlobalDepth bounds how many times Insert will double the directory
// while chasing a key whose hash keeps colliding on the same side of a
// split. 56 bits of directory is already an absurd 2^56 slots; hitting
// this means every bucketSize+1 keys inserted so far hash identically in
// their low 56 bits, which is a contract violation in the Hasher, not a
// real workload.
const maxGlobalDepth = 56

// Directory is a thread-safe extendible hash table: a PageId -> FrameId
// style associative map that grows by splitting a full bucket rather than
// rehashing the whole table. Directory slots that have not yet been split
// apart alias the same *bucket; Remove never coalesces buckets back
// together, so the directory only ever grows.
type Directory[K comparable, V any] struct {
	mu          common.ReaderWriterLatch
	globalDepth uint
	buckets     []*bucket[K, V]
	numBuckets  int
	bucketSize  int
	hash        Hasher[K]
}

// New returns an empty directory with a single bucket of the given
// capacity, hashing keys with hash.
func New[K comparable, V any](bucketSize int, hash Hasher[K]) *Directory[K, V] {
	if bucketSize <= 0 {
		bucketSize = common.DefaultBucketSize
	}
	return &Directory[K, V]{
		mu:         common.NewRWLatch(),
		buckets:    []*bucket[K, V]{newBucket[K, V](0, bucketSize)},
		numBuckets: 1,
		bucketSize: bucketSize,
		hash:       hash,
	}
}

// indexOf returns the directory slot that k currently hashes to. Callers
// must hold mu.
func (d *Directory[K, V]) indexOf(k K) uint64 {
	mask := uint64(1)<<d.globalDepth - 1
	return d.hash(k) & mask
}

// Find returns the value for k and whether it was present.
func (d *Directory[K, V]) Find(k K) (V, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.buckets[d.indexOf(k)].find(k)
}

// Insert inserts or overwrites k. It never fails: a full target bucket
// triggers one or more splits (and, when the bucket being split already has
// a local depth equal to the global depth, a directory doubling) until the
// key fits.
func (d *Directory[K, V]) Insert(k K, v V) {
	d.mu.WLock()
	defer d.mu.WUnlock()

	for {
		idx := d.indexOf(k)
		if d.buckets[idx].insertOrUpdate(k, v) {
			return
		}
		d.split(idx)
	}
}

// Remove deletes k, reporting whether it was present. Buckets are never
// merged back together on removal; the directory only ever grows.
func (d *Directory[K, V]) Remove(k K) bool {
	d.mu.WLock()
	defer d.mu.WUnlock()

	return d.buckets[d.indexOf(k)].remove(k)
}

// GlobalDepth returns the number of hash bits currently used to index the
// directory.
func (d *Directory[K, V]) GlobalDepth() uint {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.globalDepth
}

// LocalDepth returns the local depth of the bucket aliased by slot i.
func (d *Directory[K, V]) LocalDepth(i uint64) uint {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.buckets[i].localDepth
}

// NumBuckets returns the number of distinct buckets currently allocated
// (as opposed to the number of directory slots, which is 2^GlobalDepth and
// may alias fewer buckets).
func (d *Directory[K, V]) NumBuckets() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.numBuckets
}

// split grows the bucket at directory slot idx to make room for one more
// insert. Callers must hold mu for writing.
func (d *Directory[K, V]) split(idx uint64) {
	b := d.buckets[idx]

	if b.localDepth == d.globalDepth {
		common.Assert(d.globalDepth < maxGlobalDepth, "hash directory: pathological key distribution, refusing to grow further")
		d.double()
	}

	b.localDepth++
	sibling := newBucket[K, V](b.localDepth, b.capacity)

	highBit := uint64(1) << (b.localDepth - 1)
	old := b.entries
	b.entries = nil
	for _, e := range old {
		if d.hash(e.First)&highBit != 0 {
			sibling.entries = append(sibling.entries, e)
		} else {
			b.entries = append(b.entries, e)
		}
	}
	d.numBuckets++

	size := uint64(1) << d.globalDepth
	for i := uint64(0); i < size; i++ {
		if d.buckets[i] == b && i&highBit != 0 {
			d.buckets[i] = sibling
		}
	}
}

// double doubles the directory, duplicating every existing slot's bucket
// reference at slot+oldSize, and increments globalDepth. Callers must hold
// mu for writing.
func (d *Directory[K, V]) double() {
	oldSize := len(d.buckets)
	grown := make([]*bucket[K, V], oldSize*2)
	copy(grown, d.buckets)
	copy(grown[oldSize:], d.buckets)
	d.buckets = grown
	d.globalDepth++
}
