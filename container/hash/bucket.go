package hash

import pair "github.com/notEpsilon/go-pair"

// bucket holds the key/value pairs for one extendible hash directory slot.
// Multiple directory slots may share a *bucket while its localDepth is
// below the directory's globalDepth; Directory.split is the only thing
// that ever separates them.
type bucket[K comparable, V any] struct {
	localDepth uint
	capacity   int
	entries    []pair.Pair[K, V]
}

func newBucket[K comparable, V any](localDepth uint, capacity int) *bucket[K, V] {
	return &bucket[K, V]{localDepth: localDepth, capacity: capacity}
}

func (b *bucket[K, V]) find(k K) (V, bool) {
	for _, e := range b.entries {
		if e.First == k {
			return e.Second, true
		}
	}
	var zero V
	return zero, false
}

// insertOrUpdate overwrites the value for an existing key. For a new key it
// appends only if the bucket has room, reporting false so the caller (the
// directory) knows to split and retry. It never fails on an overwrite,
// since that can't grow the bucket past capacity.
func (b *bucket[K, V]) insertOrUpdate(k K, v V) bool {
	for i := range b.entries {
		if b.entries[i].First == k {
			b.entries[i].Second = v
			return true
		}
	}
	if len(b.entries) >= b.capacity {
		return false
	}
	b.entries = append(b.entries, *pair.New(k, v))
	return true
}

func (b *bucket[K, V]) remove(k K) bool {
	for i, e := range b.entries {
		if e.First == k {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			return true
		}
	}
	return false
}
