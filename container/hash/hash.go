// Hashing helpers for the extendible hash directory. The murmur3 mixing
// step mirrors the pattern the linear-probing hash table elsewhere in this
// family of databases uses to turn a raw key into a bucket index.

package hash

import (
	"encoding/binary"

	"github.com/spaolacci/murmur3"
	"github.com/stoneframe/stoneframe/types"
)

// Hasher maps a key to a 64-bit digest. Directory.indexOf masks the low
// globalDepth bits of that digest to pick a directory slot, and split uses
// bit localDepth-1 of the split bucket (post-increment) to redistribute
// entries, so a good
// Hasher must spread its low bits as well as its high ones.
type Hasher[K comparable] func(K) uint64

// PageIDHasher hashes a types.PageID for use as an extendible hash
// directory key, as the buffer pool's page table does.
func PageIDHasher(id types.PageID) uint64 {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(id))

	h := murmur3.New128()
	h.Write(buf[:])
	sum := h.Sum(nil)

	return binary.LittleEndian.Uint64(sum)
}
