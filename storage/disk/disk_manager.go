package disk

import (
	"github.com/stoneframe/stoneframe/types"
)

// DiskManager is the durable, page-addressed backing store the buffer pool
// manager reads through and writes through to. It is a collaborator, not
// part of the core: the buffer pool treats it as an opaque block device and
// never inspects how pages are laid out on disk.
type DiskManager interface {
	ReadPage(types.PageID, []byte) error
	WritePage(types.PageID, []byte) error
	AllocatePage() types.PageID
	DeallocatePage(types.PageID)
	GetNumWrites() uint64
	ShutDown()
	Size() int64
}
