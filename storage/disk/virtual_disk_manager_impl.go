package disk

import (
	"sync/atomic"

	"github.com/dsnet/golib/memfile"
	"github.com/sasha-s/go-deadlock"
	"github.com/stoneframe/stoneframe/common"
	"github.com/stoneframe/stoneframe/types"
)

// VirtualDiskManagerImpl is a DiskManager backed by an in-memory file
// (memfile.File) instead of a real one on disk. It implements exactly the
// same page-addressed contract as DiskManagerImpl, which makes it a drop-in
// stand-in for tests and short-lived tools that don't want to touch the
// filesystem; buffer pool persistence across restarts is out of scope, so
// losing the backing store on process exit is not a regression here.
type VirtualDiskManagerImpl struct {
	db         *memfile.File
	nextPageID atomic.Int32
	numWrites  atomic.Uint64
	size       atomic.Int64
	fileMutex  deadlock.Mutex
}

// NewVirtualDiskManagerImpl returns a DiskManager backed by memory.
func NewVirtualDiskManagerImpl() DiskManager {
	return &VirtualDiskManagerImpl{db: memfile.New(make([]byte, 0))}
}

// ShutDown is a no-op: there is no file descriptor to release.
func (d *VirtualDiskManagerImpl) ShutDown() {}

// WritePage writes pageData into the in-memory file at pageId's offset.
func (d *VirtualDiskManagerImpl) WritePage(pageID types.PageID, pageData []byte) error {
	d.fileMutex.Lock()
	defer d.fileMutex.Unlock()

	offset := int64(pageID) * int64(common.PageSize)
	if _, err := d.db.WriteAt(pageData, offset); err != nil {
		return err
	}
	if end := offset + int64(len(pageData)); end > d.size.Load() {
		d.size.Store(end)
	}
	d.numWrites.Add(1)
	return nil
}

// ReadPage fills pageData with the in-memory contents of pageID, or zeroes
// it if the page was allocated but never written.
func (d *VirtualDiskManagerImpl) ReadPage(pageID types.PageID, pageData []byte) error {
	d.fileMutex.Lock()
	defer d.fileMutex.Unlock()

	offset := int64(pageID) * int64(common.PageSize)
	if offset >= d.size.Load() {
		for i := range pageData {
			pageData[i] = 0
		}
		return nil
	}
	_, err := d.db.ReadAt(pageData, offset)
	return err
}

// AllocatePage returns a fresh PageID from a monotonic counter.
func (d *VirtualDiskManagerImpl) AllocatePage() types.PageID {
	return types.PageID(d.nextPageID.Add(1) - 1)
}

// DeallocatePage is a no-op: the in-memory file never reclaims space.
func (d *VirtualDiskManagerImpl) DeallocatePage(types.PageID) {}

// GetNumWrites returns the number of completed WritePage calls.
func (d *VirtualDiskManagerImpl) GetNumWrites() uint64 {
	return d.numWrites.Load()
}

// Size returns the current size, in bytes, of the in-memory file.
func (d *VirtualDiskManagerImpl) Size() int64 {
	return d.size.Load()
}
