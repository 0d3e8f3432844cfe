// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package disk

import (
	"errors"
	"io"
	"os"
	"sync/atomic"

	"github.com/sasha-s/go-deadlock"
	"github.com/stoneframe/stoneframe/common"
	"github.com/stoneframe/stoneframe/types"
)

// DiskManagerImpl is a DiskManager backed by a single flat, page-addressed
// file. Page pageID lives at byte offset pageID*PageSize; there is no
// superblock, free-space map or other on-disk structure, as the core makes
// no additional on-disk structure beyond the flat file (the write-ahead log
// is a forward-declared collaborator, not implemented here).
type DiskManagerImpl struct {
	db         *os.File
	nextPageID atomic.Int32
	numWrites  atomic.Uint64
	size       atomic.Int64
	fileMutex  deadlock.Mutex
}

// NewDiskManagerImpl returns a DiskManager instance backed by dbFilename,
// creating it if necessary and resuming page allocation after whatever
// pages are already on disk.
func NewDiskManagerImpl(dbFilename string) DiskManager {
	file, err := os.OpenFile(dbFilename, os.O_RDWR|os.O_CREATE, 0666)
	if err != nil {
		common.Log.Fatalf("disk: can't open db file %q: %v", dbFilename, err)
		return nil
	}

	fileInfo, err := file.Stat()
	if err != nil {
		common.Log.Fatalf("disk: stat error for %q: %v", dbFilename, err)
		return nil
	}

	fileSize := fileInfo.Size()
	nPages := fileSize / common.PageSize

	d := &DiskManagerImpl{db: file}
	d.size.Store(fileSize)
	if nPages > 0 {
		d.nextPageID.Store(int32(nPages))
	}
	return d
}

// ShutDown closes the database file.
func (d *DiskManagerImpl) ShutDown() {
	d.db.Close()
}

// WritePage durably writes pageData to pageId's offset in the backing file.
func (d *DiskManagerImpl) WritePage(pageID types.PageID, pageData []byte) error {
	d.fileMutex.Lock()
	defer d.fileMutex.Unlock()

	offset := int64(pageID) * common.PageSize
	if _, err := d.db.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	bytesWritten, err := d.db.Write(pageData)
	if err != nil {
		return err
	}
	if bytesWritten != common.PageSize {
		return errors.New("disk: bytes written not equal to page size")
	}

	if end := offset + int64(bytesWritten); end > d.size.Load() {
		d.size.Store(end)
	}
	d.numWrites.Add(1)

	return d.db.Sync()
}

// ReadPage fills pageData (which must be PageSize bytes) with the on-disk
// contents of pageID. Reading a page past the end of the file is not an
// error: it returns a zeroed buffer, matching the state of a page that was
// allocated but never written.
func (d *DiskManagerImpl) ReadPage(pageID types.PageID, pageData []byte) error {
	d.fileMutex.Lock()
	defer d.fileMutex.Unlock()

	offset := int64(pageID) * common.PageSize

	if offset >= d.size.Load() {
		for i := range pageData {
			pageData[i] = 0
		}
		return nil
	}

	if _, err := d.db.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	bytesRead, err := d.db.Read(pageData)
	if err != nil && err != io.EOF {
		return err
	}
	for i := bytesRead; i < len(pageData); i++ {
		pageData[i] = 0
	}
	return nil
}

// AllocatePage returns a fresh PageID. The allocator is a simple monotonic
// counter; DeallocatePage never recycles ids, so the counter never needs to
// search for a hole.
func (d *DiskManagerImpl) AllocatePage() types.PageID {
	return types.PageID(d.nextPageID.Add(1) - 1)
}

// DeallocatePage is a no-op: ids are never recycled. Persistence of the
// buffer pool and its backing file across restarts is out of scope, so
// there is no free space bitmap to update here.
func (d *DiskManagerImpl) DeallocatePage(types.PageID) {}

// GetNumWrites returns the number of completed WritePage calls.
func (d *DiskManagerImpl) GetNumWrites() uint64 {
	return d.numWrites.Load()
}

// Size returns the current size, in bytes, of the backing file.
func (d *DiskManagerImpl) Size() int64 {
	return d.size.Load()
}
