// this code is from https://github.com/brunocalza/go-bustub, reworked to
// replace the clock replacer and plain map page table with the LRU-K
// replacer and extendible hash directory in this package, and to add the
// single coarse-grained mutex the bustub family leaves as a TODO.
package buffer

import (
	"fmt"

	"github.com/golang-collections/collections/stack"
	"github.com/sasha-s/go-deadlock"
	"golang.org/x/sync/errgroup"

	"github.com/stoneframe/stoneframe/common"
	"github.com/stoneframe/stoneframe/container/hash"
	"github.com/stoneframe/stoneframe/storage/disk"
	"github.com/stoneframe/stoneframe/storage/page"
	"github.com/stoneframe/stoneframe/types"
)

// BufferPoolManager is the in-memory page cache sitting between callers and
// the disk manager. It owns a fixed array of frames, reusing the same
// *page.Page in place rather than allocating a new one per residency, and
// serializes every operation behind a single mutex: contention is traded
// for a page table and replacer that never need their own locks.
type BufferPoolManager struct {
	mu          deadlock.Mutex
	diskManager disk.DiskManager
	pages       []*page.Page
	replacer    Replacer
	freeList    *stack.Stack
	pageTable   *hash.Directory[types.PageID, FrameID]
}

// NewBufferPoolManager returns a buffer pool of poolSize frames, evicting
// under the LRU-K policy with the given k. k <= 0 falls back to
// common.DefaultLRUK.
func NewBufferPoolManager(poolSize uint32, diskManager disk.DiskManager, k int) *BufferPoolManager {
	if k <= 0 {
		k = common.DefaultLRUK
	}

	pages := make([]*page.Page, poolSize)
	freeList := stack.New()
	for i := uint32(0); i < poolSize; i++ {
		pages[i] = page.NewFree()
		freeList.Push(FrameID(i))
	}

	return &BufferPoolManager{
		diskManager: diskManager,
		pages:       pages,
		replacer:    NewLRUKReplacer(k),
		freeList:    freeList,
		pageTable:   hash.New[types.PageID, FrameID](common.DefaultBucketSize, hash.PageIDHasher),
	}
}

// NewPage allocates a brand new page, installs it in a free frame and
// returns it pinned once. It returns nil only when every frame is pinned
// and the replacer has no victim left to offer.
func (b *BufferPoolManager) NewPage() *page.Page {
	b.mu.Lock()
	defer b.mu.Unlock()

	frameID, ok := b.acquireFrame()
	if !ok {
		return nil
	}

	pageID := b.diskManager.AllocatePage()
	frame := b.pages[frameID]
	frame.Reset(pageID)

	b.pageTable.Insert(pageID, frameID)
	b.replacer.RecordAccess(frameID)
	b.replacer.SetEvictable(frameID, false)

	common.Debugf("bpm: NewPage %d in frame %d", pageID, frameID)
	return frame
}

// FetchPage returns the requested page, pinned once more, reading it from
// disk into a free or evicted frame if it is not already resident. It
// returns nil for an invalid id, for a disk read failure, or when the pool
// is full of pinned frames.
func (b *BufferPoolManager) FetchPage(pageID types.PageID) *page.Page {
	if !pageID.IsValid() {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if frameID, ok := b.pageTable.Find(pageID); ok {
		frame := b.pages[frameID]
		frame.IncPinCount()
		b.replacer.RecordAccess(frameID)
		b.replacer.SetEvictable(frameID, false)
		return frame
	}

	frameID, ok := b.acquireFrame()
	if !ok {
		return nil
	}

	buf := make([]byte, common.PageSize)
	if err := b.diskManager.ReadPage(pageID, buf); err != nil {
		// the frame is already unclaimed (acquireFrame leaves it that way);
		// just give it back instead of installing a page we failed to read.
		b.freeList.Push(frameID)
		common.Log.Errorf("bpm: read page %d: %v", pageID, err)
		return nil
	}

	frame := b.pages[frameID]
	frame.Reset(pageID)
	frame.Copy(0, buf)

	b.pageTable.Insert(pageID, frameID)
	b.replacer.RecordAccess(frameID)
	b.replacer.SetEvictable(frameID, false)

	return frame
}

// UnpinPage drops one pin held by the caller. When the pin count reaches
// zero the frame becomes eligible for eviction. isDirty, if true, marks the
// page dirty; it can never un-mark it, since some other pinner may have
// written to it. It reports false if pageID is not resident or already
// fully unpinned.
func (b *BufferPoolManager) UnpinPage(pageID types.PageID, isDirty bool) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	frameID, ok := b.pageTable.Find(pageID)
	if !ok {
		return false
	}

	frame := b.pages[frameID]
	if frame.PinCount() <= 0 {
		return false
	}

	frame.DecPinCount()
	if isDirty {
		frame.SetIsDirty(true)
	}
	if frame.PinCount() == 0 {
		b.replacer.SetEvictable(frameID, true)
	}
	return true
}

// FlushPage writes the resident page's frame to disk and clears its dirty
// flag, regardless of pin count. It reports false if pageID is not
// resident or the write fails.
func (b *BufferPoolManager) FlushPage(pageID types.PageID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.flushLocked(pageID)
}

// flushLocked does the work of FlushPage. Callers must hold mu.
func (b *BufferPoolManager) flushLocked(pageID types.PageID) bool {
	frameID, ok := b.pageTable.Find(pageID)
	if !ok {
		return false
	}

	frame := b.pages[frameID]
	data := frame.Data()
	if err := b.diskManager.WritePage(pageID, data[:]); err != nil {
		common.Log.Errorf("bpm: flush page %d: %v", pageID, err)
		return false
	}
	frame.ClearDirty()
	return true
}

// FlushAllPages writes back every resident page concurrently, returning the
// first write error encountered (if any); it still attempts every page
// regardless of earlier failures.
func (b *BufferPoolManager) FlushAllPages() error {
	b.mu.Lock()
	ids := make([]types.PageID, 0, len(b.pages))
	for _, frame := range b.pages {
		if frame.ID().IsValid() {
			ids = append(ids, frame.ID())
		}
	}
	b.mu.Unlock()

	var g errgroup.Group
	for _, pageID := range ids {
		pageID := pageID
		g.Go(func() error {
			if !b.FlushPage(pageID) {
				return fmt.Errorf("bpm: flush failed for page %d", pageID)
			}
			return nil
		})
	}
	return g.Wait()
}

// DeletePage removes pageID from the buffer pool and tells the disk manager
// to deallocate it, returning its frame to the free list. It reports false,
// leaving the page resident, if the page is still pinned. Deleting a page
// that is not resident is a no-op that reports true.
func (b *BufferPoolManager) DeletePage(pageID types.PageID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	frameID, ok := b.pageTable.Find(pageID)
	if !ok {
		return true
	}

	frame := b.pages[frameID]
	if frame.PinCount() > 0 {
		return false
	}

	b.pageTable.Remove(pageID)
	b.replacer.SetEvictable(frameID, true)
	if err := b.replacer.Remove(frameID); err != nil {
		common.Assert(false, "bpm: evicted-but-still-tracked frame during delete")
	}
	b.diskManager.DeallocatePage(pageID)

	frame.Free()
	b.freeList.Push(frameID)
	return true
}

// acquireFrame returns a frame ready to be installed with a new resident:
// either one straight from the free list, or one reclaimed from the
// replacer's victim, written back first if dirty and evicted from the page
// table. It returns false only when every frame is pinned. Callers must
// hold mu.
func (b *BufferPoolManager) acquireFrame() (FrameID, bool) {
	if top := b.freeList.Pop(); top != nil {
		return top.(FrameID), true
	}

	frameID, ok := b.replacer.Evict()
	if !ok {
		return 0, false
	}

	victim := b.pages[frameID]
	if victim.IsDirty() {
		data := victim.Data()
		if err := b.diskManager.WritePage(victim.ID(), data[:]); err != nil {
			// the victim was chosen because it is unpinned; losing its
			// write-back would silently corrupt the on-disk copy, so this
			// is treated as fatal rather than returned to the caller.
			common.Log.Fatalf("bpm: write back evicted page %d: %v", victim.ID(), err)
		}
	}

	b.pageTable.Remove(victim.ID())
	victim.Free()
	return frameID, true
}
