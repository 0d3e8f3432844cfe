// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package page

import (
	"github.com/stoneframe/stoneframe/common"
	"github.com/stoneframe/stoneframe/types"
)

// PageSize is the fixed size, in bytes, of every frame buffer and of every
// page read from or written to the disk manager.
const PageSize = common.PageSize

// Page is a fixed-size in-memory frame plus the metadata the buffer pool
// manager needs to decide whether it can be reused: which logical page (if
// any) it holds, how many callers currently have it pinned, and whether its
// contents have diverged from the on-disk copy.
//
// A Page is never destroyed once the pool allocates it; Reset recycles the
// same buffer in place when its frame is handed to a different page id.
type Page struct {
	id       types.PageID
	pinCount int
	isDirty  bool
	data     [PageSize]byte
}

// NewFree returns an unclaimed frame: no resident page, unpinned. This is
// the state every frame starts in before the pool hands it to a page, and
// the state it returns to after DeletePage.
func NewFree() *Page {
	return &Page{id: types.InvalidPageID}
}

// ID returns the page id currently resident in this frame.
func (p *Page) ID() types.PageID {
	return p.id
}

// Data returns the frame's backing buffer. Callers may read and write it
// freely while the page remains pinned; after UnpinPage the buffer must not
// be touched, since the frame may already have been handed to another page.
func (p *Page) Data() *[PageSize]byte {
	return &p.data
}

// PinCount returns the number of outstanding pins on this frame.
func (p *Page) PinCount() int {
	return p.pinCount
}

// IncPinCount increments the pin count.
func (p *Page) IncPinCount() {
	p.pinCount++
}

// DecPinCount decrements the pin count. It never goes negative.
func (p *Page) DecPinCount() {
	if p.pinCount > 0 {
		p.pinCount--
	}
}

// IsDirty reports whether this frame's contents differ from disk.
func (p *Page) IsDirty() bool {
	return p.isDirty
}

// SetIsDirty marks the frame dirty. It is intentionally impossible to clear
// the flag through this setter: dirtiness is monotone within a residency
// and only ClearDirty (after a flush), Reset or Free may clear it.
func (p *Page) SetIsDirty(isDirty bool) {
	if isDirty {
		p.isDirty = true
	}
}

// ClearDirty clears the dirty flag after a successful flush.
func (p *Page) ClearDirty() {
	p.isDirty = false
}

// Reset recycles this frame for pageId: the buffer is zeroed, the dirty
// flag cleared and the pin count set to one. Callers must only reset a
// frame whose previous resident (if any) has already been written back.
func (p *Page) Reset(pageID types.PageID) {
	p.id = pageID
	p.pinCount = 1
	p.isDirty = false
	p.data = [PageSize]byte{}
}

// Free returns this frame to the unclaimed state: no resident page, no
// pins, clean. Callers must only free a frame whose previous resident (if
// any) has already been written back and evicted from the page table.
func (p *Page) Free() {
	p.id = types.InvalidPageID
	p.pinCount = 0
	p.isDirty = false
	p.data = [PageSize]byte{}
}

// Copy writes src into the frame buffer starting at offset.
func (p *Page) Copy(offset int, src []byte) {
	copy(p.data[offset:], src)
}
