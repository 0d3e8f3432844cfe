// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package types

// PageID is the type of the page identifier
type PageID int32

// InvalidPageID represents an invalid page GetPageId
const InvalidPageID = PageID(-1)

// IsValid reports whether id names a real, allocatable page.
func (id PageID) IsValid() bool {
	return id != InvalidPageID && id >= 0
}

// FrameID is an index in [0, poolSize) into the buffer pool's frame array.
type FrameID int32
