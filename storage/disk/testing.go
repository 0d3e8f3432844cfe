// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package disk

import (
	"os"
)

// DiskManagerTest wraps a real, file-backed DiskManager pointed at a
// temporary file, and removes that file on ShutDown. Use it in tests that
// want to exercise the actual file-based code path rather than the
// in-memory VirtualDiskManagerImpl.
type DiskManagerTest struct {
	path string
	DiskManager
}

// NewDiskManagerTest returns a DiskManager instance for testing purposes.
func NewDiskManagerTest() DiskManager {
	f, err := os.CreateTemp("", "stoneframe-*.db")
	if err != nil {
		panic(err)
	}
	path := f.Name()
	f.Close()
	os.Remove(path)

	return &DiskManagerTest{path, NewDiskManagerImpl(path)}
}

// ShutDown closes and removes the backing temp file.
func (d *DiskManagerTest) ShutDown() {
	defer os.Remove(d.path)
	d.DiskManager.ShutDown()
}
