package disk

import (
	"testing"

	"github.com/stoneframe/stoneframe/common"
	"github.com/stretchr/testify/require"
)

func TestReadWritePage_FileBacked(t *testing.T) {
	dm := NewDiskManagerTest()
	defer dm.ShutDown()
	testReadWritePage(t, dm)
}

func TestReadWritePage_Virtual(t *testing.T) {
	dm := NewVirtualDiskManagerImpl()
	defer dm.ShutDown()
	testReadWritePage(t, dm)
}

func testReadWritePage(t *testing.T, dm DiskManager) {
	data := make([]byte, common.PageSize)
	buffer := make([]byte, common.PageSize)
	copy(data, "A test string.")

	require.NoError(t, dm.ReadPage(0, buffer)) // tolerate empty read
	require.Equal(t, make([]byte, common.PageSize), buffer)

	require.NoError(t, dm.WritePage(0, data))
	require.NoError(t, dm.ReadPage(0, buffer))
	require.Equal(t, data, buffer)

	copy(data, "Another test string, at a much later page.")
	require.NoError(t, dm.WritePage(5, data))

	buffer = make([]byte, common.PageSize)
	require.NoError(t, dm.ReadPage(5, buffer))
	require.Equal(t, data, buffer)

	require.Equal(t, uint64(2), dm.GetNumWrites())
}

func TestAllocatePageIsMonotonic(t *testing.T) {
	dm := NewVirtualDiskManagerImpl()
	defer dm.ShutDown()

	first := dm.AllocatePage()
	second := dm.AllocatePage()
	require.Equal(t, first+1, second)
	require.True(t, first.IsValid())

	dm.DeallocatePage(first)
	third := dm.AllocatePage()
	require.Equal(t, second+1, third, "DeallocatePage never recycles ids")
}
