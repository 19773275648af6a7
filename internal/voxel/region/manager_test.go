package region

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/almondvoxel/voxelcore/internal/voxel/chunk"
	"github.com/almondvoxel/voxelcore/internal/voxel/voxeltype"
)

func testConfig() chunk.Config {
	return chunk.Config{Extent: voxeltype.CubicExtent(4)}
}

func TestLRUWithPin(t *testing.T) {
	m := New(testConfig())
	m.SetMaxResident(1)

	k0 := voxeltype.RegionKey{X: 0}
	k1 := voxeltype.RegionKey{X: 1}
	k2 := voxeltype.RegionKey{X: 2}

	_, err := m.Assure(k0)
	require.NoError(t, err)
	require.NoError(t, m.Pin(k0))
	_, err = m.Assure(k1)
	require.NoError(t, err)

	_, err = m.Tick(0)
	require.NoError(t, err)

	_, ok := m.Find(k1)
	require.False(t, ok, "k1 should have been evicted")
	_, ok = m.Find(k0)
	require.True(t, ok, "pinned k0 must survive")

	m.Unpin(k0)
	_, err = m.Assure(k2)
	require.NoError(t, err)

	_, err = m.Tick(0)
	require.NoError(t, err)

	_, ok = m.Find(k0)
	require.False(t, ok, "k0 should now be evictable")
	_, ok = m.Find(k2)
	require.True(t, ok)
}

func TestTaskQueueFIFO(t *testing.T) {
	m := New(testConfig())
	var order []int

	k := voxeltype.RegionKey{}
	m.EnqueueTask(k, func(s *chunk.Storage, key voxeltype.RegionKey) error {
		order = append(order, 1)
		return nil
	})
	m.EnqueueTask(k, func(s *chunk.Storage, key voxeltype.RegionKey) error {
		order = append(order, 2)
		return nil
	})

	n, err := m.Tick(0)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, []int{1, 2}, order)
}

func TestNavRebuildCoalescesBetweenTicks(t *testing.T) {
	m := New(testConfig())
	m.EnableNavigation(true)

	k := voxeltype.RegionKey{}
	s, err := m.Assure(k)
	require.NoError(t, err)

	voxels := s.Voxels()
	for x := 0; x < 4; x++ {
		for z := 0; z < 4; z++ {
			voxels.Set(x, 0, z, 1)
		}
	}
	// Dirty listener fires on every mutating access; only one rebuild task
	// should be queued no matter how many times we touch the chunk.
	_ = s.Voxels()
	_ = s.Voxels()

	queueLenBefore := len(m.taskQueue)
	require.Equal(t, 1, queueLenBefore)

	_, err = m.Tick(0)
	require.NoError(t, err)

	grid := m.NavigationGrid(k)
	require.NotNil(t, grid)
	require.True(t, grid.WalkableXYZ(0, 1, 0))
}

func TestUnloadSkipsPinned(t *testing.T) {
	m := New(testConfig())
	k := voxeltype.RegionKey{}
	require.NoError(t, m.Pin(k))

	ok, err := m.Unload(k)
	require.NoError(t, err)
	require.False(t, ok)
}
