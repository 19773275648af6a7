package editing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/almondvoxel/voxelcore/internal/voxel/chunk"
	"github.com/almondvoxel/voxelcore/internal/voxel/region"
	"github.com/almondvoxel/voxelcore/internal/voxel/voxeltype"
)

func TestSplitWorldPositionPositive(t *testing.T) {
	extent := voxeltype.CubicExtent(16)
	coords := SplitWorldPosition(WorldPosition{X: 20, Y: 5, Z: 0}, extent)
	require.Equal(t, voxeltype.RegionKey{X: 1, Y: 0, Z: 0}, coords.Region)
	require.Equal(t, [3]uint32{4, 5, 0}, coords.Local)
}

func TestSplitWorldPositionNegative(t *testing.T) {
	extent := voxeltype.CubicExtent(16)
	// -1 floor-divides to region -1 with local 15, not region 0 with local -1.
	coords := SplitWorldPosition(WorldPosition{X: -1, Y: -16, Z: -17}, extent)
	require.Equal(t, voxeltype.RegionKey{X: -1, Y: -1, Z: -2}, coords.Region)
	require.Equal(t, [3]uint32{15, 0, 15}, coords.Local)
}

func TestSetAndClearVoxelLocal(t *testing.T) {
	s := chunk.New(chunk.Config{Extent: voxeltype.CubicExtent(4)})

	require.True(t, SetVoxelLocal(s, [3]uint32{1, 2, 3}, 7))
	require.Equal(t, voxeltype.VoxelID(7), s.VoxelsConst().At(1, 2, 3))

	require.True(t, ClearVoxelLocal(s, [3]uint32{1, 2, 3}))
	require.Equal(t, voxeltype.EmptyVoxel, s.VoxelsConst().At(1, 2, 3))

	require.False(t, SetVoxelLocal(s, [3]uint32{4, 0, 0}, 1))
}

func TestSetVoxelAcrossRegionBoundary(t *testing.T) {
	manager := region.New(chunk.Config{Extent: voxeltype.CubicExtent(4)})

	ok, err := SetVoxel(manager, WorldPosition{X: 5, Y: 1, Z: 1}, 3)
	require.NoError(t, err)
	require.True(t, ok)

	s, found := manager.Find(voxeltype.RegionKey{X: 1, Y: 0, Z: 0})
	require.True(t, found)
	require.Equal(t, voxeltype.VoxelID(3), s.VoxelsConst().At(1, 1, 1))
}

func TestClearVoxel(t *testing.T) {
	manager := region.New(chunk.Config{Extent: voxeltype.CubicExtent(4)})

	_, err := SetVoxel(manager, WorldPosition{X: 0, Y: 0, Z: 0}, 9)
	require.NoError(t, err)

	ok, err := ClearVoxel(manager, WorldPosition{X: 0, Y: 0, Z: 0})
	require.NoError(t, err)
	require.True(t, ok)

	s, _ := manager.Find(voxeltype.RegionKey{})
	require.Equal(t, voxeltype.EmptyVoxel, s.VoxelsConst().At(0, 0, 0))
}

func TestToggleVoxel(t *testing.T) {
	manager := region.New(chunk.Config{Extent: voxeltype.CubicExtent(4)})
	pos := WorldPosition{X: 2, Y: 2, Z: 2}

	ok, err := ToggleVoxel(manager, pos, 6)
	require.NoError(t, err)
	require.True(t, ok)
	s, _ := manager.Find(voxeltype.RegionKey{})
	require.Equal(t, voxeltype.VoxelID(6), s.VoxelsConst().At(2, 2, 2))

	ok, err = ToggleVoxel(manager, pos, 6)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, voxeltype.EmptyVoxel, s.VoxelsConst().At(2, 2, 2))
}
