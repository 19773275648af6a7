package terrain

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/almondvoxel/voxelcore/internal/voxel/voxeltype"
)

func TestClassicHeightfieldFillsBelowSurface(t *testing.T) {
	// The column must reach past the surface (base height 48 plus noise), so
	// the chunk is 256 voxels tall along the vertical Z axis.
	h := NewClassicHeightfield(voxeltype.ChunkExtent{X: 8, Y: 8, Z: 256}, DefaultClassicConfig(), 1337)

	s, err := h.Load(voxeltype.RegionKey{})
	require.NoError(t, err)

	voxels := s.VoxelsConst()
	foundSolid, foundEmpty := false, false
	for i := 0; i < voxels.Size(); i++ {
		if voxels.Linear()[i] != voxeltype.EmptyVoxel {
			foundSolid = true
		} else {
			foundEmpty = true
		}
	}
	require.True(t, foundSolid, "a heightfield chunk near the base height must contain solid voxels")
	require.True(t, foundEmpty, "a heightfield chunk must also contain empty (above-surface) voxels")
}

func TestClassicHeightfieldDeterministic(t *testing.T) {
	cfg := DefaultClassicConfig()
	a := NewClassicHeightfield(voxeltype.CubicExtent(8), cfg, 42)
	b := NewClassicHeightfield(voxeltype.CubicExtent(8), cfg, 42)

	require.Equal(t, a.SampleHeight(10, 20), b.SampleHeight(10, 20))
}

func TestClassicHeightfieldBedrockFloor(t *testing.T) {
	cfg := DefaultClassicConfig()
	cfg.BaseHeight = -1000 // force every column far below world_z=0
	h := NewClassicHeightfield(voxeltype.CubicExtent(4), cfg, 7)

	s, err := h.Load(voxeltype.RegionKey{X: 0, Y: 0, Z: -1})
	require.NoError(t, err)

	voxels := s.VoxelsConst()
	for i := 0; i < voxels.Size(); i++ {
		require.Equal(t, cfg.BedrockVoxel, voxels.Linear()[i])
	}
}
