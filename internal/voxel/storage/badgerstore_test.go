package storage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/almondvoxel/voxelcore/internal/voxel/chunk"
	"github.com/almondvoxel/voxelcore/internal/voxel/voxeltype"
)

func TestBadgerStoreLoaderDefaultsMissingChunk(t *testing.T) {
	store, err := NewBadgerStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	cfg := chunk.Config{Extent: voxeltype.CubicExtent(4)}
	s, err := store.Loader(cfg)(voxeltype.RegionKey{X: 9, Y: 9, Z: 9})
	require.NoError(t, err)
	require.Equal(t, voxeltype.EmptyVoxel, s.VoxelsConst().At(0, 0, 0))
}

func TestBadgerStoreRoundTrip(t *testing.T) {
	store, err := NewBadgerStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	cfg := chunk.Config{Extent: voxeltype.CubicExtent(4)}
	key := voxeltype.RegionKey{X: 1, Y: -2, Z: 3}

	s := chunk.New(cfg)
	s.Voxels().Set(1, 1, 1, 42)

	require.NoError(t, store.Saver()(key, s))

	restored, err := store.Loader(cfg)(key)
	require.NoError(t, err)
	require.Equal(t, voxeltype.VoxelID(42), restored.VoxelsConst().At(1, 1, 1))
}
