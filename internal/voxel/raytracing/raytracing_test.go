package raytracing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/almondvoxel/voxelcore/internal/voxel/chunk"
	"github.com/almondvoxel/voxelcore/internal/voxel/voxeltype"
)

func TestSparseVoxelOctreeLeafInvariant(t *testing.T) {
	s := chunk.New(chunk.Config{Extent: voxeltype.CubicExtent(8)})
	s.Voxels().Set(3, 3, 3, 5)

	var svo SparseVoxelOctree
	svo.Build(s, 3)

	for _, node := range svo.Nodes() {
		if node.Leaf {
			for _, c := range node.Children {
				require.Equal(t, InvalidIndex, c)
			}
		} else {
			require.NotEqual(t, InvalidIndex, node.FirstChild)
			for i := 0; i < 8; i++ {
				require.Equal(t, node.FirstChild+uint32(i), node.Children[i])
			}
		}
	}
}

func TestClipmapHalvesEachLevel(t *testing.T) {
	s := chunk.New(chunk.Config{Extent: voxeltype.CubicExtent(8)})

	var grid ClipmapGrid
	grid.Build(s, 3)

	require.Len(t, grid.Levels(), 3)
	require.Equal(t, [3]uint32{8, 8, 8}, grid.Levels()[0].Dimensions)
	require.Equal(t, [3]uint32{4, 4, 4}, grid.Levels()[1].Dimensions)
	require.Equal(t, [3]uint32{2, 2, 2}, grid.Levels()[2].Dimensions)
}

func TestDDARayHit(t *testing.T) {
	s := chunk.New(chunk.Config{Extent: voxeltype.CubicExtent(8)})
	s.Voxels().Set(3, 3, 3, 7)

	hit := TraceVoxels(s, Ray{Origin: [3]float32{3.5, 3.5, 0}, Direction: [3]float32{0, 0, 1}}, 10)

	require.True(t, hit.Hit)
	require.Equal(t, 3, hit.Position[2])
	require.Equal(t, voxeltype.VoxelID(7), hit.Material)
}

func TestDDARayMiss(t *testing.T) {
	s := chunk.New(chunk.Config{Extent: voxeltype.CubicExtent(8)})

	hit := TraceVoxels(s, Ray{Origin: [3]float32{3.5, 3.5, 0}, Direction: [3]float32{0, 0, 1}}, 10)

	require.False(t, hit.Hit)
}

func TestConeTraceOcclusionClampedAndMonotonic(t *testing.T) {
	empty := chunk.New(chunk.Config{Extent: voxeltype.CubicExtent(8)})
	occlusionEmpty := ConeTraceOcclusion(empty, ConeTraceDesc{
		Origin: [3]float32{0, 0, 0}, Direction: [3]float32{0, 1, 0},
		MaxDistance: 6, Aperture: 1, Steps: 6,
	})
	require.Equal(t, float32(0), occlusionEmpty)

	solid := chunk.New(chunk.Config{Extent: voxeltype.CubicExtent(8)})
	for z := 0; z < 8; z++ {
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				solid.Voxels().Set(x, y, z, 1)
			}
		}
	}
	occlusionFull := ConeTraceOcclusion(solid, ConeTraceDesc{
		Origin: [3]float32{4, 4, 4}, Direction: [3]float32{0, 1, 0},
		MaxDistance: 6, Aperture: 1, Steps: 6,
	})
	require.GreaterOrEqual(t, occlusionFull, occlusionEmpty)
	require.LessOrEqual(t, occlusionFull, float32(1))
}

func TestBakeLightingFillsEmptyCellsFullSky(t *testing.T) {
	s := chunk.New(chunk.Config{Extent: voxeltype.CubicExtent(4)})

	var svo SparseVoxelOctree
	BakeLighting(s, &svo)

	for z := 0; z < 4; z++ {
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				require.Equal(t, uint8(0), s.Blocklight().At(x, y, z))
				require.Equal(t, uint8(15), s.Skylight().At(x, y, z))
			}
		}
	}
}

func TestAccelerationCacheDirtyLifecycle(t *testing.T) {
	cache := NewAccelerationCache()
	key := voxeltype.RegionKey{X: 1}

	cache.InvalidateRegion(key)
	entry, ok := cache.Find(key)
	require.True(t, ok)
	require.True(t, entry.Dirty)

	s := chunk.New(chunk.Config{Extent: voxeltype.CubicExtent(4)})
	cache.UpdateRegion(key, s)

	entry, ok = cache.Find(key)
	require.True(t, ok)
	require.False(t, entry.Dirty)
}
