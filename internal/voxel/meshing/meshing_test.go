package meshing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/almondvoxel/voxelcore/internal/voxel/chunk"
	"github.com/almondvoxel/voxelcore/internal/voxel/voxeltype"
)

func TestGreedySingleVoxel(t *testing.T) {
	s := chunk.New(chunk.Config{Extent: voxeltype.CubicExtent(3)})
	s.Voxels().Set(1, 1, 1, 42)

	result := GreedyMesh(s, DefaultIsOpaque)

	require.Len(t, result.Vertices, 24)
	require.Len(t, result.Indices, 36)
	for _, v := range result.Vertices {
		require.Equal(t, voxeltype.VoxelID(42), v.ID)
	}
}

func TestGreedyVerticalBias(t *testing.T) {
	s := chunk.New(chunk.Config{Extent: voxeltype.CubicExtent(1)})
	s.Voxels().Set(0, 0, 0, 1)

	result := GreedyMesh(s, DefaultIsOpaque)

	var sawPosZ, sawNegZ bool
	for _, v := range result.Vertices {
		if v.Normal == [3]float32{0, 0, 1} {
			sawPosZ = true
			require.Greater(t, v.Position[2], float32(1.0))
			require.Less(t, v.Position[2], float32(1.1))
		}
		if v.Normal == [3]float32{0, 0, -1} {
			sawNegZ = true
			require.Greater(t, v.Position[2], float32(-0.1))
			require.Less(t, v.Position[2], float32(0.0))
		}
	}
	require.True(t, sawPosZ)
	require.True(t, sawNegZ)
}

func TestGreedyMergesCoplanarQuads(t *testing.T) {
	s := chunk.New(chunk.Config{Extent: voxeltype.CubicExtent(4)})
	voxels := s.Voxels()
	for x := 0; x < 4; x++ {
		for z := 0; z < 4; z++ {
			voxels.Set(x, 0, z, 7)
		}
	}

	result := GreedyMesh(s, DefaultIsOpaque)

	// A flat 4x4 slab has six faces total (top, bottom, four sides) once
	// merged; none of the interior voxel-voxel boundaries should survive.
	require.Len(t, result.Vertices, 6*4)
	require.Len(t, result.Indices, 6*6)
}

func TestMarchingSingleTriangle(t *testing.T) {
	extent := voxeltype.ChunkExtent{X: 1, Y: 1, Z: 1}

	density := func(x, y, z int) float32 {
		if x == 0 && y == 0 && z == 0 {
			return 0.0
		}
		return 1.0
	}
	material := func(x, y, z int) voxeltype.VoxelID { return 7 }

	result := MarchingCubes(extent, density, material, DefaultConfig())

	require.Len(t, result.Vertices, 3)
	require.Len(t, result.Indices, 3)
	for _, v := range result.Vertices {
		require.Equal(t, voxeltype.VoxelID(7), v.ID)
	}

	normal := result.Vertices[0].Normal
	// The solid corner sits at (0,0,0); the surface normal must point away
	// from it, i.e. have a positive dot product with (1,1,1).
	dot := normal[0] + normal[1] + normal[2]
	require.Greater(t, dot, float32(0.0))
}

func TestNaiveMatchesGreedyVoxelCount(t *testing.T) {
	s := chunk.New(chunk.Config{Extent: voxeltype.CubicExtent(3)})
	s.Voxels().Set(1, 1, 1, 42)

	greedy := GreedyMesh(s, DefaultIsOpaque)
	naive := NaiveMesh(s, DefaultIsOpaque)

	// For an isolated single voxel every face is its own quad either way,
	// so vertex/index counts coincide even though merging differs in
	// general.
	require.Len(t, naive.Vertices, len(greedy.Vertices))
	require.Len(t, naive.Indices, len(greedy.Indices))
}

func TestGreedyMeshWithNeighborsSuppressesSharedBoundaryFace(t *testing.T) {
	extent := voxeltype.CubicExtent(2)

	this := chunk.New(chunk.Config{Extent: extent})
	fillSolid(this, 1)
	posXNeighbor := chunk.New(chunk.Config{Extent: extent})
	fillSolid(posXNeighbor, 1)

	// Meshed in isolation, the +X boundary face is always emitted: there is
	// no neighbor to test against.
	isolated := GreedyMesh(this, DefaultIsOpaque)
	require.True(t, hasFaceNormal(isolated, [3]float32{1, 0, 0}))

	// Once the +X neighbor is opaque across the entire shared face, no
	// vertex with that face's normal should survive.
	neighbors := ChunkNeighbors{PosX: posXNeighbor}
	neighborOpaque := NeighborOpaqueFromChunks(neighbors, extent, DefaultIsOpaque)
	result := GreedyMeshWithNeighbors(this, DefaultIsOpaque, neighborOpaque)
	require.False(t, hasFaceNormal(result, [3]float32{1, 0, 0}),
		"a face against a fully opaque neighbor chunk must not be produced")
}

func TestGreedyVerticalDedupAcrossChunkStack(t *testing.T) {
	extent := voxeltype.CubicExtent(2)

	bottom := chunk.New(chunk.Config{Extent: extent})
	fillSolid(bottom, 3)
	top := chunk.New(chunk.Config{Extent: extent})
	fillSolid(top, 3)

	bottomOpaque := NeighborOpaqueFromChunks(ChunkNeighbors{PosZ: top}, extent, DefaultIsOpaque)
	topOpaque := NeighborOpaqueFromChunks(ChunkNeighbors{NegZ: bottom}, extent, DefaultIsOpaque)

	bottomMesh := GreedyMeshWithNeighbors(bottom, DefaultIsOpaque, bottomOpaque)
	topMesh := GreedyMeshWithNeighbors(top, DefaultIsOpaque, topOpaque)

	// The plane shared by the two stacked chunks must be meshed by neither
	// side, so no coplanar duplicate quad is ever produced at the boundary.
	require.False(t, hasFaceNormal(bottomMesh, [3]float32{0, 0, 1}),
		"bottom chunk's top face must be suppressed against a solid neighbor above")
	require.False(t, hasFaceNormal(topMesh, [3]float32{0, 0, -1}),
		"top chunk's bottom face must be suppressed against a solid neighbor below")
}

func fillSolid(s *chunk.Storage, id voxeltype.VoxelID) {
	extent := s.Extent()
	voxels := s.Voxels()
	for z := 0; z < int(extent.Z); z++ {
		for y := 0; y < int(extent.Y); y++ {
			for x := 0; x < int(extent.X); x++ {
				voxels.Set(x, y, z, id)
			}
		}
	}
}

func hasFaceNormal(result Result, normal [3]float32) bool {
	for _, v := range result.Vertices {
		if v.Normal == normal {
			return true
		}
	}
	return false
}

func TestRemapToNeighborCoordsRejectsTwoOutOfBoundsAxes(t *testing.T) {
	extent := voxeltype.CubicExtent(4)
	neighborStorage := chunk.New(chunk.Config{Extent: extent})
	views := loadNeighborViews(ChunkNeighbors{PosX: neighborStorage})

	_, _, ok := remapToNeighborCoords(extent, [3]int{4, 4, 1}, views)
	require.False(t, ok, "two out-of-bounds axes must not resolve to a single neighbor")
}

func TestRemapToNeighborCoordsSingleAxis(t *testing.T) {
	extent := voxeltype.CubicExtent(4)
	neighborStorage := chunk.New(chunk.Config{Extent: extent})
	neighborStorage.Voxels().Set(0, 2, 2, 9)
	views := loadNeighborViews(ChunkNeighbors{PosX: neighborStorage})

	view, remapped, ok := remapToNeighborCoords(extent, [3]int{4, 2, 2}, views)
	require.True(t, ok)
	require.Equal(t, [3]int{0, 2, 2}, remapped)
	require.Equal(t, voxeltype.VoxelID(9), view.voxels.At(remapped[0], remapped[1], remapped[2]))
}
