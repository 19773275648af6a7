package navigation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/almondvoxel/voxelcore/internal/voxel/chunk"
	"github.com/almondvoxel/voxelcore/internal/voxel/voxeltype"
)

func flatFloorChunk(t *testing.T, extent voxeltype.ChunkExtent) *chunk.Storage {
	t.Helper()
	s := chunk.New(chunk.Config{Extent: extent})
	voxels := s.Voxels()
	for x := 0; x < int(extent.X); x++ {
		for z := 0; z < int(extent.Z); z++ {
			voxels.Set(x, 0, z, 1)
		}
	}
	return s
}

func TestNavigationAfterEdit(t *testing.T) {
	extent := voxeltype.ChunkExtent{X: 5, Y: 3, Z: 5}
	s := flatFloorChunk(t, extent)

	cfg := DefaultBuildConfig()
	grid := Build(s, cfg)

	start := grid.Index(0, 1, 0)
	goal := grid.Index(uint32(extent.X-1), 1, uint32(extent.Z-1))
	require.True(t, grid.WalkableAt(start))
	require.True(t, grid.WalkableAt(goal))

	path, err := AStar(grid, start, goal, cfg.Neighbor)
	require.NoError(t, err)
	require.Equal(t, start, path.Nodes[0])
	require.Equal(t, goal, path.Nodes[len(path.Nodes)-1])

	// Block the middle cell; the grid still offers a path around it.
	mid := grid.Index(2, 1, 2)
	grid.Cells[mid].Walkable = false
	require.False(t, grid.WalkableAt(mid))

	_, err = AStar(grid, start, goal, cfg.Neighbor)
	require.NoError(t, err)
}

func TestAStarPathCostMatchesEdgeSum(t *testing.T) {
	// Y is 3 so the two clearance samples above the floor (y=1, y=2) both
	// lie inside the grid.
	extent := voxeltype.ChunkExtent{X: 4, Y: 3, Z: 4}
	s := flatFloorChunk(t, extent)
	cfg := DefaultBuildConfig()
	grid := Build(s, cfg)

	start := grid.Index(0, 1, 0)
	goal := grid.Index(3, 1, 3)

	path, err := AStar(grid, start, goal, cfg.Neighbor)
	require.NoError(t, err)
	require.Equal(t, start, path.Nodes[0])
	require.Equal(t, goal, path.Nodes[len(path.Nodes)-1])

	var sum float32
	for i := 0; i+1 < len(path.Nodes); i++ {
		found := false
		ForEachNeighbor(grid, path.Nodes[i], cfg.Neighbor, func(e Edge) {
			if e.Node == path.Nodes[i+1] {
				sum += e.Cost
				found = true
			}
		})
		require.True(t, found)
	}
	require.InDelta(t, path.TotalCost, sum, 1e-3)
}

func TestAStarNoPath(t *testing.T) {
	extent := voxeltype.ChunkExtent{X: 3, Y: 3, Z: 3}
	s := flatFloorChunk(t, extent)
	// Occupy the goal cell itself so it fails the "open" check and is
	// therefore never walkable.
	s.Voxels().Set(2, 1, 2, 1)

	cfg := DefaultBuildConfig()
	grid := Build(s, cfg)

	start := grid.Index(0, 1, 0)
	goal := grid.Index(2, 1, 2)
	_, err := AStar(grid, start, goal, cfg.Neighbor)
	require.Error(t, err)
}

func TestFlowFieldReachesGoal(t *testing.T) {
	// Y is 3 so the two clearance samples above the floor (y=1, y=2) both
	// lie inside the grid.
	extent := voxeltype.ChunkExtent{X: 4, Y: 3, Z: 4}
	s := flatFloorChunk(t, extent)
	cfg := DefaultBuildConfig()
	grid := Build(s, cfg)

	goal := grid.Index(3, 1, 3)
	field := ComputeFlowField(grid, goal, cfg.Neighbor)

	start := grid.Index(0, 1, 0)
	path := FollowFlow(field, start, DefaultMaxFollowSteps)
	require.NotEmpty(t, path)
	require.LessOrEqual(t, len(path), DefaultMaxFollowSteps)
	require.Equal(t, goal, path[len(path)-1])
}
