// Package navigation derives walkability grids from chunk voxel data and
// runs A*, Dijkstra flow-field, and cross-region stitching over them.
package navigation

import (
	"math"

	"github.com/almondvoxel/voxelcore/internal/voxel/chunk"
	"github.com/almondvoxel/voxelcore/internal/voxel/voxeltype"
)

type NodeIndex uint64

const InvalidNode = NodeIndex(math.MaxUint64)

type NeighborConfig struct {
	HorizontalCost float32
	VerticalCost   float32
	MaxStepHeight  uint32
}

func DefaultNeighborConfig() NeighborConfig {
	return NeighborConfig{HorizontalCost: 1, VerticalCost: 1, MaxStepHeight: 1}
}

type BuildConfig struct {
	Clearance  uint32
	Neighbor   NeighborConfig
	IsSolid    func(voxeltype.VoxelID) bool
	SampleCost func(s *chunk.Storage, x, y, z uint32) float32
}

func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		Clearance: 2,
		Neighbor:  DefaultNeighborConfig(),
		IsSolid:   func(id voxeltype.VoxelID) bool { return id != voxeltype.EmptyVoxel },
		SampleCost: func(*chunk.Storage, uint32, uint32, uint32) float32 { return 1 },
	}
}

type Cell struct {
	Walkable       bool
	TraversalCost  float32
}

// Grid is the dense per-cell walkability/cost table derived from a chunk.
type Grid struct {
	Extent voxeltype.ChunkExtent
	Cells  []Cell
}

func (g *Grid) Size() int { return len(g.Cells) }

func (g *Grid) Contains(x, y, z uint32) bool {
	return g.Extent.Contains(int(x), int(y), int(z))
}

func (g *Grid) Index(x, y, z uint32) NodeIndex {
	return NodeIndex(uint64(x) + uint64(g.Extent.X)*(uint64(y)+uint64(g.Extent.Y)*uint64(z)))
}

func (g *Grid) Coordinates(node NodeIndex) (x, y, z uint32) {
	xy := uint64(g.Extent.X) * uint64(g.Extent.Y)
	n := uint64(node)
	z = uint32(n / xy)
	rem := n % xy
	y = uint32(rem / uint64(g.Extent.X))
	x = uint32(rem % uint64(g.Extent.X))
	return
}

func (g *Grid) WalkableAt(node NodeIndex) bool {
	return uint64(node) < uint64(len(g.Cells)) && g.Cells[node].Walkable
}

func (g *Grid) WalkableXYZ(x, y, z uint32) bool {
	if !g.Contains(x, y, z) {
		return false
	}
	return g.WalkableAt(g.Index(x, y, z))
}

func (g *Grid) Cost(node NodeIndex) float32 {
	if uint64(node) < uint64(len(g.Cells)) {
		return g.Cells[node].TraversalCost
	}
	return 1
}

// Build implements the §4.5 walkability derivation: a cell is open iff every
// sample in [0, clearance) above it is inside the grid and not solid, and
// supported iff it's on the floor or the cell below is solid.
func Build(s *chunk.Storage, cfg BuildConfig) *Grid {
	extent := s.Extent()
	grid := &Grid{Extent: extent, Cells: make([]Cell, extent.Volume())}

	voxels := s.VoxelsConst()
	clearance := cfg.Clearance
	if clearance < 1 {
		clearance = 1
	}

	for z := uint32(0); z < extent.Z; z++ {
		for y := uint32(0); y < extent.Y; y++ {
			for x := uint32(0); x < extent.X; x++ {
				idx := grid.Index(x, y, z)
				open := true
				for h := uint32(0); h < clearance; h++ {
					sampleY := y + h
					if sampleY >= extent.Y {
						open = false
						break
					}
					if cfg.IsSolid(voxels.At(int(x), int(sampleY), int(z))) {
						open = false
						break
					}
				}
				if !open {
					continue
				}
				supported := y == 0 || cfg.IsSolid(voxels.At(int(x), int(y-1), int(z)))
				if !supported {
					continue
				}
				grid.Cells[idx].Walkable = true
				grid.Cells[idx].TraversalCost = cfg.SampleCost(s, x, y, z)
			}
		}
	}

	return grid
}

type Edge struct {
	Node NodeIndex
	Cost float32
}

var neighborOffsets = [6][3]int{
	{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1},
}

// ForEachNeighbor offers the six axis-aligned neighbors of a walkable node,
// skipping out-of-bounds, non-walkable, or too-steep steps.
func ForEachNeighbor(g *Grid, node NodeIndex, cfg NeighborConfig, visit func(Edge)) {
	if !g.WalkableAt(node) {
		return
	}
	x, y, z := g.Coordinates(node)

	for _, off := range neighborOffsets {
		nx := int(x) + off[0]
		ny := int(y) + off[1]
		nz := int(z) + off[2]
		if nx < 0 || ny < 0 || nz < 0 {
			continue
		}
		ux, uy, uz := uint32(nx), uint32(ny), uint32(nz)
		if !g.Contains(ux, uy, uz) {
			continue
		}
		if absInt(int(uy)-int(y)) > int(cfg.MaxStepHeight) {
			continue
		}
		neighborIdx := g.Index(ux, uy, uz)
		if !g.WalkableAt(neighborIdx) {
			continue
		}
		movementCost := cfg.HorizontalCost
		if off[1] != 0 {
			movementCost = cfg.VerticalCost * float32(absInt(off[1]))
		}
		weight := 0.5 * (g.Cost(node) + g.Cost(neighborIdx))
		visit(Edge{Node: neighborIdx, Cost: movementCost * weight})
	}
}

func Neighbors(g *Grid, node NodeIndex, cfg NeighborConfig) []Edge {
	var result []Edge
	ForEachNeighbor(g, node, cfg, func(e Edge) { result = append(result, e) })
	return result
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
