package navigation

import (
	"github.com/almondvoxel/voxelcore/internal/voxel/voxeltype"
)

const DefaultMaxFollowSteps = 1024

type RegionView struct {
	Key  voxeltype.RegionKey
	Grid *Grid
}

type Bridge struct {
	FromRegion voxeltype.RegionKey
	FromNode   NodeIndex
	ToRegion   voxeltype.RegionKey
	ToNode     NodeIndex
	Cost       float32
}

type StitchedGraph struct {
	Regions []RegionView
	Bridges []Bridge
}

// StitchNeighborRegions runs stitchPair over every ordered region pair in
// the set, emitting bridges only between regions whose keys are Manhattan-
// adjacent (distance == 1).
func StitchNeighborRegions(neighbor NeighborConfig, extent voxeltype.ChunkExtent, stitched *StitchedGraph) {
	for i := 0; i < len(stitched.Regions); i++ {
		for j := i + 1; j < len(stitched.Regions); j++ {
			stitchPair(neighbor, extent, stitched.Regions[i], stitched.Regions[j], stitched)
			stitchPair(neighbor, extent, stitched.Regions[j], stitched.Regions[i], stitched)
		}
	}
}

func stitchPair(neighbor NeighborConfig, extent voxeltype.ChunkExtent, from, to RegionView, stitched *StitchedGraph) {
	dx := int(to.Key.X) - int(from.Key.X)
	dy := int(to.Key.Y) - int(from.Key.Y)
	dz := int(to.Key.Z) - int(from.Key.Z)
	manhattan := absInt(dx) + absInt(dy) + absInt(dz)
	if manhattan != 1 || from.Grid == nil || to.Grid == nil {
		return
	}

	addBridge := func(fx, fy, fz, tx, ty, tz uint32) {
		fromIndex := from.Grid.Index(fx, fy, fz)
		toIndex := to.Grid.Index(tx, ty, tz)
		if !from.Grid.WalkableAt(fromIndex) || !to.Grid.WalkableAt(toIndex) {
			return
		}
		if absInt(int(ty)-int(fy)) > int(neighbor.MaxStepHeight) {
			return
		}
		movementCost := neighbor.HorizontalCost
		verticalDelta := int(ty) - int(fy)
		if dy != 0 {
			movementCost = neighbor.VerticalCost * float32(absInt(dy))
		}
		if verticalDelta != 0 {
			movementCost += neighbor.VerticalCost * float32(absInt(verticalDelta))
		}
		weight := 0.5 * (from.Grid.Cost(fromIndex) + to.Grid.Cost(toIndex))
		stitched.Bridges = append(stitched.Bridges, Bridge{
			FromRegion: from.Key, FromNode: fromIndex,
			ToRegion: to.Key, ToNode: toIndex,
			Cost: movementCost * weight,
		})
	}

	stepRange := func(center uint32, span uint32) []int {
		var offsets []int
		for off := -int(neighbor.MaxStepHeight); off <= int(neighbor.MaxStepHeight); off++ {
			ty := int(center) + off
			if ty < 0 || ty >= int(span) {
				continue
			}
			offsets = append(offsets, ty)
		}
		return offsets
	}

	switch {
	case dx != 0:
		fx, tx := uint32(0), uint32(0)
		if dx > 0 {
			fx, tx = extent.X-1, 0
		} else {
			fx, tx = 0, extent.X-1
		}
		for y := uint32(0); y < extent.Y; y++ {
			for z := uint32(0); z < extent.Z; z++ {
				for _, ty := range stepRange(y, extent.Y) {
					addBridge(fx, y, z, tx, uint32(ty), z)
				}
			}
		}
	case dz != 0:
		fz, tz := uint32(0), uint32(0)
		if dz > 0 {
			fz, tz = extent.Z-1, 0
		} else {
			fz, tz = 0, extent.Z-1
		}
		for y := uint32(0); y < extent.Y; y++ {
			for x := uint32(0); x < extent.X; x++ {
				for _, ty := range stepRange(y, extent.Y) {
					addBridge(x, y, fz, x, uint32(ty), tz)
				}
			}
		}
	case dy != 0:
		fy, ty := uint32(0), uint32(0)
		if dy > 0 {
			fy, ty = extent.Y-1, 0
		} else {
			fy, ty = 0, extent.Y-1
		}
		for x := uint32(0); x < extent.X; x++ {
			for z := uint32(0); z < extent.Z; z++ {
				addBridge(x, fy, z, x, ty, z)
			}
		}
	}
}
