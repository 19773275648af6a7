// Package editing turns absolute world positions into region-relative
// chunk coordinates and provides the handful of single-voxel mutation
// helpers built on top of that split.
package editing

import (
	"github.com/almondvoxel/voxelcore/internal/voxel/chunk"
	"github.com/almondvoxel/voxelcore/internal/voxel/region"
	"github.com/almondvoxel/voxelcore/internal/voxel/voxeltype"
)

// WorldPosition is an absolute voxel coordinate in world space, unbounded
// in either direction.
type WorldPosition struct {
	X, Y, Z int64
}

// ChunkCoordinates names a voxel by which region holds it and its local
// offset inside that region's chunk.
type ChunkCoordinates struct {
	Region voxeltype.RegionKey
	Local  [3]uint32
}

// floorDivMod divides value by divisor using floored (not truncated)
// division, so negative world coordinates map to the correct region on
// the far side of the origin instead of reflecting back toward it.
func floorDivMod(value int64, divisor uint32) (int32, uint32) {
	denom := int64(divisor)
	quotient := value / denom
	remainder := value % denom
	if remainder < 0 {
		remainder += denom
		quotient--
	}
	return int32(quotient), uint32(remainder)
}

// SplitWorldPosition resolves an absolute position to a region key plus
// local coordinate, given the uniform chunk extent in use.
func SplitWorldPosition(position WorldPosition, extent voxeltype.ChunkExtent) ChunkCoordinates {
	rx, lx := floorDivMod(position.X, extent.X)
	ry, ly := floorDivMod(position.Y, extent.Y)
	rz, lz := floorDivMod(position.Z, extent.Z)
	return ChunkCoordinates{
		Region: voxeltype.RegionKey{X: rx, Y: ry, Z: rz},
		Local:  [3]uint32{lx, ly, lz},
	}
}

// SetVoxelLocal writes id at a chunk-local coordinate, reporting false if
// the coordinate lies outside the chunk's extent.
func SetVoxelLocal(s *chunk.Storage, local [3]uint32, id voxeltype.VoxelID) bool {
	voxels := s.Voxels()
	x, y, z := int(local[0]), int(local[1]), int(local[2])
	if !voxels.Contains(x, y, z) {
		return false
	}
	voxels.Set(x, y, z, id)
	return true
}

// ClearVoxelLocal is SetVoxelLocal with the empty voxel.
func ClearVoxelLocal(s *chunk.Storage, local [3]uint32) bool {
	return SetVoxelLocal(s, local, voxeltype.EmptyVoxel)
}

// SetVoxel resolves position against manager's chunk dimensions, assures
// the owning chunk, and writes id there.
func SetVoxel(manager *region.Manager, position WorldPosition, id voxeltype.VoxelID) (bool, error) {
	coords := SplitWorldPosition(position, manager.ChunkDimensions())
	s, err := manager.Assure(coords.Region)
	if err != nil {
		return false, err
	}
	return SetVoxelLocal(s, coords.Local, id), nil
}

// ClearVoxel is SetVoxel with the empty voxel.
func ClearVoxel(manager *region.Manager, position WorldPosition) (bool, error) {
	return SetVoxel(manager, position, voxeltype.EmptyVoxel)
}

// ToggleVoxel clears an occupied voxel or fills an empty one with
// onValue.
func ToggleVoxel(manager *region.Manager, position WorldPosition, onValue voxeltype.VoxelID) (bool, error) {
	coords := SplitWorldPosition(position, manager.ChunkDimensions())
	s, err := manager.Assure(coords.Region)
	if err != nil {
		return false, err
	}

	voxels := s.Voxels()
	x, y, z := int(coords.Local[0]), int(coords.Local[1]), int(coords.Local[2])
	if !voxels.Contains(x, y, z) {
		return false, nil
	}

	if voxels.At(x, y, z) == voxeltype.EmptyVoxel {
		voxels.Set(x, y, z, onValue)
	} else {
		voxels.Set(x, y, z, voxeltype.EmptyVoxel)
	}
	return true, nil
}
