package meshing

import (
	"github.com/almondvoxel/voxelcore/internal/voxel/chunk"
	"github.com/almondvoxel/voxelcore/internal/voxel/voxeltype"
)

// ChunkNeighbors names up to six neighbor chunks, one per face, used by the
// cross-chunk variants of the meshers.
type ChunkNeighbors struct {
	PosX, NegX, PosY, NegY, PosZ, NegZ *chunk.Storage
}

func (n ChunkNeighbors) Get(face voxeltype.BlockFace) *chunk.Storage {
	switch face {
	case voxeltype.FacePosX:
		return n.PosX
	case voxeltype.FaceNegX:
		return n.NegX
	case voxeltype.FacePosY:
		return n.PosY
	case voxeltype.FaceNegY:
		return n.NegY
	case voxeltype.FacePosZ:
		return n.PosZ
	default:
		return n.NegZ
	}
}

type neighborView struct {
	voxels    voxeltype.View3D[voxeltype.VoxelID]
	extent    voxeltype.ChunkExtent
	available bool
}

func loadNeighborViews(neighbors ChunkNeighbors) [voxeltype.BlockFaceCount]neighborView {
	var result [voxeltype.BlockFaceCount]neighborView
	assign := func(face voxeltype.BlockFace, s *chunk.Storage) {
		if s == nil {
			return
		}
		result[face] = neighborView{voxels: s.VoxelsConst(), extent: s.Extent(), available: true}
	}
	assign(voxeltype.FacePosX, neighbors.PosX)
	assign(voxeltype.FaceNegX, neighbors.NegX)
	assign(voxeltype.FacePosY, neighbors.PosY)
	assign(voxeltype.FaceNegY, neighbors.NegY)
	assign(voxeltype.FacePosZ, neighbors.PosZ)
	assign(voxeltype.FaceNegZ, neighbors.NegZ)
	return result
}

// remapToNeighborCoords converts an out-of-range chunk-local coordinate to
// a coordinate within exactly one neighbor chunk. It returns ok=false when
// more than one axis is out of range (the cross-boundary lookup is only
// valid when exactly one axis crosses) or the named neighbor is absent.
func remapToNeighborCoords(extent voxeltype.ChunkExtent, coord [3]int, neighbors [voxeltype.BlockFaceCount]neighborView) (view *neighborView, remapped [3]int, ok bool) {
	dims := [3]int{int(extent.X), int(extent.Y), int(extent.Z)}

	outOfBoundsAxes := 0
	var face voxeltype.BlockFace

	if coord[0] < 0 {
		face = voxeltype.FaceNegX
		outOfBoundsAxes++
	} else if coord[0] >= dims[0] {
		face = voxeltype.FacePosX
		outOfBoundsAxes++
	}

	if coord[1] < 0 {
		face = voxeltype.FaceNegY
		outOfBoundsAxes++
	} else if coord[1] >= dims[1] {
		face = voxeltype.FacePosY
		outOfBoundsAxes++
	}

	if coord[2] < 0 {
		face = voxeltype.FaceNegZ
		outOfBoundsAxes++
	} else if coord[2] >= dims[2] {
		face = voxeltype.FacePosZ
		outOfBoundsAxes++
	}

	if outOfBoundsAxes != 1 {
		return nil, coord, false
	}

	v := &neighbors[face]
	if !v.available {
		return nil, coord, false
	}

	remapped = coord
	switch face {
	case voxeltype.FaceNegX:
		remapped[0] += int(v.extent.X)
	case voxeltype.FacePosX:
		remapped[0] -= dims[0]
	case voxeltype.FaceNegY:
		remapped[1] += int(v.extent.Y)
	case voxeltype.FacePosY:
		remapped[1] -= dims[1]
	case voxeltype.FaceNegZ:
		remapped[2] += int(v.extent.Z)
	case voxeltype.FacePosZ:
		remapped[2] -= dims[2]
	}

	if !v.extent.Contains(remapped[0], remapped[1], remapped[2]) {
		return nil, coord, false
	}
	return v, remapped, true
}
