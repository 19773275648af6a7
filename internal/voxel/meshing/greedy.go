package meshing

import (
	"github.com/almondvoxel/voxelcore/internal/voxel/chunk"
	"github.com/almondvoxel/voxelcore/internal/voxel/voxeltype"
)

// verticalFaceBias nudges top/bottom (Z-axis) quad vertices a hair off the
// integer cell boundary so that top and bottom faces of abutting chunks
// never land on the exact same plane as a skylight quad, which otherwise
// z-fights under the renderer's depth bias.
const verticalFaceBias = 0.001

// IsOpaque reports whether a voxel should be treated as solid for meshing.
type IsOpaque func(id voxeltype.VoxelID) bool

// NeighborOpaque reports whether the voxel at a chunk-local coordinate one
// step outside this chunk's bounds (along the given axis) is solid.
type NeighborOpaque func(axis voxeltype.Axis, localCoord [3]int) bool

type maskCell struct {
	filled bool
	id     voxeltype.VoxelID
}

// GreedyMeshWithNeighbors sweeps each of the six face directions with a 2D
// mask per plane, merging adjacent same-material faces into maximal quads.
func GreedyMeshWithNeighbors(s *chunk.Storage, isOpaque IsOpaque, neighborOpaque NeighborOpaque) Result {
	var result Result
	extent := s.Extent()
	dims := [3]int{int(extent.X), int(extent.Y), int(extent.Z)}
	voxels := s.VoxelsConst()

	for _, face := range voxeltype.AllFaces {
		axis := int(face.Axis())
		sign := face.Sign()
		uAxis := (axis + 1) % 3
		vAxis := (axis + 2) % 3
		du := dims[uAxis]
		dv := dims[vAxis]

		mask := make([]maskCell, du*dv)

		for plane := 0; plane < dims[axis]; plane++ {
			for i := range mask {
				mask[i] = maskCell{}
			}

			for v := 0; v < dv; v++ {
				for u := 0; u < du; u++ {
					idx := u + v*du
					var pos [3]int
					pos[axis] = plane
					pos[uAxis] = u
					pos[vAxis] = v

					current := voxels.At(pos[0], pos[1], pos[2])
					if !isOpaque(current) {
						continue
					}

					neighborInside := true
					neighbor := pos
					if sign > 0 {
						neighbor[axis] = pos[axis] + 1
						neighborInside = neighbor[axis] < dims[axis]
					} else {
						neighborInside = pos[axis] > 0
						if neighborInside {
							neighbor[axis] = pos[axis] - 1
						}
					}

					var neighborSolid bool
					if neighborInside {
						neighborSolid = isOpaque(voxels.At(neighbor[0], neighbor[1], neighbor[2]))
					} else if neighborOpaque != nil {
						local := pos
						local[axis] += sign
						neighborSolid = neighborOpaque(voxeltype.Axis(axis), local)
					}

					if !neighborSolid {
						mask[idx] = maskCell{filled: true, id: current}
					}
				}
			}

			for v := 0; v < dv; v++ {
				for u := 0; u < du; u++ {
					idx := u + v*du
					cell := mask[idx]
					if !cell.filled {
						continue
					}

					width := 1
					for u+width < du {
						next := mask[idx+width]
						if !next.filled || next.id != cell.id {
							break
						}
						width++
					}

					height := 1
					stop := false
					for v+height < dv && !stop {
						for x := 0; x < width; x++ {
							next := mask[idx+x+height*du]
							if !next.filled || next.id != cell.id {
								stop = true
								break
							}
						}
						if !stop {
							height++
						}
					}

					axisCoord := float32(plane)
					if sign > 0 {
						axisCoord = float32(plane + 1)
					}
					if axis == int(voxeltype.AxisZ) {
						axisCoord += float32(sign) * verticalFaceBias
					}

					var base [3]float32
					base[axis] = axisCoord
					base[uAxis] = float32(u)
					base[vAxis] = float32(v)

					var duVec, dvVec [3]float32
					duVec[uAxis] = float32(width)
					dvVec[vAxis] = float32(height)

					corners := [4][3]float32{
						base,
						{base[0] + duVec[0], base[1] + duVec[1], base[2] + duVec[2]},
						{base[0] + duVec[0] + dvVec[0], base[1] + duVec[1] + dvVec[1], base[2] + duVec[2] + dvVec[2]},
						{base[0] + dvVec[0], base[1] + dvVec[1], base[2] + dvVec[2]},
					}

					uv := [4][2]float32{
						{0, 0},
						{float32(width), 0},
						{float32(width), float32(height)},
						{0, float32(height)},
					}

					normalI := face.Normal()
					normal := [3]float32{float32(normalI[0]), float32(normalI[1]), float32(normalI[2])}

					result.appendQuad(corners, uv, normal, cell.id, sign)

					for dy := 0; dy < height; dy++ {
						for dx := 0; dx < width; dx++ {
							mask[u+dx+(v+dy)*du].filled = false
						}
					}
				}
			}
		}
	}

	return result
}

// GreedyMesh meshes a chunk in isolation; faces on chunk boundaries are
// always emitted, since there is no neighbor to test against.
func GreedyMesh(s *chunk.Storage, isOpaque IsOpaque) Result {
	return GreedyMeshWithNeighbors(s, isOpaque, nil)
}

// DefaultIsOpaque treats every non-empty voxel as solid.
func DefaultIsOpaque(id voxeltype.VoxelID) bool { return id != voxeltype.EmptyVoxel }

// NeighborOpaqueFromChunks builds a NeighborOpaque callback backed by the
// six loaded neighbor chunks, using remapToNeighborCoords to translate the
// out-of-bounds coordinate. Faces against an unloaded neighbor are treated
// as non-opaque (i.e. the face is emitted), matching the teacher's edge
// behavior of meshing optimistically at unloaded boundaries.
func NeighborOpaqueFromChunks(neighbors ChunkNeighbors, extent voxeltype.ChunkExtent, isOpaque IsOpaque) NeighborOpaque {
	views := loadNeighborViews(neighbors)
	return func(_ voxeltype.Axis, localCoord [3]int) bool {
		view, remapped, ok := remapToNeighborCoords(extent, localCoord, views)
		if !ok {
			return false
		}
		return isOpaque(view.voxels.At(remapped[0], remapped[1], remapped[2]))
	}
}
