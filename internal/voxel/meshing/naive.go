package meshing

import (
	"github.com/almondvoxel/voxelcore/internal/voxel/chunk"
	"github.com/almondvoxel/voxelcore/internal/voxel/voxeltype"
)

type naiveFaceDefinition struct {
	corners [4][3]float32
	uvs     [4][2]float32
}

var naiveFaceDefinitions = map[voxeltype.BlockFace]naiveFaceDefinition{
	voxeltype.FacePosX: {
		corners: [4][3]float32{{1, 0, 0}, {1, 0, 1}, {1, 1, 1}, {1, 1, 0}},
		uvs:     [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
	},
	voxeltype.FaceNegX: {
		corners: [4][3]float32{{0, 0, 0}, {0, 1, 0}, {0, 1, 1}, {0, 0, 1}},
		uvs:     [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
	},
	voxeltype.FacePosY: {
		corners: [4][3]float32{{0, 1, 0}, {1, 1, 0}, {1, 1, 1}, {0, 1, 1}},
		uvs:     [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
	},
	voxeltype.FaceNegY: {
		corners: [4][3]float32{{0, 0, 0}, {0, 0, 1}, {1, 0, 1}, {1, 0, 0}},
		uvs:     [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
	},
	voxeltype.FacePosZ: {
		corners: [4][3]float32{{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}},
		uvs:     [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
	},
	voxeltype.FaceNegZ: {
		corners: [4][3]float32{{0, 0, 0}, {0, 1, 0}, {1, 1, 0}, {1, 0, 0}},
		uvs:     [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
	},
}

// NaiveMeshWithNeighbors emits one quad per exposed face of every opaque
// voxel, with no merging. It exists as a slow, obviously-correct oracle to
// validate the greedy mesher's output against.
func NaiveMeshWithNeighbors(s *chunk.Storage, isOpaque IsOpaque, neighborOpaque NeighborOpaque) Result {
	var result Result
	extent := s.Extent()
	voxels := s.VoxelsConst()

	for z := 0; z < int(extent.Z); z++ {
		for y := 0; y < int(extent.Y); y++ {
			for x := 0; x < int(extent.X); x++ {
				id := voxels.At(x, y, z)
				if !isOpaque(id) {
					continue
				}

				for _, face := range voxeltype.AllFaces {
					normalI := face.Normal()
					neighborCoord := [3]int{x + normalI[0], y + normalI[1], z + normalI[2]}

					neighborInside := extent.Contains(neighborCoord[0], neighborCoord[1], neighborCoord[2])
					var neighborSolid bool
					if neighborInside {
						neighborSolid = isOpaque(voxels.At(neighborCoord[0], neighborCoord[1], neighborCoord[2]))
					} else if neighborOpaque != nil {
						neighborSolid = neighborOpaque(face.Axis(), neighborCoord)
					}

					if neighborSolid {
						continue
					}

					definition := naiveFaceDefinitions[face]
					base := [3]float32{float32(x), float32(y), float32(z)}
					normal := [3]float32{float32(normalI[0]), float32(normalI[1]), float32(normalI[2])}

					var corners [4][3]float32
					for i := 0; i < 4; i++ {
						corners[i] = [3]float32{
							base[0] + definition.corners[i][0],
							base[1] + definition.corners[i][1],
							base[2] + definition.corners[i][2],
						}
					}

					result.appendQuad(corners, definition.uvs, normal, id, 1)
				}
			}
		}
	}

	return result
}

// NaiveMeshWithNeighborChunks meshes a chunk against real neighbor storage.
func NaiveMeshWithNeighborChunks(s *chunk.Storage, neighbors ChunkNeighbors, isOpaque IsOpaque) Result {
	return NaiveMeshWithNeighbors(s, isOpaque, NeighborOpaqueFromChunks(neighbors, s.Extent(), isOpaque))
}

// NaiveMesh meshes a chunk in isolation.
func NaiveMesh(s *chunk.Storage, isOpaque IsOpaque) Result {
	return NaiveMeshWithNeighbors(s, isOpaque, nil)
}
