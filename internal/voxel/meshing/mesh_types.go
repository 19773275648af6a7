// Package meshing derives polygonal meshes from chunk voxel data: a greedy
// quad-merge mesher, a marching-cubes mesher, and a naive per-voxel mesher
// used as a cross-check oracle for the other two.
package meshing

import "github.com/almondvoxel/voxelcore/internal/voxel/voxeltype"

type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	UV       [2]float32
	ID       voxeltype.VoxelID
}

// Result is an owned vertex + 32-bit-index triangle soup. Every index must
// be < len(Vertices); len(Indices) is always a multiple of 3.
type Result struct {
	Vertices []Vertex
	Indices  []uint32
}

func (r *Result) appendQuad(corners [4][3]float32, uv [4][2]float32, normal [3]float32, id voxeltype.VoxelID, sign int) {
	base := uint32(len(r.Vertices))
	for i := 0; i < 4; i++ {
		r.Vertices = append(r.Vertices, Vertex{Position: corners[i], Normal: normal, UV: uv[i], ID: id})
	}
	if sign > 0 {
		r.Indices = append(r.Indices, base, base+1, base+2, base, base+2, base+3)
	} else {
		r.Indices = append(r.Indices, base, base+2, base+1, base, base+3, base+2)
	}
}
