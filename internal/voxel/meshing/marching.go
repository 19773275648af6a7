package meshing

import (
	"math"

	"github.com/almondvoxel/voxelcore/internal/voxel/chunk"
	"github.com/almondvoxel/voxelcore/internal/voxel/voxeltype"
)

// Config tunes the implicit-surface extraction. Sample values strictly
// below IsoValue are solid; values at or above it are empty.
type Config struct {
	IsoValue float32
}

func DefaultConfig() Config { return Config{IsoValue: 0.5} }

var cubeCorners = [8][3]int{
	{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
}

var edgeConnection = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

func interpolateVertex(p0, p1 [3]float32, v0, v1, iso float32) [3]float32 {
	delta := v1 - v0
	if math.Abs(float64(delta)) < 1e-6 {
		return p0
	}
	mu := (iso - v0) / delta
	return [3]float32{
		p0[0] + mu*(p1[0]-p0[0]),
		p0[1] + mu*(p1[1]-p0[1]),
		p0[2] + mu*(p1[2]-p0[2]),
	}
}

func computeNormal(p0, p1, p2 [3]float32) [3]float32 {
	u := [3]float32{p1[0] - p0[0], p1[1] - p0[1], p1[2] - p0[2]}
	v := [3]float32{p2[0] - p0[0], p2[1] - p0[1], p2[2] - p0[2]}

	n := [3]float32{
		v[1]*u[2] - v[2]*u[1],
		v[2]*u[0] - v[0]*u[2],
		v[0]*u[1] - v[1]*u[0],
	}

	lengthSq := n[0]*n[0] + n[1]*n[1] + n[2]*n[2]
	if lengthSq <= 1e-12 {
		return [3]float32{}
	}
	invLength := float32(1.0 / math.Sqrt(float64(lengthSq)))
	return [3]float32{n[0] * invLength, n[1] * invLength, n[2] * invLength}
}

// DensitySampler returns the implicit-surface density at an absolute
// grid-corner sample coordinate, which may lie one cell beyond extent.
type DensitySampler func(x, y, z int) float32

// MaterialSampler returns the voxel to tag emitted triangles with inside
// the cell whose minimum corner is (x, y, z).
type MaterialSampler func(x, y, z int) voxeltype.VoxelID

// MarchingCubes extracts a triangle mesh from a scalar field over extent.
func MarchingCubes(extent voxeltype.ChunkExtent, density DensitySampler, material MaterialSampler, cfg Config) Result {
	var result Result

	var edgeVertices [12][3]float32

	for z := 0; z < int(extent.Z); z++ {
		for y := 0; y < int(extent.Y); y++ {
			for x := 0; x < int(extent.X); x++ {
				var cornerValues [8]float32
				var cornerPositions [8][3]float32

				for corner := 0; corner < 8; corner++ {
					offset := cubeCorners[corner]
					sampleX := x + offset[0]
					sampleY := y + offset[1]
					sampleZ := z + offset[2]
					cornerValues[corner] = density(sampleX, sampleY, sampleZ)
					cornerPositions[corner] = [3]float32{
						float32(x + offset[0]),
						float32(y + offset[1]),
						float32(z + offset[2]),
					}
				}

				cubeIndex := 0
				for corner := 0; corner < 8; corner++ {
					if cornerValues[corner] < cfg.IsoValue {
						cubeIndex |= 1 << corner
					}
				}

				if mcEdgeTable[cubeIndex] == 0 {
					continue
				}

				for edge := 0; edge < 12; edge++ {
					if mcEdgeTable[cubeIndex]&(uint16(1)<<uint(edge)) == 0 {
						continue
					}
					conn := edgeConnection[edge]
					edgeVertices[edge] = interpolateVertex(
						cornerPositions[conn[0]], cornerPositions[conn[1]],
						cornerValues[conn[0]], cornerValues[conn[1]],
						cfg.IsoValue)
				}

				mat := material(x, y, z)
				tris := mcTriangleTable[cubeIndex]
				for tri := 0; tris[tri] != -1; tri += 3 {
					a0, a1, a2 := tris[tri], tris[tri+1], tris[tri+2]
					p0 := edgeVertices[a0]
					p1 := edgeVertices[a1]
					p2 := edgeVertices[a2]
					normal := computeNormal(p0, p1, p2)

					base := uint32(len(result.Vertices))
					result.Vertices = append(result.Vertices,
						Vertex{Position: p0, Normal: normal, UV: [2]float32{p0[0], p0[1]}, ID: mat},
						Vertex{Position: p1, Normal: normal, UV: [2]float32{p1[0], p1[1]}, ID: mat},
						Vertex{Position: p2, Normal: normal, UV: [2]float32{p2[0], p2[1]}, ID: mat},
					)
					result.Indices = append(result.Indices, base, base+1, base+2)
				}
			}
		}
	}

	return result
}

// IsSolid reports whether a voxel should be treated as part of the solid
// region that the implicit surface bounds.
type IsSolid func(id voxeltype.VoxelID) bool

// MarchingCubesFromChunk builds a 0/1 step density field from chunk voxel
// occupancy (1.0 outside the solid region, 0.0 inside), sampling across
// chunk boundaries when neighbors are supplied. An unresolved boundary
// sample (missing neighbor) is treated as outside (density 1.0).
func MarchingCubesFromChunk(s *chunk.Storage, isSolid IsSolid, neighbors ChunkNeighbors, cfg Config) Result {
	voxels := s.VoxelsConst()
	extent := s.Extent()
	views := loadNeighborViews(neighbors)

	sampleVoxel := func(x, y, z int) (voxeltype.VoxelID, bool) {
		if extent.Contains(x, y, z) {
			return voxels.At(x, y, z), true
		}
		view, remapped, ok := remapToNeighborCoords(extent, [3]int{x, y, z}, views)
		if !ok {
			return 0, false
		}
		return view.voxels.At(remapped[0], remapped[1], remapped[2]), true
	}

	density := func(x, y, z int) float32 {
		id, ok := sampleVoxel(x, y, z)
		if !ok {
			return 1.0
		}
		if isSolid(id) {
			return 0.0
		}
		return 1.0
	}

	material := func(x, y, z int) voxeltype.VoxelID {
		return voxels.At(x, y, z)
	}

	return MarchingCubes(extent, density, material, cfg)
}
