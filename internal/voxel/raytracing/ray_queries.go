package raytracing

import (
	"math"

	"github.com/almondvoxel/voxelcore/internal/voxel/chunk"
	"github.com/almondvoxel/voxelcore/internal/voxel/voxeltype"
)

type Ray struct {
	Origin    [3]float32
	Direction [3]float32
}

type VoxelHit struct {
	Hit      bool
	Position [3]int
	Distance float32
	Material voxeltype.VoxelID
}

func floorToInt(v [3]float32) [3]int {
	return [3]int{
		int(math.Floor(float64(v[0]))),
		int(math.Floor(float64(v[1]))),
		int(math.Floor(float64(v[2]))),
	}
}

// TraceVoxels walks the voxel grid along query using Amanatides–Woo DDA,
// returning the first solid cell within maxDistance.
func TraceVoxels(s *chunk.Storage, query Ray, maxDistance float32) VoxelHit {
	var result VoxelHit
	voxels := s.VoxelsConst()
	if voxels.Empty() {
		return result
	}

	var invDir [3]float32
	for axis := 0; axis < 3; axis++ {
		if math.Abs(float64(query.Direction[axis])) > 1e-6 {
			invDir[axis] = 1.0 / query.Direction[axis]
		} else {
			invDir[axis] = math.MaxFloat32
		}
	}

	pos := query.Origin
	voxelPos := floorToInt(pos)

	var tMax, tDelta [3]float32
	for axis := 0; axis < 3; axis++ {
		switch {
		case query.Direction[axis] > 0:
			tMax[axis] = (float32(voxelPos[axis]+1) - pos[axis]) * invDir[axis]
			tDelta[axis] = float32(math.Abs(float64(invDir[axis])))
		case query.Direction[axis] < 0:
			tMax[axis] = (float32(voxelPos[axis]) - pos[axis]) * invDir[axis]
			tDelta[axis] = float32(math.Abs(float64(invDir[axis])))
		default:
			tMax[axis] = float32(math.Inf(1))
			tDelta[axis] = float32(math.Inf(1))
		}
	}

	step := [3]int{0, 0, 0}
	for axis := 0; axis < 3; axis++ {
		switch {
		case query.Direction[axis] > 0:
			step[axis] = 1
		case query.Direction[axis] < 0:
			step[axis] = -1
		}
	}

	extent := voxels.Extent()
	inBounds := func(coords [3]int) bool {
		return extent.Contains(coords[0], coords[1], coords[2])
	}

	distance := float32(0)
	for distance <= maxDistance {
		if inBounds(voxelPos) {
			id := voxels.At(voxelPos[0], voxelPos[1], voxelPos[2])
			if id != voxeltype.EmptyVoxel {
				result.Hit = true
				result.Position = voxelPos
				result.Distance = distance
				result.Material = id
				return result
			}
		}

		axis := 0
		if tMax[1] < tMax[axis] {
			axis = 1
		}
		if tMax[2] < tMax[axis] {
			axis = 2
		}

		distance = tMax[axis]
		voxelPos[axis] += step[axis]
		tMax[axis] += tDelta[axis]

		if !inBounds(voxelPos) && distance > maxDistance {
			break
		}
	}

	return result
}

type ConeTraceDesc struct {
	Origin      [3]float32
	Direction   [3]float32
	MaxDistance float32
	Aperture    float32
	Steps       uint32
}

func DefaultConeTraceDesc() ConeTraceDesc {
	return ConeTraceDesc{MaxDistance: 16.0, Aperture: 0.5, Steps: 8}
}

// ConeTraceOcclusion samples a widening cone along the ray direction,
// accumulating 1/steps of occlusion for each step that finds any solid
// voxel within its sample radius.
func ConeTraceOcclusion(s *chunk.Storage, desc ConeTraceDesc) float32 {
	voxels := s.VoxelsConst()
	if voxels.Empty() {
		return 0
	}

	dir := desc.Direction
	length := math.Sqrt(float64(dir[0]*dir[0] + dir[1]*dir[1] + dir[2]*dir[2]))
	if length <= 1e-6 {
		return 0
	}
	dir[0] /= float32(length)
	dir[1] /= float32(length)
	dir[2] /= float32(length)

	extent := voxels.Extent()
	occlusion := float32(0)

	for step := uint32(0); step < desc.Steps; step++ {
		t := (float32(step) + 0.5) / float32(desc.Steps)
		radius := desc.Aperture * t
		distance := desc.MaxDistance * t
		sample := [3]float32{
			desc.Origin[0] + dir[0]*distance,
			desc.Origin[1] + dir[1]*distance,
			desc.Origin[2] + dir[2]*distance,
		}

		center := floorToInt(sample)
		radiusVoxels := int(math.Ceil(float64(radius)))

	probe:
		for dz := -radiusVoxels; dz <= radiusVoxels; dz++ {
			for dy := -radiusVoxels; dy <= radiusVoxels; dy++ {
				for dx := -radiusVoxels; dx <= radiusVoxels; dx++ {
					probePos := [3]int{center[0] + dx, center[1] + dy, center[2] + dz}
					if !extent.Contains(probePos[0], probePos[1], probePos[2]) {
						continue
					}
					if voxels.At(probePos[0], probePos[1], probePos[2]) != voxeltype.EmptyVoxel {
						occlusion += 1.0 / float32(desc.Steps)
						break probe
					}
				}
			}
		}
	}

	if occlusion < 0 {
		occlusion = 0
	}
	if occlusion > 1 {
		occlusion = 1
	}
	return occlusion
}

// ExportGPUNodes appends the GPU-ready octree buffer for key's region (if
// cached) onto outBuffer.
func ExportGPUNodes(cache *AccelerationCache, key voxeltype.RegionKey, outBuffer []GPUNode) []GPUNode {
	entry, ok := cache.Find(key)
	if !ok {
		return outBuffer
	}
	return append(outBuffer, entry.SVO.ExportGPUBuffer()...)
}
