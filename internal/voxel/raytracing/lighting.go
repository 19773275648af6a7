package raytracing

import (
	"github.com/almondvoxel/voxelcore/internal/voxel/chunk"
	"github.com/almondvoxel/voxelcore/internal/voxel/region"
	"github.com/almondvoxel/voxelcore/internal/voxel/voxeltype"
)

// BakeLighting fills block/skylight planes from a single upward cone trace
// per solid voxel, treating empty cells as fully sky-lit.
func BakeLighting(s *chunk.Storage, svo *SparseVoxelOctree) {
	_ = svo // reserved for a future coarse-occlusion fast path
	voxels := s.VoxelsConst()
	blocklight := s.Blocklight()
	skylight := s.Skylight()
	if voxels.Empty() || blocklight.Empty() || skylight.Empty() {
		return
	}

	extent := voxels.Extent()
	desc := ConeTraceDesc{Aperture: 0.75, Steps: 6, MaxDistance: 12.0}

	for z := 0; z < int(extent.Z); z++ {
		for y := 0; y < int(extent.Y); y++ {
			for x := 0; x < int(extent.X); x++ {
				id := voxels.At(x, y, z)
				if id == voxeltype.EmptyVoxel {
					blocklight.Set(x, y, z, 0)
					skylight.Set(x, y, z, 15)
					continue
				}

				desc.Origin = [3]float32{float32(x) + 0.5, float32(y) + 0.5, float32(z) + 0.5}
				desc.Direction = [3]float32{0, 1, 0}
				occlusion := ConeTraceOcclusion(s, desc)

				lightValue := uint8(clamp01(1.0-occlusion) * 15.0)
				blocklight.Set(x, y, z, lightValue)
				if current := skylight.At(x, y, z); lightValue > current {
					skylight.Set(x, y, z, lightValue)
				}
			}
		}
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// EnqueueGlobalIllumination rebuilds the acceleration cache for every
// dirty resident chunk, subscribes the cache to future dirty events, and
// queues a lighting bake task for every currently-loaded chunk.
func EnqueueGlobalIllumination(manager *region.Manager, cache *AccelerationCache) {
	if cache == nil {
		return
	}

	cache.RebuildDirty(manager)
	manager.AddDirtyObserver(func(key voxeltype.RegionKey) {
		cache.InvalidateRegion(key)
	})

	for _, snapshot := range manager.SnapshotLoaded(true) {
		if snapshot.Chunk == nil {
			continue
		}
		manager.EnqueueTask(snapshot.Key, func(s *chunk.Storage, key voxeltype.RegionKey) error {
			cache.UpdateRegion(key, s)
			if entry, ok := cache.Find(key); ok {
				BakeLighting(s, &entry.SVO)
				s.MarkDirty(true)
			}
			return nil
		})
	}
}
