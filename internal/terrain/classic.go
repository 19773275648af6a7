// Package terrain holds demo world generators, kept outside
// internal/voxel since terrain generation is an external collaborator
// of the core, not part of it.
package terrain

import (
	"github.com/aquilax/go-perlin"

	"github.com/almondvoxel/voxelcore/internal/voxel/chunk"
	"github.com/almondvoxel/voxelcore/internal/voxel/voxeltype"
)

// ClassicConfig mirrors the knobs almond_voxel's classic heightfield
// generator exposes: two octaved noise layers (broad elevation, fine
// detail) added onto a base height, with a bedrock floor at world_z<=0.
type ClassicConfig struct {
	BaseHeight         float64
	ElevationAmplitude float64
	DetailAmplitude    float64
	BaseFrequency      float64
	DetailFrequency    float64
	SurfaceVoxel       voxeltype.VoxelID
	SubsurfaceVoxel    voxeltype.VoxelID
	BedrockVoxel       voxeltype.VoxelID
	BedrockLayers      uint32
}

// DefaultClassicConfig matches almond_voxel's classic_config defaults.
func DefaultClassicConfig() ClassicConfig {
	return ClassicConfig{
		BaseHeight:         48.0,
		ElevationAmplitude: 32.0,
		DetailAmplitude:    8.0,
		BaseFrequency:      0.008,
		DetailFrequency:    0.032,
		SurfaceVoxel:       1,
		SubsurfaceVoxel:    1,
		BedrockVoxel:       1,
		BedrockLayers:      2,
	}
}

// ClassicHeightfield is a region.Loader-shaped heightfield generator: Z
// is the vertical axis, X/Y are the horizontal plane sampled by two
// Perlin noise layers at different frequencies.
type ClassicHeightfield struct {
	extent     voxeltype.ChunkExtent
	config     ClassicConfig
	baseNoise  *perlin.Perlin
	detailNoise *perlin.Perlin
}

// NewClassicHeightfield builds a generator over extent-sized chunks.
func NewClassicHeightfield(extent voxeltype.ChunkExtent, config ClassicConfig, seed int64) *ClassicHeightfield {
	const alpha, beta = 2.0, 2.0
	const octaves = int32(4)

	return &ClassicHeightfield{
		extent:      extent,
		config:      config,
		baseNoise:   perlin.NewPerlin(alpha, beta, octaves, seed),
		detailNoise: perlin.NewPerlin(alpha, beta, octaves, seed^0x5A5A5A5A),
	}
}

// SampleHeight returns the surface height at a world-space X/Y column.
func (h *ClassicHeightfield) SampleHeight(worldX, worldY float64) float64 {
	base := h.baseNoise.Noise2D(worldX*h.config.BaseFrequency, worldY*h.config.BaseFrequency) * h.config.ElevationAmplitude
	detail := h.detailNoise.Noise2D(worldX*h.config.DetailFrequency, worldY*h.config.DetailFrequency) * h.config.DetailAmplitude
	return h.config.BaseHeight + base + detail
}

// Load implements region.Loader: it synthesizes a chunk's voxel plane
// entirely from the heightfield, ignoring any persisted state.
func (h *ClassicHeightfield) Load(key voxeltype.RegionKey) (*chunk.Storage, error) {
	s := chunk.New(chunk.Config{Extent: h.extent})
	voxels := s.Voxels()

	for z := 0; z < int(h.extent.Z); z++ {
		worldZ := int64(key.Z)*int64(h.extent.Z) + int64(z)
		sampleZ := float64(worldZ) + 0.5

		for y := 0; y < int(h.extent.Y); y++ {
			worldY := float64(key.Y)*float64(h.extent.Y) + float64(y)

			for x := 0; x < int(h.extent.X); x++ {
				worldX := float64(key.X)*float64(h.extent.X) + float64(x)
				height := h.SampleHeight(worldX, worldY)

				id := voxeltype.EmptyVoxel
				switch {
				case sampleZ <= height:
					depth := height - sampleZ
					switch {
					case depth > float64(h.config.BedrockLayers):
						id = h.config.SubsurfaceVoxel
					case depth <= 0.5:
						id = h.config.SurfaceVoxel
					default:
						id = h.config.SubsurfaceVoxel
					}
				case worldZ <= 0:
					id = h.config.BedrockVoxel
				}

				voxels.Set(x, y, z, id)
			}
		}
	}

	return s, nil
}
