package chunk

import (
	"github.com/almondvoxel/voxelcore/internal/voxel/effects"
	"github.com/almondvoxel/voxelcore/internal/voxel/voxeltype"
)

// Config selects which optional planes a Storage allocates alongside the
// always-present voxel/skylight/blocklight/metadata quadruple.
type Config struct {
	Extent                     voxeltype.ChunkExtent
	EnableMaterials            bool
	EnableHighPrecisionLighting bool
	EffectChannels             effects.Channels
}

func DefaultConfig() Config {
	return Config{Extent: voxeltype.CubicExtent(32)}
}
