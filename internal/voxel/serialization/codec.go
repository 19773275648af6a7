package serialization

import (
	"math"

	"github.com/almondvoxel/voxelcore/internal/voxel/effects"
	"github.com/almondvoxel/voxelcore/internal/voxel/material"
	"github.com/almondvoxel/voxelcore/internal/voxel/voxelerr"
	"github.com/almondvoxel/voxelcore/internal/voxel/voxeltype"
)

func float32bits(f float32) uint32    { return math.Float32bits(f) }
func float32frombits(b uint32) float32 { return math.Float32frombits(b) }

func need(data []byte, offset, size int) error {
	if offset+size > len(data) {
		return voxelerr.New(voxelerr.Truncated, "plane payload")
	}
	return nil
}

func readVoxelsInto(data []byte, offset, volume int, dst voxeltype.MutView3D[voxeltype.VoxelID]) (int, error) {
	size := volume * 2
	if err := need(data, offset, size); err != nil {
		return offset, err
	}
	linear := dst.Linear()
	for i := 0; i < volume; i++ {
		linear[i] = voxeltype.VoxelID(endian.Uint16(data[offset+i*2:]))
	}
	return offset + size, nil
}

func readBytesInto(data []byte, offset, volume int, dst voxeltype.MutView3D[uint8]) (int, error) {
	if err := need(data, offset, volume); err != nil {
		return offset, err
	}
	copy(dst.Linear(), data[offset:offset+volume])
	return offset + volume, nil
}

func readMaterialsInto(data []byte, offset, volume int, dst voxeltype.MutView3D[material.Index]) (int, error) {
	size := volume * 2
	if err := need(data, offset, size); err != nil {
		return offset, err
	}
	linear := dst.Linear()
	for i := 0; i < volume; i++ {
		linear[i] = material.Index(endian.Uint16(data[offset+i*2:]))
	}
	return offset + size, nil
}

func readFloatsInto(data []byte, offset, volume int, dst voxeltype.MutView3D[float32]) (int, error) {
	size := volume * 4
	if err := need(data, offset, size); err != nil {
		return offset, err
	}
	linear := dst.Linear()
	for i := 0; i < volume; i++ {
		linear[i] = float32frombits(endian.Uint32(data[offset+i*4:]))
	}
	return offset + size, nil
}

func readFloatsSliceInto(data []byte, offset, volume int, dst []float32) (int, error) {
	size := volume * 4
	if err := need(data, offset, size); err != nil {
		return offset, err
	}
	for i := 0; i < volume; i++ {
		dst[i] = float32frombits(endian.Uint32(data[offset+i*4:]))
	}
	return offset + size, nil
}

func readVelocityInto(data []byte, offset, volume int, dst []effects.Velocity) (int, error) {
	size := volume * 3 * 4
	if err := need(data, offset, size); err != nil {
		return offset, err
	}
	for i := 0; i < volume; i++ {
		base := offset + i*12
		dst[i] = effects.Velocity{
			X: float32frombits(endian.Uint32(data[base:])),
			Y: float32frombits(endian.Uint32(data[base+4:])),
			Z: float32frombits(endian.Uint32(data[base+8:])),
		}
	}
	return offset + size, nil
}
