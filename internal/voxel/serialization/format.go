// Package serialization converts chunk storage to and from the versioned
// binary payload consumed by persistence drivers: a v1/v2 header, the four
// always-present planes, then any optional planes selected by channel
// flags, plus the length-prefixed blob framing used by file-backed sinks.
package serialization

import (
	"bytes"
	"encoding/binary"

	"github.com/almondvoxel/voxelcore/internal/voxel/chunk"
	"github.com/almondvoxel/voxelcore/internal/voxel/effects"
	"github.com/almondvoxel/voxelcore/internal/voxel/material"
	"github.com/almondvoxel/voxelcore/internal/voxel/region"
	"github.com/almondvoxel/voxelcore/internal/voxel/voxelerr"
	"github.com/almondvoxel/voxelcore/internal/voxel/voxeltype"
)

var magic = [4]byte{'A', 'V', 'C', 'K'}

const (
	VersionV1 uint32 = 1
	VersionV2 uint32 = 2

	latestVersion = VersionV2

	headerSizeV1 = 20
	headerSizeV2 = 24
)

const (
	FlagMaterials       uint32 = 0x01
	FlagSkylightCache   uint32 = 0x02
	FlagBlocklightCache uint32 = 0x04
	FlagEffectDensity   uint32 = 0x08
	FlagEffectVelocity  uint32 = 0x10
	FlagEffectLifetime  uint32 = 0x20
)

var endian = binary.NativeEndian

func channelFlagsFor(s *chunk.Storage) uint32 {
	var flags uint32
	if s.MaterialsEnabled() {
		flags |= FlagMaterials
	}
	if s.HighPrecisionLightingEnabled() {
		flags |= FlagSkylightCache | FlagBlocklightCache
	}
	if s.EffectDensityEnabled() {
		flags |= FlagEffectDensity
	}
	if s.EffectVelocityEnabled() {
		flags |= FlagEffectVelocity
	}
	if s.EffectLifetimeEnabled() {
		flags |= FlagEffectLifetime
	}
	return flags
}

// SerializeChunk emits the v2 header (channel flags matching the chunk's
// enabled planes) followed by each enabled plane in fixed order: voxels,
// skylight, blocklight, metadata, materials, skylight_cache,
// blocklight_cache, effect density, effect velocity, effect lifetime.
func SerializeChunk(s *chunk.Storage) []byte {
	extent := s.Extent()
	flags := channelFlagsFor(s)

	buf := new(bytes.Buffer)
	buf.Write(magic[:])
	writeU32(buf, VersionV2)
	writeU32(buf, extent.X)
	writeU32(buf, extent.Y)
	writeU32(buf, extent.Z)
	writeU32(buf, flags)

	writeVoxels(buf, s.VoxelsConst().Linear())
	writeBytes(buf, s.SkylightConst().Linear())
	writeBytes(buf, s.BlocklightConst().Linear())
	writeBytes(buf, s.MetadataConst().Linear())

	if flags&FlagMaterials != 0 {
		materials, _ := s.MaterialsConst()
		writeMaterials(buf, materials.Linear())
	}
	if flags&FlagSkylightCache != 0 {
		cache, _ := s.SkylightCache()
		writeFloats(buf, cache.AsConst().Linear())
	}
	if flags&FlagBlocklightCache != 0 {
		cache, _ := s.BlocklightCache()
		writeFloats(buf, cache.AsConst().Linear())
	}
	if flags&FlagEffectDensity != 0 {
		writeFloats(buf, s.EffectDensityRaw())
	}
	if flags&FlagEffectVelocity != 0 {
		writeVelocity(buf, s.EffectVelocityRaw())
	}
	if flags&FlagEffectLifetime != 0 {
		writeFloats(buf, s.EffectLifetimeRaw())
	}

	return buf.Bytes()
}

// DeserializeChunk reads either header version and allocates a chunk with
// matching features. Version 1 payloads carry no optional planes.
func DeserializeChunk(data []byte) (*chunk.Storage, error) {
	if len(data) < headerSizeV1 {
		return nil, voxelerr.New(voxelerr.Truncated, "header")
	}
	if !bytes.Equal(data[0:4], magic[:]) {
		return nil, voxelerr.New(voxelerr.BadMagic, "chunk payload")
	}

	version := endian.Uint32(data[4:8])
	if version > latestVersion {
		return nil, voxelerr.New(voxelerr.UnsupportedVersion, "chunk payload")
	}

	extent := voxeltype.ChunkExtent{
		X: endian.Uint32(data[8:12]),
		Y: endian.Uint32(data[12:16]),
		Z: endian.Uint32(data[16:20]),
	}

	var flags uint32
	offset := headerSizeV1
	if version >= VersionV2 {
		if len(data) < headerSizeV2 {
			return nil, voxelerr.New(voxelerr.Truncated, "v2 header")
		}
		flags = endian.Uint32(data[20:24])
		offset = headerSizeV2
	}

	cfg := chunk.Config{
		Extent:          extent,
		EnableMaterials: flags&FlagMaterials != 0,
		EnableHighPrecisionLighting: flags&(FlagSkylightCache|FlagBlocklightCache) != 0,
		EffectChannels: effects.Channels{
			Density:  flags&FlagEffectDensity != 0,
			Velocity: flags&FlagEffectVelocity != 0,
			Lifetime: flags&FlagEffectLifetime != 0,
		},
	}

	volume := extent.Volume()
	s := chunk.New(cfg)

	var err error
	offset, err = readVoxelsInto(data, offset, volume, s.Voxels())
	if err != nil {
		return nil, err
	}
	offset, err = readBytesInto(data, offset, volume, s.Skylight())
	if err != nil {
		return nil, err
	}
	offset, err = readBytesInto(data, offset, volume, s.Blocklight())
	if err != nil {
		return nil, err
	}
	offset, err = readBytesInto(data, offset, volume, s.Metadata())
	if err != nil {
		return nil, err
	}

	if flags&FlagMaterials != 0 {
		materials, matErr := s.Materials()
		if matErr != nil {
			return nil, voxelerr.Wrap(voxelerr.DisabledPlane, "materials", matErr)
		}
		offset, err = readMaterialsInto(data, offset, volume, materials)
		if err != nil {
			return nil, err
		}
	}
	if flags&FlagSkylightCache != 0 {
		cache, cacheErr := s.SkylightCache()
		if cacheErr != nil {
			return nil, voxelerr.Wrap(voxelerr.DisabledPlane, "skylight_cache", cacheErr)
		}
		offset, err = readFloatsInto(data, offset, volume, cache)
		if err != nil {
			return nil, err
		}
	}
	if flags&FlagBlocklightCache != 0 {
		cache, cacheErr := s.BlocklightCache()
		if cacheErr != nil {
			return nil, voxelerr.Wrap(voxelerr.DisabledPlane, "blocklight_cache", cacheErr)
		}
		offset, err = readFloatsInto(data, offset, volume, cache)
		if err != nil {
			return nil, err
		}
	}
	if flags&FlagEffectDensity != 0 {
		offset, err = readFloatsSliceInto(data, offset, volume, s.EffectDensityRaw())
		if err != nil {
			return nil, err
		}
	}
	if flags&FlagEffectVelocity != 0 {
		offset, err = readVelocityInto(data, offset, volume, s.EffectVelocityRaw())
		if err != nil {
			return nil, err
		}
	}
	if flags&FlagEffectLifetime != 0 {
		_, err = readFloatsSliceInto(data, offset, volume, s.EffectLifetimeRaw())
		if err != nil {
			return nil, err
		}
	}

	s.MarkDirty(false)
	return s, nil
}

// IsLegacyChunkPayload reports whether data's header names version 1.
func IsLegacyChunkPayload(data []byte) bool {
	if len(data) < headerSizeV1 || !bytes.Equal(data[0:4], magic[:]) {
		return false
	}
	return endian.Uint32(data[4:8]) == VersionV1
}

// MigrateLegacyChunkPayload round-trips a v1 blob through deserialize then
// serialize, producing a v2 payload that preserves the four base planes
// with no optional features.
func MigrateLegacyChunkPayload(data []byte) ([]byte, error) {
	s, err := DeserializeChunk(data)
	if err != nil {
		return nil, err
	}
	return SerializeChunk(s), nil
}

// SnapshotBlob pairs a region key with its serialized chunk payload.
type SnapshotBlob struct {
	Key     voxeltype.RegionKey
	Payload []byte
}

// SerializeSnapshot captures a chunk's current payload under its region
// key, suitable for handing to a persistence driver.
func SerializeSnapshot(key voxeltype.RegionKey, s *chunk.Storage) SnapshotBlob {
	return SnapshotBlob{Key: key, Payload: SerializeChunk(s)}
}

// IngestBlob deserializes blob.Payload and replaces the contents of
// manager.Assure(blob.Key) in place, preserving that entry's dirty
// listeners, then clears dirty.
func IngestBlob(manager *region.Manager, blob SnapshotBlob) error {
	incoming, err := DeserializeChunk(blob.Payload)
	if err != nil {
		return err
	}
	target, err := manager.Assure(blob.Key)
	if err != nil {
		return voxelerr.Wrap(voxelerr.LoaderFailure, "ingest_blob assure", err)
	}
	target.ReplaceFrom(incoming)
	target.MarkDirty(false)
	return nil
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	endian.PutUint32(tmp[:], v)
	buf.Write(tmp[:])
}

func writeVoxels(buf *bytes.Buffer, voxels []voxeltype.VoxelID) {
	tmp := make([]byte, 2)
	for _, v := range voxels {
		endian.PutUint16(tmp, uint16(v))
		buf.Write(tmp)
	}
}

func writeBytes(buf *bytes.Buffer, data []uint8) {
	buf.Write(data)
}

func writeMaterials(buf *bytes.Buffer, materials []material.Index) {
	tmp := make([]byte, 2)
	for _, m := range materials {
		endian.PutUint16(tmp, uint16(m))
		buf.Write(tmp)
	}
}

func writeFloats(buf *bytes.Buffer, values []float32) {
	tmp := make([]byte, 4)
	for _, f := range values {
		endian.PutUint32(tmp, float32bits(f))
		buf.Write(tmp)
	}
}

func writeVelocity(buf *bytes.Buffer, velocities []effects.Velocity) {
	tmp := make([]byte, 4)
	for _, v := range velocities {
		endian.PutUint32(tmp, float32bits(v.X))
		buf.Write(tmp)
		endian.PutUint32(tmp, float32bits(v.Y))
		buf.Write(tmp)
		endian.PutUint32(tmp, float32bits(v.Z))
		buf.Write(tmp)
	}
}
