package chunk

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/almondvoxel/voxelcore/internal/voxel/effects"
	"github.com/almondvoxel/voxelcore/internal/voxel/material"
	"github.com/almondvoxel/voxelcore/internal/voxel/voxeltype"
)

// ZstdHooks builds the default CompressHooks: the encoder flattens every
// plane the chunk currently has enabled into a single buffer (in the same
// fixed order the wire serializer uses) and zstd-compresses it; the decoder
// reverses that exactly. This is purely an in-memory residency compressor —
// unrelated to the on-disk v1/v2 format in package serialization.
func ZstdHooks() CompressHooks {
	return CompressHooks{
		Encode: encodeZstd,
		Decode: decodeZstd,
	}
}

func encodeZstd(s *Storage) ([]byte, error) {
	var buf bytes.Buffer
	writeVoxels(&buf, s.voxels)
	buf.Write(s.skylight)
	buf.Write(s.blocklight)
	buf.Write(s.metadata)
	if s.cfg.EnableMaterials {
		writeMaterials(&buf, s.materials)
	}
	if s.cfg.EnableHighPrecisionLighting {
		writeFloats(&buf, s.skylightCache)
		writeFloats(&buf, s.blocklightCache)
	}
	if s.cfg.EffectChannels.Density {
		writeFloats(&buf, s.effectDensity)
	}
	if s.cfg.EffectChannels.Velocity {
		writeVelocity(&buf, s.effectVelocity)
	}
	if s.cfg.EffectChannels.Lifetime {
		writeFloats(&buf, s.effectLifetime)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("new zstd writer: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(buf.Bytes(), nil), nil
}

func decodeZstd(s *Storage, blob []byte) error {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return fmt.Errorf("new zstd reader: %w", err)
	}
	defer dec.Close()

	raw, err := dec.DecodeAll(blob, nil)
	if err != nil {
		return fmt.Errorf("zstd decode chunk blob: %w", err)
	}

	r := bytes.NewReader(raw)
	if err := readVoxels(r, s.voxels); err != nil {
		return err
	}
	if _, err := r.Read(s.skylight); err != nil {
		return err
	}
	if _, err := r.Read(s.blocklight); err != nil {
		return err
	}
	if _, err := r.Read(s.metadata); err != nil {
		return err
	}
	if s.cfg.EnableMaterials {
		if err := readMaterials(r, s.materials); err != nil {
			return err
		}
	}
	if s.cfg.EnableHighPrecisionLighting {
		if err := readFloats(r, s.skylightCache); err != nil {
			return err
		}
		if err := readFloats(r, s.blocklightCache); err != nil {
			return err
		}
	}
	if s.cfg.EffectChannels.Density {
		if err := readFloats(r, s.effectDensity); err != nil {
			return err
		}
	}
	if s.cfg.EffectChannels.Velocity {
		if err := readVelocity(r, s.effectVelocity); err != nil {
			return err
		}
	}
	if s.cfg.EffectChannels.Lifetime {
		if err := readFloats(r, s.effectLifetime); err != nil {
			return err
		}
	}
	return nil
}

func writeVoxels(buf *bytes.Buffer, voxels []voxeltype.VoxelID) {
	for _, v := range voxels {
		_ = binary.Write(buf, binary.LittleEndian, uint16(v))
	}
}

func readVoxels(r *bytes.Reader, out []voxeltype.VoxelID) error {
	for i := range out {
		var v uint16
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return err
		}
		out[i] = voxeltype.VoxelID(v)
	}
	return nil
}

func writeMaterials(buf *bytes.Buffer, mats []material.Index) {
	for _, m := range mats {
		_ = binary.Write(buf, binary.LittleEndian, uint16(m))
	}
}

func readMaterials(r *bytes.Reader, out []material.Index) error {
	for i := range out {
		var v uint16
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return err
		}
		out[i] = material.Index(v)
	}
	return nil
}

func writeFloats(buf *bytes.Buffer, values []float32) {
	for _, v := range values {
		_ = binary.Write(buf, binary.LittleEndian, v)
	}
}

func readFloats(r *bytes.Reader, out []float32) error {
	for i := range out {
		if err := binary.Read(r, binary.LittleEndian, &out[i]); err != nil {
			return err
		}
	}
	return nil
}

func writeVelocity(buf *bytes.Buffer, values []effects.Velocity) {
	for _, v := range values {
		_ = binary.Write(buf, binary.LittleEndian, v.X)
		_ = binary.Write(buf, binary.LittleEndian, v.Y)
		_ = binary.Write(buf, binary.LittleEndian, v.Z)
	}
}

func readVelocity(r *bytes.Reader, out []effects.Velocity) error {
	for i := range out {
		var v effects.Velocity
		if err := binary.Read(r, binary.LittleEndian, &v.X); err != nil {
			return err
		}
		if err := binary.Read(r, binary.LittleEndian, &v.Y); err != nil {
			return err
		}
		if err := binary.Read(r, binary.LittleEndian, &v.Z); err != nil {
			return err
		}
		out[i] = v
	}
	return nil
}
