// Package chunk implements the dense multi-plane chunk storage described
// by the chunk storage component: an invariant quadruple of always-present
// planes plus optional materials, high-precision lighting caches, and
// particle-effect planes, with a compression protocol guarded by a
// per-chunk mutex.
package chunk

import (
	"sync"

	"github.com/almondvoxel/voxelcore/internal/voxel/effects"
	"github.com/almondvoxel/voxelcore/internal/voxel/material"
	"github.com/almondvoxel/voxelcore/internal/voxel/voxelerr"
	"github.com/almondvoxel/voxelcore/internal/voxel/voxeltype"
)

// CompressHooks is the pluggable encode/decode pair a Storage invokes from
// flush_compression/decompress. Encode sees the live plane set; Decode must
// restore it in place.
type CompressHooks struct {
	Encode func(s *Storage) ([]byte, error)
	Decode func(s *Storage, blob []byte) error
}

// DirtyListener is invoked in registration order whenever MarkDirty(true)
// runs against a live mutation path.
type DirtyListener func()

// Storage is the dense per-chunk payload.
type Storage struct {
	cfg Config

	voxels     []voxeltype.VoxelID
	skylight   []uint8
	blocklight []uint8
	metadata   []uint8

	materials      []material.Index
	skylightCache  []float32
	blocklightCache []float32

	effectDensity  []float32
	effectVelocity []effects.Velocity
	effectLifetime []float32

	dirty                bool
	compressionRequested bool
	compressed           bool
	compressedBlob       []byte
	hooks                CompressHooks
	compressionMu        sync.Mutex

	listeners []DirtyListener
}

const materialInvalid = material.InvalidIndex

// New allocates a Storage with every plane the config selects, zero
// initialized (materials to the invalid sentinel, caches to zero).
func New(cfg Config) *Storage {
	s := &Storage{cfg: cfg}
	s.allocate()
	return s
}

func (s *Storage) allocate() {
	n := s.cfg.Extent.Volume()
	s.voxels = make([]voxeltype.VoxelID, n)
	s.skylight = make([]uint8, n)
	s.blocklight = make([]uint8, n)
	s.metadata = make([]uint8, n)

	if s.cfg.EnableMaterials {
		s.materials = make([]material.Index, n)
		for i := range s.materials {
			s.materials[i] = materialInvalid
		}
	}
	if s.cfg.EnableHighPrecisionLighting {
		s.skylightCache = make([]float32, n)
		s.blocklightCache = make([]float32, n)
	}
	if s.cfg.EffectChannels.Density {
		s.effectDensity = make([]float32, n)
	}
	if s.cfg.EffectChannels.Velocity {
		s.effectVelocity = make([]effects.Velocity, n)
	}
	if s.cfg.EffectChannels.Lifetime {
		s.effectLifetime = make([]float32, n)
	}
}

func (s *Storage) Config() Config             { return s.cfg }
func (s *Storage) Extent() voxeltype.ChunkExtent { return s.cfg.Extent }
func (s *Storage) Volume() int                { return s.cfg.Extent.Volume() }

func (s *Storage) MaterialsEnabled() bool            { return s.cfg.EnableMaterials }
func (s *Storage) HighPrecisionLightingEnabled() bool { return s.cfg.EnableHighPrecisionLighting }
func (s *Storage) EffectDensityEnabled() bool        { return s.cfg.EffectChannels.Density }
func (s *Storage) EffectVelocityEnabled() bool       { return s.cfg.EffectChannels.Velocity }
func (s *Storage) EffectLifetimeEnabled() bool       { return s.cfg.EffectChannels.Lifetime }

func (s *Storage) view(data []voxeltype.VoxelID) voxeltype.MutView3D[voxeltype.VoxelID] {
	return voxeltype.NewMutView3D(data, s.cfg.Extent)
}

// Voxels returns a mutable view over the voxel plane: forces decompression,
// marks the chunk dirty, and fires listeners.
func (s *Storage) Voxels() voxeltype.MutView3D[voxeltype.VoxelID] {
	s.ensureDecompressed()
	s.MarkDirty(true)
	return voxeltype.NewMutView3D(s.voxels, s.cfg.Extent)
}

// VoxelsConst is the read-only counterpart: forces decompression but does
// not mark dirty.
func (s *Storage) VoxelsConst() voxeltype.View3D[voxeltype.VoxelID] {
	s.ensureDecompressed()
	return voxeltype.NewView3D(s.voxels, s.cfg.Extent)
}

func (s *Storage) Skylight() voxeltype.MutView3D[uint8] {
	s.ensureDecompressed()
	s.MarkDirty(true)
	return voxeltype.NewMutView3D(s.skylight, s.cfg.Extent)
}

func (s *Storage) SkylightConst() voxeltype.View3D[uint8] {
	s.ensureDecompressed()
	return voxeltype.NewView3D(s.skylight, s.cfg.Extent)
}

func (s *Storage) Blocklight() voxeltype.MutView3D[uint8] {
	s.ensureDecompressed()
	s.MarkDirty(true)
	return voxeltype.NewMutView3D(s.blocklight, s.cfg.Extent)
}

func (s *Storage) BlocklightConst() voxeltype.View3D[uint8] {
	s.ensureDecompressed()
	return voxeltype.NewView3D(s.blocklight, s.cfg.Extent)
}

func (s *Storage) Metadata() voxeltype.MutView3D[uint8] {
	s.ensureDecompressed()
	s.MarkDirty(true)
	return voxeltype.NewMutView3D(s.metadata, s.cfg.Extent)
}

func (s *Storage) MetadataConst() voxeltype.View3D[uint8] {
	s.ensureDecompressed()
	return voxeltype.NewView3D(s.metadata, s.cfg.Extent)
}

// Materials returns a mutable view over the materials plane, or
// DisabledPlane if the feature is off.
func (s *Storage) Materials() (voxeltype.MutView3D[material.Index], error) {
	if !s.cfg.EnableMaterials {
		return voxeltype.MutView3D[material.Index]{}, voxelerr.New(voxelerr.DisabledPlane, "materials")
	}
	s.ensureDecompressed()
	s.MarkDirty(true)
	return voxeltype.NewMutView3D(s.materials, s.cfg.Extent), nil
}

func (s *Storage) MaterialsConst() (voxeltype.View3D[material.Index], error) {
	if !s.cfg.EnableMaterials {
		return voxeltype.View3D[material.Index]{}, voxelerr.New(voxelerr.DisabledPlane, "materials")
	}
	s.ensureDecompressed()
	return voxeltype.NewView3D(s.materials, s.cfg.Extent), nil
}

func (s *Storage) SkylightCache() (voxeltype.MutView3D[float32], error) {
	if !s.cfg.EnableHighPrecisionLighting {
		return voxeltype.MutView3D[float32]{}, voxelerr.New(voxelerr.DisabledPlane, "skylight_cache")
	}
	s.ensureDecompressed()
	s.MarkDirty(true)
	return voxeltype.NewMutView3D(s.skylightCache, s.cfg.Extent), nil
}

func (s *Storage) BlocklightCache() (voxeltype.MutView3D[float32], error) {
	if !s.cfg.EnableHighPrecisionLighting {
		return voxeltype.MutView3D[float32]{}, voxelerr.New(voxelerr.DisabledPlane, "blocklight_cache")
	}
	s.ensureDecompressed()
	s.MarkDirty(true)
	return voxeltype.NewMutView3D(s.blocklightCache, s.cfg.Extent), nil
}

// EffectDensity returns a mutable view over the particle-density plane, or
// DisabledPlane if the feature is off.
func (s *Storage) EffectDensity() (voxeltype.MutView3D[float32], error) {
	if !s.cfg.EffectChannels.Density {
		return voxeltype.MutView3D[float32]{}, voxelerr.New(voxelerr.DisabledPlane, "effect_density")
	}
	s.ensureDecompressed()
	s.MarkDirty(true)
	return voxeltype.NewMutView3D(s.effectDensity, s.cfg.Extent), nil
}

// EffectVelocity returns a mutable view over the particle-velocity plane,
// or DisabledPlane if the feature is off.
func (s *Storage) EffectVelocity() (voxeltype.MutView3D[effects.Velocity], error) {
	if !s.cfg.EffectChannels.Velocity {
		return voxeltype.MutView3D[effects.Velocity]{}, voxelerr.New(voxelerr.DisabledPlane, "effect_velocity")
	}
	s.ensureDecompressed()
	s.MarkDirty(true)
	return voxeltype.NewMutView3D(s.effectVelocity, s.cfg.Extent), nil
}

// EffectLifetime returns a mutable view over the particle-lifetime plane,
// or DisabledPlane if the feature is off.
func (s *Storage) EffectLifetime() (voxeltype.MutView3D[float32], error) {
	if !s.cfg.EffectChannels.Lifetime {
		return voxeltype.MutView3D[float32]{}, voxelerr.New(voxelerr.DisabledPlane, "effect_lifetime")
	}
	s.ensureDecompressed()
	s.MarkDirty(true)
	return voxeltype.NewMutView3D(s.effectLifetime, s.cfg.Extent), nil
}

// EffectDensityRaw, EffectVelocityRaw, and EffectLifetimeRaw are the
// unchecked slice accessors effects.Planes and the serialization codec use:
// they see nil when the channel is disabled rather than a DisabledPlane
// error, since both callers already gate on the *Enabled flags themselves.
func (s *Storage) EffectDensityRaw() []float32 {
	return s.effectDensity
}

func (s *Storage) EffectVelocityRaw() []effects.Velocity {
	return s.effectVelocity
}

func (s *Storage) EffectLifetimeRaw() []float32 {
	return s.effectLifetime
}

// Fill overwrites the voxel, light, metadata, materials, and light-cache
// planes uniformly and marks dirty. Effect planes are left unchanged.
func (s *Storage) Fill(voxel voxeltype.VoxelID, sky, block, meta uint8, mat material.Index, skyCache, blockCache float32) {
	s.ensureDecompressed()
	for i := range s.voxels {
		s.voxels[i] = voxel
	}
	for i := range s.skylight {
		s.skylight[i] = sky
	}
	for i := range s.blocklight {
		s.blocklight[i] = block
	}
	for i := range s.metadata {
		s.metadata[i] = meta
	}
	if s.materials != nil {
		for i := range s.materials {
			s.materials[i] = mat
		}
	}
	if s.skylightCache != nil {
		for i := range s.skylightCache {
			s.skylightCache[i] = skyCache
		}
	}
	if s.blocklightCache != nil {
		for i := range s.blocklightCache {
			s.blocklightCache[i] = blockCache
		}
	}
	s.MarkDirty(true)
}

// AssignVoxels bulk-copies only the voxel plane.
func (s *Storage) AssignVoxels(data []voxeltype.VoxelID) error {
	s.ensureDecompressed()
	if len(data) != len(s.voxels) {
		return voxelerr.New(voxelerr.SizeMismatch, "assign_voxels")
	}
	copy(s.voxels, data)
	s.MarkDirty(true)
	return nil
}

func (s *Storage) SetCompressionHooks(hooks CompressHooks) {
	s.compressionMu.Lock()
	defer s.compressionMu.Unlock()
	s.hooks = hooks
}

func (s *Storage) RequestCompression() {
	s.compressionMu.Lock()
	defer s.compressionMu.Unlock()
	s.compressionRequested = true
}

// FlushCompression decompresses first (so the encoder always sees live
// data), then encodes the present plane set and marks the chunk compressed.
func (s *Storage) FlushCompression() (bool, error) {
	s.compressionMu.Lock()
	defer s.compressionMu.Unlock()

	if !s.compressionRequested || s.hooks.Encode == nil {
		return false, nil
	}
	s.decompressLocked()

	blob, err := s.hooks.Encode(s)
	if err != nil {
		return false, err
	}
	s.compressedBlob = blob
	s.compressionRequested = false
	s.compressed = true
	return true, nil
}

// Decompress is idempotent; it no-ops when the chunk is not compressed.
func (s *Storage) Decompress() (bool, error) {
	s.compressionMu.Lock()
	defer s.compressionMu.Unlock()
	if !s.compressed || len(s.compressedBlob) == 0 {
		return false, nil
	}
	return true, s.decompressLocked()
}

func (s *Storage) Compressed() bool {
	s.compressionMu.Lock()
	defer s.compressionMu.Unlock()
	return s.compressed
}

func (s *Storage) CompressedBlob() []byte {
	s.compressionMu.Lock()
	defer s.compressionMu.Unlock()
	return s.compressedBlob
}

func (s *Storage) ClearCompression() {
	s.compressionMu.Lock()
	defer s.compressionMu.Unlock()
	s.compressionRequested = false
	s.compressed = false
	s.compressedBlob = nil
}

func (s *Storage) ensureDecompressed() {
	s.compressionMu.Lock()
	defer s.compressionMu.Unlock()
	if s.compressed {
		_ = s.decompressLocked()
	}
}

func (s *Storage) decompressLocked() error {
	if !s.compressed || len(s.compressedBlob) == 0 {
		return nil
	}
	if s.hooks.Decode != nil {
		if err := s.hooks.Decode(s, s.compressedBlob); err != nil {
			return err
		}
	}
	s.compressedBlob = nil
	s.compressed = false
	return nil
}

// MarkDirty sets the dirty flag and, when setting true, fires every
// registered listener synchronously in registration order. Listeners may
// re-enter and mutate the chunk but must not drop it.
func (s *Storage) MarkDirty(value bool) {
	s.dirty = value
	if value {
		for _, l := range s.listeners {
			l()
		}
	}
}

func (s *Storage) Dirty() bool { return s.dirty }

func (s *Storage) AddDirtyListener(l DirtyListener) {
	s.listeners = append(s.listeners, l)
}

func (s *Storage) ClearDirtyListeners() {
	s.listeners = nil
}

// ReplaceFrom copies every plane from src into s in place, preserving s's
// own listener list — used by serialization's ingest_blob so that the
// region-manager entry's dirty observers survive a wholesale payload swap.
func (s *Storage) ReplaceFrom(src *Storage) {
	s.cfg = src.cfg
	s.voxels = append([]voxeltype.VoxelID(nil), src.voxels...)
	s.skylight = append([]uint8(nil), src.skylight...)
	s.blocklight = append([]uint8(nil), src.blocklight...)
	s.metadata = append([]uint8(nil), src.metadata...)
	s.materials = append([]material.Index(nil), src.materials...)
	s.skylightCache = append([]float32(nil), src.skylightCache...)
	s.blocklightCache = append([]float32(nil), src.blocklightCache...)
	s.effectDensity = append([]float32(nil), src.effectDensity...)
	s.effectVelocity = append([]effects.Velocity(nil), src.effectVelocity...)
	s.effectLifetime = append([]float32(nil), src.effectLifetime...)
	s.ClearCompression()
	s.MarkDirty(false)
}
