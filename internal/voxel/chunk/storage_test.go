package chunk

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/almondvoxel/voxelcore/internal/voxel/effects"
	"github.com/almondvoxel/voxelcore/internal/voxel/material"
	"github.com/almondvoxel/voxelcore/internal/voxel/voxelerr"
	"github.com/almondvoxel/voxelcore/internal/voxel/voxeltype"
)

func testConfig() Config {
	return Config{
		Extent:                      voxeltype.CubicExtent(4),
		EnableMaterials:             true,
		EnableHighPrecisionLighting: true,
		EffectChannels:              effects.Channels{Density: true, Velocity: true, Lifetime: true},
	}
}

func TestFillMarksDirtyAndSetsAllPlanes(t *testing.T) {
	s := New(testConfig())
	require.False(t, s.Dirty())

	s.Fill(7, 1, 2, 3, material.Index(5), 0.5, 0.25)
	require.True(t, s.Dirty())

	for _, v := range s.VoxelsConst().Linear() {
		require.Equal(t, voxeltype.VoxelID(7), v)
	}
	mats, err := s.MaterialsConst()
	require.NoError(t, err)
	for _, m := range mats.Linear() {
		require.Equal(t, material.Index(5), m)
	}
}

func TestDisabledPlaneError(t *testing.T) {
	s := New(Config{Extent: voxeltype.CubicExtent(2)})
	_, err := s.Materials()
	require.Error(t, err)
	var verr *voxelerr.Error
	require.ErrorAs(t, err, &verr)
	require.Equal(t, voxelerr.DisabledPlane, verr.Kind)
}

func TestDisabledEffectPlanesError(t *testing.T) {
	s := New(Config{Extent: voxeltype.CubicExtent(2)})

	_, err := s.EffectDensity()
	require.Error(t, err)
	var densityErr *voxelerr.Error
	require.ErrorAs(t, err, &densityErr)
	require.Equal(t, voxelerr.DisabledPlane, densityErr.Kind)

	_, err = s.EffectVelocity()
	require.Error(t, err)
	var velocityErr *voxelerr.Error
	require.ErrorAs(t, err, &velocityErr)
	require.Equal(t, voxelerr.DisabledPlane, velocityErr.Kind)

	_, err = s.EffectLifetime()
	require.Error(t, err)
	var lifetimeErr *voxelerr.Error
	require.ErrorAs(t, err, &lifetimeErr)
	require.Equal(t, voxelerr.DisabledPlane, lifetimeErr.Kind)
}

func TestEnabledEffectPlanesRoundTrip(t *testing.T) {
	s := New(testConfig())

	density, err := s.EffectDensity()
	require.NoError(t, err)
	density.Set(1, 1, 1, 0.75)

	velocity, err := s.EffectVelocity()
	require.NoError(t, err)
	velocity.Set(1, 1, 1, effects.Velocity{X: 1, Y: 2, Z: 3})

	lifetime, err := s.EffectLifetime()
	require.NoError(t, err)
	lifetime.Set(1, 1, 1, 4)

	require.Equal(t, float32(0.75), s.EffectDensityRaw()[voxeltype.Index(s.Extent(), 1, 1, 1)])
	require.Equal(t, effects.Velocity{X: 1, Y: 2, Z: 3}, s.EffectVelocityRaw()[voxeltype.Index(s.Extent(), 1, 1, 1)])
	require.Equal(t, float32(4), s.EffectLifetimeRaw()[voxeltype.Index(s.Extent(), 1, 1, 1)])
}

func TestAssignVoxelsSizeMismatch(t *testing.T) {
	s := New(Config{Extent: voxeltype.CubicExtent(2)})
	err := s.AssignVoxels(make([]voxeltype.VoxelID, 3))
	require.Error(t, err)
	var verr *voxelerr.Error
	require.ErrorAs(t, err, &verr)
	require.Equal(t, voxelerr.SizeMismatch, verr.Kind)
}

func TestDirtyListenersFireInOrder(t *testing.T) {
	s := New(Config{Extent: voxeltype.CubicExtent(2)})
	var order []int
	s.AddDirtyListener(func() { order = append(order, 1) })
	s.AddDirtyListener(func() { order = append(order, 2) })

	s.Voxels() // mutating view acquisition fires listeners
	require.Equal(t, []int{1, 2}, order)
}

func TestCompressionRoundTrip(t *testing.T) {
	s := New(testConfig())
	s.SetCompressionHooks(ZstdHooks())
	s.Fill(9, 1, 1, 1, material.Index(2), 0.1, 0.2)

	s.RequestCompression()
	ok, err := s.FlushCompression()
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, s.Compressed())
	require.NotEmpty(t, s.CompressedBlob())

	// Any view access must transparently decompress.
	voxels := s.VoxelsConst()
	require.False(t, s.Compressed())
	for _, v := range voxels.Linear() {
		require.Equal(t, voxeltype.VoxelID(9), v)
	}
}

func TestReplaceFromPreservesListeners(t *testing.T) {
	s := New(testConfig())
	calls := 0
	s.AddDirtyListener(func() { calls++ })

	other := New(testConfig())
	other.Fill(3, 0, 0, 0, material.Index(1), 0, 0)

	s.ReplaceFrom(other)
	require.False(t, s.Dirty())
	for _, v := range s.VoxelsConst().Linear() {
		require.Equal(t, voxeltype.VoxelID(3), v)
	}

	s.MarkDirty(true)
	require.Equal(t, 1, calls)
}
