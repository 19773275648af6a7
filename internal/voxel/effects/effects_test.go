package effects

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/almondvoxel/voxelcore/internal/voxel/voxelerr"
	"github.com/almondvoxel/voxelcore/internal/voxel/voxeltype"
)

// fakeChunk is a minimal Planes/StampTarget implementation so this package
// can exercise SimulateDecay/HasActiveEffects/StampBrush without importing
// chunk (which already imports effects).
type fakeChunk struct {
	extent voxeltype.ChunkExtent

	densityEnabled  bool
	velocityEnabled bool
	lifetimeEnabled bool

	density  []float32
	velocity []Velocity
	lifetime []float32
}

func newFakeChunk(extent voxeltype.ChunkExtent, density, velocity, lifetime bool) *fakeChunk {
	n := extent.Volume()
	c := &fakeChunk{extent: extent, densityEnabled: density, velocityEnabled: velocity, lifetimeEnabled: lifetime}
	if density {
		c.density = make([]float32, n)
	}
	if velocity {
		c.velocity = make([]Velocity, n)
	}
	if lifetime {
		c.lifetime = make([]float32, n)
	}
	return c
}

func (c *fakeChunk) EffectDensityEnabled() bool  { return c.densityEnabled }
func (c *fakeChunk) EffectVelocityEnabled() bool { return c.velocityEnabled }
func (c *fakeChunk) EffectLifetimeEnabled() bool { return c.lifetimeEnabled }

func (c *fakeChunk) EffectDensityRaw() []float32   { return c.density }
func (c *fakeChunk) EffectVelocityRaw() []Velocity { return c.velocity }
func (c *fakeChunk) EffectLifetimeRaw() []float32  { return c.lifetime }

func (c *fakeChunk) EffectDensity() (voxeltype.MutView3D[float32], error) {
	if !c.densityEnabled {
		return voxeltype.MutView3D[float32]{}, voxelerr.New(voxelerr.DisabledPlane, "effect_density")
	}
	return voxeltype.NewMutView3D(c.density, c.extent), nil
}

func (c *fakeChunk) EffectVelocity() (voxeltype.MutView3D[Velocity], error) {
	if !c.velocityEnabled {
		return voxeltype.MutView3D[Velocity]{}, voxelerr.New(voxelerr.DisabledPlane, "effect_velocity")
	}
	return voxeltype.NewMutView3D(c.velocity, c.extent), nil
}

func (c *fakeChunk) EffectLifetime() (voxeltype.MutView3D[float32], error) {
	if !c.lifetimeEnabled {
		return voxeltype.MutView3D[float32]{}, voxelerr.New(voxelerr.DisabledPlane, "effect_lifetime")
	}
	return voxeltype.NewMutView3D(c.lifetime, c.extent), nil
}

func TestHasActiveEffectsDisabled(t *testing.T) {
	c := newFakeChunk(voxeltype.CubicExtent(2), false, false, false)
	require.False(t, HasActiveEffects(c))
}

func TestHasActiveEffectsReportsLiveLifetime(t *testing.T) {
	c := newFakeChunk(voxeltype.CubicExtent(2), false, false, true)
	require.False(t, HasActiveEffects(c))

	c.lifetime[3] = 1
	require.True(t, HasActiveEffects(c))
}

func TestSimulateDecayDampsVelocityAndAges(t *testing.T) {
	c := newFakeChunk(voxeltype.CubicExtent(2), true, true, true)
	c.lifetime[0] = 2
	c.density[0] = 1
	c.velocity[0] = Velocity{X: 10, Y: 10, Z: 10}

	settings := DecaySettings{DeltaTime: 1, VelocityDamping: 0.5}

	anyAlive := SimulateDecay(c, settings)
	require.True(t, anyAlive)
	require.Equal(t, float32(1), c.lifetime[0])
	require.Equal(t, Velocity{X: 5, Y: 5, Z: 5}, c.velocity[0])
	require.Equal(t, float32(1), c.density[0], "density stays until lifetime expires")

	anyAlive = SimulateDecay(c, settings)
	require.False(t, anyAlive)
	require.Equal(t, float32(0), c.lifetime[0])
	require.Equal(t, Velocity{}, c.velocity[0], "velocity zeroed on expiry")
	require.Equal(t, float32(0), c.density[0], "density zeroed on expiry")
}

func TestSimulateDecayAlreadyDeadStaysZeroed(t *testing.T) {
	c := newFakeChunk(voxeltype.CubicExtent(2), true, true, true)
	c.lifetime[0] = 0
	c.density[0] = 5
	c.velocity[0] = Velocity{X: 1, Y: 1, Z: 1}

	anyAlive := SimulateDecay(c, DefaultDecaySettings())
	require.False(t, anyAlive)
	require.Equal(t, float32(0), c.density[0])
	require.Equal(t, Velocity{}, c.velocity[0])
}

func TestSimulateDecayDisabledIsNoop(t *testing.T) {
	c := newFakeChunk(voxeltype.CubicExtent(2), true, true, false)
	require.False(t, SimulateDecay(c, DefaultDecaySettings()))
}

func TestStampBrushWritesAllThreePlanes(t *testing.T) {
	c := newFakeChunk(voxeltype.CubicExtent(4), true, true, true)
	brush := Brush{Density: 0.5, Lifetime: 3, InitialVelocity: Velocity{X: 1, Y: 2, Z: 3}}

	ok := StampBrush(c, [3]int{1, 1, 1}, brush)
	require.True(t, ok)

	idx := voxeltype.Index(c.extent, 1, 1, 1)
	require.Equal(t, brush.Density, c.density[idx])
	require.Equal(t, brush.Lifetime, c.lifetime[idx])
	require.Equal(t, brush.InitialVelocity, c.velocity[idx])
}

func TestStampBrushOutOfBoundsFails(t *testing.T) {
	c := newFakeChunk(voxeltype.CubicExtent(2), true, true, true)
	ok := StampBrush(c, [3]int{5, 5, 5}, Brush{Density: 1, Lifetime: 1})
	require.False(t, ok)
}

func TestStampBrushDisabledChannelFails(t *testing.T) {
	c := newFakeChunk(voxeltype.CubicExtent(2), false, true, true)
	ok := StampBrush(c, [3]int{0, 0, 0}, Brush{Density: 1, Lifetime: 1})
	require.False(t, ok)
}
