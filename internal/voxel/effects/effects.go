// Package effects holds the optional particle-effect planes a chunk may
// carry (density/velocity/lifetime) and the decay tick that ages them.
package effects

import "github.com/almondvoxel/voxelcore/internal/voxel/voxeltype"

// Velocity is a single particle-velocity sample.
type Velocity struct {
	X, Y, Z float32
}

// Channels selects which effect planes a chunk.Config allocates.
type Channels struct {
	Density  bool
	Velocity bool
	Lifetime bool
}

func (c Channels) Any() bool { return c.Density || c.Velocity || c.Lifetime }

// Brush is stamped into a single voxel cell by a terrain/demo effect
// emitter.
type Brush struct {
	Density         float32
	Lifetime        float32
	InitialVelocity Velocity
}

// StampTarget is the set of checked plane accessors StampBrush needs;
// chunk.Storage implements this.
type StampTarget interface {
	EffectDensity() (voxeltype.MutView3D[float32], error)
	EffectVelocity() (voxeltype.MutView3D[Velocity], error)
	EffectLifetime() (voxeltype.MutView3D[float32], error)
}

// StampBrush writes brush into a single voxel cell's effect planes,
// grounded on stamp_emitter's single-cell particle-emission write. It
// reports false, not an error, when any effect channel is disabled or
// local falls outside the chunk, mirroring stamp_emitter's bool return.
func StampBrush(target StampTarget, local [3]int, brush Brush) bool {
	density, err := target.EffectDensity()
	if err != nil {
		return false
	}
	if !density.Contains(local[0], local[1], local[2]) {
		return false
	}

	lifetime, err := target.EffectLifetime()
	if err != nil {
		return false
	}
	velocity, err := target.EffectVelocity()
	if err != nil {
		return false
	}

	density.Set(local[0], local[1], local[2], brush.Density)
	lifetime.Set(local[0], local[1], local[2], brush.Lifetime)
	velocity.Set(local[0], local[1], local[2], brush.InitialVelocity)
	return true
}

// DecaySettings parameterizes one SimulateDecay tick.
type DecaySettings struct {
	DeltaTime       float32
	VelocityDamping float32
}

func DefaultDecaySettings() DecaySettings {
	return DecaySettings{DeltaTime: 1, VelocityDamping: 0.95}
}

// Planes is the minimal set of plane accessors SimulateDecay/HasActive need;
// chunk.Storage implements this. It takes the unchecked Raw accessors, not
// the public DisabledPlane-checked ones, since every call here is already
// gated on the matching *Enabled flag.
type Planes interface {
	EffectLifetimeEnabled() bool
	EffectDensityEnabled() bool
	EffectVelocityEnabled() bool
	EffectLifetimeRaw() []float32
	EffectDensityRaw() []float32
	EffectVelocityRaw() []Velocity
}

// HasActiveEffects reports whether any cell still has positive lifetime.
func HasActiveEffects(p Planes) bool {
	if !p.EffectLifetimeEnabled() {
		return false
	}
	for _, v := range p.EffectLifetimeRaw() {
		if v > 0 {
			return true
		}
	}
	return false
}

// SimulateDecay ages the lifetime plane by one tick, damping velocity for
// cells still alive and zeroing density/velocity for cells that just died
// or were already dead. Returns true if any cell remains alive.
func SimulateDecay(p Planes, settings DecaySettings) bool {
	if !p.EffectLifetimeEnabled() {
		return false
	}

	lifetime := p.EffectLifetimeRaw()
	var density []float32
	if p.EffectDensityEnabled() {
		density = p.EffectDensityRaw()
	}
	var velocity []Velocity
	if p.EffectVelocityEnabled() {
		velocity = p.EffectVelocityRaw()
	}

	anyAlive := false
	for i := range lifetime {
		life := lifetime[i]
		if life <= 0 {
			if density != nil {
				density[i] = 0
			}
			if velocity != nil {
				velocity[i] = Velocity{}
			}
			continue
		}

		life -= settings.DeltaTime
		if life < 0 {
			life = 0
		}
		lifetime[i] = life

		if life > 0 {
			anyAlive = true
			if velocity != nil {
				v := velocity[i]
				v.X *= settings.VelocityDamping
				v.Y *= settings.VelocityDamping
				v.Z *= settings.VelocityDamping
				velocity[i] = v
			}
		} else {
			if density != nil {
				density[i] = 0
			}
			if velocity != nil {
				velocity[i] = Velocity{}
			}
		}
	}

	return anyAlive
}
