// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package scene

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/jeranaias/oracle-tui/internal/assets"
)

// Ranges for randomised animation parameters.
const (
	MinAmplitude = 0.03
	MaxAmplitude = 0.08
	MinFrequency = 1.0 // rad/s
	MaxFrequency = 3.0
)

// AnimParams drive the jelly wobble of one object.
type AnimParams struct {
	Phase     float64 // radians, [0, 2π)
	Amplitude float64
	Frequency float64 // rad/s
}

// Gaze is the last look-at target of an object.
type Gaze struct {
	Target mgl64.Vec3
	Valid  bool
}

// Object is one drawable instance of a mesh.
type Object struct {
	Name         string
	Mesh         *assets.Mesh
	BasePosition mgl64.Vec3
	Rotation     mgl64.Quat
	BaseScale    float64
	Scale        mgl64.Vec3
	// Anim is nil for objects that do not wobble or gaze.
	Anim *AnimParams
	Gaze Gaze
	// Spin marks singletons rotated about Y every frame.
	Spin bool
}

// Model returns the object-to-world matrix: T * R * S.
func (o *Object) Model() mgl64.Mat4 {
	p := o.BasePosition
	return mgl64.Translate3D(p[0], p[1], p[2]).
		Mul4(o.Rotation.Mat4()).
		Mul4(mgl64.Scale3D(o.Scale[0], o.Scale[1], o.Scale[2]))
}

// Jelly sets Scale for elapsed seconds t.
//
//	sx = s(1 + a·sin(ωt+φ))
//	sy = s(1 − a·sin(ωt+φ))
//	sz = s(1 + (a/2)·cos(ωt+φ))
func (o *Object) Jelly(t float64) {
	s := o.BaseScale
	if o.Anim == nil {
		o.Scale = mgl64.Vec3{s, s, s}
		return
	}
	a := o.Anim.Amplitude
	arg := o.Anim.Frequency*t + o.Anim.Phase
	sin, cos := math.Sin(arg), math.Cos(arg)
	o.Scale = mgl64.Vec3{
		s * (1 + a*sin),
		s * (1 - a*sin),
		s * (1 + a/2*cos),
	}
}

// =============================================================================
// SPAWN
// =============================================================================

// SpawnOptions bound the random placement of clones.
type SpawnOptions struct {
	Count    int
	Spread   float64 // half-width of the placement box along X
	MinScale float64
	MaxScale float64
}

// Spawn creates opts.Count clones of mesh at random positions, scales and
// rotations, each with its own AnimParams.
func Spawn(mesh *assets.Mesh, opts SpawnOptions, rng *rand.Rand) []*Object {
	if opts.Count <= 0 || mesh == nil {
		return nil
	}
	if opts.MaxScale < opts.MinScale {
		opts.MaxScale = opts.MinScale
	}
	s := opts.Spread

	objs := make([]*Object, 0, opts.Count)
	for i := 0; i < opts.Count; i++ {
		pos := mgl64.Vec3{
			between(rng, -s, s),
			between(rng, -s*0.6, s*0.6),
			between(rng, -s/2, s/2),
		}
		scale := between(rng, opts.MinScale, opts.MaxScale)
		axis := mgl64.Vec3{rng.Float64() - 0.5, rng.Float64() - 0.5, rng.Float64() - 0.5}
		if axis.Len() < 1e-6 {
			axis = mgl64.Vec3{0, 1, 0}
		}

		o := &Object{
			Name:         mesh.Name,
			Mesh:         mesh,
			BasePosition: pos,
			Rotation:     mgl64.QuatRotate(rng.Float64()*2*math.Pi, axis.Normalize()),
			BaseScale:    scale,
			Anim: &AnimParams{
				Phase:     rng.Float64() * 2 * math.Pi,
				Amplitude: between(rng, MinAmplitude, MaxAmplitude),
				Frequency: between(rng, MinFrequency, MaxFrequency),
			},
		}
		o.Jelly(0)
		objs = append(objs, o)
	}
	return objs
}

func between(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
