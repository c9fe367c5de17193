// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ParallelEpsilon is the smallest |dir.z| for which a ray is considered to
// cross a constant-z plane.
const ParallelEpsilon = 1e-6

// =============================================================================
// CAMERA
// =============================================================================

// Camera is a perspective camera.
type Camera struct {
	Position mgl64.Vec3
	Target   mgl64.Vec3
	Up       mgl64.Vec3
	FovY     float64 // radians
	Aspect   float64
	Near     float64
	Far      float64
}

// DefaultCamera looks at the origin from +Z.
func DefaultCamera() Camera {
	return Camera{
		Position: mgl64.Vec3{0, 0, 10},
		Target:   mgl64.Vec3{0, 0, 0},
		Up:       mgl64.Vec3{0, 1, 0},
		FovY:     mgl64.DegToRad(50),
		Aspect:   1,
		Near:     0.1,
		Far:      100,
	}
}

// View returns the world-to-camera matrix.
func (c *Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.Position, c.Target, c.Up)
}

// Projection returns the camera-to-clip matrix.
func (c *Camera) Projection() mgl64.Mat4 {
	return mgl64.Perspective(c.FovY, c.Aspect, c.Near, c.Far)
}

// ViewProjection returns Projection * View.
func (c *Camera) ViewProjection() mgl64.Mat4 {
	return c.Projection().Mul4(c.View())
}

// Ray returns the world-space ray through normalised device coordinates
// (x, y), each in [-1, 1].
func (c *Camera) Ray(x, y float64) Ray {
	inv := c.ViewProjection().Inv()
	near := unproject(inv, mgl64.Vec4{x, y, -1, 1})
	far := unproject(inv, mgl64.Vec4{x, y, 1, 1})
	return Ray{Origin: near, Dir: far.Sub(near).Normalize()}
}

func unproject(inv mgl64.Mat4, ndc mgl64.Vec4) mgl64.Vec3 {
	p := inv.Mul4x1(ndc)
	if p[3] == 0 {
		return p.Vec3()
	}
	return p.Vec3().Mul(1 / p[3])
}

// =============================================================================
// RAY
// =============================================================================

// Ray is a half-line with a unit direction.
type Ray struct {
	Origin mgl64.Vec3
	Dir    mgl64.Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// IntersectPlaneZ returns where the ray crosses the plane z = planeZ.
// ok is false when the ray is (nearly) parallel to the plane or the plane
// lies behind the ray origin.
func (r Ray) IntersectPlaneZ(planeZ float64) (p mgl64.Vec3, ok bool) {
	if math.Abs(r.Dir.Z()) < ParallelEpsilon {
		return mgl64.Vec3{}, false
	}
	t := (planeZ - r.Origin.Z()) / r.Dir.Z()
	if t < 0 {
		return mgl64.Vec3{}, false
	}
	p = r.At(t)
	p[2] = planeZ
	return p, true
}

// =============================================================================
// ORIENTATION
// =============================================================================

// LookRotation returns the rotation that points an object's +Z axis from
// `from` toward `to`, keeping its +Y axis as close to up as possible.
func LookRotation(from, to, up mgl64.Vec3) mgl64.Quat {
	z := to.Sub(from)
	if z.Len() < 1e-12 {
		return mgl64.QuatIdent()
	}
	z = z.Normalize()

	x := up.Cross(z)
	if x.Len() < 1e-9 {
		// up is parallel to the view direction; nudge it.
		x = mgl64.Vec3{0, 0, 1}.Cross(z)
		if x.Len() < 1e-9 {
			x = mgl64.Vec3{1, 0, 0}
		}
	}
	x = x.Normalize()
	y := z.Cross(x)

	return mgl64.Mat4ToQuat(mgl64.Mat3FromCols(x, y, z).Mat4()).Normalize()
}
