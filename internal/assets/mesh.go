// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package assets

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Mesh is a wireframe model in object space.
type Mesh struct {
	Name     string
	Vertices []mgl64.Vec3
	// Edges are unique vertex index pairs with Edges[i][0] < Edges[i][1].
	Edges [][2]int
	// Faces are polygons as vertex index lists, kept for filled rendering.
	Faces [][]int
}

// Bounds returns the axis-aligned bounding box of the mesh.
func (m *Mesh) Bounds() (min, max mgl64.Vec3) {
	if len(m.Vertices) == 0 {
		return mgl64.Vec3{}, mgl64.Vec3{}
	}
	min, max = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		for i := 0; i < 3; i++ {
			min[i] = math.Min(min[i], v[i])
			max[i] = math.Max(max[i], v[i])
		}
	}
	return min, max
}

// Radius returns the largest distance of a vertex from the origin.
func (m *Mesh) Radius() float64 {
	r := 0.0
	for _, v := range m.Vertices {
		r = math.Max(r, v.Len())
	}
	return r
}

// Normalize centers the mesh on its bounding box and scales it to unit
// radius. It returns the mesh for chaining.
func (m *Mesh) Normalize() *Mesh {
	if len(m.Vertices) == 0 {
		return m
	}
	lo, hi := m.Bounds()
	center := lo.Add(hi).Mul(0.5)
	for i := range m.Vertices {
		m.Vertices[i] = m.Vertices[i].Sub(center)
	}
	if r := m.Radius(); r > 0 {
		for i := range m.Vertices {
			m.Vertices[i] = m.Vertices[i].Mul(1 / r)
		}
	}
	return m
}

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Name:     m.Name,
		Vertices: append([]mgl64.Vec3(nil), m.Vertices...),
		Edges:    append([][2]int(nil), m.Edges...),
		Faces:    make([][]int, len(m.Faces)),
	}
	for i, f := range m.Faces {
		c.Faces[i] = append([]int(nil), f...)
	}
	return c
}
