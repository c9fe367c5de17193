// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package scene

import (
	"math"
	"strings"
)

// shadeRamp maps light intensity in [0, 1] to a glyph, darkest first.
const shadeRamp = ".,-~:;=!*#$@"

// Raster is a character framebuffer with a depth buffer.
// Depth values are NDC z in [-1, 1]; smaller is nearer.
type Raster struct {
	w, h  int
	cells []rune
	depth []float64
}

// NewRaster creates a cleared w×h raster.
func NewRaster(w, h int) *Raster {
	r := &Raster{}
	r.Resize(w, h)
	return r
}

// Resize reallocates the buffers to exactly w×h cells.
func (r *Raster) Resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	r.w, r.h = w, h
	r.cells = make([]rune, w*h)
	r.depth = make([]float64, w*h)
	r.Clear()
}

// Size returns the raster dimensions in cells.
func (r *Raster) Size() (w, h int) {
	return r.w, r.h
}

// Clear blanks every cell and resets depth to the far plane.
func (r *Raster) Clear() {
	for i := range r.cells {
		r.cells[i] = ' '
		r.depth[i] = math.Inf(1)
	}
}

// At returns the glyph at (x, y), or a space outside the raster.
func (r *Raster) At(x, y int) rune {
	if x < 0 || y < 0 || x >= r.w || y >= r.h {
		return ' '
	}
	return r.cells[y*r.w+x]
}

// Plot writes ch at (x, y) if z is nearer than what is already there.
func (r *Raster) Plot(x, y int, z float64, ch rune) bool {
	if x < 0 || y < 0 || x >= r.w || y >= r.h || z < -1 || z > 1 {
		return false
	}
	i := y*r.w + x
	if z >= r.depth[i] {
		return false
	}
	r.depth[i] = z
	r.cells[i] = ch
	return true
}

// Line draws a depth-tested Bresenham line from (x0, y0, z0) to (x1, y1, z1).
// Only the part inside the raster is walked.
func (r *Raster) Line(x0, y0 int, z0 float64, x1, y1 int, z1 float64, ch rune) {
	r.Segment(point{float64(x0), float64(y0), z0}, point{float64(x1), float64(y1), z1}, ch)
}

// Segment clips the segment a-b to the raster and draws what remains.
func (r *Raster) Segment(a, b point, ch rune) {
	a, b, ok := clipSegment(a, b, float64(r.w-1), float64(r.h-1))
	if !ok {
		return
	}
	x0, y0 := int(math.Floor(a.x)), int(math.Floor(a.y))
	x1, y1 := int(math.Floor(b.x)), int(math.Floor(b.y))

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	steps := max(dx, -dy)
	err := dx + dy
	x, y := x0, y0
	for i := 0; ; i++ {
		z := a.z
		if steps > 0 {
			z = a.z + (b.z-a.z)*float64(i)/float64(steps)
		}
		r.Plot(x, y, z, ch)
		if x == x1 && y == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

// clipSegment clips a-b to [0, maxX] x [0, maxY] (Liang-Barsky). ok is false
// when nothing of the segment is inside or a coordinate is not finite.
func clipSegment(a, b point, maxX, maxY float64) (point, point, bool) {
	if maxX < 0 || maxY < 0 {
		return a, b, false
	}
	for _, v := range []float64{a.x, a.y, a.z, b.x, b.y, b.z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return a, b, false
		}
	}
	dx, dy := b.x-a.x, b.y-a.y
	t0, t1 := 0.0, 1.0
	for _, pq := range [4][2]float64{
		{-dx, a.x},
		{dx, maxX - a.x},
		{-dy, a.y},
		{dy, maxY - a.y},
	} {
		p, q := pq[0], pq[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return a, b, false
			}
			t0 = math.Max(t0, t)
		} else {
			if t < t0 {
				return a, b, false
			}
			t1 = math.Min(t1, t)
		}
	}
	return lerpPoint(a, b, t0), lerpPoint(a, b, t1), true
}

func lerpPoint(a, b point, t float64) point {
	return point{
		x: a.x + (b.x-a.x)*t,
		y: a.y + (b.y-a.y)*t,
		z: a.z + (b.z-a.z)*t,
	}
}

// point is a projected vertex in raster space.
type point struct {
	x, y, z float64
}

// Triangle fills a depth-tested triangle with ch.
func (r *Raster) Triangle(a, b, c point, ch rune) {
	minX := int(math.Max(0, math.Floor(math.Min(a.x, math.Min(b.x, c.x)))))
	maxX := int(math.Min(float64(r.w-1), math.Ceil(math.Max(a.x, math.Max(b.x, c.x)))))
	minY := int(math.Max(0, math.Floor(math.Min(a.y, math.Min(b.y, c.y)))))
	maxY := int(math.Min(float64(r.h-1), math.Ceil(math.Max(a.y, math.Max(b.y, c.y)))))

	area := edge(a, b, c.x, c.y)
	if math.Abs(area) < 1e-9 {
		return
	}
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5
			w0 := edge(b, c, px, py) / area
			w1 := edge(c, a, px, py) / area
			w2 := edge(a, b, px, py) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			r.Plot(x, y, w0*a.z+w1*b.z+w2*c.z, ch)
		}
	}
}

func edge(a, b point, x, y float64) float64 {
	return (b.x-a.x)*(y-a.y) - (b.y-a.y)*(x-a.x)
}

// Shade returns the ramp glyph for intensity in [0, 1].
func Shade(intensity float64) rune {
	ramp := []rune(shadeRamp)
	i := int(math.Round(intensity * float64(len(ramp)-1)))
	return ramp[max(0, min(len(ramp)-1, i))]
}

// Lines returns the raster as h strings of w runes.
func (r *Raster) Lines() []string {
	out := make([]string, r.h)
	for y := 0; y < r.h; y++ {
		out[y] = string(r.cells[y*r.w : (y+1)*r.w])
	}
	return out
}

// String joins Lines with newlines.
func (r *Raster) String() string {
	return strings.Join(r.Lines(), "\n")
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
