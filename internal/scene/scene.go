// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package scene

import (
	"errors"
	"io"
	"log"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/jeranaias/oracle-tui/internal/assets"
	"github.com/jeranaias/oracle-tui/internal/config"
)

// =============================================================================
// OPTIONS
// =============================================================================

// RenderMode selects how meshes are drawn.
type RenderMode int

const (
	// RenderShaded fills faces with lit glyphs; face-less meshes fall back to wire.
	RenderShaded RenderMode = iota
	// RenderWire draws mesh edges only.
	RenderWire
)

type options struct {
	count        int
	spread       float64
	minScale     float64
	maxScale     float64
	rotationRate float64
	gazeDepth    float64
	cellAspect   float64
	singleton    float64
	seed         int64
	mode         RenderMode
	logger       *log.Logger
}

func defaultOptions() options {
	return options{
		count:        6,
		spread:       4,
		minScale:     0.45,
		maxScale:     0.9,
		rotationRate: 0.6,
		gazeDepth:    4,
		cellAspect:   0.5,
		singleton:    1.6,
		mode:         RenderShaded,
		logger:       log.Default(),
	}
}

// Option configures a Scene.
type Option func(*options)

// WithObjects sets the number of clones spawned per clone mesh.
func WithObjects(n int) Option { return func(o *options) { o.count = n } }

// WithSpread sets the half-width of the clone placement box.
func WithSpread(s float64) Option { return func(o *options) { o.spread = s } }

// WithRotationRate sets the singleton spin in rad/s.
func WithRotationRate(r float64) Option { return func(o *options) { o.rotationRate = r } }

// WithGazeDepth sets how far in front of the pointer plane objects look.
func WithGazeDepth(d float64) Option { return func(o *options) { o.gazeDepth = d } }

// WithCellAspect sets the width/height ratio of one terminal cell.
func WithCellAspect(a float64) Option { return func(o *options) { o.cellAspect = a } }

// WithSeed fixes the random source. Zero picks a time-based seed.
func WithSeed(seed int64) Option { return func(o *options) { o.seed = seed } }

// WithRenderMode selects shaded or wireframe drawing.
func WithRenderMode(m RenderMode) Option { return func(o *options) { o.mode = m } }

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// FromConfig maps the [scene] config section to options.
func FromConfig(c config.SceneConfig) []Option {
	return []Option{
		WithObjects(c.Objects),
		WithSpread(c.Spread),
		WithRotationRate(c.RotationRate),
		WithGazeDepth(c.GazeDepth),
		WithCellAspect(c.CellAspect),
		WithSeed(c.Seed),
		WithRenderMode(renderModeFor(c.Render)),
	}
}

// renderModeFor maps a config render name to a RenderMode. Unknown names
// draw shaded.
func renderModeFor(name string) RenderMode {
	if name == config.RenderWire {
		return RenderWire
	}
	return RenderShaded
}

// =============================================================================
// SCENE
// =============================================================================

// Pointer is the latest pointer sample in normalised device coordinates.
// Valid is false until the first sample arrives; the centre is used then.
type Pointer struct {
	X, Y  float64
	Valid bool
}

// Scene holds everything needed to draw one frame.
type Scene struct {
	opts    options
	camera  Camera
	raster  *Raster
	pointer Pointer
	rng     *rand.Rand

	objects    []*Object
	singletons []*Object

	start   time.Time
	last    time.Time
	elapsed float64
	frames  uint64

	mu      sync.Mutex
	closers []io.Closer
	closed  bool
}

// New creates an empty scene. Call Resize before rendering.
func New(opts ...Option) *Scene {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	seed := o.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Scene{
		opts:   o,
		camera: DefaultCamera(),
		raster: NewRaster(0, 0),
		rng:    rand.New(rand.NewPCG(uint64(seed), uint64(seed>>1)^0x9e3779b97f4a7c15)),
	}
}

// Camera returns the scene camera.
func (s *Scene) Camera() *Camera { return &s.camera }

// Raster returns the framebuffer.
func (s *Scene) Raster() *Raster { return s.raster }

// Pointer returns the latest pointer sample.
func (s *Scene) Pointer() Pointer { return s.pointer }

// Objects returns the animated clones.
func (s *Scene) Objects() []*Object { return s.objects }

// Singletons returns the spinning objects.
func (s *Scene) Singletons() []*Object { return s.singletons }

// Frames returns the number of Step calls.
func (s *Scene) Frames() uint64 { return s.frames }

// Resize sets the camera aspect and the raster size to exactly w×h cells.
func (s *Scene) Resize(w, h int) {
	s.raster.Resize(w, h)
	if w > 0 && h > 0 {
		s.camera.Aspect = float64(w) / (float64(h) / s.opts.cellAspect)
	}
}

// SetPointer records the pointer at cell (col, row).
func (s *Scene) SetPointer(col, row int) {
	w, h := s.raster.Size()
	if w == 0 || h == 0 {
		return
	}
	s.pointer = Pointer{
		X:     2*(float64(col)+0.5)/float64(w) - 1,
		Y:     1 - 2*(float64(row)+0.5)/float64(h),
		Valid: true,
	}
}

// AddSingleton adds one spinning instance of mesh at the origin.
func (s *Scene) AddSingleton(mesh *assets.Mesh) *Object {
	o := &Object{
		Name:      mesh.Name,
		Mesh:      mesh,
		Rotation:  mgl64.QuatIdent(),
		BaseScale: s.opts.singleton,
		Spin:      true,
	}
	o.Jelly(0)
	s.singletons = append(s.singletons, o)
	return o
}

// SpawnClones adds the configured number of clones of mesh and returns how
// many were created.
func (s *Scene) SpawnClones(mesh *assets.Mesh) int {
	objs := Spawn(mesh, SpawnOptions{
		Count:    s.opts.count,
		Spread:   s.opts.spread,
		MinScale: s.opts.minScale,
		MaxScale: s.opts.maxScale,
	}, s.rng)
	s.objects = append(s.objects, objs...)
	s.opts.logger.Printf("SCENE_SPAWN | mesh=%s count=%d", mesh.Name, len(objs))
	return len(objs)
}

// ReplaceMesh swaps the mesh of every object named name, leaving the
// object count unchanged. It returns the number of objects updated.
func (s *Scene) ReplaceMesh(name string, mesh *assets.Mesh) int {
	n := 0
	for _, group := range [][]*Object{s.objects, s.singletons} {
		for _, o := range group {
			if o.Name == name {
				o.Mesh = mesh
				n++
			}
		}
	}
	return n
}

// HasMesh reports whether any object uses a mesh named name.
func (s *Scene) HasMesh(name string) bool {
	for _, group := range [][]*Object{s.objects, s.singletons} {
		for _, o := range group {
			if o.Name == name {
				return true
			}
		}
	}
	return false
}

// Step advances the animation to now.
func (s *Scene) Step(now time.Time) {
	if s.start.IsZero() {
		s.start, s.last = now, now
	}
	dt := now.Sub(s.last).Seconds()
	if dt < 0 {
		dt = 0
	}
	s.last = now
	s.elapsed = now.Sub(s.start).Seconds()
	s.frames++

	spin := mgl64.QuatRotate(s.opts.rotationRate*dt, mgl64.Vec3{0, 1, 0})
	for _, o := range s.singletons {
		o.Rotation = spin.Mul(o.Rotation).Normalize()
	}

	ray := s.camera.Ray(s.pointer.X, s.pointer.Y)
	for _, o := range s.objects {
		if o.Anim == nil {
			continue
		}
		s.updateGaze(o, ray)
		o.Jelly(s.elapsed)
	}
}

// updateGaze turns o toward the point where ray meets its depth plane.
// Near-parallel rays leave the orientation untouched.
func (s *Scene) updateGaze(o *Object, ray Ray) {
	target, ok := ray.IntersectPlaneZ(o.BasePosition.Z())
	if !ok {
		return
	}
	o.Gaze = Gaze{Target: target, Valid: true}
	look := target.Add(mgl64.Vec3{0, 0, s.opts.gazeDepth})
	o.Rotation = LookRotation(o.BasePosition, look, mgl64.Vec3{0, 1, 0})
}

// Elapsed returns seconds since the first Step.
func (s *Scene) Elapsed() float64 { return s.elapsed }

// =============================================================================
// RENDER
// =============================================================================

var lightDir = mgl64.Vec3{-0.4, 0.6, 0.7}.Normalize()

// Render draws every object into the raster and returns it.
func (s *Scene) Render() *Raster {
	s.raster.Clear()
	w, h := s.raster.Size()
	if w == 0 || h == 0 {
		return s.raster
	}
	vp := s.camera.ViewProjection()
	for _, group := range [][]*Object{s.singletons, s.objects} {
		for _, o := range group {
			if o.Mesh != nil {
				s.drawObject(o, vp)
			}
		}
	}
	return s.raster
}

func (s *Scene) drawObject(o *Object, vp mgl64.Mat4) {
	model := o.Model()
	mvp := vp.Mul4(model)
	w, h := s.raster.Size()

	pts := make([]point, len(o.Mesh.Vertices))
	visible := make([]bool, len(o.Mesh.Vertices))
	world := make([]mgl64.Vec3, len(o.Mesh.Vertices))
	for i, v := range o.Mesh.Vertices {
		clip := mvp.Mul4x1(v.Vec4(1))
		// w is the view-space depth; anything nearer than the near plane
		// would project far outside the raster.
		if clip[3] < s.camera.Near {
			continue
		}
		ndc := clip.Vec3().Mul(1 / clip[3])
		pts[i] = point{
			x: (ndc[0] + 1) / 2 * float64(w),
			y: (1 - ndc[1]) / 2 * float64(h),
			z: ndc[2],
		}
		visible[i] = true
		world[i] = model.Mul4x1(v.Vec4(1)).Vec3()
	}

	if s.opts.mode == RenderShaded && len(o.Mesh.Faces) > 0 {
		for _, f := range o.Mesh.Faces {
			s.drawFace(f, pts, visible, world)
		}
		return
	}

	for _, e := range o.Mesh.Edges {
		a, b := e[0], e[1]
		if !visible[a] || !visible[b] {
			continue
		}
		pa, pb := pts[a], pts[b]
		s.raster.Segment(pa, pb, wireGlyph((pa.z+pb.z)/2))
	}
}

func (s *Scene) drawFace(f []int, pts []point, visible []bool, world []mgl64.Vec3) {
	for _, i := range f {
		if !visible[i] {
			return
		}
	}
	a, b, c := world[f[0]], world[f[1]], world[f[2]]
	normal := b.Sub(a).Cross(c.Sub(a))
	if normal.Len() < 1e-12 {
		return
	}
	normal = normal.Normalize()
	toCam := s.camera.Position.Sub(a).Normalize()
	facing := normal.Dot(toCam)
	if facing < 0 {
		normal = normal.Mul(-1)
		facing = -facing
	}
	light := 0.15 + 0.85*math.Max(0, normal.Dot(lightDir))
	ch := Shade(light * (0.4 + 0.6*facing))

	for k := 1; k+1 < len(f); k++ {
		s.raster.Triangle(pts[f[0]], pts[f[k]], pts[f[k+1]], ch)
	}
}

// wireGlyph picks an edge glyph by NDC depth.
func wireGlyph(z float64) rune {
	switch {
	case z < 0.96:
		return '#'
	case z < 0.985:
		return '+'
	default:
		return '.'
	}
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// ErrClosed is returned when registering with a closed scene.
var ErrClosed = errors.New("scene closed")

// Attach registers c to be closed with the scene.
func (s *Scene) Attach(c io.Closer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		c.Close()
		return ErrClosed
	}
	s.closers = append(s.closers, c)
	return nil
}

// Close releases attached resources. It is safe to call more than once.
func (s *Scene) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	closers := s.closers
	s.closers = nil
	s.mu.Unlock()

	var errs []error
	for _, c := range closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.opts.logger.Printf("SCENE_CLOSE | frames=%d objects=%d", s.frames, len(s.objects)+len(s.singletons))
	return errors.Join(errs...)
}
