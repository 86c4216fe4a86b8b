package plexus

import (
	"math"
	"math/rand"
	"time"
)

const (
	ParticleCount = 150
	// MaxDistance is the pair distance below which a line segment is emitted.
	MaxDistance = 80.0
	RepelRadius = 100.0
	RepelStep   = 0.5

	mouseScale  = 5.0
	seedDepth   = 100.0
	seedSpeed   = 0.2
	offscreenXY = -100.0
)

type Option func(*Field)

// WithCount overrides the particle population.
func WithCount(n int) Option {
	return func(f *Field) {
		if n > 0 {
			f.count = n
		}
	}
}

// WithRand seeds the initial layout from r.
func WithRand(r *rand.Rand) Option {
	return func(f *Field) {
		f.rnd = r
	}
}

// Field is the particle system. Positions are centred on the origin of a
// viewport of width x height world units. It is driven by a single frame loop.
type Field struct {
	count         int
	width, height float64
	rnd           *rand.Rand

	positions  []float64 // x, y, z per particle
	velocities []float64 // vx, vy per particle
	lines      []float64 // x, y, z per line vertex, capacity count*count*3
	vertices   int

	mouseX, mouseY float64
}

func New(width, height float64, opts ...Option) *Field {
	f := &Field{
		count:  ParticleCount,
		width:  width,
		height: height,
		mouseX: offscreenXY,
		mouseY: offscreenXY,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.rnd == nil {
		f.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	f.positions = make([]float64, f.count*3)
	f.velocities = make([]float64, f.count*2)
	f.lines = make([]float64, f.count*f.count*3)
	for i := 0; i < f.count; i++ {
		f.positions[i*3] = (f.rnd.Float64() - 0.5) * width * 0.5
		f.positions[i*3+1] = (f.rnd.Float64() - 0.5) * height * 0.5
		f.positions[i*3+2] = (f.rnd.Float64() - 0.5) * seedDepth
		f.velocities[i*2] = (f.rnd.Float64() - 0.5) * seedSpeed
		f.velocities[i*2+1] = (f.rnd.Float64() - 0.5) * seedSpeed
	}
	return f
}

func (f *Field) Count() int {
	return f.count
}

func (f *Field) Size() (float64, float64) {
	return f.width, f.height
}

func (f *Field) Resize(width, height float64) {
	f.width, f.height = width, height
}

// SetMouse takes the pointer in normalised device coordinates: [-1, 1], y up.
func (f *Field) SetMouse(x, y float64) {
	f.mouseX, f.mouseY = x, y
}

// Anchor is the pointer projected into world space on the z = 0 plane.
func (f *Field) Anchor() (float64, float64, float64) {
	return f.mouseX * f.width / mouseScale, f.mouseY * f.height / mouseScale, 0
}

// Positions is the live position buffer, three floats per particle.
func (f *Field) Positions() []float64 {
	return f.positions
}

// Lines is the line buffer; only the first Vertices()*3 floats are current.
func (f *Field) Lines() []float64 {
	return f.lines
}

// Vertices is the draw range written by the last Step.
func (f *Field) Vertices() int {
	return f.vertices
}

// Step advances one frame and returns the number of line vertices written.
func (f *Field) Step() int {
	ax, ay, az := f.Anchor()
	halfW, halfH := f.width/2, f.height/2

	for i := 0; i < f.count; i++ {
		p := f.positions[i*3 : i*3+3]
		v := f.velocities[i*2 : i*2+2]

		p[0] += v[0]
		p[1] += v[1]

		dx, dy, dz := p[0]-ax, p[1]-ay, p[2]-az
		if d := math.Sqrt(dx*dx + dy*dy + dz*dz); d < RepelRadius && d > 0 {
			p[0] += dx / d * RepelStep
			p[1] += dy / d * RepelStep
		}

		// position is not clamped, the particle drifts back over the next frames
		if math.Abs(p[0]) > halfW {
			v[0] = -v[0]
		}
		if math.Abs(p[1]) > halfH {
			v[1] = -v[1]
		}
	}

	n := 0
	for i := 0; i < f.count; i++ {
		pi := f.positions[i*3 : i*3+3]
		for j := i + 1; j < f.count; j++ {
			pj := f.positions[j*3 : j*3+3]
			dx, dy, dz := pi[0]-pj[0], pi[1]-pj[1], pi[2]-pj[2]
			if math.Sqrt(dx*dx+dy*dy+dz*dz) >= MaxDistance {
				continue
			}
			n += copy(f.lines[n:], pi)
			n += copy(f.lines[n:], pj)
		}
	}
	f.vertices = n / 3
	return f.vertices
}
