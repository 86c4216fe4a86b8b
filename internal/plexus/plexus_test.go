package plexus

import (
	"math"
	"math/rand"
	"strings"
	"testing"
)

func newField(t *testing.T, opts ...Option) *Field {
	t.Helper()
	return New(1600, 900, append([]Option{WithRand(rand.New(rand.NewSource(1)))}, opts...)...)
}

func TestNew_Buffers(t *testing.T) {
	f := newField(t)
	if got, want := len(f.Lines()), ParticleCount*ParticleCount*3; got != want {
		t.Errorf("line buffer = %d, want %d", got, want)
	}
	if got := len(f.Positions()); got != ParticleCount*3 {
		t.Errorf("position buffer = %d", got)
	}
	pos := f.Positions()
	for i := 0; i < f.Count(); i++ {
		if math.Abs(pos[i*3]) > 400 || math.Abs(pos[i*3+1]) > 225 || math.Abs(pos[i*3+2]) > 50 {
			t.Fatalf("particle %d seeded outside the box: %v", i, pos[i*3:i*3+3])
		}
	}
}

func TestStep_VertexBound(t *testing.T) {
	f := newField(t)
	limit := 2 * ParticleCount * (ParticleCount - 1) / 2
	for frame := 0; frame < 200; frame++ {
		n := f.Step()
		if n > limit || n*3 > len(f.Lines()) {
			t.Fatalf("frame %d wrote %d vertices, limit %d", frame, n, limit)
		}
		if n%2 != 0 {
			t.Fatalf("frame %d wrote an odd vertex count %d", frame, n)
		}
	}
}

func TestStep_AllPairsConnected(t *testing.T) {
	f := newField(t, WithCount(10))
	clear(f.positions)
	clear(f.velocities)
	f.SetMouse(-100, -100)
	if got := f.Step(); got != 10*9 {
		t.Errorf("vertices = %d, want %d", got, 10*9)
	}
}

func TestStep_PairsBeyondThreshold(t *testing.T) {
	f := newField(t, WithCount(2))
	clear(f.velocities)
	copy(f.positions, []float64{0, 0, 0, MaxDistance, 0, 0})
	f.SetMouse(-100, -100)
	if got := f.Step(); got != 0 {
		t.Errorf("vertices = %d at exactly MaxDistance", got)
	}
	f.positions[3] = MaxDistance - 1
	if got := f.Step(); got != 2 {
		t.Errorf("vertices = %d, want 2", got)
	}
	if got := f.Lines()[:6]; got[3] != MaxDistance-1 {
		t.Errorf("line = %v", got)
	}
}

func TestStep_Reflection(t *testing.T) {
	f := newField(t, WithCount(1))
	f.SetMouse(-100, -100)
	copy(f.positions, []float64{801, -451, 0})
	copy(f.velocities, []float64{0.1, -0.1})
	f.Step()
	if f.velocities[0] >= 0 || f.velocities[1] <= 0 {
		t.Errorf("velocity not reflected: %v", f.velocities)
	}
	// still outside: the sign flips again on the next frame
	f.Step()
	if f.velocities[0] <= 0 {
		t.Errorf("soft boundary: vx = %v", f.velocities[0])
	}
}

func TestStep_Repulsion(t *testing.T) {
	f := newField(t, WithCount(1))
	f.SetMouse(0, 0)
	copy(f.positions, []float64{30, 40, 0})
	clear(f.velocities)
	f.Step()
	// pushed 0.5 along (0.6, 0.8)
	if math.Abs(f.positions[0]-30.3) > 1e-9 || math.Abs(f.positions[1]-40.4) > 1e-9 {
		t.Errorf("position = %v", f.positions[:3])
	}

	copy(f.positions, []float64{300, 0, 0})
	f.Step()
	if f.positions[0] != 300 {
		t.Errorf("particle outside the radius moved: %v", f.positions[:3])
	}
}

func TestAnchor(t *testing.T) {
	f := newField(t)
	f.SetMouse(1, -0.5)
	x, y, z := f.Anchor()
	if x != 320 || y != -90 || z != 0 {
		t.Errorf("anchor = %v %v %v", x, y, z)
	}
}

func TestRaster(t *testing.T) {
	r := NewRaster(2, 1)
	r.Set(0, 0)
	r.Set(3, 3)
	r.Set(10, 10)
	if got := r.String(); got != "⠁⢀" {
		t.Errorf("raster = %q", got)
	}
	r.Clear()
	r.Line(0, 0, 3, 3)
	for i := 0; i < 4; i++ {
		if !r.Lit(i, i) {
			t.Errorf("dot %d,%d not lit", i, i)
		}
	}
	if r.Lit(3, 0) {
		t.Error("stray dot")
	}
}

func TestCameraProject(t *testing.T) {
	c := Camera{Z: CameraZ, FOV: CameraFOV}
	x, y, ok := c.Project(0, 0, 0, 80, 40)
	if !ok || x != 40 || y != 20 {
		t.Errorf("origin = %d,%d,%v", x, y, ok)
	}
	if _, _, ok := c.Project(0, 0, 200, 80, 40); ok {
		t.Error("point behind the camera projected")
	}
	_, top, _ := c.Project(0, 50, 0, 80, 40)
	if top >= 20 {
		t.Errorf("positive y drawn below the centre: %d", top)
	}
}

func TestScene_Render(t *testing.T) {
	f := newField(t)
	s := NewScene(f, 40, 10)
	f.Step()
	out := s.Render()
	lines := strings.Split(out, "\n")
	if len(lines) != 10 {
		t.Fatalf("rows = %d", len(lines))
	}
	for _, l := range lines {
		if n := len([]rune(l)); n != 40 {
			t.Fatalf("row width = %d", n)
		}
	}
	if strings.TrimSpace(out) == "" {
		t.Error("nothing drawn")
	}
}
