package plexus

import (
	"math"
	"strings"
)

const (
	CameraZ   = 150.0
	CameraFOV = 75.0
	nearPlane = 0.1

	dotsX = 2
	dotsY = 4
)

// brailleBits maps a dot inside a cell, [x][y], to its bit in the U+2800 block.
var brailleBits = [dotsX][dotsY]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// Raster is a monochrome dot grid drawn with braille characters, 2x4 dots per cell.
type Raster struct {
	cols, rows int
	cells      []uint8
}

func NewRaster(cols, rows int) *Raster {
	r := &Raster{}
	r.Resize(cols, rows)
	return r
}

func (r *Raster) Resize(cols, rows int) {
	r.cols, r.rows = max(cols, 0), max(rows, 0)
	r.cells = make([]uint8, r.cols*r.rows)
}

// Dots is the resolution in dots.
func (r *Raster) Dots() (int, int) {
	return r.cols * dotsX, r.rows * dotsY
}

func (r *Raster) Clear() {
	clear(r.cells)
}

// Set lights one dot; out of range dots are ignored.
func (r *Raster) Set(x, y int) {
	w, h := r.Dots()
	if x < 0 || y < 0 || x >= w || y >= h {
		return
	}
	r.cells[(y/dotsY)*r.cols+x/dotsX] |= brailleBits[x%dotsX][y%dotsY]
}

// Lit reports whether the dot is set.
func (r *Raster) Lit(x, y int) bool {
	w, h := r.Dots()
	if x < 0 || y < 0 || x >= w || y >= h {
		return false
	}
	return r.cells[(y/dotsY)*r.cols+x/dotsX]&brailleBits[x%dotsX][y%dotsY] != 0
}

// Line draws a segment with Bresenham's algorithm.
func (r *Raster) Line(x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		r.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func (r *Raster) String() string {
	var b strings.Builder
	b.Grow(r.rows * (r.cols*3 + 1))
	for y := 0; y < r.rows; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		for _, c := range r.cells[y*r.cols : (y+1)*r.cols] {
			if c == 0 {
				b.WriteByte(' ')
				continue
			}
			b.WriteRune(rune(0x2800 + int(c)))
		}
	}
	return b.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Camera is a perspective camera on the z axis looking at the origin.
type Camera struct {
	Z   float64
	FOV float64 // vertical, degrees
}

// Project maps a world point to dot coordinates of a w x h raster.
// Points behind the near plane are not visible.
func (c Camera) Project(x, y, z float64, w, h int) (int, int, bool) {
	depth := c.Z - z
	if depth < nearPlane || w == 0 || h == 0 {
		return 0, 0, false
	}
	// dots are twice as tall as wide on a terminal, so the aspect is taken in cells
	aspect := float64(w) / float64(h) / 2
	t := math.Tan(c.FOV * math.Pi / 360)
	ndcX := x / (t * aspect * depth)
	ndcY := y / (t * depth)
	sx := (ndcX + 1) / 2 * float64(w)
	sy := (1 - ndcY) / 2 * float64(h)
	return int(math.Floor(sx)), int(math.Floor(sy)), true
}

// Scene draws a Field through a Camera into a Raster.
type Scene struct {
	field  *Field
	camera Camera
	raster *Raster
}

func NewScene(field *Field, cols, rows int) *Scene {
	return &Scene{
		field:  field,
		camera: Camera{Z: CameraZ, FOV: CameraFOV},
		raster: NewRaster(cols, rows),
	}
}

func (s *Scene) Field() *Field {
	return s.field
}

func (s *Scene) Resize(cols, rows int) {
	s.raster.Resize(cols, rows)
}

// Render draws the current draw range of line segments and every particle.
func (s *Scene) Render() string {
	r := s.raster
	r.Clear()
	w, h := r.Dots()

	lines := s.field.Lines()
	for v := 0; v+1 < s.field.Vertices(); v += 2 {
		a, b := lines[v*3:v*3+3], lines[(v+1)*3:(v+1)*3+3]
		x0, y0, ok0 := s.camera.Project(a[0], a[1], a[2], w, h)
		x1, y1, ok1 := s.camera.Project(b[0], b[1], b[2], w, h)
		if !ok0 || !ok1 || !segmentNear(x0, y0, x1, y1, w, h) {
			continue
		}
		r.Line(x0, y0, x1, y1)
	}

	pos := s.field.Positions()
	for i := 0; i < s.field.Count(); i++ {
		if x, y, ok := s.camera.Project(pos[i*3], pos[i*3+1], pos[i*3+2], w, h); ok {
			r.Set(x, y)
		}
	}
	return r.String()
}

// segmentNear rejects segments lying entirely on one side outside the raster.
func segmentNear(x0, y0, x1, y1, w, h int) bool {
	switch {
	case x0 < 0 && x1 < 0, y0 < 0 && y1 < 0:
		return false
	case x0 >= w && x1 >= w, y0 >= h && y1 >= h:
		return false
	}
	return true
}
