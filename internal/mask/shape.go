package mask

import (
	"fmt"

	"github.com/timeblind/timeblind-go/internal/engine"
)

// ShapeNames lists the supported shape answers.
var ShapeNames = []string{"circle", "rectangle", "triangle", "heart", "arrow"}

type shapeProvider struct {
	shape string // empty means pick randomly
}

func newShapeProvider(shape string) (*shapeProvider, error) {
	if shape != "" && !validShape(shape) {
		return nil, fmt.Errorf("%w: unknown shape %q", ErrInvalidParams, shape)
	}
	return &shapeProvider{shape: shape}, nil
}

func validShape(name string) bool {
	for _, s := range ShapeNames {
		if s == name {
			return true
		}
	}
	return false
}

// shapeExtent gives the half-extents of a shape in units of its base size:
// distances from the center to the left, right, top, and bottom edges.
// Coordinates follow raster convention, +y downward.
type shapeExtent struct {
	left, right, top, bottom float64
}

func extentFor(name string) shapeExtent {
	switch name {
	case "rectangle":
		return shapeExtent{1.2, 1.2, 0.7, 0.7}
	case "arrow":
		return shapeExtent{1, 1, 1.6, 0.5}
	default: // circle, triangle, heart all span one size unit around center
		return shapeExtent{1, 1, 1, 1}
	}
}

func (p *shapeProvider) Generate(width, height int, rng *engine.Stream) (*Result, error) {
	name := p.shape
	if name == "" {
		name = ShapeNames[rng.Intn(len(ShapeNames))]
	}

	min := width
	if height < min {
		min = height
	}

	// Base size with a bounded seeded jitter, then a seeded center position
	// constrained so the shape stays fully inside the frame.
	size := float64(min) * 0.35 * (0.85 + 0.25*rng.Float())
	ext := extentFor(name)

	const margin = 4
	loX := margin + size*ext.left
	hiX := float64(width) - margin - size*ext.right
	loY := margin + size*ext.top
	hiY := float64(height) - margin - size*ext.bottom
	if hiX < loX || hiY < loY {
		// Frame too small for jitter at this size; fall back to dead center.
		loX, hiX = float64(width)/2, float64(width)/2
		loY, hiY = float64(height)/2, float64(height)/2
	}
	cx := loX + (hiX-loX)*rng.Float()
	cy := loY + (hiY-loY)*rng.Float()

	inside := shapeTest(name, size)
	m := NewMask(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if inside(float64(x)+0.5-cx, float64(y)+0.5-cy) {
				m.Set(x, y, true)
			}
		}
	}

	return &Result{
		Mask:   m,
		Answer: name,
		Hint:   "Watch the video and name the shape that appears in motion",
	}, nil
}

// shapeTest returns a point-membership predicate in coordinates relative to
// the shape center, +y pointing down the frame.
func shapeTest(name string, s float64) func(dx, dy float64) bool {
	switch name {
	case "circle":
		return func(dx, dy float64) bool {
			return dx*dx+dy*dy <= s*s
		}
	case "rectangle":
		return func(dx, dy float64) bool {
			return dx >= -1.2*s && dx <= 1.2*s && dy >= -0.7*s && dy <= 0.7*s
		}
	case "triangle":
		// Apex up: (0,-s), base corners (-s,+s), (+s,+s).
		return func(dx, dy float64) bool {
			return pointInTriangle(dx, dy, 0, -s, -s, s, s, s)
		}
	case "heart":
		return heartTest(s)
	case "arrow":
		// Upward arrow: shaft below, triangular head on top.
		return func(dx, dy float64) bool {
			shaft := dx >= -s/6 && dx <= s/6 && dy >= -s && dy <= s/2
			head := pointInTriangle(dx, dy, -s, -s, s, -s, 0, -1.6*s)
			return shaft || head
		}
	}
	// Unreachable for valid names; a tiny block keeps the mask non-empty.
	return func(dx, dy float64) bool {
		return dx >= -s/4 && dx <= s/4 && dy >= -s/4 && dy <= s/4
	}
}

// heartTest combines a kite-shaped body with two elliptical lobes.
func heartTest(s float64) func(dx, dy float64) bool {
	r := s / 2
	// Lobe centers and radii derived from the kite's upper edge.
	lobeRX := s / 2
	lobeRY := 3 * s / 4
	lobeCY := -s / 4

	return func(dx, dy float64) bool {
		adx := dx
		if adx < 0 {
			adx = -adx
		}
		// Kite body: tip at (0, +s), side points (±s, 0), dip at (0, -r).
		if dy >= -r && dy <= 0 && adx <= s*(dy+r)/r {
			return true
		}
		if dy >= 0 && dy <= s && adx <= s*(1-dy/s) {
			return true
		}
		for _, cx := range []float64{-s / 2, s / 2} {
			nx := (dx - cx) / lobeRX
			ny := (dy - lobeCY) / lobeRY
			if nx*nx+ny*ny <= 1 {
				return true
			}
		}
		return false
	}
}

func pointInTriangle(px, py, ax, ay, bx, by, cx, cy float64) bool {
	d1 := sign(px, py, ax, ay, bx, by)
	d2 := sign(px, py, bx, by, cx, cy)
	d3 := sign(px, py, cx, cy, ax, ay)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

func sign(px, py, ax, ay, bx, by float64) float64 {
	return (px-bx)*(ay-by) - (ax-bx)*(py-by)
}
