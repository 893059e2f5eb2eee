// Package mask builds the per-pixel foreground map that defines what a
// challenge asks the viewer to recognize. Three providers cover the closed
// mode set: rasterized words, analytic shapes, and thresholded depth maps.
package mask

import (
	"fmt"
	"image"

	"github.com/timeblind/timeblind-go/internal/engine"
)

// Mode identifies a challenge variant. The set is closed; a Provider is
// constructed from a Mode up front, so no "unsupported mode" condition can
// surface during generation.
type Mode int

const (
	ModeText Mode = iota
	ModeShape
	ModeDepth
)

// String returns the wire name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeText:
		return "text"
	case ModeShape:
		return "shape"
	case ModeDepth:
		return "depth"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode converts a wire name into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "text":
		return ModeText, nil
	case "shape":
		return ModeShape, nil
	case "depth":
		return ModeDepth, nil
	}
	return 0, fmt.Errorf("%w: unknown mode %q", ErrInvalidParams, s)
}

// Mask is an immutable foreground membership grid sized to the frame.
type Mask struct {
	Width  int
	Height int
	bits   []bool
}

// NewMask allocates an empty mask.
func NewMask(w, h int) *Mask {
	return &Mask{Width: w, Height: h, bits: make([]bool, w*h)}
}

// At reports foreground membership at (x, y).
func (m *Mask) At(x, y int) bool {
	return m.bits[y*m.Width+x]
}

// Set marks (x, y) as foreground. Only providers call this during
// construction; a finished mask is never mutated.
func (m *Mask) Set(x, y int, v bool) {
	m.bits[y*m.Width+x] = v
}

// Area returns the number of foreground pixels.
func (m *Mask) Area() int {
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}
	return n
}

// InkBounds returns the tight bounding box of the foreground, or the empty
// rectangle for an empty mask.
func (m *Mask) InkBounds() image.Rectangle {
	minX, minY := m.Width, m.Height
	maxX, maxY := -1, -1
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if !m.bits[y*m.Width+x] {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if maxX < 0 {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// Result is a generated mask with its ground truth.
type Result struct {
	Mask   *Mask
	Answer string
	Hint   string
}

// Provider produces a mask plus answer for one challenge. Implementations
// are stateless after construction and safe for concurrent use.
type Provider interface {
	Generate(width, height int, rng *engine.Stream) (*Result, error)
}

// Params carries the mode-specific inputs a provider may need.
type Params struct {
	// Word fixes the text-mode answer. Empty selects from the word list.
	Word string
	// Shape fixes the shape-mode answer. Empty selects randomly.
	Shape string
	// DepthImage holds encoded grayscale image bytes for depth mode.
	DepthImage []byte
	// ThresholdLow and ThresholdHigh bound the normalized depth window.
	ThresholdLow  float64
	ThresholdHigh float64
}

// NewProvider constructs the provider for a mode, validating mode params up
// front so generation itself cannot hit a parameter failure.
func NewProvider(mode Mode, p Params) (Provider, error) {
	switch mode {
	case ModeText:
		return newTextProvider(p.Word)
	case ModeShape:
		return newShapeProvider(p.Shape)
	case ModeDepth:
		return newDepthProvider(p.DepthImage, p.ThresholdLow, p.ThresholdHigh)
	}
	return nil, fmt.Errorf("%w: mode %d", ErrInvalidParams, int(mode))
}
