// Package compose renders challenge frames. The compositing rule is the
// security property of the whole system: inside one frame, foreground and
// background pixels are drawn from the same noise field and so share one
// value distribution, but the foreground samples at a per-frame cyclic
// offset, so only its content moves between frames.
package compose

import (
	"fmt"

	"github.com/timeblind/timeblind-go/internal/mask"
	"github.com/timeblind/timeblind-go/internal/noise"
)

// Motion fixes the foreground drift for the lifetime of a challenge.
type Motion struct {
	// Speed is the vertical drift in pixels per frame.
	Speed int
	// Period is the noise tile period the displacement wraps at.
	Period int
}

// Displacement returns the cyclic offset for frame t.
func (m Motion) Displacement(t int) int {
	return (m.Speed * t) % m.Period
}

// Frame is an ephemeral grayscale raster, a pure function of its inputs and
// the frame index.
type Frame struct {
	Width  int
	Height int
	Pix    []uint8
}

// RenderFrame composes one frame. Background pixels sample the field at
// their own coordinate; mask pixels sample the field shifted by the frame's
// displacement. The mask footprint itself stays fixed while the sampled
// content slides beneath it. Safe to call concurrently for different frame
// indices.
func RenderFrame(m *mask.Mask, f *noise.Field, mo Motion, t int) *Frame {
	w, h := m.Width, m.Height
	fr := &Frame{Width: w, Height: h, Pix: make([]uint8, w*h)}
	d := mo.Displacement(t)

	for y := 0; y < h; y++ {
		row := fr.Pix[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			if m.At(x, y) {
				row[x] = f.AtShifted(x, y, d)
			} else {
				row[x] = f.At(x, y)
			}
		}
	}
	return fr
}

// LoopPeriod returns the noise tile period for a challenge: the full frame
// height. A shorter period would make every frame vertically periodic at a
// sub-height lag, and a frame diffed against itself at that lag recovers
// the mask outline with no temporal integration at all. Seamless looping is
// instead a constraint on the config: the total displacement speed x frames
// must be a whole number of height cycles so the final frame hands off to
// frame 0.
func LoopPeriod(speed, frames, height int) (int, error) {
	if speed <= 0 || frames <= 0 || height <= 0 {
		return 0, fmt.Errorf("%w: speed=%d frames=%d height=%d", ErrInvalidConfig, speed, frames, height)
	}
	if (speed*frames)%height != 0 {
		return 0, fmt.Errorf("%w: total displacement %d is not a multiple of frame height %d, loop would jump",
			ErrInvalidConfig, speed*frames, height)
	}
	return height, nil
}
