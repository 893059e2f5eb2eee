// Package noise synthesizes the camouflage texture a challenge is built
// from. A Field is generated once per challenge and sampled for both the
// static background and the moving foreground, which is what keeps the two
// regions indistinguishable inside any single frame.
package noise

import (
	"fmt"
	"math"
	"sort"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/timeblind/timeblind-go/internal/engine"
)

// Texture selects the kind of noise a field is filled with.
type Texture string

const (
	// TextureBlock is binary speckle noise in block-sized cells.
	TextureBlock Texture = "block"
	// TexturePlasma is thresholded simplex noise, wrapped along the motion
	// axis so the tile still loops seamlessly.
	TexturePlasma Texture = "plasma"
)

// Config parameterizes field generation.
type Config struct {
	Width  int
	Height int
	// Period is the tile length along the vertical motion axis. Sampling
	// wraps at Period, so any displacement taken modulo Period stays inside
	// generated data. It must span at least the frame height, so that no
	// row repeats within one frame.
	Period  int
	Block   int     // speckle size in pixels (block texture)
	Density float64 // fraction of high-intensity cells, in [0, 1]
	Texture Texture
}

// Field is an immutable noise tile of Width x Period cells, addressable over
// the full Width x Height frame through cyclic row lookup. Values are 0 or
// 255.
type Field struct {
	Width  int
	Height int
	Period int
	cells  []uint8
}

// Validate reports the first configuration problem, wrapped in
// ErrInvalidParams.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d must be positive", ErrInvalidParams, c.Width, c.Height)
	}
	if c.Density < 0 || c.Density > 1 {
		return fmt.Errorf("%w: density %g outside [0, 1]", ErrInvalidParams, c.Density)
	}
	// A period shorter than the frame would repeat inside a single frame
	// and expose the mask at the repetition lag.
	if c.Period < c.Height {
		return fmt.Errorf("%w: tile period %d shorter than frame height %d", ErrInvalidParams, c.Period, c.Height)
	}
	switch c.Texture {
	case TextureBlock:
		if c.Block <= 0 {
			return fmt.Errorf("%w: block size %d must be positive", ErrInvalidParams, c.Block)
		}
		if c.Period%c.Block != 0 {
			return fmt.Errorf("%w: tile period %d not a multiple of block size %d", ErrInvalidParams, c.Period, c.Block)
		}
	case TexturePlasma:
	default:
		return fmt.Errorf("%w: unknown texture %q", ErrInvalidParams, c.Texture)
	}
	return nil
}

// Generate builds a field from the config and a seeded stream. The same
// stream state always produces the same field.
func Generate(cfg Config, rng *engine.Stream) (*Field, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	f := &Field{
		Width:  cfg.Width,
		Height: cfg.Height,
		Period: cfg.Period,
		cells:  make([]uint8, cfg.Width*cfg.Period),
	}

	switch cfg.Texture {
	case TextureBlock:
		fillBlock(f, cfg, rng)
	case TexturePlasma:
		fillPlasma(f, cfg, rng)
	}
	return f, nil
}

// At returns the field value at frame coordinate (x, y). Rows wrap at the
// tile period.
func (f *Field) At(x, y int) uint8 {
	return f.cells[(y%f.Period)*f.Width+x]
}

// AtShifted returns the value at (x, y) displaced by shift rows along the
// motion axis.
func (f *Field) AtShifted(x, y, shift int) uint8 {
	return f.cells[((y+shift)%f.Period)*f.Width+x]
}

// fillBlock draws one high-or-low speckle per block-sized cell, expanded to
// pixels.
func fillBlock(f *Field, cfg Config, rng *engine.Stream) {
	rows := cfg.Period / cfg.Block
	cols := (cfg.Width + cfg.Block - 1) / cfg.Block

	for gy := 0; gy < rows; gy++ {
		for gx := 0; gx < cols; gx++ {
			var v uint8
			if rng.Float() < cfg.Density {
				v = 255
			}
			for py := gy * cfg.Block; py < (gy+1)*cfg.Block; py++ {
				for px := gx * cfg.Block; px < (gx+1)*cfg.Block && px < cfg.Width; px++ {
					f.cells[py*cfg.Width+px] = v
				}
			}
		}
	}
}

// fillPlasma samples simplex noise on a cylinder so the texture is periodic
// along the motion axis, then binarizes at the density quantile so the high
// fraction matches cfg.Density.
func fillPlasma(f *Field, cfg Config, rng *engine.Stream) {
	// Derive the simplex seed from the stream so plasma fields stay
	// reproducible under the challenge seed.
	var seed int64
	for i := 0; i < 8; i++ {
		seed = seed<<8 | int64(rng.Next())
	}
	n := opensimplex.NewNormalized(seed)

	const frequency = 24.0 // feature size in pixels
	radius := float64(cfg.Period) / (2 * math.Pi)

	raw := make([]float64, len(f.cells))
	for y := 0; y < cfg.Period; y++ {
		angle := 2 * math.Pi * float64(y) / float64(cfg.Period)
		cy := radius * math.Cos(angle)
		sy := radius * math.Sin(angle)
		for x := 0; x < cfg.Width; x++ {
			raw[y*cfg.Width+x] = n.Eval3(cy/frequency, sy/frequency, float64(x)/frequency)
		}
	}

	// Threshold at the (1 - density) quantile of the sampled values.
	sorted := make([]float64, len(raw))
	copy(sorted, raw)
	sort.Float64s(sorted)
	idx := int(float64(len(sorted)) * (1 - cfg.Density))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	threshold := sorted[idx]

	for i, v := range raw {
		if v >= threshold {
			f.cells[i] = 255
		}
	}
}
