package captcha

import (
	"fmt"

	"github.com/timeblind/timeblind-go/internal/compose"
	"github.com/timeblind/timeblind-go/internal/noise"
)

// Config is the immutable generation configuration for one challenge. A
// zero field means "use the default"; Resolve fills the gaps and Validate
// runs before any frame work begins.
type Config struct {
	Width        int
	Height       int
	FPS          int
	Duration     float64 // seconds
	Speed        int     // foreground drift, pixels per frame
	NoiseDensity float64 // fraction of high-intensity cells
	NoiseBlock   int     // speckle size in pixels
	Texture      noise.Texture
	FFmpegPath   string
}

// Default preset: 640x360, 24 fps, half-density 2-pixel speckle. Duration
// and speed are paired so the total drift is one full frame height (5 px
// over 72 frames = 360 rows), which makes the clip loop seamlessly without
// shrinking the noise tile below the frame.
const (
	DefaultWidth    = 640
	DefaultHeight   = 360
	DefaultFPS      = 24
	DefaultDuration = 3.0
	DefaultSpeed    = 5
	DefaultDensity  = 0.5
	DefaultBlock    = 2
)

// Tier is a named difficulty preset bundling resolution, frame rate,
// duration, noise, and motion speed.
type Tier string

const (
	TierEasy   Tier = "easy"
	TierMedium Tier = "medium"
	TierHard   Tier = "hard"
)

// TierConfig returns the preset for a difficulty tier. Unknown tiers get
// the medium preset, matching the lenient handling of the serving layer.
func TierConfig(t Tier) Config {
	// Every preset keeps speed x frames a whole multiple of the frame
	// height, the loop condition Validate enforces for custom configs.
	switch t {
	case TierEasy:
		// Slow drift over a longer clip: 3 px x 120 frames = 360 rows.
		return Config{
			Width: DefaultWidth, Height: DefaultHeight,
			FPS: DefaultFPS, Duration: 5.0,
			Speed: 3, NoiseDensity: DefaultDensity, NoiseBlock: 3,
			Texture: noise.TextureBlock,
		}
	case TierHard:
		// Finer speckle, faster drift, shorter clip: 6 px x 60 frames.
		return Config{
			Width: DefaultWidth, Height: DefaultHeight,
			FPS: DefaultFPS, Duration: 2.5,
			Speed: 6, NoiseDensity: DefaultDensity, NoiseBlock: 1,
			Texture: noise.TextureBlock,
		}
	default:
		return Config{
			Width: DefaultWidth, Height: DefaultHeight,
			FPS: DefaultFPS, Duration: DefaultDuration,
			Speed: DefaultSpeed, NoiseDensity: DefaultDensity, NoiseBlock: DefaultBlock,
			Texture: noise.TextureBlock,
		}
	}
}

// Resolve fills zero-valued fields with defaults.
func (c Config) Resolve() Config {
	if c.Width == 0 {
		c.Width = DefaultWidth
	}
	if c.Height == 0 {
		c.Height = DefaultHeight
	}
	if c.FPS == 0 {
		c.FPS = DefaultFPS
	}
	if c.Duration == 0 {
		c.Duration = DefaultDuration
	}
	if c.Speed == 0 {
		c.Speed = DefaultSpeed
	}
	if c.NoiseDensity == 0 {
		c.NoiseDensity = DefaultDensity
	}
	if c.NoiseBlock == 0 {
		c.NoiseBlock = DefaultBlock
	}
	if c.Texture == "" {
		c.Texture = noise.TextureBlock
	}
	return c
}

// Validate reports the first invalid field, wrapped in ErrInvalidParams.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: resolution %dx%d must be positive", ErrInvalidParams, c.Width, c.Height)
	}
	// yuv420p output subsamples chroma 2x2, so both dimensions must be even.
	if c.Width%2 != 0 || c.Height%2 != 0 {
		return fmt.Errorf("%w: resolution %dx%d must have even dimensions", ErrInvalidParams, c.Width, c.Height)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("%w: fps %d must be positive", ErrInvalidParams, c.FPS)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("%w: duration %gs must be positive", ErrInvalidParams, c.Duration)
	}
	if c.Speed <= 0 {
		return fmt.Errorf("%w: speed %d must be positive", ErrInvalidParams, c.Speed)
	}
	if c.NoiseDensity < 0 || c.NoiseDensity > 1 {
		return fmt.Errorf("%w: noise density %g outside [0, 1]", ErrInvalidParams, c.NoiseDensity)
	}
	if c.NoiseBlock <= 0 {
		return fmt.Errorf("%w: noise block %d must be positive", ErrInvalidParams, c.NoiseBlock)
	}
	if c.Texture != noise.TextureBlock && c.Texture != noise.TexturePlasma {
		return fmt.Errorf("%w: unknown noise texture %q", ErrInvalidParams, c.Texture)
	}
	// Seamless looping requires the total drift to be a whole number of
	// frame heights; the noise tile always spans the full frame.
	if frames := compose.FrameCount(c.FPS, c.Duration); (c.Speed*frames)%c.Height != 0 {
		return fmt.Errorf("%w: drift of %d px over %d frames is not a whole number of %d-row cycles",
			ErrInvalidParams, c.Speed*frames, frames, c.Height)
	}
	return nil
}
