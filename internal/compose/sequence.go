package compose

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/timeblind/timeblind-go/internal/mask"
	"github.com/timeblind/timeblind-go/internal/noise"
)

// FrameCount converts a frame rate and duration into a whole frame count.
func FrameCount(fps int, duration float64) int {
	return int(math.Round(float64(fps) * duration))
}

// BuildSequence renders frames 0..frames-1 in parallel and returns them in
// index order. Each frame depends only on the immutable mask and field plus
// its own index, so workers share nothing and the ordered slice is the only
// assembly step.
func BuildSequence(ctx context.Context, m *mask.Mask, f *noise.Field, mo Motion, frames int) ([]*Frame, error) {
	if frames <= 0 {
		return nil, fmt.Errorf("%w: frame count %d must be positive", ErrInvalidConfig, frames)
	}
	if m.Width != f.Width || m.Height != f.Height {
		return nil, fmt.Errorf("%w: mask %dx%d does not match noise field %dx%d",
			ErrInvalidConfig, m.Width, m.Height, f.Width, f.Height)
	}
	if mo.Period != f.Period {
		return nil, fmt.Errorf("%w: motion period %d does not match field tile period %d",
			ErrInvalidConfig, mo.Period, f.Period)
	}
	// Loop continuity: the final frame must hand off to frame 0 without a
	// visible jump, which requires the total displacement to be a whole
	// number of tile periods.
	if (mo.Speed*frames)%mo.Period != 0 {
		return nil, fmt.Errorf("%w: total displacement %d is not a multiple of tile period %d, loop would jump",
			ErrInvalidConfig, mo.Speed*frames, mo.Period)
	}

	out := make([]*Frame, frames)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for t := 0; t < frames; t++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[t] = RenderFrame(m, f, mo, t)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
