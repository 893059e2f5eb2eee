package mask

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"

	"github.com/timeblind/timeblind-go/internal/engine"
)

// Usable area band for a depth mask, as fractions of the frame. Outside
// this band the challenge is either unsolvable or so dense that the moving
// region stops reading as a silhouette.
const (
	minAreaFraction = 0.05
	maxAreaFraction = 0.60
)

type depthProvider struct {
	img    []byte
	lo, hi float64
}

func newDepthProvider(img []byte, lo, hi float64) (*depthProvider, error) {
	if len(img) == 0 {
		return nil, fmt.Errorf("%w: depth image is required", ErrInvalidParams)
	}
	if lo < 0 || hi > 1 || lo > hi {
		return nil, fmt.Errorf("%w: threshold window [%g, %g] must satisfy 0 <= tl <= tu <= 1", ErrInvalidParams, lo, hi)
	}
	return &depthProvider{img: img, lo: lo, hi: hi}, nil
}

func (p *depthProvider) Generate(width, height int, _ *engine.Stream) (*Result, error) {
	src, _, err := image.Decode(bytes.NewReader(p.img))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	depth := scaleToGray(src, width, height)

	// Min-max normalize so the threshold window is relative to the actual
	// depth range of this image.
	lo, hi := uint8(255), uint8(0)
	for _, v := range depth.Pix {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo == hi {
		return nil, fmt.Errorf("%w: depth image has no depth variation", ErrDegenerateMask)
	}
	span := float64(hi - lo)

	m := NewMask(width, height)
	area := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			d := float64(depth.Pix[y*depth.Stride+x]-lo) / span
			if d >= p.lo && d <= p.hi {
				m.Set(x, y, true)
				area++
			}
		}
	}

	frac := float64(area) / float64(width*height)
	if frac < minAreaFraction || frac > maxAreaFraction {
		return nil, fmt.Errorf("%w: mask covers %.1f%% of frame, usable band is %.0f%%-%.0f%%",
			ErrDegenerateMask, frac*100, minAreaFraction*100, maxAreaFraction*100)
	}

	return &Result{
		Mask:   m,
		Answer: "object",
		Hint:   "Watch the video and name the object that appears in motion",
	}, nil
}

// scaleToGray converts the decoded image to grayscale at the frame size.
func scaleToGray(src image.Image, width, height int) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
