package mask

import (
	"fmt"
	"image"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/timeblind/timeblind-go/internal/engine"
)

// inkHeightRatio is the target glyph bounding-box height relative to the
// frame height.
const inkHeightRatio = 0.4

var (
	fontOnce sync.Once
	fontTTF  *opentype.Font
	fontErr  error
)

// loadFont parses the embedded typeface once. The parsed font is read-only
// and shared across concurrent generation calls; faces derived from it are
// created per call because a font.Face is not safe for concurrent use.
func loadFont() (*opentype.Font, error) {
	fontOnce.Do(func() {
		fontTTF, fontErr = opentype.Parse(goregular.TTF)
	})
	return fontTTF, fontErr
}

type textProvider struct {
	word string // empty means pick from the word list
}

func newTextProvider(word string) (*textProvider, error) {
	if word != "" {
		if len(word) < 3 || len(word) > 5 {
			return nil, fmt.Errorf("%w: word %q must be 3-5 characters", ErrInvalidParams, word)
		}
		for _, r := range word {
			if r < 'a' || r > 'z' {
				return nil, fmt.Errorf("%w: word %q contains unsupported character %q", ErrInvalidParams, word, r)
			}
		}
	}
	return &textProvider{word: word}, nil
}

func (t *textProvider) Generate(width, height int, rng *engine.Stream) (*Result, error) {
	word := t.word
	if word == "" {
		word = wordList[rng.Intn(len(wordList))]
	}

	f, err := loadFont()
	if err != nil {
		return nil, fmt.Errorf("%w: parsing embedded font: %v", ErrInvalidParams, err)
	}

	target := float64(height) * inkHeightRatio

	// First pass at a nominal size, then rescale so the measured ink height
	// lands on the target. Glyph ink rarely matches the nominal point size,
	// so a single proportional correction is needed.
	img, err := renderWord(f, word, target)
	if err != nil {
		return nil, err
	}
	h0 := inkHeight(img)
	if h0 == 0 {
		return nil, fmt.Errorf("%w: word %q rendered no ink", ErrInvalidParams, word)
	}
	img, err = renderWord(f, word, target*target/float64(h0))
	if err != nil {
		return nil, err
	}

	m := NewMask(width, height)
	blitCentered(m, img)

	return &Result{
		Mask:   m,
		Answer: word,
		Hint:   "Watch the video and type the word that appears in motion",
	}, nil
}

// renderWord rasterizes the word at the given point size onto a grayscale
// canvas large enough to hold it.
func renderWord(f *opentype.Font, word string, size float64) (*image.Gray, error) {
	if size < 1 {
		size = 1
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: building font face: %v", ErrInvalidParams, err)
	}
	defer face.Close()

	for _, r := range word {
		if _, _, ok := face.GlyphBounds(r); !ok {
			return nil, fmt.Errorf("%w: no glyph for %q", ErrInvalidParams, r)
		}
	}

	adv := font.MeasureString(face, word)
	metrics := face.Metrics()
	cw := adv.Ceil() + 8
	ch := (metrics.Ascent + metrics.Descent).Ceil() + 8

	dst := image.NewGray(image.Rect(0, 0, cw, ch))
	d := font.Drawer{
		Dst:  dst,
		Src:  image.White,
		Face: face,
		Dot:  fixed.P(4, 4+metrics.Ascent.Ceil()),
	}
	d.DrawString(word)
	return dst, nil
}

// inkHeight measures the vertical extent of nonzero pixels.
func inkHeight(img *image.Gray) int {
	b := inkBox(img)
	return b.Dy()
}

func inkBox(img *image.Gray) image.Rectangle {
	bounds := img.Bounds()
	minX, minY := bounds.Max.X, bounds.Max.Y
	maxX, maxY := -1, -1
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if img.GrayAt(x, y).Y > 127 {
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
	}
	if maxX < 0 {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// blitCentered thresholds the rendered ink into the mask, centered in the
// frame. Ink extending past the frame is clipped.
func blitCentered(m *Mask, img *image.Gray) {
	box := inkBox(img)
	offX := (m.Width - box.Dx()) / 2
	offY := (m.Height - box.Dy()) / 2

	for y := box.Min.Y; y < box.Max.Y; y++ {
		for x := box.Min.X; x < box.Max.X; x++ {
			if img.GrayAt(x, y).Y <= 127 {
				continue
			}
			dx := offX + x - box.Min.X
			dy := offY + y - box.Min.Y
			if dx < 0 || dx >= m.Width || dy < 0 || dy >= m.Height {
				continue
			}
			m.Set(dx, dy, true)
		}
	}
}
