package mask

import (
	"errors"
	"testing"

	"github.com/timeblind/timeblind-go/internal/engine"
)

func TestShapeMaskAllShapes(t *testing.T) {
	const width, height = 640, 360

	for _, name := range ShapeNames {
		t.Run(name, func(t *testing.T) {
			p, err := NewProvider(ModeShape, Params{Shape: name})
			if err != nil {
				t.Fatalf("NewProvider() failed: %v", err)
			}
			res, err := p.Generate(width, height, engine.NewStream("shapes", "mask"))
			if err != nil {
				t.Fatalf("Generate() failed: %v", err)
			}

			if res.Answer != name {
				t.Errorf("Answer = %q, want %q", res.Answer, name)
			}
			if res.Mask.Width != width || res.Mask.Height != height {
				t.Errorf("Mask is %dx%d, want %dx%d", res.Mask.Width, res.Mask.Height, width, height)
			}

			area := res.Mask.Area()
			frac := float64(area) / float64(width*height)
			if frac < 0.01 || frac > 0.6 {
				t.Errorf("Mask area fraction %f outside plausible band", frac)
			}

			// Fully inside the frame: no ink on any border row or column.
			box := res.Mask.InkBounds()
			if box.Min.X <= 0 || box.Min.Y <= 0 || box.Max.X >= width || box.Max.Y >= height {
				t.Errorf("Shape ink %v touches the frame border", box)
			}
		})
	}
}

func TestShapeMaskRandomSelection(t *testing.T) {
	p, err := NewProvider(ModeShape, Params{})
	if err != nil {
		t.Fatalf("NewProvider() failed: %v", err)
	}

	seen := make(map[string]bool)
	for i := 0; i < 40; i++ {
		res, err := p.Generate(640, 360, engine.NewStream(string(rune('a'+i)), "mask"))
		if err != nil {
			t.Fatalf("Generate() failed: %v", err)
		}
		if !validShape(res.Answer) {
			t.Fatalf("Answer %q is not a known shape", res.Answer)
		}
		seen[res.Answer] = true
	}
	if len(seen) < 3 {
		t.Errorf("40 seeds produced only %d distinct shapes", len(seen))
	}
}

func TestShapeMaskDeterminism(t *testing.T) {
	p, err := NewProvider(ModeShape, Params{})
	if err != nil {
		t.Fatalf("NewProvider() failed: %v", err)
	}

	r1, err := p.Generate(640, 360, engine.NewStream("same", "mask"))
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	r2, err := p.Generate(640, 360, engine.NewStream("same", "mask"))
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	if r1.Answer != r2.Answer {
		t.Fatalf("Answers differ: %q != %q", r1.Answer, r2.Answer)
	}
	for y := 0; y < 360; y++ {
		for x := 0; x < 640; x++ {
			if r1.Mask.At(x, y) != r2.Mask.At(x, y) {
				t.Fatalf("Masks differ at (%d, %d)", x, y)
			}
		}
	}
}

func TestShapeParamValidation(t *testing.T) {
	_, err := NewProvider(ModeShape, Params{Shape: "hexagon"})
	if !errors.Is(err, ErrInvalidParams) {
		t.Errorf("NewProvider() error = %v, want ErrInvalidParams", err)
	}
}
