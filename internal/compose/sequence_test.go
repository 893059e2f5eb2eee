package compose

import (
	"context"
	"errors"
	"testing"

	"github.com/timeblind/timeblind-go/internal/engine"
	"github.com/timeblind/timeblind-go/internal/mask"
	"github.com/timeblind/timeblind-go/internal/noise"
)

func TestFrameCount(t *testing.T) {
	tests := []struct {
		fps      int
		duration float64
		want     int
	}{
		{24, 4.0, 96},
		{24, 5.0, 120},
		{30, 3.0, 90},
		{24, 3.98, 96}, // rounds, not truncates
	}

	for _, tt := range tests {
		if got := FrameCount(tt.fps, tt.duration); got != tt.want {
			t.Errorf("FrameCount(%d, %g) = %d, want %d", tt.fps, tt.duration, got, tt.want)
		}
	}
}

func TestBuildSequence(t *testing.T) {
	m, f, mo := testFixtures(t)

	seq, err := BuildSequence(context.Background(), m, f, mo, testFrames)
	if err != nil {
		t.Fatalf("BuildSequence() failed: %v", err)
	}
	if len(seq) != testFrames {
		t.Fatalf("BuildSequence() returned %d frames, want %d", len(seq), testFrames)
	}

	// Parallel assembly must still yield index order: each slot matches a
	// direct render of that index.
	for _, idx := range []int{0, 1, 17, testFrames / 2, testFrames - 1} {
		want := RenderFrame(m, f, mo, idx)
		got := seq[idx]
		for i := range want.Pix {
			if got.Pix[i] != want.Pix[i] {
				t.Fatalf("Frame %d out of order or corrupted at offset %d", idx, i)
			}
		}
	}
}

func TestBuildSequenceLoopContract(t *testing.T) {
	m, f, _ := testFixtures(t)

	// 100 frames at speed 5 drift 500 rows, not a whole number of 360-row
	// cycles.
	_, err := BuildSequence(context.Background(), m, f, Motion{Speed: testSpeed, Period: f.Period}, 100)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("BuildSequence() error = %v, want ErrInvalidConfig for a broken loop", err)
	}
}

func TestBuildSequenceValidation(t *testing.T) {
	m, f, mo := testFixtures(t)

	t.Run("no frames", func(t *testing.T) {
		_, err := BuildSequence(context.Background(), m, f, mo, 0)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("BuildSequence() error = %v, want ErrInvalidConfig", err)
		}
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		small := mask.NewMask(320, 180)
		_, err := BuildSequence(context.Background(), small, f, mo, testFrames)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("BuildSequence() error = %v, want ErrInvalidConfig", err)
		}
	})

	t.Run("period mismatch", func(t *testing.T) {
		_, err := BuildSequence(context.Background(), m, f, Motion{Speed: 1, Period: f.Period / 2}, testFrames)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("BuildSequence() error = %v, want ErrInvalidConfig", err)
		}
	})
}

func TestBuildSequenceCancellation(t *testing.T) {
	m, f, mo := testFixtures(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BuildSequence(ctx, m, f, mo, testFrames)
	if err == nil {
		t.Error("BuildSequence() succeeded with a canceled context")
	}
}

func BenchmarkRenderFrame(b *testing.B) {
	p, err := mask.NewProvider(mask.ModeShape, mask.Params{Shape: "circle"})
	if err != nil {
		b.Fatal(err)
	}
	res, err := p.Generate(testW, testH, engine.NewStream("bench", "mask"))
	if err != nil {
		b.Fatal(err)
	}
	field, err := noise.Generate(noise.Config{
		Width: testW, Height: testH, Period: testH, Block: 2, Density: 0.5, Texture: noise.TextureBlock,
	}, engine.NewStream("bench", "noise"))
	if err != nil {
		b.Fatal(err)
	}
	mo := Motion{Speed: testSpeed, Period: testH}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		RenderFrame(res.Mask, field, mo, i)
	}
}
