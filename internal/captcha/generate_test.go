package captcha

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"testing"

	"github.com/timeblind/timeblind-go/internal/mask"
	"github.com/timeblind/timeblind-go/internal/noise"
)

func requireFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not available, skipping end-to-end test")
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"odd width", func(c *Config) { c.Width = 641 }},
		{"negative height", func(c *Config) { c.Height = -2 }},
		{"negative fps", func(c *Config) { c.FPS = -1 }},
		{"negative duration", func(c *Config) { c.Duration = -1 }},
		{"negative speed", func(c *Config) { c.Speed = -1 }},
		{"density above one", func(c *Config) { c.NoiseDensity = 2 }},
		{"negative block", func(c *Config) { c.NoiseBlock = -1 }},
		{"unknown texture", func(c *Config) { c.Texture = "velvet" }},
		// 1 px over 96 frames is not a whole number of 360-row cycles, so
		// the clip could not loop seamlessly.
		{"broken loop", func(c *Config) { c.Duration = 4.0; c.Speed = 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := TierConfig(TierMedium)
			tt.mutate(&cfg)
			req := Request{Mode: mask.ModeShape, Config: &cfg, Params: mask.Params{Shape: "circle"}}
			_, err := Generate(context.Background(), req)
			if !errors.Is(err, ErrInvalidParams) {
				t.Errorf("Generate() error = %v, want ErrInvalidParams", err)
			}
		})
	}
}

func TestTierPresets(t *testing.T) {
	for _, tier := range []Tier{TierEasy, TierMedium, TierHard} {
		t.Run(string(tier), func(t *testing.T) {
			cfg := TierConfig(tier)
			if err := cfg.Validate(); err != nil {
				t.Errorf("Tier %s preset invalid: %v", tier, err)
			}
		})
	}

	// Unknown tiers resolve to a usable preset rather than failing.
	if err := TierConfig(Tier("nightmare")).Validate(); err != nil {
		t.Errorf("Unknown tier preset invalid: %v", err)
	}
}

func TestGenerateShapeEndToEnd(t *testing.T) {
	requireFFmpeg(t)

	ch, err := Generate(context.Background(), Request{
		Mode:   mask.ModeShape,
		Seed:   "e2e-shape",
		Params: mask.Params{Shape: "circle"},
	})
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	if ch.Answer != "circle" {
		t.Errorf("Answer = %q, want \"circle\"", ch.Answer)
	}
	if len(ch.Video) == 0 {
		t.Fatal("Generate() returned an empty video artifact")
	}
	if ch.FrameCount != 72 {
		t.Errorf("FrameCount = %d, want 72 at 24 fps over 3 s", ch.FrameCount)
	}
	if !bytes.Equal(ch.Video[4:8], []byte("ftyp")) {
		t.Error("Artifact is not an MP4 container")
	}

	assertDecodableFrames(t, ch.Video, ch.FrameCount)
}

// assertDecodableFrames decodes the artifact with ffprobe when available
// and checks the exact frame count.
func assertDecodableFrames(t *testing.T, video []byte, want int) {
	t.Helper()
	ffprobe, err := exec.LookPath("ffprobe")
	if err != nil {
		t.Log("ffprobe not available, skipping frame count check")
		return
	}

	tmp, err := os.CreateTemp(t.TempDir(), "artifact-*.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tmp.Write(video); err != nil {
		t.Fatal(err)
	}
	if err := tmp.Close(); err != nil {
		t.Fatal(err)
	}

	out, err := exec.Command(ffprobe,
		"-v", "error",
		"-count_frames",
		"-select_streams", "v:0",
		"-show_entries", "stream=nb_read_frames",
		"-of", "default=nokey=1:noprint_wrappers=1",
		tmp.Name(),
	).Output()
	if err != nil {
		t.Fatalf("ffprobe failed: %v", err)
	}

	got, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		t.Fatalf("parsing ffprobe output %q: %v", out, err)
	}
	if got != want {
		t.Errorf("Artifact decodes into %d frames, want %d", got, want)
	}
}

func TestGenerateDeterministicAnswer(t *testing.T) {
	requireFFmpeg(t)

	req := Request{Mode: mask.ModeText, Seed: "fixed-seed"}
	ch1, err := Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	ch2, err := Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if ch1.Answer != ch2.Answer {
		t.Errorf("Same seed produced different answers: %q != %q", ch1.Answer, ch2.Answer)
	}
}

func TestGenerateDepthAreaBand(t *testing.T) {
	requireFFmpeg(t)

	// A full vertical ramp: [0.2, 0.8] selects about 60% of rows, just past
	// the usable band, while [0.3, 0.7] lands inside it.
	img := image.NewGray(image.Rect(0, 0, 640, 360))
	for y := 0; y < 360; y++ {
		v := uint8(y * 255 / 359)
		for x := 0; x < 640; x++ {
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	ch, err := Generate(context.Background(), Request{
		Mode: mask.ModeDepth,
		Seed: "depth-e2e",
		Params: mask.Params{
			DepthImage:    buf.Bytes(),
			ThresholdLow:  0.3,
			ThresholdHigh: 0.7,
		},
	})
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if ch.Answer != "object" {
		t.Errorf("Answer = %q, want \"object\"", ch.Answer)
	}
	if len(ch.Video) == 0 {
		t.Error("Generate() returned an empty video artifact")
	}
}

func TestGenerateDepthFallbackPath(t *testing.T) {
	// A corrupted depth image fails with a recoverable decode error before
	// any frame work; the caller may then retry with text mode.
	_, err := Generate(context.Background(), Request{
		Mode: mask.ModeDepth,
		Params: mask.Params{
			DepthImage:    []byte("definitely not an image"),
			ThresholdLow:  0.2,
			ThresholdHigh: 0.8,
		},
	})
	if !errors.Is(err, mask.ErrDecode) {
		t.Fatalf("Generate() error = %v, want ErrDecode", err)
	}
	if !Recoverable(err) {
		t.Error("Decode failure should be recoverable")
	}

	requireFFmpeg(t)
	ch, err := Generate(context.Background(), Request{Mode: mask.ModeText, Seed: "fallback"})
	if err != nil {
		t.Fatalf("Text mode retry failed: %v", err)
	}
	if len(ch.Video) == 0 {
		t.Error("Text mode retry returned an empty artifact")
	}
}

func TestGeneratePlasmaTexture(t *testing.T) {
	requireFFmpeg(t)

	cfg := TierConfig(TierMedium)
	cfg.Texture = noise.TexturePlasma
	ch, err := Generate(context.Background(), Request{
		Mode:   mask.ModeShape,
		Config: &cfg,
		Seed:   "plasma",
		Params: mask.Params{Shape: "triangle"},
	})
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if len(ch.Video) == 0 {
		t.Error("Generate() returned an empty artifact")
	}
}

func TestRecoverableClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"degenerate mask", mask.ErrDegenerateMask, true},
		{"decode failure", mask.ErrDecode, true},
		{"invalid params", ErrInvalidParams, false},
		{"random error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Recoverable(tt.err); got != tt.want {
				t.Errorf("Recoverable(%v) = %t, want %t", tt.err, got, tt.want)
			}
		})
	}
}
