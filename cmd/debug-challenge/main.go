// debug-challenge generates a single challenge to disk so the artifact can
// be inspected in a player, with an optional per-frame PNG dump.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"

	"github.com/timeblind/timeblind-go/internal/captcha"
	"github.com/timeblind/timeblind-go/internal/compose"
	"github.com/timeblind/timeblind-go/internal/engine"
	"github.com/timeblind/timeblind-go/internal/mask"
	"github.com/timeblind/timeblind-go/internal/noise"
)

func main() {
	modeName := flag.String("mode", "shape", "challenge mode: text, shape, depth")
	tier := flag.String("difficulty", "medium", "difficulty tier: easy, medium, hard")
	seed := flag.String("seed", "debug", "challenge seed")
	word := flag.String("word", "", "fixed word for text mode")
	shape := flag.String("shape", "", "fixed shape for shape mode")
	depthPath := flag.String("depth-image", "", "depth image file for depth mode")
	tl := flag.Float64("tl", 0.2, "depth threshold low")
	tu := flag.Float64("tu", 0.8, "depth threshold high")
	out := flag.String("out", "challenge.mp4", "output video path")
	dumpFrames := flag.String("dump-frames", "", "directory to write per-frame PNGs")
	flag.Parse()

	mode, err := mask.ParseMode(*modeName)
	if err != nil {
		log.Fatal(err)
	}

	req := captcha.Request{
		Mode: mode,
		Tier: captcha.Tier(*tier),
		Seed: *seed,
		Params: mask.Params{
			Word:          *word,
			Shape:         *shape,
			ThresholdLow:  *tl,
			ThresholdHigh: *tu,
		},
	}
	if *depthPath != "" {
		img, err := os.ReadFile(*depthPath)
		if err != nil {
			log.Fatalf("reading depth image: %v", err)
		}
		req.Params.DepthImage = img
	}

	ch, err := captcha.Generate(context.Background(), req)
	if err != nil {
		log.Fatalf("generate: %v", err)
	}

	if err := os.WriteFile(*out, ch.Video, 0o644); err != nil {
		log.Fatalf("writing %s: %v", *out, err)
	}

	fmt.Printf("mode:    %s\n", ch.Mode)
	fmt.Printf("answer:  %s\n", ch.Answer)
	fmt.Printf("hint:    %s\n", ch.Hint)
	fmt.Printf("seed:    %s\n", ch.Seed)
	fmt.Printf("frames:  %d @ %d fps\n", ch.FrameCount, ch.Config.FPS)
	fmt.Printf("video:   %s (%d bytes)\n", *out, len(ch.Video))

	if *dumpFrames != "" {
		if err := dumpFrameSequence(ch, *dumpFrames, req); err != nil {
			log.Fatalf("dumping frames: %v", err)
		}
		fmt.Printf("frames dumped to %s\n", *dumpFrames)
	}
}

// dumpFrameSequence re-renders the sequence (generation is deterministic
// under the seed) and writes each frame as a PNG.
func dumpFrameSequence(ch *captcha.Challenge, dir string, req captcha.Request) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	provider, err := mask.NewProvider(req.Mode, req.Params)
	if err != nil {
		return err
	}
	mres, err := provider.Generate(ch.Config.Width, ch.Config.Height, engine.NewStream(ch.Seed, "mask"))
	if err != nil {
		return err
	}
	period, err := compose.LoopPeriod(ch.Config.Speed, ch.FrameCount, ch.Config.Height)
	if err != nil {
		return err
	}
	field, err := noise.Generate(noise.Config{
		Width:   ch.Config.Width,
		Height:  ch.Config.Height,
		Period:  period,
		Block:   ch.Config.NoiseBlock,
		Density: ch.Config.NoiseDensity,
		Texture: ch.Config.Texture,
	}, engine.NewStream(ch.Seed, "noise"))
	if err != nil {
		return err
	}

	motion := compose.Motion{Speed: ch.Config.Speed, Period: period}
	for t := 0; t < ch.FrameCount; t++ {
		fr := compose.RenderFrame(mres.Mask, field, motion, t)
		img := &image.Gray{Pix: fr.Pix, Stride: fr.Width, Rect: image.Rect(0, 0, fr.Width, fr.Height)}
		f, err := os.Create(filepath.Join(dir, fmt.Sprintf("frame_%03d.png", t)))
		if err != nil {
			return err
		}
		if err := png.Encode(f, img); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
