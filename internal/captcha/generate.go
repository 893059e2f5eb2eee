// Package captcha assembles the time-encoded challenge pipeline: mask and
// noise construction, temporal compositing, sequence assembly, and video
// encoding. Information is hidden in the time derivative of the noise, not
// in any single frame.
package captcha

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/timeblind/timeblind-go/internal/compose"
	"github.com/timeblind/timeblind-go/internal/engine"
	"github.com/timeblind/timeblind-go/internal/mask"
	"github.com/timeblind/timeblind-go/internal/noise"
	"github.com/timeblind/timeblind-go/internal/video"
)

// Request describes one challenge to generate.
type Request struct {
	Mode mask.Mode
	// Tier selects a difficulty preset; Config overrides it when non-nil.
	Tier   Tier
	Config *Config
	// Seed makes generation deterministic. Empty draws a random seed.
	Seed   string
	Params mask.Params
}

// Challenge is the finished artifact handed to the serving layer. The core
// owns no identifiers, expiry, or attempt budget.
type Challenge struct {
	Video      []byte
	Answer     string
	Hint       string
	Mode       mask.Mode
	Seed       string
	FrameCount int
	Config     Config
}

// Generate produces a challenge. All validation happens before any mask,
// noise, or frame work; two concurrent calls share nothing.
func Generate(ctx context.Context, req Request) (*Challenge, error) {
	cfg := TierConfig(req.Tier)
	if req.Config != nil {
		cfg = req.Config.Resolve()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Provider construction validates mode params up front.
	provider, err := mask.NewProvider(req.Mode, req.Params)
	if err != nil {
		return nil, err
	}

	frames := compose.FrameCount(cfg.FPS, cfg.Duration)
	period, err := compose.LoopPeriod(cfg.Speed, frames, cfg.Height)
	if err != nil {
		return nil, err
	}

	seed := req.Seed
	if seed == "" {
		seed = randomSeed()
	}

	mres, err := provider.Generate(cfg.Width, cfg.Height, engine.NewStream(seed, "mask"))
	if err != nil {
		return nil, err
	}

	field, err := noise.Generate(noise.Config{
		Width:   cfg.Width,
		Height:  cfg.Height,
		Period:  period,
		Block:   cfg.NoiseBlock,
		Density: cfg.NoiseDensity,
		Texture: cfg.Texture,
	}, engine.NewStream(seed, "noise"))
	if err != nil {
		return nil, err
	}

	seq, err := compose.BuildSequence(ctx, mres.Mask, field, compose.Motion{Speed: cfg.Speed, Period: period}, frames)
	if err != nil {
		return nil, err
	}

	vcfg := video.DefaultConfig(cfg.FPS)
	vcfg.FFmpegPath = cfg.FFmpegPath
	artifact, err := video.Encode(ctx, seq, vcfg)
	if err != nil {
		return nil, err
	}

	return &Challenge{
		Video:      artifact,
		Answer:     mres.Answer,
		Hint:       mres.Hint,
		Mode:       req.Mode,
		Seed:       seed,
		FrameCount: frames,
		Config:     cfg,
	}, nil
}

func randomSeed() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failure is unrecoverable at this layer.
		panic(fmt.Sprintf("captcha: reading random seed: %v", err))
	}
	return hex.EncodeToString(b[:])
}
