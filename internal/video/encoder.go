// Package video serializes rendered frame sequences into a browser-playable
// MP4 artifact using an ffmpeg subprocess.
package video

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"

	"go.uber.org/multierr"

	"github.com/timeblind/timeblind-go/internal/compose"
)

// Config controls the encode.
type Config struct {
	// FPS is the playback frame rate.
	FPS int
	// Codecs is the preference order of video codecs to try. Later entries
	// are fallbacks for ffmpeg builds missing the earlier ones.
	Codecs []string
	// PixelFormat is the output pixel format.
	PixelFormat string
	// FFmpegPath overrides the binary looked up on PATH.
	FFmpegPath string
}

// DefaultConfig returns browser-compatible encode settings: H.264 with an
// MPEG-4 Part 2 fallback, yuv420p for broad decoder support.
func DefaultConfig(fps int) Config {
	return Config{
		FPS:         fps,
		Codecs:      []string{"libx264", "mpeg4"},
		PixelFormat: "yuv420p",
	}
}

// Encode serializes the ordered frame sequence into MP4 bytes. The staging
// file is removed on every exit path.
func Encode(ctx context.Context, frames []*compose.Frame, cfg Config) ([]byte, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: no frames to encode", ErrEncoding)
	}
	w, h := frames[0].Width, frames[0].Height
	for i, fr := range frames {
		if fr.Width != w || fr.Height != h {
			return nil, fmt.Errorf("%w: frame %d is %dx%d, expected %dx%d", ErrEncoding, i, fr.Width, fr.Height, w, h)
		}
	}
	if cfg.FPS <= 0 {
		return nil, fmt.Errorf("%w: fps %d must be positive", ErrEncoding, cfg.FPS)
	}
	if len(cfg.Codecs) == 0 {
		return nil, fmt.Errorf("%w: no codec configured", ErrEncoding)
	}

	ffmpeg := cfg.FFmpegPath
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	path, err := exec.LookPath(ffmpeg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s not found", ErrUnavailable, ffmpeg)
	}

	// Codecs are fallbacks for each other; only a full sweep is a failure,
	// and then the caller gets every per-codec error joined.
	var errs error
	for _, codec := range cfg.Codecs {
		out, err := encodeOnce(ctx, path, codec, frames, cfg)
		if err == nil {
			return out, nil
		}
		errs = multierr.Append(errs, err)
	}
	return nil, errs
}

// encodeOnce runs one ffmpeg invocation: raw grayscale frames on stdin, MP4
// staged in a scoped temp file so +faststart can rewrite the header.
func encodeOnce(ctx context.Context, ffmpeg, codec string, frames []*compose.Frame, cfg Config) (out []byte, err error) {
	tmp, err := os.CreateTemp("", "timeblind-*.mp4")
	if err != nil {
		return nil, fmt.Errorf("%w: staging file: %v", ErrEncoding, err)
	}
	tmpPath := tmp.Name()
	// The temp file is released regardless of outcome; a failed removal is
	// surfaced alongside the encode result rather than swallowed.
	defer func() {
		err = multierr.Append(err, os.Remove(tmpPath))
	}()
	if cerr := tmp.Close(); cerr != nil {
		return nil, fmt.Errorf("%w: staging file: %v", ErrEncoding, cerr)
	}

	w, h := frames[0].Width, frames[0].Height
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "gray",
		"-s", fmt.Sprintf("%dx%d", w, h),
		"-r", strconv.Itoa(cfg.FPS),
		"-i", "pipe:0",
		"-an",
		"-c:v", codec,
		"-pix_fmt", cfg.PixelFormat,
		"-movflags", "+faststart",
		"-f", "mp4",
		tmpPath,
	}

	cmd := exec.CommandContext(ctx, ffmpeg, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: starting ffmpeg: %v", ErrEncoding, err)
	}

	writeErr := writeFrames(stdin, frames)
	if cerr := stdin.Close(); writeErr == nil {
		writeErr = cerr
	}

	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("%w: ffmpeg codec=%s: %v: %s", ErrEncoding, codec, err, stderrTail(&stderr))
	}
	if writeErr != nil {
		return nil, fmt.Errorf("%w: feeding frames: %v", ErrEncoding, writeErr)
	}

	out, err = os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading artifact: %v", ErrEncoding, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: ffmpeg produced an empty artifact", ErrEncoding)
	}
	return out, nil
}

func writeFrames(w io.Writer, frames []*compose.Frame) error {
	for _, fr := range frames {
		if _, err := w.Write(fr.Pix); err != nil {
			return err
		}
	}
	return nil
}

// stderrTail keeps error messages bounded while preserving the part of
// ffmpeg output that names the actual failure.
func stderrTail(buf *bytes.Buffer) string {
	const max = 400
	s := buf.String()
	if len(s) > max {
		s = "..." + s[len(s)-max:]
	}
	return s
}
