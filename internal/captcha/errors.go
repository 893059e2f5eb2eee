package captcha

import (
	"errors"

	"github.com/timeblind/timeblind-go/internal/compose"
	"github.com/timeblind/timeblind-go/internal/mask"
	"github.com/timeblind/timeblind-go/internal/noise"
	"github.com/timeblind/timeblind-go/internal/video"
)

// ErrInvalidParams covers configuration problems caught before any frame
// work begins. Component packages carry their own sentinels; this package
// classifies them for callers.
var ErrInvalidParams = errors.New("invalid challenge parameters")

// InvalidParams reports whether err is a parameter validation failure from
// any stage of the pipeline.
func InvalidParams(err error) bool {
	return errors.Is(err, ErrInvalidParams) ||
		errors.Is(err, mask.ErrInvalidParams) ||
		errors.Is(err, noise.ErrInvalidParams) ||
		errors.Is(err, compose.ErrInvalidConfig)
}

// Recoverable reports whether the caller may retry with different inputs or
// another mode. Mask-side failures and a missing encoder backend are
// recoverable; an encode failure after frames were rendered is fatal for
// the request.
func Recoverable(err error) bool {
	return errors.Is(err, mask.ErrDegenerateMask) ||
		errors.Is(err, mask.ErrDecode) ||
		errors.Is(err, video.ErrUnavailable)
}
