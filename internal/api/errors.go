package api

import (
	"errors"

	"github.com/timeblind/timeblind-go/internal/mask"
	"github.com/timeblind/timeblind-go/internal/video"
)

func isMaskDegenerate(err error) bool {
	return errors.Is(err, mask.ErrDegenerateMask)
}

func isDecodeError(err error) bool {
	return errors.Is(err, mask.ErrDecode)
}

func isEncoderUnavailable(err error) bool {
	return errors.Is(err, video.ErrUnavailable)
}
