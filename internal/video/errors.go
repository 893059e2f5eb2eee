package video

import "errors"

var (
	// ErrUnavailable reports a missing encoder backend.
	ErrUnavailable = errors.New("encoder backend unavailable")
	// ErrEncoding reports a failed encode or mux.
	ErrEncoding = errors.New("video encoding failed")
)
