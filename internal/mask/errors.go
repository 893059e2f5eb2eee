package mask

import "errors"

var (
	// ErrInvalidParams covers out-of-range thresholds, unknown names, and
	// characters without glyph coverage.
	ErrInvalidParams = errors.New("invalid mask parameters")
	// ErrDegenerateMask reports a mask whose area is too sparse or too dense
	// to be solvable.
	ErrDegenerateMask = errors.New("degenerate mask")
	// ErrDecode reports an unparseable depth image.
	ErrDecode = errors.New("depth image decode failed")
)
