package compose

import "errors"

var (
	ErrInvalidConfig = errors.New("invalid compositing configuration")
)
