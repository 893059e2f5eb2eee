package noise

import "errors"

var (
	ErrInvalidParams = errors.New("invalid noise parameters")
)
