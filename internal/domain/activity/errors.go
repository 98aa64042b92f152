package activity

import "errors"

// ErrInvalidInput indicates a missing or malformed history entry.
var ErrInvalidInput = errors.New("invalid activity input")
