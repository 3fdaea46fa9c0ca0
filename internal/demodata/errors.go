package demodata

import "errors"

// ErrInvalidConfig is returned by Generate for unusable configurations.
var ErrInvalidConfig = errors.New("invalid demo data config")
