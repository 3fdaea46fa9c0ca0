package metrics

import "errors"

// Sentinel kinds for metrics configuration errors.
var (
	ErrInvalidShiftBounds = errors.New("metrics: invalid shift bounds")
	ErrInvalidThreshold   = errors.New("metrics: invalid threshold")
)
