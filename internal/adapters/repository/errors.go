package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound       = errors.New("machine store not found")
	ErrInvalidMachine = errors.New("invalid machine name")
	ErrInvalidTable   = errors.New("invalid table name")
	ErrUnknownFormat  = errors.New("unknown store format")
	ErrMalformed      = errors.New("malformed store file")
)
