package service

import (
	"errors"

	"github.com/okian/prodboard/internal/domain/normalize"
)

// Sentinel kinds for service errors.
var (
	// ErrNoData means the selection resolved to no machine store at all.
	ErrNoData = normalize.ErrNoData
	// ErrInvalidQuery means the query cannot be evaluated as given.
	ErrInvalidQuery = errors.New("invalid query")
)
