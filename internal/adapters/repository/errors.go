package repository

import (
	"errors"

	"github.com/okian/scorecard/internal/domain/types"
)

// Sentinel kinds for storage errors. ErrNotFound and ErrConflict alias the
// shared kinds so callers can match them without importing this package.
var (
	ErrNotFound     = types.ErrNotFound
	ErrConflict     = types.ErrConflict
	ErrInvalidLimit = errors.New("invalid limit")
	ErrClosed       = errors.New("store closed")
)
