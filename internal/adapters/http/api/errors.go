package api

import (
	"errors"
	"fmt"

	"github.com/okian/scorecard/internal/domain/types"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrBackpressure = types.ErrBackpressure
)

// WrapKind tags err with the operation and error kind.
func WrapKind(op string, kind, err error) error {
	if err == nil {
		return NewKind(op, kind)
	}
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// NewKind reports kind for op.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// classify maps an error kind to an HTTP status and response code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, types.ErrInvalidInput):
		return statusBadRequest, "bad_request"
	case errors.Is(err, types.ErrNotFound):
		return statusNotFound, "not_found"
	case errors.Is(err, types.ErrConflict):
		return statusConflict, "conflict"
	case errors.Is(err, types.ErrInvalidState):
		return statusConflict, "invalid_state"
	case errors.Is(err, ErrBackpressure):
		return statusTooManyRequests, "backpressure"
	default:
		return statusInternalError, "internal_error"
	}
}
