package types

import "errors"

// Sentinel kinds shared by the repository, service and HTTP layers.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrInvalidInput = errors.New("invalid input")
	ErrBackpressure = errors.New("backpressure")
)
