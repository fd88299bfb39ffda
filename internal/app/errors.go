package service

import (
	"errors"
	"fmt"

	"github.com/okian/scorecard/internal/domain/types"
)

// Sentinel errors of the service layer. Input and state violations are
// reported with the shared kinds in the types package.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrBackpressure = fmt.Errorf("%w: event queue is full", types.ErrBackpressure)
)
