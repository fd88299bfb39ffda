package loadgen

import "time"

// HTTP status code constants.
const (
	StatusOK              = 200
	StatusAccepted        = 202
	StatusTooManyRequests = 429
)

// Submission constants.
const (
	WorkerChannelMultiplier = 2
	MaxSubmitAttempts       = 5
	RetryBackoff            = 50 * time.Millisecond
)

// Runner constants.
const (
	DefaultSettle        = 30 * time.Second
	DefaultPollInterval  = 250 * time.Millisecond
	PercentageMultiplier = 100
)

// Synthetic viewport.
const (
	viewportWidth  = 1280.0
	viewportHeight = 800.0
)
