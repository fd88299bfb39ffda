package metrics

import "errors"

// ErrCollectorStopped is returned by CollectSystem once its context ends.
var ErrCollectorStopped = errors.New("metrics collector stopped")
