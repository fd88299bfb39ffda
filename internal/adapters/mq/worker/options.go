// Package worker drains the behavior event queue into storage.
package worker

import (
	"github.com/okian/scorecard/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithFailureHook registers a callback invoked when an event cannot be
// persisted, e.g. to release its idempotency key.
func WithFailureHook(fn FailureHook) Option {
	return func(w *InMemoryWorker) {
		w.onFailure = fn
	}
}
