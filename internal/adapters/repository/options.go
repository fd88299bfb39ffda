// Package repository persists CRM entities, A/B tests, behavior events,
// forecasts and scores in SQLite, and keeps an in-memory score ranking.
package repository

import "github.com/okian/scorecard/pkg/logger"

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithBusyTimeout sets how long SQLite waits on a locked database, in ms.
func WithBusyTimeout(ms int) Option {
	return func(s *Store) {
		if ms > 0 {
			s.busyTimeoutMS = ms
		}
	}
}

// WithWAL enables write-ahead logging for file databases.
func WithWAL(enabled bool) Option {
	return func(s *Store) {
		s.wal = enabled
	}
}

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}
