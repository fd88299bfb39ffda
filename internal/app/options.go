package service

import (
	"time"

	"github.com/okian/scorecard/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDBPath sets the SQLite database location.
func WithDBPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dbPath = path
		}
	}
}

// WithWAL enables write-ahead logging on the database.
func WithWAL(enabled bool) Option {
	return func(s *Service) {
		s.dbWAL = enabled
	}
}

// WithWorkerCount sets the number of ingestion workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the behavior event queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxPageLimit caps page sizes of list operations.
func WithMaxPageLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.maxPageLimit = limit
		}
	}
}

// WithScoreCacheTTL sets how long a computed score is reused.
func WithScoreCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl >= 0 {
			s.scoreTTL = ttl
		}
	}
}

// WithHeatmapGridSize sets the heatmap resolution.
func WithHeatmapGridSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.gridSize = n
		}
	}
}

// WithSessionFlowLimit caps the session flows in behavior reports.
func WithSessionFlowLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.flowLimit = n
		}
	}
}

// WithAgedDeals sets the forecast aged-deal threshold and discounts.
func WithAgedDeals(after time.Duration, confidenceDiscount, dealDiscount float64) Option {
	return func(s *Service) {
		if after > 0 {
			s.agedAfter = after
		}
		s.confidenceDiscount = confidenceDiscount
		s.dealDiscount = dealDiscount
	}
}

// WithFreemailDomains sets the domains that earn no lead email points.
func WithFreemailDomains(domains []string) Option {
	return func(s *Service) {
		if len(domains) > 0 {
			s.freemail = domains
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
