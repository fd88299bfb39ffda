// Package service orchestrates the scoring, A/B testing, forecasting and
// analytics use cases on top of the SQLite store.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	eventqueue "github.com/okian/scorecard/internal/adapters/mq/queue"
	workerpool "github.com/okian/scorecard/internal/adapters/mq/worker"
	"github.com/okian/scorecard/internal/adapters/repository"
	"github.com/okian/scorecard/internal/domain/dedupe"
	"github.com/okian/scorecard/internal/domain/forecast"
	"github.com/okian/scorecard/internal/domain/scoring"
	"github.com/okian/scorecard/internal/domain/types"
	"github.com/okian/scorecard/pkg/logger"
	"github.com/okian/scorecard/pkg/metrics"
)

// Service implements the API dependencies.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      *repository.Store
	deduper    dedupe.Deduper
	eventQueue eventqueue.Queue
	workerPool *workerpool.Pool
	engine     *scoring.Engine
	forecaster *forecast.Forecaster

	// Configuration
	dbPath             string
	dbWAL              bool
	workerCount        int
	queueSize          int
	dedupeSize         int
	maxPageLimit       int
	scoreTTL           time.Duration
	gridSize           int
	flowLimit          int
	agedAfter          time.Duration
	confidenceDiscount float64
	dealDiscount       float64
	freemail           []string
	now                func() time.Time

	// State
	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dbPath:             ":memory:",
		workerCount:        runtime.NumCPU(),
		queueSize:          10_000,
		dedupeSize:         50_000,
		maxPageLimit:       100,
		scoreTTL:           24 * time.Hour,
		gridSize:           50,
		flowLimit:          100,
		agedAfter:          forecast.DefaultAgedAfter,
		confidenceDiscount: forecast.DefaultConfidenceDiscount,
		dealDiscount:       forecast.DefaultDealDiscount,
		now:                time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	engineOpts := []scoring.Option{scoring.WithClock(s.now)}
	if len(s.freemail) > 0 {
		engineOpts = append(engineOpts, scoring.WithFreemailDomains(s.freemail))
	}
	s.engine = scoring.NewEngine(engineOpts...)
	s.forecaster = forecast.New(
		forecast.WithClock(s.now),
		forecast.WithAgedAfter(s.agedAfter),
		forecast.WithDiscounts(s.confidenceDiscount, s.dealDiscount),
	)
	return s
}

// Start opens the store and starts the ingestion workers. The workers outlive
// ctx; Stop ends them.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.logger.Info(ctx, "starting scorecard service...")

	store, err := repository.Open(ctx, s.dbPath, repository.WithWAL(s.dbWAL))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	s.store = store
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.eventQueue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.workerPool = workerpool.NewPool(s.workerCount, s.eventQueue, store,
		workerpool.WithFailureHook(s.forgetEvent))
	s.workerPool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "scorecard service started",
		logger.String("db", s.dbPath),
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop drains the queue, stops the workers and closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping scorecard service...")

	if err := s.workerPool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}
	s.cancel()
	if err := s.store.Close(); err != nil {
		s.logger.Error(ctx, "close store", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "scorecard service stopped")
}

// backend returns the store once the service is started.
func (s *Service) backend() (*repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// Ping reports whether the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	store, err := s.backend()
	if err != nil {
		return err
	}
	return store.Ping(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		queueLen := s.eventQueue.Len(ctx)
		ranked := s.store.RankedCount()

		stats["queueLength"] = queueLen
		stats["rankedEntities"] = ranked
		stats["eventsRecorded"] = s.workerPool.Processed()
		stats["dedupeEntries"] = s.deduper.Size()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateRankedEntities(ranked)
	}
	return stats
}

// page normalizes 1-based page/limit against the configured cap.
func (s *Service) page(page, limit, defaultLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > s.maxPageLimit {
		limit = s.maxPageLimit
	}
	return page, limit
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", types.ErrInvalidInput, fmt.Sprintf(format, args...))
}
