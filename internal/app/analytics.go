package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/okian/scorecard/internal/adapters/repository"
	"github.com/okian/scorecard/internal/domain/behavior"
	"github.com/okian/scorecard/internal/domain/model"
	"github.com/okian/scorecard/pkg/logger"
	"github.com/okian/scorecard/pkg/metrics"
)

const (
	defaultPeriod     = "7d"
	heatmapEventLimit = 10000
)

// ReportQuery selects an analytics report.
type ReportQuery struct {
	Type   string
	PageID string
	Period string
}

// Report is one of behavior.HeatmapReport, behavior.FlowReport or
// behavior.Overview, tagged with its window.
type Report struct {
	Type   string    `json:"type"`
	Period string    `json:"period"`
	Since  time.Time `json:"since"`
	Data   any       `json:"data"`
}

// RecordBehavior accepts an event for asynchronous storage. It reports true
// when the event id was already seen. A full queue is ErrBackpressure.
func (s *Service) RecordBehavior(ctx context.Context, e model.BehaviorEvent) (model.BehaviorEvent, bool, error) { //nolint:gocritic // hugeParam
	if _, err := s.backend(); err != nil {
		return e, false, err
	}
	if e.SessionID == "" || e.PageID == "" || e.EventType == "" {
		return e, false, invalidInput("sessionId, pageId and eventType are required")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now().UTC()
	}

	if s.deduper.SeenAndRecord(ctx, e.ID) {
		metrics.RecordBehaviorDuplicate()
		s.logger.Debug(ctx, "duplicate behavior event", logger.String("event", e.ID))
		return e, true, nil
	}
	if !s.eventQueue.Enqueue(ctx, e) {
		s.deduper.Unrecord(ctx, e.ID)
		return e, false, ErrBackpressure
	}
	metrics.RecordBehaviorAccepted()
	return e, false, nil
}

// forgetEvent lets a failed event be submitted again.
func (s *Service) forgetEvent(ctx context.Context, e model.BehaviorEvent, err error) { //nolint:gocritic // hugeParam
	s.deduper.Unrecord(ctx, e.ID)
	s.logger.Warn(ctx, "behavior event dropped", logger.String("event", e.ID), logger.Error(err))
}

// Report aggregates stored behavior events of the period (7d, 30d or 90d,
// default 7d). Unknown types produce the overview. Heatmaps read at most
// heatmapEventLimit of the newest events.
func (s *Service) Report(ctx context.Context, q ReportQuery) (Report, error) {
	store, err := s.backend()
	if err != nil {
		return Report{}, err
	}
	if q.Period == "" {
		q.Period = defaultPeriod
	}
	since := behavior.Since(s.now().UTC(), q.Period)

	filter := repository.BehaviorFilter{PageID: q.PageID, Since: since}
	if q.Type == behavior.ReportHeatmap {
		filter.Limit = heatmapEventLimit
	}
	events, err := store.BehaviorEvents(ctx, filter)
	if err != nil {
		return Report{}, err
	}

	r := Report{Period: q.Period, Since: since}
	switch q.Type {
	case behavior.ReportHeatmap:
		r.Type, r.Data = behavior.ReportHeatmap, behavior.BuildHeatmap(events, s.gridSize)
	case behavior.ReportBehavior:
		r.Type, r.Data = behavior.ReportBehavior, behavior.BuildFlows(events, s.flowLimit)
	default:
		r.Type, r.Data = behavior.ReportOverview, behavior.BuildOverview(events)
	}
	return r, nil
}
