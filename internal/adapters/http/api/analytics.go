package api

import (
	"context"
	"net/http"
	"time"

	service "github.com/okian/scorecard/internal/app"
	"github.com/okian/scorecard/internal/domain/model"
)

// AnalyticsDependencies ingests behavior events and builds reports.
type AnalyticsDependencies interface {
	RecordBehavior(ctx context.Context, e model.BehaviorEvent) (model.BehaviorEvent, bool, error)
	Report(ctx context.Context, q service.ReportQuery) (service.Report, error)
}

// AnalyticsHandler handles /api/analytics.
type AnalyticsHandler struct {
	deps AnalyticsDependencies
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(deps AnalyticsDependencies) *AnalyticsHandler {
	return &AnalyticsHandler{deps: deps}
}

// eventRequest is one tracked visitor interaction. A missing id is generated
// and a missing timestamp means now.
type eventRequest struct {
	ID             string     `json:"id"`
	SessionID      string     `json:"sessionId" validate:"required"`
	PageID         string     `json:"pageId" validate:"required"`
	PageURL        string     `json:"pageUrl"`
	EventType      string     `json:"eventType" validate:"required"`
	Element        string     `json:"element"`
	PositionX      *float64   `json:"positionX" validate:"omitempty,gte=0"`
	PositionY      *float64   `json:"positionY" validate:"omitempty,gte=0"`
	ViewportWidth  *float64   `json:"viewportWidth" validate:"omitempty,gte=0"`
	ViewportHeight *float64   `json:"viewportHeight" validate:"omitempty,gte=0"`
	Timestamp      *time.Time `json:"timestamp"`
}

func (e *eventRequest) event() model.BehaviorEvent {
	return model.BehaviorEvent{
		ID:             e.ID,
		SessionID:      e.SessionID,
		PageID:         e.PageID,
		PageURL:        e.PageURL,
		EventType:      e.EventType,
		Element:        e.Element,
		PositionX:      e.PositionX,
		PositionY:      e.PositionY,
		ViewportWidth:  e.ViewportWidth,
		ViewportHeight: e.ViewportHeight,
		Timestamp:      deref(e.Timestamp),
	}
}

type eventAck struct {
	ackResponse
	ID string `json:"id"`
}

// HandlePostEvent handles POST /api/analytics/events requests.
func (h *AnalyticsHandler) HandlePostEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_event"
	var req eventRequest
	if err := decode(r, &req); err != nil {
		writeFailure(w, r, op, err)
		return
	}
	e, dup, err := h.deps.RecordBehavior(r.Context(), req.event())
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	if dup {
		writeJSON(w, http.StatusOK, eventAck{ackResponse{Status: "duplicate", Duplicate: true}, e.ID})
		return
	}
	writeJSON(w, http.StatusAccepted, eventAck{ackResponse{Status: "accepted"}, e.ID})
}

// HandleReport handles GET /api/analytics requests.
func (h *AnalyticsHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	const op = "api.report"
	q := r.URL.Query()
	rep, err := h.deps.Report(r.Context(), service.ReportQuery{
		Type:   q.Get("type"),
		PageID: q.Get("pageId"),
		Period: q.Get("period"),
	})
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
