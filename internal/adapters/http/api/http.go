// Package api exposes the scoring, CRM, experiment, forecast and analytics
// operations over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/scorecard/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ScoringDependencies
	CRMDependencies
	ABTestDependencies
	ForecastDependencies
	AnalyticsDependencies
	HealthDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	scoringHandler   *ScoringHandler
	crmHandler       *CRMHandler
	abTestHandler    *ABTestHandler
	forecastHandler  *ForecastHandler
	analyticsHandler *AnalyticsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(deps),
		statsHandler:     NewStatsHandler(deps),
		scoringHandler:   NewScoringHandler(deps),
		crmHandler:       NewCRMHandler(deps),
		abTestHandler:    NewABTestHandler(deps),
		forecastHandler:  NewForecastHandler(deps),
		analyticsHandler: NewAnalyticsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	route := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, MetricsMiddleware(h, endpoint))
	}

	route("GET /healthz", "healthz", s.healthHandler.HandleHealth)
	mux.Handle("GET /metrics", s.healthHandler.MetricsHandler())
	route("GET /stats", "stats", s.statsHandler.HandleStats)

	route("POST /api/scoring", "scoring", s.scoringHandler.HandleScore)
	route("GET /api/scoring", "scoring", s.scoringHandler.HandleList)

	route("POST /api/leads", "leads", s.crmHandler.HandleCreateLead)
	route("GET /api/leads/{id}", "leads", s.crmHandler.HandleGetLead)
	route("POST /api/contacts", "contacts", s.crmHandler.HandleCreateContact)
	route("GET /api/contacts/{id}", "contacts", s.crmHandler.HandleGetContact)
	route("POST /api/contacts/{id}/interactions", "interactions", s.crmHandler.HandleAddInteraction)
	route("POST /api/deals", "deals", s.crmHandler.HandleCreateDeal)
	route("GET /api/deals/{id}", "deals", s.crmHandler.HandleGetDeal)

	route("GET /api/ab-tests", "ab_tests", s.abTestHandler.HandleList)
	route("POST /api/ab-tests", "ab_tests", s.abTestHandler.HandleCreate)
	route("GET /api/ab-tests/{id}", "ab_tests", s.abTestHandler.HandleGet)
	route("POST /api/ab-tests/{id}/start", "ab_tests_start", s.abTestHandler.HandleStart)
	route("POST /api/ab-tests/{id}/impression", "ab_tests_impression", s.abTestHandler.HandleImpression)
	route("POST /api/ab-tests/{id}/track", "ab_tests_track", s.abTestHandler.HandleTrack)
	route("POST /api/ab-tests/{id}/complete", "ab_tests_complete", s.abTestHandler.HandleComplete)

	route("GET /api/sales-forecast", "sales_forecast", s.forecastHandler.HandleList)
	route("POST /api/sales-forecast", "sales_forecast", s.forecastHandler.HandleGenerate)

	route("POST /api/analytics/events", "analytics_events", s.analyticsHandler.HandlePostEvent)
	route("GET /api/analytics", "analytics", s.analyticsHandler.HandleReport)
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure reports err with the status of its kind. Internal errors are
// logged and answered without detail.
func writeFailure(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, code := classify(err)
	if status >= statusInternalError {
		logger.Get().Named("api").Error(r.Context(), "request failed",
			logger.String("op", op),
			logger.String("path", r.URL.Path),
			logger.Error(err))
		writeError(w, status, code, nil)
		return
	}
	writeError(w, status, code, NewKind(op, err))
}
