package api

import (
	"context"
	"net/http"

	service "github.com/okian/scorecard/internal/app"
	"github.com/okian/scorecard/internal/domain/model"
	"github.com/okian/scorecard/internal/domain/types"
)

// ABTestDependencies drives the A/B test lifecycle.
type ABTestDependencies interface {
	CreateABTest(ctx context.Context, in service.NewABTest) (model.ABTest, error)
	GetABTest(ctx context.Context, id string) (service.ABTestView, error)
	ListABTests(ctx context.Context, q service.ABTestQuery) ([]service.ABTestView, types.Pagination, error)
	StartABTest(ctx context.Context, id string) (model.ABTest, error)
	TrackImpression(ctx context.Context, id, variant string) (model.ABTest, error)
	TrackConversion(ctx context.Context, id, variant, sessionID string) (model.ABTest, bool, error)
	CompleteABTest(ctx context.Context, id string) (service.Completion, error)
}

// ABTestHandler handles /api/ab-tests.
type ABTestHandler struct {
	deps ABTestDependencies
}

// NewABTestHandler creates a new A/B test handler.
func NewABTestHandler(deps ABTestDependencies) *ABTestHandler {
	return &ABTestHandler{deps: deps}
}

type abTestRequest struct {
	Name         string `json:"name" validate:"required"`
	PageID       string `json:"pageId" validate:"required"`
	VariantA     string `json:"variantA" validate:"required"`
	VariantB     string `json:"variantB" validate:"required"`
	TrafficSplit int    `json:"trafficSplit" validate:"omitempty,min=1,max=99"`
	CreatedBy    string `json:"createdBy"`
}

type impressionRequest struct {
	Variant string `json:"variant" validate:"required,oneof=A B"`
}

type trackRequest struct {
	Variant   string `json:"variant" validate:"required,oneof=A B"`
	SessionID string `json:"sessionId" validate:"required"`
}

type abTestListResponse struct {
	Tests      []service.ABTestView `json:"tests"`
	Pagination types.Pagination     `json:"pagination"`
}

type trackResponse struct {
	Test      model.ABTest `json:"test"`
	Duplicate bool         `json:"duplicate"`
}

// HandleList handles GET /api/ab-tests requests.
func (h *ABTestHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_ab_tests"
	q := service.ABTestQuery{
		Status: r.URL.Query().Get("status"),
		PageID: r.URL.Query().Get("pageId"),
	}
	var err error
	if q.Page, err = queryInt(r, "page"); err != nil {
		writeFailure(w, r, op, err)
		return
	}
	if q.Limit, err = queryInt(r, "limit"); err != nil {
		writeFailure(w, r, op, err)
		return
	}
	tests, p, err := h.deps.ListABTests(r.Context(), q)
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	if tests == nil {
		tests = []service.ABTestView{}
	}
	writeJSON(w, http.StatusOK, abTestListResponse{Tests: tests, Pagination: p})
}

// HandleCreate handles POST /api/ab-tests requests.
func (h *ABTestHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_ab_test"
	var req abTestRequest
	if err := decode(r, &req); err != nil {
		writeFailure(w, r, op, err)
		return
	}
	t, err := h.deps.CreateABTest(r.Context(), service.NewABTest(req))
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// HandleGet handles GET /api/ab-tests/{id} requests.
func (h *ABTestHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	v, err := h.deps.GetABTest(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, r, "api.get_ab_test", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleStart handles POST /api/ab-tests/{id}/start requests.
func (h *ABTestHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	t, err := h.deps.StartABTest(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, r, "api.start_ab_test", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// HandleImpression handles POST /api/ab-tests/{id}/impression requests.
func (h *ABTestHandler) HandleImpression(w http.ResponseWriter, r *http.Request) {
	const op = "api.ab_impression"
	var req impressionRequest
	if err := decode(r, &req); err != nil {
		writeFailure(w, r, op, err)
		return
	}
	t, err := h.deps.TrackImpression(r.Context(), r.PathValue("id"), req.Variant)
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// HandleTrack handles POST /api/ab-tests/{id}/track requests.
func (h *ABTestHandler) HandleTrack(w http.ResponseWriter, r *http.Request) {
	const op = "api.ab_track"
	var req trackRequest
	if err := decode(r, &req); err != nil {
		writeFailure(w, r, op, err)
		return
	}
	t, dup, err := h.deps.TrackConversion(r.Context(), r.PathValue("id"), req.Variant, req.SessionID)
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, trackResponse{Test: t, Duplicate: dup})
}

// HandleComplete handles POST /api/ab-tests/{id}/complete requests.
func (h *ABTestHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	c, err := h.deps.CompleteABTest(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, r, "api.complete_ab_test", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
