package api

import (
	"context"
	"net/http"

	"github.com/okian/scorecard/internal/adapters/repository"
	service "github.com/okian/scorecard/internal/app"
	"github.com/okian/scorecard/internal/domain/model"
	"github.com/okian/scorecard/internal/domain/types"
)

// ScoringDependencies computes and lists entity scores.
type ScoringDependencies interface {
	ScoreEntity(ctx context.Context, ref service.EntityRef, force bool) (service.ScoreOutcome, error)
	ListScores(ctx context.Context, q service.ScoreQuery) ([]repository.Ranked, types.Pagination, error)
}

// ScoringHandler handles /api/scoring.
type ScoringHandler struct {
	deps ScoringDependencies
}

// NewScoringHandler creates a new scoring handler.
func NewScoringHandler(deps ScoringDependencies) *ScoringHandler {
	return &ScoringHandler{deps: deps}
}

// scoreRequest names exactly one entity.
type scoreRequest struct {
	LeadID           string `json:"leadId" validate:"required_without_all=ContactID DealID,excluded_with=ContactID DealID"`
	ContactID        string `json:"contactId" validate:"excluded_with=DealID"`
	DealID           string `json:"dealId"`
	ForceRecalculate bool   `json:"forceRecalculate"`
}

func (r scoreRequest) ref() service.EntityRef {
	switch {
	case r.LeadID != "":
		return service.EntityRef{Type: model.EntityLead, ID: r.LeadID}
	case r.ContactID != "":
		return service.EntityRef{Type: model.EntityContact, ID: r.ContactID}
	default:
		return service.EntityRef{Type: model.EntityDeal, ID: r.DealID}
	}
}

type scoreListResponse struct {
	Scores     []repository.Ranked `json:"scores"`
	Pagination types.Pagination    `json:"pagination"`
}

// HandleScore handles POST /api/scoring requests.
func (h *ScoringHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.score"
	var req scoreRequest
	if err := decode(r, &req); err != nil {
		writeFailure(w, r, op, err)
		return
	}
	out, err := h.deps.ScoreEntity(r.Context(), req.ref(), req.ForceRecalculate)
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleList handles GET /api/scoring requests.
func (h *ScoringHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_scores"
	q := service.ScoreQuery{EntityType: r.URL.Query().Get("entityType")}
	var err error
	if q.Page, err = queryInt(r, "page"); err != nil {
		writeFailure(w, r, op, err)
		return
	}
	if q.Limit, err = queryInt(r, "limit"); err != nil {
		writeFailure(w, r, op, err)
		return
	}
	if q.MinScore, err = queryInt(r, "minScore"); err != nil {
		writeFailure(w, r, op, err)
		return
	}

	scores, p, err := h.deps.ListScores(r.Context(), q)
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	if scores == nil {
		scores = []repository.Ranked{}
	}
	writeJSON(w, http.StatusOK, scoreListResponse{Scores: scores, Pagination: p})
}
