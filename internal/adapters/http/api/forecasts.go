package api

import (
	"context"
	"net/http"

	service "github.com/okian/scorecard/internal/app"
	"github.com/okian/scorecard/internal/domain/model"
)

// ForecastDependencies generates and lists sales forecasts.
type ForecastDependencies interface {
	GenerateForecast(ctx context.Context, period, modelName string) (model.Forecast, error)
	ListForecasts(ctx context.Context, period string, limit int) (service.ForecastList, error)
}

// ForecastHandler handles /api/sales-forecast.
type ForecastHandler struct {
	deps ForecastDependencies
}

// NewForecastHandler creates a new forecast handler.
func NewForecastHandler(deps ForecastDependencies) *ForecastHandler {
	return &ForecastHandler{deps: deps}
}

// forecastRequest selects the period and model. Unknown models fall back to
// the ensemble.
type forecastRequest struct {
	Period string `json:"period" validate:"required"`
	Model  string `json:"model"`
}

// HandleList handles GET /api/sales-forecast requests.
func (h *ForecastHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_forecasts"
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	out, err := h.deps.ListForecasts(r.Context(), r.URL.Query().Get("period"), limit)
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	if out.Forecasts == nil {
		out.Forecasts = []model.Forecast{}
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleGenerate handles POST /api/sales-forecast requests.
func (h *ForecastHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	const op = "api.generate_forecast"
	var req forecastRequest
	if err := decode(r, &req); err != nil {
		writeFailure(w, r, op, err)
		return
	}
	f, err := h.deps.GenerateForecast(r.Context(), req.Period, req.Model)
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}
