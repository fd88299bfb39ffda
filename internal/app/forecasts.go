package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/scorecard/internal/adapters/repository"
	"github.com/okian/scorecard/internal/domain/forecast"
	"github.com/okian/scorecard/internal/domain/model"
	"github.com/okian/scorecard/pkg/logger"
	"github.com/okian/scorecard/pkg/metrics"
)

const defaultForecastLimit = 12

// ForecastList is the stored forecasts plus the live pipeline.
type ForecastList struct {
	Forecasts      []model.Forecast         `json:"forecasts"`
	CurrentMetrics forecast.PipelineMetrics `json:"currentMetrics"`
}

// GenerateForecast predicts revenue for period and stores the result. Each
// period can be forecast once.
func (s *Service) GenerateForecast(ctx context.Context, period, modelName string) (model.Forecast, error) {
	store, err := s.backend()
	if err != nil {
		return model.Forecast{}, err
	}
	period = strings.TrimSpace(period)
	if period == "" {
		return model.Forecast{}, invalidInput("period is required")
	}

	historical, err := store.HistoricalDeals(ctx, repository.HistoricalDealLimit)
	if err != nil {
		return model.Forecast{}, err
	}
	open, err := store.OpenDeals(ctx)
	if err != nil {
		return model.Forecast{}, err
	}

	res := s.forecaster.Forecast(period, historical, open, modelName)
	f := res.ToModel(uuid.NewString(), s.now().UTC())
	if err := store.CreateForecast(ctx, f); err != nil {
		return model.Forecast{}, err
	}

	metrics.RecordForecastGenerated(f.Model)
	s.logger.Info(ctx, "forecast generated",
		logger.String("period", f.Period),
		logger.String("model", f.Model),
		logger.Float64("revenue", f.PredictedRevenue),
		logger.Int("historical", len(historical)),
		logger.Int("open", len(open)),
	)
	return f, nil
}

// ListForecasts returns stored forecasts, latest period first, with the
// current pipeline metrics.
func (s *Service) ListForecasts(ctx context.Context, period string, limit int) (ForecastList, error) {
	store, err := s.backend()
	if err != nil {
		return ForecastList{}, err
	}
	_, limit = s.page(1, limit, defaultForecastLimit)

	forecasts, err := store.ListForecasts(ctx, period, limit)
	if err != nil {
		return ForecastList{}, err
	}
	open, err := store.OpenDeals(ctx)
	if err != nil {
		return ForecastList{}, err
	}
	return ForecastList{Forecasts: forecasts, CurrentMetrics: forecast.Pipeline(open)}, nil
}
