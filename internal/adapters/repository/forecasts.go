package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/scorecard/internal/domain/model"
)

// CreateForecast stores a forecast. Periods are unique; a second forecast for
// the same period is ErrConflict.
func (s *Store) CreateForecast(ctx context.Context, f model.Forecast) error { //nolint:gocritic // hugeParam
	_, err := s.exec(ctx, "create_forecast",
		`INSERT INTO forecasts (id, period, model, predicted_revenue, confidence, deal_count, avg_deal_size,
		 win_rate, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.Period, f.Model, f.PredictedRevenue, f.Confidence, f.DealCount, f.AvgDealSize, f.WinRate,
		millis(f.CreatedAt))
	return err
}

// ListForecasts returns up to limit forecasts, latest period first. A
// non-empty period restricts the result to that period.
func (s *Store) ListForecasts(ctx context.Context, period string, limit int) ([]model.Forecast, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	defer s.observeQuery("list_forecasts", time.Now())

	query := `SELECT id, period, model, predicted_revenue, confidence, deal_count, avg_deal_size, win_rate,
		created_at FROM forecasts`
	args := []any{}
	if period != "" {
		query += ` WHERE period = ?`
		args = append(args, period)
	}
	query += ` ORDER BY period DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list forecasts: %w", err)
	}
	defer rows.Close()

	out := []model.Forecast{}
	for rows.Next() {
		var (
			f       model.Forecast
			created int64
		)
		if err := rows.Scan(&f.ID, &f.Period, &f.Model, &f.PredictedRevenue, &f.Confidence, &f.DealCount,
			&f.AvgDealSize, &f.WinRate, &created); err != nil {
			return nil, fmt.Errorf("scan forecast: %w", err)
		}
		f.CreatedAt = fromMillis(created)
		out = append(out, f)
	}
	return out, rows.Err()
}
