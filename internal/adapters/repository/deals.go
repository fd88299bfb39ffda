package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/okian/scorecard/internal/domain/model"
)

// HistoricalDealLimit bounds how many closed deals feed a forecast.
const HistoricalDealLimit = 100

const dealColumns = `id, title, contact_id, value, stage, priority, status, probability,
	expected_close_date, actual_close_date, created_at`

// CreateDeal inserts a deal. An empty status is stored as OPEN.
func (s *Store) CreateDeal(ctx context.Context, d model.Deal) error { //nolint:gocritic // hugeParam
	if d.Status == "" {
		d.Status = model.DealOpen
	}
	_, err := s.exec(ctx, "create_deal",
		`INSERT INTO deals (`+dealColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Title, d.ContactID, d.Value, d.Stage, d.Priority, d.Status, d.Probability,
		nullMillis(d.ExpectedCloseDate), nullMillis(d.ActualCloseDate), millis(d.CreatedAt))
	return err
}

// GetDeal returns the deal with id or ErrNotFound.
func (s *Store) GetDeal(ctx context.Context, id string) (model.Deal, error) {
	defer s.observeQuery("get_deal", time.Now())
	d, err := scanDeal(s.db.QueryRowContext(ctx, `SELECT `+dealColumns+` FROM deals WHERE id = ?`, id))
	if err != nil {
		return model.Deal{}, fmt.Errorf("get deal %s: %w", id, translate(err))
	}
	return d, nil
}

// HistoricalDeals returns up to limit closed deals, most recently closed first.
func (s *Store) HistoricalDeals(ctx context.Context, limit int) ([]model.Deal, error) {
	if limit <= 0 {
		limit = HistoricalDealLimit
	}
	defer s.observeQuery("historical_deals", time.Now())
	return s.queryDeals(ctx,
		`SELECT `+dealColumns+` FROM deals WHERE status IN (?, ?)
		 ORDER BY actual_close_date DESC, created_at DESC LIMIT ?`,
		model.DealWon, model.DealLost, limit)
}

// OpenDeals returns every open deal.
func (s *Store) OpenDeals(ctx context.Context) ([]model.Deal, error) {
	defer s.observeQuery("open_deals", time.Now())
	return s.queryDeals(ctx,
		`SELECT `+dealColumns+` FROM deals WHERE status = ? ORDER BY created_at`, model.DealOpen)
}

func (s *Store) queryDeals(ctx context.Context, query string, args ...any) ([]model.Deal, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query deals: %w", err)
	}
	defer rows.Close()

	var out []model.Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan deal: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanDeal(r rowScanner) (model.Deal, error) {
	var (
		d                model.Deal
		expected, actual sql.NullInt64
		created          int64
	)
	err := r.Scan(&d.ID, &d.Title, &d.ContactID, &d.Value, &d.Stage, &d.Priority, &d.Status, &d.Probability,
		&expected, &actual, &created)
	if err != nil {
		return model.Deal{}, err
	}
	d.ExpectedCloseDate = timePtr(expected)
	d.ActualCloseDate = timePtr(actual)
	d.CreatedAt = fromMillis(created)
	return d, nil
}

func requireRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
