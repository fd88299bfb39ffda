package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/scorecard/internal/domain/model"
)

// Counter selects which A/B tally IncrementABTest bumps.
type Counter string

// Counters.
const (
	Impressions Counter = "impressions"
	Conversions Counter = "conversions"
)

// ABTestFilter narrows ListABTests. Empty fields match everything.
type ABTestFilter struct {
	Status string
	PageID string
	Offset int
	Limit  int
}

const abTestColumns = `id, name, page_id, variant_a, variant_b, traffic_split, status,
	impressions_a, impressions_b, conversions_a, conversions_b, winner, confidence,
	start_date, end_date, created_by, created_at`

// CreateABTest inserts a test.
func (s *Store) CreateABTest(ctx context.Context, t model.ABTest) error { //nolint:gocritic // hugeParam
	_, err := s.exec(ctx, "create_ab_test",
		`INSERT INTO ab_tests (`+abTestColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.PageID, t.VariantA, t.VariantB, t.TrafficSplit, t.Status,
		t.ImpressionsA, t.ImpressionsB, t.ConversionsA, t.ConversionsB, t.Winner, nullInt(t.Confidence),
		nullMillis(t.StartDate), nullMillis(t.EndDate), t.CreatedBy, millis(t.CreatedAt))
	return err
}

// GetABTest returns the test with id or ErrNotFound.
func (s *Store) GetABTest(ctx context.Context, id string) (model.ABTest, error) {
	defer s.observeQuery("get_ab_test", time.Now())
	t, err := scanABTest(s.db.QueryRowContext(ctx, `SELECT `+abTestColumns+` FROM ab_tests WHERE id = ?`, id))
	if err != nil {
		return model.ABTest{}, fmt.Errorf("get ab test %s: %w", id, translate(err))
	}
	return t, nil
}

// RunningTestForPage returns the running test on pageID, if any.
func (s *Store) RunningTestForPage(ctx context.Context, pageID string) (model.ABTest, bool, error) {
	defer s.observeQuery("running_ab_test", time.Now())
	t, err := scanABTest(s.db.QueryRowContext(ctx,
		`SELECT `+abTestColumns+` FROM ab_tests WHERE page_id = ? AND status = ? ORDER BY created_at LIMIT 1`,
		pageID, model.ABTestRunning))
	if errors.Is(err, sql.ErrNoRows) {
		return model.ABTest{}, false, nil
	}
	if err != nil {
		return model.ABTest{}, false, fmt.Errorf("running ab test for %s: %w", pageID, err)
	}
	return t, true, nil
}

// ListABTests returns one page of tests, newest first, and the total match count.
func (s *Store) ListABTests(ctx context.Context, f ABTestFilter) ([]model.ABTest, int, error) {
	if f.Limit <= 0 {
		return nil, 0, ErrInvalidLimit
	}
	defer s.observeQuery("list_ab_tests", time.Now())

	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.PageID != "" {
		where = append(where, "page_id = ?")
		args = append(args, f.PageID)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ab_tests`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count ab tests: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+abTestColumns+` FROM ab_tests`+clause+` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		append(args, f.Limit, max(f.Offset, 0))...)
	if err != nil {
		return nil, 0, fmt.Errorf("list ab tests: %w", err)
	}
	defer rows.Close()

	tests := make([]model.ABTest, 0, f.Limit)
	for rows.Next() {
		t, err := scanABTest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan ab test: %w", err)
		}
		tests = append(tests, t)
	}
	return tests, total, rows.Err()
}

// UpdateABTest rewrites the lifecycle fields of t, provided the stored status
// still equals from. A status that moved underneath is ErrConflict.
func (s *Store) UpdateABTest(ctx context.Context, t model.ABTest, from string) error { //nolint:gocritic // hugeParam
	res, err := s.exec(ctx, "update_ab_test",
		`UPDATE ab_tests SET status = ?, winner = ?, confidence = ?, start_date = ?, end_date = ?
		 WHERE id = ? AND status = ?`,
		t.Status, t.Winner, nullInt(t.Confidence), nullMillis(t.StartDate), nullMillis(t.EndDate), t.ID, from)
	if err != nil {
		return err
	}
	if err := requireRow(res, "update ab test "+t.ID); err != nil {
		if _, getErr := s.GetABTest(ctx, t.ID); getErr != nil {
			return getErr
		}
		return fmt.Errorf("update ab test %s: status is no longer %s: %w", t.ID, from, ErrConflict)
	}
	return nil
}

// IncrementABTest atomically adds one to the counter of variant on a running
// test and returns the updated test.
func (s *Store) IncrementABTest(ctx context.Context, id string, c Counter, variant string) (model.ABTest, error) {
	column, err := counterColumn(c, variant)
	if err != nil {
		return model.ABTest{}, err
	}
	res, err := s.exec(ctx, "increment_ab_test",
		`UPDATE ab_tests SET `+column+` = `+column+` + 1 WHERE id = ? AND status = ?`, id, model.ABTestRunning)
	if err != nil {
		return model.ABTest{}, err
	}
	if err := requireRow(res, "increment ab test "+id); err != nil {
		if _, getErr := s.GetABTest(ctx, id); getErr != nil {
			return model.ABTest{}, getErr
		}
		return model.ABTest{}, fmt.Errorf("increment ab test %s: not running: %w", id, ErrConflict)
	}
	return s.GetABTest(ctx, id)
}

func counterColumn(c Counter, variant string) (string, error) {
	if c != Impressions && c != Conversions {
		return "", fmt.Errorf("unknown counter %q", c)
	}
	switch variant {
	case model.VariantA:
		return string(c) + "_a", nil
	case model.VariantB:
		return string(c) + "_b", nil
	default:
		return "", fmt.Errorf("unknown variant %q", variant)
	}
}

func scanABTest(r rowScanner) (model.ABTest, error) {
	var (
		t                  model.ABTest
		confidence         sql.NullInt64
		startDate, endDate sql.NullInt64
		created            int64
	)
	err := r.Scan(&t.ID, &t.Name, &t.PageID, &t.VariantA, &t.VariantB, &t.TrafficSplit, &t.Status,
		&t.ImpressionsA, &t.ImpressionsB, &t.ConversionsA, &t.ConversionsB, &t.Winner, &confidence,
		&startDate, &endDate, &t.CreatedBy, &created)
	if err != nil {
		return model.ABTest{}, err
	}
	if confidence.Valid {
		c := int(confidence.Int64)
		t.Confidence = &c
	}
	t.StartDate = timePtr(startDate)
	t.EndDate = timePtr(endDate)
	t.CreatedAt = fromMillis(created)
	return t, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
