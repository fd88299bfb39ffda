package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/okian/scorecard/internal/domain/model"
)

// BehaviorFilter narrows BehaviorEvents. A zero Since means no lower bound.
// A positive Limit keeps only the newest Limit events.
type BehaviorFilter struct {
	PageID string
	Since  time.Time
	Limit  int
}

const behaviorColumns = `id, session_id, page_id, page_url, event_type, element,
	position_x, position_y, viewport_width, viewport_height, ts`

// AppendBehavior stores one behavior event. Replaying an id is ErrConflict.
func (s *Store) AppendBehavior(ctx context.Context, e model.BehaviorEvent) error { //nolint:gocritic // hugeParam
	_, err := s.exec(ctx, "append_behavior",
		`INSERT INTO behavior_events (`+behaviorColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.SessionID, e.PageID, e.PageURL, e.EventType, e.Element,
		nullFloat(e.PositionX), nullFloat(e.PositionY), nullFloat(e.ViewportWidth), nullFloat(e.ViewportHeight),
		millis(e.Timestamp))
	return err
}

// BehaviorEvents returns matching events in timestamp order, ties in arrival order.
func (s *Store) BehaviorEvents(ctx context.Context, f BehaviorFilter) ([]model.BehaviorEvent, error) {
	defer s.observeQuery("behavior_events", time.Now())

	var (
		where []string
		args  []any
	)
	if f.PageID != "" {
		where = append(where, "page_id = ?")
		args = append(args, f.PageID)
	}
	if !f.Since.IsZero() {
		where = append(where, "ts >= ?")
		args = append(args, millis(f.Since))
	}
	query := `SELECT seq, ` + behaviorColumns + ` FROM behavior_events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if f.Limit > 0 {
		query += " ORDER BY ts DESC, seq DESC LIMIT ?"
		args = append(args, f.Limit)
	}
	query = `SELECT ` + behaviorColumns + ` FROM (` + query + `) ORDER BY ts, seq`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query behavior events: %w", err)
	}
	defer rows.Close()

	var out []model.BehaviorEvent
	for rows.Next() {
		var (
			e      model.BehaviorEvent
			x, y   sql.NullFloat64
			vw, vh sql.NullFloat64
			ts     int64
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.PageID, &e.PageURL, &e.EventType, &e.Element,
			&x, &y, &vw, &vh, &ts); err != nil {
			return nil, fmt.Errorf("scan behavior event: %w", err)
		}
		e.PositionX, e.PositionY = floatPtr(x), floatPtr(y)
		e.ViewportWidth, e.ViewportHeight = floatPtr(vw), floatPtr(vh)
		e.Timestamp = fromMillis(ts)
		out = append(out, e)
	}
	return out, rows.Err()
}
