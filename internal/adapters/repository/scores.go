package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/okian/scorecard/internal/domain/model"
	"github.com/okian/scorecard/pkg/metrics"
)

// ScoreFilter narrows ListScores.
type ScoreFilter struct {
	EntityType string
	MinScore   int
	Offset     int
	Limit      int
}

// UpsertScore stores rec, replacing any earlier score of the same entity, and
// refreshes the ranking.
func (s *Store) UpsertScore(ctx context.Context, rec model.ScoreRecord) error { //nolint:gocritic // hugeParam
	breakdown, err := json.Marshal(rec.Breakdown)
	if err != nil {
		return fmt.Errorf("encode breakdown: %w", err)
	}
	factors, err := json.Marshal(rec.Factors)
	if err != nil {
		return fmt.Errorf("encode factors: %w", err)
	}

	s.scoreMu.Lock()
	defer s.scoreMu.Unlock()
	_, err = s.exec(ctx, "upsert_score",
		`INSERT INTO lead_scores (entity_type, entity_id, score, grade, breakdown, factors, last_calculated)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(entity_type, entity_id) DO UPDATE SET
		   score = excluded.score,
		   grade = excluded.grade,
		   breakdown = excluded.breakdown,
		   factors = excluded.factors,
		   last_calculated = excluded.last_calculated`,
		rec.EntityType, rec.EntityID, rec.Score, rec.Grade, string(breakdown), string(factors),
		millis(rec.LastCalculated))
	if err != nil {
		return err
	}
	rec.LastCalculated = fromMillis(millis(rec.LastCalculated))
	s.ranks.Upsert(rec)
	metrics.UpdateRankedEntities(s.ranks.Len())
	return nil
}

// GetScore returns the stored score of an entity or ErrNotFound.
func (s *Store) GetScore(ctx context.Context, entityType, entityID string) (model.ScoreRecord, error) {
	defer s.observeQuery("get_score", time.Now())
	rec, ok := s.ranks.Get(model.ScoreRecord{EntityType: entityType, EntityID: entityID}.Key())
	if !ok {
		return model.ScoreRecord{}, fmt.Errorf("score %s/%s: %w", entityType, entityID, ErrNotFound)
	}
	return rec, nil
}

// ListScores returns one page of ranked scores and the number of matches.
func (s *Store) ListScores(ctx context.Context, f ScoreFilter) ([]Ranked, int, error) {
	defer s.observeQuery("list_scores", time.Now())
	return s.ranks.Page(f.EntityType, f.MinScore, f.Offset, f.Limit)
}

// RankOf returns the overall rank of an entity's score.
func (s *Store) RankOf(ctx context.Context, entityType, entityID string) (Ranked, error) {
	defer s.observeQuery("rank_of", time.Now())
	return s.ranks.Rank(model.ScoreRecord{EntityType: entityType, EntityID: entityID}.Key())
}

// RankedCount returns how many entities hold a score.
func (s *Store) RankedCount() int {
	return s.ranks.Len()
}

// warmRanks loads every stored score into the ranking index.
func (s *Store) warmRanks(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT entity_type, entity_id, score, grade, breakdown, factors, last_calculated FROM lead_scores`)
	if err != nil {
		return fmt.Errorf("load scores: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rec                model.ScoreRecord
			breakdown, factors string
			calculated         int64
		)
		if err := rows.Scan(&rec.EntityType, &rec.EntityID, &rec.Score, &rec.Grade, &breakdown, &factors,
			&calculated); err != nil {
			return fmt.Errorf("scan score: %w", err)
		}
		if err := json.Unmarshal([]byte(breakdown), &rec.Breakdown); err != nil {
			return fmt.Errorf("decode breakdown of %s: %w", rec.Key(), err)
		}
		if err := json.Unmarshal([]byte(factors), &rec.Factors); err != nil {
			return fmt.Errorf("decode factors of %s: %w", rec.Key(), err)
		}
		rec.LastCalculated = fromMillis(calculated)
		s.ranks.Upsert(rec)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load scores: %w", err)
	}
	metrics.UpdateRankedEntities(s.ranks.Len())
	return nil
}
