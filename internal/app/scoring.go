package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/scorecard/internal/adapters/repository"
	"github.com/okian/scorecard/internal/domain/model"
	"github.com/okian/scorecard/internal/domain/scoring"
	"github.com/okian/scorecard/internal/domain/types"
	"github.com/okian/scorecard/pkg/logger"
	"github.com/okian/scorecard/pkg/metrics"
)

// EntityRef names one scorable entity.
type EntityRef struct {
	Type string
	ID   string
}

// ScoreOutcome is a score plus whether it came from the cache.
type ScoreOutcome struct {
	model.ScoreRecord
	Cached bool `json:"cached"`
}

// ScoreQuery selects a page of ranked scores.
type ScoreQuery struct {
	EntityType string
	MinScore   int
	Page       int
	Limit      int
}

const defaultScoreLimit = 20

// ScoreEntity scores ref. A score computed within the cache TTL is returned
// as is unless force is set.
func (s *Service) ScoreEntity(ctx context.Context, ref EntityRef, force bool) (ScoreOutcome, error) {
	store, err := s.backend()
	if err != nil {
		return ScoreOutcome{}, err
	}
	if ref.ID == "" {
		return ScoreOutcome{}, invalidInput("entity id is required")
	}

	if !force {
		cached, err := store.GetScore(ctx, ref.Type, ref.ID)
		switch {
		case err == nil && s.now().Sub(cached.LastCalculated) < s.scoreTTL:
			metrics.RecordScoreCacheHit()
			return ScoreOutcome{ScoreRecord: cached, Cached: true}, nil
		case err != nil && !errors.Is(err, types.ErrNotFound):
			return ScoreOutcome{}, err
		}
	}

	in, err := s.snapshot(ctx, store, ref)
	if err != nil {
		return ScoreOutcome{}, err
	}
	res := s.engine.Score(in)
	rec := model.ScoreRecord{
		EntityType:     ref.Type,
		EntityID:       ref.ID,
		Score:          res.Total,
		Grade:          res.Grade,
		Breakdown:      res.Breakdown,
		Factors:        res.Factors,
		LastCalculated: s.now().UTC(),
	}
	if err := store.UpsertScore(ctx, rec); err != nil {
		return ScoreOutcome{}, err
	}
	if ref.Type == model.EntityLead {
		if err := store.UpdateLeadBand(ctx, ref.ID, scoring.Band(res.Total)); err != nil {
			return ScoreOutcome{}, err
		}
	}

	metrics.RecordScoreComputed(ref.Type, res.Grade)
	s.logger.Debug(ctx, "entity scored",
		logger.String("entity", rec.Key()),
		logger.Int("score", rec.Score),
		logger.String("grade", rec.Grade),
	)
	return ScoreOutcome{ScoreRecord: rec}, nil
}

func (s *Service) snapshot(ctx context.Context, store *repository.Store, ref EntityRef) (scoring.Input, error) {
	switch ref.Type {
	case model.EntityLead:
		l, err := store.GetLead(ctx, ref.ID)
		if err != nil {
			return scoring.Input{}, err
		}
		return scoring.Input{Lead: &l}, nil
	case model.EntityContact:
		c, err := store.ContactSnapshot(ctx, ref.ID)
		if err != nil {
			return scoring.Input{}, err
		}
		return scoring.Input{Contact: &c}, nil
	case model.EntityDeal:
		d, err := store.GetDeal(ctx, ref.ID)
		if err != nil {
			return scoring.Input{}, err
		}
		return scoring.Input{Deal: &d}, nil
	default:
		return scoring.Input{}, invalidInput("unknown entity type %q", ref.Type)
	}
}

// ListScores returns ranked scores, best first.
func (s *Service) ListScores(ctx context.Context, q ScoreQuery) ([]repository.Ranked, types.Pagination, error) {
	store, err := s.backend()
	if err != nil {
		return nil, types.Pagination{}, err
	}
	switch q.EntityType {
	case "", model.EntityLead, model.EntityContact, model.EntityDeal:
	default:
		return nil, types.Pagination{}, invalidInput("unknown entity type %q", q.EntityType)
	}

	page, limit := s.page(q.Page, q.Limit, defaultScoreLimit)
	p := types.NewPagination(page, limit, 0)
	scores, total, err := store.ListScores(ctx, repository.ScoreFilter{
		EntityType: q.EntityType,
		MinScore:   q.MinScore,
		Offset:     p.Offset(),
		Limit:      limit,
	})
	if err != nil {
		return nil, types.Pagination{}, fmt.Errorf("list scores: %w", err)
	}
	return scores, types.NewPagination(page, limit, total), nil
}
