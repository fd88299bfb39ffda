package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/okian/scorecard/internal/adapters/repository"
	"github.com/okian/scorecard/internal/domain/abtest"
	"github.com/okian/scorecard/internal/domain/dedupe"
	"github.com/okian/scorecard/internal/domain/model"
	"github.com/okian/scorecard/internal/domain/types"
	"github.com/okian/scorecard/pkg/logger"
	"github.com/okian/scorecard/pkg/metrics"
)

const defaultABTestLimit = 20

// NewABTest holds the fields of a test to create.
type NewABTest struct {
	Name         string
	PageID       string
	VariantA     string
	VariantB     string
	TrafficSplit int
	CreatedBy    string
}

// ABTestQuery selects a page of tests.
type ABTestQuery struct {
	Status string
	PageID string
	Page   int
	Limit  int
}

// ABTestView is a test with its derived statistics. Stats are only present
// once the test has started.
type ABTestView struct {
	model.ABTest
	Stats *abtest.Stats `json:"stats,omitempty"`
}

// Completion is the result of completing a test.
type Completion struct {
	Test  model.ABTest `json:"test"`
	Stats abtest.Stats `json:"stats"`
}

// CreateABTest registers a draft test. A page may only host one running test.
func (s *Service) CreateABTest(ctx context.Context, in NewABTest) (model.ABTest, error) { //nolint:gocritic // hugeParam
	store, err := s.backend()
	if err != nil {
		return model.ABTest{}, err
	}
	if in.Name == "" || in.PageID == "" || in.VariantA == "" || in.VariantB == "" {
		return model.ABTest{}, invalidInput("name, pageId, variantA and variantB are required")
	}
	split, err := abtest.NormalizeSplit(in.TrafficSplit)
	if err != nil {
		return model.ABTest{}, fmt.Errorf("%w: %w", types.ErrInvalidInput, err)
	}
	if err := s.ensureNoRunningTest(ctx, store, in.PageID); err != nil {
		return model.ABTest{}, err
	}

	t := model.ABTest{
		ID:           uuid.NewString(),
		Name:         in.Name,
		PageID:       in.PageID,
		VariantA:     in.VariantA,
		VariantB:     in.VariantB,
		TrafficSplit: split,
		Status:       model.ABTestDraft,
		CreatedBy:    in.CreatedBy,
		CreatedAt:    s.now().UTC(),
	}
	if err := store.CreateABTest(ctx, t); err != nil {
		return model.ABTest{}, err
	}
	s.logger.Info(ctx, "ab test created", logger.String("test", t.ID), logger.String("page", t.PageID))
	return t, nil
}

func (s *Service) ensureNoRunningTest(ctx context.Context, store *repository.Store, pageID string) error {
	running, ok, err := store.RunningTestForPage(ctx, pageID)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("%w: test %s is already running on page %s", types.ErrConflict, running.ID, pageID)
	}
	return nil
}

// GetABTest returns a test with its statistics.
func (s *Service) GetABTest(ctx context.Context, id string) (ABTestView, error) {
	store, err := s.backend()
	if err != nil {
		return ABTestView{}, err
	}
	t, err := store.GetABTest(ctx, id)
	if err != nil {
		return ABTestView{}, err
	}
	return view(t), nil
}

// ListABTests returns a page of tests, newest first.
func (s *Service) ListABTests(ctx context.Context, q ABTestQuery) ([]ABTestView, types.Pagination, error) {
	store, err := s.backend()
	if err != nil {
		return nil, types.Pagination{}, err
	}
	page, limit := s.page(q.Page, q.Limit, defaultABTestLimit)
	p := types.NewPagination(page, limit, 0)
	tests, total, err := store.ListABTests(ctx, repository.ABTestFilter{
		Status: q.Status,
		PageID: q.PageID,
		Offset: p.Offset(),
		Limit:  limit,
	})
	if err != nil {
		return nil, types.Pagination{}, err
	}
	out := make([]ABTestView, 0, len(tests))
	for _, t := range tests {
		out = append(out, view(t))
	}
	return out, types.NewPagination(page, limit, total), nil
}

// StartABTest moves a draft test to RUNNING.
func (s *Service) StartABTest(ctx context.Context, id string) (model.ABTest, error) {
	store, err := s.backend()
	if err != nil {
		return model.ABTest{}, err
	}
	t, err := store.GetABTest(ctx, id)
	if err != nil {
		return model.ABTest{}, err
	}
	if err := abtest.CanStart(t); err != nil {
		return model.ABTest{}, fmt.Errorf("%w: %w", types.ErrInvalidState, err)
	}
	if err := s.ensureNoRunningTest(ctx, store, t.PageID); err != nil {
		return model.ABTest{}, err
	}

	now := s.now().UTC()
	t.Status = model.ABTestRunning
	t.StartDate = &now
	if err := store.UpdateABTest(ctx, t, model.ABTestDraft); err != nil {
		return model.ABTest{}, err
	}
	s.logger.Info(ctx, "ab test started", logger.String("test", id))
	return t, nil
}

// TrackImpression counts one view of variant.
func (s *Service) TrackImpression(ctx context.Context, id, variant string) (model.ABTest, error) {
	t, err := s.track(ctx, id, variant, repository.Impressions)
	if err != nil {
		return model.ABTest{}, err
	}
	metrics.RecordABTrack("impression", variant)
	return t, nil
}

// TrackConversion counts one conversion of variant. A session converts at
// most once per test and variant; repeats report duplicate and change nothing.
func (s *Service) TrackConversion(ctx context.Context, id, variant, sessionID string) (model.ABTest, bool, error) {
	store, err := s.backend()
	if err != nil {
		return model.ABTest{}, false, err
	}
	if sessionID == "" {
		return model.ABTest{}, false, invalidInput("sessionId is required")
	}
	if err := abtest.ValidVariant(variant); err != nil {
		return model.ABTest{}, false, fmt.Errorf("%w: %w", types.ErrInvalidInput, err)
	}

	key := dedupe.Key("ab", id, variant, sessionID)
	if s.deduper.SeenAndRecord(ctx, key) {
		t, err := store.GetABTest(ctx, id)
		return t, true, err
	}

	t, err := s.track(ctx, id, variant, repository.Conversions)
	if err != nil {
		s.deduper.Unrecord(ctx, key)
		return model.ABTest{}, false, err
	}
	metrics.RecordABTrack("conversion", variant)
	return t, false, nil
}

func (s *Service) track(ctx context.Context, id, variant string, c repository.Counter) (model.ABTest, error) {
	store, err := s.backend()
	if err != nil {
		return model.ABTest{}, err
	}
	t, err := store.GetABTest(ctx, id)
	if err != nil {
		return model.ABTest{}, err
	}
	if err := abtest.CanTrack(t, variant); err != nil {
		if errors.Is(err, abtest.ErrVariant) {
			return model.ABTest{}, fmt.Errorf("%w: %w", types.ErrInvalidInput, err)
		}
		return model.ABTest{}, fmt.Errorf("%w: %w", types.ErrInvalidState, err)
	}
	return store.IncrementABTest(ctx, id, c, variant)
}

// CompleteABTest ends a running test and records its winner and confidence.
func (s *Service) CompleteABTest(ctx context.Context, id string) (Completion, error) {
	store, err := s.backend()
	if err != nil {
		return Completion{}, err
	}
	t, err := store.GetABTest(ctx, id)
	if err != nil {
		return Completion{}, err
	}
	if err := abtest.CanComplete(t); err != nil {
		return Completion{}, fmt.Errorf("%w: %w", types.ErrInvalidState, err)
	}

	stats, verdict := abtest.Evaluate(abtest.SnapshotOf(t))
	now := s.now().UTC()
	t.Status = model.ABTestCompleted
	t.Winner = verdict.Winner
	t.Confidence = &verdict.Confidence
	t.EndDate = &now
	if err := store.UpdateABTest(ctx, t, model.ABTestRunning); err != nil {
		return Completion{}, err
	}

	metrics.RecordABTestCompleted(verdict.Winner)
	s.logger.Info(ctx, "ab test completed",
		logger.String("test", id),
		logger.String("winner", verdict.Winner),
		logger.Int("confidence", verdict.Confidence),
	)
	return Completion{Test: t, Stats: stats}, nil
}

func view(t model.ABTest) ABTestView { //nolint:gocritic // hugeParam
	v := ABTestView{ABTest: t}
	if abtest.HasStats(t) {
		st := abtest.ComputeStats(abtest.SnapshotOf(t))
		v.Stats = &st
	}
	return v
}
