package repository_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/scorecard/internal/adapters/repository"
	"github.com/okian/scorecard/internal/domain/model"
	"github.com/okian/scorecard/internal/domain/types"
	"github.com/okian/scorecard/pkg/logger"
)

var base = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func openStore(t *testing.T) (*repository.Store, string) {
	t.Helper()
	So(logger.Init(), ShouldBeNil)
	path := filepath.Join(t.TempDir(), "data", "scorecard.db")
	s, err := repository.Open(context.Background(), path)
	So(err, ShouldBeNil)
	return s, path
}

func f64(v float64) *float64 { return &v }

func TestLeadsAndContacts(t *testing.T) {
	Convey("Given an empty store", t, func() {
		s, _ := openStore(t)
		defer s.Close()
		ctx := context.Background()

		Convey("When a lead is created", func() {
			lead := model.Lead{
				ID: "l1", FirstName: "Ada", Email: "ada@acme.io", Company: "Acme", Source: model.SourceReferral,
				Status: model.LeadNew, CreatedAt: base,
			}
			So(s.CreateLead(ctx, lead), ShouldBeNil)

			Convey("Then it round-trips", func() {
				got, err := s.GetLead(ctx, "l1")
				So(err, ShouldBeNil)
				So(got, ShouldResemble, lead)
			})

			Convey("Then a duplicate id is a conflict", func() {
				So(errors.Is(s.CreateLead(ctx, lead), types.ErrConflict), ShouldBeTrue)
			})

			Convey("Then the band can be updated", func() {
				So(s.UpdateLeadBand(ctx, "l1", "HIGH"), ShouldBeNil)
				got, err := s.GetLead(ctx, "l1")
				So(err, ShouldBeNil)
				So(got.Band, ShouldEqual, "HIGH")
			})
		})

		Convey("When a missing lead is read or updated", func() {
			_, err := s.GetLead(ctx, "nope")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			So(errors.Is(s.UpdateLeadBand(ctx, "nope", "LOW"), types.ErrNotFound), ShouldBeTrue)
		})

		Convey("When a contact has deals and interactions", func() {
			So(s.CreateContact(ctx, model.Contact{ID: "c1", Company: "Acme", Status: model.ContactActive, CreatedAt: base}), ShouldBeNil)
			So(s.CreateContact(ctx, model.Contact{ID: "c2", CreatedAt: base}), ShouldBeNil)
			So(s.CreateDeal(ctx, model.Deal{ID: "d1", ContactID: "c1", Value: 6000, CreatedAt: base}), ShouldBeNil)
			So(s.CreateDeal(ctx, model.Deal{ID: "d2", ContactID: "c1", Value: 5000, CreatedAt: base.Add(time.Hour)}), ShouldBeNil)
			So(s.CreateDeal(ctx, model.Deal{ID: "d3", ContactID: "c2", Value: 99, CreatedAt: base}), ShouldBeNil)
			for _, id := range []string{"i1", "i2", "i3"} {
				So(s.AddInteraction(ctx, model.Interaction{ID: id, ContactID: "c1", Type: "CALL", CreatedAt: base}), ShouldBeNil)
			}

			Convey("Then the snapshot carries only that contact's deal values and interaction count", func() {
				snap, err := s.ContactSnapshot(ctx, "c1")
				So(err, ShouldBeNil)
				So(snap.Contact.Company, ShouldEqual, "Acme")
				So(snap.DealValues, ShouldResemble, []float64{6000, 5000})
				So(snap.Interactions, ShouldEqual, 3)
			})

			Convey("Then interactions for unknown contacts are rejected", func() {
				err := s.AddInteraction(ctx, model.Interaction{ID: "i9", ContactID: "ghost", CreatedAt: base})
				So(errors.Is(err, types.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestDeals(t *testing.T) {
	Convey("Given open and closed deals", t, func() {
		s, _ := openStore(t)
		defer s.Close()
		ctx := context.Background()

		closed := func(days int) *time.Time { v := base.AddDate(0, 0, days); return &v }
		expected := base.AddDate(0, 0, 10)
		So(s.CreateDeal(ctx, model.Deal{ID: "open1", Value: 100, Stage: model.StageProposal, ExpectedCloseDate: &expected, CreatedAt: base}), ShouldBeNil)
		So(s.CreateDeal(ctx, model.Deal{ID: "won-old", Status: model.DealWon, Value: 10, ActualCloseDate: closed(-30), CreatedAt: base}), ShouldBeNil)
		So(s.CreateDeal(ctx, model.Deal{ID: "lost-new", Status: model.DealLost, Value: 20, ActualCloseDate: closed(-1), CreatedAt: base}), ShouldBeNil)
		So(s.CreateDeal(ctx, model.Deal{ID: "won-mid", Status: model.DealWon, Value: 30, ActualCloseDate: closed(-5), CreatedAt: base}), ShouldBeNil)

		Convey("Then a deal round-trips with optional dates", func() {
			d, err := s.GetDeal(ctx, "open1")
			So(err, ShouldBeNil)
			So(d.Status, ShouldEqual, model.DealOpen)
			So(d.ExpectedCloseDate.Equal(expected), ShouldBeTrue)
			So(d.ActualCloseDate, ShouldBeNil)
		})

		Convey("Then historical deals are closed deals newest first, bounded by limit", func() {
			hist, err := s.HistoricalDeals(ctx, 2)
			So(err, ShouldBeNil)
			So(len(hist), ShouldEqual, 2)
			So(hist[0].ID, ShouldEqual, "lost-new")
			So(hist[1].ID, ShouldEqual, "won-mid")

			all, err := s.HistoricalDeals(ctx, 0)
			So(err, ShouldBeNil)
			So(len(all), ShouldEqual, 3)
		})

		Convey("Then open deals exclude closed ones", func() {
			open, err := s.OpenDeals(ctx)
			So(err, ShouldBeNil)
			So(len(open), ShouldEqual, 1)
			So(open[0].ID, ShouldEqual, "open1")
		})
	})
}

func TestABTests(t *testing.T) {
	Convey("Given a draft test", t, func() {
		s, _ := openStore(t)
		defer s.Close()
		ctx := context.Background()

		draft := model.ABTest{
			ID: "t1", Name: "hero", PageID: "home", VariantA: "blue", VariantB: "green",
			TrafficSplit: 50, Status: model.ABTestDraft, CreatedAt: base,
		}
		So(s.CreateABTest(ctx, draft), ShouldBeNil)

		Convey("Then counters cannot move while it is a draft", func() {
			_, err := s.IncrementABTest(ctx, "t1", repository.Impressions, model.VariantA)
			So(errors.Is(err, types.ErrConflict), ShouldBeTrue)

			_, err = s.IncrementABTest(ctx, "missing", repository.Impressions, model.VariantA)
			So(errors.Is(err, types.ErrNotFound), ShouldBeTrue)

			_, err = s.IncrementABTest(ctx, "t1", repository.Impressions, "C")
			So(err, ShouldNotBeNil)
		})

		Convey("When it is started", func() {
			started := draft
			started.Status = model.ABTestRunning
			started.StartDate = &base
			So(s.UpdateABTest(ctx, started, model.ABTestDraft), ShouldBeNil)

			Convey("Then it is the running test of its page", func() {
				got, ok, err := s.RunningTestForPage(ctx, "home")
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(got.ID, ShouldEqual, "t1")

				_, ok, err = s.RunningTestForPage(ctx, "pricing")
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
			})

			Convey("Then counters increment per variant", func() {
				_, err := s.IncrementABTest(ctx, "t1", repository.Impressions, model.VariantA)
				So(err, ShouldBeNil)
				_, err = s.IncrementABTest(ctx, "t1", repository.Impressions, model.VariantB)
				So(err, ShouldBeNil)
				got, err := s.IncrementABTest(ctx, "t1", repository.Conversions, model.VariantB)
				So(err, ShouldBeNil)
				So(got.ImpressionsA, ShouldEqual, 1)
				So(got.ImpressionsB, ShouldEqual, 1)
				So(got.ConversionsA, ShouldEqual, 0)
				So(got.ConversionsB, ShouldEqual, 1)
			})

			Convey("Then a stale transition is a conflict", func() {
				So(errors.Is(s.UpdateABTest(ctx, started, model.ABTestDraft), types.ErrConflict), ShouldBeTrue)
			})

			Convey("Then no second test can run on the same page", func() {
				other := model.ABTest{
					ID: "t9", Name: "footer", PageID: "home", VariantA: "a", VariantB: "b",
					TrafficSplit: 50, Status: model.ABTestDraft, CreatedAt: base,
				}
				So(s.CreateABTest(ctx, other), ShouldBeNil)

				other.Status = model.ABTestRunning
				So(errors.Is(s.UpdateABTest(ctx, other, model.ABTestDraft), types.ErrConflict), ShouldBeTrue)

				got, err := s.GetABTest(ctx, "t9")
				So(err, ShouldBeNil)
				So(got.Status, ShouldEqual, model.ABTestDraft)
			})

			Convey("Then completing stores winner and confidence", func() {
				done := started
				done.Status = model.ABTestCompleted
				done.Winner = model.VariantB
				conf := 99
				done.Confidence = &conf
				end := base.Add(time.Hour)
				done.EndDate = &end
				So(s.UpdateABTest(ctx, done, model.ABTestRunning), ShouldBeNil)

				got, err := s.GetABTest(ctx, "t1")
				So(err, ShouldBeNil)
				So(got.Winner, ShouldEqual, model.VariantB)
				So(*got.Confidence, ShouldEqual, 99)
				So(got.EndDate.Equal(end), ShouldBeTrue)
			})
		})

		Convey("When more tests exist", func() {
			So(s.CreateABTest(ctx, model.ABTest{ID: "t2", Name: "cta", PageID: "pricing", VariantA: "a", VariantB: "b",
				TrafficSplit: 30, Status: model.ABTestDraft, CreatedAt: base.Add(time.Minute)}), ShouldBeNil)
			So(s.CreateABTest(ctx, model.ABTest{ID: "t3", Name: "nav", PageID: "home", VariantA: "a", VariantB: "b",
				TrafficSplit: 50, Status: model.ABTestCompleted, CreatedAt: base.Add(2 * time.Minute)}), ShouldBeNil)

			Convey("Then listing is newest first with totals and filters", func() {
				tests, total, err := s.ListABTests(ctx, repository.ABTestFilter{Limit: 2})
				So(err, ShouldBeNil)
				So(total, ShouldEqual, 3)
				So(len(tests), ShouldEqual, 2)
				So(tests[0].ID, ShouldEqual, "t3")

				tests, total, err = s.ListABTests(ctx, repository.ABTestFilter{PageID: "home", Status: model.ABTestDraft, Limit: 10})
				So(err, ShouldBeNil)
				So(total, ShouldEqual, 1)
				So(tests[0].ID, ShouldEqual, "t1")

				tests, _, err = s.ListABTests(ctx, repository.ABTestFilter{Offset: 2, Limit: 10})
				So(err, ShouldBeNil)
				So(len(tests), ShouldEqual, 1)
				So(tests[0].ID, ShouldEqual, "t1")
			})

			Convey("Then a zero limit is rejected", func() {
				_, _, err := s.ListABTests(ctx, repository.ABTestFilter{})
				So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
			})
		})
	})
}

func TestBehaviorEvents(t *testing.T) {
	Convey("Given stored behavior events", t, func() {
		s, _ := openStore(t)
		defer s.Close()
		ctx := context.Background()

		events := []model.BehaviorEvent{
			{ID: "e1", SessionID: "s1", PageID: "home", EventType: model.EventClick, PositionX: f64(10), PositionY: f64(20),
				ViewportWidth: f64(100), ViewportHeight: f64(200), Timestamp: base},
			{ID: "e2", SessionID: "s1", PageID: "home", EventType: model.EventScroll, Timestamp: base.Add(time.Second)},
			{ID: "e3", SessionID: "s2", PageID: "pricing", EventType: model.EventPageView, Timestamp: base.AddDate(0, 0, -10)},
			{ID: "e4", SessionID: "s3", PageID: "home", EventType: model.EventMove, Timestamp: base},
		}
		for _, e := range events {
			So(s.AppendBehavior(ctx, e), ShouldBeNil)
		}

		Convey("Then replaying an id is a conflict", func() {
			So(errors.Is(s.AppendBehavior(ctx, events[0]), types.ErrConflict), ShouldBeTrue)
		})

		Convey("Then all events come back in timestamp then arrival order", func() {
			got, err := s.BehaviorEvents(ctx, repository.BehaviorFilter{})
			So(err, ShouldBeNil)
			ids := make([]string, 0, len(got))
			for _, e := range got {
				ids = append(ids, e.ID)
			}
			So(ids, ShouldResemble, []string{"e3", "e1", "e4", "e2"})
			So(*got[1].PositionX, ShouldEqual, 10)
			So(*got[1].ViewportHeight, ShouldEqual, 200)
			So(got[3].PositionX, ShouldBeNil)
		})

		Convey("Then page and since filters apply", func() {
			got, err := s.BehaviorEvents(ctx, repository.BehaviorFilter{PageID: "home", Since: base.Add(time.Millisecond)})
			So(err, ShouldBeNil)
			So(len(got), ShouldEqual, 1)
			So(got[0].ID, ShouldEqual, "e2")
		})

		Convey("Then a limit keeps the newest events in timestamp order", func() {
			got, err := s.BehaviorEvents(ctx, repository.BehaviorFilter{Limit: 2})
			So(err, ShouldBeNil)
			So(len(got), ShouldEqual, 2)
			So(got[0].ID, ShouldEqual, "e4")
			So(got[1].ID, ShouldEqual, "e2")
		})
	})
}

func TestForecasts(t *testing.T) {
	Convey("Given stored forecasts", t, func() {
		s, _ := openStore(t)
		defer s.Close()
		ctx := context.Background()

		for i, period := range []string{"2025-01", "2025-03", "2025-02"} {
			f := model.Forecast{ID: period, Period: period, Model: "ensemble", PredictedRevenue: float64(i) * 100.5,
				Confidence: 70, DealCount: i, AvgDealSize: 10, WinRate: 50, CreatedAt: base}
			So(s.CreateForecast(ctx, f), ShouldBeNil)
		}

		Convey("Then a second forecast for a period conflicts", func() {
			err := s.CreateForecast(ctx, model.Forecast{ID: "x", Period: "2025-01", Model: "aggressive", CreatedAt: base})
			So(errors.Is(err, types.ErrConflict), ShouldBeTrue)
		})

		Convey("Then listing is latest period first", func() {
			got, err := s.ListForecasts(ctx, "", 2)
			So(err, ShouldBeNil)
			So(len(got), ShouldEqual, 2)
			So(got[0].Period, ShouldEqual, "2025-03")
			So(got[1].Period, ShouldEqual, "2025-02")
			So(got[1].PredictedRevenue, ShouldEqual, 201)

			one, err := s.ListForecasts(ctx, "2025-01", 10)
			So(err, ShouldBeNil)
			So(len(one), ShouldEqual, 1)
		})
	})
}

func TestScores(t *testing.T) {
	Convey("Given scored entities", t, func() {
		s, path := openStore(t)
		ctx := context.Background()

		put := func(kind, id string, score int) {
			So(s.UpsertScore(ctx, model.ScoreRecord{
				EntityType: kind, EntityID: id, Score: score, Grade: "C",
				Breakdown: map[string]int{"status": score}, Factors: []string{"Status: NEW"}, LastCalculated: base,
			}), ShouldBeNil)
		}
		put(model.EntityLead, "l1", 40)
		put(model.EntityLead, "l2", 90)
		put(model.EntityDeal, "d1", 60)
		put(model.EntityLead, "l3", 60)

		Convey("Then listing is ranked by score with ties sharing a rank", func() {
			page, total, err := s.ListScores(ctx, repository.ScoreFilter{Limit: 10})
			So(err, ShouldBeNil)
			So(total, ShouldEqual, 4)
			So(page[0].EntityID, ShouldEqual, "l2")
			So(page[1].Key(), ShouldEqual, "deal:d1")
			So(page[2].Key(), ShouldEqual, "lead:l3")
			So(page[1].Rank, ShouldEqual, 2)
			So(page[2].Rank, ShouldEqual, 2)
			So(page[3].Rank, ShouldEqual, 4)
		})

		Convey("Then filters apply before pagination", func() {
			page, total, err := s.ListScores(ctx, repository.ScoreFilter{EntityType: model.EntityLead, MinScore: 50, Limit: 1, Offset: 1})
			So(err, ShouldBeNil)
			So(total, ShouldEqual, 2)
			So(len(page), ShouldEqual, 1)
			So(page[0].EntityID, ShouldEqual, "l3")
		})

		Convey("When a score is recalculated", func() {
			put(model.EntityLead, "l1", 95)

			Convey("Then it replaces the earlier record", func() {
				rec, err := s.GetScore(ctx, model.EntityLead, "l1")
				So(err, ShouldBeNil)
				So(rec.Score, ShouldEqual, 95)
				So(s.RankedCount(), ShouldEqual, 4)

				r, err := s.RankOf(ctx, model.EntityLead, "l1")
				So(err, ShouldBeNil)
				So(r.Rank, ShouldEqual, 1)
			})
		})

		Convey("When one entity is rescored concurrently", func() {
			var wg sync.WaitGroup
			errs := make(chan error, 20)
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func(score int) {
					defer wg.Done()
					errs <- s.UpsertScore(ctx, model.ScoreRecord{
						EntityType: model.EntityLead, EntityID: "l1", Score: score, Grade: "C",
						Breakdown: map[string]int{}, Factors: []string{}, LastCalculated: base,
					})
				}(50 + i)
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				So(err, ShouldBeNil)
			}
			inMemory, err := s.GetScore(ctx, model.EntityLead, "l1")
			So(err, ShouldBeNil)

			Convey("Then the ranking agrees with the table", func() {
				So(s.Close(), ShouldBeNil)
				reopened, err := repository.Open(ctx, path)
				So(err, ShouldBeNil)
				defer reopened.Close()

				onDisk, err := reopened.GetScore(ctx, model.EntityLead, "l1")
				So(err, ShouldBeNil)
				So(onDisk.Score, ShouldEqual, inMemory.Score)
				So(reopened.RankedCount(), ShouldEqual, 4)
			})
		})

		Convey("When the store is reopened", func() {
			So(s.Close(), ShouldBeNil)
			reopened, err := repository.Open(ctx, path)
			So(err, ShouldBeNil)
			defer reopened.Close()

			Convey("Then the ranking is rebuilt from disk", func() {
				So(reopened.RankedCount(), ShouldEqual, 4)
				rec, err := reopened.GetScore(ctx, model.EntityDeal, "d1")
				So(err, ShouldBeNil)
				So(rec.Breakdown, ShouldResemble, map[string]int{"status": 60})
				So(rec.Factors, ShouldResemble, []string{"Status: NEW"})
				So(rec.LastCalculated.Equal(base), ShouldBeTrue)
			})
		})

		Convey("Then unknown scores are not found", func() {
			_, err := s.GetScore(ctx, model.EntityContact, "c1")
			So(errors.Is(err, types.ErrNotFound), ShouldBeTrue)
		})

		Reset(func() { _ = s.Close() })
	})
}
