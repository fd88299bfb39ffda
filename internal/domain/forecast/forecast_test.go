package forecast_test

import (
	"math"
	"testing"
	"time"

	forecast "github.com/okian/scorecard/internal/domain/forecast"
	"github.com/okian/scorecard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var now = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func daysAgo(n int) time.Time { return now.Add(-time.Duration(n) * 24 * time.Hour) }

func history() []model.Deal {
	return []model.Deal{
		{Value: 10000, Status: model.DealWon},
		{Value: 20000, Status: model.DealWon},
		{Value: 30000, Status: model.DealWon},
		{Value: 5000, Status: model.DealLost},
	}
}

func openDeals() []model.Deal {
	return []model.Deal{
		{Value: 10000, Probability: 50, Stage: model.StageProposal, CreatedAt: daysAgo(10)},
		{Value: 20000, Probability: 20, Stage: model.StageNegotiation, CreatedAt: daysAgo(20)},
	}
}

func TestForecastModels(t *testing.T) {
	Convey("Given a forecaster with a fixed clock", t, func() {
		f := forecast.New(forecast.WithClock(func() time.Time { return now }))

		Convey("When forecasting with the conservative model", func() {
			res := f.Forecast("2025-Q3", history(), openDeals(), "conservative")

			Convey("Then revenue is the weighted pipeline times win rate times 0.8", func() {
				So(res.Model, ShouldEqual, forecast.Conservative)
				So(res.PredictedRevenue, ShouldEqual, 5400.0)
				So(res.Confidence, ShouldEqual, 75)
				So(res.WinRate, ShouldEqual, 75)
				So(res.DealCount, ShouldEqual, 2)
				So(res.AvgDealSize, ShouldEqual, 20000.0)
			})
		})

		Convey("When forecasting with the aggressive model", func() {
			res := f.Forecast("2025-Q3", history(), openDeals(), "AGGRESSIVE")

			Convey("Then revenue is 30 percent of the pipeline", func() {
				So(res.Model, ShouldEqual, forecast.Aggressive)
				So(res.PredictedRevenue, ShouldEqual, 9000.0)
				So(res.Confidence, ShouldEqual, 60)
			})
		})

		Convey("When forecasting with an unknown model", func() {
			res := f.Forecast("2025-Q3", history(), openDeals(), "crystal-ball")
			c := f.Components(history(), openDeals())

			Convey("Then the ensemble mean of the three sub-models is used", func() {
				So(res.Model, ShouldEqual, forecast.Ensemble)
				So(res.Confidence, ShouldEqual, 70)
				So(c.StageBased.InexactFloat64(), ShouldEqual, 25500.0)
				So(res.PredictedRevenue, ShouldEqual, c.Mean().Round(2).InexactFloat64())
				So(res.PredictedRevenue, ShouldEqual, 13300.0)
			})
		})

		Convey("When half of the open deals are aged", func() {
			open := openDeals()
			open[0].CreatedAt = daysAgo(100)
			res := f.Forecast("2025-Q3", history(), open, "")

			Convey("Then confidence and expected deals are discounted", func() {
				So(f.AgedRatio(open), ShouldEqual, 0.5)
				So(res.Confidence, ShouldEqual, 63)
				So(res.DealCount, ShouldEqual, 1)
			})
		})

		Convey("When there are no open deals", func() {
			res := f.Forecast("2025-Q3", history(), nil, "ensemble")

			Convey("Then nothing is NaN and confidence keeps its base value", func() {
				So(math.IsNaN(res.PredictedRevenue), ShouldBeFalse)
				So(res.Confidence, ShouldEqual, 70)
				So(res.DealCount, ShouldEqual, 0)
				So(res.PredictedRevenue, ShouldEqual, 0.0)
			})
		})

		Convey("When there is no history", func() {
			res := f.Forecast("2025-Q3", nil, openDeals(), "conservative")

			Convey("Then win rate and deal size are zero", func() {
				So(res.WinRate, ShouldEqual, 0)
				So(res.AvgDealSize, ShouldEqual, 0.0)
				So(res.PredictedRevenue, ShouldEqual, 0.0)
			})
		})

		Convey("When stages are unknown", func() {
			c := f.Components(nil, []model.Deal{{Value: 1000, Stage: "DISCOVERY"}})

			Convey("Then they contribute nothing to the stage model", func() {
				So(c.StageBased.IsZero(), ShouldBeTrue)
			})
		})
	})
}

func TestForecastTunables(t *testing.T) {
	Convey("Given a forecaster with a 30 day threshold and heavier discounts", t, func() {
		f := forecast.New(
			forecast.WithClock(func() time.Time { return now }),
			forecast.WithAgedAfter(30*24*time.Hour),
			forecast.WithDiscounts(0.5, 1),
		)

		Convey("Then both open deals are aged", func() {
			open := openDeals()
			open[0].CreatedAt = daysAgo(40)
			open[1].CreatedAt = daysAgo(45)
			res := f.Forecast("p", history(), open, "aggressive")
			So(res.Confidence, ShouldEqual, 30)
			So(res.DealCount, ShouldEqual, 0)
		})

		Convey("Then out of range discounts are ignored", func() {
			g := forecast.New(forecast.WithClock(func() time.Time { return now }), forecast.WithDiscounts(2, -1))
			open := openDeals()
			open[0].CreatedAt = daysAgo(200)
			open[1].CreatedAt = daysAgo(200)
			So(g.Forecast("p", history(), open, "ensemble").Confidence, ShouldEqual, 56)
		})
	})
}

func TestParseModelAndPipeline(t *testing.T) {
	Convey("Given model names", t, func() {
		So(forecast.ParseModel(""), ShouldEqual, forecast.Ensemble)
		So(forecast.ParseModel(" Conservative "), ShouldEqual, forecast.Conservative)
		So(forecast.ParseModel("aggressive"), ShouldEqual, forecast.Aggressive)
		So(forecast.ParseModel("neural"), ShouldEqual, forecast.Ensemble)
	})

	Convey("Given the open pipeline", t, func() {
		m := forecast.Pipeline(openDeals())

		Convey("Then totals, weighting and stage counts are reported", func() {
			So(m.TotalPipelineValue, ShouldEqual, 30000.0)
			So(m.WeightedPipelineValue, ShouldEqual, 9000.0)
			So(m.TotalDeals, ShouldEqual, 2)
			So(m.AvgDealSize, ShouldEqual, 15000.0)
			So(m.DealsByStage, ShouldResemble, map[string]int{model.StageProposal: 1, model.StageNegotiation: 1})
		})

		Convey("Then an empty pipeline averages to zero", func() {
			empty := forecast.Pipeline(nil)
			So(empty.AvgDealSize, ShouldEqual, 0.0)
			So(empty.TotalDeals, ShouldEqual, 0)
		})
	})
}
