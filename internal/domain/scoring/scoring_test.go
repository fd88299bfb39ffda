package scoring_test

import (
	"testing"
	"time"

	"github.com/okian/scorecard/internal/domain/model"
	scoring "github.com/okian/scorecard/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

var fixedNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func newEngine(opts ...scoring.Option) *scoring.Engine {
	opts = append([]scoring.Option{scoring.WithClock(func() time.Time { return fixedNow })}, opts...)
	return scoring.NewEngine(opts...)
}

func TestLeadScoring(t *testing.T) {
	Convey("Given a scoring engine with a fixed clock", t, func() {
		engine := newEngine()

		Convey("When a freemail referral lead has no creation time", func() {
			res := engine.Lead(model.Lead{
				Email:  "x@gmail.com",
				Source: model.SourceReferral,
				Status: model.LeadQualified,
			})

			Convey("Then only source and status contribute", func() {
				So(res.Breakdown, ShouldResemble, map[string]int{"source": 25, "status": 20})
				So(res.Total, ShouldEqual, 45)
				So(res.Grade, ShouldEqual, "C")
				So(res.Factors, ShouldResemble, []string{"Quality source: REFERRAL", "Status: QUALIFIED"})
			})
		})

		Convey("When the same lead was created just now", func() {
			res := engine.Lead(model.Lead{
				Email:     "x@gmail.com",
				Source:    model.SourceReferral,
				Status:    model.LeadQualified,
				CreatedAt: fixedNow,
			})

			Convey("Then the recency bonus lifts it to grade B", func() {
				So(res.Breakdown["recentActivity"], ShouldEqual, 15)
				So(res.Total, ShouldEqual, 60)
				So(res.Grade, ShouldEqual, "B")
			})
		})

		Convey("When every factor is maxed out", func() {
			res := engine.Lead(model.Lead{
				Email:      "jane@acme.io",
				Company:    "Acme",
				Phone:      "+1 555 0100",
				Source:     model.SourceReferral,
				Status:     model.LeadConverted,
				AssignedTo: "rep-1",
				CreatedAt:  fixedNow.Add(-2 * 24 * time.Hour),
			})

			Convey("Then the total is clamped to 100", func() {
				So(res.Total, ShouldEqual, 100)
				So(res.Grade, ShouldEqual, "A")
				So(len(res.Breakdown), ShouldEqual, 7)
				So(res.Factors[0], ShouldEqual, "Professional email domain")
			})
		})

		Convey("When the lead is between 8 and 30 days old", func() {
			res := engine.Lead(model.Lead{CreatedAt: fixedNow.Add(-8*24*time.Hour - time.Hour)})

			Convey("Then the 30-day bucket applies", func() {
				So(res.Breakdown["recentActivity"], ShouldEqual, 10)
				So(res.Factors, ShouldResemble, []string{"Recent lead (within 30 days)"})
			})
		})

		Convey("When the lead is 7 days and some hours old", func() {
			res := engine.Lead(model.Lead{CreatedAt: fixedNow.Add(-7*24*time.Hour - 23*time.Hour)})

			Convey("Then whole days are floored and the 7-day bucket applies", func() {
				So(res.Breakdown["recentActivity"], ShouldEqual, 15)
			})
		})

		Convey("When the lead is older than 30 days", func() {
			res := engine.Lead(model.Lead{CreatedAt: fixedNow.Add(-31 * 24 * time.Hour)})

			Convey("Then recency contributes nothing", func() {
				_, ok := res.Breakdown["recentActivity"]
				So(ok, ShouldBeFalse)
				So(res.Total, ShouldEqual, 0)
				So(res.Grade, ShouldEqual, "F")
			})
		})

		Convey("When source and status are unknown or zero-valued", func() {
			res := engine.Lead(model.Lead{Source: "CARRIER_PIGEON", Status: model.LeadUnqualified, Email: "no-at-sign"})

			Convey("Then they leave no breakdown entries", func() {
				So(res.Breakdown, ShouldBeEmpty)
				So(res.Factors, ShouldBeEmpty)
			})
		})

		Convey("When a custom freemail list is configured", func() {
			custom := newEngine(scoring.WithFreemailDomains([]string{"proton"}))

			Convey("Then the domain check follows it", func() {
				So(custom.Lead(model.Lead{Email: "a@proton.me"}).Total, ShouldEqual, 0)
				So(custom.Lead(model.Lead{Email: "a@gmail.com"}).Breakdown["emailDomain"], ShouldEqual, 10)
			})
		})
	})
}

func TestLeadMonotonicity(t *testing.T) {
	Convey("Given a baseline lead", t, func() {
		engine := newEngine()
		base := model.Lead{Email: "x@yahoo.com", Source: model.SourceSocial, Status: model.LeadNew}
		baseline := engine.Lead(base).Total

		Convey("Then adding any single factor never lowers the score", func() {
			variants := []func(l *model.Lead){
				func(l *model.Lead) { l.Phone = "123" },
				func(l *model.Lead) { l.Company = "Acme" },
				func(l *model.Lead) { l.AssignedTo = "rep" },
				func(l *model.Lead) { l.Email = "x@acme.com" },
				func(l *model.Lead) { l.CreatedAt = fixedNow },
			}
			for _, mutate := range variants {
				l := base
				mutate(&l)
				So(engine.Lead(l).Total, ShouldBeGreaterThanOrEqualTo, baseline)
			}
		})
	})
}

func TestContactScoring(t *testing.T) {
	Convey("Given a scoring engine", t, func() {
		engine := newEngine()

		Convey("When a VIP customer has large deals and heavy engagement", func() {
			res := engine.Contact(model.ContactSnapshot{
				Contact:      model.Contact{Status: model.ContactVIP, Type: model.ContactCustomer, Company: "Acme"},
				DealValues:   []float64{30000, 25000},
				Interactions: 12,
			})

			Convey("Then the total is clamped and graded A", func() {
				So(res.Breakdown, ShouldResemble, map[string]int{
					"dealValue": 30, "interactions": 25, "status": 25, "type": 20, "company": 10,
				})
				So(res.Total, ShouldEqual, 100)
				So(res.Grade, ShouldEqual, "A")
			})
		})

		Convey("When tiers sit exactly on their thresholds", func() {
			res := engine.Contact(model.ContactSnapshot{
				Contact:      model.Contact{Status: model.ContactChurned},
				DealValues:   []float64{10000},
				Interactions: 5,
			})

			Convey("Then deal value uses strict and interactions inclusive comparison", func() {
				So(res.Breakdown["dealValue"], ShouldEqual, 10)
				So(res.Breakdown["interactions"], ShouldEqual, 15)
				_, ok := res.Breakdown["status"]
				So(ok, ShouldBeFalse)
				So(res.Total, ShouldEqual, 25)
				So(res.Grade, ShouldEqual, "D")
			})
		})

		Convey("When the contact has no deals and one interaction", func() {
			res := engine.Contact(model.ContactSnapshot{Interactions: 1})

			Convey("Then it scores zero", func() {
				So(res.Total, ShouldEqual, 0)
				So(res.Grade, ShouldEqual, "F")
			})
		})
	})
}

func TestDealScoring(t *testing.T) {
	Convey("Given a scoring engine", t, func() {
		engine := newEngine()
		inDays := func(days int) *time.Time {
			ts := fixedNow.Add(time.Duration(days)*24*time.Hour + time.Hour)
			return &ts
		}

		Convey("When a negotiation deal closes within a month", func() {
			res := engine.Deal(model.Deal{
				Value:             100000,
				Stage:             model.StageNegotiation,
				Priority:          model.PriorityHigh,
				Probability:       80,
				ExpectedCloseDate: inDays(10),
			})

			Convey("Then every factor contributes", func() {
				So(res.Breakdown, ShouldResemble, map[string]int{
					"value": 30, "stage": 30, "priority": 20, "probability": 15, "closeDate": 10,
				})
				So(res.Total, ShouldEqual, 100)
			})
		})

		Convey("When the deal closes this quarter", func() {
			res := engine.Deal(model.Deal{Value: 500, ExpectedCloseDate: inDays(45), Probability: 20})

			Convey("Then close date and low tiers apply", func() {
				So(res.Breakdown, ShouldResemble, map[string]int{"value": 8, "probability": 5, "closeDate": 5})
				So(res.Total, ShouldEqual, 18)
				So(res.Grade, ShouldEqual, "F")
			})
		})

		Convey("When the deal is overdue", func() {
			past := fixedNow.Add(-48 * time.Hour)
			res := engine.Deal(model.Deal{ExpectedCloseDate: &past, Stage: model.StageClosedLost})

			Convey("Then close date and lost stage contribute nothing", func() {
				So(res.Breakdown, ShouldBeEmpty)
			})
		})
	})
}

func TestScoreDispatchAndGrades(t *testing.T) {
	Convey("Given the union input", t, func() {
		engine := newEngine()

		Convey("Then entity type and dispatch follow the populated field", func() {
			lead := model.Lead{Source: model.SourceWebsite}
			in := scoring.Input{Lead: &lead}
			So(in.EntityType(), ShouldEqual, model.EntityLead)
			So(engine.Score(in).Total, ShouldEqual, 20)

			deal := model.Deal{Stage: model.StageProposal}
			So(scoring.Input{Deal: &deal}.EntityType(), ShouldEqual, model.EntityDeal)
			So(engine.Score(scoring.Input{Deal: &deal}).Total, ShouldEqual, 25)

			So(scoring.Input{}.EntityType(), ShouldEqual, "")
			empty := engine.Score(scoring.Input{})
			So(empty.Total, ShouldEqual, 0)
			So(empty.Grade, ShouldEqual, "F")
		})

		Convey("Then grade and band thresholds are fixed", func() {
			So(scoring.Grade(100), ShouldEqual, "A")
			So(scoring.Grade(80), ShouldEqual, "A")
			So(scoring.Grade(79), ShouldEqual, "B")
			So(scoring.Grade(60), ShouldEqual, "B")
			So(scoring.Grade(40), ShouldEqual, "C")
			So(scoring.Grade(20), ShouldEqual, "D")
			So(scoring.Grade(19), ShouldEqual, "F")
			So(scoring.Band(80), ShouldEqual, "HIGH")
			So(scoring.Band(50), ShouldEqual, "MEDIUM")
			So(scoring.Band(49), ShouldEqual, "LOW")
		})

		Convey("Then totals stay in range and match their grade for all rubrics", func() {
			for _, v := range []float64{0, 1, 9999, 10000, 50000, 250000} {
				res := engine.Deal(model.Deal{Value: v, Stage: model.StageClosedWon, Priority: model.PriorityUrgent, Probability: v})
				So(res.Total, ShouldBeBetweenOrEqual, 0, 100)
				So(res.Grade, ShouldEqual, scoring.Grade(res.Total))
			}
		})
	})
}
