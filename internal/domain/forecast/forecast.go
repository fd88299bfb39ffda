// Package forecast predicts sales revenue for a period from historical and
// open deals.
package forecast

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/okian/scorecard/internal/domain/model"
)

// Forecast models.
const (
	Conservative = "conservative"
	Aggressive   = "aggressive"
	Ensemble     = "ensemble"
)

// Defaults for the aged-deal adjustment.
const (
	DefaultAgedAfter          = 90 * 24 * time.Hour
	DefaultConfidenceDiscount = 0.2
	DefaultDealDiscount       = 0.3
)

const (
	conservativeFactor     = 0.8
	aggressiveFactor       = 0.3
	conservativeConfidence = 75
	aggressiveConfidence   = 60
	ensembleConfidence     = 70
	currencyPlaces         = 2
)

// Probability that an open deal in a stage closes. Unknown stages count as 0.
var stageConversion = map[string]float64{
	model.StageProspecting:      0.1,
	model.StageQualification:    0.25,
	model.StageNeedAnalysis:     0.4,
	model.StageValueProposition: 0.6,
	model.StageProposal:         0.75,
	model.StageNegotiation:      0.9,
}

var hundred = decimal.NewFromInt(100)

// Result is a forecast for one period.
type Result struct {
	Period           string  `json:"period"`
	Model            string  `json:"model"`
	PredictedRevenue float64 `json:"predictedRevenue"`
	Confidence       int     `json:"confidence"`
	DealCount        int     `json:"dealCount"`
	AvgDealSize      float64 `json:"avgDealSize"`
	WinRate          int     `json:"winRate"`
}

// Components are the unrounded revenue estimates of each sub-model.
type Components struct {
	Conservative decimal.Decimal
	Aggressive   decimal.Decimal
	StageBased   decimal.Decimal
}

// Mean is the ensemble revenue.
func (c Components) Mean() decimal.Decimal {
	return c.Conservative.Add(c.Aggressive).Add(c.StageBased).Div(decimal.NewFromInt(3))
}

// Forecaster blends revenue models. It is safe for concurrent use.
type Forecaster struct {
	now                func() time.Time
	agedAfter          time.Duration
	confidenceDiscount float64
	dealDiscount       float64
}

// New creates a forecaster with configuration options.
func New(opts ...Option) *Forecaster {
	f := &Forecaster{
		now:                time.Now,
		agedAfter:          DefaultAgedAfter,
		confidenceDiscount: DefaultConfidenceDiscount,
		dealDiscount:       DefaultDealDiscount,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ParseModel normalizes a model name. Empty and unknown names select the
// ensemble.
func ParseModel(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case Conservative:
		return Conservative
	case Aggressive:
		return Aggressive
	default:
		return Ensemble
	}
}

// WinRate is the fraction of historical deals that were won, 0 without history.
func WinRate(historical []model.Deal) float64 {
	if len(historical) == 0 {
		return 0
	}
	won := 0
	for _, d := range historical {
		if d.Status == model.DealWon {
			won++
		}
	}
	return float64(won) / float64(len(historical))
}

// AvgWonDealSize is the mean value of won deals, 0 if none.
func AvgWonDealSize(historical []model.Deal) decimal.Decimal {
	sum := decimal.Zero
	won := int64(0)
	for _, d := range historical {
		if d.Status == model.DealWon {
			sum = sum.Add(decimal.NewFromFloat(d.Value))
			won++
		}
	}
	if won == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(won))
}

// AgedRatio is the share of open deals older than the aged threshold, 0
// when there are no open deals.
func (f *Forecaster) AgedRatio(open []model.Deal) float64 {
	if len(open) == 0 {
		return 0
	}
	now := f.now()
	aged := 0
	for _, d := range open {
		if !d.CreatedAt.IsZero() && now.Sub(d.CreatedAt) > f.agedAfter {
			aged++
		}
	}
	return float64(aged) / float64(len(open))
}

// Components computes each sub-model's revenue.
func (f *Forecaster) Components(historical, open []model.Deal) Components {
	winRate := decimal.NewFromFloat(WinRate(historical))
	total, weighted := pipelineValues(open)

	stage := decimal.Zero
	for _, d := range open {
		rate := stageConversion[d.Stage]
		stage = stage.Add(decimal.NewFromFloat(d.Value).Mul(decimal.NewFromFloat(rate)))
	}

	return Components{
		Conservative: weighted.Mul(winRate).Mul(decimal.NewFromFloat(conservativeFactor)),
		Aggressive:   total.Mul(decimal.NewFromFloat(aggressiveFactor)),
		StageBased:   stage,
	}
}

// Forecast predicts revenue for period with the named model.
func (f *Forecaster) Forecast(period string, historical, open []model.Deal, modelName string) Result {
	name := ParseModel(modelName)
	c := f.Components(historical, open)

	var revenue decimal.Decimal
	var base float64
	switch name {
	case Conservative:
		revenue, base = c.Conservative, conservativeConfidence
	case Aggressive:
		revenue, base = c.Aggressive, aggressiveConfidence
	default:
		revenue, base = c.Mean(), ensembleConfidence
	}

	winRate := WinRate(historical)
	aged := f.AgedRatio(open)
	confidence := base * (1 - aged*f.confidenceDiscount)
	expected := float64(len(open)) * winRate * (1 - aged*f.dealDiscount)

	return Result{
		Period:           period,
		Model:            name,
		PredictedRevenue: revenue.Round(currencyPlaces).InexactFloat64(),
		Confidence:       clampPercent(math.Round(confidence)),
		DealCount:        int(math.Round(expected)),
		AvgDealSize:      AvgWonDealSize(historical).Round(currencyPlaces).InexactFloat64(),
		WinRate:          clampPercent(math.Round(winRate * 100)),
	}
}

// ToModel converts a result into a storable forecast.
func (r Result) ToModel(id string, createdAt time.Time) model.Forecast {
	return model.Forecast{
		ID:               id,
		Period:           r.Period,
		Model:            r.Model,
		PredictedRevenue: r.PredictedRevenue,
		Confidence:       r.Confidence,
		DealCount:        r.DealCount,
		AvgDealSize:      r.AvgDealSize,
		WinRate:          r.WinRate,
		CreatedAt:        createdAt,
	}
}

func pipelineValues(open []model.Deal) (total, weighted decimal.Decimal) {
	total, weighted = decimal.Zero, decimal.Zero
	for _, d := range open {
		v := decimal.NewFromFloat(d.Value)
		total = total.Add(v)
		weighted = weighted.Add(v.Mul(decimal.NewFromFloat(d.Probability)).Div(hundred))
	}
	return total, weighted
}

func clampPercent(v float64) int {
	return int(math.Max(0, math.Min(100, v)))
}
