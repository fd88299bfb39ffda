package forecast

import (
	"github.com/shopspring/decimal"

	"github.com/okian/scorecard/internal/domain/model"
)

// PipelineMetrics summarizes the current open pipeline.
type PipelineMetrics struct {
	TotalPipelineValue    float64        `json:"totalPipelineValue"`
	WeightedPipelineValue float64        `json:"weightedPipelineValue"`
	TotalDeals            int            `json:"totalDeals"`
	AvgDealSize           float64        `json:"avgDealSize"`
	DealsByStage          map[string]int `json:"dealsByStage"`
}

// Pipeline aggregates open deals.
func Pipeline(open []model.Deal) PipelineMetrics {
	total, weighted := pipelineValues(open)
	byStage := make(map[string]int)
	for _, d := range open {
		byStage[d.Stage]++
	}

	avg := decimal.Zero
	if len(open) > 0 {
		avg = total.Div(decimal.NewFromInt(int64(len(open))))
	}

	return PipelineMetrics{
		TotalPipelineValue:    total.Round(currencyPlaces).InexactFloat64(),
		WeightedPipelineValue: weighted.Round(currencyPlaces).InexactFloat64(),
		TotalDeals:            len(open),
		AvgDealSize:           avg.Round(currencyPlaces).InexactFloat64(),
		DealsByStage:          byStage,
	}
}
