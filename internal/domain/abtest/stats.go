// Package abtest computes conversion statistics and significance for A/B tests.
package abtest

import (
	"math"

	"github.com/okian/scorecard/internal/domain/model"
)

// Verdict values.
const (
	WinnerA       = model.VariantA
	WinnerB       = model.VariantB
	Inconclusive  = "INCONCLUSIVE"
	maxConfidence = 100
)

// Snapshot holds the raw counters of a test.
type Snapshot struct {
	ImpressionsA int64
	ImpressionsB int64
	ConversionsA int64
	ConversionsB int64
}

// SnapshotOf extracts the counters from a stored test.
func SnapshotOf(t model.ABTest) Snapshot {
	return Snapshot{
		ImpressionsA: t.ImpressionsA,
		ImpressionsB: t.ImpressionsB,
		ConversionsA: t.ConversionsA,
		ConversionsB: t.ConversionsB,
	}
}

// Stats are the derived percentages of a test, rounded to 2 decimals.
type Stats struct {
	ConversionRateA       float64 `json:"conversionRateA"`
	ConversionRateB       float64 `json:"conversionRateB"`
	TotalImpressions      int64   `json:"totalImpressions"`
	TotalConversions      int64   `json:"totalConversions"`
	OverallConversionRate float64 `json:"overallConversionRate"`
	Improvement           float64 `json:"improvement"`
}

// Verdict is the outcome recorded when a test completes.
type Verdict struct {
	Winner     string `json:"winner"`
	Confidence int    `json:"confidence"`
}

// ComputeStats derives conversion rates and the relative improvement of B
// over A. Improvement uses the unrounded rates and is 0 when A has no
// conversions.
func ComputeStats(s Snapshot) Stats {
	rateA := rate(s.ConversionsA, s.ImpressionsA)
	rateB := rate(s.ConversionsB, s.ImpressionsB)
	totalImp := s.ImpressionsA + s.ImpressionsB
	totalConv := s.ConversionsA + s.ConversionsB

	improvement := 0.0
	if rateA > 0 {
		improvement = math.Round((rateB-rateA)/rateA*10000) / 100
	}

	return Stats{
		ConversionRateA:       Round2(rateA),
		ConversionRateB:       Round2(rateB),
		TotalImpressions:      totalImp,
		TotalConversions:      totalConv,
		OverallConversionRate: Round2(rate(totalConv, totalImp)),
		Improvement:           improvement,
	}
}

// DetermineWinner picks the variant with the strictly greater rounded rate.
func DetermineWinner(st Stats) string {
	switch {
	case st.ConversionRateA > st.ConversionRateB:
		return WinnerA
	case st.ConversionRateB > st.ConversionRateA:
		return WinnerB
	default:
		return Inconclusive
	}
}

// ComputeConfidence runs a two-proportion Z-test and returns the two-sided
// confidence as an integer percentage in [0,100].
func ComputeConfidence(s Snapshot, st Stats) int {
	if s.ImpressionsA == 0 || s.ImpressionsB == 0 {
		return 0
	}
	n1 := float64(s.ImpressionsA)
	n2 := float64(s.ImpressionsB)
	pooled := float64(s.ConversionsA+s.ConversionsB) / (n1 + n2)
	se := math.Sqrt(pooled * (1 - pooled) * (1/n1 + 1/n2))
	if se == 0 || math.IsNaN(se) {
		return 0
	}

	p1 := st.ConversionRateA / 100
	p2 := st.ConversionRateB / 100
	z := math.Abs(p1-p2) / se
	c := int(math.Round((1 - 2*(1-NormalCDF(z))) * 100))
	return max(0, min(maxConfidence, c))
}

// Evaluate computes stats and the verdict in one pass.
func Evaluate(s Snapshot) (Stats, Verdict) {
	st := ComputeStats(s)
	return st, Verdict{Winner: DetermineWinner(st), Confidence: ComputeConfidence(s, st)}
}

// Round2 rounds half away from zero at the hundredths place.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func rate(conversions, impressions int64) float64 {
	if impressions <= 0 {
		return 0
	}
	return float64(conversions) / float64(impressions) * 100
}
