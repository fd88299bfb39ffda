// Package scoring computes point-table scores and letter grades for CRM entities.
package scoring

import "fmt"

const maxScore = 100

// Grade thresholds, shared by every rubric.
const (
	gradeA = 80
	gradeB = 60
	gradeC = 40
	gradeD = 20
)

// Lead temperature thresholds.
const (
	bandHigh   = 80
	bandMedium = 50
)

// Factor is the contribution of a single rule.
type Factor struct {
	Key    string
	Points int
	Label  string
}

// Result is the outcome of evaluating a rubric.
type Result struct {
	Total     int            `json:"total"`
	Breakdown map[string]int `json:"breakdown"`
	Grade     string         `json:"grade"`
	Factors   []string       `json:"factors"`
}

// Rule inspects an input and reports the factor it contributes, if any.
type Rule[T any] func(T) (Factor, bool)

// Rubric is an ordered list of rules evaluated against one input.
type Rubric[T any] []Rule[T]

// Evaluate applies every rule in order. Rules yielding zero or fewer points
// leave no trace in the breakdown or the factor list.
func (r Rubric[T]) Evaluate(in T) Result {
	res := Result{Breakdown: make(map[string]int), Factors: []string{}}
	sum := 0
	for _, rule := range r {
		f, ok := rule(in)
		if !ok || f.Points <= 0 {
			continue
		}
		sum += f.Points
		res.Breakdown[f.Key] = f.Points
		res.Factors = append(res.Factors, f.Label)
	}
	res.Total = max(0, min(sum, maxScore))
	res.Grade = Grade(res.Total)
	return res
}

// Flag awards points when pred holds.
func Flag[T any](key string, points int, label string, pred func(T) bool) Rule[T] {
	return func(in T) (Factor, bool) {
		if !pred(in) {
			return Factor{}, false
		}
		return Factor{Key: key, Points: points, Label: label}, true
	}
}

// Lookup awards the points a table assigns to an enum value. Unknown values
// contribute nothing. The label is built as "<prefix>: <value>".
func Lookup[T any](key, prefix string, table map[string]int, field func(T) string) Rule[T] {
	return func(in T) (Factor, bool) {
		v := field(in)
		pts, ok := table[v]
		if !ok {
			return Factor{}, false
		}
		return Factor{Key: key, Points: pts, Label: fmt.Sprintf("%s: %s", prefix, v)}, true
	}
}

// Tier is one step of a tiered rule.
type Tier struct {
	Match  func(float64) bool
	Points int
	Label  string
}

// AtLeast matches values greater than or equal to threshold.
func AtLeast(threshold float64) func(float64) bool {
	return func(v float64) bool { return v >= threshold }
}

// Above matches values strictly greater than threshold.
func Above(threshold float64) func(float64) bool {
	return func(v float64) bool { return v > threshold }
}

// Between matches values in the closed range [lo, hi].
func Between(lo, hi float64) func(float64) bool {
	return func(v float64) bool { return v >= lo && v <= hi }
}

// Tiered awards the first matching tier, checked in order. value reports
// false when the measured field is absent.
func Tiered[T any](key string, value func(T) (float64, bool), tiers ...Tier) Rule[T] {
	return func(in T) (Factor, bool) {
		v, ok := value(in)
		if !ok {
			return Factor{}, false
		}
		for _, t := range tiers {
			if t.Match(v) {
				return Factor{Key: key, Points: t.Points, Label: t.Label}, true
			}
		}
		return Factor{}, false
	}
}

// Grade maps a total to a letter.
func Grade(total int) string {
	switch {
	case total >= gradeA:
		return "A"
	case total >= gradeB:
		return "B"
	case total >= gradeC:
		return "C"
	case total >= gradeD:
		return "D"
	default:
		return "F"
	}
}

// Band maps a lead total to its temperature.
func Band(total int) string {
	switch {
	case total >= bandHigh:
		return "HIGH"
	case total >= bandMedium:
		return "MEDIUM"
	default:
		return "LOW"
	}
}
