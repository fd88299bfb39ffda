package model

import "time"

// A/B test lifecycle states.
const (
	ABTestDraft     = "DRAFT"
	ABTestRunning   = "RUNNING"
	ABTestCompleted = "COMPLETED"
)

// Variant names.
const (
	VariantA = "A"
	VariantB = "B"
)

// ABTest is a split test between two page variants.
// Winner and Confidence are set once, when the test completes.
type ABTest struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	PageID       string     `json:"pageId"`
	VariantA     string     `json:"variantA"`
	VariantB     string     `json:"variantB"`
	TrafficSplit int        `json:"trafficSplit"`
	Status       string     `json:"status"`
	ImpressionsA int64      `json:"impressionsA"`
	ImpressionsB int64      `json:"impressionsB"`
	ConversionsA int64      `json:"conversionsA"`
	ConversionsB int64      `json:"conversionsB"`
	Winner       string     `json:"winner,omitempty"`
	Confidence   *int       `json:"confidence,omitempty"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	EndDate      *time.Time `json:"endDate,omitempty"`
	CreatedBy    string     `json:"createdBy"`
	CreatedAt    time.Time  `json:"createdAt"`
}
