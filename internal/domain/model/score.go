package model

import "time"

// Scored entity kinds.
const (
	EntityLead    = "lead"
	EntityContact = "contact"
	EntityDeal    = "deal"
)

// ScoreRecord is the persisted result of scoring one entity.
type ScoreRecord struct {
	EntityType     string         `json:"entityType"`
	EntityID       string         `json:"entityId"`
	Score          int            `json:"score"`
	Grade          string         `json:"grade"`
	Breakdown      map[string]int `json:"breakdown"`
	Factors        []string       `json:"factors"`
	LastCalculated time.Time      `json:"lastCalculated"`
}

// Key identifies the record in the ranking index.
func (r ScoreRecord) Key() string {
	return r.EntityType + ":" + r.EntityID
}

// Forecast is a persisted sales forecast for one period.
type Forecast struct {
	ID               string    `json:"id"`
	Period           string    `json:"period"`
	Model            string    `json:"model"`
	PredictedRevenue float64   `json:"predictedRevenue"`
	Confidence       int       `json:"confidence"`
	DealCount        int       `json:"dealCount"`
	AvgDealSize      float64   `json:"avgDealSize"`
	WinRate          int       `json:"winRate"`
	CreatedAt        time.Time `json:"createdAt"`
}
