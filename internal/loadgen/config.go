// Package loadgen drives synthetic visitor sessions against a running
// service and checks that every accepted click reaches the heatmap.
package loadgen

import "time"

// Config holds configuration for a load run.
type Config struct {
	BaseURL          string        // Base URL of the service
	PageID           string        // Page the sessions interact with; generated when empty
	Sessions         int           // Number of visitor sessions
	EventsPerSession int           // Events per session
	Workers          int           // Number of concurrent submitters
	Timeout          time.Duration // HTTP request timeout
	Settle           time.Duration // How long to wait for the report to catch up
	PollInterval     time.Duration // Delay between report polls
	OutputFile       string        // Output file for events
	Verbose          bool          // Enable verbose logging
}

// Event mirrors the POST /api/analytics/events body.
type Event struct {
	ID             string   `json:"id"`
	SessionID      string   `json:"sessionId"`
	PageID         string   `json:"pageId"`
	PageURL        string   `json:"pageUrl"`
	EventType      string   `json:"eventType"`
	Element        string   `json:"element,omitempty"`
	PositionX      *float64 `json:"positionX,omitempty"`
	PositionY      *float64 `json:"positionY,omitempty"`
	ViewportWidth  *float64 `json:"viewportWidth,omitempty"`
	ViewportHeight *float64 `json:"viewportHeight,omitempty"`
	Timestamp      string   `json:"timestamp"`
}

// AckResponse represents the response from event submission.
type AckResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// heatmapReport is the part of GET /api/analytics?type=heatmap we check.
type heatmapReport struct {
	Type string `json:"type"`
	Data struct {
		TotalClicks    int `json:"totalClicks"`
		TotalMovements int `json:"totalMovements"`
		TotalScrolls   int `json:"totalScrolls"`
	} `json:"data"`
}

// Stats holds run statistics.
type Stats struct {
	EventsGenerated int
	ClicksGenerated int
	EventsSubmitted int
	EventsAccepted  int
	EventsDuplicate int
	EventsRetried   int
	EventsFailed    int
	ClicksAccepted  int
	ClicksReported  int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
