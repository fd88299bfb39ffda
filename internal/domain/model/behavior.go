package model

import "time"

// Behavior event types.
const (
	EventClick    = "CLICK"
	EventMove     = "MOVE"
	EventScroll   = "SCROLL"
	EventPageView = "PAGE_VIEW"
)

// BehaviorEvent is a single visitor interaction on a page.
// Position and viewport are optional; nil means not captured.
type BehaviorEvent struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"sessionId"`
	PageID         string    `json:"pageId"`
	PageURL        string    `json:"pageUrl,omitempty"`
	EventType      string    `json:"eventType"`
	Element        string    `json:"element,omitempty"`
	PositionX      *float64  `json:"positionX,omitempty"`
	PositionY      *float64  `json:"positionY,omitempty"`
	ViewportWidth  *float64  `json:"viewportWidth,omitempty"`
	ViewportHeight *float64  `json:"viewportHeight,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}
