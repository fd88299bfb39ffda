package loadgen

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/okian/scorecard/pkg/logger"
)

const randomFloatDivisor = 1000000

// eventMix weights the generated event types. Clicks are the ones verified.
var eventMix = []string{"CLICK", "CLICK", "CLICK", "MOVE", "MOVE", "SCROLL"}

var elements = []string{"#cta", "#nav-pricing", "#hero img", "footer a", "#signup"}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

func randomIndex(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

// generateEvents builds cfg.Sessions sessions of cfg.EventsPerSession
// events. Each session opens with a page view; timestamps within a session
// are one second apart and end at now.
func generateEvents(ctx context.Context, cfg *Config, stats *Stats) []Event {
	logger.Get().Info(ctx, "generating sessions",
		logger.Int("sessions", cfg.Sessions),
		logger.Int("eventsPerSession", cfg.EventsPerSession))

	now := time.Now().UTC()
	events := make([]Event, 0, cfg.Sessions*cfg.EventsPerSession)
	for s := 0; s < cfg.Sessions; s++ {
		sessionID := uuid.NewString()
		start := now.Add(-time.Duration(cfg.EventsPerSession) * time.Second)
		for i := 0; i < cfg.EventsPerSession; i++ {
			e := generateSingleEvent(cfg.PageID, sessionID, i, start.Add(time.Duration(i)*time.Second))
			if e.EventType == "CLICK" {
				stats.ClicksGenerated++
			}
			events = append(events, e)
		}
	}

	stats.EventsGenerated = len(events)
	logger.Get().Info(ctx, "generated events",
		logger.Int("count", len(events)),
		logger.Int("clicks", stats.ClicksGenerated))
	return events
}

// generateSingleEvent creates the index-th event of a session.
func generateSingleEvent(pageID, sessionID string, index int, ts time.Time) Event {
	e := Event{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		PageID:    pageID,
		PageURL:   "/" + pageID,
		EventType: "PAGE_VIEW",
		Timestamp: ts.Format(time.RFC3339Nano),
	}
	if index == 0 {
		return e
	}

	e.EventType = eventMix[randomIndex(len(eventMix))]
	x := getRandomFloat() * viewportWidth
	y := getRandomFloat() * viewportHeight
	w, h := viewportWidth, viewportHeight
	e.PositionX, e.PositionY = &x, &y
	e.ViewportWidth, e.ViewportHeight = &w, &h
	if e.EventType == "CLICK" {
		e.Element = elements[randomIndex(len(elements))]
	}
	return e
}
