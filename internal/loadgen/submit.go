package loadgen

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/scorecard/pkg/logger"
)

type outcome int

const (
	outcomeAccepted outcome = iota
	outcomeDuplicate
	outcomeBackpressure
	outcomeFailed
)

// submitEvents posts events concurrently. Backpressured events are retried
// with a linear backoff.
func submitEvents(ctx context.Context, cfg *Config, events []Event, stats *Stats) {
	log := logger.Get().Named("loadgen")
	log.Info(ctx, "submitting events", logger.Int("events", len(events)), logger.Int("workers", cfg.Workers))

	client := newHTTPClient(cfg.Timeout)
	url := cfg.BaseURL + "/api/analytics/events"

	var accepted, duplicate, retried, failed, submitted, clicks int64

	eventChan := make(chan Event, cfg.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for event := range eventChan {
				res, attempts := submitWithRetry(ctx, client, url, event)
				atomic.AddInt64(&submitted, 1)
				atomic.AddInt64(&retried, int64(attempts-1))
				switch res {
				case outcomeAccepted:
					atomic.AddInt64(&accepted, 1)
					if event.EventType == "CLICK" {
						atomic.AddInt64(&clicks, 1)
					}
				case outcomeDuplicate:
					atomic.AddInt64(&duplicate, 1)
				default:
					atomic.AddInt64(&failed, 1)
					if cfg.Verbose {
						log.Warn(ctx, "event not accepted", logger.String("event", event.ID))
					}
				}
			}
		}()
	}

	func() {
		defer close(eventChan)
		for _, event := range events {
			select {
			case <-ctx.Done():
				return
			case eventChan <- event:
			}
		}
	}()
	wg.Wait()

	stats.EventsSubmitted = int(submitted)
	stats.EventsAccepted = int(accepted)
	stats.EventsDuplicate = int(duplicate)
	stats.EventsRetried = int(retried)
	stats.EventsFailed = int(failed)
	stats.ClicksAccepted = int(clicks)

	log.Info(ctx, "event submission completed",
		logger.Int("accepted", stats.EventsAccepted),
		logger.Int("duplicate", stats.EventsDuplicate),
		logger.Int("retried", stats.EventsRetried),
		logger.Int("failed", stats.EventsFailed))
}

func submitWithRetry(ctx context.Context, client *HTTPClient, url string, event Event) (outcome, int) {
	for attempt := 1; ; attempt++ {
		res := submitSingleEvent(ctx, client, url, event)
		if res != outcomeBackpressure || attempt == MaxSubmitAttempts {
			return res, attempt
		}
		select {
		case <-ctx.Done():
			return outcomeFailed, attempt
		case <-time.After(time.Duration(attempt) * RetryBackoff):
		}
	}
}

// submitSingleEvent submits a single event and classifies the response.
func submitSingleEvent(ctx context.Context, client *HTTPClient, url string, event Event) outcome {
	resp, err := client.Post(ctx, url, event)
	if err != nil {
		return outcomeFailed
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return outcomeFailed
	}

	switch resp.StatusCode {
	case StatusAccepted:
		return outcomeAccepted
	case StatusOK:
		var ack AckResponse
		if err := json.Unmarshal(body, &ack); err == nil && !ack.Duplicate {
			return outcomeAccepted
		}
		return outcomeDuplicate
	case StatusTooManyRequests:
		return outcomeBackpressure
	default:
		return outcomeFailed
	}
}
