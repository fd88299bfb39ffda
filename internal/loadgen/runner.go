package loadgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/scorecard/pkg/logger"
)

const directoryPermission = 0750

// ErrClickMismatch reports that the heatmap never matched the accepted clicks.
var ErrClickMismatch = errors.New("heatmap click total does not match accepted clicks")

// Run executes a complete load run and returns its statistics.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	applyDefaults(cfg)
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("loadgen")

	log.Info(ctx, "starting behavior load run",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("page", cfg.PageID),
		logger.Int("sessions", cfg.Sessions),
		logger.Int("eventsPerSession", cfg.EventsPerSession),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout))

	if err := checkServiceHealth(ctx, cfg); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	events := generateEvents(ctx, cfg, stats)
	submitEvents(ctx, cfg, events, stats)

	if err := verifyHeatmap(ctx, cfg, stats); err != nil {
		return stats, fmt.Errorf("result verification failed: %w", err)
	}

	if cfg.OutputFile != "" {
		if err := saveEventsToFile(ctx, cfg.OutputFile, events); err != nil {
			log.Warn(ctx, "failed to save events to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)
	return stats, nil
}

func applyDefaults(cfg *Config) {
	if cfg.PageID == "" {
		cfg.PageID = fmt.Sprintf("loadgen-%d", time.Now().UnixNano())
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Settle <= 0 {
		cfg.Settle = DefaultSettle
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, cfg *Config) error {
	client := newHTTPClient(cfg.Timeout)
	var health struct {
		Status string `json:"status"`
	}
	if err := client.getJSON(ctx, cfg.BaseURL+"/healthz", &health); err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if health.Status != "ok" {
		return fmt.Errorf("service reports %q", health.Status)
	}
	return nil
}

// verifyHeatmap polls the heatmap of the run's page until its click total
// equals the accepted clicks or cfg.Settle elapses.
func verifyHeatmap(ctx context.Context, cfg *Config, stats *Stats) error {
	client := newHTTPClient(cfg.Timeout)
	reportURL := fmt.Sprintf("%s/api/analytics?type=heatmap&period=7d&pageId=%s", cfg.BaseURL, url.QueryEscape(cfg.PageID))

	deadline := time.Now().Add(cfg.Settle)
	for {
		var report heatmapReport
		if err := client.getJSON(ctx, reportURL, &report); err != nil {
			return err
		}
		stats.ClicksReported = report.Data.TotalClicks
		if report.Data.TotalClicks == stats.ClicksAccepted {
			logger.Get().Info(ctx, "heatmap verified", logger.Int("clicks", report.Data.TotalClicks))
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: reported %d, accepted %d", ErrClickMismatch, report.Data.TotalClicks, stats.ClicksAccepted)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cfg.PollInterval):
		}
	}
}

// saveEventsToFile writes the generated events as a JSON array.
func saveEventsToFile(ctx context.Context, filename string, events []Event) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal events: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	logger.Get().Info(ctx, "events saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, eventsPerSecond float64
	if stats.EventsSubmitted > 0 {
		successRate = float64(stats.EventsAccepted) / float64(stats.EventsSubmitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		eventsPerSecond = float64(stats.EventsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("eventsGenerated", stats.EventsGenerated),
		logger.Int("eventsSubmitted", stats.EventsSubmitted),
		logger.Int("eventsAccepted", stats.EventsAccepted),
		logger.Int("eventsDuplicate", stats.EventsDuplicate),
		logger.Int("eventsRetried", stats.EventsRetried),
		logger.Int("eventsFailed", stats.EventsFailed),
		logger.Int("clicksAccepted", stats.ClicksAccepted),
		logger.Int("clicksReported", stats.ClicksReported),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("eventsPerSecond", eventsPerSecond))
}
