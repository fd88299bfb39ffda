// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and SCORECARD_* environment variables on top.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"runtime"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite database file; ":memory:" keeps everything in RAM.
	DBPath string `koanf:"db_path"`

	// DBWAL enables write-ahead logging on file databases.
	DBWAL bool `koanf:"db_wal"`

	// EventQueueSize bounds the in-memory behavior event queue.
	EventQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of behavior ingestion workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxPageLimit caps ?limit on list endpoints.
	MaxPageLimit int `koanf:"max_page_limit"`

	// ScoreCacheTTL is how long a computed score is reused before recalculation.
	ScoreCacheTTL time.Duration `koanf:"score_cache_ttl"`

	HeatmapGridSize  int `koanf:"heatmap_grid_size"`
	SessionFlowLimit int `koanf:"session_flow_limit"`

	// AgedDealDays marks open deals older than this many days as aged.
	AgedDealDays int `koanf:"aged_deal_days"`
	// AgedConfidenceDiscount and AgedDealDiscount scale forecast confidence
	// and expected deal count by the aged ratio.
	AgedConfidenceDiscount float64 `koanf:"aged_confidence_discount"`
	AgedDealDiscount       float64 `koanf:"aged_deal_discount"`

	// FreemailDomains lists substrings of email domains that earn no
	// professional-domain points.
	FreemailDomains []string `koanf:"freemail_domains"`

	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		Addr:                   ":9080",
		DBPath:                 "data/scorecard.db",
		EventQueueSize:         10_000,
		WorkerCount:            runtime.NumCPU(),
		DedupeSize:             50_000,
		MaxPageLimit:           100,
		ScoreCacheTTL:          24 * time.Hour,
		HeatmapGridSize:        50,
		SessionFlowLimit:       100,
		AgedDealDays:           90,
		AgedConfidenceDiscount: 0.2,
		AgedDealDiscount:       0.3,
		FreemailDomains:        []string{"gmail", "yahoo", "hotmail"},
		ShutdownTimeout:        10 * time.Second,
	}
}
