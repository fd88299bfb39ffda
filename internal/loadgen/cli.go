package loadgen

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/scorecard/pkg/logger"
)

const logFilePermission = 0600

// SetupLogging logs to both console and file. If logFile is empty, a
// timestamped filename is generated. The returned func closes the file.
func SetupLogging(logFile string, verbose bool) (func() error, error) {
	if logFile == "" {
		logFile = "loadgen_" + time.Now().Format("20060102_150405") + ".log"
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	if err := logger.Init(logger.WithWriter(io.MultiWriter(os.Stdout, file))); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	return file.Close, nil
}

// ShowHelp prints usage information for the load tool.
func ShowHelp() {
	os.Stdout.WriteString(`Scorecard Behavior Load Tool
============================

Submits synthetic visitor sessions to the analytics endpoint and verifies
that every accepted click shows up in the page heatmap.

Usage:
  go run ./cmd/behavior-load [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -page string
        Page id to target (default: loadgen-<timestamp>)
  -sessions int
        Number of visitor sessions (default 500)
  -events int
        Events per session (default 20)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -settle duration
        How long to wait for the heatmap to catch up (default 30s)
  -output string
        Write the generated events to this JSON file
  -log string
        Log file (default: loadgen_TIMESTAMP.log)
  -verbose
        Enable debug logging
  -help
        Show this help message
`)
}
