package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/scorecard/internal/loadgen"
)

// Default configuration constants.
const (
	defaultSessions         = 500
	defaultEventsPerSession = 20
	defaultWorkers          = 2 // multiplier for runtime.NumCPU()
	defaultTimeout          = 30 * time.Second
	defaultRunTimeout       = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		pageID     = flag.String("page", "", "Page id to target (default: loadgen-<timestamp>)")
		sessions   = flag.Int("sessions", defaultSessions, "Number of visitor sessions")
		events     = flag.Int("events", defaultEventsPerSession, "Events per session")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		settle     = flag.Duration("settle", loadgen.DefaultSettle, "How long to wait for the heatmap to catch up")
		outputFile = flag.String("output", "", "Write the generated events to this JSON file")
		logFile    = flag.String("log", "", "Log file (default: loadgen_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable debug logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadgen.ShowHelp()
		return
	}

	closeLog, err := loadgen.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = closeLog() }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	_, err = loadgen.Run(ctx, &loadgen.Config{
		BaseURL:          *baseURL,
		PageID:           *pageID,
		Sessions:         *sessions,
		EventsPerSession: *events,
		Workers:          *workers,
		Timeout:          *timeout,
		Settle:           *settle,
		OutputFile:       *outputFile,
		Verbose:          *verbose,
	})
	if err != nil {
		os.Stderr.WriteString("Load run failed: " + err.Error() + "\n")
		cancel()
		_ = closeLog()
		os.Exit(1)
	}
}
