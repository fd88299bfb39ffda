package metrics

import (
	"context"
	"runtime"
	"time"
)

// CollectSystem samples runtime memory, goroutine and GC figures every
// interval until ctx is done.
func CollectSystem(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sampleSystem()
	for {
		select {
		case <-ctx.Done():
			return ErrCollectorStopped
		case <-ticker.C:
			sampleSystem()
		}
	}
}

func sampleSystem() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	UpdateSystemMemoryUsage(m.Alloc)
	UpdateSystemGoroutineCount(runtime.NumGoroutine())
	if m.NumGC > 0 {
		UpdateGCPause(m.PauseTotalNs, m.NumGC)
	}
}

// UpdateGCPause records the mean pause across numGC collections.
func UpdateGCPause(totalNs uint64, numGC uint32) {
	if numGC == 0 {
		return
	}
	avgMs := float64(totalNs) / float64(numGC) / float64(time.Millisecond)
	RecordSystemGCPauseTime(avgMs)
}
