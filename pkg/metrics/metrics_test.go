package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given a private registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithLatencyBuckets([]float64{1, 5, 10}),
				WithRegisterer(registry),
			)
			m.scoresComputed.WithLabelValues("lead", "A").Inc()

			Convey("Then metrics are registered under the namespace", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make(map[string]bool)
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["test_unit_scores_computed_total"], ShouldBeTrue)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording engine outcomes", func() {
			before := testutil.ToFloat64(globalManager.scoresComputed.WithLabelValues("deal", "B"))
			RecordScoreComputed("deal", "B")
			RecordABTestCompleted("INCONCLUSIVE")
			RecordForecastGenerated("ensemble")
			RecordABTrack("conversion", "A")

			Convey("Then the counters move", func() {
				So(testutil.ToFloat64(globalManager.scoresComputed.WithLabelValues("deal", "B")), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.abTestsCompleted.WithLabelValues("INCONCLUSIVE")), ShouldBeGreaterThanOrEqualTo, 1)
				So(testutil.ToFloat64(globalManager.forecastsGenerated.WithLabelValues("ensemble")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When updating gauges", func() {
			UpdateQueueSize(7)
			UpdateQueueCapacity(10)
			UpdateRankedEntities(3)

			Convey("Then gauges hold the last value", func() {
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 7)
				So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 10)
				So(testutil.ToFloat64(globalManager.rankedEntities), ShouldEqual, 3)
			})
		})

		Convey("When recording latencies and errors", func() {
			So(func() {
				RecordHTTPRequest("/api/scoring", "POST", "200")
				RecordHTTPRequestDuration("/api/scoring", "POST", "200", 3.5)
				RecordRepositoryQueryLatency("get_lead", 0.2)
				RecordRepositoryUpdateLatency("upsert_score", 0.4)
				RecordErrorByComponent("queue", "queue_full")
				RecordWorkerProcessingLatency(1)
				RecordQueueProcessingLatency(1)
				UpdateGCPause(2_000_000, 2)
				UpdateGCPause(0, 0)
			}, ShouldNotPanic)
		})

		Convey("Then the registry is the custom one", func() {
			So(GetRegistry(), ShouldEqual, customRegistry)
		})
	})
}

func TestCollectSystem(t *testing.T) {
	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		Convey("Then the collector samples once and stops", func() {
			So(CollectSystem(ctx, time.Millisecond), ShouldEqual, ErrCollectorStopped)
			So(testutil.ToFloat64(globalManager.systemGoroutineCount), ShouldBeGreaterThan, 0)
		})
	})
}
