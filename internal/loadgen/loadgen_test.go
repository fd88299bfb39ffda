package loadgen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/scorecard/internal/adapters/http/api"
	service "github.com/okian/scorecard/internal/app"
	"github.com/okian/scorecard/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestGenerateEvents(t *testing.T) {
	Convey("Given a run of 3 sessions with 5 events each", t, func() {
		cfg := &Config{PageID: "pricing", Sessions: 3, EventsPerSession: 5}
		stats := &Stats{}

		events := generateEvents(context.Background(), cfg, stats)

		Convey("Then every session opens with a page view", func() {
			So(events, ShouldHaveLength, 15)
			So(stats.EventsGenerated, ShouldEqual, 15)
			for i := 0; i < 3; i++ {
				So(events[i*5].EventType, ShouldEqual, "PAGE_VIEW")
				So(events[i*5].PositionX, ShouldBeNil)
			}
		})

		Convey("Then positioned events stay inside the viewport", func() {
			clicks := 0
			for _, e := range events {
				So(e.PageID, ShouldEqual, "pricing")
				if e.EventType == "CLICK" {
					clicks++
				}
				if e.EventType == "PAGE_VIEW" {
					continue
				}
				So(*e.PositionX, ShouldBeBetweenOrEqual, 0, viewportWidth)
				So(*e.PositionY, ShouldBeBetweenOrEqual, 0, viewportHeight)
			}
			So(stats.ClicksGenerated, ShouldEqual, clicks)
		})

		Convey("Then event ids are unique", func() {
			seen := map[string]bool{}
			for _, e := range events {
				So(seen[e.ID], ShouldBeFalse)
				seen[e.ID] = true
			}
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running service behind an HTTP server", t, func() {
		svc := service.New(service.WithDBPath(":memory:"), service.WithWorkerCount(2))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		mux := http.NewServeMux()
		api.NewServer(svc).Register(context.Background(), mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		out := filepath.Join(t.TempDir(), "events", "run.json")
		cfg := &Config{
			BaseURL:          srv.URL,
			Sessions:         4,
			EventsPerSession: 6,
			Workers:          3,
			Timeout:          5 * time.Second,
			Settle:           5 * time.Second,
			PollInterval:     20 * time.Millisecond,
			OutputFile:       out,
		}

		Convey("When the load run completes", func() {
			stats, err := Run(context.Background(), cfg)

			Convey("Then every event is accepted and the heatmap matches", func() {
				So(err, ShouldBeNil)
				So(stats.EventsSubmitted, ShouldEqual, 24)
				So(stats.EventsAccepted, ShouldEqual, 24)
				So(stats.EventsFailed, ShouldEqual, 0)
				So(stats.ClicksAccepted, ShouldEqual, stats.ClicksGenerated)
				So(stats.ClicksReported, ShouldEqual, stats.ClicksAccepted)
			})

			Convey("Then the events are written to the output file", func() {
				data, err := os.ReadFile(out)
				So(err, ShouldBeNil)
				var saved []Event
				So(json.Unmarshal(data, &saved), ShouldBeNil)
				So(saved, ShouldHaveLength, 24)
			})
		})
	})

	Convey("Given a service that is down", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		Convey("Then the run fails the health check", func() {
			_, err := Run(context.Background(), &Config{BaseURL: srv.URL, Sessions: 1, EventsPerSession: 1, Timeout: time.Second})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "health check")
		})
	})
}
