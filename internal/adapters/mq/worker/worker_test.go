package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/scorecard/internal/adapters/mq/queue"
	worker "github.com/okian/scorecard/internal/adapters/mq/worker"
	"github.com/okian/scorecard/internal/domain/model"
	logging "github.com/okian/scorecard/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockRecorder struct {
	mu     sync.Mutex
	events []model.BehaviorEvent
	fail   map[string]error
}

func newMockRecorder() *mockRecorder {
	return &mockRecorder{fail: make(map[string]error)}
}

func (m *mockRecorder) AppendBehavior(_ context.Context, e model.BehaviorEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.fail[e.ID]; ok {
		return err
	}
	m.events = append(m.events, e)
	return nil
}

func (m *mockRecorder) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func TestPool(t *testing.T) {
	convey.Convey("Given a worker pool over a real queue", t, func() {
		convey.So(logging.Init(), convey.ShouldBeNil)
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		rec := newMockRecorder()
		rec.fail["bad"] = errors.New("disk full")

		var failedMu sync.Mutex
		var failed []string
		pool := worker.NewPool(3, q, rec, worker.WithFailureHook(func(_ context.Context, e model.BehaviorEvent, _ error) {
			failedMu.Lock()
			failed = append(failed, e.ID)
			failedMu.Unlock()
		}))
		pool.Start(ctx)

		convey.Convey("When events are enqueued and the pool shuts down", func() {
			for _, id := range []string{"a", "b", "bad", "c"} {
				convey.So(q.Enqueue(ctx, model.BehaviorEvent{ID: id, SessionID: "s"}), convey.ShouldBeTrue)
			}
			convey.So(pool.Shutdown(ctx), convey.ShouldBeNil)

			convey.Convey("Then every good event is recorded before shutdown returns", func() {
				convey.So(pool.Size(), convey.ShouldEqual, 3)
				convey.So(rec.count(), convey.ShouldEqual, 3)
				convey.So(pool.Processed(), convey.ShouldEqual, 3)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})

			convey.Convey("Then the failure hook sees the rejected event", func() {
				convey.So(failed, convey.ShouldResemble, []string{"bad"})
			})
		})
	})
}

func TestWorkerShutdown(t *testing.T) {
	convey.Convey("Given a single running worker", t, func() {
		convey.So(logging.Init(), convey.ShouldBeNil)
		q := queue.NewInMemoryQueue()
		w := worker.NewInMemoryWorker(q, newMockRecorder(), worker.WithName("solo"))
		go w.Run(context.Background())

		convey.Convey("When it is shut down", func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()

			convey.Convey("Then it stops promptly", func() {
				convey.So(w.Shutdown(ctx), convey.ShouldBeNil)
				convey.So(w.Processed(), convey.ShouldEqual, 0)
			})
		})
	})
}
