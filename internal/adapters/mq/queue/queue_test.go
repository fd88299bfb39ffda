package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/scorecard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func ev(id string) model.BehaviorEvent {
	return model.BehaviorEvent{ID: id, SessionID: "s", PageID: "p", EventType: model.EventClick}
}

func TestInMemoryQueue(t *testing.T) {
	ctx := context.Background()

	Convey("Given a queue with capacity 2", t, func() {
		q := NewInMemoryQueue(WithCapacity(2))

		Convey("When events are enqueued and dequeued", func() {
			So(q.Len(ctx), ShouldEqual, 0)
			So(q.Enqueue(ctx, ev("e1")), ShouldBeTrue)
			So(q.Len(ctx), ShouldEqual, 1)
			got := <-q.Dequeue(ctx)

			Convey("Then the event passes through", func() {
				So(got.ID, ShouldEqual, "e1")
			})
		})

		Convey("When the queue is full", func() {
			So(q.Enqueue(ctx, ev("e1")), ShouldBeTrue)
			So(q.Enqueue(ctx, ev("e2")), ShouldBeTrue)

			Convey("Then enqueue applies backpressure", func() {
				So(q.Enqueue(ctx, ev("e3")), ShouldBeFalse)
				So(q.Len(ctx), ShouldEqual, 2)
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			Convey("Then nothing is enqueued", func() {
				So(q.Enqueue(cctx, ev("e1")), ShouldBeFalse)
				So(q.Len(ctx), ShouldEqual, 0)
			})
		})

		Convey("When the queue is closed with buffered events", func() {
			So(q.Enqueue(ctx, ev("e1")), ShouldBeTrue)
			So(q.Close(), ShouldBeNil)
			So(q.Close(), ShouldBeNil)

			Convey("Then new events are rejected and buffered ones drain", func() {
				So(q.IsClosed(), ShouldBeTrue)
				So(q.Enqueue(ctx, ev("e2")), ShouldBeFalse)

				var ids []string
				timeout := time.After(time.Second)
				ch := q.Dequeue(ctx)
			loop:
				for {
					select {
					case e, ok := <-ch:
						if !ok {
							break loop
						}
						ids = append(ids, e.ID)
					case <-timeout:
						break loop
					}
				}
				So(ids, ShouldResemble, []string{"e1"})
			})
		})
	})
}

func TestInMemoryQueueConcurrency(t *testing.T) {
	Convey("Given concurrent producers and consumers", t, func() {
		ctx := context.Background()
		q := NewInMemoryQueue(WithCapacity(50))
		const producers, perProducer = 5, 100

		var consumed sync.WaitGroup
		var mu sync.Mutex
		seen := make(map[string]bool)
		for i := 0; i < 3; i++ {
			consumed.Add(1)
			go func() {
				defer consumed.Done()
				for e := range q.Dequeue(ctx) {
					mu.Lock()
					seen[e.ID] = true
					mu.Unlock()
				}
			}()
		}

		var produced sync.WaitGroup
		for p := 0; p < producers; p++ {
			produced.Add(1)
			go func(p int) {
				defer produced.Done()
				for j := 0; j < perProducer; j++ {
					for !q.Enqueue(ctx, ev(fmt.Sprintf("e%d_%d", p, j))) {
						time.Sleep(time.Millisecond)
					}
				}
			}(p)
		}
		produced.Wait()
		So(q.Close(), ShouldBeNil)
		consumed.Wait()

		Convey("Then every event is consumed exactly once", func() {
			So(len(seen), ShouldEqual, producers*perProducer)
		})
	})
}
