package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryQueue(t *testing.T) {
	Convey("Given a queue with capacity 2", t, func() {
		ctx := context.Background()
		q := NewInMemoryQueue(WithCapacity(2))

		Convey("It starts empty and open", func() {
			So(q.Len(ctx), ShouldEqual, 0)
			So(q.IsClosed(), ShouldBeFalse)
		})

		Convey("When a job is enqueued", func() {
			So(q.Enqueue(ctx, Job{ID: "d1", Payload: []byte("x")}), ShouldBeNil)
			So(q.Len(ctx), ShouldEqual, 1)

			Convey("Then it can be dequeued", func() {
				j := <-q.Dequeue(ctx)
				So(j.ID, ShouldEqual, "d1")
				So(string(j.Payload), ShouldEqual, "x")
			})
		})

		Convey("When the queue is full", func() {
			So(q.Enqueue(ctx, Job{ID: "1"}), ShouldBeNil)
			So(q.Enqueue(ctx, Job{ID: "2"}), ShouldBeNil)
			err := q.Enqueue(ctx, Job{ID: "3"})

			Convey("Then enqueue fails with ErrFull", func() {
				So(errors.Is(err, ErrFull), ShouldBeTrue)
				So(IsBackpressure(err), ShouldBeTrue)
				So(q.Len(ctx), ShouldEqual, 2)
			})
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			Convey("Then enqueue reports the context error", func() {
				err := q.Enqueue(cctx, Job{ID: "1"})
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				So(IsBackpressure(err), ShouldBeFalse)
			})
		})

		Convey("When closed with pending jobs", func() {
			So(q.Enqueue(ctx, Job{ID: "1"}), ShouldBeNil)
			So(q.Close(), ShouldBeNil)

			Convey("Then new jobs are refused", func() {
				So(errors.Is(q.Enqueue(ctx, Job{ID: "2"}), ErrClosed), ShouldBeTrue)
				So(q.IsClosed(), ShouldBeTrue)
				So(q.Close(), ShouldBeNil)
			})

			Convey("Then pending jobs drain before the channel closes", func() {
				var ids []string
				timeout := time.After(time.Second)
				ch := q.Dequeue(ctx)
			loop:
				for {
					select {
					case j, ok := <-ch:
						if !ok {
							break loop
						}
						ids = append(ids, j.ID)
					case <-timeout:
						t.Fatal("dequeue channel was not closed")
					}
				}
				So(ids, ShouldResemble, []string{"1"})
			})
		})
	})
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	Convey("Given concurrent producers and consumers", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		q := NewInMemoryQueue(WithCapacity(16))

		const producers, perProducer = 4, 50
		var seen sync.Map
		var consumed sync.WaitGroup
		consumed.Add(producers * perProducer)

		for c := 0; c < 3; c++ {
			go func() {
				for j := range q.Dequeue(ctx) {
					seen.Store(j.ID, true)
					consumed.Done()
				}
			}()
		}

		var wg sync.WaitGroup
		for p := 0; p < producers; p++ {
			wg.Add(1)
			go func(p int) {
				defer wg.Done()
				for i := 0; i < perProducer; i++ {
					j := Job{ID: fmt.Sprintf("%d-%d", p, i)}
					for q.Enqueue(ctx, j) != nil {
						time.Sleep(time.Millisecond)
					}
				}
			}(p)
		}
		wg.Wait()
		consumed.Wait()

		Convey("Then every job is delivered exactly once", func() {
			n := 0
			seen.Range(func(_, _ any) bool { n++; return true })
			So(n, ShouldEqual, producers*perProducer)
			So(q.Len(ctx), ShouldEqual, 0)
		})
	})
}
