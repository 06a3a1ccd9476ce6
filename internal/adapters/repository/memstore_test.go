package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/firstlevel/internal/adapters/repository"
	"github.com/okian/firstlevel/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemStore(t *testing.T) {
	Convey("Given a new MemStore with a fixed clock", t, func() {
		ctx := context.Background()
		t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		now := t0
		store := repository.NewMemStore(ctx, repository.WithClock(func() time.Time { return now }))
		defer func() { _ = store.Close() }()

		Convey("When putting a pending design", func() {
			err := store.Put(ctx, repository.Design{ID: "d1", Subject: "sub-01", Run: "1", Status: repository.StatusPending})

			Convey("Then it can be read back with timestamps set", func() {
				So(err, ShouldBeNil)
				d, err := store.Get(ctx, "d1")
				So(err, ShouldBeNil)
				So(d.Status, ShouldEqual, repository.StatusPending)
				So(d.CreatedAt, ShouldEqual, t0)
				So(d.UpdatedAt, ShouldEqual, t0)
				So(store.Count(ctx), ShouldEqual, 1)
			})

			Convey("And replacing it keeps CreatedAt and position", func() {
				now = t0.Add(time.Minute)
				m := model.NewConditionModel([]string{"A"}, [][]float64{{1}}, [][]float64{{2}})
				So(store.Put(ctx, repository.Design{ID: "d1", Subject: "sub-01", Status: repository.StatusReady, Model: m, Trials: 1}), ShouldBeNil)

				d, err := store.Get(ctx, "d1")
				So(err, ShouldBeNil)
				So(d.Status, ShouldEqual, repository.StatusReady)
				So(d.Model.Conditions(), ShouldResemble, []string{"A"})
				So(d.CreatedAt, ShouldEqual, t0)
				So(d.UpdatedAt, ShouldEqual, now)
				So(store.Count(ctx), ShouldEqual, 1)
			})
		})

		Convey("When getting an unknown id", func() {
			_, err := store.Get(ctx, "missing")

			Convey("Then it returns ErrNotFound", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When putting a design without an id", func() {
			err := store.Put(ctx, repository.Design{})

			Convey("Then it is rejected", func() {
				So(errors.Is(err, repository.ErrInvalidID), ShouldBeTrue)
			})
		})

		Convey("When listing designs for several subjects", func() {
			for i, subj := range []string{"sub-01", "sub-02", "sub-01"} {
				So(store.Put(ctx, repository.Design{ID: fmt.Sprintf("d%d", i), Subject: subj}), ShouldBeNil)
			}

			Convey("Then List keeps insertion order and filters by subject", func() {
				all, err := store.List(ctx, "")
				So(err, ShouldBeNil)
				So(len(all), ShouldEqual, 3)
				So(all[0].ID, ShouldEqual, "d0")
				So(all[2].ID, ShouldEqual, "d2")

				sub1, err := store.List(ctx, "sub-01")
				So(err, ShouldBeNil)
				So(len(sub1), ShouldEqual, 2)
				So(sub1[1].ID, ShouldEqual, "d2")
			})
		})

		Convey("When deleting a design", func() {
			So(store.Put(ctx, repository.Design{ID: "gone"}), ShouldBeNil)
			So(store.Delete(ctx, "gone"), ShouldBeNil)

			Convey("Then it is no longer found and a repeat delete is a no-op", func() {
				_, err := store.Get(ctx, "gone")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				So(store.Delete(ctx, "gone"), ShouldBeNil)
				So(store.Count(ctx), ShouldEqual, 0)
			})
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			Convey("Then operations report the context error", func() {
				So(errors.Is(store.Put(cctx, repository.Design{ID: "x"}), context.Canceled), ShouldBeTrue)
				_, err := store.Get(cctx, "x")
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})

	Convey("Given a bounded store", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore(ctx, repository.WithMaxDesigns(2))
		defer func() { _ = store.Close() }()

		for _, id := range []string{"a", "b", "c"} {
			So(store.Put(ctx, repository.Design{ID: id}), ShouldBeNil)
		}

		Convey("Then the oldest design is evicted", func() {
			So(store.Count(ctx), ShouldEqual, 2)
			_, err := store.Get(ctx, "a")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			_, err = store.Get(ctx, "c")
			So(err, ShouldBeNil)
		})
	})

	Convey("Given concurrent writers", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore(ctx, repository.WithMetricsUpdateInterval(time.Millisecond))

		var wg sync.WaitGroup
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func(g int) {
				defer wg.Done()
				for i := 0; i < 50; i++ {
					_ = store.Put(ctx, repository.Design{ID: fmt.Sprintf("%d-%d", g, i)})
					_, _ = store.List(ctx, "")
				}
			}(g)
		}
		wg.Wait()

		Convey("Then every design is stored and Close is idempotent", func() {
			So(store.Count(ctx), ShouldEqual, 400)
			So(store.Close(), ShouldBeNil)
			So(store.Close(), ShouldBeNil)
		})
	})
}
