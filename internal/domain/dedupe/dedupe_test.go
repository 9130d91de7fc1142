package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ecliptiq/transits/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSeenAndRecord(t *testing.T) {
	Convey("Given a fresh deduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemory()

		Convey("Then the first submission of an id is recorded", func() {
			So(d.SeenAndRecord(ctx, "q-1"), ShouldBeFalse)
			So(d.Size(), ShouldEqual, 1)
		})

		Convey("Then a resubmission is reported as a duplicate", func() {
			So(d.SeenAndRecord(ctx, "q-1"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "q-1"), ShouldBeTrue)
			So(d.Size(), ShouldEqual, 1)
		})

		Convey("Then distinct ids do not collide", func() {
			So(d.SeenAndRecord(ctx, "q-1"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "q-2"), ShouldBeFalse)
			So(d.Size(), ShouldEqual, 2)
		})
	})
}

func TestUnrecord(t *testing.T) {
	Convey("Given a recorded id", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemory()
		So(d.SeenAndRecord(ctx, "q-1"), ShouldBeFalse)

		Convey("When the id is unrecorded", func() {
			d.Unrecord(ctx, "q-1")

			Convey("Then it may be submitted again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "q-1"), ShouldBeFalse)
			})
		})

		Convey("When an unknown id is unrecorded", func() {
			d.Unrecord(ctx, "q-unknown")

			Convey("Then nothing changes", func() {
				So(d.Size(), ShouldEqual, 1)
			})
		})
	})
}

func TestBoundedEviction(t *testing.T) {
	Convey("Given a deduper with capacity 3", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemory(dedupe.WithCapacity(3))

		for i := 1; i <= 3; i++ {
			So(d.SeenAndRecord(ctx, fmt.Sprintf("q-%d", i)), ShouldBeFalse)
		}

		Convey("When a fourth id arrives", func() {
			So(d.SeenAndRecord(ctx, "q-4"), ShouldBeFalse)

			Convey("Then the oldest id was evicted and may be re-admitted", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "q-1"), ShouldBeFalse)
			})

			Convey("Then the newer ids are still remembered", func() {
				So(d.SeenAndRecord(ctx, "q-3"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "q-4"), ShouldBeTrue)
			})
		})

		Convey("When an id is unrecorded and later re-added", func() {
			d.Unrecord(ctx, "q-2")
			So(d.SeenAndRecord(ctx, "q-4"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "q-2"), ShouldBeFalse)

			Convey("Then the re-added id survives the next eviction cycle", func() {
				So(d.SeenAndRecord(ctx, "q-5"), ShouldBeFalse)
				So(d.SeenAndRecord(ctx, "q-2"), ShouldBeTrue)
			})
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemory(dedupe.WithCapacity(0))

		for i := 0; i < 1000; i++ {
			So(d.SeenAndRecord(ctx, fmt.Sprintf("q-%d", i)), ShouldBeFalse)
		}

		Convey("Then nothing is ever evicted", func() {
			So(d.Size(), ShouldEqual, 1000)
			So(d.SeenAndRecord(ctx, "q-0"), ShouldBeTrue)
		})
	})
}

func TestConcurrentAdmission(t *testing.T) {
	Convey("Given many goroutines racing on the same id", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemory()

		const goroutines = 64
		var wg sync.WaitGroup
		var admitted atomic.Int64

		for i := 0; i < goroutines; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if !d.SeenAndRecord(ctx, "q-contended") {
					admitted.Add(1)
				}
			}()
		}
		wg.Wait()

		Convey("Then exactly one submission wins", func() {
			So(admitted.Load(), ShouldEqual, 1)
			So(d.Size(), ShouldEqual, 1)
		})
	})

	Convey("Given concurrent distinct ids within capacity", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemory(dedupe.WithCapacity(1024))

		const goroutines = 128
		var wg sync.WaitGroup
		for i := 0; i < goroutines; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				d.SeenAndRecord(ctx, fmt.Sprintf("q-%d", n))
			}(i)
		}
		wg.Wait()

		Convey("Then every id was recorded once", func() {
			So(d.Size(), ShouldEqual, goroutines)
		})
	})
}
