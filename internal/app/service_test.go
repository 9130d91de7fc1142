package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	service "github.com/ecliptiq/transits/internal/app"
	"github.com/ecliptiq/transits/internal/domain/chart"
	"github.com/ecliptiq/transits/internal/domain/model"
	"github.com/ecliptiq/transits/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// sampleQuery builds a minimal valid query: transit Sun at an exact square
// to the natal Ascendant.
func sampleQuery(id string) model.Query {
	return model.Query{
		ID:   id,
		Sect: "diurnal",
		Mode: model.ModeQualifying,
		Transits: model.PositionSet{
			"Sun": model.Moving(10.0, 1.0),
		},
		Natal: model.PositionSet{
			"Ascendant": model.Fixed(100.0),
		},
	}
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithWorkerCount(8),
			service.WithQueueSize(50_000),
			service.WithDedupeSize(25_000),
			service.WithShardCount(2),
			service.WithStoreCapacity(10_000),
			service.WithMinuteTolerance(2.5),
			service.WithMarsDominance(false),
			service.WithDefaultSect("nocturnal"),
		)

		Convey("Then it should be created successfully", func() {
			So(svc, ShouldNotBeNil)
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(service.WithWorkerCount(2))
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		Convey("When starting the service", func() {
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)

				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
			})

			Convey("And starting again is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})

			Convey("And stopping marks it stopped", func() {
				svc.Stop()

				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_Evaluate(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New(service.WithWorkerCount(1))
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When evaluating a qualifying query", func() {
			report, err := svc.Evaluate(ctx, sampleQuery("q-sync-1"))

			Convey("Then the report carries the hit and the rules echo", func() {
				So(err, ShouldBeNil)
				So(report.Mode, ShouldEqual, model.ModeQualifying)
				So(report.Rules.Sect, ShouldEqual, "diurnal")
				So(report.Rules.MinuteTolArcmin, ShouldEqual, 1.59)

				So(len(report.Hits), ShouldEqual, 1)
				So(report.Hits[0].TransitBody, ShouldEqual, "Sun")
				So(report.Hits[0].NatalPoint, ShouldEqual, "Ascendant")
				So(report.Hits[0].AspectName, ShouldEqual, "square")
				So(report.Hits[0].Qualifies, ShouldBeTrue)
			})

			Convey("Then the transit echo uses canonical names and displays", func() {
				So(report.Transits, ShouldContainKey, "Sun")
				So(report.Transits["Sun"].Display, ShouldEqual, "Aries 10°00′")
			})
		})

		Convey("When the query uses ephemeris-style keys", func() {
			q := sampleQuery("q-sync-2")
			q.Transits = model.PositionSet{"sun": model.Moving(10.0, 1.0)}
			q.Natal = model.PositionSet{"asc": model.Fixed(100.0)}

			report, err := svc.Evaluate(ctx, q)

			Convey("Then they are canonicalized before evaluation", func() {
				So(err, ShouldBeNil)
				So(len(report.Hits), ShouldEqual, 1)
				So(report.Hits[0].NatalPoint, ShouldEqual, "Ascendant")
			})
		})

		Convey("When the query leaves the sect to the chart", func() {
			q := sampleQuery("q-sync-3")
			q.Sect = ""
			// Sun in Sagittarius with a Cancer Ascendant sits in the
			// sixth whole-sign house, below the horizon.
			q.Natal["Sun"] = model.Fixed(250.0)

			report, err := svc.Evaluate(ctx, q)

			Convey("Then the sect is derived from the natal chart", func() {
				So(err, ShouldBeNil)
				So(report.Rules.Sect, ShouldEqual, "nocturnal")
			})
		})

		Convey("When the query asks for both hit lists", func() {
			q := sampleQuery("q-sync-4")
			q.Mode = model.ModeBoth

			report, err := svc.Evaluate(ctx, q)

			Convey("Then the paired shape is populated", func() {
				So(err, ShouldBeNil)
				So(report.Mode, ShouldEqual, model.ModeBoth)
				So(report.Hits, ShouldBeNil)
				So(len(report.QualifyingHits), ShouldEqual, 1)
				So(len(report.AllHits), ShouldEqual, 1)
			})
		})

		Convey("When the query overrides the minute tolerance", func() {
			q := sampleQuery("q-sync-5")
			q.MinuteTolArcmin = 2.5

			report, err := svc.Evaluate(ctx, q)

			Convey("Then the rules echo reports the override", func() {
				So(err, ShouldBeNil)
				So(report.Rules.MinuteTolArcmin, ShouldEqual, 2.5)
			})
		})

		Convey("When the query asks for the Part of Fortune", func() {
			q := sampleQuery("q-sync-6")
			q.IncludePoF = true
			q.Natal["Sun"] = model.Fixed(10.0)
			q.Natal["Moon"] = model.Fixed(250.0)

			_, err := svc.Evaluate(ctx, q)

			Convey("Then a complete chart evaluates cleanly", func() {
				So(err, ShouldBeNil)
			})

			Convey("And a chart missing the Moon fails", func() {
				delete(q.Natal, "Moon")
				_, err := svc.Evaluate(ctx, q)
				So(errors.Is(err, chart.ErrMissingPoint), ShouldBeTrue)
			})
		})

		Convey("When the query names an unknown sect", func() {
			q := sampleQuery("q-sync-7")
			q.Sect = "evening"

			_, err := svc.Evaluate(ctx, q)

			Convey("Then evaluation fails with the sect sentinel", func() {
				So(errors.Is(err, model.ErrInvalidSect), ShouldBeTrue)
			})
		})

		Convey("When the query names an unknown mode", func() {
			q := sampleQuery("q-sync-8")
			q.Mode = "everything"

			_, err := svc.Evaluate(ctx, q)

			Convey("Then evaluation fails with the mode sentinel", func() {
				So(errors.Is(err, model.ErrInvalidMode), ShouldBeTrue)
			})
		})
	})
}

func TestService_SeenAndRecord(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New(service.WithWorkerCount(1))
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When checking a new query ID", func() {
			seen := svc.SeenAndRecord(ctx, "query-123")

			Convey("Then it should not have been seen before", func() {
				So(seen, ShouldBeFalse)
			})
		})

		Convey("When checking the same query ID twice", func() {
			svc.SeenAndRecord(ctx, "query-456")
			seen := svc.SeenAndRecord(ctx, "query-456")

			Convey("Then the second check reports a duplicate", func() {
				So(seen, ShouldBeTrue)
			})
		})

		Convey("When a recorded ID is unrecorded", func() {
			svc.SeenAndRecord(ctx, "query-789")
			svc.Unrecord(ctx, "query-789")

			Convey("Then the ID may be recorded again", func() {
				So(svc.SeenAndRecord(ctx, "query-789"), ShouldBeFalse)
			})
		})
	})
}

func TestService_GetStats(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New()

		Convey("When getting stats before starting", func() {
			stats := svc.GetStats()

			Convey("Then it should return basic stats", func() {
				So(stats, ShouldNotBeNil)
				So(stats["started"], ShouldEqual, false)
			})
		})
	})
}
