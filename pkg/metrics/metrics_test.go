package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then the manager registers its metrics there", func() {
				So(manager, ShouldNotBeNil)

				families, err := registry.Gather()
				So(err, ShouldBeNil)
				// Counters register eagerly; at least the core set shows up.
				names := make(map[string]bool, len(families))
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["transits_service_queries_processed_total"], ShouldBeTrue)
				So(names["transits_service_queue_enqueue_total"], ShouldBeTrue)
				So(names["transits_service_worker_errors_total"], ShouldBeTrue)
			})
		})

		Convey("When creating with custom namespace and subsystem", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("testns"),
				WithSubsystem("testsub"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithMetricsEnabled(true),
				WithRefreshInterval(5*time.Second),
				WithPrometheusRegistry(registry),
			)

			Convey("Then metric names carry the overrides", func() {
				So(manager, ShouldNotBeNil)

				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "testns_testsub_queries_processed_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("Then query metrics record without panicking", func() {
			So(func() {
				RecordQueryProcessed()
				RecordQueryDuplicate()
				RecordQueryFailed()
				RecordEvaluationLatency(12.5)
				RecordHitsPerQuery(4)
				RecordQualifyingRatio(0.25)
			}, ShouldNotPanic)
		})

		Convey("Then operational gauges update without panicking", func() {
			So(func() {
				UpdateQueueSize(10)
				UpdateQueueCapacity(1000)
				UpdateQueueUtilization(0.01)
				UpdateWorkerCount(8)
				UpdateWorkerActiveCount(3)
				UpdateWorkerIdleCount(5)
				UpdateStoredReports(42)
			}, ShouldNotPanic)
		})

		Convey("Then store metrics record without panicking", func() {
			So(func() {
				UpdateStoreShardCount(16)
				UpdateStoreRecordsTotal(100)
				UpdateStoreRecordsByShard("3", 7)
				RecordStoreEviction()
				RecordStorePutLatency(0.4)
				RecordStoreGetLatency(0.2)
			}, ShouldNotPanic)
		})

		Convey("Then HTTP and error metrics record without panicking", func() {
			So(func() {
				RecordHTTPRequest("/v1/transits", "POST", "200")
				RecordHTTPRequestDuration("/v1/transits", "POST", "200", 3.2)
				RecordErrorByComponent("engine", "invalid_sect")
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				RecordWorkerProcessingLatency(5.0)
				RecordWorkerError()
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
			}, ShouldNotPanic)
		})

		Convey("Then the custom registry is exposed for scraping", func() {
			So(GetRegistry(), ShouldNotBeNil)

			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}
