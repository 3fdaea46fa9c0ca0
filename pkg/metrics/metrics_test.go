package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a custom registry and options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithCustomLabels(map[string]string{"plant": "north"}),
				WithPrometheusRegistry(registry),
			)
			manager.exports.WithLabelValues("csv").Inc()

			Convey("Then collectors should be registered under the namespace", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var found bool
				for _, f := range families {
					So(strings.HasPrefix(f.GetName(), "test_namespace_test_subsystem_"), ShouldBeTrue)
					if f.GetName() == "test_namespace_test_subsystem_exports_total" {
						found = true
						So(f.GetMetric()[0].GetLabel()[1].GetName(), ShouldEqual, "plant")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When creating two managers on separate registries", func() {
			So(func() {
				NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))
				NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))
			}, ShouldNotPanic)
		})
	})
}

func TestPipelineMetrics(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording pipeline runs", func() {
			before := testutil.ToFloat64(globalManager.pipelineRuns.WithLabelValues(OutcomeNoData))
			RecordPipelineRun(OutcomeNoData, 3)

			Convey("Then the outcome counter should advance", func() {
				So(testutil.ToFloat64(globalManager.pipelineRuns.WithLabelValues(OutcomeNoData)), ShouldEqual, before+1)
			})
		})

		Convey("When recording loads, misses and coercion failures", func() {
			loaded := testutil.ToFloat64(globalManager.recordsLoaded.WithLabelValues("MX"))
			misses := testutil.ToFloat64(globalManager.storeMisses.WithLabelValues("MY"))
			failures := testutil.ToFloat64(globalManager.coercionFailures.WithLabelValues("duration"))
			RecordRecordsLoaded("MX", 7)
			RecordStoreMiss("MY")
			RecordCoercionFailures("duration", 2)
			RecordCoercionFailures("duration", 0)

			Convey("Then each counter should reflect the additions", func() {
				So(testutil.ToFloat64(globalManager.recordsLoaded.WithLabelValues("MX")), ShouldEqual, loaded+7)
				So(testutil.ToFloat64(globalManager.storeMisses.WithLabelValues("MY")), ShouldEqual, misses+1)
				So(testutil.ToFloat64(globalManager.coercionFailures.WithLabelValues("duration")), ShouldEqual, failures+2)
			})
		})

		Convey("When publishing a snapshot", func() {
			UpdateFilteredEvents(42)
			UpdateSnapshot(12.5, 5.25, false, true)

			Convey("Then the gauges should hold the last values", func() {
				So(testutil.ToFloat64(globalManager.filteredEvents), ShouldEqual, 42)
				So(testutil.ToFloat64(globalManager.rejectionRate), ShouldEqual, 12.5)
				So(testutil.ToFloat64(globalManager.acceptedMeanDuration), ShouldEqual, 5.25)
				So(testutil.ToFloat64(globalManager.alertActive.WithLabelValues(AlertDuration)), ShouldEqual, 0)
				So(testutil.ToFloat64(globalManager.alertActive.WithLabelValues(AlertRejectionRate)), ShouldEqual, 1)
			})
		})
	})
}

func TestHTTPAndSystemMetrics(t *testing.T) {
	Convey("Given HTTP, export, error and system recorders", t, func() {
		So(func() {
			RecordHTTPRequest("/api/summary", "GET", "200")
			RecordHTTPRequestDuration("/api/summary", "GET", "200", 12)
			RecordExport("xlsx")
			RecordErrorByComponent("service", "store")
			RecordErrorByEndpoint("/api/summary", "GET", "no_data")
			UpdateSystemMemoryUsage(1 << 20)
			UpdateSystemGoroutineCount(10)
			RecordSystemGCPauseTime(0.3)
		}, ShouldNotPanic)

		Convey("Then the custom registry should expose them", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			names := make(map[string]bool)
			for _, f := range families {
				names[f.GetName()] = true
			}
			So(names["prodboard_dashboard_http_requests_total"], ShouldBeTrue)
			So(names["prodboard_dashboard_exports_total"], ShouldBeTrue)
			So(names["prodboard_dashboard_system_goroutine_count"], ShouldBeTrue)
		})
	})
}
