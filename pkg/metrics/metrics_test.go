package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating a manager with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithMetricPrefix("pfx"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(5*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options are applied", func() {
				So(manager.namespace, ShouldEqual, "test_namespace")
				So(manager.subsystem, ShouldEqual, "test_subsystem")
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
				So(manager.refreshInterval, ShouldEqual, 5*time.Second)
			})

			Convey("And metric names carry namespace, subsystem and prefix", func() {
				manager.RecordModelFault()
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				found := false
				for _, mf := range families {
					if mf.GetName() == "test_namespace_test_subsystem_pfx_model_faults_total" {
						found = true
						So(mf.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "env")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When empty values are passed", func() {
			manager := NewManager(
				WithNamespace(""),
				WithHistogramBuckets(nil),
				WithRefreshInterval(0),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "diabrisk")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
				So(manager.refreshInterval, ShouldEqual, defaultRefreshInterval)
			})
		})
	})
}

func TestManagerRecording(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		manager := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

		Convey("When predictions are recorded", func() {
			manager.RecordPrediction("fallback", "Very High Risk", 95)
			manager.RecordPrediction("fallback", "Very High Risk", 95)
			manager.RecordPrediction("model", "Medium Risk", 42)

			Convey("Then counters are split by strategy and level", func() {
				So(testutil.ToFloat64(manager.predictions.WithLabelValues("fallback", "Very High Risk")), ShouldEqual, 2.0)
				So(testutil.ToFloat64(manager.predictions.WithLabelValues("model", "Medium Risk")), ShouldEqual, 1.0)
			})
		})

		Convey("When validation failures and model faults are recorded", func() {
			manager.RecordValidationFailure("out_of_range")
			manager.RecordModelFault()
			manager.RecordModelFault()

			Convey("Then both counters move", func() {
				So(testutil.ToFloat64(manager.validationFailures.WithLabelValues("out_of_range")), ShouldEqual, 1.0)
				So(testutil.ToFloat64(manager.modelFaults), ShouldEqual, 2.0)
			})
		})

		Convey("When the model gauge is toggled", func() {
			manager.SetModelLoaded(true)
			loaded := testutil.ToFloat64(manager.modelLoaded)
			manager.SetModelLoaded(false)

			Convey("Then it reflects the last value", func() {
				So(loaded, ShouldEqual, 1.0)
				So(testutil.ToFloat64(manager.modelLoaded), ShouldEqual, 0.0)
			})
		})

		Convey("When metrics are disabled", func() {
			disabled := NewManager(
				WithMetricsEnabled(false),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)
			disabled.RecordModelFault()

			Convey("Then nothing is recorded", func() {
				So(testutil.ToFloat64(disabled.modelFaults), ShouldEqual, 0.0)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Then every recorder is safe to call", func() {
			So(func() {
				RecordPrediction("fallback", "Low Risk", 20)
				RecordEstimateLatency("fallback", 0.2)
				RecordValidationFailure("type_mismatch")
				RecordModelFault()
				SetModelLoaded(false)
				RecordHTTPRequest("predict", "POST", "200")
				RecordHTTPRequestDuration("predict", "POST", "200", 1.5)
				RecordErrorByType("client_error", "medium")
				RecordErrorByEndpoint("predict", "POST", "client_error")
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(8)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
		})

		Convey("Then the custom registry exposes service metrics", func() {
			RecordModelFault()
			count, err := testutil.GatherAndCount(GetRegistry(), "diabrisk_predictor_model_faults_total")
			So(err, ShouldBeNil)
			So(count, ShouldEqual, 1)
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent recorders", t, func() {
		manager := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))
		const goroutines, perGoroutine = 10, 100

		var wg sync.WaitGroup
		for i := 0; i < goroutines; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < perGoroutine; j++ {
					manager.RecordPrediction("model", "High Risk", 60)
				}
			}()
		}
		wg.Wait()

		Convey("Then no increment is lost", func() {
			So(testutil.ToFloat64(manager.predictions.WithLabelValues("model", "High Risk")), ShouldEqual, float64(goroutines*perGoroutine))
		})
	})
}
