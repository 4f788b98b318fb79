package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be enabled with the default refresh interval", func() {
				So(manager, ShouldNotBeNil)
				So(manager.Enabled(), ShouldBeTrue)
				So(manager.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithMetricPrefix("pre"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithRefreshInterval(3*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.RecordHTTPRequest("bfhl", "POST", "200", 1.5)

			Convey("Then names and labels should reflect the options", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				var found bool
				for _, f := range families {
					if f.GetName() == "test_namespace_test_subsystem_pre_http_requests_total" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "endpoint")
						var hasEnv bool
						for _, l := range f.GetMetric()[0].GetLabel() {
							if l.GetName() == "env" && l.GetValue() == "test" {
								hasEnv = true
							}
						}
						So(hasEnv, ShouldBeTrue)
					}
				}
				So(found, ShouldBeTrue)
				So(manager.RefreshInterval(), ShouldEqual, 3*time.Second)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a manager on its own registry", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(WithPrometheusRegistry(registry))

		Convey("When recording operations", func() {
			m.RecordOperation("fibonacci", "success", 0.2)
			m.RecordOperation("fibonacci", "success", 0.3)
			m.RecordOperation("lcm", "invalid", 0.1)

			Convey("Then counters should be labelled by operation and outcome", func() {
				So(testutil.ToFloat64(m.operations.WithLabelValues("fibonacci", "success")), ShouldEqual, 2)
				So(testutil.ToFloat64(m.operations.WithLabelValues("lcm", "invalid")), ShouldEqual, 1)
			})
		})

		Convey("When recording AI calls", func() {
			m.RecordAIRequest("gemini", "error", 120)
			m.RecordAIRateLimited("gemini")

			So(testutil.ToFloat64(m.aiRequests.WithLabelValues("gemini", "error")), ShouldEqual, 1)
			So(testutil.ToFloat64(m.aiRateLimited.WithLabelValues("gemini")), ShouldEqual, 1)
		})

		Convey("When moving the compute gauge", func() {
			m.AddComputeInFlight(3)
			m.AddComputeInFlight(-1)
			m.RecordComputeTimeout()

			So(testutil.ToFloat64(m.computeInFlight), ShouldEqual, 2)
			So(testutil.ToFloat64(m.computeTimeouts), ShouldEqual, 1)
		})

		Convey("When recording errors and system figures", func() {
			So(func() {
				m.RecordErrorByType("client_error", "medium")
				m.RecordErrorByEndpoint("bfhl", "POST", "client_error")
				m.UpdateSystem(1024, 12, 0.2)
				m.UpdateSystem(2048, 10, 0)
			}, ShouldNotPanic)
			So(testutil.ToFloat64(m.systemGoroutineCount), ShouldEqual, 10)
		})
	})

	Convey("Given a disabled manager", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(WithPrometheusRegistry(registry), WithMetricsEnabled(false))

		m.RecordOperation("prime", "success", 1)
		m.RecordHTTPRequest("health", "GET", "200", 1)

		Convey("Then nothing is recorded", func() {
			So(m.Enabled(), ShouldBeFalse)
			So(testutil.ToFloat64(m.operations.WithLabelValues("prime", "success")), ShouldEqual, 0)
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		So(func() {
			RecordHTTPRequest("bfhl", "POST", "400", 0.7)
			RecordOperation("hcf", "success", 0.1)
			RecordAIRequest("static", "success", 0.1)
			RecordAIRateLimited("static")
			AddComputeInFlight(1)
			AddComputeInFlight(-1)
			RecordComputeTimeout()
			RecordErrorByType("server_error", "high")
			RecordErrorByEndpoint("bfhl", "POST", "server_error")
			UpdateSystem(1, 1, 0)
		}, ShouldNotPanic)

		Convey("Then the custom registry exposes bfhl series", func() {
			out, err := testutil.GatherAndCount(GetRegistry(), "bfhl_api_operations_total")
			So(err, ShouldBeNil)
			So(out, ShouldBeGreaterThan, 0)
			So(RefreshInterval(), ShouldBeGreaterThan, 0)
		})

		Convey("Then it should handle concurrent access without panics", func() {
			done := make(chan struct{}, 10)
			for i := 0; i < 10; i++ {
				go func() {
					for j := 0; j < 100; j++ {
						RecordOperation("prime", "success", float64(j))
						RecordHTTPRequest("bfhl", "POST", "200", 1)
					}
					done <- struct{}{}
				}()
			}
			for i := 0; i < 10; i++ {
				<-done
			}
			So(testutil.ToFloat64(globalManager.operations.WithLabelValues("prime", "success")), ShouldBeGreaterThanOrEqualTo, 1000)
		})
	})
}

func TestConfigure(t *testing.T) {
	Convey("Given a reconfigured global manager", t, func() {
		previous := GetRegistry()
		Configure(WithNamespace("edge"), WithCustomLabels(map[string]string{"environment": "staging"}))
		defer Configure()

		RecordOperation("lcm", "success", 0.4)

		Convey("Then series use the new namespace and label on a fresh registry", func() {
			So(GetRegistry(), ShouldNotPointTo, previous)

			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			var labelled bool
			for _, f := range families {
				if f.GetName() != "edge_api_operations_total" {
					continue
				}
				for _, l := range f.GetMetric()[0].GetLabel() {
					if l.GetName() == "environment" && l.GetValue() == "staging" {
						labelled = true
					}
				}
			}
			So(labelled, ShouldBeTrue)
		})
	})
}
