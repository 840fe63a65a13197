package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then every collector is registered under the namespace", func() {
				So(m, ShouldNotBeNil)
				m.attemptsProcessed.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
				for _, f := range families {
					So(strings.HasPrefix(f.GetName(), "test_unit_"), ShouldBeTrue)
				}
			})

			Convey("Then counters observe increments", func() {
				m.profileCacheHits.Inc()
				m.profileCacheHits.Inc()
				So(testutil.ToFloat64(m.profileCacheHits), ShouldEqual, 2)
			})
		})

		Convey("When the same manager is registered twice", func() {
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then registration panics", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording ingestion and profile metrics", func() {
			before := testutil.ToFloat64(globalManager().attemptsProcessed)
			RecordAttemptProcessed()
			RecordAttemptDuplicate()
			RecordAttemptRejected()
			RecordProfileAssemblyLatency(3.5)
			RecordProfileAssemblyError()
			RecordProfileCacheHit()
			RecordProfileCacheMiss()
			UpdateProfileCacheEntries(4)

			Convey("Then the values are visible", func() {
				So(testutil.ToFloat64(globalManager().attemptsProcessed), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager().profileCacheEntries), ShouldEqual, 4)
			})
		})

		Convey("When updating cohort gauges", func() {
			UpdateCohortSize(12)
			UpdatePlatformAverage(77.5)
			UpdateCandidatesTotal(20)
			RecordCohortUpdate()

			Convey("Then the gauges hold the last value", func() {
				So(testutil.ToFloat64(globalManager().cohortSize), ShouldEqual, 12)
				So(testutil.ToFloat64(globalManager().platformAverage), ShouldEqual, 77.5)
				So(testutil.ToFloat64(globalManager().candidatesTotal), ShouldEqual, 20)
			})
		})

		Convey("When recording pipeline, HTTP and system metrics", func() {
			Convey("Then nothing panics", func() {
				So(func() {
					UpdateQueueSize(10)
					UpdateQueueCapacity(100)
					UpdateQueueUtilization(0.1)
					RecordQueueEnqueue()
					RecordQueueDequeue()
					RecordQueueEnqueueError()
					UpdateWorkerCount(4)
					UpdateWorkerActiveCount(2)
					RecordWorkerProcessingLatency(1.2)
					RecordWorkerError()
					RecordRepositoryUpdateLatency(0.3)
					RecordRepositoryQueryLatency(0.2)
					RecordHTTPRequest("/attempts", "POST", "202")
					RecordHTTPRequestDuration("/attempts", "POST", "202", 2)
					RecordErrorByComponent("repository", "not_found")
					RecordErrorByType("validation_error", "warning")
					RecordErrorByEndpoint("/rank", "GET", "not_found")
					UpdateSystemMemoryUsage(1 << 20)
					UpdateSystemGoroutineCount(12)
					RecordSystemGCPauseTime(0.4)
				}, ShouldNotPanic)
			})
		})

		Convey("When gathering the custom registry", func() {
			families, err := GetRegistry().Gather()

			Convey("Then talentlens metrics are exported", func() {
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "talentlens_profiles_attempts_processed_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}

func TestConfigure(t *testing.T) {
	Convey("Given a configured global manager", t, func() {
		Reset(func() { Configure() })

		Configure(
			WithNamespace("hiring"),
			WithSubsystem("eu"),
			WithConstLabels(map[string]string{"region": "eu-west-1"}),
			WithHistogramBuckets([]float64{1, 10, 100}),
		)
		RecordAttemptProcessed()
		RecordProfileAssemblyLatency(5)

		Convey("When gathering the registry", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)

			Convey("Then names, labels and buckets follow the options", func() {
				byName := map[string]bool{}
				for _, f := range families {
					byName[f.GetName()] = true
					So(strings.HasPrefix(f.GetName(), "hiring_eu_"), ShouldBeTrue)
					for _, metric := range f.GetMetric() {
						region := ""
						for _, l := range metric.GetLabel() {
							if l.GetName() == "region" {
								region = l.GetValue()
							}
						}
						So(region, ShouldEqual, "eu-west-1")
					}
					if f.GetName() == "hiring_eu_profile_assembly_latency_milliseconds" {
						So(len(f.GetMetric()[0].GetHistogram().GetBucket()), ShouldEqual, 3)
					}
				}
				So(byName["hiring_eu_attempts_processed_total"], ShouldBeTrue)
				So(testutil.ToFloat64(globalManager().attemptsProcessed), ShouldEqual, 1)
			})
		})

		Convey("When configuring again", func() {
			Configure()

			Convey("Then a fresh registry replaces the old one without duplicate registration", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				for _, f := range families {
					So(strings.HasPrefix(f.GetName(), "talentlens_profiles_"), ShouldBeTrue)
				}
			})
		})
	})
}
