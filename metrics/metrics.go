// Package metrics implements the observability sink the service
// bridge reports container timings to, per spec.md's "out of scope,
// consumed as a capability" metrics sink, with a concrete Prometheus
// implementation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Sink is the capability the service bridge reports timings to.
// service.NewBridge replaces a nil Sink with NoopSink, so callers that
// don't care about metrics may pass nil or NoopSink.
type Sink interface {
	ObserveContainerExec(appID, storyName, service string, seconds float64)
	ObserveContainerStart(appID, storyName, service string, seconds float64)
}

// PrometheusSink reports container_exec_seconds_total and
// container_start_seconds_total histograms labeled
// {app_id, story_name, service}, per spec.md §4.3.
type PrometheusSink struct {
	execSeconds  *prometheus.HistogramVec
	startSeconds *prometheus.HistogramVec
}

// NewPrometheusSink builds a PrometheusSink and registers its
// collectors against reg. Pass prometheus.DefaultRegisterer in
// production; tests pass a throwaway prometheus.NewRegistry().
func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	labels := []string{"app_id", "story_name", "service"}

	s := &PrometheusSink{
		execSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "container_exec_seconds_total",
			Help:    "Time spent executing a command against a service container.",
			Buckets: prometheus.DefBuckets,
		}, labels),
		startSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "container_start_seconds_total",
			Help:    "Time spent bringing up a streaming service container.",
			Buckets: prometheus.DefBuckets,
		}, labels),
	}

	reg.MustRegister(s.execSeconds, s.startSeconds)
	return s
}

func (s *PrometheusSink) ObserveContainerExec(appID, storyName, service string, seconds float64) {
	s.execSeconds.WithLabelValues(appID, storyName, service).Observe(seconds)
}

func (s *PrometheusSink) ObserveContainerStart(appID, storyName, service string, seconds float64) {
	s.startSeconds.WithLabelValues(appID, storyName, service).Observe(seconds)
}

// NoopSink discards every observation. Used by call sites (tests,
// standalone tooling) that have no registry to report into.
type NoopSink struct{}

func (NoopSink) ObserveContainerExec(string, string, string, float64)  {}
func (NoopSink) ObserveContainerStart(string, string, string, float64) {}
