// Package metrics exposes the prometheus instruments emitted during a
// resolve.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	ResolveDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "depresolve_resolve_duration_seconds",
		Help:    "Time spent resolving a single root module, end to end.",
		Buckets: prometheus.DefBuckets,
	}, []string{"root"})

	ComponentsVisited = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "depresolve_components_visited_total",
		Help: "Number of distinct component versions materialized during a resolve.",
	}, []string{"root"})

	ConflictsResolved = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "depresolve_conflicts_resolved_total",
		Help: "Number of module version conflicts resolved.",
	}, []string{"root"})

	EdgeFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "depresolve_edge_failures_total",
		Help: "Number of dependency edges that failed to resolve or attach.",
	}, []string{"root", "kind"})

	InFlightFetches = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "depresolve_metadata_fetches_in_flight",
		Help: "Number of component metadata fetches currently running in the parallel download stage.",
	})
)

func init() {
	prometheus.MustRegister(
		ResolveDuration,
		ComponentsVisited,
		ConflictsResolved,
		EdgeFailures,
		InFlightFetches,
	)
}

// Recorder is the thin façade the driver instruments itself through,
// so internal/resolve does not need to import prometheus types
// directly.
type Recorder struct {
	Root string
}

func (r Recorder) ObserveResolveDuration(seconds float64) {
	ResolveDuration.WithLabelValues(r.Root).Observe(seconds)
}

func (r Recorder) IncComponentsVisited() {
	ComponentsVisited.WithLabelValues(r.Root).Inc()
}

func (r Recorder) IncConflictsResolved() {
	ConflictsResolved.WithLabelValues(r.Root).Inc()
}

func (r Recorder) IncEdgeFailure(kind string) {
	EdgeFailures.WithLabelValues(r.Root, kind).Inc()
}

func (r Recorder) FetchStarted() { InFlightFetches.Inc() }
func (r Recorder) FetchDone()    { InFlightFetches.Dec() }
