// Package metrics exposes the service's Prometheus metrics: HTTP-level
// request counters alongside solver-level gauges/histograms that mirror
// what a solve run logs through pkg/logger.SolverLogger. The solve handler
// records SolveCost, SolveDurationSeconds and UnassignedVisitsTotal;
// ConstructionAssignmentsTotal, LocalSearchPassesTotal and
// MatrixBuildDurationSeconds are registered but nothing in this service
// records them, so they stay at zero.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the process-wide metrics registry. Kept separate from
// prometheus.DefaultRegisterer so tests can build a fresh one.
var Registry = prometheus.NewRegistry()

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vrp_http_requests_total",
		Help: "HTTP requests by method, path, and response status text.",
	}, []string{"method", "path", "status"})

	RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vrp_http_request_duration_seconds",
		Help:    "HTTP request latency by method and path.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	ConstructionAssignmentsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vrp_construction_assignments_total",
		Help: "Visits placed by the greedy constructor, across all solve runs.",
	})

	LocalSearchPassesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vrp_local_search_passes_total",
		Help: "Local-search passes executed, across all solve runs.",
	})

	SolveCost = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "vrp_solve_cost",
		Help:    "Total plan cost returned by a solve run.",
		Buckets: prometheus.ExponentialBuckets(60, 2, 12),
	})

	SolveDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "vrp_solve_duration_seconds",
		Help:    "Wall-clock time for a complete solve() call.",
		Buckets: prometheus.DefBuckets,
	})

	MatrixBuildDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "vrp_matrix_build_duration_seconds",
		Help:    "Wall-clock time spent building the distance matrix for a solve run.",
		Buckets: prometheus.DefBuckets,
	})

	UnassignedVisitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vrp_unassigned_visits_total",
		Help: "Visits left unassigned by reason, across all solve runs.",
	}, []string{"reason"})
)

func init() {
	Registry.MustRegister(
		RequestsTotal,
		RequestDuration,
		ConstructionAssignmentsTotal,
		LocalSearchPassesTotal,
		SolveCost,
		SolveDurationSeconds,
		MatrixBuildDurationSeconds,
		UnassignedVisitsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the registry in Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordRequest records one completed HTTP request's outcome.
func RecordRequest(method, path string, status int, duration time.Duration) {
	statusStr := http.StatusText(status)
	if statusStr == "" {
		statusStr = "unknown"
	}
	RequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
