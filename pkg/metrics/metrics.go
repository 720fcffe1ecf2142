package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HttpRequestsTotal counts API requests by method, route and status code.
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphmind_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	// HttpRequestDuration measures API response time.
	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphmind_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "path"},
	)

	// QueriesTotal counts answered questions. Outcome is "ok" or the error kind.
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphmind_queries_total",
			Help: "Total number of processed questions",
		},
		[]string{"category", "operation", "outcome"},
	)

	// QueryDuration measures end to end question latency.
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphmind_query_duration_seconds",
			Help:    "Duration of question processing in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"category"},
	)

	// CollaboratorCalls counts calls to model and similarity services.
	CollaboratorCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphmind_collaborator_calls_total",
			Help: "Total number of calls to external collaborators",
		},
		[]string{"collaborator", "outcome"},
	)

	// DegradedQueries counts questions answered in a degraded way.
	DegradedQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphmind_degraded_queries_total",
			Help: "Questions that fell back to a degraded answer",
		},
		[]string{"kind"},
	)

	// CacheLookups counts response cache lookups.
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphmind_cache_lookups_total",
			Help: "Response cache lookups by cache and result",
		},
		[]string{"cache", "result"},
	)

	// SnapshotSize tracks the size of the last loaded network snapshot.
	SnapshotSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "graphmind_snapshot_size",
			Help: "Number of people and connections in the current snapshot",
		},
		[]string{"kind"},
	)

	// WorkerJobs counts jobs processed by the worker per queue and outcome
	// (ok, retry, dead_letter).
	WorkerJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphmind_worker_jobs_total",
			Help: "Jobs processed by the worker",
		},
		[]string{"queue", "outcome"},
	)

	// EmbeddedPeople counts profile embeddings written by the worker.
	EmbeddedPeople = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "graphmind_embedded_people_total",
			Help: "Profile embeddings generated and stored",
		},
	)
)

// ObserveCacheLookup records a hit or miss for the named cache.
func ObserveCacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(cache, result).Inc()
}

// SetSnapshotSize records the number of people and connections of the
// snapshot in use.
func SetSnapshotSize(people, connections int) {
	SnapshotSize.WithLabelValues("people").Set(float64(people))
	SnapshotSize.WithLabelValues("connections").Set(float64(connections))
}
