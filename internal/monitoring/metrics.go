package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "faculty_hub"

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	ratingSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ratings",
		Name:      "submissions_total",
		Help:      "Rating submissions, split into first-time and revisions.",
	}, []string{"kind"})

	rankingComputations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "rankings",
		Name:      "computations_total",
		Help:      "Ranking recomputations (cache misses).",
	})

	recommendationsServed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "recommendations",
		Name:      "served_total",
		Help:      "Recommendation lists served.",
	})

	syncOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "scholar_sync",
		Name:      "outcomes_total",
		Help:      "Per-faculty outcomes of scholar sync runs.",
	}, []string{"status"})

	syncDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "scholar_sync",
		Name:      "run_duration_seconds",
		Help:      "Duration of a full scholar sync run.",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300},
	})

	dbConnectionsInUse = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "db",
		Name:      "connections_in_use",
		Help:      "Open sqlite connections currently in use.",
	})
)

// ObserveHTTPRequest records one completed HTTP request
func ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// CountRatingSubmission records a rating submission; kind is "new" or
// "revision".
func CountRatingSubmission(kind string) {
	ratingSubmissions.WithLabelValues(kind).Inc()
}

// CountRankingComputation records one cache-miss ranking computation
func CountRankingComputation() {
	rankingComputations.Inc()
}

// CountRecommendations records one served recommendation list
func CountRecommendations() {
	recommendationsServed.Inc()
}

// ObserveSyncRun records the outcome counters and duration of a sync run
func ObserveSyncRun(updated, skipped, failed int, duration time.Duration) {
	syncOutcomes.WithLabelValues("updated").Add(float64(updated))
	syncOutcomes.WithLabelValues("skipped").Add(float64(skipped))
	syncOutcomes.WithLabelValues("failed").Add(float64(failed))
	syncDuration.Observe(duration.Seconds())
}

// SetDBConnectionsInUse updates the sqlite pool gauge
func SetDBConnectionsInUse(n int) {
	dbConnectionsInUse.Set(float64(n))
}
