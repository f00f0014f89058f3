package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "jobtracker"

var (
	artifactGenerations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "artifact_generations_total",
		Help:      "Resume PDF generations by source kind and result.",
	}, []string{"source", "result"})

	artifactGenerationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "artifact_generation_duration_seconds",
		Help:      "Resume PDF generation duration by source kind.",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"source"})

	artifactWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "artifact_writes_total",
		Help:      "Artifact store writes by result.",
	}, []string{"result"})

	artifactEnsures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "artifact_ensure_total",
		Help:      "EnsureArtifact outcomes.",
	}, []string{"status"})

	artifactDownloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "artifact_downloads_total",
		Help:      "Scheduled resume downloads by HTTP status.",
	}, []string{"status"})

	reconcileRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconcile_runs_total",
		Help:      "Reconciliation runs by result.",
	}, []string{"result"})

	reconcileItems = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconcile_items_total",
		Help:      "Interviews processed by reconciliation, by outcome.",
	}, []string{"status"})

	reconcileDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "reconcile_duration_seconds",
		Help:      "Reconciliation run duration.",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpRateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_rate_limited_total",
		Help:      "Requests rejected by the rate limiter, by group.",
	}, []string{"group"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// IncGeneration counts a generation attempt for the given source kind.
func IncGeneration(source, result string) {
	artifactGenerations.WithLabelValues(source, result).Inc()
}

// ObserveGeneration records how long a generation took.
func ObserveGeneration(source string, d time.Duration) {
	artifactGenerationDuration.WithLabelValues(source).Observe(d.Seconds())
}

// IncArtifactWrite counts an artifact store write.
func IncArtifactWrite(result string) {
	artifactWrites.WithLabelValues(result).Inc()
}

// IncEnsure counts an EnsureArtifact outcome.
func IncEnsure(status string) {
	artifactEnsures.WithLabelValues(status).Inc()
}

// IncDownload counts a retrieval response.
func IncDownload(status int) {
	artifactDownloads.WithLabelValues(strconv.Itoa(status)).Inc()
}

// IncReconcileRun counts a reconciliation run.
func IncReconcileRun(result string) {
	reconcileRuns.WithLabelValues(result).Inc()
}

// IncReconcileItem counts a single reconciled interview.
func IncReconcileItem(status string) {
	reconcileItems.WithLabelValues(status).Inc()
}

// ObserveReconcile records a reconciliation run duration.
func ObserveReconcile(d time.Duration) {
	reconcileDuration.Observe(d.Seconds())
}

// IncRateLimited counts a request rejected by the rate limiter.
func IncRateLimited(group string) {
	httpRateLimited.WithLabelValues(group).Inc()
}

// Middleware records request counts and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
