// Package metrics provides Prometheus instrumentation for the service.
//
// Collectors register on the default registry at init and are exposed by
// Handler at the configured metrics path:
//
//	cinehub_http_requests_total             counter: requests by method/route/status
//	cinehub_http_request_duration_seconds   histogram: latency by method/route
//	cinehub_db_query_duration_seconds       histogram: query latency by operation
//	cinehub_tx_retries_total                counter: conflict retries by store
//	cinehub_tx_failures_total               counter: transactions that gave up
//	cinehub_badges_awarded_total            counter: awards by badge/category
//	cinehub_comments_submitted_total        counter: comment attempts by result
//	cinehub_interaction_toggles_total       counter: toggles by collection/action
//	cinehub_cache_operations_total          counter: cache lookups by result
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ── HTTP ──────────────────────────────────────────────────────────────────────

// HTTPRequests counts HTTP requests by method, route template and status code.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cinehub_http_requests_total",
	Help: "Total HTTP requests handled.",
}, []string{"method", "route", "status"})

// HTTPDuration tracks HTTP request latency.
var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "cinehub_http_request_duration_seconds",
	Help:    "HTTP request latency in seconds.",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "route"})

// ── Storage ───────────────────────────────────────────────────────────────────

// DBQueryDuration tracks database call latency by operation (exec, query, begin_tx).
var DBQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "cinehub_db_query_duration_seconds",
	Help:    "Database call latency in seconds.",
	Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
}, []string{"operation"})

// TxRetries counts transaction attempts repeated after a write conflict.
var TxRetries = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cinehub_tx_retries_total",
	Help: "Transaction retries after a conflicting concurrent write.",
}, []string{"store"})

// TxFailures counts transactions that failed after exhausting retries or on a permanent error.
var TxFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cinehub_tx_failures_total",
	Help: "Transactions that did not commit.",
}, []string{"store", "reason"})

// ── Gamification ──────────────────────────────────────────────────────────────

// BadgesAwarded counts badge awards.
var BadgesAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cinehub_badges_awarded_total",
	Help: "Badges awarded to users.",
}, []string{"badge", "category"})

// CommentsSubmitted counts comment submissions by result (accepted, rejected, failed).
var CommentsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cinehub_comments_submitted_total",
	Help: "Comment submissions by result.",
}, []string{"result"})

// InteractionToggles counts membership toggles (added, removed, unchanged).
var InteractionToggles = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cinehub_interaction_toggles_total",
	Help: "Favorite and watchlist toggles.",
}, []string{"collection", "action"})

// ── Cache ─────────────────────────────────────────────────────────────────────

// CacheOperations counts cache lookups by provider and result (hit, miss, error).
var CacheOperations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cinehub_cache_operations_total",
	Help: "Cache lookups by result.",
}, []string{"provider", "result"})

// Handler returns the Prometheus HTTP handler for the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
