// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, route, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// RequestTotal counts HTTP requests by method, route, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// UsersRegistered counts successful registrations.
	UsersRegistered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_users_registered_total",
			Help: "Total number of registered users",
		},
	)

	// TransactionsCreated counts stored transactions by direction (credit, debit).
	TransactionsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_transactions_created_total",
			Help: "Total number of stored transactions",
		},
		[]string{"direction"},
	)

	// BalanceCacheLookups counts balance cache lookups by result (hit, miss, error).
	BalanceCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_balance_cache_lookups_total",
			Help: "Balance cache lookups by result",
		},
		[]string{"result"},
	)

	// StoreRetries counts store calls retried after a transient failure.
	StoreRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_store_retries_total",
			Help: "Store calls retried after a transient failure",
		},
	)
)

var initOnce sync.Once

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestDuration, RequestTotal,
			UsersRegistered, TransactionsCreated, BalanceCacheLookups, StoreRetries,
		)
	})
}

// RecordRequest records duration and count for an HTTP request. route should be
// the matched route pattern, not the raw path, to keep cardinality bounded.
func RecordRequest(method, route string, statusCode int, durationSeconds float64) {
	if route == "" {
		route = "unmatched"
	}
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, route, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, route, status).Inc()
}

// IncTransactionsCreated records a stored transaction.
func IncTransactionsCreated(credit bool) {
	direction := "debit"
	if credit {
		direction = "credit"
	}
	TransactionsCreated.WithLabelValues(direction).Inc()
}

// IncBalanceCacheLookup records a cache lookup result (hit, miss, error).
func IncBalanceCacheLookup(result string) {
	BalanceCacheLookups.WithLabelValues(result).Inc()
}
