// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "spacebudget"

// Registry holds every collector served on /metrics.
var Registry = prometheus.NewRegistry()

var (
	requestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "How many HTTP requests processed, partitioned by status code, method and route.",
		},
		[]string{"code", "method", "route"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "The HTTP request latencies in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"code", "method", "route"},
	)

	// BudgetUpserts counts budget writes by outcome ("created" or "updated").
	BudgetUpserts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "budget_upserts_total",
			Help:      "Budget limit writes, partitioned by whether a budget was created or updated.",
		},
		[]string{"outcome"},
	)

	// BudgetConflicts counts upserts that lost a race twice and were rejected.
	BudgetConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "budget_conflicts_total",
			Help:      "Budget upserts rejected after a concurrent insert of the same budget.",
		},
	)

	// EventsPublished counts domain events by routing key and result.
	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Domain events handed to the broker, partitioned by routing key and result.",
		},
		[]string{"routing_key", "result"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		requestCount,
		requestDuration,
		BudgetUpserts,
		BudgetConflicts,
		EventsPublished,
	)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}

// Middleware records request counts and latencies. Routes are labelled by
// their pattern so that path parameters do not blow up cardinality.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		requestDuration.WithLabelValues(status, c.Request.Method, route).Observe(time.Since(start).Seconds())
		requestCount.WithLabelValues(status, c.Request.Method, route).Inc()
	}
}
