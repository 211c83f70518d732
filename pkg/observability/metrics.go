package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "observador"

// Collector owns the Prometheus metrics of one process. It uses its own
// registry so tests can create as many as they like.
type Collector struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	operations      *prometheus.CounterVec
	operationTime   *prometheus.HistogramVec
	snapshots       *prometheus.CounterVec
}

// NewCollector creates and registers all metrics
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "bus",
			Name:      "operations_total",
			Help:      "Dispatched commands and queries by outcome.",
		}, []string{"kind", "name", "status"}),
		operationTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "bus",
			Name:      "operation_duration_seconds",
			Help:      "Command and query handler latency.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"kind", "name"}),
		snapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "snapshots",
			Name:      "recorded_total",
			Help:      "Snapshots written by trigger reason.",
		}, []string{"reason"}),
	}

	c.registry.MustRegister(
		c.requestsTotal, c.requestDuration, c.operations, c.operationTime, c.snapshots,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// RecordOperation implements the bus recorder interfaces
func (c *Collector) RecordOperation(kind, name string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.operations.WithLabelValues(kind, name, status).Inc()
	c.operationTime.WithLabelValues(kind, name).Observe(duration.Seconds())
}

// RecordSnapshot counts a written snapshot
func (c *Collector) RecordSnapshot(reason string) {
	c.snapshots.WithLabelValues(reason).Inc()
}

// Registry exposes the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency labelled by chi route pattern,
// so ids in paths do not explode cardinality
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		c.requestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		c.requestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
