package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "payfox"

// Metrics owns a private prometheus registry and the collectors the service reports.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpDuration *prometheus.HistogramVec
	httpTotal    *prometheus.CounterVec
	httpActive   prometheus.Gauge
	cacheOps     *prometheus.CounterVec
	authTotal    *prometheus.CounterVec
	providerOps  *prometheus.CounterVec
	health       *prometheus.GaugeVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   []float64{0.1, 0.3, 0.5, 0.7, 1, 3, 5, 7, 10},
		}, []string{"method", "route", "status_code"}),
		httpTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status_code"}),
		httpActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_active",
			Help:      "Number of in-flight HTTP requests",
		}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Total number of cache operations by outcome",
		}, []string{"operation", "status"}),
		authTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authentication_total",
			Help:      "Total number of API key authentication attempts",
		}, []string{"status"}),
		providerOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_provider_operations_total",
			Help:      "Total number of payment provider operations",
		}, []string{"provider", "operation", "status"}),
		health: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "health_check_status",
			Help:      "Health check status (1 = healthy, 0 = unhealthy)",
		}, []string{"service"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpDuration,
		m.httpTotal,
		m.httpActive,
		m.cacheOps,
		m.authTotal,
		m.providerOps,
		m.health,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// Middleware records duration, count and in-flight gauge for every request.
// The route label uses the matched route pattern so ids do not explode cardinality.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m == nil {
			return c.Next()
		}
		start := time.Now()
		m.httpActive.Inc()
		defer m.httpActive.Dec()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		code := strconv.Itoa(status)
		m.httpDuration.WithLabelValues(c.Method(), route, code).Observe(time.Since(start).Seconds())
		m.httpTotal.WithLabelValues(c.Method(), route, code).Inc()
		return err
	}
}

func (m *Metrics) CacheOperation(operation, status string) {
	if m == nil {
		return
	}
	m.cacheOps.WithLabelValues(operation, status).Inc()
}

func (m *Metrics) Authentication(status string) {
	if m == nil {
		return
	}
	m.authTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) ProviderOperation(provider, operation, status string) {
	if m == nil {
		return
	}
	m.providerOps.WithLabelValues(provider, operation, status).Inc()
}

func (m *Metrics) HealthStatus(service string, healthy bool) {
	if m == nil {
		return
	}
	v := 0.0
	if healthy {
		v = 1
	}
	m.health.WithLabelValues(service).Set(v)
}
