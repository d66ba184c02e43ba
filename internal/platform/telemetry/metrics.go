package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the process-wide Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	associationsCreated   prometheus.Counter
	associationsResponded *prometheus.CounterVec
	notificationsCreated  prometheus.Counter
	notificationsRead     prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carelink_http_requests_total",
			Help: "HTTP requests handled, by method, route and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "carelink_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		associationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "carelink_associations_created_total",
			Help: "Association requests created.",
		}),
		associationsResponded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "carelink_associations_responded_total",
			Help: "Association requests responded, by final status.",
		}, []string{"status"}),
		notificationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "carelink_notifications_created_total",
			Help: "Notifications created, counting one per fan-out.",
		}),
		notificationsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "carelink_notifications_read_total",
			Help: "Notification recipients marked as read.",
		}),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.associationsCreated,
		m.associationsResponded,
		m.notificationsCreated,
		m.notificationsRead,
	)
	return m
}

func (m *Metrics) AssociationCreated() { m.associationsCreated.Inc() }

func (m *Metrics) AssociationResponded(status string) {
	m.associationsResponded.WithLabelValues(status).Inc()
}

func (m *Metrics) NotificationCreated() { m.notificationsCreated.Inc() }

func (m *Metrics) NotificationRead() { m.notificationsRead.Inc() }

// Middleware records request counts and latencies per route.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			route := c.Path()
			if route == "" {
				route = c.Request().URL.Path
			}

			m.requestsTotal.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).Inc()
			m.requestDuration.WithLabelValues(c.Request().Method, route).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// Handler serves the scrape endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
