// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the set of collectors of one server instance.
type Metrics struct {
	registry *prometheus.Registry

	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	events         *prometheus.CounterVec
	frameActions   *prometheus.CounterVec
	sseSubscribers prometheus.Gauge
}

// New registers the collectors on a fresh registry, along with the Go and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goodapi_http_requests_total",
				Help: "Total number of HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "goodapi_http_request_duration_seconds",
				Help:    "Duration of HTTP requests by route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goodapi_leafwatch_events_total",
				Help: "Total number of ingested analytics events by name",
			},
			[]string{"name"},
		),
		frameActions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goodapi_frame_actions_total",
				Help: "Total number of proxied frame actions by result",
			},
			[]string{"result"},
		),
		sseSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "goodapi_sse_subscribers",
			Help: "Number of connected realtime subscribers",
		}),
	}

	m.registry.MustRegister(
		m.requests, m.duration, m.events, m.frameActions, m.sseSubscribers,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(route string, code int, elapsed time.Duration) {
	m.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.duration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// EventIngested counts an analytics event.
func (m *Metrics) EventIngested(name string) {
	m.events.WithLabelValues(name).Inc()
}

// FrameAction counts a proxied frame action by outcome.
func (m *Metrics) FrameAction(result string) {
	m.frameActions.WithLabelValues(result).Inc()
}

// SubscriberAdded and SubscriberRemoved track live SSE clients.
func (m *Metrics) SubscriberAdded() { m.sseSubscribers.Inc() }

func (m *Metrics) SubscriberRemoved() { m.sseSubscribers.Dec() }
