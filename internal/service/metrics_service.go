package service

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the bridge.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	remoteDuration  *prometheus.HistogramVec
	remoteTotal     *prometheus.CounterVec
	webhookEvents   *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	remoteDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "edulegit_request_duration_seconds",
		Help:    "Duration of outbound EduLegit API calls in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	remoteTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "edulegit_requests_total",
		Help: "Total number of outbound EduLegit API calls",
	}, []string{"method", "path", "status"})

	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_total",
		Help: "Total number of inbound webhook deliveries by outcome",
	}, []string{"event", "outcome"})

	registry.MustRegister(requestDuration, requestTotal, remoteDuration, remoteTotal, webhookEvents)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		remoteDuration:  remoteDuration,
		remoteTotal:     remoteTotal,
		webhookEvents:   webhookEvents,
	}
}

// Handler serves the registry for the /metrics endpoint.
func (m *MetricsService) Handler() http.Handler {
	return m.handler
}

// ObserveHTTPRequest records one inbound request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, fmt.Sprintf("%d", status)}
	m.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(labels...).Inc()
}

// ObserveRemoteCall records one outbound EduLegit call. A zero status marks
// a transport failure.
func (m *MetricsService) ObserveRemoteCall(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, fmt.Sprintf("%d", status)}
	m.remoteDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	m.remoteTotal.WithLabelValues(labels...).Inc()
}

// CountWebhookEvent records one inbound webhook delivery outcome.
func (m *MetricsService) CountWebhookEvent(event, outcome string) {
	if event == "" {
		event = "unknown"
	}
	m.webhookEvents.WithLabelValues(event, outcome).Inc()
}
