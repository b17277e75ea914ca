package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "resume_extractor"

// Metrics holds the Prometheus collectors for the extractor. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	analyses        *prometheus.CounterVec
	backendFailures *prometheus.CounterVec
	droppedTokens   prometheus.Counter
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics registers every collector on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Resume analyses by result.",
		}, []string{"result"}),
		backendFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entity_backend_failures_total",
			Help:      "Entity backend calls that failed, by backend.",
		}, []string{"backend"}),
		droppedTokens: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skill_tokens_dropped_total",
			Help:      "Normalized skill tokens outside the controlled vocabulary.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		m.analyses,
		m.backendFailures,
		m.droppedTokens,
		m.requests,
		m.requestDuration,
		collectors.NewGoCollector(),
	)
	return m
}

// AnalysisFinished counts one analysis with the given result.
func (m *Metrics) AnalysisFinished(result string) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(result).Inc()
}

// BackendFailed counts one failed entity backend call.
func (m *Metrics) BackendFailed(backend string) {
	if m == nil {
		return
	}
	m.backendFailures.WithLabelValues(backend).Inc()
}

// SkillTokensDropped adds n dropped skill tokens.
func (m *Metrics) SkillTokensDropped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.droppedTokens.Add(float64(n))
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
