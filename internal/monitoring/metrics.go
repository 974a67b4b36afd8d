package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	PagesFetched        *prometheus.CounterVec
	ImagesFound         *prometheus.CounterVec
	GenerationsTotal    *prometheus.CounterVec
	ModelCallDuration   *prometheus.HistogramVec
	RateLimitRetries    prometheus.Counter
	CacheLookups        *prometheus.CounterVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics registers the metrics with reg. Pass prometheus.DefaultRegisterer
// in binaries and a fresh prometheus.NewRegistry() in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PagesFetched: f.NewCounterVec(prometheus.CounterOpts{
			Name: "alttext_pages_fetched_total",
			Help: "Pages fetched by the site scanner.",
		}, []string{"status"}), // ok, failed
		ImagesFound: f.NewCounterVec(prometheus.CounterOpts{
			Name: "alttext_images_found_total",
			Help: "Images found while scanning pages.",
		}, []string{"kind", "described"}),
		GenerationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "alttext_generations_total",
			Help: "Description generation results.",
		}, []string{"status"}),
		ModelCallDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "alttext_model_call_duration_seconds",
			Help:    "Duration of vision model calls.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40},
		}, []string{"model", "outcome"}),
		RateLimitRetries: f.NewCounter(prometheus.CounterOpts{
			Name: "alttext_rate_limit_retries_total",
			Help: "Model calls retried after a rate-limit response.",
		}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "alttext_cache_lookups_total",
			Help: "Description cache lookups.",
		}, []string{"result"}), // hit, miss, error
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

func (m *Metrics) IncPagesFetched(status string) {
	if m == nil {
		return
	}
	m.PagesFetched.WithLabelValues(status).Inc()
}

func (m *Metrics) IncImagesFound(kind string, described bool) {
	if m == nil {
		return
	}
	label := "false"
	if described {
		label = "true"
	}
	m.ImagesFound.WithLabelValues(kind, label).Inc()
}

func (m *Metrics) IncGenerations(status string) {
	if m == nil {
		return
	}
	m.GenerationsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveModelCall(model, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.ModelCallDuration.WithLabelValues(model, outcome).Observe(seconds)
}

func (m *Metrics) IncRateLimitRetries() {
	if m == nil {
		return
	}
	m.RateLimitRetries.Inc()
}

func (m *Metrics) IncCacheLookups(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveHTTPRequest(method, path, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(seconds)
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
}
