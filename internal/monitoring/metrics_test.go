package monitoring

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecord(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.IncPagesFetched("ok")
	m.IncPagesFetched("ok")
	m.IncImagesFound("img", false)
	m.IncGenerations("generated")
	m.IncRateLimitRetries()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PagesFetched.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ImagesFound.WithLabelValues("img", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GenerationsTotal.WithLabelValues("generated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitRetries))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncPagesFetched("failed")
		m.IncImagesFound("background", true)
		m.IncGenerations("failed")
		m.ObserveModelCall("gpt-4o-mini", "ok", 1)
		m.IncRateLimitRetries()
		m.IncCacheLookups("hit")
		m.ObserveHTTPRequest("GET", "/api/health", "200", 0.1)
	})
}
