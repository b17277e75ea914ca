package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()

	m.AnalysisFinished("ok")
	m.AnalysisFinished("ok")
	m.AnalysisFinished("empty")
	m.BackendFailed("token-classifier")
	m.SkillTokensDropped(3)
	m.SkillTokensDropped(0)
	m.SkillTokensDropped(-1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.analyses.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.analyses.WithLabelValues("empty")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.backendFailures.WithLabelValues("token-classifier")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.droppedTokens))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.AnalysisFinished("ok")
		m.BackendFailed("x")
		m.SkillTokensDropped(1)
		m.ObserveRequest("GET", "/health", 200, time.Millisecond)
	})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.AnalysisFinished("ok")
	m.ObserveRequest("POST", "/analyze", 200, 20*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `resume_extractor_analyses_total{result="ok"} 1`)
	assert.Contains(t, body, `resume_extractor_http_requests_total{method="POST",route="/analyze",status="200"} 1`)
	assert.Contains(t, body, "resume_extractor_http_request_duration_seconds_bucket")
}
