package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-extractor/internal/db"
	"github.com/jonathan/resume-extractor/internal/observability"
	"github.com/jonathan/resume-extractor/internal/patterns"
	"github.com/jonathan/resume-extractor/internal/pipeline"
	"github.com/jonathan/resume-extractor/internal/server/ratelimit"
	"github.com/jonathan/resume-extractor/internal/types"
)

const testResume = `Jane Doe
jane.doe@example.com | +1 415-555-0100

Experience
Senior Engineer at Acme Corp, Jan 2020 - Present
• Built the billing pipeline

Skills
Python, Docker, SQL`

// mockStore implements Store with func fields
type mockStore struct {
	SaveAnalysisFunc      func(ctx context.Context, resumeID string, record *types.ResumeRecord) (int64, error)
	GetLatestAnalysisFunc func(ctx context.Context, resumeID string) (*db.Analysis, error)
	ListAnalysesFunc      func(ctx context.Context, resumeID string, limit int) ([]db.Analysis, error)
	closed                bool
}

func (m *mockStore) SaveAnalysis(ctx context.Context, resumeID string, record *types.ResumeRecord) (int64, error) {
	if m.SaveAnalysisFunc != nil {
		return m.SaveAnalysisFunc(ctx, resumeID, record)
	}
	return 1, nil
}

func (m *mockStore) GetLatestAnalysis(ctx context.Context, resumeID string) (*db.Analysis, error) {
	if m.GetLatestAnalysisFunc != nil {
		return m.GetLatestAnalysisFunc(ctx, resumeID)
	}
	return nil, nil
}

func (m *mockStore) ListAnalyses(ctx context.Context, resumeID string, limit int) ([]db.Analysis, error) {
	if m.ListAnalysesFunc != nil {
		return m.ListAnalysesFunc(ctx, resumeID, limit)
	}
	return nil, nil
}

func (m *mockStore) Close() { m.closed = true }

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	if opts.Analyzer == nil {
		opts.Analyzer = pipeline.NewAnalyzer(patterns.MustDefault())
	}
	opts.Logger = zerolog.Nop()
	s, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(s.rateLimiter.Stop)
	return s
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func analyzeBody(t *testing.T, req AnalyzeRequest) string {
	t.Helper()
	data, err := json.Marshal(req)
	require.NoError(t, err)
	return string(data)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp["error"]
}

func TestNew_RequiresAnalyzer(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, Options{})

	w := do(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, Options{})

	w := do(t, s, http.MethodOptions, "/analyze", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestAnalyze_ReturnsRecord(t *testing.T) {
	s := newTestServer(t, Options{})

	w := do(t, s, http.MethodPost, "/analyze", analyzeBody(t, AnalyzeRequest{ID: "r1", Text: testResume}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "r1", w.Header().Get("X-Resume-ID"))

	var record types.ResumeRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	assert.Equal(t, "Jane Doe", record.Metadata.Name)
	assert.Equal(t, "jane.doe@example.com", record.Metadata.Email)
	require.Len(t, record.Experience, 1)
	assert.Equal(t, "Senior Engineer", record.Experience[0].Role)
	assert.Contains(t, record.Skills, "Python")
	assert.Contains(t, record.Tags, "Senior")
	assert.NotNil(t, record.Education)
	assert.NotNil(t, record.Projects)
}

func TestAnalyze_GeneratesID(t *testing.T) {
	s := newTestServer(t, Options{})

	w := do(t, s, http.MethodPost, "/analyze", analyzeBody(t, AnalyzeRequest{Text: testResume}))
	require.Equal(t, http.StatusOK, w.Code)

	_, err := uuid.Parse(w.Header().Get("X-Resume-ID"))
	assert.NoError(t, err)
}

func TestAnalyze_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		errMsg string
	}{
		{"invalid json", "{", http.StatusBadRequest, "invalid request body"},
		{"missing text", `{"id":"x"}`, http.StatusBadRequest, "text"},
		{"blank text", `{"text":"   "}`, http.StatusUnprocessableEntity, "empty"},
		{"missing role", `{"id":"x","text":"Experience\n• Shipped features"}`, http.StatusUnprocessableEntity, "role"},
		{"store without db", analyzeBody(t, AnalyzeRequest{Text: testResume, Store: true}), http.StatusServiceUnavailable, "not configured"},
	}

	s := newTestServer(t, Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/analyze", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, decodeError(t, w), tt.errMsg)
		})
	}
}

func TestAnalyze_LenientTags(t *testing.T) {
	analyzer := pipeline.NewAnalyzer(patterns.MustDefault(), pipeline.WithStrictTags(false))
	s := newTestServer(t, Options{Analyzer: analyzer})

	w := do(t, s, http.MethodPost, "/analyze", `{"text":"Experience\n• Shipped features"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"tags":[]`)
}

func TestAnalyze_Store(t *testing.T) {
	var savedID string
	store := &mockStore{
		SaveAnalysisFunc: func(_ context.Context, resumeID string, record *types.ResumeRecord) (int64, error) {
			savedID = resumeID
			assert.NotEmpty(t, record.Tags)
			return 42, nil
		},
	}
	s := newTestServer(t, Options{Store: store})

	w := do(t, s, http.MethodPost, "/analyze", analyzeBody(t, AnalyzeRequest{ID: "r1", Text: testResume, Store: true}))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "r1", savedID)

	var analysis db.Analysis
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &analysis))
	assert.Equal(t, int64(42), analysis.ID)
	assert.Equal(t, "r1", analysis.ResumeID)
	assert.Equal(t, analysis.Record.Tags, analysis.Tags)
	assert.Equal(t, "Jane Doe", analysis.Record.Metadata.Name)
}

func TestAnalyze_StoreFailureIsInternal(t *testing.T) {
	store := &mockStore{
		SaveAnalysisFunc: func(context.Context, string, *types.ResumeRecord) (int64, error) {
			return 0, errors.New("connection refused")
		},
	}
	s := newTestServer(t, Options{Store: store})

	w := do(t, s, http.MethodPost, "/analyze", analyzeBody(t, AnalyzeRequest{Text: testResume, Store: true}))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal error", decodeError(t, w))
}

func TestAnalyzeStream(t *testing.T) {
	s := newTestServer(t, Options{})

	w := do(t, s, http.MethodPost, "/analyze/stream", analyzeBody(t, AnalyzeRequest{ID: "r1", Text: testResume}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	body := w.Body.String()
	assert.Equal(t, len(pipeline.Stages), strings.Count(body, "event: stage\n"))
	assert.Contains(t, body, "event: result\n")
	assert.Contains(t, body, `"resume_id":"r1"`)
	assert.True(t, strings.HasSuffix(body, "event: complete\ndata: {\"resume_id\":\"r1\",\"status\":\"completed\"}\n\n"))
}

func TestAnalyzeStream_AnalysisError(t *testing.T) {
	s := newTestServer(t, Options{})

	w := do(t, s, http.MethodPost, "/analyze/stream", `{"text":"Experience\n• Shipped features"}`)
	body := w.Body.String()
	assert.Contains(t, body, "event: error\n")
	assert.NotContains(t, body, "event: result")
}

func TestGetAnalysis(t *testing.T) {
	stored := &db.Analysis{ID: 7, ResumeID: "r1", Tags: []string{"Go"}, CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := &mockStore{
		GetLatestAnalysisFunc: func(_ context.Context, resumeID string) (*db.Analysis, error) {
			if resumeID == "r1" {
				return stored, nil
			}
			return nil, nil
		},
	}
	s := newTestServer(t, Options{Store: store})

	w := do(t, s, http.MethodGet, "/analyses/r1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got db.Analysis
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, []string{"Go"}, got.Tags)

	w = do(t, s, http.MethodGet, "/analyses/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, decodeError(t, w), "missing")
}

func TestGetAnalysis_NoStore(t *testing.T) {
	s := newTestServer(t, Options{})

	assert.Equal(t, http.StatusServiceUnavailable, do(t, s, http.MethodGet, "/analyses/r1", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, s, http.MethodGet, "/analyses/r1/history", "").Code)
}

func TestListAnalyses(t *testing.T) {
	var gotLimit int
	store := &mockStore{
		ListAnalysesFunc: func(_ context.Context, _ string, limit int) ([]db.Analysis, error) {
			gotLimit = limit
			return []db.Analysis{{ID: 2}, {ID: 1}}, nil
		},
	}
	s := newTestServer(t, Options{Store: store})

	w := do(t, s, http.MethodGet, "/analyses/r1/history?limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, gotLimit)

	var got []db.Analysis
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 2)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/analyses/r1/history?limit=0", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/analyses/r1/history?limit=abc", "").Code)
}

func TestListAnalyses_EmptyIsArray(t *testing.T) {
	s := newTestServer(t, Options{Store: &mockStore{}})

	w := do(t, s, http.MethodGet, "/analyses/r1/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestSkillEndpoints(t *testing.T) {
	s := newTestServer(t, Options{})

	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/analyze",
		analyzeBody(t, AnalyzeRequest{ID: "a", Text: testResume})).Code)
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/analyze",
		analyzeBody(t, AnalyzeRequest{ID: "b", Text: "Jane Doe\n\nExperience\nEngineer at Acme\n• Did work\n\nSkills\nPython"})).Code)

	w := do(t, s, http.MethodGet, "/skills", "")
	require.Equal(t, http.StatusOK, w.Code)
	var skillsResp SkillsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &skillsResp))
	assert.Contains(t, skillsResp.Skills, "Python")

	w = do(t, s, http.MethodGet, "/skills/filter?skill=python", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"resume_id":"a"`)
	assert.Contains(t, w.Body.String(), `"resume_id":"b"`)

	w = do(t, s, http.MethodGet, "/skills/filter?skill=python,docker", "")
	assert.Contains(t, w.Body.String(), `"resume_id":"a"`)
	assert.NotContains(t, w.Body.String(), `"resume_id":"b"`)

	w = do(t, s, http.MethodGet, "/skills/filter", "")
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(t, s, http.MethodGet, "/skills/documents", "")
	assert.Contains(t, w.Body.String(), `"resume_id":"b"`)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, Options{Limiter: ratelimit.NewLimiter(ratelimit.NewConfig(1, 1))})
	body := analyzeBody(t, AnalyzeRequest{Text: testResume})

	w := do(t, s, http.MethodPost, "/analyze", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = do(t, s, http.MethodPost, "/analyze", body)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "rate_limit_exceeded", resp["error"])

	// Health checks are never limited
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/health", "").Code)
}

func TestRateLimit_CORS(t *testing.T) {
	s := newTestServer(t, Options{Limiter: ratelimit.NewLimiter(ratelimit.NewConfig(1, 1))})

	// Preflights do not spend tokens
	for i := 0; i < 3; i++ {
		w := do(t, s, http.MethodOptions, "/analyze", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}

	body := analyzeBody(t, AnalyzeRequest{Text: testResume})
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/analyze", body).Code)

	w := do(t, s, http.MethodPost, "/analyze", body)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, Options{Metrics: observability.NewMetrics()})

	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/analyze", analyzeBody(t, AnalyzeRequest{Text: testResume})).Code)
	do(t, s, http.MethodGet, "/nope", "")

	w := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `resume_extractor_http_requests_total{method="POST",route="POST /analyze",status="200"} 1`)
	assert.Contains(t, body, `route="unmatched",status="404"`)
}

func TestMetricsEndpoint_Disabled(t *testing.T) {
	s := newTestServer(t, Options{})
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/metrics", "").Code)
}

func TestClose_ClosesStore(t *testing.T) {
	store := &mockStore{}
	s := newTestServer(t, Options{Store: store})

	s.close()
	assert.True(t, store.closed)
}
