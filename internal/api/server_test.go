package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlinsight/sqlinsight/pkg/config"
)

func newTestHandler(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(cfg, log).Handler()
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeEndpoint(t *testing.T) {
	h := newTestHandler(t, nil)
	rec := postJSON(t, h, "/v1/analyze", analyzeRequest{SQL: "SELECT * FROM users;"})
	require.Equal(t, http.StatusOK, rec.Code)

	var out analyzeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))

	_, err := uuid.Parse(out.AnalysisID)
	assert.NoError(t, err, "analysis_id must be a uuid")
	require.NotNil(t, out.Result)
	assert.Equal(t, out.AnalysisID, out.Result.ID)

	require.Len(t, out.Result.Findings, 1)
	assert.Equal(t, "performance.select-star", out.Result.Findings[0].ID)
	assert.Equal(t, 1, out.Result.Summary.Total)
}

func TestAnalyzeEndpointDialect(t *testing.T) {
	h := newTestHandler(t, nil)
	rec := postJSON(t, h, "/v1/analyze", analyzeRequest{
		SQL:     "CREATE TABLE t (id INT PRIMARY KEY) ENGINE=MyISAM;",
		Dialect: "mysql",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var out analyzeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))

	ids := make([]string, 0, len(out.Result.Findings))
	for _, f := range out.Result.Findings {
		ids = append(ids, f.ID)
	}
	assert.Contains(t, ids, "mysql.myisam-engine")
}

func TestAnalyzeMissingSQL(t *testing.T) {
	h := newTestHandler(t, nil)
	rec := postJSON(t, h, "/v1/analyze", analyzeRequest{SQL: "   "})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var out errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Equal(t, http.StatusBadRequest, out.Code)
	assert.Equal(t, "missing sql", out.Message)
}

func TestAnalyzeMalformedBody(t *testing.T) {
	h := newTestHandler(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid request body")
}

func TestAnalyzeUnknownDialect(t *testing.T) {
	h := newTestHandler(t, nil)
	rec := postJSON(t, h, "/v1/analyze", analyzeRequest{SQL: "SELECT 1;", Dialect: "postgrse"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown dialect")
}

func TestAnalyzeMethodNotAllowed(t *testing.T) {
	h := newTestHandler(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/v1/analyze", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /v1/analyze: want 405, got %d", rec.Code)
	}
}

func TestDialectsEndpoint(t *testing.T) {
	h := newTestHandler(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/v1/dialects", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Dialects []string `json:"dialects"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Equal(t, []string{"GENERIC", "MYSQL", "ORACLE", "POSTGRES", "SQLITE", "SQLSERVER"}, out.Dialects)
}

func TestHealthz(t *testing.T) {
	h := newTestHandler(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /healthz: want 200, got %d", rec.Code)
	}
	var out map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode healthz: %v", err)
	}
	if out["status"] != "ok" {
		t.Errorf("healthz status: want ok, got %q", out["status"])
	}
}

func TestCORSHeaders(t *testing.T) {
	h := newTestHandler(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if origin := rec.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("Access-Control-Allow-Origin: want *, got %q", origin)
	}
}

func TestAnalyzeContentType(t *testing.T) {
	h := newTestHandler(t, nil)
	rec := postJSON(t, h, "/v1/analyze", analyzeRequest{SQL: "SELECT 1;"})
	ct := rec.Header().Get("Content-Type")
	if ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type: want application/json; charset=utf-8, got %q", ct)
	}
}

func TestAnalyzeAppliesConfigOverrides(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Rules = []config.RuleSetting{{ID: "performance.select-star", Disabled: true}}

	h := newTestHandler(t, cfg)
	rec := postJSON(t, h, "/v1/analyze", analyzeRequest{SQL: "SELECT * FROM users;"})
	require.Equal(t, http.StatusOK, rec.Code)

	var out analyzeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Empty(t, out.Result.Findings)
	assert.True(t, out.Result.IsClean())
}
