package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/sqlinsight/sqlinsight/pkg/analyzer"
	"github.com/sqlinsight/sqlinsight/pkg/types"
)

// analyzeRequest is the POST /v1/analyze body. Dialect is optional and
// defaults to generic.
type analyzeRequest struct {
	SQL     string `json:"sql"`
	Dialect string `json:"dialect,omitempty"`
}

// analyzeResponse wraps the result under a fresh analysis ID. The same ID is
// stamped into the result itself.
type analyzeResponse struct {
	AnalysisID string                   `json:"analysis_id"`
	Result     *analyzer.AnalysisResult `json:"result"`
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.SQL) == "" {
		writeError(w, http.StatusBadRequest, "missing sql")
		return
	}
	d, ok := s.resolveDialect(req.Dialect)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown dialect %q", req.Dialect))
		return
	}

	res := s.analyzers[d].Analyze(r.Context(), req.SQL)
	res.ID = uuid.NewString()
	s.log.Info("analyzed document",
		"analysis_id", res.ID, "dialect", d, "findings", res.Summary.Total)
	writeJSON(w, http.StatusOK, analyzeResponse{AnalysisID: res.ID, Result: res})
}

// resolveDialect parses the request dialect. The core parser falls back to
// generic for names it does not know; at the HTTP boundary that would hide
// typos, so unknown names are rejected instead.
func (s *Server) resolveDialect(name string) (types.Dialect, bool) {
	trimmed := strings.ToUpper(strings.TrimSpace(name))
	if trimmed == "" || trimmed == "GENERIC" {
		return types.DialectGeneric, true
	}
	d := types.ParseDialect(trimmed)
	if d == types.DialectGeneric {
		return types.DialectGeneric, false
	}
	return d, true
}

func (s *Server) handleDialects(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"dialects": s.dialects})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Code: status, Message: msg})
}
