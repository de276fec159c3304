package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

// AnalyzeRequest is the body of POST /api/analyze
type AnalyzeRequest struct {
	Address string `json:"address"`
}

// handleAnalyze runs a full wallet analysis for the requested address
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	address := strings.TrimSpace(req.Address)
	if address == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "address is required", nil)
		return
	}

	result, err := s.analysisService.Analyze(r.Context(), address)
	if err != nil {
		status, code, message := mapServiceError(err)
		respondError(w, status, code, message, nil)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// handleGetResult returns a previously computed analysis by its share ID
func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	result, err := s.analysisService.GetResult(r.Context(), id)
	if err != nil {
		status, code, message := mapServiceError(err)
		respondError(w, status, code, message, nil)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
