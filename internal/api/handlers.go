package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/linkdiff/internal/extraction"
)

const maxRequestBytes = 1 << 20

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

type clearResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) extract(w http.ResponseWriter, r *http.Request) {
	var req extraction.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	rec, err := s.extractor.Extract(r.Context(), req)
	if err != nil {
		kind := extraction.KindOf(err)
		status := statusFor(kind)
		if status >= http.StatusInternalServerError {
			requestLogger(r, s.logger).Error("extraction failed", zap.Stringer("kind", kind), zap.Error(err))
		}
		writeError(w, r, status, err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, rec)
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.Load(r.Context())
	if err != nil {
		requestLogger(r, s.logger).Error("load history failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to load history: %v", err))
		return
	}
	writeJSON(w, r, http.StatusOK, records)
}

func (s *Server) clearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Clear(r.Context()); err != nil {
		requestLogger(r, s.logger).Error("clear history failed", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to clear history: %v", err))
		return
	}
	writeJSON(w, r, http.StatusOK, clearResponse{Success: true, Message: "history cleared"})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: s.clock.Now(),
		Version:   s.version,
	})
}

// statusFor maps an extraction error kind to its HTTP status.
func statusFor(kind extraction.Kind) int {
	switch kind {
	case extraction.KindInputInvalid, extraction.KindFetchFailed:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		requestLogger(r, nil).Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}
