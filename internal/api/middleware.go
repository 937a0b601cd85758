package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/linkdiff/internal/logging"
)

const requestIDHeader = "X-Request-ID"

// IDGenerator produces request IDs.
type IDGenerator interface {
	NewID() string
}

// requestIDMiddleware tags each request with an ID, echoing a caller-supplied
// one when present, and stores a logger carrying it on the request context.
func requestIDMiddleware(ids IDGenerator, base *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := strings.TrimSpace(r.Header.Get(requestIDHeader))
			if reqID == "" || len(reqID) > 128 {
				reqID = ids.NewID()
			}
			w.Header().Set(requestIDHeader, reqID)
			ctx := logging.WithContext(r.Context(), base.With(zap.String("request_id", reqID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		requestLogger(r, nil).Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				requestLogger(r, nil).Error("panic recovered",
					zap.Any("panic", rec),
					zap.Stack("stack"),
				)
				writeError(w, r, http.StatusInternalServerError, fmt.Sprintf("unexpected error: %v", rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func requestLogger(r *http.Request, fallback *zap.Logger) *zap.Logger {
	return logging.FromContext(r.Context(), fallback)
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}
	return n, nil
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
