package api

import (
	"context"
	"embed"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/JakeFAU/linkdiff/internal/clock"
	"github.com/JakeFAU/linkdiff/internal/extraction"
	"github.com/JakeFAU/linkdiff/internal/history"
	"github.com/JakeFAU/linkdiff/internal/id/uuid"
	"github.com/JakeFAU/linkdiff/internal/metrics"
)

//go:embed static
var staticFiles embed.FS

// Extractor runs a single extraction.
type Extractor interface {
	Extract(ctx context.Context, req extraction.Request) (history.Record, error)
}

// HistoryStore reads and clears the persisted extraction history.
type HistoryStore interface {
	Load(ctx context.Context) ([]history.Record, error)
	Clear(ctx context.Context) error
}

// Server wires HTTP handlers to the extraction service and history store.
type Server struct {
	router    chi.Router
	extractor Extractor
	store     HistoryStore
	clock     clock.Clock
	version   string
	logger    *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	extractor Extractor,
	store HistoryStore,
	clk clock.Clock,
	version string,
	logger *zap.Logger,
) *Server {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		extractor: extractor,
		store:     store,
		clock:     clk,
		version:   version,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware(uuid.New(), logger))
	r.Use(loggingMiddleware)
	r.Use(recoverMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(metrics.Middleware)

	r.Get("/", s.index)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/extract", s.extract)
		r.Get("/history", s.getHistory)
		r.Delete("/history", s.clearHistory)
		r.Get("/health", s.health)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	page, err := fs.ReadFile(staticFiles, "static/index.html")
	if err != nil {
		requestLogger(r, s.logger).Error("read embedded frontend", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "frontend unavailable")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(page); err != nil {
		requestLogger(r, s.logger).Warn("write frontend failed", zap.Error(err))
	}
}
