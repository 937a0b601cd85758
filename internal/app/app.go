// Package app initializes and holds long-lived application services, acting as a dependency injection container.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/linkdiff/internal/api"
	"github.com/JakeFAU/linkdiff/internal/clock"
	"github.com/JakeFAU/linkdiff/internal/config"
	"github.com/JakeFAU/linkdiff/internal/extraction"
	"github.com/JakeFAU/linkdiff/internal/fetcher"
	collyfetcher "github.com/JakeFAU/linkdiff/internal/fetcher/colly"
	headlessfetcher "github.com/JakeFAU/linkdiff/internal/fetcher/headless"
	"github.com/JakeFAU/linkdiff/internal/headless/detector"
	"github.com/JakeFAU/linkdiff/internal/history"
)

// App holds the shared, long-lived services for the application. It is built once
// at startup and handed to the command that runs.
type App struct {
	cfg      config.Config
	logger   *zap.Logger
	store    *history.Store
	service  *extraction.Service
	server   *api.Server
	headless *headlessfetcher.Fetcher
}

// New wires the history store, fetchers, extraction service and HTTP server from cfg.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := history.New(cfg.History, logger.Named("history"))
	if err != nil {
		return nil, fmt.Errorf("init history store: %w", err)
	}

	plain := collyfetcher.New(collyfetcher.Config{
		UserAgent:    cfg.Fetch.UserAgent,
		Timeout:      cfg.FetchTimeout(),
		MaxBodyBytes: cfg.Fetch.MaxBodyBytes,
	})

	a := &App{cfg: cfg, logger: logger, store: store}

	var (
		headless fetcher.Fetcher
		detect   extraction.Detector
	)
	if cfg.Headless.Enabled {
		hf, err := headlessfetcher.NewChromedp(headlessfetcher.Config{
			MaxParallel:       cfg.Headless.MaxParallel,
			UserAgent:         cfg.Fetch.UserAgent,
			NavigationTimeout: time.Duration(cfg.Headless.NavTimeoutSec) * time.Second,
		})
		if err != nil {
			logger.Warn("headless fetcher init failed; continuing without it", zap.Error(err))
		} else {
			a.headless = hf
			headless = hf
			detect = detector.NewHeuristic(cfg.Headless.PromotionThresh)
		}
	}

	clk := clock.New()
	a.service = extraction.NewService(plain, headless, detect, store, clk, logger.Named("extraction"))
	a.server = api.NewServer(a.service, store, clk, cfg.API.Version, logger.Named("api"))

	logger.Info("application services initialized",
		zap.String("history_file", store.Path()),
		zap.Bool("headless", a.headless != nil),
	)
	return a, nil
}

// Config returns the configuration the application was built from.
func (a *App) Config() config.Config {
	return a.cfg
}

// Logger returns the shared logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Store exposes the history store.
func (a *App) Store() *history.Store {
	return a.store
}

// Service exposes the extraction service.
func (a *App) Service() *extraction.Service {
	return a.service
}

// Handler returns the HTTP handler tree.
func (a *App) Handler() http.Handler {
	return a.server.Handler()
}

// Serve listens on port and blocks until ctx is cancelled or the server fails.
// Cancellation triggers a graceful shutdown bounded by the configured timeout.
func (a *App) Serve(ctx context.Context, port int) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("port %d is already in use; pass another port as an argument or set PORT: %w", port, err)
		}
		return fmt.Errorf("listen on port %d: %w", port, err)
	}
	return a.ServeListener(ctx, ln)
}

// ServeListener serves on an existing listener. See Serve.
func (a *App) ServeListener(ctx context.Context, ln net.Listener) error {
	readHeader := time.Duration(a.cfg.Server.ReadHeaderTimeoutSeconds) * time.Second
	if readHeader <= 0 {
		readHeader = 5 * time.Second
	}
	srv := &http.Server{
		Handler:           a.server.Handler(),
		ReadHeaderTimeout: readHeader,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server started", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutdown initiated")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	a.logger.Info("shutdown complete")
	return nil
}

// Close releases resources held by the application.
func (a *App) Close() {
	if a.headless != nil {
		a.headless.Close()
	}
	_ = a.logger.Sync() //nolint:errcheck // best-effort flush
}
