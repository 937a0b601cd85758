// Package extraction orchestrates a single link extraction: validate the URL, fetch the
// page, extract and normalize its links, diff them against the previous extraction of
// the same page, and persist the result.
package extraction

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/JakeFAU/linkdiff/internal/clock"
	"github.com/JakeFAU/linkdiff/internal/fetcher"
	"github.com/JakeFAU/linkdiff/internal/history"
	"github.com/JakeFAU/linkdiff/internal/links"
	"github.com/JakeFAU/linkdiff/internal/logging"
	"github.com/JakeFAU/linkdiff/internal/metrics"
)

// HistoryStore is the subset of the history store an extraction needs.
type HistoryStore interface {
	FindByBaseURL(ctx context.Context, url string) (history.Record, bool, error)
	Append(ctx context.Context, rec history.Record) error
}

// Detector decides whether a plainly fetched page needs a headless render.
type Detector interface {
	ShouldPromote(resp fetcher.Response) bool
}

// Service runs extractions. It holds no state between calls.
type Service struct {
	plain    fetcher.Fetcher
	headless fetcher.Fetcher
	detector Detector
	store    HistoryStore
	clock    clock.Clock
	validate *validator.Validate
	logger   *zap.Logger
}

// NewService wires a Service. headless and detector may be nil, which disables
// headless promotion.
func NewService(
	plain fetcher.Fetcher,
	headless fetcher.Fetcher,
	detector Detector,
	store HistoryStore,
	clk clock.Clock,
	logger *zap.Logger,
) *Service {
	metrics.Init()
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		plain:    plain,
		headless: headless,
		detector: detector,
		store:    store,
		clock:    clk,
		validate: newValidator(),
		logger:   logger,
	}
}

// Extract runs one extraction. Every returned error is an *Error.
func (s *Service) Extract(ctx context.Context, req Request) (rec history.Record, err error) {
	defer func() {
		if err != nil {
			metrics.ObserveExtraction(KindOf(err).String())
			return
		}
		metrics.ObserveExtraction("ok")
		metrics.ObserveLinks(rec.TotalCount, rec.NewCount)
	}()

	target, err := s.normalizeRequest(req)
	if err != nil {
		return history.Record{}, err
	}
	logger := logging.FromContext(ctx, s.logger).With(zap.String("url", target))

	page, err := s.fetch(ctx, logger, target)
	if err != nil {
		return history.Record{}, err
	}

	opts := req.Options.Resolve()
	all, err := links.Extract(bytes.NewReader(page.Body), target, opts)
	if err != nil {
		return history.Record{}, unexpected(fmt.Errorf("extract links: %w", err))
	}

	var previous []string
	prev, found, err := s.store.FindByBaseURL(ctx, target)
	switch {
	case err != nil:
		logger.Warn("history lookup failed; treating all links as new", zap.Error(err))
	case found:
		previous = prev.AllLinks
	}

	rec = history.NewRecord(target, all, links.Diff(all, previous), s.clock.Now(), opts)
	if err := s.store.Append(ctx, rec); err != nil {
		metrics.ObserveHistoryWriteFailure()
		logger.Error("failed to persist extraction record", zap.Error(err))
	}

	logger.Info("extraction complete",
		zap.Int("total", rec.TotalCount),
		zap.Int("new", rec.NewCount),
		zap.Bool("had_previous", found),
		zap.Bool("headless", page.UsedHeadless),
	)
	return rec, nil
}

func (s *Service) fetch(ctx context.Context, logger *zap.Logger, target string) (fetcher.Response, error) {
	first, err := s.plain.Fetch(ctx, fetcher.Request{URL: target})
	if err != nil {
		logger.Warn("fetch failed", zap.Error(err))
		return fetcher.Response{}, fetchFailed(err)
	}
	metrics.ObserveFetch(len(first.Body))

	if s.headless == nil || s.detector == nil || !s.detector.ShouldPromote(first) {
		return first, nil
	}
	rendered, err := s.headless.Fetch(ctx, fetcher.Request{URL: target})
	if err != nil {
		metrics.ObserveHeadlessPromotion("failed")
		logger.Warn("headless render failed; using plain body", zap.Error(err))
		return first, nil
	}
	metrics.ObserveHeadlessPromotion("rendered")
	return rendered, nil
}
