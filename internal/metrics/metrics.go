// Package metrics exposes Prometheus collectors for the link extraction service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	extractionsTotal           *prometheus.CounterVec
	linksExtracted             prometheus.Histogram
	newLinksExtracted          prometheus.Histogram
	fetchedPageBytes           prometheus.Histogram
	historyWriteFailuresTotal  prometheus.Counter
	headlessPromotionsTotal    *prometheus.CounterVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

var linkBuckets = []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000}

// Init registers the collectors with the default registry.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		extractionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkdiff_extractions_total",
				Help: "Total number of extraction requests, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		linksExtracted = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "linkdiff_links_extracted",
				Help:    "Number of links returned per successful extraction.",
				Buckets: linkBuckets,
			},
		)

		newLinksExtracted = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "linkdiff_new_links_extracted",
				Help:    "Number of links not seen in the previous extraction of the same page.",
				Buckets: linkBuckets,
			},
		)

		fetchedPageBytes = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "linkdiff_fetched_page_bytes",
				Help:    "Size of fetched page bodies in bytes.",
				Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
			},
		)

		historyWriteFailuresTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "linkdiff_history_write_failures_total",
				Help: "Total number of extraction records that could not be persisted.",
			},
		)

		headlessPromotionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkdiff_headless_promotions_total",
				Help: "Total number of pages re-rendered in a headless browser, labeled by result.",
			},
			[]string{"result"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveExtraction counts one extraction attempt by outcome.
func ObserveExtraction(outcome string) {
	extractionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveLinks records the link counts of a successful extraction.
func ObserveLinks(total, fresh int) {
	linksExtracted.Observe(float64(total))
	newLinksExtracted.Observe(float64(fresh))
}

// ObserveFetch records the body size of a fetched page. Empty bodies are skipped.
func ObserveFetch(bytesFetched int) {
	if bytesFetched <= 0 {
		return
	}
	fetchedPageBytes.Observe(float64(bytesFetched))
}

// ObserveHistoryWriteFailure counts a record that could not be persisted.
func ObserveHistoryWriteFailure() {
	historyWriteFailuresTotal.Inc()
}

// ObserveHeadlessPromotion counts a headless re-render attempt.
func ObserveHeadlessPromotion(result string) {
	headlessPromotionsTotal.WithLabelValues(result).Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
