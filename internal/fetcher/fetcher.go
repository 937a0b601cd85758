// Package fetcher defines the page retrieval contract shared by the plain HTTP and headless fetchers.
package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Request captures everything needed to fetch a page.
type Request struct {
	URL     string
	Headers http.Header
}

// Response is the result returned by a Fetcher implementation.
type Response struct {
	URL          string
	StatusCode   int
	Headers      http.Header
	Body         []byte
	Duration     time.Duration
	UsedHeadless bool
}

// Fetcher fetches a URL and returns the body plus metadata.
type Fetcher interface {
	Fetch(ctx context.Context, request Request) (Response, error)
}

// StatusError reports a response whose status code is outside the 2xx range.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s for %s", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

// Successful reports whether code is a 2xx status.
func Successful(code int) bool {
	return code >= http.StatusOK && code < http.StatusMultipleChoices
}
