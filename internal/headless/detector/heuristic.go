// Package detector decides when a plainly fetched page should be re-rendered in a headless browser
// before its links are extracted.
package detector

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/linkdiff/internal/fetcher"
)

const (
	defaultTextThreshold = 2048
	// sparseAnchors is the most links a script-dominated page may carry and still be
	// treated as a shell, which covers skip links and noscript fallbacks.
	sparseAnchors = 3
	// scriptHeavyPercent is the share of the body, in percent, taken by inline scripts
	// above which a page counts as script-dominated.
	scriptHeavyPercent = 50
)

// Heuristic compares the anchors a plain HTTP body already carries with the scripts that
// could be injecting more.
type Heuristic struct {
	// TextThreshold is the visible-text size, in bytes, below which a script-dominated
	// page with few anchors is rendered.
	TextThreshold int
}

// NewHeuristic creates a new detector.
func NewHeuristic(threshold int) *Heuristic {
	if threshold <= 0 {
		threshold = defaultTextThreshold
	}
	return &Heuristic{TextThreshold: threshold}
}

// pageSignals summarizes a fetched body.
type pageSignals struct {
	anchors     int
	scripts     int
	scriptBytes int
	textBytes   int
	totalBytes  int
}

func (s pageSignals) scriptPercent() int {
	if s.totalBytes == 0 {
		return 0
	}
	return s.scriptBytes * 100 / s.totalBytes
}

// ShouldPromote reports whether the fetched body looks like a script-rendered shell whose
// links only appear after JavaScript runs.
func (h *Heuristic) ShouldPromote(resp fetcher.Response) bool {
	if !fetcher.Successful(resp.StatusCode) {
		return false
	}
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return true
	}
	s, ok := measure(resp.Body)
	if !ok {
		return false
	}

	switch {
	case s.anchors == 0:
		// Nothing to extract yet; only scripts can add links.
		return s.scripts > 0
	case s.anchors <= sparseAnchors:
		return s.scriptPercent() >= scriptHeavyPercent && s.textBytes < h.TextThreshold
	default:
		return false
	}
}

func measure(body []byte) (pageSignals, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return pageSignals{}, false
	}

	s := pageSignals{totalBytes: len(body)}
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if href = strings.TrimSpace(href); href != "" && href != "#" {
			s.anchors++
		}
	})
	scripts := doc.Find("script")
	s.scripts = scripts.Length()
	scripts.Each(func(_ int, sc *goquery.Selection) {
		s.scriptBytes += len(sc.Text())
	})

	doc.Find("script, style, noscript, template").Remove()
	s.textBytes = len(strings.Join(strings.Fields(doc.Find("body").Text()), " "))
	return s, true
}
