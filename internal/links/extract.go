package links

import (
	"fmt"
	"io"
	"net/url"
	"sort"

	"github.com/PuerkitoBio/goquery"
)

// anchorOnly is the bare fragment href that never points anywhere.
const anchorOnly = "#"

// Extract parses the HTML in r and returns the sorted, deduplicated, normalized
// hrefs of its anchors. Hrefs that fail to normalize are dropped.
func Extract(r io.Reader, base string, opts Options) ([]string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || href == "" || href == anchorOnly {
			return
		}
		normalized, err := normalizeAgainst(baseURL, href, opts.RemoveQuery, opts.RemoveAnchors)
		if err != nil {
			return
		}
		seen[normalized] = struct{}{}
	})

	out := make([]string, 0, len(seen))
	for link := range seen {
		if opts.InternalOnly && !sameHost(link, baseURL.Host) {
			continue
		}
		out = append(out, link)
	}
	sort.Strings(out)
	return out, nil
}

func sameHost(link, host string) bool {
	got, ok := hostOf(link)
	if !ok {
		return false
	}
	return got == host
}

// Diff returns the links of current that are absent from previous, in current's order.
func Diff(current, previous []string) []string {
	known := make(map[string]struct{}, len(previous))
	for _, link := range previous {
		known[link] = struct{}{}
	}
	out := make([]string, 0, len(current))
	for _, link := range current {
		if _, ok := known[link]; ok {
			continue
		}
		out = append(out, link)
	}
	return out
}
