// Package links extracts, normalizes, and diffs the hyperlinks of a single page.
package links

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Normalize resolves href against base and optionally strips its query and fragment.
// Absolute hrefs keep their own scheme and host.
func Normalize(href, base string, removeQuery, removeAnchors bool) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	return normalizeAgainst(baseURL, href, removeQuery, removeAnchors)
}

func normalizeAgainst(base *url.URL, href string, removeQuery, removeAnchors bool) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("parse href: %w", err)
	}
	resolved := base.ResolveReference(ref)

	if removeQuery {
		resolved.RawQuery = ""
		resolved.ForceQuery = false
	}
	if removeAnchors {
		resolved.Fragment = ""
		resolved.RawFragment = ""
	}
	return toIRI(resolved.String()), nil
}

// toIRI decodes percent-escapes that spell non-ASCII UTF-8 so international paths read
// as written (https://site.com/日本語). Escaped ASCII and invalid byte sequences are
// left untouched.
func toIRI(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		run, n := escapedRun(s[i:])
		if n == 0 {
			b.WriteByte(s[i])
			i++
			continue
		}
		writeDecoded(&b, run, s[i:i+n])
		i += n
	}
	return b.String()
}

// escapedRun decodes the consecutive %XX triplets at the start of s. It returns the
// decoded bytes and the length of s they consumed.
func escapedRun(s string) ([]byte, int) {
	var run []byte
	n := 0
	for n+2 < len(s) && s[n] == '%' && ishex(s[n+1]) && ishex(s[n+2]) {
		run = append(run, unhex(s[n+1])<<4|unhex(s[n+2]))
		n += 3
	}
	return run, n
}

// writeDecoded writes multi-byte runes of run literally and re-emits every other byte
// in its original escaped form from raw.
func writeDecoded(b *strings.Builder, run []byte, raw string) {
	for j := 0; j < len(run); {
		r, size := utf8.DecodeRune(run[j:])
		if r != utf8.RuneError && size > 1 && unicode.IsPrint(r) {
			b.WriteRune(r)
		} else {
			b.WriteString(raw[j*3 : (j+size)*3])
		}
		j += size
	}
}

func ishex(c byte) bool {
	switch {
	case '0' <= c && c <= '9', 'a' <= c && c <= 'f', 'A' <= c && c <= 'F':
		return true
	}
	return false
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

// hostOf returns the host (including any port) of raw, or false when raw cannot be parsed.
func hostOf(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	return u.Host, true
}
