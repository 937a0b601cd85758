package links

import (
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func anchors(hrefs ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, h := range hrefs {
		fmt.Fprintf(&b, `<a href="%s">link</a>`, h)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func TestExtract_DefaultOptionsCollapseAndFilter(t *testing.T) {
	t.Parallel()

	page := anchors("/a", "#", "", "https://other.com/x", "/a?x=1#frag")
	got, err := Extract(strings.NewReader(page), "https://site.com", DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, []string{"https://site.com/a"}, got)
}

func TestExtract_ExternalLinksKeptWhenNotInternalOnly(t *testing.T) {
	t.Parallel()

	page := anchors("/b", "https://other.com/x", "/a", "mailto:me@site.com")
	opts := DefaultOptions()
	opts.InternalOnly = false

	got, err := Extract(strings.NewReader(page), "https://site.com", opts)
	require.NoError(t, err)
	require.Equal(t, []string{
		"https://other.com/x",
		"https://site.com/a",
		"https://site.com/b",
		"mailto:me@site.com",
	}, got)
}

func TestExtract_HostMatchIsExact(t *testing.T) {
	t.Parallel()

	page := anchors("https://www.site.com/a", "https://site.com:8443/b", "https://site.com/c")
	got, err := Extract(strings.NewReader(page), "https://site.com/start", DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, []string{"https://site.com/c"}, got)
}

func TestExtract_InternationalLinksInIRIForm(t *testing.T) {
	t.Parallel()

	page := anchors("/日本語", "/%E6%97%A5%E6%9C%AC%E8%AA%9E", "/a b", "/a%20b")
	got, err := Extract(strings.NewReader(page), "https://site.com", DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, []string{"https://site.com/a%20b", "https://site.com/日本語"}, got)
}

func TestExtract_UserinfoDoesNotAffectHostMatch(t *testing.T) {
	t.Parallel()

	page := anchors("https://user:pw@site.com/a", "https://site.com@evil.com/b")
	got, err := Extract(strings.NewReader(page), "https://site.com", DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, []string{"https://user:pw@site.com/a"}, got)
}

func TestExtract_QueryAndFragmentOptions(t *testing.T) {
	t.Parallel()

	page := anchors("/a?x=1", "/a?x=2", "/a#one")
	opts := Options{InternalOnly: true, RemoveQuery: false, RemoveAnchors: false}

	got, err := Extract(strings.NewReader(page), "https://site.com", opts)
	require.NoError(t, err)
	require.Equal(t, []string{
		"https://site.com/a#one",
		"https://site.com/a?x=1",
		"https://site.com/a?x=2",
	}, got)
}

func TestExtract_DropsMalformedHrefs(t *testing.T) {
	t.Parallel()

	page := anchors("http://[::1", "/ok")
	got, err := Extract(strings.NewReader(page), "https://site.com", DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, []string{"https://site.com/ok"}, got)
}

func TestExtract_NoAnchorsYieldsEmptySlice(t *testing.T) {
	t.Parallel()

	got, err := Extract(strings.NewReader("<p>nothing here</p>"), "https://site.com", DefaultOptions())
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestExtract_IgnoresAnchorsWithoutHref(t *testing.T) {
	t.Parallel()

	page := `<a name="top">top</a><a href="/x">x</a><link href="/style.css">`
	got, err := Extract(strings.NewReader(page), "https://site.com", DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, []string{"https://site.com/x"}, got)
}

func TestExtract_InvalidBase(t *testing.T) {
	t.Parallel()

	_, err := Extract(strings.NewReader(anchors("/a")), "http://%zz", DefaultOptions())
	require.Error(t, err)
}

func TestExtract_SortedAndUnique(t *testing.T) {
	t.Parallel()

	hrefs := []string{"/z", "/m", "/a", "/m", "/z?q=1", "/b#x", "/a/", "/A"}
	got, err := Extract(strings.NewReader(anchors(hrefs...)), "https://site.com", DefaultOptions())
	require.NoError(t, err)

	require.True(t, sort.StringsAreSorted(got), "expected sorted output: %v", got)
	seen := map[string]bool{}
	for _, link := range got {
		require.False(t, seen[link], "duplicate %s", link)
		seen[link] = true
	}
	require.Len(t, got, 6)
}

func TestDiff(t *testing.T) {
	t.Parallel()

	current := []string{"https://site.com/a", "https://site.com/b", "https://site.com/c"}

	require.Equal(t, current, Diff(current, nil))
	require.Equal(t, []string{"https://site.com/b"}, Diff(current, []string{"https://site.com/a", "https://site.com/c"}))

	none := Diff(current, current)
	require.NotNil(t, none)
	require.Empty(t, none)
}

func TestOptionOverridesResolve(t *testing.T) {
	t.Parallel()

	var nilOverrides *OptionOverrides
	require.Equal(t, DefaultOptions(), nilOverrides.Resolve())
	require.Equal(t, DefaultOptions(), (&OptionOverrides{}).Resolve())

	off := false
	got := (&OptionOverrides{RemoveQuery: &off}).Resolve()
	require.Equal(t, Options{InternalOnly: true, RemoveQuery: false, RemoveAnchors: true}, got)
}
