package links

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		href          string
		base          string
		removeQuery   bool
		removeAnchors bool
		want          string
	}{
		{"relative path", "/a", "https://site.com", true, true, "https://site.com/a"},
		{"relative to directory", "b/c", "https://site.com/x/y", true, true, "https://site.com/x/b/c"},
		{"dot segments", "../up", "https://site.com/x/y/z", true, true, "https://site.com/x/up"},
		{"absolute passes through", "https://other.com/x", "https://site.com", true, true, "https://other.com/x"},
		{"protocol relative", "//cdn.site.com/lib", "https://site.com", true, true, "https://cdn.site.com/lib"},
		{"strips query and fragment", "/a?x=1#frag", "https://site.com", true, true, "https://site.com/a"},
		{"keeps query", "/a?x=1#frag", "https://site.com", false, true, "https://site.com/a?x=1"},
		{"keeps fragment", "/a?x=1#frag", "https://site.com", true, false, "https://site.com/a#frag"},
		{"keeps both", "/a?x=1#frag", "https://site.com", false, false, "https://site.com/a?x=1#frag"},
		{"bare question mark", "/a?", "https://site.com", true, true, "https://site.com/a"},
		{"fragment only", "#top", "https://site.com/page", true, true, "https://site.com/page"},
		{"surrounding whitespace", "  /a  ", "https://site.com", true, true, "https://site.com/a"},
		{"mailto", "mailto:me@site.com", "https://site.com", true, true, "mailto:me@site.com"},
		{"non-ascii path stays literal", "/日本語", "https://site.com", true, true, "https://site.com/日本語"},
		{"escaped non-ascii is decoded", "/caf%C3%A9", "https://site.com", true, true, "https://site.com/café"},
		{"non-ascii query kept literal", "/s?q=日本", "https://site.com", false, true, "https://site.com/s?q=日本"},
		{"escaped slash kept", "/a%2Fb", "https://site.com", true, true, "https://site.com/a%2Fb"},
		{"space stays escaped", "/a b", "https://site.com", true, true, "https://site.com/a%20b"},
		{"invalid utf-8 kept escaped", "/%FF", "https://site.com", true, true, "https://site.com/%FF"},
		{"truncated rune kept escaped", "/caf%C3%A9/%E2%82", "https://site.com", true, true, "https://site.com/café/%E2%82"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Normalize(tt.href, tt.base, tt.removeQuery, tt.removeAnchors)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeRejectsMalformedHref(t *testing.T) {
	t.Parallel()

	_, err := Normalize("http://[::1", "https://site.com", true, true)
	require.Error(t, err)

	_, err = Normalize("/a", "http://%zz", true, true)
	require.Error(t, err)
}

func TestToIRI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no escapes", "https://site.com/a", "https://site.com/a"},
		{"lowercase hex", "https://site.com/%e6%97%a5", "https://site.com/日"},
		{"ascii escapes kept", "https://site.com/a%3Fb%23c", "https://site.com/a%3Fb%23c"},
		{"mixed run", "https://site.com/%20%E6%97%A5%2F", "https://site.com/%20日%2F"},
		{"dangling percent", "https://site.com/100%", "https://site.com/100%"},
		{"control rune kept escaped", "https://site.com/%C2%85", "https://site.com/%C2%85"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, toIRI(tt.in))
		})
	}
}
