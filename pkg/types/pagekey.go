package types

import (
	"net/url"
	"strings"
)

// PageKey returns the normalized page identity used to group content flags:
// host (www. stripped) plus path, with query and fragment removed, trailing
// slash removed, lowercased. Unparseable input is returned lowercased as-is.
func PageKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return strings.ToLower(rawURL)
	}
	return strings.ToLower(normalizeHost(u.Host) + strings.TrimSuffix(u.Path, "/"))
}

// NormalizeURL returns the normalized identity used to match link flags:
// like PageKey but the query string is kept. Fragments are always dropped.
func NormalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return strings.ToLower(rawURL)
	}
	normalized := normalizeHost(u.Host) + strings.TrimSuffix(u.Path, "/")
	if u.RawQuery != "" {
		normalized += "?" + u.RawQuery
	}
	return strings.ToLower(normalized)
}

// normalizeHost strips a leading www. label.
func normalizeHost(host string) string {
	return strings.TrimPrefix(host, "www.")
}
