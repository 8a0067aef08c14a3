package helpers

import (
	"net/url"
	"path"
	"strings"
)

// ResolveURL resolves href against base, returning "" when either is unusable
func ResolveURL(base, href string) string {
	b, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return ""
	}
	h, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return b.ResolveReference(h).String()
}

// PathExtension returns the lowercased extension of href's path without the dot
func PathExtension(href string) string {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(path.Ext(u.Path)), ".")
}

// IsHTTPURL reports whether s is an absolute http(s) URL
func IsHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
