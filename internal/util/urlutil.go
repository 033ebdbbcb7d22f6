package util

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizeBaseURL parses raw as an absolute http(s) service URL and returns
// it without a trailing slash. A bare host:port gets an http scheme.
func NormalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty API URL")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid API URL %q", raw)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return "", fmt.Errorf("unsupported API URL scheme %q: use http or https", u.Scheme)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return strings.TrimRight(u.String(), "/"), nil
}

// JoinURL appends a service-relative reference to base with exactly one
// slash between them.
func JoinURL(base, ref string) string {
	base = strings.TrimRight(base, "/")
	ref = strings.TrimLeft(ref, "/")
	if ref == "" {
		return base
	}
	return base + "/" + ref
}
