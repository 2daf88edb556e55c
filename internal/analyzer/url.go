package analyzer

import (
	"errors"
	"net/url"
	"strings"
)

// ErrInvalidURL is returned for inputs that cannot name a public website.
var ErrInvalidURL = errors.New("analyzer: invalid url")

// NormalizeURL trims raw, defaults the scheme to https and validates the host.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidURL
	}
	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		if strings.Contains(raw, "://") {
			return "", ErrInvalidURL
		}
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrInvalidURL
	}
	host := strings.ToLower(u.Hostname())
	if host == "" || strings.ContainsAny(host, " _") {
		return "", ErrInvalidURL
	}
	if !strings.Contains(host, ".") && host != "localhost" {
		return "", ErrInvalidURL
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String(), nil
}

// URLVariants returns normalized followed by the same URL with the www.
// prefix toggled. Bare hosts such as localhost get no variant.
func URLVariants(normalized string) []string {
	u, err := url.Parse(normalized)
	if err != nil {
		return []string{normalized}
	}
	host := u.Host
	alt := *u
	switch {
	case strings.HasPrefix(host, "www."):
		alt.Host = strings.TrimPrefix(host, "www.")
	case strings.Contains(u.Hostname(), "."):
		alt.Host = "www." + host
	default:
		return []string{normalized}
	}
	return []string{normalized, alt.String()}
}
