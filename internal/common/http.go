package common

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ClientIP returns the caller address used for rate limit keys and request
// logs. The first parseable X-Forwarded-For entry wins, then X-Real-IP, then
// RemoteAddr. Entries that are not IP addresses are ignored so a forged header
// cannot mint arbitrary limiter keys.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	for _, candidate := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		if ip, ok := parseIP(candidate); ok {
			return ip
		}
	}
	if ip, ok := parseIP(r.Header.Get("X-Real-IP")); ok {
		return ip
	}
	remote := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(remote); err == nil {
		remote = host
	}
	if ip, ok := parseIP(remote); ok {
		return ip
	}
	return remote
}

// parseIP canonicalises an address; IPv4-mapped IPv6 becomes plain IPv4.
func parseIP(s string) (string, bool) {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	return addr.Unmap().WithZone("").String(), true
}
