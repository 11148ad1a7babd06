package guard

import (
	"net/http"
	"strings"
)

// headerText returns the trimmed value of the first name header. A missing
// or blank header yields "", which callers treat as absent.
func headerText(h http.Header, name string) string {
	return strings.TrimSpace(h.Get(name))
}

// firstListValue returns the first element of a comma-separated header
// value, trimmed.
func firstListValue(v string) string {
	first, _, _ := strings.Cut(v, ",")
	return strings.TrimSpace(first)
}

// hostWithoutPort lowercases a Host-style value and strips its port.
// Bracketed IPv6 literals lose their brackets; an unbracketed value with
// more than one colon is treated as a bare IPv6 address and kept whole.
// A malformed bracketed value yields "".
func hostWithoutPort(host string) string {
	host = strings.TrimSpace(host)
	if strings.HasPrefix(host, "[") {
		end := strings.IndexByte(host, ']')
		if end < 0 {
			return ""
		}
		return strings.ToLower(host[1:end])
	}
	if strings.Count(host, ":") == 1 {
		host, _, _ = strings.Cut(host, ":")
	}
	return strings.ToLower(strings.TrimSpace(host))
}

// requestHost returns the authority the client addressed, without port.
// The Host header is promoted to r.Host by net/http.
func requestHost(r *http.Request) string {
	host := r.Host
	if host == "" {
		host = r.Header.Get("Host")
	}
	return hostWithoutPort(host)
}
