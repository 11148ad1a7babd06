package guard

import (
	"fmt"
	"net/url"
	"strings"
)

// Origin is a normalized web origin.
type Origin struct {
	Scheme string
	Host   string
	// Port is empty for the scheme's default port.
	Port string
}

// String renders the origin as scheme://host[:port], bracketing IPv6 hosts.
func (o Origin) String() string {
	host := o.Host
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if o.Port == "" {
		return o.Scheme + "://" + host
	}
	return o.Scheme + "://" + host + ":" + o.Port
}

// ParseOrigin normalizes an Origin or Referer value. Only http and https
// are accepted; the literal "null" and unparseable values are rejected.
// Scheme and host are lowercased, default ports dropped, and any path,
// query or fragment discarded.
func ParseOrigin(raw string) (Origin, error) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "null") {
		return Origin{}, ErrInvalidOrigin
	}

	u, err := url.Parse(s)
	if err != nil {
		return Origin{}, fmt.Errorf("%w: %w", ErrInvalidOrigin, err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return Origin{}, ErrInvalidOrigin
	}

	host := strings.ToLower(strings.TrimSpace(u.Hostname()))
	if host == "" {
		return Origin{}, ErrInvalidOrigin
	}

	port := u.Port()
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		port = ""
	}

	return Origin{Scheme: scheme, Host: host, Port: port}, nil
}

// NormalizeOrigin is ParseOrigin rendered back to a string.
func NormalizeOrigin(raw string) (string, error) {
	o, err := ParseOrigin(raw)
	if err != nil {
		return "", err
	}
	return o.String(), nil
}

// NormalizeOrigins normalizes every entry of origins, keeping "*" as is.
// Invalid entries are returned in the error and skipped.
func NormalizeOrigins(origins []string) ([]string, error) {
	out := make([]string, 0, len(origins))
	var invalid []string
	for _, raw := range origins {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if raw == "*" {
			out = append(out, raw)
			continue
		}
		o, err := NormalizeOrigin(raw)
		if err != nil {
			invalid = append(invalid, raw)
			continue
		}
		out = append(out, o)
	}
	if len(invalid) > 0 {
		return out, fmt.Errorf("%w: %s", ErrInvalidOrigin, strings.Join(invalid, ", "))
	}
	return out, nil
}
