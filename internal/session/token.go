package session

import "strings"

// sessionTokenLength is the length of an opaque session token: 16 random
// bytes in lowercase hex.
const sessionTokenLength = 32

// normalizeOpaqueToken trims and lowercases token and reports whether it is
// a well-formed opaque session token.
func normalizeOpaqueToken(token string) (string, bool) {
	t := strings.ToLower(strings.TrimSpace(token))
	if len(t) != sessionTokenLength {
		return "", false
	}
	for i := 0; i < len(t); i++ {
		c := t[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", false
		}
	}
	return t, true
}
