package utils

import (
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Digest returns the BLAKE2b-256 digest of s.
func Digest(s string) [blake2b.Size256]byte {
	return blake2b.Sum256([]byte(s))
}

// Fingerprint returns the hex-encoded BLAKE2b-256 digest of s.
//
// It is used wherever a token or cookie must be identified without being
// revealed: log fields, cache keys and the token_hash column of the session
// store.
//
// Example usage:
//
//	log.Debug().Str("session", utils.Fingerprint(token)[:12]).Send()
func Fingerprint(s string) string {
	sum := Digest(s)
	return hex.EncodeToString(sum[:])
}

// ConstantTimeEqual reports whether a and b are equal without leaking
// their contents or lengths through timing.
//
// Both inputs are reduced to fixed-size digests first, so
// subtle.ConstantTimeCompare always compares 32 bytes.
func ConstantTimeEqual(a, b string) bool {
	da := Digest(a)
	db := Digest(b)
	return subtle.ConstantTimeCompare(da[:], db[:]) == 1
}
