// Package secretpolicy decides whether a configured secret is strong enough
// for the deployment tier it is about to run in.
//
// Validation is pure and deterministic: it never reads the environment and
// never logs the candidate value.
package secretpolicy

import (
	"errors"
	"fmt"
	"strings"
)

// MinLength is the minimum number of characters a secret must have in a
// production-like tier.
const MinLength = 16

var (
	// ErrMustBeSet is returned when a required secret is missing in a
	// production-like tier.
	ErrMustBeSet = errors.New("must be set in prod/staging")

	// ErrTooShort is returned when a secret is shorter than MinLength.
	ErrTooShort = errors.New("must be at least 16 characters in prod/staging")

	// ErrPlaceholder is returned when a secret looks like a placeholder or a
	// well-known default value.
	ErrPlaceholder = errors.New("looks like a placeholder/default value; use a strong random secret")
)

var bannedExact = map[string]struct{}{
	"change-me":  {},
	"changeme":   {},
	"replace-me": {},
	"secret":     {},
	"password":   {},
	"devsecret":  {},
	"devkey":     {},
	"default":    {},
	"dummy":      {},
	"example":    {},
	"test":       {},
	"qwerty":     {},
	"letmein":    {},
}

var bannedFragments = []string{
	"change-me",
	"change_me",
	"replace-me",
	"replace_me",
	"please-rotate",
	"set-me",
	"your-secret",
	"your_secret",
	"dev-secret",
	"dev_secret",
}

// IsProductionLike reports whether env names a tier that is subject to the
// strict policy: prod, production or staging (case-insensitive).
func IsProductionLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "prod", "production", "staging":
		return true
	default:
		return false
	}
}

// IsLocal reports whether env names a local developer or CI tier.
func IsLocal(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "test":
		return true
	default:
		return false
	}
}

// Validate checks value, the secret configured under key, against the
// policy for env.
//
// Outside production-like tiers every value passes. Inside them a blank
// value passes only when requiredInProd is false; a present value must be at
// least MinLength characters and must not look like a placeholder. The
// returned error wraps one of ErrMustBeSet, ErrTooShort or ErrPlaceholder and
// names key, never the value.
func Validate(env, key, value string, requiredInProd bool) error {
	if !IsProductionLike(env) {
		return nil
	}

	secret := strings.TrimSpace(value)
	if secret == "" {
		if requiredInProd {
			return fmt.Errorf("%s %w", key, ErrMustBeSet)
		}
		return nil
	}

	if len(secret) < MinLength {
		return fmt.Errorf("%s %w", key, ErrTooShort)
	}
	if LooksLikePlaceholder(secret) {
		return fmt.Errorf("%s %w", key, ErrPlaceholder)
	}

	return nil
}

// LooksLikePlaceholder reports whether secret equals a banned word or
// contains a banned fragment, ignoring case and surrounding whitespace.
func LooksLikePlaceholder(secret string) bool {
	s := strings.ToLower(strings.TrimSpace(secret))
	if _, ok := bannedExact[s]; ok {
		return true
	}
	for _, fragment := range bannedFragments {
		if strings.Contains(s, fragment) {
			return true
		}
	}
	return false
}
