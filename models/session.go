// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// Session is the result of resolving a session cookie against the auth
// backend. Only the account identifier is required by the gateway; the
// remaining fields are informational and may be zero.
type Session struct {
	// AccountID identifies the authenticated account. Never empty for a
	// resolved session.
	AccountID string `json:"account_id"`

	// ExpiresAt is the moment the session stops being valid. Zero when the
	// backend does not report it.
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// StoredSession is a row of the auth_sessions table. The raw session token
// is never stored; TokenHash holds its BLAKE2b-256 digest in hex.
type StoredSession struct {
	TokenHash string     `db:"token_hash"`
	AccountID string     `db:"account_id"`
	ExpiresAt time.Time  `db:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at"`
	CreatedAt time.Time  `db:"created_at"`
}

// Active reports whether the stored session can still authenticate a
// request at time now.
func (s StoredSession) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
