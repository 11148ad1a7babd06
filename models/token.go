package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the claim set of a stateless session token. The subject
// claim carries the account identifier.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// AccountID returns the subject claim, or "" when it is absent.
func (c *SessionClaims) AccountID() string {
	sub, err := c.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}
