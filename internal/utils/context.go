// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes tools for working with context, type-safe keys, token
// fingerprints, request identifiers, HTTP response writing, HTTP client
// initialization and session token signing and validation.
package utils

import (
	"context"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

var (
	// RequestIDCtxKey stores the correlation id of the current request.
	RequestIDCtxKey = contextKey("requestID")

	// AccountIDCtxKey stores the account id of an authorized session.
	AccountIDCtxKey = contextKey("accountID")

	// RolesCtxKey stores the trusted role set of the current request.
	RolesCtxKey = contextKey("roles")
)

// GetRequestIDFromContext retrieves the correlation id from the context.
//
// Returns the id and an ok flag:
//   - ok == true : value is found and is a non-empty string
//   - ok == false: value is missing, empty or has an unexpected type
func GetRequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(RequestIDCtxKey).(string)
	return id, ok && id != ""
}

// GetAccountIDFromContext retrieves the authorized account id from the
// context.
//
// Example usage:
//
//	accountID, ok := utils.GetAccountIDFromContext(ctx)
//	if !ok {
//	    // the route is not behind the authorizer
//	}
func GetAccountIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(AccountIDCtxKey).(string)
	return id, ok && id != ""
}

// GetRolesFromContext retrieves the trusted role set stored by the
// authorizer. A missing value yields a nil slice and false.
func GetRolesFromContext(ctx context.Context) ([]string, bool) {
	roles, ok := ctx.Value(RolesCtxKey).([]string)
	return roles, ok
}
