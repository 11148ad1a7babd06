package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shamell/trustgate/models"
)

// ErrEmptySubject is returned when a valid token carries no account id.
var ErrEmptySubject = errors.New("empty subject in session token")

// GenerateSessionToken creates a signed HMAC-SHA256 session token for the
// given account.
//
// The token includes the following standard claims:
//   - Issuer    (iss): identifies the service that issued the token
//   - Subject   (sub): the account id
//   - IssuedAt  (iat): the current time
//   - ExpiresAt (exp): the current time plus tokenDuration
//
// A negative tokenDuration is accepted and yields an already expired token,
// which is useful in tests. All other parameters are required.
//
// Example usage:
//
//	token, err := utils.GenerateSessionToken("auth", "acc-42", time.Hour, signKey)
func GenerateSessionToken(issuer, accountID string, tokenDuration time.Duration, signKey string) (string, error) {
	if issuer == "" || accountID == "" || tokenDuration == 0 || signKey == "" {
		return "", errors.New("invalid params for generating session token")
	}

	now := time.Now()
	claims := models.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   accountID,
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(signKey))
	if err != nil {
		return "", fmt.Errorf("error occurred during signing session token: %w", err)
	}

	return signed, nil
}

// ValidateSessionToken validates tokenString and returns its claims.
//
// Validation includes:
//   - Signature verification with tokenSignKey, HS256 only
//   - Issuer (iss) claim check against tokenIssuer
//   - Expiration (exp) claim check, which is required
//   - Subject (sub) presence
func ValidateSessionToken(tokenString, tokenSignKey, tokenIssuer string) (models.SessionClaims, error) {
	var claims models.SessionClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return []byte(tokenSignKey), nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return models.SessionClaims{}, fmt.Errorf("error occurred validating session token: %w", err)
	}

	if claims.AccountID() == "" {
		return models.SessionClaims{}, ErrEmptySubject
	}

	return claims, nil
}
