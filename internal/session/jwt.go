package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/shamell/trustgate/internal/utils"
	"github.com/shamell/trustgate/models"
)

// JWTResolver resolves stateless HS256 session tokens issued by the auth
// service. The subject claim carries the account id.
type JWTResolver struct {
	signKey string
	issuer  string
}

// NewJWTResolver returns a JWTResolver verifying tokens signed with signKey
// and issued by issuer.
func NewJWTResolver(signKey, issuer string) *JWTResolver {
	return &JWTResolver{signKey: signKey, issuer: issuer}
}

func (j *JWTResolver) Resolve(ctx context.Context, token string) (models.Session, error) {
	if err := ctx.Err(); err != nil {
		return models.Session{}, err
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return models.Session{}, ErrMalformedToken
	}

	claims, err := utils.ValidateSessionToken(token, j.signKey, j.issuer)
	if err != nil {
		return models.Session{}, fmt.Errorf("%w: %w", ErrNoSession, err)
	}

	sess := models.Session{AccountID: claims.AccountID()}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess, nil
}
