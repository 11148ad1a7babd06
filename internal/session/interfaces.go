//go:generate mockgen -source=interfaces.go -destination=../mock/session_resolver_mock.go -package=mock
package session

import (
	"context"

	"github.com/shamell/trustgate/models"
)

// Resolver resolves a session token to the session it identifies.
type Resolver interface {
	Resolve(ctx context.Context, token string) (models.Session, error)
}
