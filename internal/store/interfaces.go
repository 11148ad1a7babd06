//go:generate mockgen -source=interfaces.go -destination=../mock/session_repository_mock.go -package=mock
package store

import (
	"context"
	"time"

	"github.com/shamell/trustgate/models"
)

// SessionRepository persists server-side sessions keyed by the hash of the
// session token. Raw tokens never reach this layer.
type SessionRepository interface {
	// GetByTokenHash returns the session stored under tokenHash or
	// [ErrSessionNotFound].
	GetByTokenHash(ctx context.Context, tokenHash string) (models.StoredSession, error)
	// Create inserts a new session. A duplicate hash yields [ErrSessionExists].
	Create(ctx context.Context, session models.StoredSession) error
	// Revoke marks the session as revoked at the given moment.
	Revoke(ctx context.Context, tokenHash string, at time.Time) error
	// DeleteExpired removes sessions that expired before the given moment
	// and reports how many rows were removed.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// ErrorClassificator decides whether a failed database operation is worth
// retrying.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}
