package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/shamell/trustgate/internal/logger"
	"github.com/shamell/trustgate/models"
)

// sessionRepository is the database/sql implementation of
// [SessionRepository]. It works against both PostgreSQL and SQLite; the
// placeholder format comes from the wrapped [*DB].
type sessionRepository struct {
	*DB
	logger *logger.Logger
}

// NewSessionRepository constructs a [SessionRepository] backed by db.
func NewSessionRepository(db *DB, logger *logger.Logger) SessionRepository {
	logger.Debug().Str("driver", db.driver).Msg("creating session repository")
	return &sessionRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *sessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (models.StoredSession, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildGetSessionQuery(r.builder, tokenHash)
	if err != nil {
		return models.StoredSession{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var (
		s         models.StoredSession
		revokedAt sql.NullTime
	)
	err = r.DB.QueryRowContext(ctx, query, args...).Scan(&s.TokenHash, &s.AccountID, &s.ExpiresAt, &revokedAt, &s.CreatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return models.StoredSession{}, ErrSessionNotFound
	case err != nil:
		log.Err(err).Str("func", "sessionRepository.GetByTokenHash").Msg("failed to scan session row")
		return models.StoredSession{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	if revokedAt.Valid {
		t := revokedAt.Time
		s.RevokedAt = &t
	}

	return s, nil
}

func (r *sessionRepository) Create(ctx context.Context, session models.StoredSession) error {
	log := logger.FromContext(ctx)

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	query, args, err := buildCreateSessionQuery(r.builder, session)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		if postgresError(err) == pgerrcode.UniqueViolation || isSQLiteConstraint(err) {
			return ErrSessionExists
		}
		log.Err(err).
			Str("func", "sessionRepository.Create").
			Bool("retryable", r.Retryable(err)).
			Msg("failed to insert session")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (r *sessionRepository) Revoke(ctx context.Context, tokenHash string, at time.Time) error {
	log := logger.FromContext(ctx)

	query, args, err := buildRevokeSessionQuery(r.builder, tokenHash, at)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "sessionRepository.Revoke").Msg("failed to revoke session")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrSessionNotFound
	}

	return nil
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildDeleteExpiredQuery(r.builder, before)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "sessionRepository.DeleteExpired").Msg("failed to delete expired sessions")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return deleted, nil
}
