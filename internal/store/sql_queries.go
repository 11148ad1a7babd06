package store

import (
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/shamell/trustgate/models"
)

const sessionsTable = "auth_sessions"

var sessionColumns = []string{
	"token_hash",
	"account_id",
	"expires_at",
	"revoked_at",
	"created_at",
}

func buildGetSessionQuery(b sq.StatementBuilderType, tokenHash string) (string, []any, error) {
	return b.Select(sessionColumns...).
		From(sessionsTable).
		Where(sq.Eq{"token_hash": tokenHash}).
		Limit(1).
		ToSql()
}

func buildCreateSessionQuery(b sq.StatementBuilderType, s models.StoredSession) (string, []any, error) {
	return b.Insert(sessionsTable).
		Columns("token_hash", "account_id", "expires_at", "created_at").
		Values(s.TokenHash, s.AccountID, s.ExpiresAt.UTC(), s.CreatedAt.UTC()).
		ToSql()
}

func buildRevokeSessionQuery(b sq.StatementBuilderType, tokenHash string, at time.Time) (string, []any, error) {
	return b.Update(sessionsTable).
		Set("revoked_at", at.UTC()).
		Where(sq.Eq{"token_hash": tokenHash}).
		Where(sq.Eq{"revoked_at": nil}).
		ToSql()
}

func buildDeleteExpiredQuery(b sq.StatementBuilderType, before time.Time) (string, []any, error) {
	return b.Delete(sessionsTable).
		Where(sq.Lt{"expires_at": before.UTC()}).
		ToSql()
}
