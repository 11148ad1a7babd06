package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shamell/trustgate/internal/logger"
)

// Pool settings for the session store. Lookups are short single-row reads
// issued on the request path, so a small pool with recycled connections is
// enough and survives failovers behind a proxy.
const (
	postgresMaxOpenConns    = 16
	postgresMaxIdleConns    = 8
	postgresConnMaxIdleTime = 5 * time.Minute
	postgresConnMaxLifetime = 30 * time.Minute
	postgresPingTimeout     = 5 * time.Second
)

func NewConnectPostgres(ctx context.Context, dsn string, log *logger.Logger) (*DB, error) {
	conn, err := sql.Open(DriverPostgres, dsn)
	if err != nil {
		log.Err(err).Str("func", "NewConnectPostgres").Msg("error opening session database")
		return nil, fmt.Errorf("error opening session database: %w", err)
	}

	conn.SetMaxOpenConns(postgresMaxOpenConns)
	conn.SetMaxIdleConns(postgresMaxIdleConns)
	conn.SetConnMaxIdleTime(postgresConnMaxIdleTime)
	conn.SetConnMaxLifetime(postgresConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, postgresPingTimeout)
	defer cancel()
	if err = conn.PingContext(pingCtx); err != nil {
		log.Err(err).Str("func", "NewConnectPostgres").Msg("session database is unreachable")
		_ = conn.Close()
		return nil, fmt.Errorf("ping session database: %w", err)
	}
	log.Info().Str("func", "NewConnectPostgres").Msg("connected to session database")

	return newDB(conn, DriverPostgres, log), nil
}

// postgresError returns the SQLSTATE carried by err, or "" when err did not
// come from PostgreSQL.
func postgresError(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
