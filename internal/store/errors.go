package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrSessionNotFound is returned when no session is stored under the
	// requested token hash.
	ErrSessionNotFound = errors.New("session was not found")

	// ErrSessionExists is returned when a session with the same token hash
	// is already stored.
	ErrSessionExists = errors.New("session already exists")

	// ErrUnsupportedDriver is returned by [Open] for a driver name other than
	// "pgx" or "sqlite3".
	ErrUnsupportedDriver = errors.New("unsupported database driver")

	// ErrEmptyDSN is returned by [Open] when no data source name was given.
	ErrEmptyDSN = errors.New("database dsn is empty")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT against the
	// database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row fails.
	ErrScanningRow = errors.New("failed to scan session row")
)
