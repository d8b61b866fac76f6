package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrReadingNotFound is returned when a query targets a reading record
	// that does not exist in the database.
	ErrReadingNotFound = errors.New("reading was not found")

	// ErrReadingAlreadyExists is returned when inserting a reading whose id
	// is already taken.
	ErrReadingAlreadyExists = errors.New("reading already exists")

	// ErrUnlockConflict is returned when the conditional unlock update
	// matches no row: either a concurrent unlock advanced the counter past
	// the observed value, or the reading was purchased in between. The
	// caller re-reads the record and retries a bounded number of times.
	ErrUnlockConflict = errors.New("unlock state conflict occurred")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE) fails.
	ErrExecutingStatement = errors.New("failed to execute statement")

	// ErrScanningRow is returned when scanning column values from a result
	// row into a destination struct fails.
	ErrScanningRow = errors.New("failed to scan reading row")
)
