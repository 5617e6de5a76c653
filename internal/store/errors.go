package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrEnvelopeNotFound is returned when no envelope with the requested id
	// exists in the journal.
	ErrEnvelopeNotFound = errors.New("envelope was not found")

	// ErrEnvelopeAlreadyExists is returned when an envelope id is reused.
	// Envelopes are immutable and never overwritten.
	ErrEnvelopeAlreadyExists = errors.New("envelope already exists")

	// ErrEnvelopeNotSaved is returned when an INSERT completes without error
	// but affects no rows.
	ErrEnvelopeNotSaved = errors.New("envelope was not saved")

	// ErrProfileNotFound is returned when the journal has no key profile yet.
	ErrProfileNotFound = errors.New("key profile was not found")

	// ErrBundleTooLarge is returned by [BundleFileStorage.LoadBundle] for
	// files above the size limit.
	ErrBundleTooLarge = errors.New("bundle file is too large")

	// ErrUnsupportedDialect is returned for a DB dialect other than sqlite3
	// or postgres.
	ErrUnsupportedDialect = errors.New("unsupported database dialect")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a SQL query with the
	// builder fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT against the
	// database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning a single result row fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning fails during multi-row
	// iteration, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")

	// ErrEncodingProfile and ErrDecodingProfile wrap JSON failures of the
	// stored profile document.
	ErrEncodingProfile = errors.New("failed to encode key profile")
	ErrDecodingProfile = errors.New("failed to decode key profile")
)
