package vectordb

import "errors"

// Common engine error types. Adapters wrap these with a descriptive message
// (fmt.Errorf("...: %w", ErrTableNotFound)) so the message can be shown to users
// verbatim while callers still branch with errors.Is.
var (
	// ErrTableNotFound is returned when the requested table does not exist
	ErrTableNotFound = errors.New("table not found")

	// ErrTableExists is returned when creating a table that already exists
	ErrTableExists = errors.New("table already exists")

	// ErrIndexExists is returned when creating an index that already exists without replace
	ErrIndexExists = errors.New("index already exists")

	// ErrIndexMissing is returned when a query needs an index that has not been created
	ErrIndexMissing = errors.New("index not found")

	// ErrInvalidFilter is returned when a where expression cannot be parsed or translated
	ErrInvalidFilter = errors.New("invalid filter")

	// ErrColumnNotFound is returned when a query references an unknown column
	ErrColumnNotFound = errors.New("column not found")

	// ErrSchemaMismatch is returned when rows do not fit the table schema
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrInvalidArgument is returned for invalid table names, modes, limits or index options
	ErrInvalidArgument = errors.New("invalid argument")
)

// IsTableNotFound checks if the error is a missing-table error.
func IsTableNotFound(err error) bool {
	return errors.Is(err, ErrTableNotFound)
}

// IsTableExists checks if the error is a table-already-exists error.
func IsTableExists(err error) bool {
	return errors.Is(err, ErrTableExists)
}

// IsIndexExists checks if the error is an index-already-exists error.
func IsIndexExists(err error) bool {
	return errors.Is(err, ErrIndexExists)
}

// IsIndexMissing checks if the error is a missing-index error.
func IsIndexMissing(err error) bool {
	return errors.Is(err, ErrIndexMissing)
}

// IsInvalidFilter checks if the error comes from where expression parsing or translation.
func IsInvalidFilter(err error) bool {
	return errors.Is(err, ErrInvalidFilter)
}

// IsNotFound checks if the error refers to any missing entity (table, index or column).
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTableNotFound) ||
		errors.Is(err, ErrIndexMissing) ||
		errors.Is(err, ErrColumnNotFound)
}

// IsAlreadyExists checks if the error refers to a table or index that already exists.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrTableExists) || errors.Is(err, ErrIndexExists)
}
