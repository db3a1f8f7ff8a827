package errors

import "net/http"

// Common error codes used across domains
const (
	CodeNotFound       Code = "not_found"
	CodeAlreadyExists  Code = "already_exists"
	CodeInvalidRequest Code = "invalid_request"
	CodeUnauthorized   Code = "unauthorized"
	CodeForbidden      Code = "forbidden"
	CodeInternal       Code = "internal_error"
	CodeUnavailable    Code = "unavailable"
	CodeRateLimited    Code = "rate_limited"
)

// ============================================================================
// Repository Errors
// ============================================================================

var (
	// ErrRecordNotFound is returned when no row matches a primary key
	ErrRecordNotFound = New(DomainRepository, CodeNotFound, http.StatusNotFound,
		"Record not found")

	// ErrRecordAmbiguous is returned when a primary key lookup matches more than one row
	ErrRecordAmbiguous = New(DomainRepository, "ambiguous", http.StatusConflict,
		"More than one record matches the primary key")

	// ErrQueryFailed is returned when the storage engine rejects a statement
	ErrQueryFailed = New(DomainRepository, "query_failed", http.StatusInternalServerError,
		"Query failed")

	// ErrInvalidFilter is returned when a filter references unknown columns or is malformed
	ErrInvalidFilter = New(DomainRepository, "invalid_filter", http.StatusBadRequest,
		"Invalid filter")

	// ErrEmptyFilter is returned when a bulk delete is attempted without a predicate
	ErrEmptyFilter = New(DomainRepository, "empty_filter", http.StatusBadRequest,
		"A filter is required")

	// ErrInvalidRecord is returned when a record does not match its table schema
	ErrInvalidRecord = New(DomainRepository, "invalid_record", http.StatusBadRequest,
		"Record does not match table schema")
)

// ============================================================================
// Schema Errors
// ============================================================================

var (
	// ErrTableNotFound is returned when a table is not present in the registry
	ErrTableNotFound = New(DomainSchema, CodeNotFound, http.StatusNotFound,
		"Table not found")

	// ErrTableAlreadyRegistered is returned when a table is registered twice
	ErrTableAlreadyRegistered = New(DomainSchema, CodeAlreadyExists, http.StatusConflict,
		"Table already registered")

	// ErrInvalidSchema is returned when a table schema fails validation
	ErrInvalidSchema = New(DomainSchema, CodeInvalidRequest, http.StatusBadRequest,
		"Invalid table schema")
)

// ============================================================================
// Database Errors
// ============================================================================

var (
	// ErrDatabaseConnection is returned when the database cannot be opened or pinged
	ErrDatabaseConnection = New(DomainDatabase, "connection_failed", http.StatusServiceUnavailable,
		"Database connection failed")

	// ErrUnsupportedDriver is returned for an unknown database driver name
	ErrUnsupportedDriver = New(DomainDatabase, "unsupported_driver", http.StatusInternalServerError,
		"Unsupported database driver")

	// ErrDatabaseMigration is returned when a schema migration fails
	ErrDatabaseMigration = New(DomainDatabase, "migration_failed", http.StatusInternalServerError,
		"Database migration failed")
)

// ============================================================================
// Storage and Backup Errors
// ============================================================================

var (
	// ErrStorageNotFound is returned when a storage object cannot be found
	ErrStorageNotFound = New(DomainStorage, CodeNotFound, http.StatusNotFound,
		"Object not found in storage")

	// ErrStorageUnavailable is returned when the storage backend is unavailable
	ErrStorageUnavailable = New(DomainStorage, CodeUnavailable, http.StatusServiceUnavailable,
		"Storage backend unavailable")

	// ErrBackupChecksum is returned when a restored snapshot does not match its digest
	ErrBackupChecksum = New(DomainBackup, "checksum_mismatch", http.StatusUnprocessableEntity,
		"Backup checksum mismatch")

	// ErrBackupUnsupported is returned when the active driver cannot produce snapshots
	ErrBackupUnsupported = New(DomainBackup, "unsupported", http.StatusNotImplemented,
		"Backups are not supported by this database driver")
)

// ============================================================================
// Auth Errors
// ============================================================================

var (
	// ErrNoToken is returned when no bearer token is provided
	ErrNoToken = New(DomainAuth, "no_token", http.StatusUnauthorized,
		"No authentication token provided")

	// ErrTokenInvalid is returned when a token is malformed, expired or badly signed
	ErrTokenInvalid = New(DomainAuth, "token_invalid", http.StatusUnauthorized,
		"Invalid token")

	// ErrInsufficientScope is returned when a token lacks the scope a route requires
	ErrInsufficientScope = New(DomainAuth, CodeForbidden, http.StatusForbidden,
		"Insufficient scope")
)

// ============================================================================
// Validation and Internal Errors
// ============================================================================

var (
	// ErrValidationFailed is returned when request validation fails
	ErrValidationFailed = New(DomainValidation, "validation_failed", http.StatusBadRequest,
		"Validation failed")

	// ErrInvalidJSON is returned when JSON parsing fails
	ErrInvalidJSON = New(DomainValidation, "invalid_json", http.StatusBadRequest,
		"Invalid JSON")

	// ErrRateLimited is returned when a client exceeds its request budget
	ErrRateLimited = New(DomainInternal, CodeRateLimited, http.StatusTooManyRequests,
		"Too many requests")

	// ErrInternal is a generic internal server error
	ErrInternal = New(DomainInternal, CodeInternal, http.StatusInternalServerError,
		"Internal server error")
)
