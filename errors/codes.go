// Package errors provides the error model used across folder-hash.
// It extends Go's standard error handling with structured error codes and
// context preservation so callers can branch on the failure category without
// parsing messages.
package errors

// ErrorCode represents a specific error condition.
// Error codes are string-based for debuggability and natural JSON serialization.
type ErrorCode string

const (
	// Resource errors.

	// CodeNotFound indicates a "from"/"to" source or a walk root does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// Validation errors.

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeInvalidSnapshot indicates a snapshot document could not be parsed.
	CodeInvalidSnapshot ErrorCode = "INVALID_SNAPSHOT"

	// CodeMissingTargetPath indicates the destination anchor of a diff cannot be derived.
	CodeMissingTargetPath ErrorCode = "MISSING_TARGET_PATH"

	// CodeInvalidCompressionLevel indicates a compression level outside 0-9.
	CodeInvalidCompressionLevel ErrorCode = "INVALID_COMPRESSION_LEVEL"

	// Execution errors.

	// CodeIOFailure indicates a read, write or copy failed while hashing or applying.
	CodeIOFailure ErrorCode = "IO_FAILURE"

	// System errors.

	// CodeInternal indicates an internal error occurred.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// Generic errors.

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)
