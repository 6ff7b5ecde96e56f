package model

import "errors"

// Engine error kinds. Callers match with errors.Is; the service boundary
// converts them to stable error codes via ErrorCode.
var (
	// ErrValidation rejects malformed input before any processing.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound reports a recovery request for a session or project
	// that does not exist. Recoverable by starting a fresh session.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState rejects a mutation of an ended or archived session.
	ErrInvalidState = errors.New("invalid session state")

	// ErrStorage surfaces session store failures. The engine does not
	// retry; retry policy belongs to the caller.
	ErrStorage = errors.New("storage failure")

	// ErrScorerTimeout is internal: a slow semantic scorer is converted
	// to a negative classification, never surfaced to callers.
	ErrScorerTimeout = errors.New("scorer timeout")
)

// ErrorCode maps an engine error to its wire-level code, or "" when the
// error is not one of the named kinds.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrStorage):
		return "storage_error"
	}
	return "internal_error"
}
