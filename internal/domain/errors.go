package domain

import "errors"

// Error taxonomy for lifecycle operations. Callers classify with errors.Is;
// wrapped messages carry the specifics.
var (
	// ErrNotFound indicates the referenced article or version does not exist,
	// or a version does not belong to the named article.
	ErrNotFound = errors.New("not found")

	// ErrInvalidStateTransition indicates a transition was attempted from an
	// illegal source state.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrAccessDenied indicates the principal lacks the role or ownership the
	// transition requires.
	ErrAccessDenied = errors.New("access denied")

	// ErrUnauthenticated indicates a missing or unverifiable credential.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrValidation indicates malformed input: missing required field, bad
	// enum value, bad timestamp.
	ErrValidation = errors.New("validation failed")

	// ErrDependencyFailure indicates the blob store or notifier was
	// unavailable. Best-effort callers log and swallow it.
	ErrDependencyFailure = errors.New("dependency failure")

	// ErrStorage indicates a persistence failure after any internal retry.
	ErrStorage = errors.New("storage failure")
)
