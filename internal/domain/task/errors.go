package task

import "fmt"

// Kind tags an Error by category rather than by message text, so callers
// can branch on what went wrong without string matching.
type Kind string

const (
	KindValidation Kind = "VALIDATION_ERROR"
	KindNotFound   Kind = "NOT_FOUND"
	KindConflict   Kind = "CONFLICT"
	KindIntegrity  Kind = "INTEGRITY_ERROR"
	KindUnexpected Kind = "UNEXPECTED_ERROR"
)

// ExitCode returns the process exit code associated with a Kind, per the
// error taxonomy the core exposes to its CLI collaborator.
func (k Kind) ExitCode() int {
	switch k {
	case KindValidation:
		return 2
	case KindNotFound:
		return 3
	case KindConflict:
		return 4
	case KindIntegrity:
		return 5
	default:
		return 10
	}
}

// Error is the single error type the core ever returns. Details carries
// structured context (e.g. the offending field, the project_id) for the
// CLI to render; it is never used for control flow.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// WithDetails returns a copy of e with Details replaced.
func (e *Error) WithDetails(details map[string]any) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

func newErr(kind Kind, message string, details map[string]any) *Error {
	return &Error{Kind: kind, Message: message, Details: details}
}

func NewValidationError(message string, details map[string]any) *Error {
	return newErr(KindValidation, message, details)
}

func NewNotFoundError(message string, details map[string]any) *Error {
	return newErr(KindNotFound, message, details)
}

func NewConflictError(message string, details map[string]any) *Error {
	return newErr(KindConflict, message, details)
}

func NewIntegrityError(message string, details map[string]any) *Error {
	return newErr(KindIntegrity, message, details)
}

func NewUnexpectedError(message string, details map[string]any) *Error {
	return newErr(KindUnexpected, message, details)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	te, ok := err.(*Error)
	return ok && te.Kind == kind
}

func IsValidation(err error) bool { return IsKind(err, KindValidation) }
func IsNotFound(err error) bool   { return IsKind(err, KindNotFound) }
func IsConflict(err error) bool   { return IsKind(err, KindConflict) }
func IsIntegrity(err error) bool  { return IsKind(err, KindIntegrity) }
