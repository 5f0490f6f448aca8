// internal/common/apperr/apperr.go
// Error kinds surfaced to API clients and their HTTP mapping

package apperr

import (
	"errors"
	"net/http"
)

// Kind is the category a client sees for a failed operation.
type Kind string

const (
	KindNotFound           Kind = "not_found"
	KindForbidden          Kind = "forbidden"
	KindPreconditionFailed Kind = "precondition_failed"
	KindConflict           Kind = "conflict"
	KindInvalidInput       Kind = "invalid_input"
	KindInsufficientData   Kind = "insufficient_data"
	KindRateLimited        Kind = "rate_limited"
	KindUpstream           Kind = "upstream_failure"
	KindInternal           Kind = "internal"
)

// Error is a domain error with a machine-readable code.
type Error struct {
	Kind    Kind
	Code    string // e.g. already_submitted, invitation_expired
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Kind == t.Kind
}

// New creates a sentinel-style error.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap attaches a cause to a new error of the given kind.
func Wrap(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

// WithCause returns a copy of sentinel e carrying err as its cause.
// errors.Is(copy, e) still holds.
func (e *Error) WithCause(err error) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: e.Message, Err: err}
}

// Invalid is shorthand for invalid_input failures with a specific message.
func Invalid(code, message string) *Error {
	return New(KindInvalidInput, code, message)
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "internal_error"
}

// HTTPStatus maps an error to its response status.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindPreconditionFailed:
		return http.StatusPreconditionFailed
	case KindConflict:
		return http.StatusConflict
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindInsufficientData:
		return http.StatusUnprocessableEntity
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Common errors shared across modules.
var (
	ErrMatchNotFound   = New(KindNotFound, "match_not_found", "match not found")
	ErrSessionNotFound = New(KindNotFound, "session_not_found", "game session not found")
	ErrUserNotFound    = New(KindNotFound, "user_not_found", "user not found")
	ErrNotParticipant  = New(KindForbidden, "not_participant", "you are not a participant")
	ErrUserBlocked     = New(KindForbidden, "user_blocked", "this user is not available")
)
