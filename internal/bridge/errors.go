package bridge

import (
	"errors"
	"fmt"

	"github.com/droidbridge/droidbridge/internal/host"
	"github.com/droidbridge/droidbridge/internal/security"
)

// Kind is the closed set of error categories an operation failure can surface
// to the calling script. The script only ever sees the kind name, never the
// message text.
type Kind string

const (
	KindTypeError     Kind = "TypeError"
	KindValueError    Kind = "ValueError"
	KindStateError    Kind = "StateError"
	KindInternalError Kind = "InternalError"
)

// Error pairs a kind with internal detail. The detail is written to the
// redacted debug log only.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err with an explicit kind.
func NewError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Errorf builds a kinded error from a format string.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf classifies an arbitrary operation error into the closed enumeration.
// Validation sentinels map to type and value errors, missing host resources
// to StateError, and everything else to InternalError.
func KindOf(err error) Kind {
	var e *Error
	switch {
	case errors.As(err, &e):
		return e.Kind
	case errors.Is(err, security.ErrWrongType):
		return KindTypeError
	case errors.Is(err, security.ErrInvalidValue):
		return KindValueError
	case errors.Is(err, host.ErrUnavailable):
		return KindStateError
	default:
		return KindInternalError
	}
}

// UserMessage renders the low-detail error text delivered to the script.
func UserMessage(err error) string {
	return "Operation failed: " + string(KindOf(err))
}
