package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a business error so the boundary layer can map it
// to a user-facing response.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalidInput
	KindInvalidState
	KindOutOfRange
	KindConflict
	KindForbidden
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindInvalidInput:
		return "invalid input"
	case KindInvalidState:
		return "invalid state"
	case KindOutOfRange:
		return "out of range"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	case KindInternal:
		return "internal"
	}
	return "unknown"
}

// Error is a classified business error.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func NewError(kind Kind, msg string) error { return &Error{Kind: kind, Msg: msg} }

func NotFoundErr(msg string) error     { return NewError(KindNotFound, msg) }
func InvalidInputErr(msg string) error { return NewError(KindInvalidInput, msg) }
func InvalidStateErr(msg string) error { return NewError(KindInvalidState, msg) }
func ConflictErr(msg string) error     { return NewError(KindConflict, msg) }
func ForbiddenErr(msg string) error    { return NewError(KindForbidden, msg) }
func InternalErr(msg string) error     { return NewError(KindInternal, msg) }

// GeofenceError reports a failed geofence check; it carries the allowed
// radius and the computed distance for display.
type GeofenceError struct {
	DistanceMeters float64
	RadiusMeters   float64
}

func (e *GeofenceError) Error() string {
	return fmt.Sprintf("location is %.0fm away; must be within %.0fm", e.DistanceMeters, e.RadiusMeters)
}

// KindOf returns the Kind of err, unwrapping any pkg/errors wrapping.
// Unclassified errors report KindUnknown.
func KindOf(err error) Kind {
	switch e := errors.Cause(err).(type) {
	case *Error:
		return e.Kind
	case *GeofenceError:
		return KindOutOfRange
	}
	return KindUnknown
}

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
