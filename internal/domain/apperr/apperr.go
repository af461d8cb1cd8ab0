package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error for the transport layer. None of them is retried automatically.
type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindPolicy     Kind = "policy"
	KindNotFound   Kind = "not_found"
	KindForbidden  Kind = "forbidden"
	KindInternal   Kind = "internal"
)

// Error is a domain error carrying its kind and a stable code.
// Sentinels are compared by identity, so wrap them with %w to add context.
type Error struct {
	Kind Kind
	Code string
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func New(kind Kind, code, msg string) *Error { return &Error{Kind: kind, Code: code, Msg: msg} }

func Conflict(code, msg string) *Error  { return New(KindConflict, code, msg) }
func Policy(code, msg string) *Error    { return New(KindPolicy, code, msg) }
func NotFound(code, msg string) *Error  { return New(KindNotFound, code, msg) }
func Forbidden(code, msg string) *Error { return New(KindForbidden, code, msg) }

// Validationf builds a fresh validation error; malformed input has no sentinel.
func Validationf(format string, args ...any) *Error {
	return New(KindValidation, "VALIDATION_ERROR", fmt.Sprintf(format, args...))
}

// KindOf reports the kind of the first *Error in err's chain, KindInternal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf reports the code of the first *Error in err's chain.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "INTERNAL"
}
