// Package apperr defines the error taxonomy shared by the domain engines.
// Every failure a service returns is one of four kinds; handlers translate
// the kind to an HTTP status and never inspect error strings.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	// KindNotFound: a referenced user, request, or notification does not
	// exist or is inactive. The message names the specific identifier(s).
	KindNotFound Kind = iota + 1
	// KindInvalid: structurally invalid input (role/type mismatch, empty
	// recipient set). Not retryable.
	KindInvalid
	// KindForbidden: the caller lacks authority for the requested
	// transition or record.
	KindForbidden
	// KindConflict: a concurrent mutation won the race (e.g. the request
	// was already responded to).
	KindConflict
)

type Error struct {
	kind Kind
	msg  string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Kind() Kind { return e.kind }

func NotFound(format string, args ...interface{}) error {
	return &Error{kind: KindNotFound, msg: fmt.Sprintf(format, args...)}
}

func Invalid(format string, args ...interface{}) error {
	return &Error{kind: KindInvalid, msg: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...interface{}) error {
	return &Error{kind: KindForbidden, msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) error {
	return &Error{kind: KindConflict, msg: fmt.Sprintf(format, args...)}
}

func kindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return 0
}

func IsNotFound(err error) bool  { return kindOf(err) == KindNotFound }
func IsInvalid(err error) bool   { return kindOf(err) == KindInvalid }
func IsForbidden(err error) bool { return kindOf(err) == KindForbidden }
func IsConflict(err error) bool  { return kindOf(err) == KindConflict }

// HTTPStatus maps a domain error to its status code. Unknown errors are
// treated as internal.
func HTTPStatus(err error) int {
	switch kindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalid:
		return http.StatusBadRequest
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
