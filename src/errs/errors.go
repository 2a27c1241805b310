// Package errs provides the error type shared by the gallery service, the
// storage backends and the HTTP layer.
//
// Backends wrap their native errors into *errs.Error; handlers look at the Kind
// to pick a status code without importing any driver package.
package errs

import (
	"errors"
	"fmt"
)

// Kind categorises an error independently of the subsystem that produced it.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnauthorized
	KindTokenExpired
	KindInvalidToken
	KindAuthenticationFailed
	KindBadRequest
	KindInvalidName
	KindConflict
	KindForbidden
	KindNotFound
	KindStorage
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindTokenExpired:
		return "token_expired"
	case KindInvalidToken:
		return "invalid_token"
	case KindAuthenticationFailed:
		return "authentication_failed"
	case KindBadRequest:
		return "bad_request"
	case KindInvalidName:
		return "invalid_name"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindStorage:
		return "storage_error"
	case KindInternal:
		return "internal_error"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Cause   error // kept for logs, never rendered to clients
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an *Error with the given kind and message and no cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap creates an *Error with the given kind, message and underlying cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// KindOf extracts the Kind of the first *Error in the chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// MessageOf returns the client-facing message of the first *Error in the chain.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}

func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

func IsConflict(err error) bool {
	return KindOf(err) == KindConflict
}

func IsForbidden(err error) bool {
	return KindOf(err) == KindForbidden
}

func IsBadRequest(err error) bool {
	k := KindOf(err)
	return k == KindBadRequest || k == KindInvalidName
}
