package service

import (
	"errors"
	"fmt"
)

// Error kinds. Every error a service returns to a caller either wraps one of
// these or is an internal failure whose detail must not reach end users.
var (
	ErrPermission      = errors.New("permission denied")
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
	ErrInvalidToken    = errors.New("invalid or expired token")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrRateLimited     = errors.New("rate limited")
)

// ErrDuplicate is returned by repositories when a uniqueness constraint rejects a write.
var ErrDuplicate = errors.New("duplicate key")

// Error carries a user-safe message alongside its kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// ErrAlreadyApproved is the conflict returned when approving an approved article.
var ErrAlreadyApproved = &Error{Kind: ErrConflict, Message: "article is already approved"}

func permissionError(format string, args ...any) error {
	return &Error{Kind: ErrPermission, Message: fmt.Sprintf(format, args...)}
}

func notFoundError(what string) error {
	return &Error{Kind: ErrNotFound, Message: what + " not found"}
}

func validationError(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func conflictError(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

var errInvalidToken = &Error{Kind: ErrInvalidToken, Message: "invalid or expired reset token"}

// Message returns the user-safe text for err, or "" when err is internal.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}
