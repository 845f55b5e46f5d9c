package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrNoAvailability = errors.New("no rooms available for the requested dates")
	ErrAlreadyExists  = errors.New("already exists")
	ErrInvalidRange   = errors.New("invalid date range")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")

	// ErrInternal is what callers see in place of an unexpected storage failure.
	ErrInternal = errors.New("internal error")

	// ErrTransient marks a failure of the concurrency control itself (deadlock,
	// lock wait timeout). Safe to retry a bounded number of times.
	ErrTransient = errors.New("transient storage conflict")
)

func invalid(msg string) error { return fmt.Errorf("%w: %s", ErrInvalidInput, msg) }

func NotFound(what string, id int64) error {
	return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
}
