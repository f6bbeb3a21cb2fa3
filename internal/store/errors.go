package store

import (
	"errors"
	"fmt"
)

// Kind classifies an engine error the way the CLI (standing in for the
// out-of-scope HTTP transport) needs to map it to an exit status.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindInvalidQuery Kind = "invalid_query"
	KindInvalidInput Kind = "invalid_input"
)

// Error is a typed engine error. Persistence failures are deliberately
// not represented here: they are logged by the store, never surfaced
// to a caller.
type Error struct {
	Kind Kind
	msg  string
}

func (e *Error) Error() string { return e.msg }

func newError(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

func errNotFound(format string, args ...any) error {
	return newError(KindNotFound, format, args...)
}

func errInvalidQuery(format string, args ...any) error {
	return newError(KindInvalidQuery, format, args...)
}

func errInvalidInput(format string, args ...any) error {
	return newError(KindInvalidInput, format, args...)
}

// NewNotFoundError builds a NotFound engine error. It exists for callers
// outside the package, such as the CLI, that need to synthesize one from
// a bool result (Delete, Evict) rather than an error return.
func NewNotFoundError(format string, args ...any) error {
	return errNotFound(format, args...)
}

// NewInvalidInputError builds an InvalidInput engine error. It exists
// for callers outside the package, such as the CLI, that reject a
// malformed document body before it ever reaches the store.
func NewInvalidInputError(format string, args ...any) error {
	return errInvalidInput(format, args...)
}

// IsNotFound reports whether err is (or wraps) a NotFound engine error.
func IsNotFound(err error) bool { return kindOf(err) == KindNotFound }

// IsInvalidQuery reports whether err is (or wraps) an InvalidQuery engine error.
func IsInvalidQuery(err error) bool { return kindOf(err) == KindInvalidQuery }

// IsInvalidInput reports whether err is (or wraps) an InvalidInput engine error.
func IsInvalidInput(err error) bool { return kindOf(err) == KindInvalidInput }

func kindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
