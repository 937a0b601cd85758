package extraction

import (
	"errors"
	"fmt"
)

// Kind classifies extraction failures. The set is closed; the HTTP layer maps each kind
// to exactly one status code.
type Kind int

const (
	// KindUnexpected covers anything not classified below.
	KindUnexpected Kind = iota
	// KindInputInvalid means the submitted URL was missing or malformed.
	KindInputInvalid
	// KindFetchFailed means the page could not be retrieved.
	KindFetchFailed
)

// String returns the snake_case name used in logs.
func (k Kind) String() string {
	switch k {
	case KindInputInvalid:
		return "input_invalid"
	case KindFetchFailed:
		return "fetch_failed"
	default:
		return "unexpected"
	}
}

// Error is returned by Service.Extract for every failure.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error returns the message shown to the caller.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

func inputInvalid(msg string) *Error {
	return &Error{Kind: KindInputInvalid, Message: msg}
}

func fetchFailed(err error) *Error {
	return &Error{Kind: KindFetchFailed, Message: fmt.Sprintf("fetch failed: %v", err), Err: err}
}

func unexpected(err error) *Error {
	return &Error{Kind: KindUnexpected, Message: fmt.Sprintf("unexpected error: %v", err), Err: err}
}

// KindOf reports the Kind of err. Errors that are not *Error are KindUnexpected.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}
