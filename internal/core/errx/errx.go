package errx

import (
	"errors"
	"fmt"
)

// Kind classifies an error for presentation and routing decisions.
// Components branch on Kind, never on raw response shapes.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNetwork    Kind = "network"
	KindTimeout    Kind = "timeout"
	KindNotFound   Kind = "not_found"
	KindServer     Kind = "server"
	KindAuth       Kind = "auth"
	KindUnknown    Kind = "unknown"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "something went wrong, please try again"
	// StoreErrorMessage describes client-side state store failures.
	StoreErrorMessage = "state store operation failed"
	// StoreNotFoundMessage is returned when a persisted key does not exist.
	StoreNotFoundMessage = "state store key not found"
)

// Error wraps an underlying error with a classification, the HTTP status
// that produced it (zero when not HTTP related) and a safe display message.
type Error struct {
	Err     error
	Kind    Kind
	Status  int
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether the target matches the underlying error.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to Error or the wrapped error in a chain.
func (e *Error) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**Error); ok {
		*t = e
		return true
	}
	return false
}

// New creates a classified Error.
func New(err error, kind Kind, status int, message string) *Error {
	return &Error{Err: err, Kind: kind, Status: status, Message: message}
}

// Validation creates a client-side validation error. Validation errors
// block submission and never reach the network.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// KindOf extracts the classification from any error, defaulting to
// KindUnknown for errors that did not pass through this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// DisplayMessage extracts the user-safe message from any error. Plain
// errors fall back to the generic system message so technical detail is
// logged, not displayed.
func DisplayMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return SystemErrorMessage
}

// IsRetryWorthy reports whether the user should be told to retry:
// transport failures and timeouts, where no automatic retry happens.
func IsRetryWorthy(err error) bool {
	switch KindOf(err) {
	case KindNetwork, KindTimeout:
		return true
	}
	return false
}
