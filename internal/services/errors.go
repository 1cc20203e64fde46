package services

import (
	"errors"
	"fmt"
)

// Kind classifies a service error. The transport maps kinds to status codes;
// services never know about HTTP.
type Kind string

const (
	KindNotFound           Kind = "NOT_FOUND"
	KindInvalidTarget      Kind = "INVALID_TARGET"
	KindInvalidParent      Kind = "INVALID_PARENT"
	KindInvalidInput       Kind = "INVALID_INPUT"
	KindConflict           Kind = "CONFLICT"
	KindUnauthenticated    Kind = "UNAUTHENTICATED"
	KindInvalidCredentials Kind = "INVALID_CREDENTIALS"
	KindStorage            Kind = "STORAGE"
)

// Error carries the kind plus the offending field and id so the adapter can
// build a precise client message.
type Error struct {
	Kind    Kind
	Field   string
	ID      uint
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so callers can write
// errors.Is(err, services.ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrInvalidTarget      = &Error{Kind: KindInvalidTarget}
	ErrInvalidParent      = &Error{Kind: KindInvalidParent}
	ErrInvalidInput       = &Error{Kind: KindInvalidInput}
	ErrConflict           = &Error{Kind: KindConflict}
	ErrUnauthenticated    = &Error{Kind: KindUnauthenticated}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials}
	ErrStorage            = &Error{Kind: KindStorage}
)

// KindOf returns the kind of err, or KindStorage for anything that is not a
// service error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

func notFound(field string, id uint) error {
	return &Error{Kind: KindNotFound, Field: field, ID: id, Message: fmt.Sprintf("%s %d does not exist", field, id)}
}

func invalidInput(field, message string) error {
	return &Error{Kind: KindInvalidInput, Field: field, Message: message}
}

func unauthenticated() error {
	return &Error{Kind: KindUnauthenticated, Message: "authentication required"}
}

func storageError(op string, err error) error {
	return &Error{Kind: KindStorage, Message: op, Err: err}
}
