// Package apperr defines the error kinds quicklinks reports across package boundaries.
package apperr

import (
	"errors"
	"fmt"
)

// Kind categorizes an error for handling and reporting.
type Kind string

const (
	KindUnknown          Kind = "UNKNOWN"
	KindTransportFailure Kind = "TRANSPORT"
	KindHTTPError        Kind = "HTTP"
	KindParseError       Kind = "PARSE"
	KindSchemaInvalid    Kind = "SCHEMA"
	KindElementMissing   Kind = "ELEMENT_MISSING"
	KindConfig           Kind = "CONFIG"
	KindStorage          Kind = "STORAGE"
)

// Error wraps a cause with a Kind and a short message.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error returns "[KIND] message: cause", omitting the cause when absent.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds an Error of the given kind.
func New(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// ElementMissing reports that a required collaborator was not supplied at startup.
func ElementMissing(name string) *Error {
	return &Error{Kind: KindElementMissing, Message: "missing required element: " + name}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var target *Error
	if errors.As(err, &target) {
		return target.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
