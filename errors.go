package glass

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBackendUnavailable covers every engine failure: connection loss,
	// protocol errors, timeouts, wrong-type keys.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrMalformedIdentifier is returned when an id string fails to parse.
	ErrMalformedIdentifier = errors.New("malformed identifier")

	// ErrEncodingFailure is returned when a field value cannot be serialized.
	ErrEncodingFailure = errors.New("encoding failure")

	ErrNotFound     = errors.New("not found")
	ErrInvalidPage  = errors.New("invalid page number")
	ErrUnknownField = errors.New("unknown field")

	// ErrEmptyFieldName is returned when a write names a field "". Redis
	// accepts such fields but the embedded engines cannot store them.
	ErrEmptyFieldName = errors.New("empty field name")

	errInvalidLength = errors.New("invalid length")
)

type BackendError struct {
	Op   string
	Type string
	Err  error
}

func backendErr(op, typ string, err error) error {
	if err == nil {
		return nil
	}
	return &BackendError{op, typ, err}
}

func (e *BackendError) Unwrap() []error {
	return []error{ErrBackendUnavailable, e.Err}
}

func (e *BackendError) Error() string {
	var buf strings.Builder
	buf.WriteString("glass: ")
	buf.WriteString(e.Op)
	if e.Type != "" {
		buf.WriteByte(' ')
		buf.WriteString(e.Type)
	}
	buf.WriteString(": ")
	buf.WriteString(ErrBackendUnavailable.Error())
	if e.Err != nil {
		buf.WriteString(": ")
		buf.WriteString(e.Err.Error())
	}
	return buf.String()
}

type IdentifierError struct {
	Raw string
	Err error
}

func (e *IdentifierError) Unwrap() []error {
	return []error{ErrMalformedIdentifier, e.Err}
}

func (e *IdentifierError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("glass: %v %q: %v", ErrMalformedIdentifier, e.Raw, e.Err)
	}
	return fmt.Sprintf("glass: %v %q", ErrMalformedIdentifier, e.Raw)
}

type EncodingError struct {
	Type  string
	Field string
	Err   error
}

func encodingErrf(typ, field string, err error) error {
	return &EncodingError{typ, field, err}
}

func (e *EncodingError) Unwrap() []error {
	return []error{ErrEncodingFailure, e.Err}
}

func (e *EncodingError) Error() string {
	var buf strings.Builder
	buf.WriteString("glass: ")
	buf.WriteString(e.Type)
	if e.Field != "" {
		buf.WriteByte('.')
		buf.WriteString(e.Field)
	}
	buf.WriteString(": ")
	buf.WriteString(ErrEncodingFailure.Error())
	if e.Err != nil {
		buf.WriteString(": ")
		buf.WriteString(e.Err.Error())
	}
	return buf.String()
}
