package alchemy

import "fmt"

// ErrorKind represents the category of a client error.
type ErrorKind string

const (
	ErrorKindInvalidKey        ErrorKind = "invalid_key"
	ErrorKindUnsupportedFlavor ErrorKind = "unsupported_flavor"
	ErrorKindMissingTarget     ErrorKind = "missing_target"
	ErrorKindTransport         ErrorKind = "transport"
	ErrorKindParse             ErrorKind = "parse"
)

// Sentinel errors for use with errors.Is. An *Error matches a sentinel when
// both carry the same Kind.
var (
	ErrInvalidKey        = &Error{Kind: ErrorKindInvalidKey}
	ErrUnsupportedFlavor = &Error{Kind: ErrorKindUnsupportedFlavor}
	ErrMissingTarget     = &Error{Kind: ErrorKindMissingTarget}
	ErrTransport         = &Error{Kind: ErrorKindTransport}
	ErrParse             = &Error{Kind: ErrorKindParse}
)

// Error is the single error type produced by this package.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`

	// Err is the underlying cause, if any.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return t.Kind == e.Kind
}

// NewInvalidKeyError creates an Error for an API key of the wrong length.
func NewInvalidKeyError(length int) *Error {
	return &Error{
		Kind:    ErrorKindInvalidKey,
		Message: fmt.Sprintf("invalid key: expected %d characters, got %d", KeyLength, length),
	}
}

// NewUnsupportedFlavorError creates an Error for a flavor the capability
// does not accept.
func NewUnsupportedFlavorError(c Capability, f Flavor) *Error {
	return &Error{
		Kind:    ErrorKindUnsupportedFlavor,
		Message: fmt.Sprintf("%s is not available for %s", c.Feature(), f),
	}
}

// NewMissingTargetError creates an Error for a targeted sentiment call
// without a target phrase.
func NewMissingTargetError() *Error {
	return &Error{
		Kind:    ErrorKindMissingTarget,
		Message: "target must not be null",
	}
}

// NewTransportError creates an Error for a failed HTTP exchange.
func NewTransportError(message string, err error) *Error {
	if err != nil {
		message = fmt.Sprintf("%s: %s", message, err.Error())
	}
	return &Error{
		Kind:    ErrorKindTransport,
		Message: message,
		Err:     err,
	}
}

// NewParseError creates an Error for a response body that is not valid JSON.
func NewParseError(err error) *Error {
	return &Error{
		Kind:    ErrorKindParse,
		Message: fmt.Sprintf("failed to parse response: %s", err.Error()),
		Err:     err,
	}
}
