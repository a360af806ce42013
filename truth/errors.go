package truth

import "fmt"

// ErrorKind classifies a truth-engine error.
type ErrorKind string

const (
	ErrInvalidRule     ErrorKind = "invalid_rule"
	ErrInvalidTimezone ErrorKind = "invalid_timezone"
	ErrInvalidFormat   ErrorKind = "invalid_format"
	ErrParse           ErrorKind = "parse_error"
	ErrExpansion       ErrorKind = "expansion"
)

// Error represents a truth-engine error
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds an Error with a formatted message.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError builds an Error that wraps an underlying cause.
func WrapError(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}
