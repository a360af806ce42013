package toon

import "fmt"

// ErrorKind classifies codec failures.
type ErrorKind string

const (
	// ErrJSONParse marks malformed JSON passed to the encoder.
	ErrJSONParse ErrorKind = "json_parse"
	// ErrToonParse marks TOON text that violates the grammar.
	ErrToonParse ErrorKind = "toon_parse"
	// ErrEncode marks an internal encoder inconsistency.
	ErrEncode ErrorKind = "encode"
)

// Error is the failure type returned by the codec. Line is the
// 1-based input line for ToonParse errors, zero otherwise.
type Error struct {
	Kind    ErrorKind
	Line    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func parseError(line int, format string, args ...any) *Error {
	return &Error{Kind: ErrToonParse, Line: line, Message: fmt.Sprintf(format, args...)}
}
