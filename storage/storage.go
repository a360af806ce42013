// Package storage defines how expanded event streams are persisted.
// Implementations must be safe for concurrent use.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/tempuskit/libtempus/truth"
)

// ErrorType classifies storage failures.
type ErrorType int

const (
	// ErrNotFound is returned when a requested stream does not exist.
	ErrNotFound ErrorType = iota
	// ErrAlreadyExists is returned when creating a stream whose id is
	// already taken.
	ErrAlreadyExists
	// ErrInvalidInput is returned for malformed arguments.
	ErrInvalidInput
)

func (t ErrorType) String() string {
	switch t {
	case ErrNotFound:
		return "not_found"
	case ErrAlreadyExists:
		return "already_exists"
	case ErrInvalidInput:
		return "invalid_input"
	}
	return "unknown"
}

// Error is the failure type returned by stream stores.
type Error struct {
	Type    ErrorType
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// IsNotFound reports whether err is a storage not-found error.
func IsNotFound(err error) bool {
	var serr *Error
	return errors.As(err, &serr) && serr.Type == ErrNotFound
}

// Store persists named event streams. CreateStream assigns an id when
// the stream carries none and returns the stored id.
type Store interface {
	CreateStream(ctx context.Context, stream truth.EventStream) (string, error)
	GetStream(ctx context.Context, id string) (*truth.EventStream, error)
	ListStreams(ctx context.Context) ([]truth.EventStream, error)
	UpdateStream(ctx context.Context, stream truth.EventStream) error
	DeleteStream(ctx context.Context, id string) error
}
