// Package memory holds event streams in process memory, mainly for
// tests and single-process tools.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/tempuskit/libtempus/storage"
	"github.com/tempuskit/libtempus/truth"
)

// Store implements storage.Store using a mutex-guarded map.
type Store struct {
	mu      sync.RWMutex
	streams map[string]truth.EventStream
	order   []string
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{streams: make(map[string]truth.EventStream)}
}

func (s *Store) CreateStream(_ context.Context, stream truth.EventStream) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stream.StreamID == "" {
		stream.StreamID = uuid.NewString()
	}
	if _, ok := s.streams[stream.StreamID]; ok {
		return "", &storage.Error{
			Type:    storage.ErrAlreadyExists,
			Message: "stream " + stream.StreamID + " already exists",
		}
	}
	s.streams[stream.StreamID] = cloneStream(stream)
	s.order = append(s.order, stream.StreamID)
	return stream.StreamID, nil
}

func (s *Store) GetStream(_ context.Context, id string) (*truth.EventStream, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stream, ok := s.streams[id]
	if !ok {
		return nil, &storage.Error{
			Type:    storage.ErrNotFound,
			Message: "stream " + id + " not found",
		}
	}
	out := cloneStream(stream)
	return &out, nil
}

// ListStreams returns all streams in creation order.
func (s *Store) ListStreams(_ context.Context) ([]truth.EventStream, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]truth.EventStream, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneStream(s.streams[id]))
	}
	return out, nil
}

func (s *Store) UpdateStream(_ context.Context, stream truth.EventStream) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stream.StreamID == "" {
		return &storage.Error{
			Type:    storage.ErrInvalidInput,
			Message: "stream id is empty",
		}
	}
	if _, ok := s.streams[stream.StreamID]; !ok {
		return &storage.Error{
			Type:    storage.ErrNotFound,
			Message: "stream " + stream.StreamID + " not found",
		}
	}
	s.streams[stream.StreamID] = cloneStream(stream)
	return nil
}

func (s *Store) DeleteStream(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.streams[id]; !ok {
		return &storage.Error{
			Type:    storage.ErrNotFound,
			Message: "stream " + id + " not found",
		}
	}
	delete(s.streams, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func cloneStream(stream truth.EventStream) truth.EventStream {
	events := make([]truth.ExpandedEvent, len(stream.Events))
	copy(events, stream.Events)
	return truth.EventStream{StreamID: stream.StreamID, Events: events}
}
