package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempuskit/libtempus/storage"
	"github.com/tempuskit/libtempus/truth"
)

func sampleStream(id string) truth.EventStream {
	start := time.Date(2025, 1, 6, 14, 30, 0, 0, time.UTC)
	return truth.EventStream{
		StreamID: id,
		Events: []truth.ExpandedEvent{
			{Start: start, End: start.Add(30 * time.Minute)},
		},
	}
}

func TestCreateAndGet(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, err := s.CreateStream(ctx, sampleStream("work"))
	require.NoError(t, err)
	assert.Equal(t, "work", id)

	got, err := s.GetStream(ctx, "work")
	require.NoError(t, err)
	assert.Equal(t, "work", got.StreamID)
	require.Len(t, got.Events, 1)
}

func TestCreateGeneratesID(t *testing.T) {
	s := New()
	id, err := s.CreateStream(context.Background(), sampleStream(""))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	got, err := s.GetStream(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, got.StreamID)
}

func TestCreateDuplicate(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, err := s.CreateStream(ctx, sampleStream("dup"))
	require.NoError(t, err)

	_, err = s.CreateStream(ctx, sampleStream("dup"))
	require.Error(t, err)
	var serr *storage.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, storage.ErrAlreadyExists, serr.Type)
}

func TestGetMissing(t *testing.T) {
	s := New()
	_, err := s.GetStream(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, storage.IsNotFound(err))
}

func TestListPreservesCreationOrder(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b"} {
		_, err := s.CreateStream(ctx, sampleStream(id))
		require.NoError(t, err)
	}

	streams, err := s.ListStreams(ctx)
	require.NoError(t, err)
	ids := make([]string, len(streams))
	for i, st := range streams {
		ids[i] = st.StreamID
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestUpdateAndDelete(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, err := s.CreateStream(ctx, sampleStream("w"))
	require.NoError(t, err)

	updated := sampleStream("w")
	updated.Events = append(updated.Events, truth.ExpandedEvent{
		Start: time.Date(2025, 1, 7, 14, 30, 0, 0, time.UTC),
		End:   time.Date(2025, 1, 7, 15, 0, 0, 0, time.UTC),
	})
	require.NoError(t, s.UpdateStream(ctx, updated))

	got, err := s.GetStream(ctx, "w")
	require.NoError(t, err)
	assert.Len(t, got.Events, 2)

	require.NoError(t, s.DeleteStream(ctx, "w"))
	err = s.DeleteStream(ctx, "w")
	assert.True(t, storage.IsNotFound(err))
}

func TestUpdateMissing(t *testing.T) {
	s := New()
	err := s.UpdateStream(context.Background(), sampleStream("ghost"))
	assert.True(t, storage.IsNotFound(err))

	err = s.UpdateStream(context.Background(), sampleStream(""))
	var serr *storage.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, storage.ErrInvalidInput, serr.Type)
}

func TestGetReturnsCopy(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, err := s.CreateStream(ctx, sampleStream("w"))
	require.NoError(t, err)

	got, err := s.GetStream(ctx, "w")
	require.NoError(t, err)
	got.Events[0].Start = got.Events[0].Start.Add(time.Hour)

	again, err := s.GetStream(ctx, "w")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 6, 14, 30, 0, 0, time.UTC), again.Events[0].Start)
}

func TestConcurrentAccess(t *testing.T) {
	s := New()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := s.CreateStream(ctx, sampleStream(""))
			assert.NoError(t, err)
			_, err = s.GetStream(ctx, id)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	streams, err := s.ListStreams(ctx)
	require.NoError(t, err)
	assert.Len(t, streams, 16)
}
