package selection

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulse-ai/internal/events"
	"pulse-ai/internal/storage"
)

func sampleEvent() *events.Event {
	return &events.Event{
		ID:          7,
		Title:       "GTC 2025",
		Description: "GPU conference",
		Date:        "2025-03-17",
		Location:    "San Jose",
		URL:         "https://example.com/gtc",
		Keywords:    []string{"gpu", "ai"},
	}
}

func TestGetDefault(t *testing.T) {
	s := New(storage.NewMemoryStore())
	rec := s.Get(context.Background())
	assert.Nil(t, rec.SelectedEvent)
	assert.False(t, rec.LastUpdated.IsZero())
}

func TestSetGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewMemoryStore())
	ev := sampleEvent()

	_, err := s.Set(ctx, ev)
	require.NoError(t, err)

	rec := s.Get(ctx)
	require.NotNil(t, rec.SelectedEvent)
	assert.Equal(t, *ev, *rec.SelectedEvent)
}

func TestSetNilKeepsEventAndStamps(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewMemoryStore())
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	_, err := s.Set(ctx, sampleEvent())
	require.NoError(t, err)

	clock = clock.Add(time.Minute)
	rec, err := s.Set(ctx, nil)
	require.NoError(t, err)
	require.NotNil(t, rec.SelectedEvent)
	assert.Equal(t, "GTC 2025", rec.SelectedEvent.Title)
	assert.Equal(t, clock, rec.LastUpdated)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewMemoryStore())
	_, err := s.Set(ctx, sampleEvent())
	require.NoError(t, err)

	_, err = s.Clear(ctx)
	require.NoError(t, err)
	assert.Nil(t, s.Get(ctx).SelectedEvent)
}

func TestCorruptFileFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "user_context.json"), []byte("garbage"), 0o644))
	s := New(storage.NewFileStore(dir))

	rec := s.Get(context.Background())
	assert.Nil(t, rec.SelectedEvent)

	// the next write replaces the corrupt state
	_, err := s.Set(context.Background(), sampleEvent())
	require.NoError(t, err)
	assert.Equal(t, 7, s.Get(context.Background()).SelectedEvent.ID)
}
