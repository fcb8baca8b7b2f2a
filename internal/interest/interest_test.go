package interest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulse-ai/internal/apperr"
	"pulse-ai/internal/events"
	"pulse-ai/internal/storage"
)

func TestRecordInterestRequiresEvent(t *testing.T) {
	c := NewCounter(storage.NewMemoryStore())
	_, err := c.RecordInterest(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestRecordInterestTwice(t *testing.T) {
	ctx := context.Background()
	c := NewCounter(storage.NewMemoryStore())

	first := &events.Event{ID: 1, Title: "AI Summit", Keywords: []string{"ai", "ml"}}
	recs, err := c.RecordInterest(ctx, first)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 1, recs[0].Count)
	assert.Equal(t, []string{"AI Summit", "ai", "ml"}, recs[0].SearchTerms)

	// a later signal with different metadata only bumps the count
	second := &events.Event{ID: 1, Title: "Renamed", Keywords: []string{"other"}}
	recs, err = c.RecordInterest(ctx, second)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 2, recs[0].Count)
	assert.Equal(t, "AI Summit", recs[0].Title)
	assert.Equal(t, []string{"AI Summit", "ai", "ml"}, recs[0].SearchTerms)
}

func TestRecordInterestWithoutKeywords(t *testing.T) {
	c := NewCounter(storage.NewMemoryStore())
	recs, err := c.RecordInterest(context.Background(), &events.Event{ID: 9, Title: "Bare"})
	require.NoError(t, err)
	assert.Equal(t, []string{}, recs[0].Keywords)
	assert.Equal(t, []string{"Bare"}, recs[0].SearchTerms)
}

func TestTop(t *testing.T) {
	ctx := context.Background()
	c := NewCounter(storage.NewMemoryStore())
	for _, id := range []int{1, 2, 2, 3, 3, 3} {
		_, err := c.RecordInterest(ctx, &events.Event{ID: id, Title: "e"})
		require.NoError(t, err)
	}
	top := c.Top(ctx, 2)
	require.Len(t, top, 2)
	assert.Equal(t, 3, top[0].ID)
	assert.Equal(t, 2, top[1].ID)
	assert.Len(t, c.Top(ctx, 0), 3)
}
