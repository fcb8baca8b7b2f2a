package interest

import (
	"context"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"pulse-ai/internal/apperr"
	"pulse-ai/internal/events"
	"pulse-ai/internal/storage"
)

// Record counts how many times interest in one event was signalled.
// SearchTerms is seeded on creation and never updated afterwards.
type Record struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Keywords    []string `json:"keywords"`
	Count       int      `json:"count"`
	SearchTerms []string `json:"searchTerms"`
}

type Counter struct {
	kv storage.Store
	mu sync.Mutex
}

func NewCounter(kv storage.Store) *Counter {
	return &Counter{kv: kv}
}

func (c *Counter) load(ctx context.Context) []Record {
	var recs []Record
	if _, err := storage.LoadJSON(ctx, c.kv, storage.KeyEventInterests, &recs); err != nil {
		logrus.WithError(err).Warn("⚠️ Event interests unreadable, starting fresh")
		return []Record{}
	}
	if recs == nil {
		recs = []Record{}
	}
	return recs
}

// RecordInterest bumps the counter for event.ID, creating it with Count 1 on
// first sight. It returns the whole updated collection.
func (c *Counter) RecordInterest(ctx context.Context, event *events.Event) ([]Record, error) {
	if event == nil {
		return nil, apperr.Validation("Event data is required")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	recs := c.load(ctx)
	found := false
	for i := range recs {
		if recs[i].ID == event.ID {
			recs[i].Count++
			found = true
			break
		}
	}
	if !found {
		keywords := append([]string{}, event.Keywords...)
		recs = append(recs, Record{
			ID:          event.ID,
			Title:       event.Title,
			Keywords:    keywords,
			Count:       1,
			SearchTerms: append([]string{event.Title}, keywords...),
		})
	}
	if err := storage.SaveJSON(ctx, c.kv, storage.KeyEventInterests, recs); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"event_id": event.ID, "title": event.Title}).Info("📈 Event interest recorded")
	return recs, nil
}

func (c *Counter) List(ctx context.Context) []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

// Top returns up to n records with the highest counts. n <= 0 means all.
func (c *Counter) Top(ctx context.Context, n int) []Record {
	recs := c.List(ctx)
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Count > recs[j].Count })
	if n > 0 && len(recs) > n {
		recs = recs[:n]
	}
	return recs
}
