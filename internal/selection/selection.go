// Package selection persists the single, process-wide "currently selected
// event" record.
package selection

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"pulse-ai/internal/events"
	"pulse-ai/internal/storage"
)

// Record is the persisted context. There is exactly one, stored under
// storage.KeyUserContext.
type Record struct {
	SelectedEvent *events.Event `json:"selectedEvent"`
	LastUpdated   time.Time     `json:"lastUpdated"`
}

type Store struct {
	kv  storage.Store
	now func() time.Time
	mu  sync.Mutex
}

func New(kv storage.Store) *Store {
	return &Store{kv: kv, now: func() time.Time { return time.Now().UTC() }}
}

// Get never fails: a missing or unreadable record yields the default one.
func (s *Store) Get(ctx context.Context) Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getUnlocked(ctx)
}

func (s *Store) getUnlocked(ctx context.Context) Record {
	var rec Record
	found, err := storage.LoadJSON(ctx, s.kv, storage.KeyUserContext, &rec)
	if err != nil {
		logrus.WithError(err).Error("❌ Error reading context, using default")
	}
	if err != nil || !found {
		return Record{LastUpdated: s.now()}
	}
	return rec
}

// Set replaces the selected event. A nil event keeps the current one and only
// refreshes LastUpdated.
func (s *Store) Set(ctx context.Context, event *events.Event) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.getUnlocked(ctx)
	if event != nil {
		rec.SelectedEvent = event
	}
	rec.LastUpdated = s.now()
	if err := storage.SaveJSON(ctx, s.kv, storage.KeyUserContext, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *Store) Clear(ctx context.Context) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := Record{LastUpdated: s.now()}
	if err := storage.SaveJSON(ctx, s.kv, storage.KeyUserContext, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}
