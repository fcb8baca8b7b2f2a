package subscription

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"pulse-ai/internal/apperr"
	"pulse-ai/internal/events"
	"pulse-ai/internal/interest"
	"pulse-ai/internal/storage"
)

// Record is one subscriber keyed by email. Interests is a deduplicated set;
// SelectedEvents only ever grows.
type Record struct {
	Email          string         `json:"email"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	Interests      []string       `json:"interests"`
	SelectedEvents []events.Event `json:"selectedEvents"`
}

// Tracker receives the interest signal emitted when a subscription names an event.
type Tracker interface {
	RecordInterest(ctx context.Context, event *events.Event) ([]interest.Record, error)
}

type Ledger struct {
	kv      storage.Store
	tracker Tracker
	now     func() time.Time
	mu      sync.Mutex
	wg      sync.WaitGroup
}

// NewLedger builds a ledger. tracker may be nil.
func NewLedger(kv storage.Store, tracker Tracker) *Ledger {
	return &Ledger{kv: kv, tracker: tracker, now: func() time.Time { return time.Now().UTC() }}
}

func (l *Ledger) load(ctx context.Context) []Record {
	var recs []Record
	if _, err := storage.LoadJSON(ctx, l.kv, storage.KeySubscriptions, &recs); err != nil {
		logrus.WithError(err).Warn("⚠️ Subscriptions unreadable, starting fresh")
		return []Record{}
	}
	return recs
}

// Upsert creates or merges the subscription for email. When event is given
// the interest tracker is notified in the background; its failure is logged
// and never fails the subscription.
func (l *Ledger) Upsert(ctx context.Context, email string, interests []string, event *events.Event) (Record, error) {
	if strings.TrimSpace(email) == "" {
		return Record{}, apperr.Validation("Email is required")
	}

	l.mu.Lock()
	recs := l.load(ctx)
	now := l.now()
	idx := -1
	for i := range recs {
		if recs[i].Email == email {
			idx = i
			break
		}
	}
	if idx >= 0 {
		r := &recs[idx]
		r.UpdatedAt = now
		r.Interests = union(r.Interests, interests)
		if event != nil {
			r.SelectedEvents = append(r.SelectedEvents, *event)
		}
		if r.SelectedEvents == nil {
			r.SelectedEvents = []events.Event{}
		}
	} else {
		rec := Record{
			Email:          email,
			CreatedAt:      now,
			UpdatedAt:      now,
			Interests:      union(nil, interests),
			SelectedEvents: []events.Event{},
		}
		if event != nil {
			rec.SelectedEvents = append(rec.SelectedEvents, *event)
		}
		recs = append(recs, rec)
		idx = len(recs) - 1
	}
	err := storage.SaveJSON(ctx, l.kv, storage.KeySubscriptions, recs)
	saved := recs[idx]
	l.mu.Unlock()
	if err != nil {
		return Record{}, err
	}

	logrus.WithField("email", email).Info("✉️ Subscription saved")
	if event != nil && l.tracker != nil {
		l.track(ctx, *event)
	}
	return saved, nil
}

func (l *Ledger) track(ctx context.Context, event events.Event) {
	l.wg.Add(1)
	// outlive the request that triggered it
	ctx = context.WithoutCancel(ctx)
	go func() {
		defer l.wg.Done()
		if _, err := l.tracker.RecordInterest(ctx, &event); err != nil {
			logrus.WithError(err).WithField("event_id", event.ID).Error("❌ Error tracking event interest")
		}
	}()
}

// Wait blocks until background interest tracking has finished.
func (l *Ledger) Wait() { l.wg.Wait() }

func (l *Ledger) List(ctx context.Context) []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx)
}

// Emails returns every subscribed address in ledger order.
func (l *Ledger) Emails(ctx context.Context) []string {
	recs := l.List(ctx)
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Email)
	}
	return out
}

func union(base, add []string) []string {
	seen := make(map[string]struct{}, len(base)+len(add))
	out := make([]string, 0, len(base)+len(add))
	for _, list := range [][]string{base, add} {
		for _, s := range list {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
