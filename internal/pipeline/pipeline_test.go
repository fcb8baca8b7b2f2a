package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulse-ai/internal/apify"
	"pulse-ai/internal/events"
	"pulse-ai/internal/notify"
	"pulse-ai/internal/selection"
	"pulse-ai/internal/storage"
)

type fakeActor struct {
	items   []apify.Item
	err     error
	actorID string
	input   map[string]any
}

func (f *fakeActor) RunActor(_ context.Context, actorID string, input any) ([]apify.Item, error) {
	f.actorID = actorID
	f.input, _ = input.(map[string]any)
	return f.items, f.err
}

type fakeMessenger struct {
	emailErr   error
	tweetErr   error
	recipients []string
	tweets     []string
}

func (f *fakeMessenger) SendEmail(_ context.Context, recipients []string, _, _ string) (string, error) {
	f.recipients = recipients
	if f.emailErr != nil {
		return "", f.emailErr
	}
	return "email sent", nil
}

func (f *fakeMessenger) PostTweet(_ context.Context, text string) (string, error) {
	f.tweets = append(f.tweets, text)
	if f.tweetErr != nil {
		return "", f.tweetErr
	}
	return "tweet posted", nil
}

type fakeChannel struct {
	name string
	err  error
	sent int
}

func (c *fakeChannel) Name() string { return c.name }

func (c *fakeChannel) Send(context.Context, string, string) error {
	c.sent++
	return c.err
}

type staticSource struct {
	rec *selection.Record
	err error
}

func (s staticSource) Name() string { return "static" }

func (s staticSource) Fetch(context.Context) (*selection.Record, error) { return s.rec, s.err }

func TestDeriveSearchTerms(t *testing.T) {
	assert.Equal(t, []string{DefaultSearchTerm}, DeriveSearchTerms(nil))
	assert.Equal(t, []string{DefaultSearchTerm}, DeriveSearchTerms(&selection.Record{}))
	assert.Equal(t, []string{DefaultSearchTerm}, DeriveSearchTerms(&selection.Record{SelectedEvent: &events.Event{Title: "  "}}))
	assert.Equal(t, []string{"NeurIPS"}, DeriveSearchTerms(&selection.Record{SelectedEvent: &events.Event{Title: "NeurIPS"}}))
}

func TestActorInput(t *testing.T) {
	in := ActorInput([]string{"GTC 2025"})
	assert.Equal(t, "en", in["lang"])
	assert.Equal(t, false, in["include:nativeretweets"])
	assert.Equal(t, ScrapeSince, in["since"])
	assert.Equal(t, ScrapeUntil, in["until"])
	assert.Equal(t, ScrapeMaxItems, in["maxItems"])
	assert.Equal(t, []string{"GTC 2025"}, in["searchTerms"])
	for k, v := range in {
		if len(k) > 7 && k[:7] == "filter:" {
			assert.Equal(t, false, v, k)
		}
	}
	assert.Contains(t, in, "filter:replies")
}

func TestCollectText(t *testing.T) {
	items := []apify.Item{
		{"text": "first"},
		{"id": "no text"},
		{"full_text": "second"},
		{"text": ""},
		{"text": "third", "full_text": "ignored"},
	}
	assert.Equal(t, "first\nsecond\nthird", CollectText(items))
	assert.Equal(t, "", CollectText(nil))
}

func TestFetchContextFallsBack(t *testing.T) {
	want := &selection.Record{SelectedEvent: &events.Event{ID: 2, Title: "ML Workshop"}}
	got := FetchContext(context.Background(),
		staticSource{err: errors.New("down")},
		staticSource{rec: want},
	)
	assert.Equal(t, want, got)

	assert.Nil(t, FetchContext(context.Background(), staticSource{err: errors.New("down")}))
}

func TestHTTPContextSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/context", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"selectedEvent":{"id":1,"title":"AI Summit 2024","description":"","date":"","location":"","keywords":[]},"lastUpdated":"2024-05-01T10:00:00Z"}}`))
	}))
	defer srv.Close()

	rec, err := NewHTTPContextSource(srv.URL+"/", srv.Client()).Fetch(context.Background())
	require.NoError(t, err)
	require.NotNil(t, rec.SelectedEvent)
	assert.Equal(t, "AI Summit 2024", rec.SelectedEvent.Title)
}

func TestHTTPContextSourceErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewHTTPContextSource(srv.URL, nil).Fetch(context.Background())
	assert.Error(t, err)
}

func TestStoreContextSource(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	src := NewStoreContextSource(kv)

	_, err := src.Fetch(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = selection.New(kv).Set(ctx, &events.Event{ID: 3, Title: "Computer Vision Summit"})
	require.NoError(t, err)
	rec, err := src.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Computer Vision Summit", rec.SelectedEvent.Title)
}

func TestScrapeUsesSelectedEvent(t *testing.T) {
	actor := &fakeActor{items: []apify.Item{{"text": "great keynote"}, {"text": "see you there"}}}
	p := New(Options{
		Sources: []ContextSource{staticSource{rec: &selection.Record{SelectedEvent: &events.Event{Title: "AI Summit 2024"}}}},
		Actor:   actor,
		ActorID: "actor-1",
	})

	out, err := p.Scrape(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "great keynote\nsee you there", out.Text)
	assert.Equal(t, []string{"AI Summit 2024"}, out.SearchTerms)
	assert.Equal(t, 2, out.Items)
	assert.Equal(t, "actor-1", actor.actorID)
	assert.Equal(t, []string{"AI Summit 2024"}, actor.input["searchTerms"])
}

func TestScrapeDefaultsWithoutContext(t *testing.T) {
	actor := &fakeActor{}
	p := New(Options{Sources: []ContextSource{staticSource{err: errors.New("down")}}, Actor: actor})

	out, err := p.Scrape(context.Background())
	require.NoError(t, err)
	assert.Nil(t, out.Context)
	assert.Equal(t, []string{DefaultSearchTerm}, out.SearchTerms)
	assert.Equal(t, "", out.Text)
}

func TestScrapeActorFailure(t *testing.T) {
	p := New(Options{Actor: &fakeActor{err: errors.New("quota exceeded")}})
	_, err := p.Scrape(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")

	_, err = New(Options{}).Scrape(context.Background())
	assert.Error(t, err)
}

func TestNotifyAttemptsBothRequests(t *testing.T) {
	gw := &fakeMessenger{emailErr: errors.New("mail down")}
	tg := &fakeChannel{name: "telegram"}
	p := New(Options{Gateway: gw, Recipients: []string{"a@x.com"}, Channels: []notify.Channel{tg}})

	n, err := p.Notify(context.Background(), "collected posts")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mail down")
	assert.Equal(t, []string{"a@x.com"}, gw.recipients)
	assert.Equal(t, []string{PromoTweet}, gw.tweets)
	assert.Equal(t, "tweet posted", n.Tweet)
	assert.Equal(t, "collected posts", n.Collected)
	assert.Equal(t, "sent", n.Channels["telegram"])
	assert.Equal(t, 1, tg.sent)
}

func TestNotifyJoinsErrors(t *testing.T) {
	gw := &fakeMessenger{emailErr: errors.New("mail down"), tweetErr: errors.New("x down")}
	gm := &fakeChannel{name: "gmail", err: errors.New("token expired")}
	p := New(Options{Gateway: gw, Channels: []notify.Channel{gm}})

	n, err := p.Notify(context.Background(), "")
	require.Error(t, err)
	for _, part := range []string{"mail down", "x down", "token expired"} {
		assert.Contains(t, err.Error(), part)
	}
	assert.Equal(t, "failed", n.Channels["gmail"])
}

func TestNotifyCollectedTextNotSent(t *testing.T) {
	gw := &fakeMessenger{}
	p := New(Options{Gateway: gw})

	_, err := p.Notify(context.Background(), "secret scraped text")
	require.NoError(t, err)
	assert.NotContains(t, gw.tweets[0], "secret scraped text")
}

func TestRunStopsOnScrapeFailure(t *testing.T) {
	gw := &fakeMessenger{}
	p := New(Options{Actor: &fakeActor{err: errors.New("boom")}, Gateway: gw})

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Empty(t, gw.tweets)
}

func TestRun(t *testing.T) {
	gw := &fakeMessenger{}
	p := New(Options{Actor: &fakeActor{items: []apify.Item{{"text": "hello"}}}, Gateway: gw, Recipients: []string{"a@x.com"}})

	rep, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hello", rep.Scraped.Text)
	assert.Equal(t, "hello", rep.Notification.Collected)
	assert.Equal(t, "email sent", rep.Notification.Email)
}
