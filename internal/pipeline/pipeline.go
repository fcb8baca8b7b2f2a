// Package pipeline scrapes social posts about the selected event and sends
// the promotional notifications.
package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"pulse-ai/internal/apify"
	"pulse-ai/internal/notify"
	"pulse-ai/internal/selection"
)

// DefaultSearchTerm is scraped when no event is selected.
const DefaultSearchTerm = "GTC 2025"

const (
	ScrapeSince    = "2021-12-31_23:59:59_UTC"
	ScrapeUntil    = "2024-12-31_23:59:59_UTC"
	ScrapeMaxItems = 50

	PromoEmailSubject = "New AI events on pulseAI"
	PromoEmailBody    = "Hi there,\n\nNew AI events matching your interests were just published on pulseAI. Open the app to explore conferences, workshops and meetups near you.\n\nThe pulseAI team"
	PromoTweet        = "Discover the latest AI conferences, workshops and meetups on pulseAI. Search events by topic and city and never miss what matters. #AI #Events"
)

// filterFlags are sent to the tweet scraper, all disabled.
var filterFlags = []string{
	"blue_verified", "consumer_video", "has_engagement", "hashtags", "images",
	"links", "media", "mentions", "native_video", "nativeretweets", "news",
	"pro_video", "quote", "replies", "safe", "spaces", "twimg", "verified",
	"videos", "vine",
}

type ActorRunner interface {
	RunActor(ctx context.Context, actorID string, input any) ([]apify.Item, error)
}

type Messenger interface {
	SendEmail(ctx context.Context, recipients []string, subject, body string) (string, error)
	PostTweet(ctx context.Context, text string) (string, error)
}

type Options struct {
	Sources    []ContextSource
	Actor      ActorRunner
	ActorID    string
	Gateway    Messenger
	Recipients []string
	Channels   []notify.Channel
}

type Pipeline struct {
	opts Options
	now  func() time.Time
}

func New(opts Options) *Pipeline {
	return &Pipeline{opts: opts, now: func() time.Time { return time.Now().UTC() }}
}

// Scraped is the outcome of one scrape.
type Scraped struct {
	Text        string            `json:"text"`
	SearchTerms []string          `json:"searchTerms"`
	Items       int               `json:"items"`
	Context     *selection.Record `json:"context"`
	ScrapedAt   time.Time         `json:"scrapedAt"`
}

// Notification records what was sent. Collected is the scraped text; it is
// not used in the message content.
type Notification struct {
	Email     string            `json:"email,omitempty"`
	Tweet     string            `json:"tweet,omitempty"`
	Channels  map[string]string `json:"channels,omitempty"`
	Collected string            `json:"collected"`
}

// DeriveSearchTerms picks the selected event's title, or the default term.
func DeriveSearchTerms(rec *selection.Record) []string {
	if rec != nil && rec.SelectedEvent != nil && strings.TrimSpace(rec.SelectedEvent.Title) != "" {
		return []string{rec.SelectedEvent.Title}
	}
	return []string{DefaultSearchTerm}
}

// ActorInput builds the fixed scraper input for terms.
func ActorInput(terms []string) map[string]any {
	in := map[string]any{
		"include:nativeretweets": false,
		"lang":                   "en",
		"searchTerms":            terms,
		"since":                  ScrapeSince,
		"until":                  ScrapeUntil,
		"maxItems":               ScrapeMaxItems,
	}
	for _, f := range filterFlags {
		in["filter:"+f] = false
	}
	return in
}

// CollectText concatenates the text of every item that has one.
func CollectText(items []apify.Item) string {
	var parts []string
	for _, it := range items {
		for _, field := range []string{"text", "full_text"} {
			if s, ok := it[field].(string); ok && s != "" {
				parts = append(parts, s)
				break
			}
		}
	}
	return strings.Join(parts, "\n")
}

// Scrape collects social posts for the selected event. Actor failure is fatal.
func (p *Pipeline) Scrape(ctx context.Context) (Scraped, error) {
	rec := FetchContext(ctx, p.opts.Sources...)
	terms := DeriveSearchTerms(rec)
	log := logrus.WithField("terms", terms)
	log.Info("🔍 Scraping social posts")

	if p.opts.Actor == nil {
		return Scraped{}, fmt.Errorf("actor platform is not configured")
	}
	items, err := p.opts.Actor.RunActor(ctx, p.opts.ActorID, ActorInput(terms))
	if err != nil {
		return Scraped{}, errors.Wrap(err, "run scraper actor")
	}
	text := CollectText(items)
	log.WithFields(logrus.Fields{"items": len(items), "chars": len(text)}).Info("✅ Scrape finished")
	return Scraped{
		Text:        text,
		SearchTerms: terms,
		Items:       len(items),
		Context:     rec,
		ScrapedAt:   p.now(),
	}, nil
}

// Notify sends the promotional email and tweet through the gateway and any
// direct channels. Every delivery is attempted; failures are joined.
func (p *Pipeline) Notify(ctx context.Context, collected string) (Notification, error) {
	n := Notification{Collected: collected}
	var errs []error

	if p.opts.Gateway == nil {
		errs = append(errs, fmt.Errorf("tool gateway is not configured"))
	} else {
		email, err := p.opts.Gateway.SendEmail(ctx, p.opts.Recipients, PromoEmailSubject, PromoEmailBody)
		if err != nil {
			errs = append(errs, errors.Wrap(err, "send email"))
		}
		n.Email = email
		tweet, err := p.opts.Gateway.PostTweet(ctx, PromoTweet)
		if err != nil {
			errs = append(errs, errors.Wrap(err, "post tweet"))
		}
		n.Tweet = tweet
	}

	for _, ch := range p.opts.Channels {
		if n.Channels == nil {
			n.Channels = make(map[string]string)
		}
		if err := ch.Send(ctx, PromoEmailSubject, PromoEmailBody); err != nil {
			errs = append(errs, errors.Wrapf(err, "channel %s", ch.Name()))
			n.Channels[ch.Name()] = "failed"
			continue
		}
		n.Channels[ch.Name()] = "sent"
	}
	return n, stderrors.Join(errs...)
}

// Report is the result of a full pipeline run.
type Report struct {
	Scraped      Scraped      `json:"scraped"`
	Notification Notification `json:"notification"`
}

// Run scrapes then notifies. A scrape failure stops the run before any
// notification is sent. There is no retry.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	scraped, err := p.Scrape(ctx)
	if err != nil {
		return Report{}, errors.Wrap(err, "scrape")
	}
	n, err := p.Notify(ctx, scraped.Text)
	rep := Report{Scraped: scraped, Notification: n}
	if err != nil {
		return rep, errors.Wrap(err, "notify")
	}
	logrus.Info("📣 Pipeline finished")
	return rep, nil
}
