// Package app wires the pulse services from configuration.
package app

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"pulse-ai/internal/apify"
	"pulse-ai/internal/config"
	"pulse-ai/internal/interest"
	"pulse-ai/internal/llm"
	"pulse-ai/internal/notify"
	"pulse-ai/internal/pipeline"
	"pulse-ai/internal/search"
	"pulse-ai/internal/selection"
	"pulse-ai/internal/storage"
	"pulse-ai/internal/subscription"
)

type App struct {
	Config        *config.Config
	Store         storage.Store
	Search        *search.Service
	Selection     *selection.Store
	Interests     *interest.Counter
	Subscriptions *subscription.Ledger
	Pipeline      *pipeline.Pipeline
}

// New opens the configured store and builds every service. Missing optional
// credentials disable the matching feature instead of failing.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	kv, err := storage.Open(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "open store")
	}

	searcher, err := newSearcher(ctx, cfg)
	if err != nil {
		_ = kv.Close()
		return nil, err
	}
	enricher, err := llm.NewFactory(cfg).CreateClient(cfg.LLMProvider)
	if err != nil {
		_ = kv.Close()
		return nil, errors.Wrap(err, "create enrichment client")
	}
	if enricher == nil {
		logrus.WithField("provider", cfg.LLMProvider).Warn("⚠️ No enrichment credentials, search results are returned unprocessed")
	}

	counter := interest.NewCounter(kv)
	a := &App{
		Config:        cfg,
		Store:         kv,
		Search:        search.NewService(searcher, enricher),
		Selection:     selection.New(kv),
		Interests:     counter,
		Subscriptions: subscription.NewLedger(kv, counter),
	}
	a.Pipeline = pipeline.New(pipelineOptions(ctx, cfg, kv))
	return a, nil
}

// Close waits for background interest tracking and releases the store.
func (a *App) Close() error {
	a.Subscriptions.Wait()
	return a.Store.Close()
}

func newSearcher(ctx context.Context, cfg *config.Config) (search.Searcher, error) {
	switch {
	case cfg.SearchMock:
		logrus.Info("🧪 Using mock search results")
		return search.MockSearcher{}, nil
	case cfg.SearchConfigured():
		s, err := search.NewGoogleSearcher(ctx, cfg.GoogleAPIKey, cfg.GoogleSearchEngineID)
		if err != nil {
			return nil, errors.Wrap(err, "create search client")
		}
		return s, nil
	default:
		logrus.Warn("⚠️ Search credentials missing, search endpoints will report a configuration error")
		return nil, nil
	}
}

func pipelineOptions(ctx context.Context, cfg *config.Config, kv storage.Store) pipeline.Options {
	opts := pipeline.Options{
		Sources: []pipeline.ContextSource{
			pipeline.NewHTTPContextSource(cfg.BaseURL, nil),
			pipeline.NewStoreContextSource(kv),
		},
		Actor:      apify.New(cfg.ApifyBaseURL, cfg.ApifyAPIKey, nil),
		ActorID:    cfg.ApifyActorID,
		Recipients: cfg.NotifyRecipients,
	}

	if cfg.ArcadeAPIKey != "" {
		client := llm.NewOpenAI(cfg.ArcadeAPIKey, cfg.ArcadeBaseURL, cfg.ArcadeModel, nil)
		opts.Gateway = notify.NewGateway(client, cfg.ArcadeUserID)
	} else {
		logrus.Warn("⚠️ Tool gateway key missing, email and tweet delivery disabled")
	}

	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != 0 {
		ch, err := notify.NewTelegramChannel(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			logrus.WithError(err).Warn("⚠️ Telegram channel disabled")
		} else {
			opts.Channels = append(opts.Channels, ch)
		}
	}

	if cfg.GmailCredentialsJSON != "" && cfg.GmailRefreshToken != "" {
		ch, err := notify.NewGmailChannelFromCredentials(ctx, cfg.GmailCredentialsJSON, cfg.GmailRefreshToken, cfg.GmailSender, cfg.NotifyRecipients)
		if err != nil {
			logrus.WithError(err).Warn("⚠️ Gmail channel disabled")
		} else {
			opts.Channels = append(opts.Channels, ch)
		}
	}
	return opts
}
