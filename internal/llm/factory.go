package llm

import (
	"fmt"
	"strings"

	"pulse-ai/internal/config"
)

// Factory creates the enrichment model client from configuration.
type Factory struct {
	cfg *config.Config
}

func NewFactory(cfg *config.Config) *Factory {
	return &Factory{cfg: cfg}
}

// CreateClient returns (nil, nil) when the selected provider has no
// credentials: enrichment is optional and callers fall back without it.
func (f *Factory) CreateClient(provider config.LLMProvider) (Client, error) {
	cfg := f.cfg
	switch config.LLMProvider(strings.ToLower(string(provider))) {
	case config.ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, nil
		}
		return NewOpenAI(cfg.GeminiAPIKey, cfg.GeminiBaseURL, cfg.GeminiModel, nil), nil
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, nil
		}
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, nil), nil
	case config.ProviderYandex:
		if cfg.YandexOAuthToken == "" || cfg.YandexFolderID == "" {
			return nil, nil
		}
		c, err := NewYandex(cfg.YandexOAuthToken, cfg.YandexFolderID)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", provider)
	}
}
