package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
)

type LLMProvider string

const (
	ProviderGemini LLMProvider = "gemini"
	ProviderOpenAI LLMProvider = "openai"
	ProviderYandex LLMProvider = "yandex"
)

type StoreBackend string

const (
	BackendFile   StoreBackend = "file"
	BackendMemory StoreBackend = "memory"
	BackendRedis  StoreBackend = "redis"
	BackendSQLite StoreBackend = "sqlite"
)

type Config struct {
	// HTTP
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":3000"`
	// Base URL used for server-to-server calls (pipeline -> /api/context)
	BaseURL  string `env:"PULSE_BASE_URL" envDefault:"http://localhost:3000"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Google Programmable Search
	GoogleAPIKey         string `env:"GOOGLE_API_KEY"`
	GoogleSearchEngineID string `env:"GOOGLE_SEARCH_ENGINE_ID"`
	SearchMock           bool   `env:"SEARCH_MOCK" envDefault:"false"`

	// LLM settings (enrichment)
	LLMProvider      LLMProvider `env:"LLM_PROVIDER" envDefault:"gemini"`
	GeminiAPIKey     string      `env:"GEMINI_API_KEY"`
	GeminiBaseURL    string      `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta/openai/"`
	GeminiModel      string      `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash-latest"`
	OpenAIAPIKey     string      `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string      `env:"OPENAI_BASE_URL"`
	OpenAIModel      string      `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	YandexOAuthToken string      `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string      `env:"YANDEX_FOLDER_ID"`

	// Actor platform
	ApifyAPIKey  string `env:"APIFY_API_KEY"`
	ApifyActorID string `env:"APIFY_ACTOR_ID" envDefault:"CJdippxWmn9uRfooo"`
	ApifyBaseURL string `env:"APIFY_BASE_URL" envDefault:"https://api.apify.com"`

	// Tool-calling gateway
	ArcadeAPIKey  string `env:"ARCADE_API_KEY"`
	ArcadeBaseURL string `env:"ARCADE_BASE_URL" envDefault:"https://api.arcade.dev/v1"`
	ArcadeModel   string `env:"ARCADE_MODEL" envDefault:"gpt-4"`
	ArcadeUserID  string `env:"ARCADE_USER_ID" envDefault:"pulseagentmcp@gmail.com"`

	NotifyRecipients []string `env:"NOTIFY_RECIPIENTS" envSeparator:"," envDefault:"pulseagentmcp@gmail.com"`
	PipelineSchedule string   `env:"PIPELINE_SCHEDULE"`

	// Optional extra channels
	TelegramBotToken     string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID       int64  `env:"TELEGRAM_CHAT_ID"`
	GmailCredentialsJSON string `env:"GMAIL_CREDENTIALS_JSON"`
	GmailRefreshToken    string `env:"GMAIL_REFRESH_TOKEN"`
	GmailSender          string `env:"GMAIL_SENDER"`

	// Storage
	StoreBackend StoreBackend `env:"STORE_BACKEND" envDefault:"file"`
	DataDir      string       `env:"DATA_DIR" envDefault:"data"`
	RedisAddr    string       `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	SQLitePath   string       `env:"SQLITE_PATH" envDefault:"data/pulse.db"`
}

func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// SearchConfigured reports whether Google Programmable Search credentials are present.
func (c *Config) SearchConfigured() bool {
	return c.GoogleAPIKey != "" && c.GoogleSearchEngineID != ""
}
