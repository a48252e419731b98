package llm

import (
	"strings"
	"time"
)

// Providers.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Generation parameters sent with every request.
const (
	Temperature     = 0.7
	MaxOutputTokens = 2048
	TopP            = 0.9
	TopK            = 40
)

// DefaultTimeout bounds a single generation request.
const DefaultTimeout = 30 * time.Second

// DefaultRateLimit is requests per minute, the Gemini free-tier quota.
const DefaultRateLimit = 15

// Config selects and configures a provider.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	// BaseURL overrides the provider endpoint root, mainly for tests.
	BaseURL   string
	Timeout   time.Duration
	RateLimit int
	// CacheTTL keeps successful answers for identical prompts. Zero disables it.
	CacheTTL time.Duration
}

// DefaultModel returns the model used when Config.Model is empty.
func DefaultModel(provider string) string {
	switch strings.ToLower(provider) {
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderAnthropic:
		return "claude-3-5-haiku-latest"
	default:
		return "gemini-2.5-flash"
	}
}

// APIKeyEnv names the conventional environment variable for a provider's key.
func APIKeyEnv(provider string) string {
	switch strings.ToLower(provider) {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return "GEMINI_API_KEY"
	}
}

// withDefaults fills unset fields for the named provider.
func (c Config) withDefaults(baseURL, provider string) Config {
	c.Provider = provider
	if c.Model == "" {
		c.Model = DefaultModel(provider)
	}
	if c.BaseURL == "" {
		c.BaseURL = baseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}
