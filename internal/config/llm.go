package config

import (
	"os"

	"github.com/Veraticus/tally/internal/llm"
	"github.com/spf13/viper"
)

// LLMConfig builds the client configuration. An empty llm.api_key falls back
// to the provider's conventional environment variable.
func LLMConfig(v *viper.Viper) llm.Config {
	provider := v.GetString(KeyLLMProvider)

	apiKey := v.GetString(KeyLLMAPIKey)
	if apiKey == "" {
		apiKey = os.Getenv(llm.APIKeyEnv(provider))
	}

	return llm.Config{
		Provider:  provider,
		APIKey:    apiKey,
		Model:     v.GetString(KeyLLMModel),
		BaseURL:   v.GetString(KeyLLMBaseURL),
		Timeout:   v.GetDuration(KeyLLMTimeout),
		RateLimit: v.GetInt(KeyLLMRateLimit),
		CacheTTL:  v.GetDuration(KeyLLMCacheTTL),
	}
}
