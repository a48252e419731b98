package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/tally/internal/common"
)

// NewClient creates a rate-limited client for cfg.Provider.
func NewClient(cfg Config, logger *slog.Logger) (Client, error) {
	provider := strings.ToLower(cfg.Provider)
	if provider == "" {
		provider = ProviderGemini
	}
	cfg.Provider = provider

	var (
		inner Client
		err   error
	)
	switch provider {
	case ProviderGemini:
		inner, err = newGeminiClient(cfg)
	case ProviderOpenAI:
		inner, err = newOpenAIClient(cfg)
	case ProviderAnthropic:
		inner, err = newAnthropicClient(cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider: %s", common.ErrInvalidConfig, cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMissingConfig, err)
	}

	c := &managedClient{
		inner:    inner,
		provider: provider,
		limiter:  newRateLimiter(cfg.RateLimit),
		logger:   common.OrDefault(logger),
	}
	if cfg.CacheTTL > 0 {
		c.cache = newAnswerCache(cfg.CacheTTL)
	}
	return c, nil
}

// managedClient applies rate limiting and the optional answer cache around a
// provider client.
type managedClient struct {
	inner    Client
	limiter  *rateLimiter
	cache    *answerCache
	logger   *slog.Logger
	provider string
}

// Generate implements Client.
func (c *managedClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.cache != nil {
		if answer, ok := c.cache.get(prompt); ok {
			c.logger.Debug("answer cache hit", "provider", c.provider)
			return answer, nil
		}
	}

	if err := c.limiter.wait(ctx); err != nil {
		return "", classifyTransport(c.provider, err)
	}

	answer, err := c.inner.Generate(ctx, prompt)
	if err != nil {
		c.logger.Warn("generation failed",
			"provider", c.provider,
			"kind", KindOf(err),
			"error", err)
		return "", err
	}

	if c.cache != nil {
		c.cache.set(prompt, answer)
	}
	return answer, nil
}

// Close implements Client.
func (c *managedClient) Close() error {
	if c.cache != nil {
		c.cache.Close()
	}
	return c.inner.Close()
}
