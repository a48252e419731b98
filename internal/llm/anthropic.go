package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const anthropicBaseURL = "https://api.anthropic.com/v1"

// anthropicClient calls the messages endpoint.
type anthropicClient struct {
	httpClient *http.Client
	cfg        Config
}

func newAnthropicClient(cfg Config) (*anthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	cfg = cfg.withDefaults(anthropicBaseURL, ProviderAnthropic)
	return &anthropicClient{
		cfg:        cfg,
		httpClient: newHTTPClient(cfg.Timeout),
	}, nil
}

// Generate implements Client.
func (c *anthropicClient) Generate(ctx context.Context, prompt string) (string, error) {
	requestBody := map[string]any{
		"model":       c.cfg.Model,
		"max_tokens":  MaxOutputTokens,
		"temperature": Temperature,
		"top_k":       TopK,
		"messages": []map[string]string{
			{
				"role":    "user",
				"content": prompt,
			},
		},
	}

	body, err := postJSON(ctx, c.httpClient, ProviderAnthropic, c.cfg.BaseURL+"/messages",
		map[string]string{
			"x-api-key":         c.cfg.APIKey,
			"anthropic-version": "2023-06-01",
		}, requestBody)
	if err != nil {
		return "", err
	}

	return parseAnthropicResponse(body)
}

// Close implements Client.
func (c *anthropicClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// anthropicResponse represents the Anthropic API response structure.
type anthropicResponse struct {
	StopReason string `json:"stop_reason"`
	Content    []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func parseAnthropicResponse(body []byte) (string, error) {
	var resp anthropicResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", newError(ProviderAnthropic, KindParse, "failed to parse response: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() > 0 {
		return text.String(), nil
	}

	switch resp.StopReason {
	case "max_tokens":
		return "", newError(ProviderAnthropic, KindTruncated, "answer exceeded %d output tokens", MaxOutputTokens)
	case "refusal":
		return "", newError(ProviderAnthropic, KindContentFiltered, "stop reason %s", resp.StopReason)
	}

	return "", newError(ProviderAnthropic, KindParse, "response has no text content")
}
