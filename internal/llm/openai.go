package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const openAIBaseURL = "https://api.openai.com/v1"

// openAIClient calls the chat completions endpoint.
type openAIClient struct {
	httpClient *http.Client
	cfg        Config
}

func newOpenAIClient(cfg Config) (*openAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	cfg = cfg.withDefaults(openAIBaseURL, ProviderOpenAI)
	return &openAIClient{
		cfg:        cfg,
		httpClient: newHTTPClient(cfg.Timeout),
	}, nil
}

// Generate implements Client.
func (c *openAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	requestBody := map[string]any{
		"model": c.cfg.Model,
		"messages": []map[string]string{
			{
				"role":    "user",
				"content": prompt,
			},
		},
		"temperature": Temperature,
		"top_p":       TopP,
		"max_tokens":  MaxOutputTokens,
	}

	body, err := postJSON(ctx, c.httpClient, ProviderOpenAI, c.cfg.BaseURL+"/chat/completions",
		map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}, requestBody)
	if err != nil {
		return "", err
	}

	return parseOpenAIResponse(body)
}

// Close implements Client.
func (c *openAIClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// openAIResponse represents the OpenAI API response structure.
type openAIResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
		Index        int    `json:"index"`
	} `json:"choices"`
}

func parseOpenAIResponse(body []byte) (string, error) {
	var resp openAIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", newError(ProviderOpenAI, KindParse, "failed to parse response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", newError(ProviderOpenAI, KindParse, "no completion choices returned")
	}

	choice := resp.Choices[0]
	if choice.Message.Content != "" {
		return choice.Message.Content, nil
	}

	switch {
	case choice.FinishReason == "length":
		return "", newError(ProviderOpenAI, KindTruncated, "answer exceeded %d output tokens", MaxOutputTokens)
	case choice.FinishReason == "content_filter" || choice.Message.Refusal != "":
		return "", newError(ProviderOpenAI, KindContentFiltered, "finish reason %s", choice.FinishReason)
	}

	return "", newError(ProviderOpenAI, KindParse, "completion has no content")
}
