package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// geminiClient calls the generateContent endpoint.
type geminiClient struct {
	httpClient *http.Client
	cfg        Config
}

func newGeminiClient(cfg Config) (*geminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	cfg = cfg.withDefaults(geminiBaseURL, ProviderGemini)
	return &geminiClient{
		cfg:        cfg,
		httpClient: newHTTPClient(cfg.Timeout),
	}, nil
}

// Generate implements Client.
func (c *geminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	requestBody := map[string]any{
		"contents": []map[string]any{
			{
				"role":  "user",
				"parts": []map[string]string{{"text": prompt}},
			},
		},
		"generationConfig": map[string]any{
			"temperature":     Temperature,
			"maxOutputTokens": MaxOutputTokens,
			"topP":            TopP,
			"topK":            TopK,
		},
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.cfg.BaseURL, url.PathEscape(c.cfg.Model))
	body, err := postJSON(ctx, c.httpClient, ProviderGemini, endpoint,
		map[string]string{"x-goog-api-key": c.cfg.APIKey}, requestBody)
	if err != nil {
		return "", err
	}

	return parseGeminiResponse(body)
}

// Close implements Client.
func (c *geminiClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

type geminiResponse struct {
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	Candidates []struct {
		Content *struct {
			Role  string `json:"role"`
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

// geminiFilterReasons are finish reasons meaning output was withheld.
var geminiFilterReasons = map[string]bool{
	"SAFETY":             true,
	"RECITATION":         true,
	"BLOCKLIST":          true,
	"PROHIBITED_CONTENT": true,
	"SPII":               true,
}

// parseGeminiResponse returns the first candidate's text. With no text, the
// finish reason decides between truncated and filtered; anything else is a
// parse failure.
func parseGeminiResponse(body []byte) (string, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", newError(ProviderGemini, KindParse, "failed to parse response: %w", err)
	}

	if len(resp.Candidates) > 0 {
		first := resp.Candidates[0]
		if first.Content != nil {
			var text strings.Builder
			for _, part := range first.Content.Parts {
				text.WriteString(part.Text)
			}
			if text.Len() > 0 {
				return text.String(), nil
			}
		}

		switch {
		case first.FinishReason == "MAX_TOKENS":
			return "", newError(ProviderGemini, KindTruncated, "answer exceeded %d output tokens", MaxOutputTokens)
		case geminiFilterReasons[first.FinishReason]:
			return "", newError(ProviderGemini, KindContentFiltered, "finish reason %s", first.FinishReason)
		}
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", newError(ProviderGemini, KindContentFiltered, "prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}

	return "", newError(ProviderGemini, KindParse, "response has no candidate text")
}
