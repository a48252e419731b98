package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGemini(t *testing.T, handler http.HandlerFunc) *geminiClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := newGeminiClient(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)
	return client
}

func TestGeminiGenerate(t *testing.T) {
	var captured map[string]any
	client := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"你這個月"},{"text":"花了 450 元"}]},"finishReason":"STOP"}]}`))
	})

	answer, err := client.Generate(context.Background(), "how much?")
	require.NoError(t, err)
	assert.Equal(t, "你這個月花了 450 元", answer)

	gen, ok := captured["generationConfig"].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 0.7, gen["temperature"], 1e-9)
	assert.EqualValues(t, 2048, gen["maxOutputTokens"])
	assert.InDelta(t, 0.9, gen["topP"], 1e-9)
	assert.EqualValues(t, 40, gen["topK"])
}

func TestParseGeminiResponse(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		want     string
		wantKind Kind
	}{
		{
			name: "text present",
			body: `{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`,
			want: "ok",
		},
		{
			name: "text wins over finish reason",
			body: `{"candidates":[{"content":{"parts":[{"text":"partial"}]},"finishReason":"MAX_TOKENS"}]}`,
			want: "partial",
		},
		{
			name:     "max tokens without text",
			body:     `{"candidates":[{"content":{"role":"model"},"finishReason":"MAX_TOKENS"}]}`,
			wantKind: KindTruncated,
		},
		{
			name:     "safety",
			body:     `{"candidates":[{"finishReason":"SAFETY"}]}`,
			wantKind: KindContentFiltered,
		},
		{
			name:     "recitation",
			body:     `{"candidates":[{"finishReason":"RECITATION"}]}`,
			wantKind: KindContentFiltered,
		},
		{
			name:     "prompt blocked",
			body:     `{"promptFeedback":{"blockReason":"SAFETY"}}`,
			wantKind: KindContentFiltered,
		},
		{
			name:     "unknown finish reason",
			body:     `{"candidates":[{"finishReason":"OTHER"}]}`,
			wantKind: KindParse,
		},
		{
			name:     "empty object",
			body:     `{}`,
			wantKind: KindParse,
		},
		{
			name:     "not json",
			body:     `<html>`,
			wantKind: KindParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseGeminiResponse([]byte(tt.body))
			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGeminiHTTPErrors(t *testing.T) {
	tests := []struct {
		status int
		want   Kind
	}{
		{http.StatusUnauthorized, KindAuth},
		{http.StatusForbidden, KindPermission},
		{http.StatusNotFound, KindNotFound},
		{http.StatusTooManyRequests, KindRateLimited},
		{http.StatusInternalServerError, KindServer},
		{http.StatusServiceUnavailable, KindServer},
		{http.StatusBadRequest, KindHTTPUnknown},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			client := newTestGemini(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"code":1,"message":"quota exceeded","status":"X"}}`))
			})

			_, err := client.Generate(context.Background(), "q")
			require.Error(t, err)

			var llmErr *Error
			require.ErrorAs(t, err, &llmErr)
			assert.Equal(t, tt.want, llmErr.Kind)
			assert.Equal(t, tt.status, llmErr.StatusCode)
			assert.Contains(t, err.Error(), "quota exceeded")
		})
	}
}

func TestGeminiTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client, err := newGeminiClient(Config{APIKey: "k", BaseURL: server.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "q")
	assert.Equal(t, KindTimeout, KindOf(err))
}

func TestGeminiCanceled(t *testing.T) {
	client := newTestGemini(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Generate(ctx, "q")
	assert.Equal(t, KindCanceled, KindOf(err))
}

func TestGeminiNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	client, err := newGeminiClient(Config{APIKey: "k", BaseURL: url})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "q")
	assert.Equal(t, KindNetwork, KindOf(err))
}

func TestNewGeminiClientRequiresKey(t *testing.T) {
	_, err := newGeminiClient(Config{})
	assert.Error(t, err)
}
