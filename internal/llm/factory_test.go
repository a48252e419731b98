package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Veraticus/tally/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{name: "gemini default", cfg: Config{APIKey: "k"}},
		{name: "openai", cfg: Config{Provider: "OpenAI", APIKey: "k"}},
		{name: "anthropic", cfg: Config{Provider: "anthropic", APIKey: "k"}},
		{name: "unknown provider", cfg: Config{Provider: "llama", APIKey: "k"}, wantErr: common.ErrInvalidConfig},
		{name: "missing key", cfg: Config{Provider: "gemini"}, wantErr: common.ErrMissingConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.cfg, nil)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, client.Close())
		})
	}
}

func TestManagedClientCache(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"cached"}]}}]}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "k", BaseURL: server.URL, CacheTTL: time.Minute}, nil)
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		answer, err := client.Generate(ctx, "same prompt")
		require.NoError(t, err)
		assert.Equal(t, "cached", answer)
	}
	assert.Equal(t, int32(1), calls.Load())

	_, err = client.Generate(ctx, "different prompt")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestManagedClientDoesNotCacheFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "k", BaseURL: server.URL, CacheTTL: time.Minute}, nil)
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	for i := 0; i < 2; i++ {
		_, err := client.Generate(context.Background(), "q")
		assert.Equal(t, KindRateLimited, KindOf(err))
	}
	assert.Equal(t, int32(2), calls.Load())
}

func TestAnswerCacheExpiry(t *testing.T) {
	cache := newAnswerCache(10 * time.Millisecond)
	defer cache.Close()

	cache.set("p", "a")
	got, ok := cache.get("p")
	require.True(t, ok)
	assert.Equal(t, "a", got)
	assert.Equal(t, 1, cache.size())

	time.Sleep(20 * time.Millisecond)
	_, ok = cache.get("p")
	assert.False(t, ok)
}
