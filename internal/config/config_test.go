package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/llm"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	t.Setenv("TALLY_TEST_DIR", "/srv/data")

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~", "/home/tester"},
		{"~/ledger.db", "/home/tester/ledger.db"},
		{"$TALLY_TEST_DIR/ledger.db", "/srv/data/ledger.db"},
		{"/abs/path.db", "/abs/path.db"},
		{"~other/x", "~other/x"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}

func TestSetDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/xdg")
	v := viper.New()
	SetDefaults(v)

	assert.Equal(t, "sqlite", v.GetString(KeyStorageDriver))
	assert.Equal(t, filepath.Join("/xdg", "tally", "tally.db"), v.GetString(KeyDatabasePath))
	assert.Equal(t, "gemini", v.GetString(KeyLLMProvider))
	assert.Equal(t, 30*time.Second, v.GetDuration(KeyLLMTimeout))
	assert.Equal(t, 15, v.GetInt(KeyLLMRateLimit))
	assert.Equal(t, 50, v.GetInt(KeyQueryMaxRecords))
	assert.Equal(t, "Tally Ledger", v.GetString(KeySheetsSpreadsheetName))
	assert.Equal(t, "info", v.GetString(KeyLogLevel))
	assert.Equal(t, "console", v.GetString(KeyLogFormat))

	driver, path := StoragePath(v)
	assert.Equal(t, "sqlite", driver)
	assert.Equal(t, "/xdg/tally/tally.db", path)

	v.Set(KeyStorageDriver, "json")
	driver, path = StoragePath(v)
	assert.Equal(t, "json", driver)
	assert.Equal(t, "/xdg/tally/tally.json", path)
}

func TestLLMConfig(t *testing.T) {
	t.Run("api key falls back to provider env", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "from-env")
		v := viper.New()
		SetDefaults(v)
		v.Set(KeyLLMProvider, "openai")

		cfg := LLMConfig(v)
		assert.Equal(t, llm.ProviderOpenAI, cfg.Provider)
		assert.Equal(t, "from-env", cfg.APIKey)
		assert.Equal(t, llm.DefaultTimeout, cfg.Timeout)
	})

	t.Run("configured key wins", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "from-env")
		v := viper.New()
		SetDefaults(v)
		v.Set(KeyLLMAPIKey, "from-config")

		assert.Equal(t, "from-config", LLMConfig(v).APIKey)
	})
}

func TestLoadSheetsConfig(t *testing.T) {
	t.Run("environment fallback", func(t *testing.T) {
		t.Setenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "/keys/sa.json")
		t.Setenv("GOOGLE_SHEETS_SPREADSHEET_ID", "sheet-123")
		v := viper.New()
		SetDefaults(v)

		cfg, err := LoadSheetsConfig(v)
		require.NoError(t, err)
		assert.Equal(t, "/keys/sa.json", cfg.ServiceAccountPath)
		assert.Equal(t, "sheet-123", cfg.SpreadsheetID)
		assert.Equal(t, "Tally Ledger", cfg.SpreadsheetName)
	})

	t.Run("no credentials", func(t *testing.T) {
		for _, key := range []string{
			"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH",
			"GOOGLE_SHEETS_CLIENT_ID",
			"GOOGLE_SHEETS_CLIENT_SECRET",
			"GOOGLE_SHEETS_REFRESH_TOKEN",
		} {
			t.Setenv(key, "")
		}
		v := viper.New()
		SetDefaults(v)

		_, err := LoadSheetsConfig(v)
		assert.ErrorIs(t, err, common.ErrMissingConfig)
	})
}
