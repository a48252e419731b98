package config

import (
	"path/filepath"
	"time"

	"github.com/Veraticus/tally/internal/llm"
	"github.com/Veraticus/tally/internal/query"
	"github.com/Veraticus/tally/internal/sheets"
	"github.com/Veraticus/tally/internal/storage"
	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeyStorageDriver = "storage.driver"
	KeyDatabasePath  = "database.path"
	KeyJSONPath      = "storage.json_path"

	KeyLLMProvider  = "llm.provider"
	KeyLLMModel     = "llm.model"
	KeyLLMAPIKey    = "llm.api_key"
	KeyLLMBaseURL   = "llm.base_url"
	KeyLLMTimeout   = "llm.timeout"
	KeyLLMRateLimit = "llm.rate_limit"
	KeyLLMCacheTTL  = "llm.cache_ttl"

	KeyQueryMaxRecords = "query.max_records"

	KeySheetsSpreadsheetID   = "sheets.spreadsheet_id"
	KeySheetsSpreadsheetName = "sheets.spreadsheet_name"
	KeySheetsServiceAccount  = "sheets.service_account_path"
	KeySheetsClientID        = "sheets.client_id"
	KeySheetsClientSecret    = "sheets.client_secret"
	KeySheetsRefreshToken    = "sheets.refresh_token"
	KeySheetsTimeZone        = "sheets.timezone"

	KeyLogLevel  = "logging.level"
	KeyLogFormat = "logging.format"
)

// SetDefaults registers the default of every key.
func SetDefaults(v *viper.Viper) {
	dataDir := DataDir()

	v.SetDefault(KeyStorageDriver, storage.DriverSQLite)
	v.SetDefault(KeyDatabasePath, filepath.Join(dataDir, "tally.db"))
	v.SetDefault(KeyJSONPath, filepath.Join(dataDir, "tally.json"))

	v.SetDefault(KeyLLMProvider, llm.ProviderGemini)
	v.SetDefault(KeyLLMModel, "")
	v.SetDefault(KeyLLMAPIKey, "")
	v.SetDefault(KeyLLMBaseURL, "")
	v.SetDefault(KeyLLMTimeout, llm.DefaultTimeout)
	v.SetDefault(KeyLLMRateLimit, llm.DefaultRateLimit)
	v.SetDefault(KeyLLMCacheTTL, 5*time.Minute)

	v.SetDefault(KeyQueryMaxRecords, query.DefaultMaxRecords)

	v.SetDefault(KeySheetsSpreadsheetID, "")
	v.SetDefault(KeySheetsSpreadsheetName, sheets.DefaultSpreadsheetName)
	v.SetDefault(KeySheetsServiceAccount, "")
	v.SetDefault(KeySheetsClientID, "")
	v.SetDefault(KeySheetsClientSecret, "")
	v.SetDefault(KeySheetsRefreshToken, "")
	v.SetDefault(KeySheetsTimeZone, "Local")

	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
}

// StoragePath returns the file used by the configured driver.
func StoragePath(v *viper.Viper) (driver, path string) {
	driver = v.GetString(KeyStorageDriver)
	if driver == storage.DriverJSON {
		return driver, ExpandPath(v.GetString(KeyJSONPath))
	}
	return driver, ExpandPath(v.GetString(KeyDatabasePath))
}
