package config

import (
	"os"

	"github.com/Veraticus/tally/internal/sheets"
	"github.com/spf13/viper"
)

// LoadSheetsConfig loads Google Sheets configuration. Viper settings (config
// file or TALLY_ environment) win over the GOOGLE_SHEETS_* variables.
func LoadSheetsConfig(v *viper.Viper) (sheets.Config, error) {
	config := sheets.DefaultConfig()

	config.ServiceAccountPath = ExpandPath(firstNonEmpty(v.GetString(KeySheetsServiceAccount), os.Getenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH")))
	config.ClientID = firstNonEmpty(v.GetString(KeySheetsClientID), os.Getenv("GOOGLE_SHEETS_CLIENT_ID"))
	config.ClientSecret = firstNonEmpty(v.GetString(KeySheetsClientSecret), os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET"))
	config.RefreshToken = firstNonEmpty(v.GetString(KeySheetsRefreshToken), os.Getenv("GOOGLE_SHEETS_REFRESH_TOKEN"))
	config.SpreadsheetID = firstNonEmpty(v.GetString(KeySheetsSpreadsheetID), os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID"))
	config.SpreadsheetName = firstNonEmpty(v.GetString(KeySheetsSpreadsheetName), config.SpreadsheetName)
	config.TimeZone = firstNonEmpty(v.GetString(KeySheetsTimeZone), config.TimeZone)

	if err := config.Validate(); err != nil {
		return sheets.Config{}, err
	}
	return config, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
