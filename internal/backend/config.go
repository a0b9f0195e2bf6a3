package backend

import (
	"fmt"
	"strings"

	"ledgerbot/internal/config"
	"ledgerbot/internal/sheets/google"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type: backendType,

		SQLiteDBPath: appConfig.SQLiteDBPath,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,

		GoogleSpreadsheetID:     appConfig.GoogleSpreadsheetID,
		GoogleSheetName:         appConfig.GoogleSheetName,
		GoogleSheetID:           appConfig.GoogleSheetID,
		GoogleCredentialsJSON:   appConfig.GoogleCredentialsJSON,
		GoogleCredentialsBase64: appConfig.GoogleCredentialsBase64,
		GoogleCredentialsFile:   appConfig.GoogleCredentialsFile,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type %q: must be one of %s", c.Type, strings.Join(GetBackendTypeStrings(), ", "))
	}

	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
		// AMQP is optional
	case SheetsBackend:
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for sheets backend")
		}
		if c.GoogleCredentialsJSON == "" && c.GoogleCredentialsBase64 == "" && c.GoogleCredentialsFile == "" {
			return fmt.Errorf("service account credentials are required for sheets backend")
		}
	case MemoryBackend:
	}

	return nil
}

// SheetsOptions returns the Google Sheets client options carried by the config.
func (c Config) SheetsOptions() google.Options {
	return google.Options{
		SpreadsheetID:     c.GoogleSpreadsheetID,
		SheetName:         c.GoogleSheetName,
		SheetID:           c.GoogleSheetID,
		CredentialsJSON:   c.GoogleCredentialsJSON,
		CredentialsBase64: c.GoogleCredentialsBase64,
		CredentialsFile:   c.GoogleCredentialsFile,
	}
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{MemoryBackend, SheetsBackend, SQLiteBackend}
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	types := GetBackendTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
