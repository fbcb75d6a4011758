// Package config gathers the environment-driven settings for the
// server binary. All values have working local defaults except the
// Google Sheets credentials, which are only required for the sheets
// backend.
package config

import (
	"os"
	"strings"
)

const (
	BackendSheets   = "sheets"
	BackendWorkbook = "workbook"
)

type Config struct {
	Port        string
	CORSOrigins []string
	LogLevel    string

	// Store selection and backends.
	StoreBackend       string
	SpreadsheetID      string
	ServiceAccountJSON string
	ClientSecretJSON   string
	OAuthTokenFile     string
	WorkbookPath       string

	// Directory sheets.
	DirectorySheet     string
	NeighborhoodsSheet string

	// Registration and rendering.
	Timezone string
	LogoPath string

	// Optional print forwarding.
	PrintServerURL string
	PrintToken     string
}

// FromEnv reads the configuration from the process environment.
func FromEnv() Config {
	return Config{
		Port:        getenv("PORT", "8080"),
		CORSOrigins: splitCSV(os.Getenv("CORS_ORIGINS")),
		LogLevel:    getenv("LOG_LEVEL", "info"),

		StoreBackend:       getenv("STORE_BACKEND", BackendSheets),
		SpreadsheetID:      os.Getenv("SPREADSHEET_ID"),
		ServiceAccountJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		ClientSecretJSON:   os.Getenv("GOOGLE_CLIENT_SECRET"),
		OAuthTokenFile:     getenv("GOOGLE_OAUTH_TOKEN_FILE", "token.json"),
		WorkbookPath:       getenv("WORKBOOK_PATH", "senhas.xlsx"),

		DirectorySheet:     getenv("NOMES_SHEET", "Nomes"),
		NeighborhoodsSheet: getenv("BAIRROS_SHEET", "Bairro"),

		Timezone: getenv("APP_TZ", "America/Manaus"),
		LogoPath: os.Getenv("PDF_LOGO_PATH"),

		PrintServerURL: os.Getenv("PRINT_SERVER_URL"),
		PrintToken:     os.Getenv("PRINT_TOKEN"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitCSV(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
