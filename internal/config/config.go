package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// Transaction source selection
	DataSource string
	CSVPath    string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// AMQP (empty URL disables the notification pipeline)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// WhatsApp gateway (empty URL disables outbound notifications)
	WhatsAppGatewayURL  string
	WhatsAppPhoneNumber string
	NotifyMinSeverity   string
}

func Load() *Config {
	cfg := &Config{
		Port:         getEnv("PORT", "8081"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/spendy.db"),

		DataSource: getEnv("DATA_SOURCE", "csv"),
		CSVPath:    getEnv("CSV_PATH", "./data/transactions.csv"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Transactions"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "spendy"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "alert_notifications"),

		WhatsAppGatewayURL:  getEnv("WHATSAPP_GATEWAY_URL", ""),
		WhatsAppPhoneNumber: getEnv("WHATSAPP_PHONE_NUMBER", ""),
		NotifyMinSeverity:   getEnv("NOTIFY_MIN_SEVERITY", "HIGH"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	switch c.DataSource {
	case "csv":
		if c.CSVPath == "" {
			errors = append(errors, "CSV path cannot be empty when using csv source")
		}
	case "sheets":
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets source")
		}
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when using sheets source")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid data source '%s': must be one of [csv sheets]", c.DataSource))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.WhatsAppGatewayURL != "" {
		if parsedURL, err := url.Parse(c.WhatsAppGatewayURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid WhatsApp gateway URL '%s': %v", c.WhatsAppGatewayURL, err))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid WhatsApp gateway URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
		}
		if c.WhatsAppPhoneNumber == "" {
			errors = append(errors, "WhatsApp phone number cannot be empty when gateway URL is provided")
		}
	}

	switch strings.ToUpper(c.NotifyMinSeverity) {
	case "CRITICAL", "HIGH", "MEDIUM", "LOW":
	default:
		errors = append(errors, fmt.Sprintf("invalid notify severity '%s': must be one of [CRITICAL HIGH MEDIUM LOW]", c.NotifyMinSeverity))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
