package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"projecthub/internal/backend"
	"projecthub/internal/backend/remote"
	"projecthub/internal/log"
)

type Config struct {
	// HTTP Server
	Port string

	// Backend selection
	DataBackend   string
	DataDirectory string

	// Remote backend function URLs. APIBaseURL fills in any endpoint not set
	// explicitly.
	APIBaseURL        string
	APIStatsURL       string
	APIProjectsURL    string
	APIEstimatesURL   string
	APIContractorsURL string
	APIManagementURL  string
	APICompaniesURL   string
	APITimeout        time.Duration

	// Reference lists cache
	ReferenceCacheTTL  time.Duration
	ReferenceCacheSize int

	// Submission journal
	JournalDBPath string

	// AMQP (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets ledger (optional)
	GoogleSpreadsheetID      string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
	LedgerSheetName          string

	// Relay
	RelayBatchSize int
	RelayInterval  time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8081"),

		DataBackend:   getEnv("DATA_BACKEND", "remote"),
		DataDirectory: getEnv("DATA_DIRECTORY", "data"),

		APIBaseURL:        getEnv("API_BASE_URL", ""),
		APIStatsURL:       getEnv("API_STATS_URL", ""),
		APIProjectsURL:    getEnv("API_PROJECTS_URL", ""),
		APIEstimatesURL:   getEnv("API_ESTIMATES_URL", ""),
		APIContractorsURL: getEnv("API_CONTRACTORS_URL", ""),
		APIManagementURL:  getEnv("API_MANAGEMENT_URL", ""),
		APICompaniesURL:   getEnv("API_COMPANIES_URL", ""),
		APITimeout:        getEnvDuration("API_TIMEOUT", 10*time.Second),

		ReferenceCacheTTL:  getEnvDuration("REFERENCE_CACHE_TTL", time.Minute),
		ReferenceCacheSize: getEnvInt("REFERENCE_CACHE_SIZE", 16),

		JournalDBPath: getEnv("JOURNAL_DB_PATH", "./data/projecthub.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "projecthub"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "projecthub_records"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		LedgerSheetName:          getEnv("LEDGER_SHEET_NAME", "Ledger"),

		RelayBatchSize: getEnvInt("RELAY_BATCH_SIZE", 20),
		RelayInterval:  getEnvDuration("RELAY_INTERVAL", time.Minute),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// Endpoints resolves the remote function URLs, explicit values winning over
// the ones derived from APIBaseURL.
func (c *Config) Endpoints() remote.Endpoints {
	var e remote.Endpoints
	if c.APIBaseURL != "" {
		e = remote.EndpointsFromBase(c.APIBaseURL)
	}
	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&e.Stats, c.APIStatsURL)
	override(&e.Projects, c.APIProjectsURL)
	override(&e.Estimates, c.APIEstimatesURL)
	override(&e.Contractors, c.APIContractorsURL)
	override(&e.Management, c.APIManagementURL)
	override(&e.Companies, c.APICompaniesURL)
	return e
}

// Backend returns the settings for backend.Factory.
func (c *Config) Backend() backend.Config {
	return backend.Config{
		Type:          backend.Type(c.DataBackend),
		Endpoints:     c.Endpoints(),
		Timeout:       c.APITimeout,
		DataDirectory: c.DataDirectory,
	}
}

// Logger returns the logger settings from LOG_LEVEL and LOG_FORMAT.
func (c *Config) Logger() log.Config {
	cfg := log.DefaultConfig()
	cfg.Level = log.ParseLevel(c.LogLevel)
	cfg.Format = c.LogFormat
	return cfg
}

// LedgerEnabled reports whether a Google Sheets ledger is configured.
func (c *Config) LedgerEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate data backend
	switch backend.Type(c.DataBackend) {
	case backend.RemoteBackend:
		if err := c.Endpoints().Validate(); err != nil {
			errors = append(errors, fmt.Sprintf("remote backend: %v (set API_BASE_URL or the API_*_URL variables)", err))
		}
		if c.APITimeout <= 0 {
			errors = append(errors, fmt.Sprintf("invalid API timeout %v: must be positive", c.APITimeout))
		}
	case backend.MemoryBackend:
	default:
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of [remote memory]", c.DataBackend))
	}

	if c.ReferenceCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid reference cache size %d: must be at least 1", c.ReferenceCacheSize))
	}
	if c.ReferenceCacheTTL <= 0 {
		errors = append(errors, fmt.Sprintf("invalid reference cache TTL %v: must be positive", c.ReferenceCacheTTL))
	}

	if c.JournalDBPath == "" {
		errors = append(errors, "journal database path cannot be empty")
	}

	// Validate AMQP URL if provided
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

	// Validate Google Sheets ledger if a spreadsheet is configured
	if c.LedgerEnabled() {
		if c.LedgerSheetName == "" {
			errors = append(errors, "ledger sheet name is required when GOOGLE_SPREADSHEET_ID is set")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for the ledger")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	// Validate relay configuration
	if c.RelayBatchSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid relay batch size %d: must be at least 1", c.RelayBatchSize))
	} else if c.RelayBatchSize > 1000 {
		errors = append(errors, fmt.Sprintf("invalid relay batch size %d: must be at most 1000", c.RelayBatchSize))
	}

	if c.RelayInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid relay interval %v: must be at least 1 second", c.RelayInterval))
	} else if c.RelayInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid relay interval %v: must be at most 24 hours", c.RelayInterval))
	}

	if f := strings.ToLower(c.LogFormat); f != "" && f != "text" && f != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	// Return combined errors
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

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
