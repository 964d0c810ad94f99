package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	ErrConfigFileNotFound    = errors.New("could not find config file in any config path")
	ErrConfigVersionMissing  = errors.New("config file is missing version field")
	ErrConfigVersionMismatch = errors.New("config file version mismatch")
	ErrMissingCredentials    = errors.New("missing required metrics provider credentials")
	ErrMissingWarehouse      = errors.New("missing required warehouse configuration")
)

// CurrentConfigVersion is the expected version of the config file.
const CurrentConfigVersion = 1

// EnvPrefix is the prefix for environment variable overrides.
// Variables use double underscores as section separators, e.g.
// ROSTERPULSE_SOCIALBLADE__TOKEN overrides socialblade.token.
const EnvPrefix = "ROSTERPULSE_"

// Config represents the entire application configuration.
type Config struct {
	// Version of the config file.
	Version     int         `koanf:"version"`
	Debug       Debug       `koanf:"debug"`
	SocialBlade SocialBlade `koanf:"socialblade"`
	Retry       Retry       `koanf:"retry"`
	BigQuery    BigQuery    `koanf:"bigquery"`
	Dev         Dev         `koanf:"dev"`
}

// Debug contains debug-related configuration.
type Debug struct {
	// Log level (debug, info, warn, error).
	LogLevel string `koanf:"log_level"`
	// Path of the durable log file.
	LogFile string `koanf:"log_file"`
}

// SocialBlade contains metrics provider configuration.
type SocialBlade struct {
	// Client ID for the matrix API.
	ClientID string `koanf:"client_id"`
	// Access token for the matrix API.
	Token string `koanf:"token"`
	// Base URL of the matrix API.
	BaseURL string `koanf:"base_url"`
	// Request timeout in milliseconds.
	RequestTimeout int `koanf:"request_timeout"`
}

// Retry contains retry configuration for provider calls.
type Retry struct {
	// Maximum retry attempts after the initial call.
	MaxRetries uint64 `koanf:"max_retries"`
	// Initial retry delay in milliseconds.
	Delay int `koanf:"delay"`
	// Maximum retry delay in milliseconds.
	MaxDelay int `koanf:"max_delay"`
}

// BigQuery contains warehouse connection configuration.
type BigQuery struct {
	// Google Cloud project ID.
	ProjectID string `koanf:"project_id"`
	// Dataset holding the influencer and metrics tables.
	Dataset string `koanf:"dataset"`
}

// Dev contains development mode configuration.
type Dev struct {
	// Directory where CSV files are written in development mode.
	OutputDir string `koanf:"output_dir"`
}

// LoadConfig loads the collector configuration from the first collector.toml
// found in the search paths, then applies environment variable overrides.
func LoadConfig() (*Config, error) {
	// Credentials usually live in a .env file next to the binary
	_ = godotenv.Load()

	k := koanf.New(".")

	// Get user's home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	// List search paths
	configPaths := []string{
		".rosterpulse",
		homeDir + "/.rosterpulse/config",
		"/etc/rosterpulse/config",
		"config",
		".",
	}

	configLoaded := false

	for _, path := range configPaths {
		configPath := fmt.Sprintf("%s/collector.toml", path)
		if err := k.Load(file.Provider(configPath), toml.Parser()); err == nil {
			configLoaded = true
			break
		}
	}

	if !configLoaded {
		return nil, fmt.Errorf("%w: collector.toml", ErrConfigFileNotFound)
	}

	// Environment variables override file values so credentials stay out of the file
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("error loading environment overrides: %w", err)
	}

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Check config version
	if config.Version == 0 {
		return nil, ErrConfigVersionMissing
	}

	if config.Version != CurrentConfigVersion {
		return nil, fmt.Errorf("%w: expected version %d, got %d",
			ErrConfigVersionMismatch, CurrentConfigVersion, config.Version)
	}

	return &config, nil
}

// Validate checks that all configuration required for the selected mode is
// present. Missing configuration is a fatal startup error.
func (c *Config) Validate(devMode bool) error {
	var missing []string

	if c.SocialBlade.ClientID == "" {
		missing = append(missing, "socialblade.client_id")
	}

	if c.SocialBlade.Token == "" {
		missing = append(missing, "socialblade.token")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}

	// The warehouse is only reached outside development mode
	if !devMode {
		if c.BigQuery.ProjectID == "" {
			missing = append(missing, "bigquery.project_id")
		}

		if c.BigQuery.Dataset == "" {
			missing = append(missing, "bigquery.dataset")
		}

		if len(missing) > 0 {
			return fmt.Errorf("%w: %s", ErrMissingWarehouse, strings.Join(missing, ", "))
		}
	}

	return nil
}
