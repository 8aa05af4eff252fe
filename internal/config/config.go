package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port" env:"SERVER_PORT"`
		Mode string `yaml:"mode" env:"SERVER_MODE"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	JWT struct {
		Secret                string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Ledger struct {
		// PeriodLength is the length of one license period (duration string).
		PeriodLength string `yaml:"period_length" env:"LEDGER_PERIOD_LENGTH"`
		// MinPeriods and MaxPeriods bound the period count of a single
		// purchase or renewal call, not the cumulative total.
		MinPeriods int `yaml:"min_periods" env:"LEDGER_MIN_PERIODS"`
		MaxPeriods int `yaml:"max_periods" env:"LEDGER_MAX_PERIODS"`
		// Default credential prices, overridable per offering by its creator.
		DefaultMintPrice   int64 `yaml:"default_mint_price" env:"LEDGER_DEFAULT_MINT_PRICE"`
		DefaultGrowthPrice int64 `yaml:"default_growth_price" env:"LEDGER_DEFAULT_GROWTH_PRICE"`
		// MaxCredentialPrice caps creator price overrides.
		MaxCredentialPrice int64 `yaml:"max_credential_price" env:"LEDGER_MAX_CREDENTIAL_PRICE"`
		// FeeBps is the platform share of every settlement in basis points.
		FeeBps int `yaml:"fee_bps" env:"LEDGER_FEE_BPS"`
		// MaxDisplayNameLength bounds the credential display name.
		MaxDisplayNameLength int `yaml:"max_display_name_length" env:"LEDGER_MAX_DISPLAY_NAME_LENGTH"`
	} `yaml:"ledger"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	// Try to read config file if it exists
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		err = yaml.Unmarshal(file, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Override with environment variables
	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	// Server defaults
	config.Server.Port = "8080"
	config.Server.Mode = "development"

	// Database defaults
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "eduledger"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"

	// JWT defaults
	config.JWT.AccessTokenExpiration = "1h"
	config.JWT.Issuer = "eduledger.app"

	// Ledger defaults: 30-day periods, up to a year per call
	config.Ledger.PeriodLength = "720h"
	config.Ledger.MinPeriods = 1
	config.Ledger.MaxPeriods = 12
	config.Ledger.DefaultMintPrice = 50
	config.Ledger.DefaultGrowthPrice = 10
	config.Ledger.MaxCredentialPrice = 1_000_000
	config.Ledger.FeeBps = 2000
	config.Ledger.MaxDisplayNameLength = 128

	// Logging defaults
	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}

	periodLength, err := time.ParseDuration(config.Ledger.PeriodLength)
	if err != nil {
		return fmt.Errorf("invalid ledger period length format: %w", err)
	}
	if periodLength <= 0 {
		return fmt.Errorf("ledger period length must be positive")
	}

	if config.Ledger.MinPeriods < 1 || config.Ledger.MaxPeriods < config.Ledger.MinPeriods {
		return fmt.Errorf("invalid ledger period bounds")
	}

	if config.Ledger.FeeBps < 0 || config.Ledger.FeeBps > 10000 {
		return fmt.Errorf("ledger fee bps must be within [0, 10000]")
	}

	if config.Ledger.DefaultMintPrice < 0 || config.Ledger.DefaultGrowthPrice < 0 {
		return fmt.Errorf("default credential prices must not be negative")
	}

	if config.Ledger.MaxDisplayNameLength < 1 {
		return fmt.Errorf("max display name length must be positive")
	}

	return nil
}

// PeriodLength returns the parsed license period length.
func (c *Config) PeriodLength() time.Duration {
	d, err := time.ParseDuration(c.Ledger.PeriodLength)
	if err != nil {
		return 720 * time.Hour
	}
	return d
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}
