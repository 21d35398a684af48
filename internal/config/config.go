package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime settings shared by the dashboard and the CLI.
type Config struct {
	ListenAddr     string
	APIBaseURL     string
	DatabaseDSN    string
	RequestTimeout time.Duration

	CookieName   string
	CookieMaxAge time.Duration
	CookieSecure bool

	// StoreSecret seals the stored credential at rest when non-empty.
	StoreSecret string

	CORSOrigins  []string
	MaxBodyBytes int64
	LogLevel     string

	ReportBucket string
	S3Region     string
	S3Endpoint   string
	S3AccessKey  string
	S3SecretKey  string
}

// LoadDefaults populates c with defaults suitable for a local setup.
func (c *Config) LoadDefaults() {
	c.ListenAddr = ":3000"
	c.APIBaseURL = "http://localhost:8000"
	c.DatabaseDSN = "file:riskdash.db"
	c.RequestTimeout = 15 * time.Second
	c.CookieName = "access_token"
	c.CookieMaxAge = 7 * 24 * time.Hour
	c.CookieSecure = false
	c.CORSOrigins = []string{"http://localhost:3000"}
	c.MaxBodyBytes = 1 << 20
	c.LogLevel = "info"
	c.S3Region = "us-east-1"
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("api base url is required")
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("database dsn is required")
	}
	if c.CookieName == "" {
		return fmt.Errorf("cookie name is required")
	}
	if c.CookieMaxAge <= 0 {
		return fmt.Errorf("cookie max age must be positive, got %s", c.CookieMaxAge)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	return nil
}

// LoadConfig builds a Config from defaults, the environment, an optional JSON
// file and command-line flags, in that order.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg); err != nil {
		return nil, fmt.Errorf("env: %w", err)
	}
	if err := parseJSON(cfg); err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	if err := parseFlags(cfg); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
