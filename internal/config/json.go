package config

import (
	"encoding/json"
	"os"

	"github.com/glycorisk/riskdash/internal/flagx"
	"github.com/glycorisk/riskdash/internal/timex"
)

// JSONConfig is the on-disk shape of the config file. Pointer fields tell
// "absent" apart from a zero value.
type JSONConfig struct {
	ListenAddr     *string         `json:"listen_addr"`
	APIBaseURL     *string         `json:"api_base_url"`
	DatabaseDSN    *string         `json:"database_dsn"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	CookieName     *string         `json:"cookie_name"`
	CookieMaxAge   *timex.Duration `json:"cookie_max_age"`
	CookieSecure   *bool           `json:"cookie_secure"`
	StoreSecret    *string         `json:"store_secret"`
	CORSOrigins    []string        `json:"cors_origins"`
	MaxBodyBytes   *int64          `json:"max_body_bytes"`
	LogLevel       *string         `json:"log_level"`
	ReportBucket   *string         `json:"report_bucket"`
	S3Region       *string         `json:"s3_region"`
	S3Endpoint     *string         `json:"s3_endpoint"`
	S3AccessKey    *string         `json:"s3_access_key"`
	S3SecretKey    *string         `json:"s3_secret_key"`
}

// parseJSON overlays cfg with the file named by -c / -config. Without the
// flag it does nothing.
func parseJSON(cfg *Config) error {
	path := flagx.JSONConfigPath()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return err
	}

	jc.apply(cfg)
	return nil
}

func (jc *JSONConfig) apply(cfg *Config) {
	setString(&cfg.ListenAddr, jc.ListenAddr)
	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setString(&cfg.CookieName, jc.CookieName)
	setString(&cfg.StoreSecret, jc.StoreSecret)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.ReportBucket, jc.ReportBucket)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3Endpoint, jc.S3Endpoint)
	setString(&cfg.S3AccessKey, jc.S3AccessKey)
	setString(&cfg.S3SecretKey, jc.S3SecretKey)

	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.CookieMaxAge != nil {
		cfg.CookieMaxAge = jc.CookieMaxAge.Duration
	}
	if jc.CookieSecure != nil {
		cfg.CookieSecure = *jc.CookieSecure
	}
	if jc.MaxBodyBytes != nil {
		cfg.MaxBodyBytes = *jc.MaxBodyBytes
	}
	if jc.CORSOrigins != nil {
		cfg.CORSOrigins = jc.CORSOrigins
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
