package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const envPrefix = "RISKDASH_"

func getEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// parseEnv overlays cfg with RISKDASH_* variables. Unset or empty variables
// leave the current value alone.
func parseEnv(cfg *Config) error {
	strs := map[string]*string{
		"LISTEN_ADDR":   &cfg.ListenAddr,
		"API_BASE_URL":  &cfg.APIBaseURL,
		"DATABASE_DSN":  &cfg.DatabaseDSN,
		"COOKIE_NAME":   &cfg.CookieName,
		"STORE_SECRET":  &cfg.StoreSecret,
		"LOG_LEVEL":     &cfg.LogLevel,
		"REPORT_BUCKET": &cfg.ReportBucket,
		"S3_REGION":     &cfg.S3Region,
		"S3_ENDPOINT":   &cfg.S3Endpoint,
		"S3_ACCESS_KEY": &cfg.S3AccessKey,
		"S3_SECRET_KEY": &cfg.S3SecretKey,
	}
	for key, dst := range strs {
		if v, ok := getEnv(key); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"REQUEST_TIMEOUT": &cfg.RequestTimeout,
		"COOKIE_MAX_AGE":  &cfg.CookieMaxAge,
	}
	for key, dst := range durations {
		v, ok := getEnv(key)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, key, err)
		}
		*dst = d
	}

	if v, ok := getEnv("COOKIE_SECURE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sCOOKIE_SECURE: %w", envPrefix, err)
		}
		cfg.CookieSecure = b
	}

	if v, ok := getEnv("MAX_BODY_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sMAX_BODY_BYTES: %w", envPrefix, err)
		}
		cfg.MaxBodyBytes = n
	}

	if v, ok := getEnv("CORS_ORIGINS"); ok {
		cfg.CORSOrigins = splitList(v)
	}

	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
