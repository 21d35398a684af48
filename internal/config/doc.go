// Package config loads runtime configuration for the riskdash dashboard and CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables prefixed with RISKDASH_, after an optional .env
//     file in the working directory has been loaded.
//  3. Optional JSON file selected via -c or -config.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   listen address of the dashboard
//	-u string   base URL of the backend (the API lives under <base>/api)
//	-d string   DSN of the local credential store
//	-l string   log level (debug, info, warn, error)
//
// # JSON schema
//
// Durations accept either strings like "15s" or integer nanoseconds:
//
//	{
//	  "listen_addr": ":3000",
//	  "api_base_url": "http://localhost:8000",
//	  "database_dsn": "file:riskdash.db",
//	  "request_timeout": "15s",
//	  "cookie_max_age": "168h"
//	}
package config
