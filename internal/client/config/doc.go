// Package config loads runtime configuration for the GophStore CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment variables prefixed with GOPHSTORE_, with a .env file in
//     the working directory loaded first (see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the shop API
//	-d string   data directory
//	-t int      request timeout (seconds)
//	-l string   log level
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "30s" or integer nanoseconds:
//
//	{
//	  "api_url": "http://localhost:8080",
//	  "data_dir": "/var/lib/gophstore",
//	  "request_timeout": "30s",
//	  "secure_cookies": true
//	}
//
// # Environment
//
//	GOPHSTORE_API_URL, GOPHSTORE_DATA_DIR, GOPHSTORE_REQUEST_TIMEOUT,
//	GOPHSTORE_LOG_LEVEL, GOPHSTORE_STORAGE_PASSPHRASE,
//	GOPHSTORE_SECURE_COOKIES, GOPHSTORE_SNAP_URL, GOPHSTORE_OTEL_ENDPOINT
package config
