package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/gophstore/internal/client/gateway"
)

// EnvPrefix prefixes every environment variable the client reads.
const EnvPrefix = "GOPHSTORE_"

// Config holds runtime settings for the GophStore CLI.
//
// Fields:
//   - APIURL: base URL of the shop API gateway.
//   - DataDir: directory of the local SQLite database.
//   - RequestTimeout: per-request HTTP timeout.
//   - StoragePassphrase: when set, cookie values are sealed at rest.
//   - SecureCookies: marks token cookies HTTPS-only.
//   - SnapURL: checkout page the payment widget points to.
//   - OTelEndpoint: OTLP/HTTP collector; tracing is off when empty.
type Config struct {
	APIURL            string        `env:"API_URL"`
	DataDir           string        `env:"DATA_DIR"`
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT"`
	LogLevel          string        `env:"LOG_LEVEL"`
	StoragePassphrase string        `env:"STORAGE_PASSPHRASE"`
	SecureCookies     bool          `env:"SECURE_COOKIES"`
	SnapURL           string        `env:"SNAP_URL"`
	OTelEndpoint      string        `env:"OTEL_ENDPOINT"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIURL = "http://localhost:8080"
	c.DataDir = defaultDataDir()
	c.RequestTimeout = 30 * time.Second
	c.LogLevel = "info"
	c.SnapURL = gateway.DefaultSnapURL
}

// DatabasePath is the SQLite file inside DataDir.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "shop.db")
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment (including a .env file) and
// command-line flags. Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg, ".env")
	parseFlags(cfg)
	return cfg
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "gophstore")
	}
	return ".gophstore"
}
