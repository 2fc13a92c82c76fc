package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophstore/internal/flagx"
	"github.com/dmitrijs2005/gophstore/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "3s" or as integer nanoseconds.
type JsonConfig struct {
	APIURL            string         `json:"api_url"`
	DataDir           string         `json:"data_dir"`
	RequestTimeout    timex.Duration `json:"request_timeout"`
	LogLevel          string         `json:"log_level"`
	StoragePassphrase string         `json:"storage_passphrase"`
	SecureCookies     *bool          `json:"secure_cookies"`
	SnapURL           string         `json:"snap_url"`
	OTelEndpoint      string         `json:"otel_endpoint"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Fields absent from the file keep their current value.
//
// Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.APIURL, jc.APIURL)
	setString(&cfg.DataDir, jc.DataDir)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.StoragePassphrase, jc.StoragePassphrase)
	setString(&cfg.SnapURL, jc.SnapURL)
	setString(&cfg.OTelEndpoint, jc.OTelEndpoint)
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.SecureCookies != nil {
		cfg.SecureCookies = *jc.SecureCookies
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
