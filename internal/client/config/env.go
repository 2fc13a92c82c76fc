package config

import (
	"errors"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// parseEnv overlays Config with GOPHSTORE_* environment variables. Values
// from dotenvPath are loaded into the environment first without replacing
// variables that are already set. A missing file is not an error.
//
// Panics on a malformed file or value, like the other loaders.
func parseEnv(cfg *Config, dotenvPath string) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			panic(err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		panic(err)
	}
}
