package config

import (
	"os"
	"time"
)

func parseEnv(cfg *Config) {
	if v, ok := os.LookupEnv("SITEVAULT_URL"); ok && v != "" {
		cfg.ServerURL = v
	}
	if v, ok := os.LookupEnv("SITEVAULT_TIMEOUT"); ok {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if v, ok := os.LookupEnv("SITEVAULT_TOKEN_FILE"); ok && v != "" {
		cfg.TokenFile = v
	}
}
