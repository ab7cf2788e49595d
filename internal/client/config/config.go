package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for vaultctl.
//
// Fields:
//   - ServerURL: base URL of the vault HTTP API.
//   - Timeout: per-request timeout; login waits for key derivation on the server.
//   - TokenFile: where the session token is kept between invocations.
type Config struct {
	ServerURL string
	Timeout   time.Duration
	TokenFile string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.Timeout = 30 * time.Second
	c.TokenFile = defaultTokenFile()
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "sitevault", "session")
}

// LoadConfig applies defaults, then the JSON file at path (if not empty),
// then the environment.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, path); err != nil {
		return nil, err
	}
	parseEnv(cfg)
	return cfg, nil
}
