// Package config handles configuration for the vault server: defaults,
// a JSON overlay, SITEVAULT_* environment variables and command-line flags,
// applied in that order.
package config

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dmitrijs2005/sitevault/internal/cryptox"
	"github.com/dmitrijs2005/sitevault/internal/passgen"
)

// Config holds runtime settings for the vault server.
//
// Fields:
//   - HTTPAddr: bind address of the JSON API consumed by the browser extension.
//   - GRPCHealthAddr: bind address of the gRPC health service; empty disables it.
//   - DatabaseDSN: "postgres://..." selects PostgreSQL (pgx), anything else is
//     opened as a SQLite database (modernc).
//   - SecretKey: HMAC secret for signing session tokens (HS256). Do not use the
//     default outside development.
//   - SessionTimeout: idle time after which an unlocked session is locked.
//   - TokenValidityDuration: absolute lifetime of a session token.
//   - CookieSecure: sets the Secure attribute on the session cookie.
//   - CORSOrigins: comma separated allowed origins. Listed origins get
//     credentialed CORS (cookies). "*" allows any origin without credentials,
//     so such callers must send the token as a Bearer header.
//   - PasswordLength / PasswordCharset: policy for generated passwords.
//   - KDF*: Argon2id work factors used when the vault is initialized.
//   - S3*: object storage for encrypted snapshots; an empty bucket disables backups.
//   - BackupInterval: period between snapshots.
//   - LogLevel / LogFormat: slog level name and "json" or "text".
type Config struct {
	HTTPAddr              string
	GRPCHealthAddr        string
	DatabaseDSN           string
	SecretKey             string
	SessionTimeout        time.Duration
	TokenValidityDuration time.Duration
	CookieSecure          bool
	CORSOrigins           string
	PasswordLength        int
	PasswordCharset       string
	KDFTime               uint32
	KDFMemoryKiB          uint32
	KDFThreads            uint32
	S3RootUser            string
	S3RootPassword        string
	S3Bucket              string
	S3Region              string
	S3BaseEndpoint        string
	BackupInterval        time.Duration
	LogLevel              string
	LogFormat             string
}

// LoadDefaults populates Config with development defaults.
// NOTE: SecretKey must be overridden in production.
func (c *Config) LoadDefaults() {
	kdf := cryptox.DefaultKDFParams()

	c.HTTPAddr = ":8080"
	c.GRPCHealthAddr = ":50051"
	c.DatabaseDSN = "file:sitevault.db"
	c.SecretKey = "secretKey"
	c.SessionTimeout = 900 * time.Second
	c.TokenValidityDuration = 12 * time.Hour
	c.CookieSecure = false
	c.CORSOrigins = "*"
	c.PasswordLength = passgen.DefaultLength
	c.PasswordCharset = passgen.DefaultCharset
	c.KDFTime = kdf.Time
	c.KDFMemoryKiB = kdf.MemoryKiB
	c.KDFThreads = uint32(kdf.Threads)
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = ""
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.BackupInterval = 24 * time.Hour
	c.LogLevel = "info"
	c.LogFormat = "json"
}

// KDFParams returns the configured Argon2id work factors.
func (c *Config) KDFParams() cryptox.KDFParams {
	return cryptox.KDFParams{Time: c.KDFTime, MemoryKiB: c.KDFMemoryKiB, Threads: uint8(c.KDFThreads)}
}

// ErrInvalidConfig wraps every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// Validate checks the settings the server cannot run with. It must pass
// before KDFParams is used.
func (c *Config) Validate() error {
	switch {
	case c.KDFTime == 0:
		return fmt.Errorf("%w: kdf_time must be positive", ErrInvalidConfig)
	case c.KDFMemoryKiB == 0:
		return fmt.Errorf("%w: kdf_memory_kib must be positive", ErrInvalidConfig)
	case c.KDFThreads == 0 || c.KDFThreads > math.MaxUint8:
		return fmt.Errorf("%w: kdf_threads must be between 1 and %d", ErrInvalidConfig, math.MaxUint8)
	case c.TokenValidityDuration <= 0:
		return fmt.Errorf("%w: token_validity must be positive", ErrInvalidConfig)
	case c.SessionTimeout <= 0:
		return fmt.Errorf("%w: session_timeout must be positive", ErrInvalidConfig)
	}

	if err := c.PasswordPolicy().Validate(); err != nil {
		return fmt.Errorf("%w: password policy: %w", ErrInvalidConfig, err)
	}
	return nil
}

// PasswordPolicy returns the configured generator policy.
func (c *Config) PasswordPolicy() passgen.Policy {
	return passgen.Policy{Length: c.PasswordLength, Charset: c.PasswordCharset}
}

// BackupEnabled reports whether snapshots go to object storage.
func (c *Config) BackupEnabled() bool {
	return c.S3Bucket != "" && c.BackupInterval > 0
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
