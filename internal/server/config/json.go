package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/sitevault/internal/flagx"
	"github.com/dmitrijs2005/sitevault/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "15m" and integer nanoseconds are accepted. Zero
// values leave the corresponding setting untouched.
type JsonConfig struct {
	HTTPAddr              string         `json:"http_addr"`
	GRPCHealthAddr        string         `json:"grpc_health_addr"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	SessionTimeout        timex.Duration `json:"session_timeout"`
	TokenValidityDuration timex.Duration `json:"token_validity"`
	CookieSecure          *bool          `json:"cookie_secure"`
	CORSOrigins           string         `json:"cors_origins"`
	PasswordLength        int            `json:"password_length"`
	PasswordCharset       string         `json:"password_charset"`
	KDFTime               uint32         `json:"kdf_time"`
	KDFMemoryKiB          uint32         `json:"kdf_memory_kib"`
	KDFThreads            uint32         `json:"kdf_threads"`
	S3RootUser            string         `json:"s3_root_user"`
	S3RootPassword        string         `json:"s3_root_password"`
	S3Bucket              string         `json:"s3_bucket"`
	S3Region              string         `json:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint"`
	BackupInterval        timex.Duration `json:"backup_interval"`
	LogLevel              string         `json:"log_level"`
	LogFormat             string         `json:"log_format"`
}

// parseJson overlays the file named by -c/-config onto config. Nothing
// happens when the flag is absent. An unreadable or malformed file panics,
// the same as a malformed flag.
func parseJson(config *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCHealthAddr, c.GRPCHealthAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.CORSOrigins, c.CORSOrigins)
	setString(&config.PasswordCharset, c.PasswordCharset)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)

	if c.SessionTimeout.Duration > 0 {
		config.SessionTimeout = c.SessionTimeout.Duration
	}
	if c.TokenValidityDuration.Duration > 0 {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.BackupInterval.Duration > 0 {
		config.BackupInterval = c.BackupInterval.Duration
	}
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
	if c.PasswordLength > 0 {
		config.PasswordLength = c.PasswordLength
	}
	if c.KDFTime > 0 {
		config.KDFTime = c.KDFTime
	}
	if c.KDFMemoryKiB > 0 {
		config.KDFMemoryKiB = c.KDFMemoryKiB
	}
	if c.KDFThreads > 0 {
		config.KDFThreads = c.KDFThreads
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
