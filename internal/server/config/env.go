package config

import (
	"os"
	"strconv"
	"time"
)

const envPrefix = "SITEVAULT_"

// parseEnv overlays SITEVAULT_* variables onto config. Malformed numeric
// values are ignored so a typo in the environment falls back to the file or
// default instead of refusing to start.
func parseEnv(config *Config) {
	envString(&config.HTTPAddr, "HTTP_ADDR")
	envString(&config.GRPCHealthAddr, "GRPC_HEALTH_ADDR")
	envString(&config.DatabaseDSN, "DATABASE_DSN")
	envString(&config.SecretKey, "SECRET_KEY")
	envString(&config.CORSOrigins, "CORS_ORIGINS")
	envString(&config.PasswordCharset, "PASSWORD_CHARSET")
	envString(&config.S3RootUser, "S3_ROOT_USER")
	envString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	envString(&config.S3Bucket, "S3_BUCKET")
	envString(&config.S3Region, "S3_REGION")
	envString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	envString(&config.LogLevel, "LOG_LEVEL")
	envString(&config.LogFormat, "LOG_FORMAT")

	envDuration(&config.SessionTimeout, "SESSION_TIMEOUT")
	envDuration(&config.TokenValidityDuration, "TOKEN_VALIDITY")
	envDuration(&config.BackupInterval, "BACKUP_INTERVAL")

	if v, ok := lookup("COOKIE_SECURE"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			config.CookieSecure = b
		}
	}
	if v, ok := lookup("PASSWORD_LENGTH"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.PasswordLength = n
		}
	}
	if v, ok := lookup("KDF_TIME"); ok {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil && n > 0 {
			config.KDFTime = uint32(n)
		}
	}
	if v, ok := lookup("KDF_MEMORY_KIB"); ok {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil && n > 0 {
			config.KDFMemoryKiB = uint32(n)
		}
	}
	if v, ok := lookup("KDF_THREADS"); ok {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil && n > 0 {
			config.KDFThreads = uint32(n)
		}
	}
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func envString(dst *string, name string) {
	if v, ok := lookup(name); ok {
		*dst = v
	}
}

// envDuration accepts Go duration strings or a bare number of seconds.
func envDuration(dst *time.Duration, name string) {
	v, ok := lookup(name)
	if !ok {
		return
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		*dst = d
		return
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		*dst = time.Duration(n) * time.Second
	}
}
