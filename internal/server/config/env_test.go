package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_parseEnv(t *testing.T) {
	t.Setenv("SITEVAULT_HTTP_ADDR", ":9999")
	t.Setenv("SITEVAULT_SESSION_TIMEOUT", "120")
	t.Setenv("SITEVAULT_TOKEN_VALIDITY", "2h")
	t.Setenv("SITEVAULT_COOKIE_SECURE", "true")
	t.Setenv("SITEVAULT_PASSWORD_LENGTH", "32")
	t.Setenv("SITEVAULT_KDF_THREADS", "8")
	t.Setenv("SITEVAULT_KDF_TIME", "not-a-number")

	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)

	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, 120*time.Second, cfg.SessionTimeout)
	assert.Equal(t, 2*time.Hour, cfg.TokenValidityDuration)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, 32, cfg.PasswordLength)
	assert.Equal(t, uint32(8), cfg.KDFThreads)
	assert.Equal(t, uint32(1), cfg.KDFTime, "malformed value keeps the default")
}

func Test_parseEnv_EmptyIgnored(t *testing.T) {
	t.Setenv("SITEVAULT_DATABASE_DSN", "")

	cfg := &Config{DatabaseDSN: "keep.db"}
	parseEnv(cfg)
	assert.Equal(t, "keep.db", cfg.DatabaseDSN)
}
