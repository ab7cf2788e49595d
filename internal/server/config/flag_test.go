package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		name        string
		args        []string
		expected    *Config
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd",
				"-a", "127.0.0.1:9090", "-g", "", "-d", "postgres://db", "-s", "secret",
				"-t", "60", "-r", "30", "-l", "24", "-charset", "abc123", "-secure-cookie",
				"-cors", "chrome-extension://abc", "-kdf-time", "3", "-kdf-memory", "1024", "-kdf-threads", "2",
				"-u", "user", "-p", "password", "-b", "bucket", "-region", "us-west-1", "-e", "http://endpoint",
				"-backup-interval", "90", "-log-level", "debug", "-log-format", "text",
			},
			expected: &Config{
				HTTPAddr:              "127.0.0.1:9090",
				GRPCHealthAddr:        "",
				DatabaseDSN:           "postgres://db",
				SecretKey:             "secret",
				SessionTimeout:        60 * time.Second,
				TokenValidityDuration: 30 * time.Minute,
				CookieSecure:          true,
				CORSOrigins:           "chrome-extension://abc",
				PasswordLength:        24,
				PasswordCharset:       "abc123",
				KDFTime:               3,
				KDFMemoryKiB:          1024,
				KDFThreads:            2,
				S3RootUser:            "user",
				S3RootPassword:        "password",
				S3Bucket:              "bucket",
				S3Region:              "us-west-1",
				S3BaseEndpoint:        "http://endpoint",
				BackupInterval:        90 * time.Minute,
				LogLevel:              "debug",
				LogFormat:             "text",
			},
		},
		{
			name:        "bad integer",
			args:        []string{"cmd", "-t", "soon"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}

func TestParseFlags_IgnoresConfigFlag(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"cmd", "-c", "file.json", "-a", ":1"}
	config := &Config{}
	config.LoadDefaults()

	require.NotPanics(t, func() { parseFlags(config) })
	assert.Equal(t, ":1", config.HTTPAddr)
}
