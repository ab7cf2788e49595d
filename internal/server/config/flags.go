package config

import (
	"flag"
	"math"
	"os"
	"time"

	"github.com/dmitrijs2005/sitevault/internal/flagx"
)

var knownFlags = []string{
	"-a", "-g", "-d", "-s", "-t", "-r", "-l", "-charset", "-secure-cookie", "-cors",
	"-kdf-time", "-kdf-memory", "-kdf-threads",
	"-u", "-p", "-b", "-region", "-e", "-backup-interval",
	"-log-level", "-log-format",
}

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string            HTTP bind address (e.g. ":8080")
//	-g string            gRPC health bind address, empty disables
//	-d string            database DSN (postgres://... or a SQLite path)
//	-s string            session token HMAC secret
//	-t int               session idle timeout, seconds
//	-r int               session token validity, minutes
//	-l int               generated password length
//	-charset string      generated password alphabet
//	-secure-cookie       mark the session cookie Secure
//	-cors string         allowed CORS origins, comma separated or "*"
//	-kdf-time int        Argon2id iterations
//	-kdf-memory int      Argon2id memory, KiB
//	-kdf-threads int     Argon2id parallelism
//	-u, -p string        S3 user and password
//	-b string            S3 bucket for snapshots, empty disables backups
//	-region string       S3 region
//	-e string            S3 base endpoint
//	-backup-interval int minutes between snapshots
//	-log-level string    debug, info, warn, error
//	-log-format string   json or text
//
// os.Args is filtered through flagx.FilterArgs first so -c/-config does not
// break parsing.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run the HTTP API")
	fs.StringVar(&config.GRPCHealthAddr, "g", config.GRPCHealthAddr, "address and port of the gRPC health service")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "session token secret key")

	sessionTimeout := fs.Int("t", int(config.SessionTimeout.Seconds()), "session idle timeout (in seconds)")
	tokenValidity := fs.Int("r", int(config.TokenValidityDuration.Minutes()), "session token validity (in minutes)")

	fs.IntVar(&config.PasswordLength, "l", config.PasswordLength, "generated password length")
	fs.StringVar(&config.PasswordCharset, "charset", config.PasswordCharset, "generated password charset")
	fs.BoolVar(&config.CookieSecure, "secure-cookie", config.CookieSecure, "set Secure on the session cookie")
	fs.StringVar(&config.CORSOrigins, "cors", config.CORSOrigins, "allowed CORS origins")

	kdfTime := fs.Uint("kdf-time", uint(config.KDFTime), "argon2id iterations")
	kdfMemory := fs.Uint("kdf-memory", uint(config.KDFMemoryKiB), "argon2id memory (KiB)")
	kdfThreads := fs.Uint("kdf-threads", uint(config.KDFThreads), "argon2id threads")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 snapshot bucket")
	fs.StringVar(&config.S3Region, "region", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	backupInterval := fs.Int("backup-interval", int(config.BackupInterval.Minutes()), "snapshot interval (in minutes)")

	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "log-format", config.LogFormat, "log format")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionTimeout = time.Duration(*sessionTimeout) * time.Second
	config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
	config.BackupInterval = time.Duration(*backupInterval) * time.Minute
	config.KDFTime = clampUint32(*kdfTime)
	config.KDFMemoryKiB = clampUint32(*kdfMemory)
	config.KDFThreads = clampUint32(*kdfThreads)
}

// clampUint32 saturates instead of wrapping so out of range values stay
// visible to Validate.
func clampUint32(v uint) uint32 {
	if v > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}
