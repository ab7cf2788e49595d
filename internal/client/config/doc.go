// Package config loads runtime configuration for vaultctl.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file named by --config.
//  3. SITEVAULT_URL, SITEVAULT_TIMEOUT and SITEVAULT_TOKEN_FILE.
//  4. Command-line flags, applied by the cli package.
//
// # JSON schema
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "timeout": "30s",
//	  "token_file": "/home/me/.config/sitevault/session"
//	}
package config
