// Package common defines shared constants and sentinel errors used across
// the vault server, its storage layer and the CLI client. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Input validation.
	ErrEmptyKey    = errors.New("master key is empty")
	ErrInvalidSite = errors.New("invalid site")

	// Session guard state machine.
	ErrAlreadyInitialized = errors.New("master key already initialized")
	ErrNotInitialized     = errors.New("master key not initialized")
	ErrInvalidCredentials = errors.New("invalid master key")
	ErrUnauthenticated    = errors.New("not authenticated")

	// Storage and crypto failures.
	ErrStorage    = errors.New("storage error")
	ErrDecryption = errors.New("decryption failed")

	// Token errors (invalid, malformed or expired session token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
