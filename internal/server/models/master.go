// Package models defines server-side data models persisted in the database.
package models

import "time"

// MasterSecretRecord is the single row that proves knowledge of the master
// key without storing it. It is created once and never updated.
type MasterSecretRecord struct {
	// Salt is the random Argon2id salt.
	Salt []byte `json:"salt"`
	// Verifier is HMAC(subkey(derive(master key, salt)), label).
	Verifier []byte `json:"verifier"`
	// KDF parameters in force when the record was created.
	KDFTime      uint32 `json:"kdf_time"`
	KDFMemoryKiB uint32 `json:"kdf_memory_kib"`
	KDFThreads   uint8  `json:"kdf_threads"`

	CreatedAt time.Time `json:"created_at"`
}
