package models

import "time"

// CredentialEntry is one encrypted site password.
type CredentialEntry struct {
	// Seq is the insertion position; overwriting a site keeps it.
	Seq int64 `json:"seq"`
	// Site is unique across the store.
	Site string `json:"site"`
	// Ciphertext is AES-GCM output with Site as additional data.
	Ciphertext []byte `json:"ciphertext"`
	// Nonce is drawn fresh on every write.
	Nonce []byte `json:"nonce"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
