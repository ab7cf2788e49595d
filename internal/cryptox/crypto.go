// Package cryptox holds the vault's key material primitives: Argon2id key
// derivation from the master key, HKDF subkeys, the master key verifier and
// AES-GCM sealing of credential entries.
package cryptox

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"io"

	"github.com/dmitrijs2005/sitevault/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
)

const (
	// KeyLen is the size of every derived key and subkey.
	KeyLen = 32
	// SaltLen is the size of the random salt stored in the master record.
	SaltLen = 32
	// NonceLen is the standard GCM nonce size.
	NonceLen = 12

	verifierLabel = "sitevault master key verifier v1"

	// Labels for SubKey.
	LabelVerifier   = "sitevault/verifier"
	LabelEncryption = "sitevault/encryption"
)

// Key is secret key material. Holders must call Wipe once the key is no
// longer needed.
type Key []byte

// Wipe zeroes the key in place.
func (k Key) Wipe() {
	common.WipeByteArray(k)
}

// KDFParams are the Argon2id work factors. They are persisted next to the
// salt so that a vault keeps opening after the configured defaults change.
type KDFParams struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
}

// ErrInvalidKDFParams is returned for work factors argon2 cannot run with.
var ErrInvalidKDFParams = errors.New("invalid kdf parameters")

// Validate rejects zero work factors.
func (p KDFParams) Validate() error {
	if p.Time == 0 || p.MemoryKiB == 0 || p.Threads == 0 {
		return ErrInvalidKDFParams
	}
	return nil
}

// DefaultKDFParams returns the production work factors.
func DefaultKDFParams() KDFParams {
	return KDFParams{Time: 1, MemoryKiB: 64 * 1024, Threads: 4}
}

// NewSalt returns SaltLen random bytes.
func NewSalt() []byte {
	return common.GenerateRandByteArray(SaltLen)
}

// DeriveKey stretches masterKey with Argon2id. The caller owns the result.
// An empty master key must be rejected before calling.
func DeriveKey(masterKey, salt []byte, p KDFParams) Key {
	return Key(argon2.IDKey(masterKey, salt, p.Time, p.MemoryKiB, p.Threads, KeyLen))
}

// DeriveKeyContext runs DeriveKey on its own goroutine. Argon2 itself cannot
// be interrupted, so when ctx ends first the derivation is left to finish in
// the background and its result is wiped.
func DeriveKeyContext(ctx context.Context, masterKey, salt []byte, p KDFParams) (Key, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	// argon2 reads masterKey while running; the caller may wipe its copy as
	// soon as we return.
	mk := append([]byte(nil), masterKey...)

	done := make(chan Key, 1)
	go func() {
		defer common.WipeByteArray(mk)
		done <- DeriveKey(mk, salt, p)
	}()

	select {
	case k := <-done:
		return k, nil
	case <-ctx.Done():
		go func() {
			k := <-done
			k.Wipe()
		}()
		return nil, ctx.Err()
	}
}

// SubKey expands k with HKDF-SHA256 under label.
func SubKey(k Key, label string) (Key, error) {
	r := hkdf.New(sha256.New, k, nil, []byte(label))
	sub := make(Key, KeyLen)
	if _, err := io.ReadFull(r, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// MakeVerifier computes the keyed commitment stored in place of the master
// key: HMAC-SHA256 over a fixed label, keyed by the verifier subkey.
func MakeVerifier(k Key) ([]byte, error) {
	vk, err := SubKey(k, LabelVerifier)
	if err != nil {
		return nil, err
	}
	defer vk.Wipe()

	mac := hmac.New(sha256.New, vk)
	mac.Write([]byte(verifierLabel))
	return mac.Sum(nil), nil
}

// CheckVerifier compares two verifiers in constant time.
func CheckVerifier(stored, candidate []byte) bool {
	return subtle.ConstantTimeCompare(stored, candidate) == 1
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext with AES-GCM under key using a fresh random nonce.
// aad is authenticated but not encrypted; entries pass their site name so a
// ciphertext cannot be moved to another site.
func Seal(key Key, plaintext, aad []byte) (ciphertext, nonce []byte, err error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	nonce = make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}

	return aead.Seal(nil, nonce, plaintext, aad), nonce, nil
}

// Open reverses Seal. Any tampering, a wrong key or a wrong aad yields an error.
func Open(key Key, ciphertext, nonce, aad []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aead.NonceSize() {
		return nil, common.ErrDecryption
	}
	return aead.Open(nil, nonce, ciphertext, aad)
}
